package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	HTTPAddr      string
	PostgresDSN   string
	RedisAddr     string
	KafkaBrokers  []string
	ServiceName   string
	TelegramToken string
	OtelEndpoint  string
	LogLevel      string

	DBMaxConns         int32
	DBStatementTimeout time.Duration
	DBLockTimeout      time.Duration
	DBTxTimeout        time.Duration
	DBAutoMigrate      bool
}

// Load reads the environment. Call godotenv.Load first to pick up a .env file.
// An empty REDIS_ADDR or KAFKA_BROKERS disables that integration.
func Load() (Config, error) {
	var errs []error
	cfg := Config{
		HTTPAddr:      getenv("HTTP_ADDR", ":8080"),
		PostgresDSN:   os.Getenv("POSTGRES_DSN"),
		RedisAddr:     getenv("REDIS_ADDR", "localhost:6379"),
		KafkaBrokers:  splitCSV(os.Getenv("KAFKA_BROKERS")),
		ServiceName:   getenv("SERVICE_NAME", "sneakers-api"),
		TelegramToken: os.Getenv("TELEGRAM_TOKEN"),
		OtelEndpoint:  os.Getenv("OTEL_ENDPOINT"),
		LogLevel:      getenv("LOG_LEVEL", "info"),

		DBMaxConns:         int32(intEnv("DB_MAX_CONNS", 8, &errs)),
		DBStatementTimeout: durationEnv("DB_STATEMENT_TIMEOUT", 5*time.Second, &errs),
		DBLockTimeout:      durationEnv("DB_LOCK_TIMEOUT", 3*time.Second, &errs),
		DBTxTimeout:        durationEnv("DB_TX_TIMEOUT", 10*time.Second, &errs),
		DBAutoMigrate:      boolEnv("DB_AUTO_MIGRATE", false, &errs),
	}
	if cfg.PostgresDSN == "" {
		errs = append(errs, errors.New("POSTGRES_DSN environment variable is required"))
	}
	if cfg.DBMaxConns <= 0 {
		errs = append(errs, fmt.Errorf("DB_MAX_CONNS must be positive, got %d", cfg.DBMaxConns))
	}
	return cfg, errors.Join(errs...)
}

func getenv(k, def string) string {
	if v, ok := os.LookupEnv(k); ok {
		return v
	}
	return def
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func intEnv(k string, def int, errs *[]error) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", k, err))
		return def
	}
	return i
}

func durationEnv(k string, def time.Duration, errs *[]error) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", k, err))
		return def
	}
	return d
}

func boolEnv(k string, def bool, errs *[]error) bool {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", k, err))
		return def
	}
	return b
}
