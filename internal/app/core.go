package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ariefcatur/go-sneakers-store/internal/catalog"
	"github.com/ariefcatur/go-sneakers-store/internal/config"
	"github.com/ariefcatur/go-sneakers-store/internal/inventory"
	kafkax "github.com/ariefcatur/go-sneakers-store/internal/kafka"
	"github.com/ariefcatur/go-sneakers-store/internal/orders"
	"github.com/ariefcatur/go-sneakers-store/internal/postgres"
)

// Core is the storage-backed part shared by the HTTP server and the bot.
type Core struct {
	DB       *postgres.DB
	Catalog  *catalog.Reader
	Orders   *orders.Reader
	Service  *inventory.Service
	producer *kafkax.Producer
}

// Open connects storage and starts the event producer when brokers are
// configured. The producer stops when ctx is done.
func Open(ctx context.Context, cfg config.Config, log *zap.Logger) (*Core, error) {
	db, err := postgres.Connect(ctx, cfg.PostgresDSN, postgres.Options{
		MaxConns:         cfg.DBMaxConns,
		StatementTimeout: cfg.DBStatementTimeout,
		LockTimeout:      cfg.DBLockTimeout,
		TxTimeout:        cfg.DBTxTimeout,
	})
	if err != nil {
		return nil, err
	}
	if cfg.DBAutoMigrate {
		if err := db.ApplySchema(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("auto migrate: %w", err)
		}
		log.Info("schema applied")
	}

	c := &Core{
		DB:      db,
		Catalog: &catalog.Reader{DB: db},
		Orders:  &orders.Reader{DB: db},
		Service: &inventory.Service{
			Reserver:    &orders.Reserver{DB: db},
			ServiceName: cfg.ServiceName,
		},
	}
	if len(cfg.KafkaBrokers) > 0 {
		c.producer = kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderPlaced, 1024, log)
		c.producer.Start(ctx)
		c.Service.Events = c.producer
	} else {
		log.Info("KAFKA_BROKERS empty, order events disabled")
	}
	return c, nil
}

// Close flushes pending events and releases the pool.
func (c *Core) Close() {
	if c.producer != nil {
		c.producer.Close()
		c.producer.WaitClosed()
	}
	c.DB.Close()
}
