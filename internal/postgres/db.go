package postgres

import (
	"context"
	_ "embed"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed schema.sql
var schemaSQL string

// ErrRollback can be returned from an InTx body to roll back without failing.
var ErrRollback = errors.New("rollback requested")

// Pool is the subset of *pgxpool.Pool the store uses.
type Pool interface {
	Querier
	Begin(ctx context.Context) (pgx.Tx, error)
	Ping(ctx context.Context) error
}

type Options struct {
	MaxConns         int32
	MinConns         int32
	StatementTimeout time.Duration
	LockTimeout      time.Duration
	// TxTimeout bounds a transaction once it has started. The transaction is
	// detached from the caller's cancellation so it always commits or rolls back.
	TxTimeout time.Duration
}

func (o Options) withDefaults() Options {
	if o.MaxConns <= 0 {
		o.MaxConns = 8
	}
	if o.MinConns <= 0 {
		o.MinConns = 1
	}
	if o.TxTimeout <= 0 {
		o.TxTimeout = 10 * time.Second
	}
	return o
}

// DB owns the connection pool. One connection is checked out per transaction.
type DB struct {
	pool      Pool
	closeFn   func()
	closeOnce sync.Once
	txTimeout time.Duration
}

// Connect builds the pool and verifies storage is reachable. On failure the
// pool is closed and no handle is returned.
func Connect(ctx context.Context, dsn string, opts Options) (*DB, error) {
	opts = opts.withDefaults()
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, &ConnectionError{Op: "connect", Err: err}
	}
	cfg.MaxConns = opts.MaxConns
	cfg.MinConns = opts.MinConns
	cfg.HealthCheckPeriod = 30 * time.Second
	cfg.MaxConnLifetime = time.Hour
	if opts.StatementTimeout > 0 {
		cfg.ConnConfig.RuntimeParams["statement_timeout"] = strconv.FormatInt(opts.StatementTimeout.Milliseconds(), 10)
	}
	if opts.LockTimeout > 0 {
		cfg.ConnConfig.RuntimeParams["lock_timeout"] = strconv.FormatInt(opts.LockTimeout.Milliseconds(), 10)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, &ConnectionError{Op: "connect", Err: err}
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, &ConnectionError{Op: "connect", Err: err}
	}
	db := New(pool, opts)
	db.closeFn = pool.Close
	return db, nil
}

// New wraps an existing pool. Close is a no-op for pools created elsewhere.
func New(pool Pool, opts Options) *DB {
	opts = opts.withDefaults()
	return &DB{pool: pool, closeFn: func() {}, txTimeout: opts.TxTimeout}
}

// Check verifies the storage connection is alive.
func (db *DB) Check(ctx context.Context) error {
	if err := db.pool.Ping(ctx); err != nil {
		return &ConnectionError{Op: "check", Err: err}
	}
	return nil
}

// Close releases the pool. Safe to call more than once.
func (db *DB) Close() {
	db.closeOnce.Do(db.closeFn)
}

// Executor returns an executor bound to the pool that checks liveness before
// every statement.
func (db *DB) Executor() *Executor {
	return &Executor{q: db.pool, check: db.Check}
}

// InTx runs fn in a single transaction. A caller that is already done gets a
// *ConnectionError and nothing is started. fn must use the context it is given,
// which outlives the caller's cancellation. Any error from fn rolls back before
// it is returned; ErrRollback rolls back and returns nil. A failed commit yields
// a *QueryError wrapping ErrCommitUnknown.
func (db *DB) InTx(ctx context.Context, fn func(ctx context.Context, ex *Executor) error) error {
	if err := ctx.Err(); err != nil {
		return &ConnectionError{Op: "begin", Err: err}
	}
	if err := db.Check(ctx); err != nil {
		return err
	}

	txCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), db.txTimeout)
	defer cancel()

	tx, err := db.pool.Begin(txCtx)
	if err != nil {
		return Translate("begin", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(txCtx)
			panic(p)
		}
	}()

	if err := fn(txCtx, &Executor{q: tx}); err != nil {
		// best effort; the original error wins
		_ = tx.Rollback(txCtx)
		if errors.Is(err, ErrRollback) {
			return nil
		}
		return err
	}

	if err := tx.Commit(txCtx); err != nil {
		qe := &QueryError{Op: "commit", Message: err.Error(), Err: errors.Join(ErrCommitUnknown, err)}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			qe.Code, qe.Message = pgErr.Code, pgErr.Message
		}
		return qe
	}
	return nil
}

// ApplySchema creates the store tables if they are missing. Production schemas
// are provisioned out of band; this is for local runs and tests.
func (db *DB) ApplySchema(ctx context.Context) error {
	if _, err := db.pool.Exec(ctx, schemaSQL); err != nil {
		return Translate("apply schema", err)
	}
	return nil
}
