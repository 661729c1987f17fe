package postgres

import (
	"errors"
	"fmt"
	"net"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrCommitUnknown marks a failed COMMIT. The transaction may or may not have
// been applied; callers must not retry writes blindly.
var ErrCommitUnknown = errors.New("commit outcome unknown")

// ConnectionError means storage is unreachable or the connection was invalidated.
type ConnectionError struct {
	Op  string
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("postgres %s: connection: %v", e.Op, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// QueryError means a statement failed or returned an unexpected shape.
// Message carries the storage diagnostic when there is one.
type QueryError struct {
	Op      string
	Code    string
	Message string
	Err     error
}

func (e *QueryError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("postgres %s: %s (SQLSTATE %s)", e.Op, e.Message, e.Code)
	}
	return fmt.Sprintf("postgres %s: %s", e.Op, e.Message)
}

func (e *QueryError) Unwrap() error { return e.Err }

// Translate maps a pgx/pgconn error into *ConnectionError or *QueryError.
// Already translated errors pass through.
func Translate(op string, err error) error {
	if err == nil {
		return nil
	}
	var ce *ConnectionError
	var qe *QueryError
	if errors.As(err, &ce) || errors.As(err, &qe) {
		return err
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return &QueryError{Op: op, Code: pgErr.Code, Message: pgErr.Message, Err: err}
	}

	var connErr *pgconn.ConnectError
	var netErr net.Error
	if errors.As(err, &connErr) || errors.As(err, &netErr) {
		return &ConnectionError{Op: op, Err: err}
	}
	return &QueryError{Op: op, Message: err.Error(), Err: err}
}

// Malformed reports a row that came back with an unexpected shape.
func Malformed(op, format string, args ...any) error {
	return &QueryError{Op: op, Message: fmt.Sprintf(format, args...)}
}

func isNoRows(err error) bool { return errors.Is(err, pgx.ErrNoRows) }
