package redisx

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

const pending = "pending"

// ErrInFlight means another request with the same key has not finished yet.
var ErrInFlight = errors.New("request with this idempotency key is in flight")

// Idempotency remembers which order an idempotency key produced. Storage stays
// the source of truth; this only prevents a retried request from ordering twice.
type Idempotency struct {
	RDB redis.Cmdable
}

// Begin claims key. When the key already produced an order, that order id is
// returned with replay=true.
func (i *Idempotency) Begin(ctx context.Context, key string) (orderID int64, replay bool, err error) {
	k := fmt.Sprintf(KeyIdemOrderPlace, key)
	ok, err := i.RDB.SetNX(ctx, k, pending, TTLPending).Result()
	if err != nil {
		return 0, false, fmt.Errorf("idempotency claim: %w", err)
	}
	if ok {
		return 0, false, nil
	}

	v, err := i.RDB.Get(ctx, k).Result()
	switch {
	case errors.Is(err, redis.Nil):
		// expired between SETNX and GET; let the caller retry
		return 0, false, ErrInFlight
	case err != nil:
		return 0, false, fmt.Errorf("idempotency lookup: %w", err)
	case v == pending:
		return 0, false, ErrInFlight
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("idempotency value %q: %w", v, err)
	}
	return id, true, nil
}

// Complete records the order id produced for key.
func (i *Idempotency) Complete(ctx context.Context, key string, orderID int64) error {
	k := fmt.Sprintf(KeyIdemOrderPlace, key)
	return i.RDB.Set(ctx, k, strconv.FormatInt(orderID, 10), TTLIdempotency).Err()
}

// Abort releases key so the request can be retried.
func (i *Idempotency) Abort(ctx context.Context, key string) error {
	return i.RDB.Del(ctx, fmt.Sprintf(KeyIdemOrderPlace, key)).Err()
}
