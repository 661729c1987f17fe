package orders

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/ariefcatur/go-sneakers-store/internal/postgres"
)

const orderColumns = `id, variant_id, customer_name, customer_phone, customer_address, quantity, status, created_at`

type Reader struct {
	DB *postgres.DB
}

// ListRecent returns up to limit orders, newest first.
func (r *Reader) ListRecent(ctx context.Context, limit int) ([]Order, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive, got %d", ErrInvalidArgument, limit)
	}
	return postgres.Select(ctx, r.DB.Executor(), "list orders",
		`SELECT `+orderColumns+` FROM orders ORDER BY id DESC LIMIT $1`, []any{limit}, scanOrder)
}

func (r *Reader) Get(ctx context.Context, id int64) (Order, error) {
	var o Order
	found, err := r.DB.Executor().Row(ctx, "get order",
		`SELECT `+orderColumns+` FROM orders WHERE id = $1`, []any{id},
		&o.ID, &o.StockUnitID, &o.CustomerName, &o.CustomerPhone, &o.CustomerAddress, &o.Quantity, &o.Status, &o.CreatedAt)
	if err != nil {
		return Order{}, err
	}
	if !found {
		return Order{}, ErrOrderNotFound
	}
	return o, nil
}

func scanOrder(row pgx.CollectableRow) (Order, error) {
	var o Order
	err := row.Scan(&o.ID, &o.StockUnitID, &o.CustomerName, &o.CustomerPhone, &o.CustomerAddress, &o.Quantity, &o.Status, &o.CreatedAt)
	return o, err
}
