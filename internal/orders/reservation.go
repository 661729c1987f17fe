package orders

import (
	"context"

	"github.com/ariefcatur/go-sneakers-store/internal/postgres"
)

const (
	lockStockSQL = `SELECT quantity FROM sneaker_variants WHERE id = $1 FOR UPDATE`

	insertOrderSQL = `
		INSERT INTO orders (variant_id, customer_name, customer_phone, customer_address, quantity, status)
		VALUES ($1, $2, $3, $4, $5, 'new')
		RETURNING id`

	// quantity >= $1 holds under the row lock; a miss means the lock did not.
	decrementStockSQL = `UPDATE sneaker_variants SET quantity = quantity - $1 WHERE id = $2 AND quantity >= $1`
)

type Reserver struct {
	DB *postgres.DB
}

// Reserve locks the stock unit row, checks stock, records the order and
// decrements stock in one transaction. Concurrent reservations of the same unit
// are serialized by the row lock; other units are not blocked.
//
// A Rejected outcome leaves storage untouched. A *postgres.QueryError wrapping
// postgres.ErrCommitUnknown means the order may or may not exist.
func (r *Reserver) Reserve(ctx context.Context, req PlaceRequest) (Outcome, error) {
	if req.Quantity <= 0 {
		return Rejected(RejectInvalidQuantity), nil
	}

	var out Outcome
	err := r.DB.InTx(ctx, func(ctx context.Context, ex *postgres.Executor) error {
		var stock int
		found, err := ex.Row(ctx, "lock stock", lockStockSQL, []any{req.StockUnitID}, &stock)
		if err != nil {
			return err
		}
		if !found {
			out = Rejected(RejectNotFound)
			return postgres.ErrRollback
		}
		if stock < req.Quantity {
			out = Rejected(RejectInsufficientStock)
			return postgres.ErrRollback
		}

		var orderID int64
		found, err = ex.Row(ctx, "insert order", insertOrderSQL,
			[]any{req.StockUnitID, req.CustomerName, req.CustomerPhone, req.CustomerAddress, req.Quantity},
			&orderID)
		if err != nil {
			return err
		}
		if !found {
			return postgres.Malformed("insert order", "no id returned")
		}

		n, err := ex.Exec(ctx, "decrement stock", decrementStockSQL, req.Quantity, req.StockUnitID)
		if err != nil {
			return err
		}
		if n != 1 {
			return postgres.Malformed("decrement stock", "stock unit %d: %d rows updated, want 1", req.StockUnitID, n)
		}

		out = Committed(orderID)
		return nil
	})
	if err != nil {
		return Outcome{}, err
	}
	return out, nil
}
