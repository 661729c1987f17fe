package catalog

import (
	"context"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/ariefcatur/go-sneakers-store/internal/postgres"
)

// StockUnit is one sellable variant: a model/color/size with its own price and stock.
type StockUnit struct {
	ID       int64
	Brand    string
	Model    string
	Color    string
	Size     float64
	Price    decimal.Decimal
	Quantity int
	ImageURL string
}

// Only units with stock; the main image is optional. No ORDER BY, callers must
// not rely on row order.
const listAvailableSQL = `
	SELECT sv.id, b.name, s.model, s.color, sv.size::text, sv.price::text, sv.quantity,
	       COALESCE((SELECT i.url FROM images i
	                 WHERE i.sneaker_id = s.id AND i.is_main = TRUE LIMIT 1), '')
	FROM sneaker_variants sv
	JOIN sneakers s ON s.id = sv.sneaker_id
	JOIN brands b ON b.id = s.brand_id
	WHERE sv.quantity > 0`

type Reader struct {
	DB *postgres.DB
}

// ListAvailable returns every stock unit with quantity > 0.
func (r *Reader) ListAvailable(ctx context.Context) ([]StockUnit, error) {
	return postgres.Select(ctx, r.DB.Executor(), "list available", listAvailableSQL, nil, scanStockUnit)
}

func scanStockUnit(row pgx.CollectableRow) (StockUnit, error) {
	var (
		u           StockUnit
		size, price string
	)
	if err := row.Scan(&u.ID, &u.Brand, &u.Model, &u.Color, &size, &price, &u.Quantity, &u.ImageURL); err != nil {
		return StockUnit{}, err
	}

	var err error
	if u.Size, err = strconv.ParseFloat(size, 64); err != nil {
		return StockUnit{}, postgres.Malformed("list available", "stock unit %d: malformed size %q", u.ID, size)
	}
	if u.Price, err = decimal.NewFromString(price); err != nil {
		return StockUnit{}, postgres.Malformed("list available", "stock unit %d: malformed price %q", u.ID, price)
	}
	return u, nil
}
