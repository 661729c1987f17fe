package catalog

import (
	"context"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ariefcatur/go-sneakers-store/internal/postgres"
)

var stockColumns = []string{"id", "name", "model", "color", "size", "price", "quantity", "url"}

func newReader(t *testing.T) (*Reader, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	return &Reader{DB: postgres.New(mock, postgres.Options{})}, mock
}

func TestListAvailable(t *testing.T) {
	r, mock := newReader(t)
	mock.ExpectPing()
	mock.ExpectQuery(`WHERE sv.quantity > 0`).WillReturnRows(
		pgxmock.NewRows(stockColumns).
			AddRow(int64(1), "Nike", "Air Max 90", "white", "42.5", "129.99", 3, "https://img/1.jpg").
			AddRow(int64(2), "Adidas", "Samba", "black", "41.0", "99.00", 1, ""),
	)

	units, err := r.ListAvailable(context.Background())

	require.NoError(t, err)
	require.Len(t, units, 2)
	assert.Equal(t, StockUnit{
		ID: 1, Brand: "Nike", Model: "Air Max 90", Color: "white",
		Size: 42.5, Price: decimal.RequireFromString("129.99"), Quantity: 3, ImageURL: "https://img/1.jpg",
	}, units[0])
	assert.Empty(t, units[1].ImageURL)
	assert.True(t, units[1].Price.Equal(decimal.NewFromInt(99)))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListAvailable_Empty(t *testing.T) {
	r, mock := newReader(t)
	mock.ExpectPing()
	mock.ExpectQuery(`FROM sneaker_variants`).WillReturnRows(pgxmock.NewRows(stockColumns))

	units, err := r.ListAvailable(context.Background())

	require.NoError(t, err)
	assert.NotNil(t, units)
	assert.Empty(t, units)
}

func TestListAvailable_MalformedNumericIsQueryError(t *testing.T) {
	tests := []struct {
		name, size, price, want string
	}{
		{name: "size", size: "forty", price: "10.00", want: `stock unit 5: malformed size "forty"`},
		{name: "price", size: "40", price: "ten", want: `stock unit 5: malformed price "ten"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, mock := newReader(t)
			mock.ExpectPing()
			mock.ExpectQuery(`FROM sneaker_variants`).WillReturnRows(
				pgxmock.NewRows(stockColumns).AddRow(int64(5), "Puma", "Suede", "red", tt.size, tt.price, 2, ""),
			)

			units, err := r.ListAvailable(context.Background())

			assert.Nil(t, units)
			var qe *postgres.QueryError
			require.ErrorAs(t, err, &qe)
			assert.Equal(t, tt.want, qe.Message)
		})
	}
}
