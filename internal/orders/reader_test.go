package orders

import (
	"context"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ariefcatur/go-sneakers-store/internal/postgres"
)

var orderRowColumns = []string{"id", "variant_id", "customer_name", "customer_phone", "customer_address", "quantity", "status", "created_at"}

func newMockReader(t *testing.T) (*Reader, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	return &Reader{DB: postgres.New(mock, postgres.Options{})}, mock
}

func TestListRecent(t *testing.T) {
	r, mock := newMockReader(t)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectPing()
	mock.ExpectQuery(`FROM orders ORDER BY id DESC LIMIT \$1`).WithArgs(2).WillReturnRows(
		pgxmock.NewRows(orderRowColumns).
			AddRow(int64(12), int64(7), "Anna", "+1", "Main st", 1, StatusNew, now).
			AddRow(int64(11), int64(3), "Oleg", "+2", "Side st", 2, StatusNew, now.Add(-time.Minute)),
	)

	got, err := r.ListRecent(context.Background(), 2)

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.EqualValues(t, 12, got[0].ID)
	assert.EqualValues(t, 11, got[1].ID)
	assert.Equal(t, Order{
		ID: 11, StockUnitID: 3, CustomerName: "Oleg", CustomerPhone: "+2", CustomerAddress: "Side st",
		Quantity: 2, Status: StatusNew, CreatedAt: now.Add(-time.Minute),
	}, got[1])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListRecent_RejectsNonPositiveLimit(t *testing.T) {
	for _, limit := range []int{0, -5} {
		r, mock := newMockReader(t)

		got, err := r.ListRecent(context.Background(), limit)

		assert.Nil(t, got)
		assert.ErrorIs(t, err, ErrInvalidArgument)
		require.NoError(t, mock.ExpectationsWereMet())
	}
}

func TestGet(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		r, mock := newMockReader(t)
		now := time.Now().UTC()
		mock.ExpectPing()
		mock.ExpectQuery(`FROM orders WHERE id = \$1`).WithArgs(int64(5)).WillReturnRows(
			pgxmock.NewRows(orderRowColumns).AddRow(int64(5), int64(2), "Kim", "+3", "Park ave", 3, StatusNew, now),
		)

		o, err := r.Get(context.Background(), 5)

		require.NoError(t, err)
		assert.Equal(t, StatusNew, o.Status)
		assert.Equal(t, 3, o.Quantity)
	})

	t.Run("missing", func(t *testing.T) {
		r, mock := newMockReader(t)
		mock.ExpectPing()
		mock.ExpectQuery(`FROM orders WHERE id = \$1`).WithArgs(int64(6)).WillReturnRows(pgxmock.NewRows(orderRowColumns))

		_, err := r.Get(context.Background(), 6)

		assert.ErrorIs(t, err, ErrOrderNotFound)
	})
}
