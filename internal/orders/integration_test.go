package orders

import (
	"context"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ariefcatur/go-sneakers-store/internal/catalog"
	"github.com/ariefcatur/go-sneakers-store/internal/postgres"
)

// These tests need a real Postgres; set POSTGRES_TEST_DSN to run them.
func getTestDB(t *testing.T) *postgres.DB {
	t.Helper()
	dsn := os.Getenv("POSTGRES_TEST_DSN")
	if dsn == "" {
		t.Skip("POSTGRES_TEST_DSN not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := postgres.Connect(ctx, dsn, postgres.Options{MaxConns: 16, LockTimeout: 5 * time.Second})
	if err != nil {
		t.Skipf("Postgres not available: %v", err)
	}
	t.Cleanup(db.Close)
	require.NoError(t, db.ApplySchema(ctx))
	return db
}

// seedStockUnit inserts a fresh variant with the given quantity and removes it
// together with its orders when the test ends.
func seedStockUnit(t *testing.T, db *postgres.DB, qty int) int64 {
	t.Helper()
	ctx := context.Background()
	ex := db.Executor()
	suffix := fmt.Sprintf("%s-%d", t.Name(), time.Now().UnixNano())

	var brandID, sneakerID int
	var variantID int64
	_, err := ex.Row(ctx, "seed brand", `INSERT INTO brands (name) VALUES ($1) RETURNING id`, []any{"brand-" + suffix}, &brandID)
	require.NoError(t, err)
	_, err = ex.Row(ctx, "seed sneaker", `INSERT INTO sneakers (brand_id, model, color) VALUES ($1, $2, 'white') RETURNING id`,
		[]any{brandID, "model-" + suffix}, &sneakerID)
	require.NoError(t, err)
	_, err = ex.Row(ctx, "seed variant", `INSERT INTO sneaker_variants (sneaker_id, size, price, quantity) VALUES ($1, 42.5, 129.99, $2) RETURNING id`,
		[]any{sneakerID, qty}, &variantID)
	require.NoError(t, err)

	t.Cleanup(func() {
		ctx := context.Background()
		_, _ = ex.Exec(ctx, "cleanup", `DELETE FROM orders WHERE variant_id = $1`, variantID)
		_, _ = ex.Exec(ctx, "cleanup", `DELETE FROM sneaker_variants WHERE id = $1`, variantID)
		_, _ = ex.Exec(ctx, "cleanup", `DELETE FROM sneakers WHERE id = $1`, sneakerID)
		_, _ = ex.Exec(ctx, "cleanup", `DELETE FROM brands WHERE id = $1`, brandID)
	})
	return variantID
}

func stockOf(t *testing.T, db *postgres.DB, id int64) (qty, orderRows, orderedQty int) {
	t.Helper()
	ctx := context.Background()
	_, err := db.Executor().Row(ctx, "stock", `SELECT quantity FROM sneaker_variants WHERE id = $1`, []any{id}, &qty)
	require.NoError(t, err)
	_, err = db.Executor().Row(ctx, "orders", `SELECT COUNT(*), COALESCE(SUM(quantity), 0) FROM orders WHERE variant_id = $1`, []any{id}, &orderRows, &orderedQty)
	require.NoError(t, err)
	return qty, orderRows, orderedQty
}

func TestIntegration_TwoConcurrentReservationsOfThreeFromFive(t *testing.T) {
	db := getTestDB(t)
	id := seedStockUnit(t, db, 5)
	r := &Reserver{DB: db}

	var (
		wg       sync.WaitGroup
		outcomes [2]Outcome
		errs     [2]error
		start    = make(chan struct{})
	)
	for i := range outcomes {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			outcomes[i], errs[i] = r.Reserve(context.Background(), placeReq(id, 3))
		}(i)
	}
	close(start)
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])
	committed := 0
	for _, o := range outcomes {
		if o.Committed() {
			committed++
		} else {
			assert.Equal(t, RejectInsufficientStock, o.Reason)
		}
	}
	assert.Equal(t, 1, committed)

	qty, rows, _ := stockOf(t, db, id)
	assert.Equal(t, 2, qty)
	assert.Equal(t, 1, rows)
}

func TestIntegration_NoOversellUnderLoad(t *testing.T) {
	db := getTestDB(t)
	const (
		initial  = 17
		perOrder = 2
		attempts = 40
	)
	id := seedStockUnit(t, db, initial)
	r := &Reserver{DB: db}

	var (
		wg        sync.WaitGroup
		committed atomic.Int32
		rejected  atomic.Int32
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out, err := r.Reserve(context.Background(), placeReq(id, perOrder))
			if !assert.NoError(t, err) {
				return
			}
			if out.Committed() {
				committed.Add(1)
			} else {
				rejected.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.EqualValues(t, initial/perOrder, committed.Load())
	assert.EqualValues(t, attempts-initial/perOrder, rejected.Load())

	qty, rows, orderedQty := stockOf(t, db, id)
	assert.Equal(t, initial-perOrder*int(committed.Load()), qty)
	assert.Equal(t, int(committed.Load()), rows)
	assert.Equal(t, initial-qty, orderedQty)
}

func TestIntegration_RejectionLeavesStateUnchanged(t *testing.T) {
	db := getTestDB(t)
	id := seedStockUnit(t, db, 4)
	r := &Reserver{DB: db}

	out, err := r.Reserve(context.Background(), placeReq(id, 5))

	require.NoError(t, err)
	assert.Equal(t, Rejected(RejectInsufficientStock), out)
	qty, rows, _ := stockOf(t, db, id)
	assert.Equal(t, 4, qty)
	assert.Zero(t, rows)
}

func TestIntegration_ExactStockDepletesAndLeavesCatalog(t *testing.T) {
	db := getTestDB(t)
	id := seedStockUnit(t, db, 3)
	r := &Reserver{DB: db}
	cat := &catalog.Reader{DB: db}

	units, err := cat.ListAvailable(context.Background())
	require.NoError(t, err)
	assert.True(t, containsUnit(units, id))

	out, err := r.Reserve(context.Background(), placeReq(id, 3))
	require.NoError(t, err)
	require.True(t, out.Committed())

	qty, rows, _ := stockOf(t, db, id)
	assert.Zero(t, qty)
	assert.Equal(t, 1, rows)

	units, err = cat.ListAvailable(context.Background())
	require.NoError(t, err)
	assert.False(t, containsUnit(units, id))
	for _, u := range units {
		assert.Positive(t, u.Quantity)
	}
}

func TestIntegration_ListRecentNewestFirst(t *testing.T) {
	db := getTestDB(t)
	id := seedStockUnit(t, db, 10)
	r := &Reserver{DB: db}

	var ids []int64
	for i := 0; i < 3; i++ {
		out, err := r.Reserve(context.Background(), placeReq(id, 1))
		require.NoError(t, err)
		require.True(t, out.Committed())
		ids = append(ids, out.OrderID)
	}

	got, err := (&Reader{DB: db}).ListRecent(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, ids[2], got[0].ID)
	assert.Equal(t, ids[1], got[1].ID)
	assert.Equal(t, StatusNew, got[0].Status)
}

func containsUnit(units []catalog.StockUnit, id int64) bool {
	for _, u := range units {
		if u.ID == id {
			return true
		}
	}
	return false
}
