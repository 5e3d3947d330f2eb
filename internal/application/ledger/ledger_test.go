package ledger_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pasalhq/pasal-erp/internal/application/apptest"
	"github.com/pasalhq/pasal-erp/internal/application/ledger"
	"github.com/pasalhq/pasal-erp/internal/domain"
	"github.com/pasalhq/pasal-erp/internal/domain/entity"
)

func newFixture() (*apptest.Store, *ledger.Ledger) {
	store := apptest.NewStore()
	store.Variants["v1"] = entity.Variant{
		ID: "v1", SKU: "TSHIRT-M-RED", Name: "T-Shirt M Red",
		SellableStock: 10, DamagedStock: 2, ReservedStock: 3,
		ReorderLevel: 1, Active: true,
	}
	return store, ledger.New(nil)
}

func adjust(store *apptest.Store, l *ledger.Ledger, in ledger.AdjustInput) (*entity.StockMovement, error) {
	r := store.Repos()
	return l.Adjust(r.Variants, r.Movements, in)
}

func TestAdjustWritesCounterAndMovement(t *testing.T) {
	store, l := newFixture()

	mov, err := adjust(store, l, ledger.AdjustInput{
		VariantID: "v1", Bucket: entity.BucketSellable, Delta: 5,
		CausalRef: "tx-1", Reason: "purchase", Actor: "u1",
	})
	require.NoError(t, err)
	assert.Equal(t, 15, mov.StockAfter)
	assert.Equal(t, 5, mov.Delta)

	v := store.Variants["v1"]
	assert.Equal(t, 15, v.SellableStock)
	require.Len(t, store.Movements, 1)
	assert.Equal(t, "tx-1", store.Movements[0].CausalRef)
}

func TestAdjustRejectsZeroDelta(t *testing.T) {
	store, l := newFixture()

	_, err := adjust(store, l, ledger.AdjustInput{
		VariantID: "v1", Bucket: entity.BucketSellable, Delta: 0,
	})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Empty(t, store.Movements)
}

func TestSellableNeverNegative(t *testing.T) {
	store, l := newFixture()

	_, err := adjust(store, l, ledger.AdjustInput{
		VariantID: "v1", Bucket: entity.BucketSellable, Delta: -11,
		CausalRef: "o-1", Actor: "u1",
	})
	var stockErr *domain.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 11, stockErr.Requested)
	assert.Equal(t, 7, stockErr.Available, "3 of the 10 are reserved")

	// Rejected adjustment leaves no trace: counters unchanged, no movement.
	assert.Equal(t, 10, store.Variants["v1"].SellableStock)
	assert.Empty(t, store.Movements)
}

// Sellable may never drop below the reserved count, or the reservation would
// hold units that no longer exist.
func TestSellableDecrementBoundedByReserved(t *testing.T) {
	store, l := newFixture()

	// sellable 10, reserved 3: at most 7 may leave the shelf.
	_, err := adjust(store, l, ledger.AdjustInput{
		VariantID: "v1", Bucket: entity.BucketSellable, Delta: -8,
		CausalRef: "tx-2", Actor: "u1",
	})
	var stockErr *domain.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 8, stockErr.Requested)
	assert.Equal(t, 7, stockErr.Available)
	assert.Equal(t, 10, store.Variants["v1"].SellableStock)
	assert.Empty(t, store.Movements)

	_, err = adjust(store, l, ledger.AdjustInput{
		VariantID: "v1", Bucket: entity.BucketSellable, Delta: -7,
		CausalRef: "tx-2", Actor: "u1",
	})
	require.NoError(t, err)
	v := store.Variants["v1"]
	assert.Equal(t, 3, v.SellableStock)
	assert.Equal(t, 3, v.ReservedStock)
}

func TestDamagedNeverNegative(t *testing.T) {
	store, l := newFixture()

	_, err := adjust(store, l, ledger.AdjustInput{
		VariantID: "v1", Bucket: entity.BucketDamaged, Delta: -3,
		CausalRef: "tx-9", Actor: "u1",
	})
	var stockErr *domain.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 2, store.Variants["v1"].DamagedStock)
}

func TestReservationBoundedBySellable(t *testing.T) {
	store, l := newFixture()

	// sellable 10, reserved 3: at most 7 more can be reserved.
	_, err := adjust(store, l, ledger.AdjustInput{
		VariantID: "v1", Bucket: entity.BucketReserved, Delta: 8,
		CausalRef: "o-2", Actor: "u1",
	})
	var stockErr *domain.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 7, stockErr.Available)

	_, err = adjust(store, l, ledger.AdjustInput{
		VariantID: "v1", Bucket: entity.BucketReserved, Delta: 7,
		CausalRef: "o-2", Actor: "u1",
	})
	require.NoError(t, err)
	assert.Equal(t, 10, store.Variants["v1"].ReservedStock)
}

func TestReservedNeverNegative(t *testing.T) {
	store, l := newFixture()

	_, err := adjust(store, l, ledger.AdjustInput{
		VariantID: "v1", Bucket: entity.BucketReserved, Delta: -4,
		CausalRef: "o-3", Actor: "u1",
	})
	var stockErr *domain.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
}

func TestUnknownBucketRejected(t *testing.T) {
	store, l := newFixture()

	_, err := adjust(store, l, ledger.AdjustInput{
		VariantID: "v1", Bucket: "in_transit", Delta: 1,
	})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "bucket", verr.Field)
}

func TestUnknownVariant(t *testing.T) {
	store, l := newFixture()

	_, err := adjust(store, l, ledger.AdjustInput{
		VariantID: "nope", Bucket: entity.BucketSellable, Delta: 1,
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// Replaying the movement history from zero must reproduce the final counter.
func TestMovementHistoryReplays(t *testing.T) {
	store, l := newFixture()

	deltas := []int{5, -3, 7, -1}
	for _, d := range deltas {
		_, err := adjust(store, l, ledger.AdjustInput{
			VariantID: "v1", Bucket: entity.BucketSellable, Delta: d,
			CausalRef: "replay", Actor: "u1",
		})
		require.NoError(t, err)
	}

	replayed := 10 // opening balance
	for _, m := range store.Movements {
		replayed += m.Delta
		assert.Equal(t, replayed, m.StockAfter)
	}
	assert.Equal(t, replayed, store.Variants["v1"].SellableStock)
}
