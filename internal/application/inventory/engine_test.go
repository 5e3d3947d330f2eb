package inventory_test

import (
	"context"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pasalhq/pasal-erp/internal/application/apptest"
	"github.com/pasalhq/pasal-erp/internal/application/inventory"
	"github.com/pasalhq/pasal-erp/internal/application/ledger"
	"github.com/pasalhq/pasal-erp/internal/domain"
	"github.com/pasalhq/pasal-erp/internal/domain/entity"
)

func newEngine() (*apptest.Store, *inventory.Engine) {
	store := apptest.NewStore()
	store.Variants["v1"] = entity.Variant{
		ID: "v1", SKU: "KURTA-L", Name: "Kurta L",
		SellableStock: 20, DamagedStock: 0, ReservedStock: 0, Active: true,
	}
	store.Vendors["ven1"] = entity.Vendor{
		ID: "ven1", Name: "Thamel Traders", Balance: decimal.Zero, Active: true,
	}
	eng := inventory.NewEngine(&apptest.TxRunner{Store: store}, ledger.New(nil), nil)
	return store, eng
}

func purchaseInput(qty int) inventory.CreateInput {
	return inventory.CreateInput{
		Type:     entity.TransactionTypePurchase,
		VendorID: "ven1",
		Actor:    "maker",
		Items: []inventory.CreateItemInput{
			{VariantID: "v1", Quantity: qty, UnitCost: decimal.NewFromInt(100)},
		},
	}
}

func TestCreatePurchasePendingNoStockEffect(t *testing.T) {
	store, eng := newEngine()

	tx, err := eng.Create(context.Background(), purchaseInput(5))
	require.NoError(t, err)
	assert.Equal(t, entity.TransactionPending, tx.Status)
	assert.True(t, strings.HasPrefix(tx.InvoiceNumber, "PU-"), "got %s", tx.InvoiceNumber)
	assert.True(t, tx.TotalAmount.Equal(decimal.NewFromInt(500)))

	// Pending means untouched stock and no movements.
	assert.Equal(t, 20, store.Variants["v1"].SellableStock)
	assert.Empty(t, store.Movements)
}

func TestInvoiceNumbersSequentialPerDay(t *testing.T) {
	_, eng := newEngine()

	t1, err := eng.Create(context.Background(), purchaseInput(1))
	require.NoError(t, err)
	t2, err := eng.Create(context.Background(), purchaseInput(1))
	require.NoError(t, err)

	assert.True(t, strings.HasSuffix(t1.InvoiceNumber, "-0001"), "got %s", t1.InvoiceNumber)
	assert.True(t, strings.HasSuffix(t2.InvoiceNumber, "-0002"), "got %s", t2.InvoiceNumber)
}

func TestApprovePurchaseAddsStockAndPayable(t *testing.T) {
	store, eng := newEngine()
	ctx := context.Background()

	tx, err := eng.Create(ctx, purchaseInput(5))
	require.NoError(t, err)

	approved, err := eng.Approve(ctx, tx.ID, "checker")
	require.NoError(t, err)
	assert.Equal(t, entity.TransactionApproved, approved.Status)
	require.NotNil(t, approved.ApprovedBy)
	assert.Equal(t, "checker", *approved.ApprovedBy)

	assert.Equal(t, 25, store.Variants["v1"].SellableStock)
	assert.True(t, store.Vendors["ven1"].Balance.Equal(decimal.NewFromInt(500)))

	// Snapshots reflect the state around the approval, not creation time.
	assert.Equal(t, 20, approved.Items[0].StockBefore)
	assert.Equal(t, 25, approved.Items[0].StockAfter)
	require.Len(t, store.Movements, 1)
	assert.Equal(t, tx.ID, store.Movements[0].CausalRef)
}

func TestSelfApprovalBlocked(t *testing.T) {
	store, eng := newEngine()
	ctx := context.Background()

	tx, err := eng.Create(ctx, purchaseInput(5))
	require.NoError(t, err)

	_, err = eng.Approve(ctx, tx.ID, "maker")
	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.Equal(t, 20, store.Variants["v1"].SellableStock)
}

func TestApproveIsNotIdempotent(t *testing.T) {
	_, eng := newEngine()
	ctx := context.Background()

	tx, err := eng.Create(ctx, purchaseInput(5))
	require.NoError(t, err)
	_, err = eng.Approve(ctx, tx.ID, "checker")
	require.NoError(t, err)

	_, err = eng.Approve(ctx, tx.ID, "checker")
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestRejectLeavesNoTrace(t *testing.T) {
	store, eng := newEngine()
	ctx := context.Background()

	tx, err := eng.Create(ctx, purchaseInput(5))
	require.NoError(t, err)

	rejected, err := eng.Reject(ctx, tx.ID, "checker", "wrong vendor")
	require.NoError(t, err)
	assert.Equal(t, entity.TransactionRejected, rejected.Status)
	assert.Equal(t, 20, store.Variants["v1"].SellableStock)
	assert.Empty(t, store.Movements)

	// Rejected is terminal.
	_, err = eng.Reject(ctx, tx.ID, "checker", "again")
	assert.ErrorIs(t, err, domain.ErrConflict)
	_, err = eng.Approve(ctx, tx.ID, "checker")
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestDamageMovesBetweenBuckets(t *testing.T) {
	store, eng := newEngine()
	ctx := context.Background()

	tx, err := eng.Create(ctx, inventory.CreateInput{
		Type:   entity.TransactionTypeDamage,
		Reason: "water damage in storage",
		Actor:  "maker",
		Items:  []inventory.CreateItemInput{{VariantID: "v1", Quantity: 3}},
	})
	require.NoError(t, err)

	_, err = eng.Approve(ctx, tx.ID, "checker")
	require.NoError(t, err)

	v := store.Variants["v1"]
	assert.Equal(t, 17, v.SellableStock)
	assert.Equal(t, 3, v.DamagedStock)
	// Two ledger movements, net total stock unchanged.
	require.Len(t, store.Movements, 2)
}

func TestApproveDamageBlockedByReservation(t *testing.T) {
	store, eng := newEngine()
	ctx := context.Background()
	v := store.Variants["v1"]
	v.ReservedStock = 16
	store.Variants["v1"] = v

	// sellable 20 with 16 reserved: only 4 may leave the sellable bucket.
	tx, err := eng.Create(ctx, inventory.CreateInput{
		Type:   entity.TransactionTypeDamage,
		Reason: "shelf collapse in storage",
		Actor:  "maker",
		Items:  []inventory.CreateItemInput{{VariantID: "v1", Quantity: 5}},
	})
	require.NoError(t, err)

	_, err = eng.Approve(ctx, tx.ID, "checker")
	var stockErr *domain.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 4, stockErr.Available)

	after := store.Variants["v1"]
	assert.Equal(t, 20, after.SellableStock, "reserved units stay on the shelf")
	assert.Equal(t, 16, after.ReservedStock)
	assert.Equal(t, 0, after.DamagedStock)
	assert.Empty(t, store.Movements)
	got, err := eng.Get(ctx, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.TransactionPending, got.Status)
}

func TestPurchaseReturnFromDamagedBucket(t *testing.T) {
	store, eng := newEngine()
	ctx := context.Background()
	v := store.Variants["v1"]
	v.DamagedStock = 4
	store.Variants["v1"] = v

	tx, err := eng.Create(ctx, inventory.CreateInput{
		Type:     entity.TransactionTypePurchaseReturn,
		VendorID: "ven1",
		Reason:   "returning damaged units to vendor",
		Actor:    "maker",
		Items: []inventory.CreateItemInput{
			{VariantID: "v1", Quantity: 2, UnitCost: decimal.NewFromInt(100), SourceBucket: entity.SourceBucketDamaged},
		},
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(tx.InvoiceNumber, "PR-"))

	_, err = eng.Approve(ctx, tx.ID, "checker")
	require.NoError(t, err)

	after := store.Variants["v1"]
	assert.Equal(t, 20, after.SellableStock)
	assert.Equal(t, 2, after.DamagedStock)
	// Return lowers the payable.
	assert.True(t, store.Vendors["ven1"].Balance.Equal(decimal.NewFromInt(-200)))
}

func TestApproveInsufficientStockRollsBackEverything(t *testing.T) {
	store, eng := newEngine()
	ctx := context.Background()

	// Two lines: the first would succeed, the second drains more than exists.
	tx, err := eng.Create(ctx, inventory.CreateInput{
		Type:     entity.TransactionTypePurchaseReturn,
		VendorID: "ven1",
		Reason:   "bulk return to vendor",
		Actor:    "maker",
		Items: []inventory.CreateItemInput{
			{VariantID: "v1", Quantity: 5, UnitCost: decimal.NewFromInt(100)},
			{VariantID: "v1", Quantity: 50, UnitCost: decimal.NewFromInt(100)},
		},
	})
	require.NoError(t, err)

	_, err = eng.Approve(ctx, tx.ID, "checker")
	var stockErr *domain.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)

	// All-or-nothing: first line rolled back too, still pending.
	assert.Equal(t, 20, store.Variants["v1"].SellableStock)
	assert.Empty(t, store.Movements)
	assert.True(t, store.Vendors["ven1"].Balance.IsZero())
	got, err := eng.Get(ctx, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.TransactionPending, got.Status)
}

func TestVoidReversesApproval(t *testing.T) {
	store, eng := newEngine()
	ctx := context.Background()

	tx, err := eng.Create(ctx, purchaseInput(5))
	require.NoError(t, err)
	_, err = eng.Approve(ctx, tx.ID, "checker")
	require.NoError(t, err)

	voided, err := eng.Void(ctx, tx.ID, "checker", "duplicate entry")
	require.NoError(t, err)
	assert.Equal(t, entity.TransactionVoided, voided.Status)
	require.NotNil(t, voided.VoidedAt)

	assert.Equal(t, 20, store.Variants["v1"].SellableStock)
	assert.True(t, store.Vendors["ven1"].Balance.IsZero())

	// Compensating movement references the same transaction.
	require.Len(t, store.Movements, 2)
	assert.Equal(t, tx.ID, store.Movements[1].CausalRef)
	assert.Equal(t, -5, store.Movements[1].Delta)
}

func TestVoidRequiresReason(t *testing.T) {
	_, eng := newEngine()
	ctx := context.Background()

	tx, err := eng.Create(ctx, purchaseInput(5))
	require.NoError(t, err)
	_, err = eng.Approve(ctx, tx.ID, "checker")
	require.NoError(t, err)

	_, err = eng.Void(ctx, tx.ID, "checker", "  ")
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "reason", verr.Field)
}

func TestVoidOnlyFromApproved(t *testing.T) {
	_, eng := newEngine()
	ctx := context.Background()

	tx, err := eng.Create(ctx, purchaseInput(5))
	require.NoError(t, err)

	_, err = eng.Void(ctx, tx.ID, "checker", "mistake")
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestAdjustmentSignedQuantities(t *testing.T) {
	store, eng := newEngine()
	ctx := context.Background()

	tx, err := eng.Create(ctx, inventory.CreateInput{
		Type:   entity.TransactionTypeAdjustment,
		Reason: "annual stocktake correction",
		Actor:  "maker",
		Items:  []inventory.CreateItemInput{{VariantID: "v1", Quantity: -2}},
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(tx.InvoiceNumber, "AD-"))

	_, err = eng.Approve(ctx, tx.ID, "checker")
	require.NoError(t, err)
	assert.Equal(t, 18, store.Variants["v1"].SellableStock)
}

func TestCreateValidation(t *testing.T) {
	_, eng := newEngine()
	ctx := context.Background()

	cases := []struct {
		name  string
		in    inventory.CreateInput
		field string
	}{
		{
			name:  "unknown type",
			in:    inventory.CreateInput{Type: "transfer", Actor: "u1", Items: []inventory.CreateItemInput{{VariantID: "v1", Quantity: 1}}},
			field: "type",
		},
		{
			name:  "no items",
			in:    inventory.CreateInput{Type: entity.TransactionTypePurchase, VendorID: "ven1", Actor: "u1"},
			field: "items",
		},
		{
			name:  "purchase without vendor",
			in:    inventory.CreateInput{Type: entity.TransactionTypePurchase, Actor: "u1", Items: []inventory.CreateItemInput{{VariantID: "v1", Quantity: 1, UnitCost: decimal.NewFromInt(10)}}},
			field: "vendor_id",
		},
		{
			name:  "return with short reason",
			in:    inventory.CreateInput{Type: entity.TransactionTypePurchaseReturn, VendorID: "ven1", Reason: "bad", Actor: "u1", Items: []inventory.CreateItemInput{{VariantID: "v1", Quantity: 1}}},
			field: "reason",
		},
		{
			name:  "damage without reason",
			in:    inventory.CreateInput{Type: entity.TransactionTypeDamage, Actor: "u1", Items: []inventory.CreateItemInput{{VariantID: "v1", Quantity: 1}}},
			field: "reason",
		},
		{
			name:  "zero adjustment",
			in:    inventory.CreateInput{Type: entity.TransactionTypeAdjustment, Reason: "stocktake", Actor: "u1", Items: []inventory.CreateItemInput{{VariantID: "v1", Quantity: 0}}},
			field: "items[0].quantity",
		},
		{
			name:  "purchase with zero cost",
			in:    inventory.CreateInput{Type: entity.TransactionTypePurchase, VendorID: "ven1", Actor: "u1", Items: []inventory.CreateItemInput{{VariantID: "v1", Quantity: 1}}},
			field: "items[0].unit_cost",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := eng.Create(ctx, tc.in)
			var verr *domain.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tc.field, verr.Field)
		})
	}
}
