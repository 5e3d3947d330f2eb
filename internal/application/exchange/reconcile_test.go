package exchange_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pasalhq/pasal-erp/internal/application/apptest"
	"github.com/pasalhq/pasal-erp/internal/application/exchange"
	"github.com/pasalhq/pasal-erp/internal/application/ledger"
	"github.com/pasalhq/pasal-erp/internal/domain"
	"github.com/pasalhq/pasal-erp/internal/domain/entity"
)

func newService() (*apptest.Store, *exchange.Service) {
	store := apptest.NewStore()
	store.Variants["v1"] = entity.Variant{
		ID: "v1", SKU: "SHOE-42", Name: "Shoe 42",
		SellableStock: 10, SellingPrice: decimal.NewFromInt(1500), CostPrice: decimal.NewFromInt(900), Active: true,
	}
	store.Variants["v2"] = entity.Variant{
		ID: "v2", SKU: "SHOE-43", Name: "Shoe 43",
		SellableStock: 5, SellingPrice: decimal.NewFromInt(1600), CostPrice: decimal.NewFromInt(950), Active: true,
	}
	return store, exchange.NewService(&apptest.TxRunner{Store: store}, ledger.New(nil), nil)
}

// seedDelivered creates a delivered parent order with 2 units of v1 at a
// historical price below the current one.
func seedDelivered(store *apptest.Store) string {
	now := time.Now()
	o := entity.Order{
		ID:              "parent-1",
		OrderNumber:     "SO-20260815-0007",
		FulfillmentType: entity.FulfillmentInsideValley,
		Status:          entity.StatusDelivered,
		CustomerName:    "Hari Shrestha",
		CustomerPhone:   "9851000000",
		PaymentMethod:   entity.PaymentCOD,
		PaymentStatus:   entity.PaymentStatusPaid,
		Items: []entity.OrderItem{
			{ID: "pi1", OrderID: "parent-1", VariantID: "v1", Name: "Shoe 42",
				Quantity: 2, UnitPrice: decimal.NewFromInt(1400), UnitCost: decimal.NewFromInt(900), FulfilledQty: 2},
		},
		DeliveredAt: &now,
		CreatedAt:   now,
	}
	store.Orders[o.ID] = o
	return o.ID
}

func TestReconcileExchange(t *testing.T) {
	store, svc := newService()
	parentID := seedDelivered(store)

	res, err := svc.Reconcile(context.Background(), exchange.ReconcileInput{
		OriginalOrderID: parentID,
		ReturnItems:     []exchange.ReturnItemInput{{VariantID: "v1", Quantity: 1}},
		NewItems:        []exchange.NewItemInput{{VariantID: "v2", Quantity: 1}},
		Reason:          "size too small",
		Actor:           "staff-1",
	})
	require.NoError(t, err)
	assert.Equal(t, entity.ExchangeKindExchange, res.Kind)

	// Return leg priced at the parent snapshot, new leg at the current price.
	assert.True(t, res.ReturnTotal.Equal(decimal.NewFromInt(1400)), "got %s", res.ReturnTotal)
	assert.True(t, res.NewTotal.Equal(decimal.NewFromInt(1600)))
	assert.True(t, res.NetAmount.Equal(decimal.NewFromInt(200)), "customer owes the difference")

	child := res.Order
	assert.True(t, strings.HasPrefix(child.OrderNumber, "EX-"), "got %s", child.OrderNumber)
	assert.Equal(t, entity.StatusConverted, child.Status)
	require.NotNil(t, child.ParentOrderID)
	assert.Equal(t, parentID, *child.ParentOrderID)
	require.Len(t, child.Items, 2)

	// Return leg: negative quantity, waiting for pickup, no stock effect yet.
	ret := child.Items[0]
	assert.Equal(t, -1, ret.Quantity)
	assert.Equal(t, entity.PickupPending, ret.PickupStatus)
	assert.True(t, ret.UnitPrice.Equal(decimal.NewFromInt(1400)))
	assert.Equal(t, 10, store.Variants["v1"].SellableStock)

	// New leg deducted immediately.
	assert.Equal(t, 4, store.Variants["v2"].SellableStock)

	// Lineage logged on both sides.
	parentLogs, err := store.OrderLogRepo().ListByOrder(parentID)
	require.NoError(t, err)
	require.Len(t, parentLogs, 1)
	assert.Contains(t, parentLogs[0].Reason, child.OrderNumber)
	childLogs, err := store.OrderLogRepo().ListByOrder(child.ID)
	require.NoError(t, err)
	require.Len(t, childLogs, 1)
}

func TestReconcileClassification(t *testing.T) {
	t.Run("refund", func(t *testing.T) {
		store, svc := newService()
		parentID := seedDelivered(store)

		res, err := svc.Reconcile(context.Background(), exchange.ReconcileInput{
			OriginalOrderID: parentID,
			ReturnItems:     []exchange.ReturnItemInput{{VariantID: "v1", Quantity: 2}},
			Reason:          "changed mind",
			Actor:           "staff-1",
		})
		require.NoError(t, err)
		assert.Equal(t, entity.ExchangeKindRefund, res.Kind)
		assert.True(t, res.NetAmount.Equal(decimal.NewFromInt(-2800)), "refund owed to customer")
	})

	t.Run("addon", func(t *testing.T) {
		store, svc := newService()
		parentID := seedDelivered(store)

		res, err := svc.Reconcile(context.Background(), exchange.ReconcileInput{
			OriginalOrderID: parentID,
			NewItems:        []exchange.NewItemInput{{VariantID: "v2", Quantity: 2}},
			Reason:          "wants a second pair",
			Actor:           "staff-1",
		})
		require.NoError(t, err)
		assert.Equal(t, entity.ExchangeKindAddon, res.Kind)
		assert.True(t, res.NetAmount.Equal(decimal.NewFromInt(3200)))
		assert.Equal(t, 3, store.Variants["v2"].SellableStock)
	})
}

func TestReconcileRequiresDeliveredParent(t *testing.T) {
	store, svc := newService()
	parentID := seedDelivered(store)
	o := store.Orders[parentID]
	o.Status = entity.StatusOutForDelivery
	store.Orders[parentID] = o

	_, err := svc.Reconcile(context.Background(), exchange.ReconcileInput{
		OriginalOrderID: parentID,
		ReturnItems:     []exchange.ReturnItemInput{{VariantID: "v1", Quantity: 1}},
		Reason:          "size",
		Actor:           "staff-1",
	})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestReconcileValidation(t *testing.T) {
	store, svc := newService()
	parentID := seedDelivered(store)
	ctx := context.Background()

	cases := []struct {
		name  string
		in    exchange.ReconcileInput
		field string
	}{
		{
			name:  "no legs",
			in:    exchange.ReconcileInput{OriginalOrderID: parentID, Reason: "x", Actor: "staff-1"},
			field: "items",
		},
		{
			name: "no reason",
			in: exchange.ReconcileInput{OriginalOrderID: parentID,
				ReturnItems: []exchange.ReturnItemInput{{VariantID: "v1", Quantity: 1}}, Actor: "staff-1"},
			field: "reason",
		},
		{
			name: "return variant not on parent",
			in: exchange.ReconcileInput{OriginalOrderID: parentID,
				ReturnItems: []exchange.ReturnItemInput{{VariantID: "v2", Quantity: 1}}, Reason: "x", Actor: "staff-1"},
			field: "return_items.variant_id",
		},
		{
			name: "return more than ordered",
			in: exchange.ReconcileInput{OriginalOrderID: parentID,
				ReturnItems: []exchange.ReturnItemInput{{VariantID: "v1", Quantity: 3}}, Reason: "x", Actor: "staff-1"},
			field: "return_items.quantity",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Reconcile(ctx, tc.in)
			var verr *domain.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tc.field, verr.Field)
		})
	}
}

func TestReconcileInsufficientStockRollsBack(t *testing.T) {
	store, svc := newService()
	parentID := seedDelivered(store)

	_, err := svc.Reconcile(context.Background(), exchange.ReconcileInput{
		OriginalOrderID: parentID,
		NewItems:        []exchange.NewItemInput{{VariantID: "v2", Quantity: 6}},
		Reason:          "bulk add-on",
		Actor:           "staff-1",
	})
	var stockErr *domain.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 5, stockErr.Available)

	// Nothing persisted: no child order, no logs, stock untouched.
	assert.Len(t, store.Orders, 1)
	assert.Empty(t, store.OrderLogs)
	assert.Equal(t, 5, store.Variants["v2"].SellableStock)
}

func TestReconcileAvailabilityCountsReservations(t *testing.T) {
	store, svc := newService()
	parentID := seedDelivered(store)
	v := store.Variants["v2"]
	v.ReservedStock = 4
	store.Variants["v2"] = v

	// 5 sellable minus 4 reserved leaves 1 available.
	_, err := svc.Reconcile(context.Background(), exchange.ReconcileInput{
		OriginalOrderID: parentID,
		NewItems:        []exchange.NewItemInput{{VariantID: "v2", Quantity: 2}},
		Reason:          "add-on",
		Actor:           "staff-1",
	})
	var stockErr *domain.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 1, stockErr.Available)
}

func TestSettlePickup(t *testing.T) {
	store, svc := newService()
	parentID := seedDelivered(store)
	ctx := context.Background()

	res, err := svc.Reconcile(ctx, exchange.ReconcileInput{
		OriginalOrderID: parentID,
		ReturnItems:     []exchange.ReturnItemInput{{VariantID: "v1", Quantity: 2}},
		Reason:          "changed mind",
		Actor:           "staff-1",
	})
	require.NoError(t, err)
	leg := res.Order.Items[0]

	err = svc.SettlePickup(ctx, exchange.SettleInput{
		ExchangeOrderID: res.Order.ID,
		Results:         []exchange.PickupResult{{OrderItemID: leg.ID, Outcome: entity.QCOutcomeDamaged, Quantity: 2}},
		Actor:           "staff-1",
	})
	require.NoError(t, err)

	// Damaged units never rejoin sellable.
	v := store.Variants["v1"]
	assert.Equal(t, 10, v.SellableStock)
	assert.Equal(t, 2, v.DamagedStock)

	stored := store.Orders[res.Order.ID]
	assert.Equal(t, entity.PickupSettled, stored.Items[0].PickupStatus)
	assert.Equal(t, 2, stored.Items[0].FulfilledQty)
}

func TestSettlePickupGoodRestoresSellable(t *testing.T) {
	store, svc := newService()
	parentID := seedDelivered(store)
	ctx := context.Background()

	res, err := svc.Reconcile(ctx, exchange.ReconcileInput{
		OriginalOrderID: parentID,
		ReturnItems:     []exchange.ReturnItemInput{{VariantID: "v1", Quantity: 1}},
		Reason:          "size",
		Actor:           "staff-1",
	})
	require.NoError(t, err)
	leg := res.Order.Items[0]

	err = svc.SettlePickup(ctx, exchange.SettleInput{
		ExchangeOrderID: res.Order.ID,
		Results:         []exchange.PickupResult{{OrderItemID: leg.ID, Outcome: entity.QCOutcomeGood, Quantity: 1}},
		Actor:           "staff-1",
	})
	require.NoError(t, err)
	assert.Equal(t, 11, store.Variants["v1"].SellableStock)
}

func TestSettlePickupMissingRestoresNothing(t *testing.T) {
	store, svc := newService()
	parentID := seedDelivered(store)
	ctx := context.Background()

	res, err := svc.Reconcile(ctx, exchange.ReconcileInput{
		OriginalOrderID: parentID,
		ReturnItems:     []exchange.ReturnItemInput{{VariantID: "v1", Quantity: 1}},
		Reason:          "size",
		Actor:           "staff-1",
	})
	require.NoError(t, err)
	leg := res.Order.Items[0]

	err = svc.SettlePickup(ctx, exchange.SettleInput{
		ExchangeOrderID: res.Order.ID,
		Results:         []exchange.PickupResult{{OrderItemID: leg.ID, Outcome: entity.QCOutcomeMissing, Quantity: 1}},
		Actor:           "staff-1",
	})
	require.NoError(t, err)

	v := store.Variants["v1"]
	assert.Equal(t, 10, v.SellableStock)
	assert.Equal(t, 0, v.DamagedStock)
	assert.Equal(t, entity.PickupSettled, store.Orders[res.Order.ID].Items[0].PickupStatus)
}

func TestSettlePickupOnlyOnce(t *testing.T) {
	store, svc := newService()
	parentID := seedDelivered(store)
	ctx := context.Background()

	res, err := svc.Reconcile(ctx, exchange.ReconcileInput{
		OriginalOrderID: parentID,
		ReturnItems:     []exchange.ReturnItemInput{{VariantID: "v1", Quantity: 1}},
		Reason:          "size",
		Actor:           "staff-1",
	})
	require.NoError(t, err)
	leg := res.Order.Items[0]

	settle := exchange.SettleInput{
		ExchangeOrderID: res.Order.ID,
		Results:         []exchange.PickupResult{{OrderItemID: leg.ID, Outcome: entity.QCOutcomeGood, Quantity: 1}},
		Actor:           "staff-1",
	}
	require.NoError(t, svc.SettlePickup(ctx, settle))

	err = svc.SettlePickup(ctx, settle)
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Equal(t, 11, store.Variants["v1"].SellableStock, "no double restoration")
}

func TestSettlePickupRejectsNonExchangeOrder(t *testing.T) {
	store, svc := newService()
	parentID := seedDelivered(store)

	err := svc.SettlePickup(context.Background(), exchange.SettleInput{
		ExchangeOrderID: parentID,
		Results:         []exchange.PickupResult{{OrderItemID: "pi1", Outcome: entity.QCOutcomeGood, Quantity: 1}},
		Actor:           "staff-1",
	})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "exchange_order_id", verr.Field)
}

func TestSettlePickupRejectsNewLeg(t *testing.T) {
	store, svc := newService()
	parentID := seedDelivered(store)
	ctx := context.Background()

	res, err := svc.Reconcile(ctx, exchange.ReconcileInput{
		OriginalOrderID: parentID,
		NewItems:        []exchange.NewItemInput{{VariantID: "v2", Quantity: 1}},
		Reason:          "add-on",
		Actor:           "staff-1",
	})
	require.NoError(t, err)

	err = svc.SettlePickup(ctx, exchange.SettleInput{
		ExchangeOrderID: res.Order.ID,
		Results:         []exchange.PickupResult{{OrderItemID: res.Order.Items[0].ID, Outcome: entity.QCOutcomeGood, Quantity: 1}},
		Actor:           "staff-1",
	})
	assert.ErrorIs(t, err, domain.ErrConflict)
}
