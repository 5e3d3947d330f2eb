package fulfillment_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pasalhq/pasal-erp/internal/domain"
	"github.com/pasalhq/pasal-erp/internal/domain/entity"
	"github.com/pasalhq/pasal-erp/internal/domain/fulfillment"
)

func TestForType(t *testing.T) {
	for _, ftype := range []string{
		entity.FulfillmentInsideValley,
		entity.FulfillmentOutsideValley,
		entity.FulfillmentStore,
	} {
		table, err := fulfillment.ForType(ftype)
		require.NoError(t, err)
		assert.Equal(t, ftype, table.Type())
	}

	_, err := fulfillment.ForType("air_drop")
	assert.Error(t, err)
}

func TestInsideValleyHappyPath(t *testing.T) {
	table, err := fulfillment.ForType(entity.FulfillmentInsideValley)
	require.NoError(t, err)

	path := []string{
		entity.StatusIntake, entity.StatusConverted, entity.StatusPacked,
		entity.StatusAssigned, entity.StatusOutForDelivery, entity.StatusDelivered,
	}
	for i := 0; i < len(path)-1; i++ {
		assert.True(t, table.Allowed(path[i], path[i+1]),
			"expected %s -> %s to be allowed", path[i], path[i+1])
	}
}

func TestOutsideValleyHappyPath(t *testing.T) {
	table, err := fulfillment.ForType(entity.FulfillmentOutsideValley)
	require.NoError(t, err)

	path := []string{
		entity.StatusIntake, entity.StatusConverted, entity.StatusPacked,
		entity.StatusHandoverToCourier, entity.StatusInTransit, entity.StatusDelivered,
	}
	for i := 0; i < len(path)-1; i++ {
		assert.True(t, table.Allowed(path[i], path[i+1]),
			"expected %s -> %s to be allowed", path[i], path[i+1])
	}

	// RTO flow once the parcel is with the courier.
	assert.True(t, table.Allowed(entity.StatusInTransit, entity.StatusRTOInitiated))
	assert.True(t, table.Allowed(entity.StatusRTOInitiated, entity.StatusRTOReceived))
	assert.True(t, table.Allowed(entity.StatusInTransit, entity.StatusLostInTransit))
}

func TestStoreSalePath(t *testing.T) {
	table, err := fulfillment.ForType(entity.FulfillmentStore)
	require.NoError(t, err)

	assert.True(t, table.Allowed(entity.StatusIntake, entity.StatusStoreSale))
	assert.True(t, table.Allowed(entity.StatusConverted, entity.StatusStoreSale))
	assert.True(t, table.Allowed(entity.StatusPacked, entity.StatusStoreSale))
	assert.True(t, table.Allowed(entity.StatusStoreSale, entity.StatusDelivered))

	// Store orders never touch rider or courier statuses.
	for _, from := range entity.AllStatuses() {
		assert.False(t, table.Allowed(from, entity.StatusAssigned))
		assert.False(t, table.Allowed(from, entity.StatusHandoverToCourier))
		assert.False(t, table.Allowed(from, entity.StatusOutForDelivery))
		assert.False(t, table.Allowed(from, entity.StatusInTransit))
	}
}

func TestDispatchWalkBack(t *testing.T) {
	table, err := fulfillment.ForType(entity.FulfillmentInsideValley)
	require.NoError(t, err)

	assert.True(t, table.Allowed(entity.StatusAssigned, entity.StatusPacked))
	assert.True(t, table.Allowed(entity.StatusOutForDelivery, entity.StatusAssigned))
}

// Every from/to pair not listed in a table must be rejected. Spot-checking a
// few is not enough; the closed-table property is the core guarantee.
func TestUnlistedTransitionsRejected(t *testing.T) {
	for _, ftype := range []string{
		entity.FulfillmentInsideValley,
		entity.FulfillmentOutsideValley,
		entity.FulfillmentStore,
	} {
		table, err := fulfillment.ForType(ftype)
		require.NoError(t, err)

		for _, from := range entity.AllStatuses() {
			allowed := make(map[string]bool)
			for _, to := range table.Next(from) {
				allowed[to] = true
			}
			for _, to := range entity.AllStatuses() {
				if allowed[to] {
					continue
				}
				assert.False(t, table.Allowed(from, to),
					"%s: %s -> %s must be rejected", ftype, from, to)
			}
		}
	}
}

func TestTerminalStatuses(t *testing.T) {
	for _, ftype := range []string{
		entity.FulfillmentInsideValley,
		entity.FulfillmentOutsideValley,
		entity.FulfillmentStore,
	} {
		table, err := fulfillment.ForType(ftype)
		require.NoError(t, err)

		for _, terminal := range []string{
			entity.StatusCancelled, entity.StatusRejected, entity.StatusReturned,
			entity.StatusRTOReceived, entity.StatusLostInTransit,
		} {
			assert.Empty(t, table.Next(terminal), "%s: %s must be terminal", ftype, terminal)
		}
	}
}

func TestNoSkippingAhead(t *testing.T) {
	table, err := fulfillment.ForType(entity.FulfillmentInsideValley)
	require.NoError(t, err)

	assert.False(t, table.Allowed(entity.StatusIntake, entity.StatusPacked))
	assert.False(t, table.Allowed(entity.StatusIntake, entity.StatusDelivered))
	assert.False(t, table.Allowed(entity.StatusConverted, entity.StatusAssigned))
	assert.False(t, table.Allowed(entity.StatusDelivered, entity.StatusDelivered))
}

func strPtr(s string) *string { return &s }

func TestGuardsReasonRequired(t *testing.T) {
	o := &entity.Order{FulfillmentType: entity.FulfillmentInsideValley, Status: entity.StatusIntake}

	err := fulfillment.CheckGuards(o, entity.StatusCancelled, "")
	var guard *domain.MissingGuardDataError
	require.ErrorAs(t, err, &guard)
	assert.Equal(t, "reason", guard.Field)

	assert.NoError(t, fulfillment.CheckGuards(o, entity.StatusCancelled, "customer changed mind"))
	assert.NoError(t, fulfillment.CheckGuards(o, entity.StatusConverted, ""))
}

func TestGuardsRiderAndCourier(t *testing.T) {
	o := &entity.Order{FulfillmentType: entity.FulfillmentInsideValley, Status: entity.StatusPacked}

	err := fulfillment.CheckGuards(o, entity.StatusAssigned, "")
	var guard *domain.MissingGuardDataError
	require.ErrorAs(t, err, &guard)
	assert.Equal(t, "rider_id", guard.Field)

	o.RiderID = strPtr("rider-1")
	assert.NoError(t, fulfillment.CheckGuards(o, entity.StatusAssigned, ""))

	co := &entity.Order{FulfillmentType: entity.FulfillmentOutsideValley, Status: entity.StatusPacked}
	err = fulfillment.CheckGuards(co, entity.StatusHandoverToCourier, "")
	require.ErrorAs(t, err, &guard)
	assert.Equal(t, "courier_partner", guard.Field)

	co.CourierPartner = strPtr("Pathao")
	err = fulfillment.CheckGuards(co, entity.StatusHandoverToCourier, "")
	require.ErrorAs(t, err, &guard)
	assert.Equal(t, "courier_awb", guard.Field)

	// Either AWB or tracking id satisfies the guard.
	co.CourierTrackingID = strPtr("TRK-991")
	assert.NoError(t, fulfillment.CheckGuards(co, entity.StatusHandoverToCourier, ""))
}

func TestReassignmentGuards(t *testing.T) {
	o := &entity.Order{FulfillmentType: entity.FulfillmentInsideValley, Status: entity.StatusConverted}
	assert.NoError(t, fulfillment.CheckReassignment(o, entity.FulfillmentOutsideValley))

	assert.Error(t, fulfillment.CheckReassignment(o, entity.FulfillmentStore))
	assert.Error(t, fulfillment.CheckReassignment(o, entity.FulfillmentInsideValley))

	storeOrder := &entity.Order{FulfillmentType: entity.FulfillmentStore, Status: entity.StatusIntake}
	assert.Error(t, fulfillment.CheckReassignment(storeOrder, entity.FulfillmentInsideValley))

	dispatched := &entity.Order{FulfillmentType: entity.FulfillmentInsideValley, Status: entity.StatusAssigned}
	assert.Error(t, fulfillment.CheckReassignment(dispatched, entity.FulfillmentOutsideValley))
}
