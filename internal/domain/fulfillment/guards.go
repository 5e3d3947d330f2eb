package fulfillment

import (
	"strings"

	"github.com/pasalhq/pasal-erp/internal/domain"
	"github.com/pasalhq/pasal-erp/internal/domain/entity"
)

// reasonRequired lists the targets that may not fire without a non-empty reason.
var reasonRequired = map[string]bool{
	entity.StatusCancelled:       true,
	entity.StatusRejected:        true,
	entity.StatusReturnInitiated: true,
	entity.StatusReturned:        true,
	entity.StatusRTOInitiated:    true,
	entity.StatusRTOReceived:     true,
	entity.StatusLostInTransit:   true,
}

// CheckGuards enforces the rules beyond table membership. Table membership is
// checked first by the caller; guards assume the transition is in the table.
func CheckGuards(o *entity.Order, target, reason string) error {
	if reasonRequired[target] && strings.TrimSpace(reason) == "" {
		return &domain.MissingGuardDataError{Field: "reason", Transition: target}
	}

	switch target {
	case entity.StatusAssigned, entity.StatusOutForDelivery:
		if o.RiderID == nil || *o.RiderID == "" {
			return &domain.MissingGuardDataError{Field: "rider_id", Transition: target}
		}
	case entity.StatusHandoverToCourier:
		if o.CourierPartner == nil || *o.CourierPartner == "" {
			return &domain.MissingGuardDataError{Field: "courier_partner", Transition: target}
		}
		hasAWB := o.CourierAWB != nil && *o.CourierAWB != ""
		hasTracking := o.CourierTrackingID != nil && *o.CourierTrackingID != ""
		if !hasAWB && !hasTracking {
			return &domain.MissingGuardDataError{Field: "courier_awb", Transition: target}
		}
	}
	return nil
}

// CheckReassignment guards the administrative fulfillment type change.
// Only inside_valley <-> outside_valley, and only before dispatch.
func CheckReassignment(o *entity.Order, newType string) error {
	if o.FulfillmentType == entity.FulfillmentStore || newType == entity.FulfillmentStore {
		return &domain.ValidationError{Field: "fulfillment_type", Message: "store orders cannot be reassigned"}
	}
	if !entity.IsValidFulfillmentType(newType) {
		return &domain.ValidationError{Field: "fulfillment_type", Message: "unknown fulfillment type " + newType}
	}
	if newType == o.FulfillmentType {
		return &domain.ValidationError{Field: "fulfillment_type", Message: "order already has this fulfillment type"}
	}
	switch o.Status {
	case entity.StatusIntake, entity.StatusFollowUp, entity.StatusConverted, entity.StatusPacked:
		return nil
	}
	return &domain.ValidationError{Field: "status", Message: "fulfillment type can only change before dispatch, current status " + o.Status}
}
