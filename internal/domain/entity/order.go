package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order statuses. This list is the single source of truth for every layer
// (entities, state machine, DTO validation, HTTP). 17 values spanning the
// three fulfillment paths plus RTO and lost-in-transit.
const (
	StatusIntake            = "intake"
	StatusFollowUp          = "follow_up"
	StatusConverted         = "converted"
	StatusPacked            = "packed"
	StatusAssigned          = "assigned"
	StatusOutForDelivery    = "out_for_delivery"
	StatusHandoverToCourier = "handover_to_courier"
	StatusInTransit         = "in_transit"
	StatusStoreSale         = "store_sale"
	StatusDelivered         = "delivered"
	StatusReturnInitiated   = "return_initiated"
	StatusReturned          = "returned"
	StatusCancelled         = "cancelled"
	StatusRejected          = "rejected"
	StatusRTOInitiated      = "rto_initiated"
	StatusRTOReceived       = "rto_received"
	StatusLostInTransit     = "lost_in_transit"
)

// Fulfillment types. Immutable once set, except the guarded
// inside_valley <-> outside_valley reassignment.
const (
	FulfillmentInsideValley  = "inside_valley"
	FulfillmentOutsideValley = "outside_valley"
	FulfillmentStore         = "store"
)

// Payment methods and statuses.
const (
	PaymentCOD     = "cod"
	PaymentPrepaid = "prepaid"
	PaymentFonepay = "fonepay"

	PaymentStatusUnpaid   = "unpaid"
	PaymentStatusPaid     = "paid"
	PaymentStatusRefunded = "refunded"
)

// Exchange kinds for child orders created by reconciliation.
const (
	ExchangeKindExchange = "exchange" // both legs non-empty
	ExchangeKindRefund   = "refund"   // return-only
	ExchangeKindAddon    = "addon"    // new-only
)

// AllStatuses returns every valid order status.
func AllStatuses() []string {
	return []string{
		StatusIntake, StatusFollowUp, StatusConverted, StatusPacked,
		StatusAssigned, StatusOutForDelivery, StatusHandoverToCourier,
		StatusInTransit, StatusStoreSale, StatusDelivered,
		StatusReturnInitiated, StatusReturned, StatusCancelled,
		StatusRejected, StatusRTOInitiated, StatusRTOReceived,
		StatusLostInTransit,
	}
}

// IsValidStatus reports whether s is a known order status.
func IsValidStatus(s string) bool {
	for _, st := range AllStatuses() {
		if st == s {
			return true
		}
	}
	return false
}

// IsValidFulfillmentType reports whether t is a known fulfillment type.
func IsValidFulfillmentType(t string) bool {
	return t == FulfillmentInsideValley || t == FulfillmentOutsideValley || t == FulfillmentStore
}

// Order is the aggregate root: items, pricing snapshot and fulfillment
// metadata. Status is mutated only through the fulfillment state machine.
// Orders are soft-deleted, never hard-deleted.
type Order struct {
	ID              string
	OrderNumber     string
	FulfillmentType string
	Status          string

	CustomerName  string
	CustomerPhone string
	// Shipping snapshot: copied at creation, never re-derived from the customer.
	ShippingAddress  string
	ShippingCity     string
	ShippingDistrict string

	PaymentMethod string
	PaymentStatus string

	Subtotal       decimal.Decimal
	DeliveryCharge decimal.Decimal
	Discount       decimal.Decimal
	GrandTotal     decimal.Decimal

	// Logistics. RiderID for inside_valley, courier fields for outside_valley.
	RiderID           *string
	CourierPartner    *string
	CourierAWB        *string
	CourierTrackingID *string
	DestinationBranch *string

	// Exchange linkage: set on child orders spawned by reconciliation.
	ParentOrderID *string
	ExchangeKind  string // exchange | refund | addon; empty for normal orders

	Items []OrderItem

	Notes       string
	CreatedBy   string
	ConvertedAt *time.Time
	DeliveredAt *time.Time
	DeletedAt   *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsExchangeChild reports whether the order was spawned by an exchange
// reconciliation. Exchange children skip the coordinator's reserve/consume
// effects: their stock moves at reconcile and settlement time.
func (o *Order) IsExchangeChild() bool {
	return o.ParentOrderID != nil
}
