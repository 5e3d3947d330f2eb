package entity

import "github.com/shopspring/decimal"

// QC outcomes for physically received return/RTO units.
const (
	QCOutcomeGood      = "good"       // restored to sellable
	QCOutcomeDamaged   = "damaged"    // moved to the damaged bucket
	QCOutcomeMissing   = "missing"    // no stock restoration
	QCOutcomeWrongItem = "wrong_item" // no stock restoration
)

// Pickup statuses for exchange return legs.
const (
	PickupPending = "pending_pickup"
	PickupSettled = "settled"
)

// OrderItem is one line of an order. UnitPrice and UnitCost are snapshots
// taken at order time and never re-read from the live variant. Quantity is
// negative on exchange return legs.
type OrderItem struct {
	ID           string
	OrderID      string
	VariantID    string
	Name         string // variant name snapshot
	Quantity     int    // signed; negative for exchange return legs
	UnitPrice    decimal.Decimal
	UnitCost     decimal.Decimal
	FulfilledQty int
	PickupStatus string // pending_pickup | settled; empty outside exchange return legs
}

// LineTotal returns quantity * unit price (negative for return legs).
func (i *OrderItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// IsValidQCOutcome reports whether o is a known QC outcome.
func IsValidQCOutcome(o string) bool {
	switch o {
	case QCOutcomeGood, QCOutcomeDamaged, QCOutcomeMissing, QCOutcomeWrongItem:
		return true
	}
	return false
}
