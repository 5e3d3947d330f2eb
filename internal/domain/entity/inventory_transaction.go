package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Inventory transaction types.
const (
	TransactionTypePurchase       = "purchase"
	TransactionTypePurchaseReturn = "purchase_return"
	TransactionTypeDamage         = "damage"
	TransactionTypeAdjustment     = "adjustment"
)

// Source buckets for transaction items.
const (
	SourceBucketFresh   = "fresh"
	SourceBucketDamaged = "damaged"
)

// TransactionStatus is the maker-checker state of an inventory transaction.
// The allowed transitions are closed: pending -> approved | rejected,
// approved -> voided. Rejected and voided are terminal.
type TransactionStatus string

const (
	TransactionPending  TransactionStatus = "pending"
	TransactionApproved TransactionStatus = "approved"
	TransactionRejected TransactionStatus = "rejected"
	TransactionVoided   TransactionStatus = "voided"
)

var transactionTransitions = map[TransactionStatus][]TransactionStatus{
	TransactionPending:  {TransactionApproved, TransactionRejected},
	TransactionApproved: {TransactionVoided},
	TransactionRejected: {},
	TransactionVoided:   {},
}

// CanTransition reports whether moving from s to target is allowed.
func (s TransactionStatus) CanTransition(target TransactionStatus) bool {
	for _, next := range transactionTransitions[s] {
		if next == target {
			return true
		}
	}
	return false
}

// IsValidTransactionType reports whether t is one of the four transaction types.
func IsValidTransactionType(t string) bool {
	switch t {
	case TransactionTypePurchase, TransactionTypePurchaseReturn, TransactionTypeDamage, TransactionTypeAdjustment:
		return true
	}
	return false
}

// InventoryTransaction is the header of one purchase / purchase_return /
// damage / adjustment event. It becomes immutable once approved or voided;
// rejected is terminal with no stock effect.
type InventoryTransaction struct {
	ID            string
	Type          string
	Status        TransactionStatus
	VendorID      *string // required for purchase/purchase_return
	InvoiceNumber string  // gap-free per-day sequence, e.g. PU-20260831-0007
	Reason        string  // required for purchase_return/damage/adjustment
	TotalAmount   decimal.Decimal
	Items         []TransactionItem
	CreatedBy     string
	ApprovedBy    *string
	ApprovedAt    *time.Time
	VoidedAt      *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// TransactionItem is one line of an inventory transaction. Quantity is
// signed: the per-variant sum of item quantities equals the net sellable
// ledger delta the approval applies (damage nets to zero across buckets).
type TransactionItem struct {
	ID            string
	TransactionID string
	VariantID     string
	Quantity      int // signed
	UnitCost      decimal.Decimal
	SourceBucket  string // fresh | damaged
	StockBefore   int    // sellable snapshot at approval
	StockAfter    int
}
