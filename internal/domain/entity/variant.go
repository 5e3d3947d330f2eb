package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Variant is a sellable SKU. Stock counters are mutated only by the stock
// ledger; no other code path writes them. Variants are never deleted, only
// deactivated.
//
// Invariant: ReservedStock <= SellableStock after every committed operation.
type Variant struct {
	ID            string
	ProductID     string
	SKU           string
	Name          string
	CostPrice     decimal.Decimal
	SellingPrice  decimal.Decimal
	SellableStock int
	DamagedStock  int
	ReservedStock int
	ReorderLevel  int
	Active        bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Available returns the quantity free for new reservations (sellable - reserved).
func (v *Variant) Available() int {
	return v.SellableStock - v.ReservedStock
}
