package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Vendor is a purchase supplier. Balance is the running payable amount:
// approving a purchase increases it, approving a purchase_return decreases
// it, voiding reverses it. It only moves inside the same DB transaction as
// the stock effect.
type Vendor struct {
	ID        string
	Name      string
	Phone     string
	PAN       string // Nepal tax registration number
	Address   string
	Balance   decimal.Decimal
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
