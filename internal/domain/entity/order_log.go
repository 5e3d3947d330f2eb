package entity

import "time"

// OrderLog is one entry of the order's append-only audit trail: exactly one
// row per accepted transition. It is the system's only source of historical
// truth and is never rewritten.
type OrderLog struct {
	ID         string
	OrderID    string
	FromStatus string
	ToStatus   string
	Actor      string
	Reason     string
	CreatedAt  time.Time
}
