package entity

import "time"

// Stock buckets a ledger adjustment can target.
const (
	BucketSellable = "sellable"
	BucketDamaged  = "damaged"
	BucketReserved = "reserved"
)

// StockMovement is the immutable audit record written once per ledger
// mutation, in the same transaction as the counter update. Never updated
// or deleted.
type StockMovement struct {
	ID         string
	VariantID  string
	Bucket     string // sellable | damaged | reserved
	Delta      int    // signed
	StockAfter int    // resulting counter for the bucket
	CausalRef  string // order id or inventory transaction id
	Reason     string
	Actor      string // user id
	CreatedAt  time.Time
}
