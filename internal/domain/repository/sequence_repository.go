package repository

import "time"

// SequenceRepository hands out gap-free per-day document numbers.
// Next must be called inside the transaction that persists the numbered
// document: the counter row is locked FOR UPDATE, so a rollback returns the
// number and no gap becomes visible. Never implemented as MAX+1.
type SequenceRepository interface {
	Next(prefix string, day time.Time) (int, error)
}
