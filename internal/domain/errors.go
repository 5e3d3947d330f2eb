package domain

import (
	"errors"
	"fmt"
)

// Domain sentinel errors (no external dependencies).
var (
	ErrNotFound           = errors.New("resource not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailAlreadyExists = errors.New("email already registered")
	ErrInvalidInput       = errors.New("invalid input")
	ErrDuplicate          = errors.New("duplicate resource")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("access denied")
	ErrConflict           = errors.New("conflict with current state")
)

// InsufficientStockError is returned when a ledger adjustment would leave a
// bucket below zero, or a reservation would exceed sellable stock.
// Requested and Available are surfaced so the caller can adjust quantities.
type InsufficientStockError struct {
	VariantID string
	Bucket    string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for variant %s (%s): requested %d, available %d",
		e.VariantID, e.Bucket, e.Requested, e.Available)
}

// IllegalTransitionError is returned when a status change is not in the
// allowed table for the order's fulfillment type. Never retried.
type IllegalTransitionError struct {
	From            string
	To              string
	FulfillmentType string
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("illegal transition %s -> %s for fulfillment type %s", e.From, e.To, e.FulfillmentType)
}

// MissingGuardDataError is returned when a transition requires a field
// (rider id, courier AWB, reason) that has not been set yet.
type MissingGuardDataError struct {
	Field      string
	Transition string
}

func (e *MissingGuardDataError) Error() string {
	return fmt.Sprintf("transition to %s requires %s", e.Transition, e.Field)
}

// ConcurrentModificationError signals lock contention or a version conflict
// on a row the operation needed. The whole operation may be retried once.
type ConcurrentModificationError struct {
	Entity string
	ID     string
	Err    error
}

func (e *ConcurrentModificationError) Error() string {
	return fmt.Sprintf("concurrent modification of %s %s: %v", e.Entity, e.ID, e.Err)
}

func (e *ConcurrentModificationError) Unwrap() error { return e.Err }

// ValidationError is returned for malformed input before any side effect.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}
