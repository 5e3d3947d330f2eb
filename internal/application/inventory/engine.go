package inventory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pasalhq/pasal-erp/internal/application/ledger"
	"github.com/pasalhq/pasal-erp/internal/application/ports"
	"github.com/pasalhq/pasal-erp/internal/domain"
	"github.com/pasalhq/pasal-erp/internal/domain/entity"
	"github.com/pasalhq/pasal-erp/pkg/logger"
)

// Invoice number prefixes per transaction type.
var invoicePrefixes = map[string]string{
	entity.TransactionTypePurchase:       "PU",
	entity.TransactionTypePurchaseReturn: "PR",
	entity.TransactionTypeDamage:         "DM",
	entity.TransactionTypeAdjustment:     "AD",
}

// Engine runs the maker-checker workflow for stock-affecting transactions:
// created pending, then approved (stock applied), rejected (no effect) or
// voided (compensating reversal). Every stock effect goes through the ledger
// inside one database transaction.
type Engine struct {
	tx     ports.TxRunner
	ledger *ledger.Ledger
	log    *logger.Logger
}

// NewEngine builds the transaction engine.
func NewEngine(tx ports.TxRunner, ldg *ledger.Ledger, log *logger.Logger) *Engine {
	if log == nil {
		log = logger.Nop()
	}
	return &Engine{tx: tx, ledger: ldg, log: log}
}

// CreateItemInput is one requested transaction line. Quantity is entered
// positive; the engine signs it according to the transaction type.
type CreateItemInput struct {
	VariantID    string
	Quantity     int
	UnitCost     decimal.Decimal
	SourceBucket string // fresh | damaged; defaults to fresh
}

// CreateInput is a requested maker-checker transaction.
type CreateInput struct {
	Type     string
	VendorID string // required for purchase and purchase_return
	Reason   string
	Actor    string
	Items    []CreateItemInput
}

// Create validates the request and persists a pending transaction with its
// gap-free invoice number. No stock is touched until approval.
func (e *Engine) Create(ctx context.Context, in CreateInput) (*entity.InventoryTransaction, error) {
	if err := validateCreate(in); err != nil {
		return nil, err
	}

	now := time.Now()
	t := &entity.InventoryTransaction{
		ID:        uuid.New().String(),
		Type:      in.Type,
		Status:    entity.TransactionPending,
		Reason:    strings.TrimSpace(in.Reason),
		CreatedBy: in.Actor,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if in.VendorID != "" {
		vendorID := in.VendorID
		t.VendorID = &vendorID
	}

	total := decimal.Zero
	for _, it := range in.Items {
		qty := signedQuantity(in.Type, it.Quantity)
		bucket := it.SourceBucket
		if bucket == "" {
			bucket = entity.SourceBucketFresh
		}
		item := entity.TransactionItem{
			ID:            uuid.New().String(),
			TransactionID: t.ID,
			VariantID:     it.VariantID,
			Quantity:      qty,
			UnitCost:      it.UnitCost,
			SourceBucket:  bucket,
		}
		t.Items = append(t.Items, item)
		total = total.Add(it.UnitCost.Mul(decimal.NewFromInt(int64(qty))))
	}
	t.TotalAmount = total

	err := e.tx.Run(ctx, func(r ports.Repos) error {
		// The sequence row is locked in this transaction, so the number only
		// becomes visible on commit and stays gap-free on rollback.
		seq, err := r.Sequences.Next(invoicePrefixes[in.Type], now)
		if err != nil {
			return err
		}
		t.InvoiceNumber = fmt.Sprintf("%s-%s-%04d", invoicePrefixes[in.Type], now.Format("20060102"), seq)
		return r.Transactions.Create(t)
	})
	if err != nil {
		return nil, err
	}

	e.log.Info().
		Str("transaction_id", t.ID).
		Str("type", t.Type).
		Str("invoice_number", t.InvoiceNumber).
		Msg("inventory transaction created")
	return t, nil
}

// Approve applies the net stock deltas of a pending transaction and moves the
// vendor balance, all in one database transaction. Insufficient stock on any
// item rolls back the whole approval.
func (e *Engine) Approve(ctx context.Context, id, actor string) (*entity.InventoryTransaction, error) {
	var approved *entity.InventoryTransaction
	err := e.tx.Run(ctx, func(r ports.Repos) error {
		t, err := r.Transactions.GetForUpdate(id)
		if err != nil {
			return err
		}
		if t == nil {
			return domain.ErrNotFound
		}
		if !t.Status.CanTransition(entity.TransactionApproved) {
			return fmt.Errorf("transaction %s is %s: %w", t.ID, t.Status, domain.ErrConflict)
		}
		if t.CreatedBy == actor {
			return fmt.Errorf("transaction %s cannot be approved by its creator: %w", t.ID, domain.ErrForbidden)
		}

		for i := range t.Items {
			if err := e.applyItem(r, t, &t.Items[i], false); err != nil {
				return err
			}
			if err := r.Transactions.UpdateItemSnapshots(&t.Items[i]); err != nil {
				return err
			}
		}

		if err := e.moveVendorBalance(r, t, t.TotalAmount); err != nil {
			return err
		}

		now := time.Now()
		t.Status = entity.TransactionApproved
		t.ApprovedBy = &actor
		t.ApprovedAt = &now
		t.UpdatedAt = now
		if err := r.Transactions.UpdateStatus(t); err != nil {
			return err
		}
		approved = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.log.Info().
		Str("transaction_id", approved.ID).
		Str("type", approved.Type).
		Str("actor", actor).
		Msg("inventory transaction approved")
	return approved, nil
}

// Reject marks a pending transaction rejected. No stock effect. Rejecting a
// transaction that is not pending errors and changes nothing.
func (e *Engine) Reject(ctx context.Context, id, actor, reason string) (*entity.InventoryTransaction, error) {
	var rejected *entity.InventoryTransaction
	err := e.tx.Run(ctx, func(r ports.Repos) error {
		t, err := r.Transactions.GetForUpdate(id)
		if err != nil {
			return err
		}
		if t == nil {
			return domain.ErrNotFound
		}
		if !t.Status.CanTransition(entity.TransactionRejected) {
			return fmt.Errorf("transaction %s is %s: %w", t.ID, t.Status, domain.ErrConflict)
		}
		if strings.TrimSpace(reason) != "" {
			t.Reason = t.Reason + " | rejected: " + strings.TrimSpace(reason)
		}
		t.Status = entity.TransactionRejected
		t.UpdatedAt = time.Now()
		if err := r.Transactions.UpdateStatus(t); err != nil {
			return err
		}
		rejected = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rejected, nil
}

// Void reverses an approved transaction with compensating ledger calls that
// reference the same transaction id.
func (e *Engine) Void(ctx context.Context, id, actor, reason string) (*entity.InventoryTransaction, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, &domain.ValidationError{Field: "reason", Message: "required to void a transaction"}
	}
	var voided *entity.InventoryTransaction
	err := e.tx.Run(ctx, func(r ports.Repos) error {
		t, err := r.Transactions.GetForUpdate(id)
		if err != nil {
			return err
		}
		if t == nil {
			return domain.ErrNotFound
		}
		if !t.Status.CanTransition(entity.TransactionVoided) {
			return fmt.Errorf("transaction %s is %s: %w", t.ID, t.Status, domain.ErrConflict)
		}

		for i := range t.Items {
			if err := e.applyItem(r, t, &t.Items[i], true); err != nil {
				return err
			}
		}

		if err := e.moveVendorBalance(r, t, t.TotalAmount.Neg()); err != nil {
			return err
		}

		now := time.Now()
		t.Status = entity.TransactionVoided
		t.Reason = t.Reason + " | voided: " + strings.TrimSpace(reason)
		t.VoidedAt = &now
		t.UpdatedAt = now
		if err := r.Transactions.UpdateStatus(t); err != nil {
			return err
		}
		voided = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.log.Info().
		Str("transaction_id", voided.ID).
		Str("actor", actor).
		Msg("inventory transaction voided")
	return voided, nil
}

// Get returns a transaction with items.
func (e *Engine) Get(ctx context.Context, id string) (*entity.InventoryTransaction, error) {
	var t *entity.InventoryTransaction
	err := e.tx.Run(ctx, func(r ports.Repos) error {
		var err error
		t, err = r.Transactions.GetByID(id)
		return err
	})
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, domain.ErrNotFound
	}
	return t, nil
}

// List returns transactions filtered by status and/or type.
func (e *Engine) List(ctx context.Context, status, txType string, limit int) ([]entity.InventoryTransaction, error) {
	var out []entity.InventoryTransaction
	err := e.tx.Run(ctx, func(r ports.Repos) error {
		var err error
		out, err = r.Transactions.List(status, txType, limit)
		return err
	})
	return out, err
}

// applyItem issues the ledger calls for one item. reverse=true negates every
// delta (void compensation). Snapshots are filled on the forward pass.
func (e *Engine) applyItem(r ports.Repos, t *entity.InventoryTransaction, item *entity.TransactionItem, reverse bool) error {
	sign := 1
	reason := t.Type
	if reverse {
		sign = -1
		reason = "void " + t.Type
	}

	adjust := func(bucket string, delta int) (*entity.StockMovement, error) {
		return e.ledger.Adjust(r.Variants, r.Movements, ledger.AdjustInput{
			VariantID: item.VariantID,
			Bucket:    bucket,
			Delta:     delta * sign,
			CausalRef: t.ID,
			Reason:    reason,
			Actor:     t.CreatedBy,
		})
	}

	switch t.Type {
	case entity.TransactionTypePurchase:
		mov, err := adjust(entity.BucketSellable, item.Quantity)
		if err != nil {
			return err
		}
		snapshot(item, mov, reverse)
	case entity.TransactionTypePurchaseReturn:
		// Validated against current warehouse stock, not the purchase ledger.
		bucket := entity.BucketSellable
		if item.SourceBucket == entity.SourceBucketDamaged {
			bucket = entity.BucketDamaged
		}
		mov, err := adjust(bucket, item.Quantity)
		if err != nil {
			return err
		}
		snapshot(item, mov, reverse)
	case entity.TransactionTypeDamage:
		// Quarantine, not loss: units leave sellable and enter damaged.
		mov, err := adjust(entity.BucketSellable, item.Quantity)
		if err != nil {
			return err
		}
		if _, err := adjust(entity.BucketDamaged, -item.Quantity); err != nil {
			return err
		}
		snapshot(item, mov, reverse)
	case entity.TransactionTypeAdjustment:
		mov, err := adjust(entity.BucketSellable, item.Quantity)
		if err != nil {
			return err
		}
		snapshot(item, mov, reverse)
	default:
		return &domain.ValidationError{Field: "type", Message: "unknown transaction type " + t.Type}
	}
	return nil
}

func snapshot(item *entity.TransactionItem, mov *entity.StockMovement, reverse bool) {
	if reverse {
		return
	}
	item.StockAfter = mov.StockAfter
	item.StockBefore = mov.StockAfter - mov.Delta
}

// moveVendorBalance shifts the payable balance for purchase/purchase_return.
// amount is signed: positive purchase totals raise the payable, negative
// return totals lower it; void passes the negation.
func (e *Engine) moveVendorBalance(r ports.Repos, t *entity.InventoryTransaction, amount decimal.Decimal) error {
	if t.VendorID == nil {
		return nil
	}
	v, err := r.Vendors.GetForUpdate(*t.VendorID)
	if err != nil {
		return err
	}
	if v == nil {
		return domain.ErrNotFound
	}
	return r.Vendors.UpdateBalance(v.ID, v.Balance.Add(amount))
}

// signedQuantity applies the type's sign convention to an entered quantity.
func signedQuantity(txType string, qty int) int {
	switch txType {
	case entity.TransactionTypePurchaseReturn, entity.TransactionTypeDamage:
		return -qty
	}
	return qty
}

func validateCreate(in CreateInput) error {
	if !entity.IsValidTransactionType(in.Type) {
		return &domain.ValidationError{Field: "type", Message: "unknown transaction type " + in.Type}
	}
	if len(in.Items) == 0 {
		return &domain.ValidationError{Field: "items", Message: "at least one item is required"}
	}

	reason := strings.TrimSpace(in.Reason)
	switch in.Type {
	case entity.TransactionTypePurchase:
		if in.VendorID == "" {
			return &domain.ValidationError{Field: "vendor_id", Message: "required for purchase"}
		}
	case entity.TransactionTypePurchaseReturn:
		if in.VendorID == "" {
			return &domain.ValidationError{Field: "vendor_id", Message: "required for purchase_return"}
		}
		if len(reason) < 5 {
			return &domain.ValidationError{Field: "reason", Message: "at least 5 characters required for purchase_return"}
		}
	case entity.TransactionTypeDamage, entity.TransactionTypeAdjustment:
		if reason == "" {
			return &domain.ValidationError{Field: "reason", Message: "required for " + in.Type}
		}
	}

	for i, it := range in.Items {
		if it.VariantID == "" {
			return &domain.ValidationError{Field: fmt.Sprintf("items[%d].variant_id", i), Message: "required"}
		}
		switch in.Type {
		case entity.TransactionTypeAdjustment:
			if it.Quantity == 0 {
				return &domain.ValidationError{Field: fmt.Sprintf("items[%d].quantity", i), Message: "must be non-zero"}
			}
		default:
			if it.Quantity <= 0 {
				return &domain.ValidationError{Field: fmt.Sprintf("items[%d].quantity", i), Message: "must be positive"}
			}
		}
		if in.Type == entity.TransactionTypePurchase && !it.UnitCost.GreaterThan(decimal.Zero) {
			return &domain.ValidationError{Field: fmt.Sprintf("items[%d].unit_cost", i), Message: "must be positive for purchase"}
		}
		if it.SourceBucket != "" && it.SourceBucket != entity.SourceBucketFresh && it.SourceBucket != entity.SourceBucketDamaged {
			return &domain.ValidationError{Field: fmt.Sprintf("items[%d].source_bucket", i), Message: "must be fresh or damaged"}
		}
	}
	return nil
}
