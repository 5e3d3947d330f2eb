package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/pasalhq/pasal-erp/internal/domain"
	"github.com/pasalhq/pasal-erp/internal/domain/entity"
	"github.com/pasalhq/pasal-erp/internal/domain/repository"
)

var _ repository.InventoryTransactionRepository = (*InventoryTransactionRepo)(nil)

// InventoryTransactionRepo implements InventoryTransactionRepository over
// PostgreSQL.
type InventoryTransactionRepo struct {
	q Querier
}

// NewInventoryTransactionRepository builds the transaction adapter.
func NewInventoryTransactionRepository(q Querier) *InventoryTransactionRepo {
	return &InventoryTransactionRepo{q: q}
}

const transactionColumns = `
	id, type, status, vendor_id, invoice_number, reason, total_amount,
	created_by, approved_by, approved_at, voided_at, created_at, updated_at`

func scanTransaction(row pgx.Row) (*entity.InventoryTransaction, error) {
	var t entity.InventoryTransaction
	err := row.Scan(
		&t.ID, &t.Type, &t.Status, &t.VendorID, &t.InvoiceNumber, &t.Reason,
		&t.TotalAmount, &t.CreatedBy, &t.ApprovedBy, &t.ApprovedAt, &t.VoidedAt,
		&t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Create inserts the header and all items.
func (r *InventoryTransactionRepo) Create(t *entity.InventoryTransaction) error {
	ctx := context.Background()
	query := `
		INSERT INTO inventory_transactions (
			id, type, status, vendor_id, invoice_number, reason, total_amount,
			created_by, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now(), now())`
	_, err := r.q.Exec(ctx, query,
		t.ID, t.Type, t.Status, t.VendorID, t.InvoiceNumber, t.Reason, t.TotalAmount, t.CreatedBy)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("create transaction: %w", err)
	}

	itemQuery := `
		INSERT INTO transaction_items (
			id, transaction_id, variant_id, quantity, unit_cost, source_bucket,
			stock_before, stock_after
		) VALUES ($1, $2, $3, $4, $5, $6, 0, 0)`
	for i := range t.Items {
		it := &t.Items[i]
		if _, err := r.q.Exec(ctx, itemQuery,
			it.ID, t.ID, it.VariantID, it.Quantity, it.UnitCost, it.SourceBucket); err != nil {
			return fmt.Errorf("create transaction item: %w", err)
		}
	}
	return nil
}

func (r *InventoryTransactionRepo) loadItems(t *entity.InventoryTransaction) error {
	query := `
		SELECT id, transaction_id, variant_id, quantity, unit_cost, source_bucket,
			stock_before, stock_after
		FROM transaction_items WHERE transaction_id = $1
		ORDER BY id`
	rows, err := r.q.Query(context.Background(), query, t.ID)
	if err != nil {
		return fmt.Errorf("load transaction items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var it entity.TransactionItem
		if err := rows.Scan(&it.ID, &it.TransactionID, &it.VariantID, &it.Quantity,
			&it.UnitCost, &it.SourceBucket, &it.StockBefore, &it.StockAfter); err != nil {
			return fmt.Errorf("scan transaction item: %w", err)
		}
		t.Items = append(t.Items, it)
	}
	return rows.Err()
}

// GetByID loads a transaction with its items.
func (r *InventoryTransactionRepo) GetByID(id string) (*entity.InventoryTransaction, error) {
	query := `SELECT` + transactionColumns + ` FROM inventory_transactions WHERE id = $1`
	t, err := scanTransaction(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get transaction: %w", err)
	}
	if err := r.loadItems(t); err != nil {
		return nil, err
	}
	return t, nil
}

// GetForUpdate loads a transaction with items and locks the header row.
// Concurrent approve/reject/void calls on the same transaction serialize here.
func (r *InventoryTransactionRepo) GetForUpdate(id string) (*entity.InventoryTransaction, error) {
	query := `SELECT` + transactionColumns + ` FROM inventory_transactions WHERE id = $1 FOR UPDATE`
	t, err := scanTransaction(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get transaction for update: %w", err)
	}
	if err := r.loadItems(t); err != nil {
		return nil, err
	}
	return t, nil
}

// UpdateStatus persists status, reviewer and review timestamps.
func (r *InventoryTransactionRepo) UpdateStatus(t *entity.InventoryTransaction) error {
	query := `
		UPDATE inventory_transactions
		SET status = $2, reason = $3, approved_by = $4, approved_at = $5, voided_at = $6, updated_at = now()
		WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query,
		t.ID, t.Status, t.Reason, t.ApprovedBy, t.ApprovedAt, t.VoidedAt)
	if err != nil {
		return fmt.Errorf("update transaction status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// UpdateItemSnapshots persists the pre/post stock snapshots taken at approval.
func (r *InventoryTransactionRepo) UpdateItemSnapshots(item *entity.TransactionItem) error {
	query := `UPDATE transaction_items SET stock_before = $2, stock_after = $3 WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query, item.ID, item.StockBefore, item.StockAfter)
	if err != nil {
		return fmt.Errorf("update item snapshots: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List returns headers filtered by status and/or type, newest first. Items
// are not loaded.
func (r *InventoryTransactionRepo) List(status, txType string, limit int) ([]entity.InventoryTransaction, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT` + transactionColumns + `
		FROM inventory_transactions
		WHERE ($1 = '' OR status = $1) AND ($2 = '' OR type = $2)
		ORDER BY created_at DESC LIMIT $3`
	rows, err := r.q.Query(context.Background(), query, status, txType, limit)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var transactions []entity.InventoryTransaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		transactions = append(transactions, *t)
	}
	return transactions, rows.Err()
}
