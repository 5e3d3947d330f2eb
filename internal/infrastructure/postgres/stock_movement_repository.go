package postgres

import (
	"context"
	"fmt"

	"github.com/pasalhq/pasal-erp/internal/domain/entity"
	"github.com/pasalhq/pasal-erp/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

// StockMovementRepo implements StockMovementRepository over PostgreSQL.
// Insert-only: the table has no update or delete path.
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository builds the movement adapter.
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

// Create appends one audit row.
func (r *StockMovementRepo) Create(m *entity.StockMovement) error {
	query := `
		INSERT INTO stock_movements (
			id, variant_id, bucket, delta, stock_after, causal_ref, reason, actor, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now())`
	_, err := r.q.Exec(context.Background(), query,
		m.ID, m.VariantID, m.Bucket, m.Delta, m.StockAfter, m.CausalRef, m.Reason, m.Actor)
	if err != nil {
		return fmt.Errorf("create stock movement: %w", err)
	}
	return nil
}

// ListByVariant returns the newest movements for a variant.
func (r *StockMovementRepo) ListByVariant(variantID string, limit int) ([]entity.StockMovement, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT id, variant_id, bucket, delta, stock_after, causal_ref, reason, actor, created_at
		FROM stock_movements WHERE variant_id = $1
		ORDER BY created_at DESC LIMIT $2`
	rows, err := r.q.Query(context.Background(), query, variantID, limit)
	if err != nil {
		return nil, fmt.Errorf("list stock movements: %w", err)
	}
	defer rows.Close()

	var movements []entity.StockMovement
	for rows.Next() {
		var m entity.StockMovement
		if err := rows.Scan(&m.ID, &m.VariantID, &m.Bucket, &m.Delta, &m.StockAfter,
			&m.CausalRef, &m.Reason, &m.Actor, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan stock movement: %w", err)
		}
		movements = append(movements, m)
	}
	return movements, rows.Err()
}

// ListByCausalRef returns every movement written for one causal document,
// oldest first.
func (r *StockMovementRepo) ListByCausalRef(causalRef string) ([]entity.StockMovement, error) {
	query := `
		SELECT id, variant_id, bucket, delta, stock_after, causal_ref, reason, actor, created_at
		FROM stock_movements WHERE causal_ref = $1
		ORDER BY created_at`
	rows, err := r.q.Query(context.Background(), query, causalRef)
	if err != nil {
		return nil, fmt.Errorf("list stock movements by ref: %w", err)
	}
	defer rows.Close()

	var movements []entity.StockMovement
	for rows.Next() {
		var m entity.StockMovement
		if err := rows.Scan(&m.ID, &m.VariantID, &m.Bucket, &m.Delta, &m.StockAfter,
			&m.CausalRef, &m.Reason, &m.Actor, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan stock movement: %w", err)
		}
		movements = append(movements, m)
	}
	return movements, rows.Err()
}
