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

var _ repository.VariantRepository = (*VariantRepo)(nil)

// VariantRepo implements VariantRepository over PostgreSQL (pool or tx).
type VariantRepo struct {
	q Querier
}

// NewVariantRepository builds the variant adapter. Pass a pool or tx (Querier).
func NewVariantRepository(q Querier) *VariantRepo {
	return &VariantRepo{q: q}
}

const variantColumns = `
	id, product_id, sku, name, cost_price, selling_price,
	sellable_stock, damaged_stock, reserved_stock, reorder_level,
	active, created_at, updated_at`

func scanVariant(row pgx.Row) (*entity.Variant, error) {
	var v entity.Variant
	err := row.Scan(
		&v.ID, &v.ProductID, &v.SKU, &v.Name, &v.CostPrice, &v.SellingPrice,
		&v.SellableStock, &v.DamagedStock, &v.ReservedStock, &v.ReorderLevel,
		&v.Active, &v.CreatedAt, &v.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// Create inserts a variant.
func (r *VariantRepo) Create(v *entity.Variant) error {
	query := `
		INSERT INTO variants (
			id, product_id, sku, name, cost_price, selling_price,
			sellable_stock, damaged_stock, reserved_stock, reorder_level,
			active, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, now(), now())`
	_, err := r.q.Exec(context.Background(), query,
		v.ID, v.ProductID, v.SKU, v.Name, v.CostPrice, v.SellingPrice,
		v.SellableStock, v.DamagedStock, v.ReservedStock, v.ReorderLevel, v.Active,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("create variant: %w", err)
	}
	return nil
}

// GetByID loads a variant.
func (r *VariantRepo) GetByID(id string) (*entity.Variant, error) {
	query := `SELECT` + variantColumns + ` FROM variants WHERE id = $1`
	v, err := scanVariant(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get variant: %w", err)
	}
	return v, nil
}

// GetForUpdate loads a variant and locks its row (SELECT FOR UPDATE).
func (r *VariantRepo) GetForUpdate(id string) (*entity.Variant, error) {
	query := `SELECT` + variantColumns + ` FROM variants WHERE id = $1 FOR UPDATE`
	v, err := scanVariant(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get variant for update: %w", err)
	}
	return v, nil
}

// UpdateStock persists the three stock counters.
func (r *VariantRepo) UpdateStock(v *entity.Variant) error {
	query := `
		UPDATE variants
		SET sellable_stock = $2, damaged_stock = $3, reserved_stock = $4, updated_at = now()
		WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query,
		v.ID, v.SellableStock, v.DamagedStock, v.ReservedStock)
	if err != nil {
		return fmt.Errorf("update variant stock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Update persists names, prices and reorder level. Stock counters are not
// touched here.
func (r *VariantRepo) Update(v *entity.Variant) error {
	query := `
		UPDATE variants
		SET name = $2, cost_price = $3, selling_price = $4, reorder_level = $5, updated_at = now()
		WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query,
		v.ID, v.Name, v.CostPrice, v.SellingPrice, v.ReorderLevel)
	if err != nil {
		return fmt.Errorf("update variant: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Deactivate marks a variant inactive. Variants are never deleted.
func (r *VariantRepo) Deactivate(id string) error {
	query := `UPDATE variants SET active = false, updated_at = now() WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query, id)
	if err != nil {
		return fmt.Errorf("deactivate variant: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListByProduct returns all variants of a product.
func (r *VariantRepo) ListByProduct(productID string) ([]entity.Variant, error) {
	query := `SELECT` + variantColumns + ` FROM variants WHERE product_id = $1 ORDER BY sku`
	rows, err := r.q.Query(context.Background(), query, productID)
	if err != nil {
		return nil, fmt.Errorf("list variants: %w", err)
	}
	defer rows.Close()

	var variants []entity.Variant
	for rows.Next() {
		v, err := scanVariant(rows)
		if err != nil {
			return nil, fmt.Errorf("scan variant: %w", err)
		}
		variants = append(variants, *v)
	}
	return variants, rows.Err()
}
