package repository

import "github.com/pasalhq/pasal-erp/internal/domain/entity"

// StockMovementRepository persists the immutable movement audit trail.
// Movements are insert-only; there is no update or delete.
type StockMovementRepository interface {
	Create(m *entity.StockMovement) error
	ListByVariant(variantID string, limit int) ([]entity.StockMovement, error)
	ListByCausalRef(causalRef string) ([]entity.StockMovement, error)
}
