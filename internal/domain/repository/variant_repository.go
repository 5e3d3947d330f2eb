package repository

import "github.com/pasalhq/pasal-erp/internal/domain/entity"

// VariantRepository is the data-access contract for variants. Stock counters
// are written only through UpdateStock, and only by the stock ledger.
type VariantRepository interface {
	Create(v *entity.Variant) error
	GetByID(id string) (*entity.Variant, error)
	// GetForUpdate loads the variant and locks its row (SELECT ... FOR UPDATE).
	// Must be called inside a transaction; concurrent adjustments on the same
	// variant serialize on this lock.
	GetForUpdate(id string) (*entity.Variant, error)
	// UpdateStock persists the three stock counters.
	UpdateStock(v *entity.Variant) error
	Update(v *entity.Variant) error
	Deactivate(id string) error
	ListByProduct(productID string) ([]entity.Variant, error)
}
