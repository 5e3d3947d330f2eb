package repository

import (
	"github.com/shopspring/decimal"

	"github.com/pasalhq/pasal-erp/internal/domain/entity"
)

// VendorRepository persists vendors and their payable balance.
type VendorRepository interface {
	Create(v *entity.Vendor) error
	GetByID(id string) (*entity.Vendor, error)
	// GetForUpdate locks the vendor row for a balance change.
	GetForUpdate(id string) (*entity.Vendor, error)
	// UpdateBalance persists the running payable balance.
	UpdateBalance(id string, balance decimal.Decimal) error
	List(limit int) ([]entity.Vendor, error)
}
