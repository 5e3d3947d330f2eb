package usecase

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pasalhq/pasal-erp/internal/application/dto"
	"github.com/pasalhq/pasal-erp/internal/domain"
	"github.com/pasalhq/pasal-erp/internal/domain/entity"
	"github.com/pasalhq/pasal-erp/internal/domain/repository"
)

// VendorUseCase manages purchase suppliers. Balances move only through the
// inventory transaction engine.
type VendorUseCase struct {
	vendorRepo repository.VendorRepository
}

// NewVendorUseCase builds the vendor use case.
func NewVendorUseCase(vendorRepo repository.VendorRepository) *VendorUseCase {
	return &VendorUseCase{vendorRepo: vendorRepo}
}

// Create registers a vendor with a zero balance.
func (uc *VendorUseCase) Create(in dto.CreateVendorRequest) (*entity.Vendor, error) {
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	now := time.Now()
	v := &entity.Vendor{
		ID:        uuid.New().String(),
		Name:      in.Name,
		Phone:     in.Phone,
		PAN:       in.PAN,
		Address:   in.Address,
		Balance:   decimal.Zero,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.vendorRepo.Create(v); err != nil {
		return nil, err
	}
	return v, nil
}

// Get returns one vendor.
func (uc *VendorUseCase) Get(id string) (*entity.Vendor, error) {
	v, err := uc.vendorRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, domain.ErrNotFound
	}
	return v, nil
}

// List returns vendors.
func (uc *VendorUseCase) List(limit int) ([]entity.Vendor, error) {
	return uc.vendorRepo.List(limit)
}
