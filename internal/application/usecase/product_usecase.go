package usecase

import (
	"time"

	"github.com/google/uuid"

	"github.com/pasalhq/pasal-erp/internal/application/dto"
	"github.com/pasalhq/pasal-erp/internal/domain"
	"github.com/pasalhq/pasal-erp/internal/domain/entity"
	"github.com/pasalhq/pasal-erp/internal/domain/repository"
)

// ProductUseCase is catalog plumbing: products and their variants.
// Stock counters on variants are owned by the ledger and are not writable here.
type ProductUseCase struct {
	productRepo  repository.ProductRepository
	variantRepo  repository.VariantRepository
	movementRepo repository.StockMovementRepository
}

// NewProductUseCase builds the catalog use case.
func NewProductUseCase(productRepo repository.ProductRepository, variantRepo repository.VariantRepository, movementRepo repository.StockMovementRepository) *ProductUseCase {
	return &ProductUseCase{productRepo: productRepo, variantRepo: variantRepo, movementRepo: movementRepo}
}

// Create persists a product and its variants. Variants start with zero stock;
// opening stock enters through a purchase or adjustment transaction.
func (uc *ProductUseCase) Create(in dto.CreateProductRequest) (*entity.Product, []entity.Variant, error) {
	if err := dto.Validate(in); err != nil {
		return nil, nil, err
	}

	now := time.Now()
	p := &entity.Product{
		ID:          uuid.New().String(),
		Name:        in.Name,
		Description: in.Description,
		Category:    in.Category,
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.productRepo.Create(p); err != nil {
		return nil, nil, err
	}

	variants := make([]entity.Variant, 0, len(in.Variants))
	for _, vin := range in.Variants {
		v := entity.Variant{
			ID:           uuid.New().String(),
			ProductID:    p.ID,
			SKU:          vin.SKU,
			Name:         vin.Name,
			CostPrice:    vin.CostPrice,
			SellingPrice: vin.SellingPrice,
			ReorderLevel: vin.ReorderLevel,
			Active:       true,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := uc.variantRepo.Create(&v); err != nil {
			return nil, nil, err
		}
		variants = append(variants, v)
	}
	return p, variants, nil
}

// Get returns a product with its variants.
func (uc *ProductUseCase) Get(id string) (*entity.Product, []entity.Variant, error) {
	p, err := uc.productRepo.GetByID(id)
	if err != nil {
		return nil, nil, err
	}
	if p == nil {
		return nil, nil, domain.ErrNotFound
	}
	variants, err := uc.variantRepo.ListByProduct(id)
	if err != nil {
		return nil, nil, err
	}
	return p, variants, nil
}

// List returns catalog products.
func (uc *ProductUseCase) List(limit int) ([]entity.Product, error) {
	return uc.productRepo.List(limit)
}

// UpdateVariant updates prices and reorder level. Stock counters are ignored.
func (uc *ProductUseCase) UpdateVariant(id string, in dto.UpdateVariantRequest) (*entity.Variant, error) {
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	v, err := uc.variantRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, domain.ErrNotFound
	}
	if in.Name != "" {
		v.Name = in.Name
	}
	if in.CostPrice != nil {
		v.CostPrice = *in.CostPrice
	}
	if in.SellingPrice != nil {
		v.SellingPrice = *in.SellingPrice
	}
	if in.ReorderLevel != nil {
		v.ReorderLevel = *in.ReorderLevel
	}
	v.UpdatedAt = time.Now()
	if err := uc.variantRepo.Update(v); err != nil {
		return nil, err
	}
	return v, nil
}

// DeactivateVariant takes a variant off sale. Variants are never deleted.
func (uc *ProductUseCase) DeactivateVariant(id string) error {
	v, err := uc.variantRepo.GetByID(id)
	if err != nil {
		return err
	}
	if v == nil {
		return domain.ErrNotFound
	}
	return uc.variantRepo.Deactivate(id)
}

// Movements returns the audit trail for one variant, newest first.
func (uc *ProductUseCase) Movements(variantID string, limit int) ([]entity.StockMovement, error) {
	return uc.movementRepo.ListByVariant(variantID, limit)
}
