package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/pasalhq/pasal-erp/internal/domain/entity"
)

// CreateVariantRequest is one variant of a new product.
type CreateVariantRequest struct {
	SKU          string          `json:"sku" validate:"required"`
	Name         string          `json:"name" validate:"required"`
	CostPrice    decimal.Decimal `json:"cost_price"`
	SellingPrice decimal.Decimal `json:"selling_price"`
	ReorderLevel int             `json:"reorder_level" validate:"gte=0"`
}

// CreateProductRequest registers a product with at least one variant.
type CreateProductRequest struct {
	Name        string                 `json:"name" validate:"required"`
	Description string                 `json:"description"`
	Category    string                 `json:"category"`
	Variants    []CreateVariantRequest `json:"variants" validate:"required,min=1,dive"`
}

// UpdateVariantRequest updates prices and reorder level. Stock counters are
// not writable here.
type UpdateVariantRequest struct {
	Name         string           `json:"name"`
	CostPrice    *decimal.Decimal `json:"cost_price"`
	SellingPrice *decimal.Decimal `json:"selling_price"`
	ReorderLevel *int             `json:"reorder_level" validate:"omitempty,gte=0"`
}

// VariantResponse mirrors a variant with its stock counters.
type VariantResponse struct {
	ID            string          `json:"id"`
	ProductID     string          `json:"product_id"`
	SKU           string          `json:"sku"`
	Name          string          `json:"name"`
	CostPrice     decimal.Decimal `json:"cost_price"`
	SellingPrice  decimal.Decimal `json:"selling_price"`
	SellableStock int             `json:"sellable_stock"`
	DamagedStock  int             `json:"damaged_stock"`
	ReservedStock int             `json:"reserved_stock"`
	Available     int             `json:"available"`
	ReorderLevel  int             `json:"reorder_level"`
	Active        bool            `json:"active"`
}

// ProductResponse mirrors a product with its variants.
type ProductResponse struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Category    string            `json:"category"`
	Active      bool              `json:"active"`
	Variants    []VariantResponse `json:"variants,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
}

// CreateVendorRequest registers a vendor.
type CreateVendorRequest struct {
	Name    string `json:"name" validate:"required"`
	Phone   string `json:"phone"`
	PAN     string `json:"pan"`
	Address string `json:"address"`
}

// VendorResponse mirrors a vendor with its payable balance.
type VendorResponse struct {
	ID      string          `json:"id"`
	Name    string          `json:"name"`
	Phone   string          `json:"phone"`
	PAN     string          `json:"pan"`
	Address string          `json:"address"`
	Balance decimal.Decimal `json:"balance"`
	Active  bool            `json:"active"`
}

// ToVariantResponse maps a variant entity.
func ToVariantResponse(v *entity.Variant) VariantResponse {
	return VariantResponse{
		ID:            v.ID,
		ProductID:     v.ProductID,
		SKU:           v.SKU,
		Name:          v.Name,
		CostPrice:     v.CostPrice,
		SellingPrice:  v.SellingPrice,
		SellableStock: v.SellableStock,
		DamagedStock:  v.DamagedStock,
		ReservedStock: v.ReservedStock,
		Available:     v.Available(),
		ReorderLevel:  v.ReorderLevel,
		Active:        v.Active,
	}
}

// ToProductResponse maps a product entity with its variants.
func ToProductResponse(p *entity.Product, variants []entity.Variant) ProductResponse {
	resp := ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Category:    p.Category,
		Active:      p.Active,
		CreatedAt:   p.CreatedAt,
	}
	for i := range variants {
		resp.Variants = append(resp.Variants, ToVariantResponse(&variants[i]))
	}
	return resp
}

// ToVendorResponse maps a vendor entity.
func ToVendorResponse(v *entity.Vendor) VendorResponse {
	return VendorResponse{
		ID:      v.ID,
		Name:    v.Name,
		Phone:   v.Phone,
		PAN:     v.PAN,
		Address: v.Address,
		Balance: v.Balance,
		Active:  v.Active,
	}
}
