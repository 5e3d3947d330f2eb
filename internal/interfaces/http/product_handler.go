package http

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/pasalhq/pasal-erp/internal/application/dto"
	"github.com/pasalhq/pasal-erp/internal/application/usecase"
)

// ProductHandler handles the catalog: products, variants and their movement
// history.
type ProductHandler struct {
	uc *usecase.ProductUseCase
}

// NewProductHandler builds the handler.
func NewProductHandler(uc *usecase.ProductUseCase) *ProductHandler {
	return &ProductHandler{uc: uc}
}

// Create registers a product with its variants. Opening stock is zero; stock
// only enters through approved inventory transactions.
func (h *ProductHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateProductRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "invalid request body"})
	}
	product, variants, err := h.uc.Create(in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ToProductResponse(product, variants))
}

// Get returns one product with variants.
func (h *ProductHandler) Get(c *fiber.Ctx) error {
	product, variants, err := h.uc.Get(c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ToProductResponse(product, variants))
}

// List returns products without variants.
func (h *ProductHandler) List(c *fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit"))
	products, err := h.uc.List(limit)
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.ProductResponse, 0, len(products))
	for i := range products {
		out = append(out, dto.ToProductResponse(&products[i], nil))
	}
	return c.JSON(fiber.Map{"total": len(out), "products": out})
}

// UpdateVariant updates prices and reorder level of a variant.
func (h *ProductHandler) UpdateVariant(c *fiber.Ctx) error {
	var in dto.UpdateVariantRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "invalid request body"})
	}
	variant, err := h.uc.UpdateVariant(c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ToVariantResponse(variant))
}

// DeactivateVariant marks a variant inactive.
func (h *ProductHandler) DeactivateVariant(c *fiber.Ctx) error {
	if err := h.uc.DeactivateVariant(c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Movements returns the ledger audit trail of a variant.
func (h *ProductHandler) Movements(c *fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit"))
	movements, err := h.uc.Movements(c.Params("id"), limit)
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.StockMovementResponse, 0, len(movements))
	for i := range movements {
		out = append(out, dto.ToStockMovementResponse(&movements[i]))
	}
	return c.JSON(fiber.Map{"total": len(out), "movements": out})
}
