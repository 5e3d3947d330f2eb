package http

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/pasalhq/pasal-erp/internal/application/dto"
	"github.com/pasalhq/pasal-erp/internal/application/usecase"
)

// VendorHandler handles purchase suppliers.
type VendorHandler struct {
	uc *usecase.VendorUseCase
}

// NewVendorHandler builds the handler.
func NewVendorHandler(uc *usecase.VendorUseCase) *VendorHandler {
	return &VendorHandler{uc: uc}
}

// Create registers a vendor with zero balance.
func (h *VendorHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateVendorRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "invalid request body"})
	}
	vendor, err := h.uc.Create(in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ToVendorResponse(vendor))
}

// Get returns one vendor with its payable balance.
func (h *VendorHandler) Get(c *fiber.Ctx) error {
	vendor, err := h.uc.Get(c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ToVendorResponse(vendor))
}

// List returns vendors.
func (h *VendorHandler) List(c *fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit"))
	vendors, err := h.uc.List(limit)
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.VendorResponse, 0, len(vendors))
	for i := range vendors {
		out = append(out, dto.ToVendorResponse(&vendors[i]))
	}
	return c.JSON(fiber.Map{"total": len(out), "vendors": out})
}
