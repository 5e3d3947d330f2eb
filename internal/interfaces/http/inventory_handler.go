package http

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/pasalhq/pasal-erp/internal/application/dto"
	"github.com/pasalhq/pasal-erp/internal/application/inventory"
)

// InventoryHandler handles maker-checker inventory transactions.
type InventoryHandler struct {
	engine *inventory.Engine
}

// NewInventoryHandler builds the handler.
func NewInventoryHandler(engine *inventory.Engine) *InventoryHandler {
	return &InventoryHandler{engine: engine}
}

// Create godoc
// @Summary      Create a pending inventory transaction
// @Description  Registers a purchase, purchase return, damage or adjustment.
//               Stock is untouched until a different user approves.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateTransactionRequest  true  "type, vendor_id, reason, items"
// @Success      201   {object}  dto.TransactionResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/inventory/transactions [post]
func (h *InventoryHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateTransactionRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "invalid request body"})
	}
	if err := dto.Validate(in); err != nil {
		return respondError(c, err)
	}
	input := inventory.CreateInput{
		Type:     in.Type,
		VendorID: in.VendorID,
		Reason:   in.Reason,
		Actor:    GetUserID(c),
	}
	for _, it := range in.Items {
		input.Items = append(input.Items, inventory.CreateItemInput{
			VariantID:    it.VariantID,
			Quantity:     it.Quantity,
			UnitCost:     it.UnitCost,
			SourceBucket: it.SourceBucket,
		})
	}
	t, err := h.engine.Create(c.Context(), input)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ToTransactionResponse(t))
}

// Approve applies a pending transaction's stock effects. The approver must
// differ from the creator.
func (h *InventoryHandler) Approve(c *fiber.Ctx) error {
	t, err := h.engine.Approve(c.Context(), c.Params("id"), GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ToTransactionResponse(t))
}

// Reject marks a pending transaction rejected with no stock effect.
func (h *InventoryHandler) Reject(c *fiber.Ctx) error {
	var in dto.ReviewTransactionRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "invalid request body"})
	}
	t, err := h.engine.Reject(c.Context(), c.Params("id"), GetUserID(c), in.Reason)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ToTransactionResponse(t))
}

// Void reverses an approved transaction's stock effects.
func (h *InventoryHandler) Void(c *fiber.Ctx) error {
	var in dto.ReviewTransactionRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "invalid request body"})
	}
	t, err := h.engine.Void(c.Context(), c.Params("id"), GetUserID(c), in.Reason)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ToTransactionResponse(t))
}

// Get returns one transaction with items.
func (h *InventoryHandler) Get(c *fiber.Ctx) error {
	t, err := h.engine.Get(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ToTransactionResponse(t))
}

// List returns transactions filtered by ?status= and ?type=.
func (h *InventoryHandler) List(c *fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit"))
	transactions, err := h.engine.List(c.Context(), c.Query("status"), c.Query("type"), limit)
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.TransactionResponse, 0, len(transactions))
	for i := range transactions {
		out = append(out, dto.ToTransactionResponse(&transactions[i]))
	}
	return c.JSON(fiber.Map{"total": len(out), "transactions": out})
}
