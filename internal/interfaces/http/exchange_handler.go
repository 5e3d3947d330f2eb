package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/pasalhq/pasal-erp/internal/application/dto"
	"github.com/pasalhq/pasal-erp/internal/application/exchange"
)

// ExchangeHandler handles exchange reconciliation and pickup settlement.
type ExchangeHandler struct {
	svc *exchange.Service
}

// NewExchangeHandler builds the handler.
func NewExchangeHandler(svc *exchange.Service) *ExchangeHandler {
	return &ExchangeHandler{svc: svc}
}

// Reconcile godoc
// @Summary      Reconcile an exchange against a delivered order
// @Description  Creates a child order linked to the original. New items
//               deduct stock immediately; return legs wait for pickup QC.
// @Tags         exchanges
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                true  "Original order ID"
// @Param        body  body  dto.ReconcileRequest  true  "return_items, new_items, reason"
// @Success      201   {object}  dto.ReconcileResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/exchange [post]
func (h *ExchangeHandler) Reconcile(c *fiber.Ctx) error {
	var in dto.ReconcileRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "invalid request body"})
	}
	if err := dto.Validate(in); err != nil {
		return respondError(c, err)
	}
	input := exchange.ReconcileInput{
		OriginalOrderID: c.Params("id"),
		Reason:          in.Reason,
		Actor:           GetUserID(c),
	}
	for _, it := range in.ReturnItems {
		input.ReturnItems = append(input.ReturnItems, exchange.ReturnItemInput{
			VariantID: it.VariantID, Quantity: it.Quantity,
		})
	}
	for _, it := range in.NewItems {
		input.NewItems = append(input.NewItems, exchange.NewItemInput{
			VariantID: it.VariantID, Quantity: it.Quantity,
		})
	}
	result, err := h.svc.Reconcile(c.Context(), input)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ReconcileResponse{
		Order:       dto.ToOrderResponse(result.Order),
		Kind:        result.Kind,
		ReturnTotal: result.ReturnTotal,
		NewTotal:    result.NewTotal,
		NetAmount:   result.NetAmount,
	})
}

// SettlePickup settles picked-up return legs of an exchange order after QC.
func (h *ExchangeHandler) SettlePickup(c *fiber.Ctx) error {
	var in dto.SettlePickupRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "invalid request body"})
	}
	if err := dto.Validate(in); err != nil {
		return respondError(c, err)
	}
	input := exchange.SettleInput{
		ExchangeOrderID: c.Params("id"),
		Actor:           GetUserID(c),
	}
	for _, r := range in.Results {
		input.Results = append(input.Results, exchange.PickupResult{
			OrderItemID: r.OrderItemID,
			Outcome:     r.Outcome,
			Quantity:    r.Quantity,
		})
	}
	if err := h.svc.SettlePickup(c.Context(), input); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "pickup settled"})
}
