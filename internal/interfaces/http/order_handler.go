package http

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/pasalhq/pasal-erp/internal/application/dto"
	"github.com/pasalhq/pasal-erp/internal/application/fulfillment"
	"github.com/pasalhq/pasal-erp/internal/application/usecase"
)

// OrderHandler handles order intake, reads and lifecycle transitions.
type OrderHandler struct {
	orders     *usecase.OrderUseCase
	transition *fulfillment.Service
}

// NewOrderHandler builds the handler.
func NewOrderHandler(orders *usecase.OrderUseCase, transition *fulfillment.Service) *OrderHandler {
	return &OrderHandler{orders: orders, transition: transition}
}

// Create godoc
// @Summary      Create an order at intake
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateOrderRequest  true  "fulfillment_type, customer, payment, items"
// @Success      201   {object}  dto.OrderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/orders [post]
func (h *OrderHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateOrderRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "invalid request body"})
	}
	order, err := h.orders.Create(c.Context(), in, GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ToOrderResponse(order))
}

// Get returns one order with items.
func (h *OrderHandler) Get(c *fiber.Ctx) error {
	order, err := h.orders.Get(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ToOrderResponse(order))
}

// List returns orders filtered by ?status= and ?fulfillment_type=.
func (h *OrderHandler) List(c *fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit"))
	orders, err := h.orders.List(c.Context(), c.Query("status"), c.Query("fulfillment_type"), limit)
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.OrderResponse, 0, len(orders))
	for i := range orders {
		out = append(out, dto.ToOrderResponse(&orders[i]))
	}
	return c.JSON(fiber.Map{"total": len(out), "orders": out})
}

// Logs returns the full audit trail of an order.
func (h *OrderHandler) Logs(c *fiber.Ctx) error {
	logs, err := h.orders.Logs(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.OrderLogResponse, 0, len(logs))
	for i := range logs {
		out = append(out, dto.ToOrderLogResponse(&logs[i]))
	}
	return c.JSON(fiber.Map{"total": len(out), "logs": out})
}

// Delete soft-deletes an order that never reached fulfillment.
func (h *OrderHandler) Delete(c *fiber.Ctx) error {
	if err := h.orders.SoftDelete(c.Context(), c.Params("id"), GetUserID(c)); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Transition godoc
// @Summary      Apply one status transition
// @Description  Validates the target against the order's fulfillment path and
//               applies the stock side effects atomically. QC results are
//               required when the target settles returned units.
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                 true  "Order ID"
// @Param        body  body  dto.TransitionRequest  true  "target, reason, qc"
// @Success      200   {object}  dto.OrderLogResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/transition [post]
func (h *OrderHandler) Transition(c *fiber.Ctx) error {
	var in dto.TransitionRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "invalid request body"})
	}
	if err := dto.Validate(in); err != nil {
		return respondError(c, err)
	}
	input := fulfillment.TransitionInput{
		OrderID: c.Params("id"),
		Target:  in.Target,
		Actor:   GetUserID(c),
		Reason:  in.Reason,
	}
	for _, qc := range in.QC {
		input.QC = append(input.QC, fulfillment.QCResult{
			OrderItemID: qc.OrderItemID,
			Outcome:     qc.Outcome,
			Quantity:    qc.Quantity,
		})
	}
	logEntry, err := h.transition.Transition(c.Context(), input)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ToOrderLogResponse(logEntry))
}

// AssignRider sets the rider on an inside valley order.
func (h *OrderHandler) AssignRider(c *fiber.Ctx) error {
	var in dto.AssignRiderRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "invalid request body"})
	}
	if err := dto.Validate(in); err != nil {
		return respondError(c, err)
	}
	order, err := h.transition.AssignRider(c.Context(), c.Params("id"), in.RiderID, GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ToOrderResponse(order))
}

// AssignCourier sets courier data on an outside valley order.
func (h *OrderHandler) AssignCourier(c *fiber.Ctx) error {
	var in dto.AssignCourierRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "invalid request body"})
	}
	if err := dto.Validate(in); err != nil {
		return respondError(c, err)
	}
	order, err := h.transition.AssignCourier(c.Context(), c.Params("id"),
		in.Partner, in.AWB, in.TrackingID, in.DestinationBranch, GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ToOrderResponse(order))
}

// Reassign switches an order between inside_valley and outside_valley before
// dispatch.
func (h *OrderHandler) Reassign(c *fiber.Ctx) error {
	var in dto.ReassignFulfillmentRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "invalid request body"})
	}
	if err := dto.Validate(in); err != nil {
		return respondError(c, err)
	}
	order, err := h.transition.ReassignFulfillmentType(c.Context(), c.Params("id"),
		in.FulfillmentType, GetUserID(c), in.Reason)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ToOrderResponse(order))
}
