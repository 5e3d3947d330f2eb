package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/pasalhq/pasal-erp/internal/domain/entity"
)

// CreateOrderItemRequest is one requested order line.
type CreateOrderItemRequest struct {
	VariantID string `json:"variant_id" validate:"required,uuid4"`
	Quantity  int    `json:"quantity" validate:"required,gt=0"`
}

// CreateOrderRequest registers an order at intake.
type CreateOrderRequest struct {
	FulfillmentType  string                   `json:"fulfillment_type" validate:"required,oneof=inside_valley outside_valley store"`
	CustomerName     string                   `json:"customer_name" validate:"required"`
	CustomerPhone    string                   `json:"customer_phone" validate:"required"`
	ShippingAddress  string                   `json:"shipping_address"`
	ShippingCity     string                   `json:"shipping_city"`
	ShippingDistrict string                   `json:"shipping_district"`
	PaymentMethod    string                   `json:"payment_method" validate:"required,oneof=cod prepaid fonepay"`
	DeliveryCharge   decimal.Decimal          `json:"delivery_charge"`
	Discount         decimal.Decimal          `json:"discount"`
	Notes            string                   `json:"notes"`
	Items            []CreateOrderItemRequest `json:"items" validate:"required,min=1,dive"`
}

// TransitionRequest asks for one status change.
type TransitionRequest struct {
	Target string          `json:"target" validate:"required"`
	Reason string          `json:"reason"`
	QC     []QCItemRequest `json:"qc" validate:"omitempty,dive"`
}

// QCItemRequest is one QC outcome for returned units.
type QCItemRequest struct {
	OrderItemID string `json:"order_item_id" validate:"required"`
	Outcome     string `json:"outcome" validate:"required,oneof=good damaged missing wrong_item"`
	Quantity    int    `json:"quantity" validate:"required,gt=0"`
}

// AssignRiderRequest sets the rider before dispatch.
type AssignRiderRequest struct {
	RiderID string `json:"rider_id" validate:"required"`
}

// AssignCourierRequest sets courier data before handover.
type AssignCourierRequest struct {
	Partner           string `json:"partner" validate:"required"`
	AWB               string `json:"awb"`
	TrackingID        string `json:"tracking_id"`
	DestinationBranch string `json:"destination_branch"`
}

// ReassignFulfillmentRequest switches inside_valley <-> outside_valley.
type ReassignFulfillmentRequest struct {
	FulfillmentType string `json:"fulfillment_type" validate:"required,oneof=inside_valley outside_valley"`
	Reason          string `json:"reason" validate:"required"`
}

// OrderItemResponse mirrors one order line.
type OrderItemResponse struct {
	ID           string          `json:"id"`
	VariantID    string          `json:"variant_id"`
	Name         string          `json:"name"`
	Quantity     int             `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	FulfilledQty int             `json:"fulfilled_qty"`
	PickupStatus string          `json:"pickup_status,omitempty"`
}

// OrderResponse mirrors an order aggregate.
type OrderResponse struct {
	ID               string              `json:"id"`
	OrderNumber      string              `json:"order_number"`
	FulfillmentType  string              `json:"fulfillment_type"`
	Status           string              `json:"status"`
	CustomerName     string              `json:"customer_name"`
	CustomerPhone    string              `json:"customer_phone"`
	ShippingAddress  string              `json:"shipping_address"`
	ShippingCity     string              `json:"shipping_city"`
	ShippingDistrict string              `json:"shipping_district"`
	PaymentMethod    string              `json:"payment_method"`
	PaymentStatus    string              `json:"payment_status"`
	Subtotal         decimal.Decimal     `json:"subtotal"`
	DeliveryCharge   decimal.Decimal     `json:"delivery_charge"`
	Discount         decimal.Decimal     `json:"discount"`
	GrandTotal       decimal.Decimal     `json:"grand_total"`
	RiderID          *string             `json:"rider_id,omitempty"`
	CourierPartner   *string             `json:"courier_partner,omitempty"`
	CourierAWB       *string             `json:"courier_awb,omitempty"`
	ParentOrderID    *string             `json:"parent_order_id,omitempty"`
	ExchangeKind     string              `json:"exchange_kind,omitempty"`
	Items            []OrderItemResponse `json:"items"`
	CreatedAt        time.Time           `json:"created_at"`
	UpdatedAt        time.Time           `json:"updated_at"`
}

// OrderLogResponse mirrors one audit trail entry.
type OrderLogResponse struct {
	ID         string    `json:"id"`
	FromStatus string    `json:"from_status"`
	ToStatus   string    `json:"to_status"`
	Actor      string    `json:"actor"`
	Reason     string    `json:"reason"`
	CreatedAt  time.Time `json:"created_at"`
}

// ToOrderResponse maps an order entity.
func ToOrderResponse(o *entity.Order) OrderResponse {
	resp := OrderResponse{
		ID:               o.ID,
		OrderNumber:      o.OrderNumber,
		FulfillmentType:  o.FulfillmentType,
		Status:           o.Status,
		CustomerName:     o.CustomerName,
		CustomerPhone:    o.CustomerPhone,
		ShippingAddress:  o.ShippingAddress,
		ShippingCity:     o.ShippingCity,
		ShippingDistrict: o.ShippingDistrict,
		PaymentMethod:    o.PaymentMethod,
		PaymentStatus:    o.PaymentStatus,
		Subtotal:         o.Subtotal,
		DeliveryCharge:   o.DeliveryCharge,
		Discount:         o.Discount,
		GrandTotal:       o.GrandTotal,
		RiderID:          o.RiderID,
		CourierPartner:   o.CourierPartner,
		CourierAWB:       o.CourierAWB,
		ParentOrderID:    o.ParentOrderID,
		ExchangeKind:     o.ExchangeKind,
		CreatedAt:        o.CreatedAt,
		UpdatedAt:        o.UpdatedAt,
	}
	for _, it := range o.Items {
		resp.Items = append(resp.Items, OrderItemResponse{
			ID:           it.ID,
			VariantID:    it.VariantID,
			Name:         it.Name,
			Quantity:     it.Quantity,
			UnitPrice:    it.UnitPrice,
			FulfilledQty: it.FulfilledQty,
			PickupStatus: it.PickupStatus,
		})
	}
	return resp
}

// ToOrderLogResponse maps a log entity.
func ToOrderLogResponse(l *entity.OrderLog) OrderLogResponse {
	return OrderLogResponse{
		ID:         l.ID,
		FromStatus: l.FromStatus,
		ToStatus:   l.ToStatus,
		Actor:      l.Actor,
		Reason:     l.Reason,
		CreatedAt:  l.CreatedAt,
	}
}
