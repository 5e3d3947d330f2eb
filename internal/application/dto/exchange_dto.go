package dto

import "github.com/shopspring/decimal"

// ExchangeItemRequest is one leg of an exchange request.
type ExchangeItemRequest struct {
	VariantID string `json:"variant_id" validate:"required,uuid4"`
	Quantity  int    `json:"quantity" validate:"required,gt=0"`
}

// ReconcileRequest asks for a return+replacement against a delivered order.
type ReconcileRequest struct {
	ReturnItems []ExchangeItemRequest `json:"return_items" validate:"omitempty,dive"`
	NewItems    []ExchangeItemRequest `json:"new_items" validate:"omitempty,dive"`
	Reason      string                `json:"reason" validate:"required"`
}

// SettlePickupRequest settles picked-up return legs after QC.
type SettlePickupRequest struct {
	Results []QCItemRequest `json:"results" validate:"required,min=1,dive"`
}

// ReconcileResponse reports the created child order and the financial delta.
type ReconcileResponse struct {
	Order       OrderResponse   `json:"order"`
	Kind        string          `json:"kind"`
	ReturnTotal decimal.Decimal `json:"return_total"`
	NewTotal    decimal.Decimal `json:"new_total"`
	NetAmount   decimal.Decimal `json:"net_amount"`
}
