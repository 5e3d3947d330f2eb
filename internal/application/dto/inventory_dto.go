package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/pasalhq/pasal-erp/internal/domain/entity"
)

// CreateTransactionItemRequest is one requested transaction line. Quantity is
// entered positive except for adjustments, which are signed.
type CreateTransactionItemRequest struct {
	VariantID    string          `json:"variant_id" validate:"required,uuid4"`
	Quantity     int             `json:"quantity" validate:"required"`
	UnitCost     decimal.Decimal `json:"unit_cost"`
	SourceBucket string          `json:"source_bucket" validate:"omitempty,oneof=fresh damaged"`
}

// CreateTransactionRequest opens a pending maker-checker transaction.
type CreateTransactionRequest struct {
	Type     string                         `json:"type" validate:"required,oneof=purchase purchase_return damage adjustment"`
	VendorID string                         `json:"vendor_id" validate:"omitempty,uuid4"`
	Reason   string                         `json:"reason"`
	Items    []CreateTransactionItemRequest `json:"items" validate:"required,min=1,dive"`
}

// ReviewTransactionRequest carries the checker's reason on reject/void.
type ReviewTransactionRequest struct {
	Reason string `json:"reason"`
}

// TransactionItemResponse mirrors one transaction line.
type TransactionItemResponse struct {
	ID           string          `json:"id"`
	VariantID    string          `json:"variant_id"`
	Quantity     int             `json:"quantity"`
	UnitCost     decimal.Decimal `json:"unit_cost"`
	SourceBucket string          `json:"source_bucket"`
	StockBefore  int             `json:"stock_before"`
	StockAfter   int             `json:"stock_after"`
}

// TransactionResponse mirrors a transaction header with items.
type TransactionResponse struct {
	ID            string                    `json:"id"`
	Type          string                    `json:"type"`
	Status        string                    `json:"status"`
	VendorID      *string                   `json:"vendor_id,omitempty"`
	InvoiceNumber string                    `json:"invoice_number"`
	Reason        string                    `json:"reason"`
	TotalAmount   decimal.Decimal           `json:"total_amount"`
	Items         []TransactionItemResponse `json:"items"`
	CreatedBy     string                    `json:"created_by"`
	ApprovedBy    *string                   `json:"approved_by,omitempty"`
	CreatedAt     time.Time                 `json:"created_at"`
}

// StockMovementResponse mirrors one ledger audit row.
type StockMovementResponse struct {
	ID         string    `json:"id"`
	VariantID  string    `json:"variant_id"`
	Bucket     string    `json:"bucket"`
	Delta      int       `json:"delta"`
	StockAfter int       `json:"stock_after"`
	CausalRef  string    `json:"causal_ref"`
	Reason     string    `json:"reason"`
	Actor      string    `json:"actor"`
	CreatedAt  time.Time `json:"created_at"`
}

// ToTransactionResponse maps a transaction entity.
func ToTransactionResponse(t *entity.InventoryTransaction) TransactionResponse {
	resp := TransactionResponse{
		ID:            t.ID,
		Type:          t.Type,
		Status:        string(t.Status),
		VendorID:      t.VendorID,
		InvoiceNumber: t.InvoiceNumber,
		Reason:        t.Reason,
		TotalAmount:   t.TotalAmount,
		CreatedBy:     t.CreatedBy,
		ApprovedBy:    t.ApprovedBy,
		CreatedAt:     t.CreatedAt,
	}
	for _, it := range t.Items {
		resp.Items = append(resp.Items, TransactionItemResponse{
			ID:           it.ID,
			VariantID:    it.VariantID,
			Quantity:     it.Quantity,
			UnitCost:     it.UnitCost,
			SourceBucket: it.SourceBucket,
			StockBefore:  it.StockBefore,
			StockAfter:   it.StockAfter,
		})
	}
	return resp
}

// ToStockMovementResponse maps a movement entity.
func ToStockMovementResponse(m *entity.StockMovement) StockMovementResponse {
	return StockMovementResponse{
		ID:         m.ID,
		VariantID:  m.VariantID,
		Bucket:     m.Bucket,
		Delta:      m.Delta,
		StockAfter: m.StockAfter,
		CausalRef:  m.CausalRef,
		Reason:     m.Reason,
		Actor:      m.Actor,
		CreatedAt:  m.CreatedAt,
	}
}
