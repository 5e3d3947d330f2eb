package exchange

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pasalhq/pasal-erp/internal/application/ledger"
	"github.com/pasalhq/pasal-erp/internal/application/ports"
	"github.com/pasalhq/pasal-erp/internal/domain"
	"github.com/pasalhq/pasal-erp/internal/domain/entity"
	"github.com/pasalhq/pasal-erp/pkg/logger"
)

// Service derives child exchange orders from delivered orders: return legs
// held as pending_pickup (no stock effect until QC settlement), new legs
// deducted from stock immediately.
type Service struct {
	tx     ports.TxRunner
	ledger *ledger.Ledger
	log    *logger.Logger
}

// NewService builds the exchange service.
func NewService(tx ports.TxRunner, ldg *ledger.Ledger, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{tx: tx, ledger: ldg, log: log}
}

// ReturnItemInput is one leg of goods coming back from the customer.
type ReturnItemInput struct {
	VariantID string
	Quantity  int
}

// NewItemInput is one replacement/add-on leg going out to the customer.
type NewItemInput struct {
	VariantID string
	Quantity  int
}

// ReconcileInput is one exchange request against a delivered order.
type ReconcileInput struct {
	OriginalOrderID string
	ReturnItems     []ReturnItemInput
	NewItems        []NewItemInput
	Reason          string
	Actor           string
}

// ReconcileResult carries the created child order and the financial delta.
type ReconcileResult struct {
	Order       *entity.Order
	Kind        string // exchange | refund | addon
	ReturnTotal decimal.Decimal
	NewTotal    decimal.Decimal
	NetAmount   decimal.Decimal // NewTotal - ReturnTotal
}

// Reconcile validates both legs, creates the child ExchangeOrder and applies
// the immediate stock deduction for new items. Return legs are flagged
// pending_pickup and settle later through SettlePickup.
func (s *Service) Reconcile(ctx context.Context, in ReconcileInput) (*ReconcileResult, error) {
	if len(in.ReturnItems) == 0 && len(in.NewItems) == 0 {
		return nil, &domain.ValidationError{Field: "items", Message: "at least one return or new item is required"}
	}
	if strings.TrimSpace(in.Reason) == "" {
		return nil, &domain.ValidationError{Field: "reason", Message: "required"}
	}

	var result *ReconcileResult
	err := s.tx.Run(ctx, func(r ports.Repos) error {
		parent, err := r.Orders.GetForUpdate(in.OriginalOrderID)
		if err != nil {
			return err
		}
		if parent == nil || parent.DeletedAt != nil {
			return domain.ErrNotFound
		}
		if parent.Status != entity.StatusDelivered {
			return fmt.Errorf("order %s is %s, exchanges need a delivered order: %w",
				parent.ID, parent.Status, domain.ErrConflict)
		}

		orderedByVariant := make(map[string]*entity.OrderItem, len(parent.Items))
		for i := range parent.Items {
			if parent.Items[i].Quantity > 0 {
				orderedByVariant[parent.Items[i].VariantID] = &parent.Items[i]
			}
		}

		now := time.Now()
		child := &entity.Order{
			ID:               uuid.New().String(),
			FulfillmentType:  parent.FulfillmentType,
			Status:           entity.StatusConverted,
			CustomerName:     parent.CustomerName,
			CustomerPhone:    parent.CustomerPhone,
			ShippingAddress:  parent.ShippingAddress,
			ShippingCity:     parent.ShippingCity,
			ShippingDistrict: parent.ShippingDistrict,
			PaymentMethod:    parent.PaymentMethod,
			PaymentStatus:    entity.PaymentStatusUnpaid,
			ParentOrderID:    &parent.ID,
			CreatedBy:        in.Actor,
			ConvertedAt:      &now,
			CreatedAt:        now,
			UpdatedAt:        now,
		}

		returnTotal := decimal.Zero
		for _, ret := range in.ReturnItems {
			original, ok := orderedByVariant[ret.VariantID]
			if !ok {
				return &domain.ValidationError{Field: "return_items.variant_id",
					Message: "variant " + ret.VariantID + " is not part of order " + parent.ID}
			}
			if ret.Quantity <= 0 || ret.Quantity > original.Quantity {
				return &domain.ValidationError{Field: "return_items.quantity",
					Message: fmt.Sprintf("must be between 1 and the ordered quantity %d", original.Quantity)}
			}
			child.Items = append(child.Items, entity.OrderItem{
				ID:           uuid.New().String(),
				OrderID:      child.ID,
				VariantID:    ret.VariantID,
				Name:         original.Name,
				Quantity:     -ret.Quantity,
				UnitPrice:    original.UnitPrice,
				UnitCost:     original.UnitCost,
				PickupStatus: entity.PickupPending,
			})
			returnTotal = returnTotal.Add(original.UnitPrice.Mul(decimal.NewFromInt(int64(ret.Quantity))))
		}

		newTotal := decimal.Zero
		for _, ni := range in.NewItems {
			if ni.Quantity <= 0 {
				return &domain.ValidationError{Field: "new_items.quantity", Message: "must be positive"}
			}
			v, err := r.Variants.GetForUpdate(ni.VariantID)
			if err != nil {
				return err
			}
			if v == nil || !v.Active {
				return domain.ErrNotFound
			}
			if v.Available() < ni.Quantity {
				return &domain.InsufficientStockError{
					VariantID: v.ID, Bucket: entity.BucketSellable,
					Requested: ni.Quantity, Available: v.Available(),
				}
			}
			child.Items = append(child.Items, entity.OrderItem{
				ID:        uuid.New().String(),
				OrderID:   child.ID,
				VariantID: ni.VariantID,
				Name:      v.Name,
				Quantity:  ni.Quantity,
				UnitPrice: v.SellingPrice,
				UnitCost:  v.CostPrice,
			})
			newTotal = newTotal.Add(v.SellingPrice.Mul(decimal.NewFromInt(int64(ni.Quantity))))
		}

		child.ExchangeKind = classify(in)
		child.Subtotal = newTotal.Sub(returnTotal)
		child.GrandTotal = child.Subtotal
		child.Notes = "exchange of order " + parent.OrderNumber + ": " + strings.TrimSpace(in.Reason)

		seq, err := r.Sequences.Next("EX", now)
		if err != nil {
			return err
		}
		child.OrderNumber = fmt.Sprintf("EX-%s-%04d", now.Format("20060102"), seq)

		if err := r.Orders.Create(child); err != nil {
			// The new-item deduction below has not run yet, but log loudly:
			// a header without items is repairable, a silent loss is not.
			s.log.Error().Err(err).
				Str("parent_order_id", parent.ID).
				Str("exchange_order_id", child.ID).
				Msg("exchange order insertion failed")
			return err
		}

		// New legs deduct stock immediately; return legs wait for pickup QC.
		for _, item := range child.Items {
			if item.Quantity <= 0 {
				continue
			}
			_, err := s.ledger.Adjust(r.Variants, r.Movements, ledger.AdjustInput{
				VariantID: item.VariantID,
				Bucket:    entity.BucketSellable,
				Delta:     -item.Quantity,
				CausalRef: child.ID,
				Reason:    "exchange new item",
				Actor:     in.Actor,
			})
			if err != nil {
				s.log.Error().Err(err).
					Str("exchange_order_id", child.ID).
					Str("variant_id", item.VariantID).
					Msg("exchange stock deduction failed, rolling back reconciliation")
				return err
			}
		}

		// Cross-reference both sides of the lineage.
		for _, l := range []*entity.OrderLog{
			{
				ID: uuid.New().String(), OrderID: parent.ID,
				FromStatus: parent.Status, ToStatus: parent.Status,
				Actor:  in.Actor,
				Reason: "exchange " + child.OrderNumber + " created: " + strings.TrimSpace(in.Reason),
			},
			{
				ID: uuid.New().String(), OrderID: child.ID,
				FromStatus: entity.StatusIntake, ToStatus: entity.StatusConverted,
				Actor:  in.Actor,
				Reason: "reconciled from order " + parent.OrderNumber,
			},
		} {
			l.CreatedAt = now
			if err := r.OrderLogs.Create(l); err != nil {
				return err
			}
		}

		result = &ReconcileResult{
			Order:       child,
			Kind:        child.ExchangeKind,
			ReturnTotal: returnTotal,
			NewTotal:    newTotal,
			NetAmount:   newTotal.Sub(returnTotal),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("parent_order_id", in.OriginalOrderID).
		Str("exchange_order_id", result.Order.ID).
		Str("kind", result.Kind).
		Str("net_amount", result.NetAmount.String()).
		Msg("exchange reconciled")
	return result, nil
}

func classify(in ReconcileInput) string {
	switch {
	case len(in.ReturnItems) > 0 && len(in.NewItems) > 0:
		return entity.ExchangeKindExchange
	case len(in.ReturnItems) > 0:
		return entity.ExchangeKindRefund
	default:
		return entity.ExchangeKindAddon
	}
}
