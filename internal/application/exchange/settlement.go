package exchange

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pasalhq/pasal-erp/internal/application/ledger"
	"github.com/pasalhq/pasal-erp/internal/application/ports"
	"github.com/pasalhq/pasal-erp/internal/domain"
	"github.com/pasalhq/pasal-erp/internal/domain/entity"
)

// PickupResult is the QC outcome for one pending_pickup return leg.
type PickupResult struct {
	OrderItemID string
	Outcome     string // good | damaged | missing | wrong_item
	Quantity    int
}

// SettleInput settles picked-up return legs of an exchange order.
type SettleInput struct {
	ExchangeOrderID string
	Results         []PickupResult
	Actor           string
}

// SettlePickup restores stock for return legs once the physical pickup/QC
// step confirms receipt: good to sellable, damaged to the damaged bucket,
// missing and wrong_item restore nothing. Legs settle exactly once.
func (s *Service) SettlePickup(ctx context.Context, in SettleInput) error {
	if len(in.Results) == 0 {
		return &domain.ValidationError{Field: "results", Message: "at least one qc result is required"}
	}

	err := s.tx.Run(ctx, func(r ports.Repos) error {
		o, err := r.Orders.GetForUpdate(in.ExchangeOrderID)
		if err != nil {
			return err
		}
		if o == nil || o.DeletedAt != nil {
			return domain.ErrNotFound
		}
		if !o.IsExchangeChild() {
			return &domain.ValidationError{Field: "exchange_order_id", Message: "order " + o.ID + " is not an exchange order"}
		}

		itemsByID := make(map[string]*entity.OrderItem, len(o.Items))
		for i := range o.Items {
			itemsByID[o.Items[i].ID] = &o.Items[i]
		}

		now := time.Now()
		for _, res := range in.Results {
			item, ok := itemsByID[res.OrderItemID]
			if !ok {
				return &domain.ValidationError{Field: "results.order_item_id",
					Message: "item " + res.OrderItemID + " is not part of order " + o.ID}
			}
			if item.Quantity >= 0 || item.PickupStatus != entity.PickupPending {
				return fmt.Errorf("item %s is not a pending return leg: %w", item.ID, domain.ErrConflict)
			}
			if !entity.IsValidQCOutcome(res.Outcome) {
				return &domain.ValidationError{Field: "results.outcome", Message: "unknown outcome " + res.Outcome}
			}
			returnedQty := -item.Quantity
			if res.Quantity <= 0 || res.Quantity > returnedQty {
				return &domain.ValidationError{Field: "results.quantity",
					Message: fmt.Sprintf("must be between 1 and the return quantity %d", returnedQty)}
			}

			switch res.Outcome {
			case entity.QCOutcomeGood:
				if _, err := s.adjust(r, item.VariantID, entity.BucketSellable, res.Quantity, o.ID, "exchange pickup qc good", in.Actor); err != nil {
					return err
				}
			case entity.QCOutcomeDamaged:
				if _, err := s.adjust(r, item.VariantID, entity.BucketDamaged, res.Quantity, o.ID, "exchange pickup qc damaged", in.Actor); err != nil {
					return err
				}
			}

			item.PickupStatus = entity.PickupSettled
			item.FulfilledQty = res.Quantity
			if err := r.Orders.UpdateItem(item); err != nil {
				return err
			}
		}

		logEntry := &entity.OrderLog{
			ID:         uuid.New().String(),
			OrderID:    o.ID,
			FromStatus: o.Status,
			ToStatus:   o.Status,
			Actor:      in.Actor,
			Reason:     fmt.Sprintf("pickup settled for %d return leg(s)", len(in.Results)),
			CreatedAt:  now,
		}
		return r.OrderLogs.Create(logEntry)
	})
	if err != nil {
		return err
	}

	s.log.Info().
		Str("exchange_order_id", in.ExchangeOrderID).
		Int("legs", len(in.Results)).
		Msg("exchange pickup settled")
	return nil
}

func (s *Service) adjust(r ports.Repos, variantID, bucket string, delta int, ref, reason, actor string) (*entity.StockMovement, error) {
	return s.ledger.Adjust(r.Variants, r.Movements, ledger.AdjustInput{
		VariantID: variantID,
		Bucket:    bucket,
		Delta:     delta,
		CausalRef: ref,
		Reason:    reason,
		Actor:     actor,
	})
}
