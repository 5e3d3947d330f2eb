package fulfillment

import (
	"github.com/pasalhq/pasal-erp/internal/application/ledger"
	"github.com/pasalhq/pasal-erp/internal/application/ports"
	"github.com/pasalhq/pasal-erp/internal/domain"
	"github.com/pasalhq/pasal-erp/internal/domain/entity"
)

// applyStockEffects is the reservation coordinator: it maps an accepted
// transition to its ledger calls. Runs inside the same transaction as the
// status update, so a failed stock effect rolls the transition back.
//
//	convert            -> reserve each line item (all or nothing)
//	pack               -> no stock change, reservation persists
//	dispatch           -> consume the reservation and deduct sellable
//	dispatch walk-back -> reverse the consumption
//	cancel/reject      -> release the reservation (or restore, post-dispatch)
//	returned/rto_received -> restore per QC outcome
func (s *Service) applyStockEffects(r ports.Repos, o *entity.Order, target string, qc []QCResult, actor string) error {
	if o.IsExchangeChild() {
		return s.applyExchangeChildEffects(r, o, target, qc, actor)
	}

	from := o.Status
	switch target {
	case entity.StatusConverted:
		// Reserve every line. Any insufficient line fails the whole
		// conversion via transaction rollback — no partial reservation.
		for _, item := range o.Items {
			if item.Quantity <= 0 {
				continue
			}
			if _, err := s.adjust(r, item.VariantID, entity.BucketReserved, item.Quantity, o.ID, "order converted", actor); err != nil {
				return err
			}
		}

	case entity.StatusAssigned, entity.StatusHandoverToCourier:
		if from != entity.StatusPacked {
			return nil // out_for_delivery -> assigned walk-back, no stock change
		}
		return s.consumeReservation(r, o, target, actor)

	case entity.StatusStoreSale:
		switch from {
		case entity.StatusPacked, entity.StatusConverted:
			return s.consumeReservation(r, o, target, actor)
		case entity.StatusIntake:
			// Direct counter sale: no reservation was ever taken.
			for _, item := range o.Items {
				if item.Quantity <= 0 {
					continue
				}
				if _, err := s.adjust(r, item.VariantID, entity.BucketSellable, -item.Quantity, o.ID, "store sale", actor); err != nil {
					return err
				}
			}
		}

	case entity.StatusPacked:
		if from == entity.StatusAssigned {
			// Dispatch walked back: put the deduction back under reservation.
			for _, item := range o.Items {
				if item.Quantity <= 0 {
					continue
				}
				if _, err := s.adjust(r, item.VariantID, entity.BucketSellable, item.Quantity, o.ID, "dispatch reverted", actor); err != nil {
					return err
				}
				if _, err := s.adjust(r, item.VariantID, entity.BucketReserved, item.Quantity, o.ID, "dispatch reverted", actor); err != nil {
					return err
				}
			}
		}
		// converted -> packed: reservation persists, nothing to do.

	case entity.StatusCancelled, entity.StatusRejected:
		switch from {
		case entity.StatusConverted, entity.StatusPacked:
			// Pre-deduction: release the full reservation, zero net sellable change.
			for _, item := range o.Items {
				if item.Quantity <= 0 {
					continue
				}
				if _, err := s.adjust(r, item.VariantID, entity.BucketReserved, -item.Quantity, o.ID, "order "+target, actor); err != nil {
					return err
				}
			}
		case entity.StatusAssigned:
			// Post-deduction: the reservation was already consumed, the goods
			// come back to the shelf.
			for _, item := range o.Items {
				if item.Quantity <= 0 {
					continue
				}
				if _, err := s.adjust(r, item.VariantID, entity.BucketSellable, item.Quantity, o.ID, "order "+target, actor); err != nil {
					return err
				}
			}
		}
		// intake/follow_up: nothing was reserved yet.

	case entity.StatusReturned, entity.StatusRTOReceived:
		return s.settleQC(r, o, qc, target, actor)
	}

	// packed (from converted), out_for_delivery, in_transit, delivered,
	// return_initiated, rto_initiated, follow_up, lost_in_transit:
	// no stock movement on these edges.
	return nil
}

// consumeReservation deducts sellable and releases the matching reservation:
// the hold is consumed, not duplicated. Reserved goes first so the
// reserved <= sellable invariant holds at every step.
func (s *Service) consumeReservation(r ports.Repos, o *entity.Order, target, actor string) error {
	for _, item := range o.Items {
		if item.Quantity <= 0 {
			continue
		}
		if _, err := s.adjust(r, item.VariantID, entity.BucketReserved, -item.Quantity, o.ID, "order "+target, actor); err != nil {
			return err
		}
		if _, err := s.adjust(r, item.VariantID, entity.BucketSellable, -item.Quantity, o.ID, "order "+target, actor); err != nil {
			return err
		}
	}
	return nil
}

// settleQC restores stock for physically received units according to their
// QC outcome: good to sellable, damaged to the damaged bucket, missing and
// wrong_item restore nothing.
func (s *Service) settleQC(r ports.Repos, o *entity.Order, qc []QCResult, target, actor string) error {
	if len(qc) == 0 {
		return &domain.ValidationError{Field: "qc", Message: "qc outcomes required to settle " + target}
	}

	itemsByID := make(map[string]*entity.OrderItem, len(o.Items))
	for i := range o.Items {
		itemsByID[o.Items[i].ID] = &o.Items[i]
	}

	for _, res := range qc {
		item, ok := itemsByID[res.OrderItemID]
		if !ok {
			return &domain.ValidationError{Field: "qc.order_item_id", Message: "item " + res.OrderItemID + " is not part of order " + o.ID}
		}
		if !entity.IsValidQCOutcome(res.Outcome) {
			return &domain.ValidationError{Field: "qc.outcome", Message: "unknown outcome " + res.Outcome}
		}
		if res.Quantity <= 0 || res.Quantity > item.Quantity {
			return &domain.ValidationError{Field: "qc.quantity", Message: "must be between 1 and the ordered quantity"}
		}

		switch res.Outcome {
		case entity.QCOutcomeGood:
			if _, err := s.adjust(r, item.VariantID, entity.BucketSellable, res.Quantity, o.ID, "return qc good", actor); err != nil {
				return err
			}
		case entity.QCOutcomeDamaged:
			if _, err := s.adjust(r, item.VariantID, entity.BucketDamaged, res.Quantity, o.ID, "return qc damaged", actor); err != nil {
				return err
			}
		}
		// missing / wrong_item: tracked in the log only, nothing returns to stock.
	}
	return nil
}

// applyExchangeChildEffects handles exchange child orders. Their new-item
// stock was deducted at reconciliation and their pending return legs settle
// through the exchange service, so the coordinator skips reserve/consume.
// Cancellation restores the up-front deduction; a delivered child's new legs
// coming back as a return settle through QC like any other order.
func (s *Service) applyExchangeChildEffects(r ports.Repos, o *entity.Order, target string, qc []QCResult, actor string) error {
	switch target {
	case entity.StatusCancelled, entity.StatusRejected:
		for _, item := range o.Items {
			if item.Quantity <= 0 {
				continue
			}
			if _, err := s.adjust(r, item.VariantID, entity.BucketSellable, item.Quantity, o.ID, "exchange "+target, actor); err != nil {
				return err
			}
		}
	case entity.StatusReturned, entity.StatusRTOReceived:
		return s.settleQC(r, o, qc, target, actor)
	}
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
