package fulfillment

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pasalhq/pasal-erp/internal/application/ledger"
	"github.com/pasalhq/pasal-erp/internal/application/ports"
	"github.com/pasalhq/pasal-erp/internal/domain"
	"github.com/pasalhq/pasal-erp/internal/domain/entity"
	domfulfillment "github.com/pasalhq/pasal-erp/internal/domain/fulfillment"
	"github.com/pasalhq/pasal-erp/pkg/logger"
)

// Service executes order status transitions: table lookup, guard checks,
// stock side effects and the audit log entry, all inside one database
// transaction. If the stock effect fails, the status change rolls back with
// it — never one without the other.
type Service struct {
	tx       ports.TxRunner
	ledger   *ledger.Ledger
	notifier ports.Notifier
	log      *logger.Logger
}

// NewService builds the transition service. notifier may be nil.
func NewService(tx ports.TxRunner, ldg *ledger.Ledger, notifier ports.Notifier, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{tx: tx, ledger: ldg, notifier: notifier, log: log}
}

// QCResult is the physical QC outcome for returned units of one order item.
type QCResult struct {
	OrderItemID string
	Outcome     string // good | damaged | missing | wrong_item
	Quantity    int
}

// TransitionInput is one requested status change.
type TransitionInput struct {
	OrderID string
	Target  string
	Actor   string
	Reason  string
	// QC is required when the target settles physically received units
	// (returned, rto_received) on an order whose stock was already deducted.
	QC []QCResult
}

// Transition validates and applies one status change. Returns the OrderLog
// row appended for the accepted transition.
func (s *Service) Transition(ctx context.Context, in TransitionInput) (*entity.OrderLog, error) {
	if !entity.IsValidStatus(in.Target) {
		return nil, &domain.ValidationError{Field: "target", Message: "unknown status " + in.Target}
	}

	var (
		logEntry *entity.OrderLog
		order    *entity.Order
	)
	err := s.tx.Run(ctx, func(r ports.Repos) error {
		o, err := r.Orders.GetForUpdate(in.OrderID)
		if err != nil {
			return err
		}
		if o == nil || o.DeletedAt != nil {
			return domain.ErrNotFound
		}

		table, err := domfulfillment.ForType(o.FulfillmentType)
		if err != nil {
			return err
		}
		if !table.Allowed(o.Status, in.Target) {
			return &domain.IllegalTransitionError{From: o.Status, To: in.Target, FulfillmentType: o.FulfillmentType}
		}
		if err := domfulfillment.CheckGuards(o, in.Target, in.Reason); err != nil {
			return err
		}

		from := o.Status
		if err := s.applyStockEffects(r, o, in.Target, in.QC, in.Actor); err != nil {
			return err
		}

		now := time.Now()
		o.Status = in.Target
		o.UpdatedAt = now
		switch in.Target {
		case entity.StatusConverted:
			o.ConvertedAt = &now
		case entity.StatusDelivered:
			o.DeliveredAt = &now
			if o.PaymentMethod == entity.PaymentCOD && o.PaymentStatus == entity.PaymentStatusUnpaid {
				o.PaymentStatus = entity.PaymentStatusPaid
			}
			for i := range o.Items {
				if o.Items[i].Quantity > 0 {
					o.Items[i].FulfilledQty = o.Items[i].Quantity
					if err := r.Orders.UpdateItem(&o.Items[i]); err != nil {
						return err
					}
				}
			}
		case entity.StatusReturned:
			if o.PaymentStatus == entity.PaymentStatusPaid {
				o.PaymentStatus = entity.PaymentStatusRefunded
			}
		}
		if err := r.Orders.UpdateStatus(o); err != nil {
			return err
		}

		logEntry = &entity.OrderLog{
			ID:         uuid.New().String(),
			OrderID:    o.ID,
			FromStatus: from,
			ToStatus:   in.Target,
			Actor:      in.Actor,
			Reason:     strings.TrimSpace(in.Reason),
			CreatedAt:  now,
		}
		if err := r.OrderLogs.Create(logEntry); err != nil {
			return err
		}
		order = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("order_id", order.ID).
		Str("from", logEntry.FromStatus).
		Str("to", logEntry.ToStatus).
		Str("actor", in.Actor).
		Msg("order transition applied")

	// Fire-and-forget: the notification system never gates the transition.
	if s.notifier != nil && (in.Target == entity.StatusDelivered || in.Target == entity.StatusCancelled) {
		s.notifier.OrderStatusChanged(order.ID, order.OrderNumber, order.CustomerPhone, in.Target)
	}
	return logEntry, nil
}

// AssignRider sets the rider on an inside_valley order before dispatch.
func (s *Service) AssignRider(ctx context.Context, orderID, riderID, actor string) (*entity.Order, error) {
	if riderID == "" {
		return nil, &domain.ValidationError{Field: "rider_id", Message: "required"}
	}
	var order *entity.Order
	err := s.tx.Run(ctx, func(r ports.Repos) error {
		o, err := r.Orders.GetForUpdate(orderID)
		if err != nil {
			return err
		}
		if o == nil || o.DeletedAt != nil {
			return domain.ErrNotFound
		}
		if o.FulfillmentType != entity.FulfillmentInsideValley {
			return &domain.ValidationError{Field: "fulfillment_type", Message: "riders only serve inside_valley orders"}
		}
		o.RiderID = &riderID
		o.UpdatedAt = time.Now()
		if err := r.Orders.UpdateLogistics(o); err != nil {
			return err
		}
		order = o
		return nil
	})
	return order, err
}

// AssignCourier sets courier partner, AWB/tracking and destination branch on
// an outside_valley order before handover.
func (s *Service) AssignCourier(ctx context.Context, orderID, partner, awb, trackingID, branch, actor string) (*entity.Order, error) {
	if partner == "" {
		return nil, &domain.ValidationError{Field: "courier_partner", Message: "required"}
	}
	var order *entity.Order
	err := s.tx.Run(ctx, func(r ports.Repos) error {
		o, err := r.Orders.GetForUpdate(orderID)
		if err != nil {
			return err
		}
		if o == nil || o.DeletedAt != nil {
			return domain.ErrNotFound
		}
		if o.FulfillmentType != entity.FulfillmentOutsideValley {
			return &domain.ValidationError{Field: "fulfillment_type", Message: "couriers only serve outside_valley orders"}
		}
		o.CourierPartner = &partner
		if awb != "" {
			o.CourierAWB = &awb
		}
		if trackingID != "" {
			o.CourierTrackingID = &trackingID
		}
		if branch != "" {
			o.DestinationBranch = &branch
		}
		o.UpdatedAt = time.Now()
		if err := r.Orders.UpdateLogistics(o); err != nil {
			return err
		}
		order = o
		return nil
	})
	return order, err
}

// ReassignFulfillmentType switches an order between inside_valley and
// outside_valley. Guarded: never to/from store, only before dispatch, and
// always through this operation — never a bare field update. Logistics
// fields are cleared and the change is logged.
func (s *Service) ReassignFulfillmentType(ctx context.Context, orderID, newType, actor, reason string) (*entity.Order, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, &domain.MissingGuardDataError{Field: "reason", Transition: "fulfillment reassignment"}
	}
	var order *entity.Order
	err := s.tx.Run(ctx, func(r ports.Repos) error {
		o, err := r.Orders.GetForUpdate(orderID)
		if err != nil {
			return err
		}
		if o == nil || o.DeletedAt != nil {
			return domain.ErrNotFound
		}
		if err := domfulfillment.CheckReassignment(o, newType); err != nil {
			return err
		}

		oldType := o.FulfillmentType
		o.FulfillmentType = newType
		o.RiderID = nil
		o.CourierPartner = nil
		o.CourierAWB = nil
		o.CourierTrackingID = nil
		o.DestinationBranch = nil
		o.UpdatedAt = time.Now()
		if err := r.Orders.UpdateFulfillmentType(o); err != nil {
			return err
		}
		if err := r.Orders.UpdateLogistics(o); err != nil {
			return err
		}

		logEntry := &entity.OrderLog{
			ID:         uuid.New().String(),
			OrderID:    o.ID,
			FromStatus: o.Status,
			ToStatus:   o.Status,
			Actor:      actor,
			Reason:     "fulfillment type " + oldType + " -> " + newType + ": " + strings.TrimSpace(reason),
			CreatedAt:  time.Now(),
		}
		if err := r.OrderLogs.Create(logEntry); err != nil {
			return err
		}
		order = o
		return nil
	})
	return order, err
}
