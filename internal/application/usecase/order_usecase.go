package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/pasalhq/pasal-erp/internal/application/dto"
	"github.com/pasalhq/pasal-erp/internal/application/ports"
	"github.com/pasalhq/pasal-erp/internal/domain"
	"github.com/pasalhq/pasal-erp/internal/domain/entity"
	"github.com/pasalhq/pasal-erp/internal/domain/repository"
	"github.com/pasalhq/pasal-erp/pkg/logger"
)

// OrderUseCase handles order intake and reads. Status changes go through the
// fulfillment service, never through this type.
type OrderUseCase struct {
	tx      ports.TxRunner
	logRepo repository.OrderLogRepository
	log     *logger.Logger
}

// NewOrderUseCase builds the order intake use case.
func NewOrderUseCase(tx ports.TxRunner, logRepo repository.OrderLogRepository, log *logger.Logger) *OrderUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &OrderUseCase{tx: tx, logRepo: logRepo, log: log}
}

// Create registers a new order at intake. Prices and costs are snapshotted
// from the variant at this moment and never re-read. No stock is reserved
// until the order converts.
func (uc *OrderUseCase) Create(ctx context.Context, in dto.CreateOrderRequest, actor string) (*entity.Order, error) {
	if err := dto.Validate(in); err != nil {
		return nil, err
	}

	now := time.Now()
	o := &entity.Order{
		ID:               uuid.New().String(),
		FulfillmentType:  in.FulfillmentType,
		Status:           entity.StatusIntake,
		CustomerName:     in.CustomerName,
		CustomerPhone:    in.CustomerPhone,
		ShippingAddress:  in.ShippingAddress,
		ShippingCity:     in.ShippingCity,
		ShippingDistrict: in.ShippingDistrict,
		PaymentMethod:    in.PaymentMethod,
		PaymentStatus:    entity.PaymentStatusUnpaid,
		DeliveryCharge:   in.DeliveryCharge,
		Discount:         in.Discount,
		Notes:            in.Notes,
		CreatedBy:        actor,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	err := uc.tx.Run(ctx, func(r ports.Repos) error {
		subtotal := decimal.Zero
		for _, it := range in.Items {
			v, err := r.Variants.GetByID(it.VariantID)
			if err != nil {
				return err
			}
			if v == nil || !v.Active {
				return domain.ErrNotFound
			}
			o.Items = append(o.Items, entity.OrderItem{
				ID:        uuid.New().String(),
				OrderID:   o.ID,
				VariantID: v.ID,
				Name:      v.Name,
				Quantity:  it.Quantity,
				UnitPrice: v.SellingPrice,
				UnitCost:  v.CostPrice,
			})
			subtotal = subtotal.Add(v.SellingPrice.Mul(decimal.NewFromInt(int64(it.Quantity))))
		}
		o.Subtotal = subtotal
		o.GrandTotal = subtotal.Add(o.DeliveryCharge).Sub(o.Discount)

		seq, err := r.Sequences.Next("SO", now)
		if err != nil {
			return err
		}
		o.OrderNumber = fmt.Sprintf("SO-%s-%04d", now.Format("20060102"), seq)

		if err := r.Orders.Create(o); err != nil {
			return err
		}
		return r.OrderLogs.Create(&entity.OrderLog{
			ID:         uuid.New().String(),
			OrderID:    o.ID,
			FromStatus: entity.StatusIntake,
			ToStatus:   entity.StatusIntake,
			Actor:      actor,
			Reason:     "order created",
			CreatedAt:  now,
		})
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("order_id", o.ID).
		Str("order_number", o.OrderNumber).
		Str("fulfillment_type", o.FulfillmentType).
		Msg("order created")
	return o, nil
}

// Get returns an order with items.
func (uc *OrderUseCase) Get(ctx context.Context, id string) (*entity.Order, error) {
	var o *entity.Order
	err := uc.tx.Run(ctx, func(r ports.Repos) error {
		var err error
		o, err = r.Orders.GetByID(id)
		return err
	})
	if err != nil {
		return nil, err
	}
	if o == nil || o.DeletedAt != nil {
		return nil, domain.ErrNotFound
	}
	return o, nil
}

// List returns orders filtered by status and/or fulfillment type.
func (uc *OrderUseCase) List(ctx context.Context, status, fulfillmentType string, limit int) ([]entity.Order, error) {
	var out []entity.Order
	err := uc.tx.Run(ctx, func(r ports.Repos) error {
		var err error
		out, err = r.Orders.List(status, fulfillmentType, limit)
		return err
	})
	return out, err
}

// Logs returns the append-only audit trail for an order.
func (uc *OrderUseCase) Logs(ctx context.Context, orderID string) ([]entity.OrderLog, error) {
	return uc.logRepo.ListByOrder(orderID)
}

// SoftDelete hides an order. Only intake orders that never reserved stock
// may be deleted; anything later must go through cancellation.
func (uc *OrderUseCase) SoftDelete(ctx context.Context, id, actor string) error {
	return uc.tx.Run(ctx, func(r ports.Repos) error {
		o, err := r.Orders.GetForUpdate(id)
		if err != nil {
			return err
		}
		if o == nil || o.DeletedAt != nil {
			return domain.ErrNotFound
		}
		switch o.Status {
		case entity.StatusIntake, entity.StatusFollowUp, entity.StatusCancelled, entity.StatusRejected:
			// no live reservation on these
		default:
			return fmt.Errorf("order %s is %s, cancel it instead of deleting: %w", o.ID, o.Status, domain.ErrConflict)
		}
		return r.Orders.SoftDelete(id)
	})
}
