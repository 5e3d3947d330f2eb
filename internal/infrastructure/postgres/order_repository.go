package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/pasalhq/pasal-erp/internal/domain"
	"github.com/pasalhq/pasal-erp/internal/domain/entity"
	"github.com/pasalhq/pasal-erp/internal/domain/repository"
)

var _ repository.OrderRepository = (*OrderRepo)(nil)

// OrderRepo implements OrderRepository over PostgreSQL.
type OrderRepo struct {
	q Querier
}

// NewOrderRepository builds the order adapter.
func NewOrderRepository(q Querier) *OrderRepo {
	return &OrderRepo{q: q}
}

const orderColumns = `
	id, order_number, fulfillment_type, status,
	customer_name, customer_phone, shipping_address, shipping_city, shipping_district,
	payment_method, payment_status,
	subtotal, delivery_charge, discount, grand_total,
	rider_id, courier_partner, courier_awb, courier_tracking_id, destination_branch,
	parent_order_id, exchange_kind,
	notes, created_by, converted_at, delivered_at, deleted_at, created_at, updated_at`

func scanOrder(row pgx.Row) (*entity.Order, error) {
	var o entity.Order
	err := row.Scan(
		&o.ID, &o.OrderNumber, &o.FulfillmentType, &o.Status,
		&o.CustomerName, &o.CustomerPhone, &o.ShippingAddress, &o.ShippingCity, &o.ShippingDistrict,
		&o.PaymentMethod, &o.PaymentStatus,
		&o.Subtotal, &o.DeliveryCharge, &o.Discount, &o.GrandTotal,
		&o.RiderID, &o.CourierPartner, &o.CourierAWB, &o.CourierTrackingID, &o.DestinationBranch,
		&o.ParentOrderID, &o.ExchangeKind,
		&o.Notes, &o.CreatedBy, &o.ConvertedAt, &o.DeliveredAt, &o.DeletedAt, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// Create inserts the header and all items.
func (r *OrderRepo) Create(o *entity.Order) error {
	ctx := context.Background()
	query := `
		INSERT INTO orders (
			id, order_number, fulfillment_type, status,
			customer_name, customer_phone, shipping_address, shipping_city, shipping_district,
			payment_method, payment_status,
			subtotal, delivery_charge, discount, grand_total,
			parent_order_id, exchange_kind, notes, created_by, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, now(), now())`
	_, err := r.q.Exec(ctx, query,
		o.ID, o.OrderNumber, o.FulfillmentType, o.Status,
		o.CustomerName, o.CustomerPhone, o.ShippingAddress, o.ShippingCity, o.ShippingDistrict,
		o.PaymentMethod, o.PaymentStatus,
		o.Subtotal, o.DeliveryCharge, o.Discount, o.GrandTotal,
		o.ParentOrderID, o.ExchangeKind, o.Notes, o.CreatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("create order: %w", err)
	}

	itemQuery := `
		INSERT INTO order_items (
			id, order_id, variant_id, name, quantity, unit_price, unit_cost,
			fulfilled_qty, pickup_status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	for i := range o.Items {
		it := &o.Items[i]
		if _, err := r.q.Exec(ctx, itemQuery,
			it.ID, o.ID, it.VariantID, it.Name, it.Quantity, it.UnitPrice, it.UnitCost,
			it.FulfilledQty, it.PickupStatus); err != nil {
			return fmt.Errorf("create order item: %w", err)
		}
	}
	return nil
}

func (r *OrderRepo) loadItems(o *entity.Order) error {
	query := `
		SELECT id, order_id, variant_id, name, quantity, unit_price, unit_cost,
			fulfilled_qty, pickup_status
		FROM order_items WHERE order_id = $1
		ORDER BY id`
	rows, err := r.q.Query(context.Background(), query, o.ID)
	if err != nil {
		return fmt.Errorf("load order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var it entity.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.VariantID, &it.Name, &it.Quantity,
			&it.UnitPrice, &it.UnitCost, &it.FulfilledQty, &it.PickupStatus); err != nil {
			return fmt.Errorf("scan order item: %w", err)
		}
		o.Items = append(o.Items, it)
	}
	return rows.Err()
}

// GetByID loads an order with its items. Soft-deleted orders are still
// readable; callers decide whether that matters.
func (r *OrderRepo) GetByID(id string) (*entity.Order, error) {
	query := `SELECT` + orderColumns + ` FROM orders WHERE id = $1`
	o, err := scanOrder(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	if err := r.loadItems(o); err != nil {
		return nil, err
	}
	return o, nil
}

// GetForUpdate loads an order with items and locks the header row. Two
// concurrent transitions on the same order serialize here; the loser re-reads
// the status the winner committed.
func (r *OrderRepo) GetForUpdate(id string) (*entity.Order, error) {
	query := `SELECT` + orderColumns + ` FROM orders WHERE id = $1 FOR UPDATE`
	o, err := scanOrder(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get order for update: %w", err)
	}
	if err := r.loadItems(o); err != nil {
		return nil, err
	}
	return o, nil
}

// UpdateStatus persists status, payment status and status timestamps.
func (r *OrderRepo) UpdateStatus(o *entity.Order) error {
	query := `
		UPDATE orders
		SET status = $2, payment_status = $3, converted_at = $4, delivered_at = $5, updated_at = now()
		WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query,
		o.ID, o.Status, o.PaymentStatus, o.ConvertedAt, o.DeliveredAt)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// UpdateLogistics persists rider and courier assignment fields.
func (r *OrderRepo) UpdateLogistics(o *entity.Order) error {
	query := `
		UPDATE orders
		SET rider_id = $2, courier_partner = $3, courier_awb = $4,
			courier_tracking_id = $5, destination_branch = $6, updated_at = now()
		WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query,
		o.ID, o.RiderID, o.CourierPartner, o.CourierAWB, o.CourierTrackingID, o.DestinationBranch)
	if err != nil {
		return fmt.Errorf("update order logistics: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// UpdateFulfillmentType persists a guarded reassignment.
func (r *OrderRepo) UpdateFulfillmentType(o *entity.Order) error {
	query := `UPDATE orders SET fulfillment_type = $2, updated_at = now() WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query, o.ID, o.FulfillmentType)
	if err != nil {
		return fmt.Errorf("update fulfillment type: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// UpdateItem persists fulfilled quantity and pickup status of one line.
func (r *OrderRepo) UpdateItem(item *entity.OrderItem) error {
	query := `UPDATE order_items SET fulfilled_qty = $2, pickup_status = $3 WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query, item.ID, item.FulfilledQty, item.PickupStatus)
	if err != nil {
		return fmt.Errorf("update order item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// SoftDelete stamps deleted_at. The row stays for the audit trail.
func (r *OrderRepo) SoftDelete(id string) error {
	query := `UPDATE orders SET deleted_at = now(), updated_at = now() WHERE id = $1 AND deleted_at IS NULL`
	tag, err := r.q.Exec(context.Background(), query, id)
	if err != nil {
		return fmt.Errorf("soft delete order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List returns non-deleted order headers filtered by status and/or
// fulfillment type, newest first. Items are not loaded.
func (r *OrderRepo) List(status, fulfillmentType string, limit int) ([]entity.Order, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT` + orderColumns + `
		FROM orders
		WHERE deleted_at IS NULL
			AND ($1 = '' OR status = $1)
			AND ($2 = '' OR fulfillment_type = $2)
		ORDER BY created_at DESC LIMIT $3`
	rows, err := r.q.Query(context.Background(), query, status, fulfillmentType, limit)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var orders []entity.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, *o)
	}
	return orders, rows.Err()
}

// ListChildren returns exchange child orders of a parent, oldest first,
// with items loaded.
func (r *OrderRepo) ListChildren(parentOrderID string) ([]entity.Order, error) {
	query := `SELECT` + orderColumns + `
		FROM orders WHERE parent_order_id = $1 ORDER BY created_at`
	rows, err := r.q.Query(context.Background(), query, parentOrderID)
	if err != nil {
		return nil, fmt.Errorf("list child orders: %w", err)
	}
	defer rows.Close()

	var orders []entity.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range orders {
		if err := r.loadItems(&orders[i]); err != nil {
			return nil, err
		}
	}
	return orders, nil
}
