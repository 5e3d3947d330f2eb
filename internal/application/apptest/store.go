// Package apptest provides in-memory repository fakes for use case tests.
// The fake TxRunner snapshots the store before each callback and restores it
// on error, mirroring the rollback behavior of the real transaction runner.
package apptest

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pasalhq/pasal-erp/internal/application/ports"
	"github.com/pasalhq/pasal-erp/internal/domain"
	"github.com/pasalhq/pasal-erp/internal/domain/entity"
)

// Store holds all state behind the fakes.
type Store struct {
	mu sync.Mutex

	Variants     map[string]entity.Variant
	Movements    []entity.StockMovement
	Transactions map[string]entity.InventoryTransaction
	Orders       map[string]entity.Order
	OrderLogs    []entity.OrderLog
	Vendors      map[string]entity.Vendor
	Products     map[string]entity.Product
	Users        map[string]entity.User
	Sequences    map[string]int
}

// NewStore builds an empty store.
func NewStore() *Store {
	return &Store{
		Variants:     make(map[string]entity.Variant),
		Transactions: make(map[string]entity.InventoryTransaction),
		Orders:       make(map[string]entity.Order),
		Vendors:      make(map[string]entity.Vendor),
		Products:     make(map[string]entity.Product),
		Users:        make(map[string]entity.User),
		Sequences:    make(map[string]int),
	}
}

// Repos returns the fakes bundled the way the transaction runner hands them
// to use cases.
func (s *Store) Repos() ports.Repos {
	return ports.Repos{
		Variants:     &variantRepo{s: s},
		Movements:    &movementRepo{s: s},
		Transactions: &transactionRepo{s: s},
		Orders:       &orderRepo{s: s},
		OrderLogs:    &orderLogRepo{s: s},
		Vendors:      &vendorRepo{s: s},
		Sequences:    &sequenceRepo{s: s},
	}
}

func cloneTransaction(t entity.InventoryTransaction) entity.InventoryTransaction {
	t.Items = append([]entity.TransactionItem(nil), t.Items...)
	return t
}

func cloneOrder(o entity.Order) entity.Order {
	o.Items = append([]entity.OrderItem(nil), o.Items...)
	return o
}

func (s *Store) snapshot() *Store {
	snap := NewStore()
	for id, v := range s.Variants {
		snap.Variants[id] = v
	}
	snap.Movements = append([]entity.StockMovement(nil), s.Movements...)
	for id, t := range s.Transactions {
		snap.Transactions[id] = cloneTransaction(t)
	}
	for id, o := range s.Orders {
		snap.Orders[id] = cloneOrder(o)
	}
	snap.OrderLogs = append([]entity.OrderLog(nil), s.OrderLogs...)
	for id, v := range s.Vendors {
		snap.Vendors[id] = v
	}
	for id, p := range s.Products {
		snap.Products[id] = p
	}
	for id, u := range s.Users {
		snap.Users[id] = u
	}
	for k, n := range s.Sequences {
		snap.Sequences[k] = n
	}
	return snap
}

func (s *Store) restore(snap *Store) {
	s.Variants = snap.Variants
	s.Movements = snap.Movements
	s.Transactions = snap.Transactions
	s.Orders = snap.Orders
	s.OrderLogs = snap.OrderLogs
	s.Vendors = snap.Vendors
	s.Products = snap.Products
	s.Users = snap.Users
	s.Sequences = snap.Sequences
}

// TxRunner is a fake ports.TxRunner over the store. On callback error the
// store is restored to its pre-callback state.
type TxRunner struct {
	Store *Store
}

var _ ports.TxRunner = (*TxRunner)(nil)

// Run executes fn with repos over the store, rolling back on error.
func (r *TxRunner) Run(ctx context.Context, fn func(repos ports.Repos) error) error {
	r.Store.mu.Lock()
	defer r.Store.mu.Unlock()

	snap := r.Store.snapshot()
	if err := fn(r.Store.Repos()); err != nil {
		r.Store.restore(snap)
		return err
	}
	return nil
}

// NopNotifier discards events.
type NopNotifier struct{}

var _ ports.Notifier = (*NopNotifier)(nil)

func (NopNotifier) OrderStatusChanged(orderID, orderNumber, customerPhone, status string) {}

// RecordingNotifier captures events for assertions.
type RecordingNotifier struct {
	Events []string
}

var _ ports.Notifier = (*RecordingNotifier)(nil)

func (n *RecordingNotifier) OrderStatusChanged(orderID, orderNumber, customerPhone, status string) {
	n.Events = append(n.Events, orderNumber+":"+status)
}

type variantRepo struct{ s *Store }

func (r *variantRepo) Create(v *entity.Variant) error {
	r.s.Variants[v.ID] = *v
	return nil
}

func (r *variantRepo) GetByID(id string) (*entity.Variant, error) {
	v, ok := r.s.Variants[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &v, nil
}

func (r *variantRepo) GetForUpdate(id string) (*entity.Variant, error) {
	return r.GetByID(id)
}

func (r *variantRepo) UpdateStock(v *entity.Variant) error {
	cur, ok := r.s.Variants[v.ID]
	if !ok {
		return domain.ErrNotFound
	}
	cur.SellableStock = v.SellableStock
	cur.DamagedStock = v.DamagedStock
	cur.ReservedStock = v.ReservedStock
	r.s.Variants[v.ID] = cur
	return nil
}

func (r *variantRepo) Update(v *entity.Variant) error {
	cur, ok := r.s.Variants[v.ID]
	if !ok {
		return domain.ErrNotFound
	}
	cur.Name = v.Name
	cur.CostPrice = v.CostPrice
	cur.SellingPrice = v.SellingPrice
	cur.ReorderLevel = v.ReorderLevel
	r.s.Variants[v.ID] = cur
	return nil
}

func (r *variantRepo) Deactivate(id string) error {
	cur, ok := r.s.Variants[id]
	if !ok {
		return domain.ErrNotFound
	}
	cur.Active = false
	r.s.Variants[id] = cur
	return nil
}

func (r *variantRepo) ListByProduct(productID string) ([]entity.Variant, error) {
	var out []entity.Variant
	for _, v := range r.s.Variants {
		if v.ProductID == productID {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SKU < out[j].SKU })
	return out, nil
}

type movementRepo struct{ s *Store }

func (r *movementRepo) Create(m *entity.StockMovement) error {
	r.s.Movements = append(r.s.Movements, *m)
	return nil
}

func (r *movementRepo) ListByVariant(variantID string, limit int) ([]entity.StockMovement, error) {
	var out []entity.StockMovement
	for i := len(r.s.Movements) - 1; i >= 0; i-- {
		if r.s.Movements[i].VariantID == variantID {
			out = append(out, r.s.Movements[i])
			if limit > 0 && len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (r *movementRepo) ListByCausalRef(causalRef string) ([]entity.StockMovement, error) {
	var out []entity.StockMovement
	for _, m := range r.s.Movements {
		if m.CausalRef == causalRef {
			out = append(out, m)
		}
	}
	return out, nil
}

type transactionRepo struct{ s *Store }

func (r *transactionRepo) Create(t *entity.InventoryTransaction) error {
	r.s.Transactions[t.ID] = cloneTransaction(*t)
	return nil
}

func (r *transactionRepo) GetByID(id string) (*entity.InventoryTransaction, error) {
	t, ok := r.s.Transactions[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := cloneTransaction(t)
	return &out, nil
}

func (r *transactionRepo) GetForUpdate(id string) (*entity.InventoryTransaction, error) {
	return r.GetByID(id)
}

func (r *transactionRepo) UpdateStatus(t *entity.InventoryTransaction) error {
	cur, ok := r.s.Transactions[t.ID]
	if !ok {
		return domain.ErrNotFound
	}
	cur.Status = t.Status
	cur.Reason = t.Reason
	cur.ApprovedBy = t.ApprovedBy
	cur.ApprovedAt = t.ApprovedAt
	cur.VoidedAt = t.VoidedAt
	r.s.Transactions[t.ID] = cur
	return nil
}

func (r *transactionRepo) UpdateItemSnapshots(item *entity.TransactionItem) error {
	cur, ok := r.s.Transactions[item.TransactionID]
	if !ok {
		return domain.ErrNotFound
	}
	for i := range cur.Items {
		if cur.Items[i].ID == item.ID {
			cur.Items[i].StockBefore = item.StockBefore
			cur.Items[i].StockAfter = item.StockAfter
			r.s.Transactions[item.TransactionID] = cur
			return nil
		}
	}
	return domain.ErrNotFound
}

func (r *transactionRepo) List(status, txType string, limit int) ([]entity.InventoryTransaction, error) {
	var out []entity.InventoryTransaction
	for _, t := range r.s.Transactions {
		if status != "" && string(t.Status) != status {
			continue
		}
		if txType != "" && t.Type != txType {
			continue
		}
		out = append(out, cloneTransaction(t))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type orderRepo struct{ s *Store }

func (r *orderRepo) Create(o *entity.Order) error {
	r.s.Orders[o.ID] = cloneOrder(*o)
	return nil
}

func (r *orderRepo) GetByID(id string) (*entity.Order, error) {
	o, ok := r.s.Orders[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := cloneOrder(o)
	return &out, nil
}

func (r *orderRepo) GetForUpdate(id string) (*entity.Order, error) {
	return r.GetByID(id)
}

func (r *orderRepo) UpdateStatus(o *entity.Order) error {
	cur, ok := r.s.Orders[o.ID]
	if !ok {
		return domain.ErrNotFound
	}
	cur.Status = o.Status
	cur.PaymentStatus = o.PaymentStatus
	cur.ConvertedAt = o.ConvertedAt
	cur.DeliveredAt = o.DeliveredAt
	cur.UpdatedAt = time.Now()
	r.s.Orders[o.ID] = cur
	return nil
}

func (r *orderRepo) UpdateLogistics(o *entity.Order) error {
	cur, ok := r.s.Orders[o.ID]
	if !ok {
		return domain.ErrNotFound
	}
	cur.RiderID = o.RiderID
	cur.CourierPartner = o.CourierPartner
	cur.CourierAWB = o.CourierAWB
	cur.CourierTrackingID = o.CourierTrackingID
	cur.DestinationBranch = o.DestinationBranch
	r.s.Orders[o.ID] = cur
	return nil
}

func (r *orderRepo) UpdateFulfillmentType(o *entity.Order) error {
	cur, ok := r.s.Orders[o.ID]
	if !ok {
		return domain.ErrNotFound
	}
	cur.FulfillmentType = o.FulfillmentType
	r.s.Orders[o.ID] = cur
	return nil
}

func (r *orderRepo) UpdateItem(item *entity.OrderItem) error {
	cur, ok := r.s.Orders[item.OrderID]
	if !ok {
		return domain.ErrNotFound
	}
	for i := range cur.Items {
		if cur.Items[i].ID == item.ID {
			cur.Items[i].FulfilledQty = item.FulfilledQty
			cur.Items[i].PickupStatus = item.PickupStatus
			r.s.Orders[item.OrderID] = cur
			return nil
		}
	}
	return domain.ErrNotFound
}

func (r *orderRepo) SoftDelete(id string) error {
	cur, ok := r.s.Orders[id]
	if !ok || cur.DeletedAt != nil {
		return domain.ErrNotFound
	}
	now := time.Now()
	cur.DeletedAt = &now
	r.s.Orders[id] = cur
	return nil
}

func (r *orderRepo) List(status, fulfillmentType string, limit int) ([]entity.Order, error) {
	var out []entity.Order
	for _, o := range r.s.Orders {
		if o.DeletedAt != nil {
			continue
		}
		if status != "" && o.Status != status {
			continue
		}
		if fulfillmentType != "" && o.FulfillmentType != fulfillmentType {
			continue
		}
		out = append(out, cloneOrder(o))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *orderRepo) ListChildren(parentOrderID string) ([]entity.Order, error) {
	var out []entity.Order
	for _, o := range r.s.Orders {
		if o.ParentOrderID != nil && *o.ParentOrderID == parentOrderID {
			out = append(out, cloneOrder(o))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

type orderLogRepo struct{ s *Store }

func (r *orderLogRepo) Create(l *entity.OrderLog) error {
	r.s.OrderLogs = append(r.s.OrderLogs, *l)
	return nil
}

func (r *orderLogRepo) ListByOrder(orderID string) ([]entity.OrderLog, error) {
	var out []entity.OrderLog
	for _, l := range r.s.OrderLogs {
		if l.OrderID == orderID {
			out = append(out, l)
		}
	}
	return out, nil
}

type vendorRepo struct{ s *Store }

func (r *vendorRepo) Create(v *entity.Vendor) error {
	r.s.Vendors[v.ID] = *v
	return nil
}

func (r *vendorRepo) GetByID(id string) (*entity.Vendor, error) {
	v, ok := r.s.Vendors[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &v, nil
}

func (r *vendorRepo) GetForUpdate(id string) (*entity.Vendor, error) {
	return r.GetByID(id)
}

func (r *vendorRepo) UpdateBalance(id string, balance decimal.Decimal) error {
	cur, ok := r.s.Vendors[id]
	if !ok {
		return domain.ErrNotFound
	}
	cur.Balance = balance
	r.s.Vendors[id] = cur
	return nil
}

func (r *vendorRepo) List(limit int) ([]entity.Vendor, error) {
	var out []entity.Vendor
	for _, v := range r.s.Vendors {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type sequenceRepo struct{ s *Store }

func (r *sequenceRepo) Next(prefix string, day time.Time) (int, error) {
	key := fmt.Sprintf("%s:%s", prefix, day.Format("2006-01-02"))
	r.s.Sequences[key]++
	return r.s.Sequences[key], nil
}
