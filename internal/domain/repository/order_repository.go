package repository

import "github.com/pasalhq/pasal-erp/internal/domain/entity"

// OrderRepository persists orders and their items. Status writes happen only
// through the fulfillment transition use case.
type OrderRepository interface {
	// Create persists the header and all items.
	Create(o *entity.Order) error
	GetByID(id string) (*entity.Order, error)
	// GetForUpdate loads the order with items and locks the header row so a
	// transition cannot interleave with another on the same order.
	GetForUpdate(id string) (*entity.Order, error)
	// UpdateStatus persists status and status timestamps.
	UpdateStatus(o *entity.Order) error
	// UpdateLogistics persists rider/courier assignment fields.
	UpdateLogistics(o *entity.Order) error
	// UpdateFulfillmentType persists a guarded reassignment.
	UpdateFulfillmentType(o *entity.Order) error
	UpdateItem(item *entity.OrderItem) error
	SoftDelete(id string) error
	List(status, fulfillmentType string, limit int) ([]entity.Order, error)
	ListChildren(parentOrderID string) ([]entity.Order, error)
}
