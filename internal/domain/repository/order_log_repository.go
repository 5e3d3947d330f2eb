package repository

import "github.com/pasalhq/pasal-erp/internal/domain/entity"

// OrderLogRepository persists the append-only order audit trail.
type OrderLogRepository interface {
	Create(l *entity.OrderLog) error
	ListByOrder(orderID string) ([]entity.OrderLog, error)
}
