package postgres

import (
	"context"
	"fmt"

	"github.com/pasalhq/pasal-erp/internal/domain/entity"
	"github.com/pasalhq/pasal-erp/internal/domain/repository"
)

var _ repository.OrderLogRepository = (*OrderLogRepo)(nil)

// OrderLogRepo implements OrderLogRepository over PostgreSQL. Append-only.
type OrderLogRepo struct {
	q Querier
}

// NewOrderLogRepository builds the log adapter.
func NewOrderLogRepository(q Querier) *OrderLogRepo {
	return &OrderLogRepo{q: q}
}

// Create appends one trail entry.
func (r *OrderLogRepo) Create(l *entity.OrderLog) error {
	query := `
		INSERT INTO order_logs (id, order_id, from_status, to_status, actor, reason, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, now())`
	_, err := r.q.Exec(context.Background(), query,
		l.ID, l.OrderID, l.FromStatus, l.ToStatus, l.Actor, l.Reason)
	if err != nil {
		return fmt.Errorf("create order log: %w", err)
	}
	return nil
}

// ListByOrder returns the full trail of an order, oldest first.
func (r *OrderLogRepo) ListByOrder(orderID string) ([]entity.OrderLog, error) {
	query := `
		SELECT id, order_id, from_status, to_status, actor, reason, created_at
		FROM order_logs WHERE order_id = $1
		ORDER BY created_at`
	rows, err := r.q.Query(context.Background(), query, orderID)
	if err != nil {
		return nil, fmt.Errorf("list order logs: %w", err)
	}
	defer rows.Close()

	var logs []entity.OrderLog
	for rows.Next() {
		var l entity.OrderLog
		if err := rows.Scan(&l.ID, &l.OrderID, &l.FromStatus, &l.ToStatus,
			&l.Actor, &l.Reason, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan order log: %w", err)
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}
