package ports

import (
	"context"

	"github.com/pasalhq/pasal-erp/internal/domain/repository"
)

// Repos bundles the repositories bound to one database transaction.
type Repos struct {
	Variants     repository.VariantRepository
	Movements    repository.StockMovementRepository
	Transactions repository.InventoryTransactionRepository
	Orders       repository.OrderRepository
	OrderLogs    repository.OrderLogRepository
	Vendors      repository.VendorRepository
	Sequences    repository.SequenceRepository
}

// TxRunner executes fn inside one database transaction, passing repositories
// bound to that transaction. Commit on nil return, rollback otherwise. This
// is what makes a status transition and its stock side effects one atomic
// unit: either both commit or neither does.
type TxRunner interface {
	Run(ctx context.Context, fn func(r Repos) error) error
}

// Notifier receives fire-and-forget events on terminal order transitions.
// Implementations must never block or fail the calling operation.
type Notifier interface {
	OrderStatusChanged(orderID, orderNumber, customerPhone, status string)
}
