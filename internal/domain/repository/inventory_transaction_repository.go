package repository

import "github.com/pasalhq/pasal-erp/internal/domain/entity"

// InventoryTransactionRepository persists maker-checker transaction headers
// and their items.
type InventoryTransactionRepository interface {
	// Create persists the header and all items.
	Create(t *entity.InventoryTransaction) error
	GetByID(id string) (*entity.InventoryTransaction, error)
	// GetForUpdate loads the transaction with items and locks the header row,
	// serializing concurrent approve/reject/void calls.
	GetForUpdate(id string) (*entity.InventoryTransaction, error)
	// UpdateStatus persists status, approver and timestamps.
	UpdateStatus(t *entity.InventoryTransaction) error
	// UpdateItemSnapshots persists the pre/post stock snapshots taken at approval.
	UpdateItemSnapshots(item *entity.TransactionItem) error
	List(status, txType string, limit int) ([]entity.InventoryTransaction, error)
}
