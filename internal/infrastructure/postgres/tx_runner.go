package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pasalhq/pasal-erp/internal/application/ports"
	"github.com/pasalhq/pasal-erp/internal/domain"
)

var _ ports.TxRunner = (*TxRunner)(nil)

// TxRunner runs callbacks inside one PostgreSQL transaction.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner builds the runner over the pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run begins a transaction, executes fn with repositories bound to it and
// commits on success. Any error rolls everything back, so a failed stock
// adjustment also rolls back the status write that triggered it.
func (r *TxRunner) Run(ctx context.Context, fn func(repos ports.Repos) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	repos := ports.Repos{
		Variants:     NewVariantRepository(tx),
		Movements:    NewStockMovementRepository(tx),
		Transactions: NewInventoryTransactionRepository(tx),
		Orders:       NewOrderRepository(tx),
		OrderLogs:    NewOrderLogRepository(tx),
		Vendors:      NewVendorRepository(tx),
		Sequences:    NewSequenceRepository(tx),
	}

	if err := fn(repos); err != nil {
		if isSerializationFailure(err) {
			return &domain.ConcurrentModificationError{Entity: "transaction", Err: err}
		}
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
