package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/pasalhq/pasal-erp/internal/domain/repository"
)

var _ repository.SequenceRepository = (*SequenceRepo)(nil)

// SequenceRepo hands out gap-free per-day document numbers. One counter row
// per (prefix, day); the row lock taken by the UPDATE serializes concurrent
// callers, and a rollback returns the number before anyone saw it. This is
// why Next must run inside the transaction that persists the document.
type SequenceRepo struct {
	q Querier
}

// NewSequenceRepository builds the sequence adapter.
func NewSequenceRepository(q Querier) *SequenceRepo {
	return &SequenceRepo{q: q}
}

// Next returns the next counter value for (prefix, day), starting at 1.
func (r *SequenceRepo) Next(prefix string, day time.Time) (int, error) {
	ctx := context.Background()
	dayKey := day.Format("2006-01-02")

	// Seed the counter row if it does not exist yet. ON CONFLICT keeps this
	// race-safe between two first callers of the day.
	seed := `
		INSERT INTO document_sequences (prefix, day, counter)
		VALUES ($1, $2, 0)
		ON CONFLICT (prefix, day) DO NOTHING`
	if _, err := r.q.Exec(ctx, seed, prefix, dayKey); err != nil {
		return 0, fmt.Errorf("seed sequence: %w", err)
	}

	query := `
		UPDATE document_sequences
		SET counter = counter + 1
		WHERE prefix = $1 AND day = $2
		RETURNING counter`
	var n int
	if err := r.q.QueryRow(ctx, query, prefix, dayKey).Scan(&n); err != nil {
		return 0, fmt.Errorf("next sequence: %w", err)
	}
	return n, nil
}
