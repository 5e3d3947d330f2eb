package postgres_test

import (
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pasalhq/pasal-erp/internal/infrastructure/postgres"
)

func TestSequenceNext(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()
	repo := postgres.NewSequenceRepository(mock)

	day := time.Date(2026, 8, 31, 14, 0, 0, 0, time.UTC)

	mock.ExpectExec("INSERT INTO document_sequences").
		WithArgs("PU", "2026-08-31").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectQuery("UPDATE document_sequences").
		WithArgs("PU", "2026-08-31").
		WillReturnRows(pgxmock.NewRows([]string{"counter"}).AddRow(1))

	n, err := repo.Next("PU", day)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSequenceNextExistingRow(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()
	repo := postgres.NewSequenceRepository(mock)

	day := time.Date(2026, 8, 31, 23, 59, 0, 0, time.UTC)

	// Seed is a no-op when the counter row already exists.
	mock.ExpectExec("INSERT INTO document_sequences").
		WithArgs("SO", "2026-08-31").
		WillReturnResult(pgxmock.NewResult("INSERT", 0))
	mock.ExpectQuery("UPDATE document_sequences").
		WithArgs("SO", "2026-08-31").
		WillReturnRows(pgxmock.NewRows([]string{"counter"}).AddRow(42))

	n, err := repo.Next("SO", day)
	require.NoError(t, err)
	assert.Equal(t, 42, n)
	require.NoError(t, mock.ExpectationsWereMet())
}
