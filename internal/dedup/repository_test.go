package dedup

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"
)

func TestGetLastSequence(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewRepository(mock)

	mock.ExpectQuery(`SELECT last_sequence`).
		WithArgs("consumer-a", "cart-1").
		WillReturnRows(pgxmock.NewRows([]string{"last_sequence"}).AddRow(int64(9)))

	last, ok, err := repo.GetLastSequence(context.Background(), "consumer-a", "cart-1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, int64(9), last)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetLastSequence_NoCheckpoint(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewRepository(mock)

	mock.ExpectQuery(`SELECT last_sequence`).
		WithArgs("consumer-a", "cart-1").
		WillReturnError(pgx.ErrNoRows)

	_, ok, err := repo.GetLastSequence(context.Background(), "consumer-a", "cart-1")
	require.NoError(t, err)
	require.False(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertLastSequence(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewRepository(mock)

	mock.ExpectExec(`INSERT INTO event_dedup_checkpoint`).
		WithArgs("consumer-a", "cart-1", int64(10)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, repo.UpsertLastSequence(context.Background(), "consumer-a", "cart-1", 10))
	require.NoError(t, mock.ExpectationsWereMet())
}
