package sequence

import (
	"context"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"
)

func TestNextSequence(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewRepository(mock)

	mock.ExpectQuery(`INSERT INTO event_sequence`).
		WithArgs("cart-1").
		WillReturnRows(pgxmock.NewRows([]string{"last_sequence"}).AddRow(int64(3)))

	seq, err := repo.NextSequence(context.Background(), "cart-1")
	require.NoError(t, err)
	require.Equal(t, int64(3), seq)
	require.NoError(t, mock.ExpectationsWereMet())
}
