package order

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"
)

func TestRepositoryCreate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPostgresRepository(mock)
	now := time.Now().UTC()

	o := &Order{
		ID:         "order-1",
		CustomerID: "c1",
		Status:     StatusPending,
		CreatedAt:  now,
		Lines: []Line{
			{GarmentID: "shirt", Quantity: 2, UnitPrice: 25},
			{GarmentID: "jeans", Quantity: 1, UnitPrice: 40},
		},
	}

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO orders`).
		WithArgs("order-1", "c1", "pending", now).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`INSERT INTO order_lines`).
		WithArgs(pgxmock.AnyArg(), "order-1", "shirt", 2, 25.0).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`INSERT INTO order_lines`).
		WithArgs(pgxmock.AnyArg(), "order-1", "jeans", 1, 40.0).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Create(context.Background(), o))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryCreate_LineInsertErrorRollsBack(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPostgresRepository(mock)

	o := &Order{
		ID:         "order-1",
		CustomerID: "c1",
		Status:     StatusPending,
		CreatedAt:  time.Now().UTC(),
		Lines:      []Line{{GarmentID: "shirt", Quantity: 2, UnitPrice: 25}},
	}

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO orders`).
		WithArgs(o.ID, o.CustomerID, "pending", o.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`INSERT INTO order_lines`).
		WithArgs(pgxmock.AnyArg(), o.ID, "shirt", 2, 25.0).
		WillReturnError(errors.New("insert failed"))
	mock.ExpectRollback()

	require.Error(t, repo.Create(context.Background(), o))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryGetByID_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPostgresRepository(mock)

	mock.ExpectQuery(`SELECT id, customer_id, status, created_at`).
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	_, err = repo.GetByID(context.Background(), "missing")
	require.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryUpdateStatus(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPostgresRepository(mock)

	mock.ExpectExec(`UPDATE orders SET status`).
		WithArgs("order-1", "pending", "cancelled").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, repo.UpdateStatus(context.Background(), "order-1", StatusPending, StatusCancelled))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryUpdateStatus_LostRace(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPostgresRepository(mock)

	// zero rows affected: the order moved to completed in between
	mock.ExpectExec(`UPDATE orders SET status`).
		WithArgs("order-1", "pending", "cancelled").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectQuery(`SELECT status FROM orders`).
		WithArgs("order-1").
		WillReturnRows(pgxmock.NewRows([]string{"status"}).AddRow("completed"))

	err = repo.UpdateStatus(context.Background(), "order-1", StatusPending, StatusCancelled)

	var stateErr *StateError
	require.ErrorAs(t, err, &stateErr)
	require.Equal(t, StatusCompleted, stateErr.Current)
	require.Equal(t, StatusCancelled, stateErr.Attempted)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryUpdateStatus_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPostgresRepository(mock)

	mock.ExpectExec(`UPDATE orders SET status`).
		WithArgs("missing", "pending", "cancelled").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	mock.ExpectQuery(`SELECT status FROM orders`).
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	err = repo.UpdateStatus(context.Background(), "missing", StatusPending, StatusCancelled)
	require.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryReplaceLines_NonPending(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPostgresRepository(mock)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT status FROM orders`).
		WithArgs("order-1").
		WillReturnRows(pgxmock.NewRows([]string{"status"}).AddRow("completed"))
	mock.ExpectRollback()

	err = repo.ReplaceLines(context.Background(), "order-1", []Line{
		{GarmentID: "shirt", Quantity: 1, UnitPrice: 25},
	})

	var stateErr *StateError
	require.ErrorAs(t, err, &stateErr)
	require.Equal(t, StatusCompleted, stateErr.Current)
	require.NoError(t, mock.ExpectationsWereMet())
}
