package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBPool matches the methods from *pgxpool.Pool that we use.
// This allows us to mock the database in tests.
type DBPool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

type Repository interface {
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, orderID string) (*Order, error)
	ListByCustomer(ctx context.Context, customerID string) ([]Order, error)
	ListByStatus(ctx context.Context, status Status) ([]Order, error)
	UpdateStatus(ctx context.Context, orderID string, from, to Status) error
	ReplaceLines(ctx context.Context, orderID string, lines []Line) error
}

type PostgresRepository struct {
	pool DBPool
}

func NewPostgresRepository(pool DBPool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Create persists the order and its lines in one transaction.
func (r *PostgresRepository) Create(ctx context.Context, o *Order) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now().UTC()
	}

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `
		INSERT INTO orders (id, customer_id, status, created_at)
		VALUES ($1, $2, $3, $4)
	`, o.ID, o.CustomerID, string(o.Status), o.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	for _, l := range o.Lines {
		_, err = tx.Exec(ctx, `
			INSERT INTO order_lines (id, order_id, garment_id, quantity, unit_price)
			VALUES ($1, $2, $3, $4, $5)
		`, uuid.NewString(), o.ID, l.GarmentID, l.Quantity, l.UnitPrice)
		if err != nil {
			return fmt.Errorf("insert order_line: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, orderID string) (*Order, error) {
	var o Order
	err := r.pool.QueryRow(ctx, `
		SELECT id, customer_id, status, created_at
		FROM orders WHERE id=$1
	`, orderID).Scan(&o.ID, &o.CustomerID, &o.Status, &o.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("select order: %w", err)
	}

	lines, err := r.loadLines(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	o.Lines = lines
	return &o, nil
}

func (r *PostgresRepository) ListByCustomer(ctx context.Context, customerID string) ([]Order, error) {
	return r.list(ctx, `
		SELECT id, customer_id, status, created_at
		FROM orders WHERE customer_id=$1 ORDER BY created_at DESC
	`, customerID)
}

func (r *PostgresRepository) ListByStatus(ctx context.Context, status Status) ([]Order, error) {
	return r.list(ctx, `
		SELECT id, customer_id, status, created_at
		FROM orders WHERE status=$1 ORDER BY created_at DESC
	`, string(status))
}

// UpdateStatus transitions the order from one status to another with a
// compare-and-swap: the write only applies when the current status still
// matches. Zero rows affected means either a missing order (ErrNotFound)
// or a lost race (StateError with the status actually found).
func (r *PostgresRepository) UpdateStatus(ctx context.Context, orderID string, from, to Status) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE orders SET status=$3 WHERE id=$1 AND status=$2
	`, orderID, string(from), string(to))
	if err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	var current Status
	err = r.pool.QueryRow(ctx,
		`SELECT status FROM orders WHERE id=$1`, orderID,
	).Scan(&current)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("select status: %w", err)
	}
	return &StateError{OrderID: orderID, Current: current, Attempted: to}
}

// ReplaceLines swaps the full line set of a pending order. This is the
// administrative modification path, distinct from placement; it does not
// touch inventory.
func (r *PostgresRepository) ReplaceLines(ctx context.Context, orderID string, lines []Line) error {
	if len(lines) == 0 {
		return &ValidationError{Field: "lines", Reason: "order must contain at least one line"}
	}

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var current Status
	err = tx.QueryRow(ctx,
		`SELECT status FROM orders WHERE id=$1 FOR UPDATE`, orderID,
	).Scan(&current)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("lock order: %w", err)
	}
	if current != StatusPending {
		return &StateError{OrderID: orderID, Current: current, Attempted: StatusPending}
	}

	if _, err := tx.Exec(ctx, `DELETE FROM order_lines WHERE order_id=$1`, orderID); err != nil {
		return fmt.Errorf("delete order_lines: %w", err)
	}
	for _, l := range lines {
		_, err = tx.Exec(ctx, `
			INSERT INTO order_lines (id, order_id, garment_id, quantity, unit_price)
			VALUES ($1, $2, $3, $4, $5)
		`, uuid.NewString(), orderID, l.GarmentID, l.Quantity, l.UnitPrice)
		if err != nil {
			return fmt.Errorf("insert order_line: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (r *PostgresRepository) list(ctx context.Context, query string, arg any) ([]Order, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("select orders: %w", err)
	}
	defer rows.Close()

	var orders []Order
	for rows.Next() {
		var o Order
		if err := rows.Scan(&o.ID, &o.CustomerID, &o.Status, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	for i := range orders {
		lines, err := r.loadLines(ctx, orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].Lines = lines
	}
	return orders, nil
}

func (r *PostgresRepository) loadLines(ctx context.Context, orderID string) ([]Line, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT garment_id, quantity, unit_price
		FROM order_lines WHERE order_id=$1 ORDER BY id
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("select order_lines: %w", err)
	}
	defer rows.Close()

	var lines []Line
	for rows.Next() {
		var l Line
		if err := rows.Scan(&l.GarmentID, &l.Quantity, &l.UnitPrice); err != nil {
			return nil, fmt.Errorf("scan order_line: %w", err)
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return lines, nil
}
