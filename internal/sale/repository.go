package sale

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

// DBPool matches the methods from *pgxpool.Pool that we use.
type DBPool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

type Repository interface {
	Create(ctx context.Context, s *Sale) error
	GetByID(ctx context.Context, saleID string) (*Sale, error)
	GetByOrder(ctx context.Context, orderID string) (*Sale, error)
	ListBySoldAt(ctx context.Context, from, to time.Time) ([]Sale, error)
	Void(ctx context.Context, saleID string) error
	HardDelete(ctx context.Context, saleID string) error
}

type PostgresRepository struct {
	pool DBPool
}

func NewPostgresRepository(pool DBPool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func (r *PostgresRepository) Create(ctx context.Context, s *Sale) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO sales (id, order_id, sold_at, payment_method, total_amount)
		VALUES ($1, $2, $3, $4, $5)
	`, s.ID, s.OrderID, s.SoldAt, s.PaymentMethod, s.TotalAmount)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return errDuplicate
		}
		return fmt.Errorf("insert sale: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, saleID string) (*Sale, error) {
	return r.get(ctx, `
		SELECT id, order_id, sold_at, payment_method, total_amount, voided, voided_at
		FROM sales WHERE id=$1
	`, saleID)
}

// GetByOrder returns the live (non-voided) sale for an order, if any.
func (r *PostgresRepository) GetByOrder(ctx context.Context, orderID string) (*Sale, error) {
	return r.get(ctx, `
		SELECT id, order_id, sold_at, payment_method, total_amount, voided, voided_at
		FROM sales WHERE order_id=$1 AND NOT voided
	`, orderID)
}

func (r *PostgresRepository) ListBySoldAt(ctx context.Context, from, to time.Time) ([]Sale, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, order_id, sold_at, payment_method, total_amount, voided, voided_at
		FROM sales
		WHERE sold_at >= $1 AND sold_at <= $2
		ORDER BY sold_at DESC
	`, from, to)
	if err != nil {
		return nil, fmt.Errorf("select sales: %w", err)
	}
	defer rows.Close()

	var sales []Sale
	for rows.Next() {
		var s Sale
		if err := rows.Scan(&s.ID, &s.OrderID, &s.SoldAt, &s.PaymentMethod, &s.TotalAmount, &s.Voided, &s.VoidedAt); err != nil {
			return nil, fmt.Errorf("scan sale: %w", err)
		}
		sales = append(sales, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return sales, nil
}

// Void flags the sale without deleting it. Voiding an already-voided sale
// is ErrAlreadyVoided; a missing sale is ErrNotFound.
func (r *PostgresRepository) Void(ctx context.Context, saleID string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE sales SET voided=TRUE, voided_at=now()
		WHERE id=$1 AND NOT voided
	`, saleID)
	if err != nil {
		return fmt.Errorf("void sale: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	var voided bool
	err = r.pool.QueryRow(ctx, `SELECT voided FROM sales WHERE id=$1`, saleID).Scan(&voided)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("select sale: %w", err)
	}
	return ErrAlreadyVoided
}

// HardDelete physically removes a sale row. Administrative/test utility
// only; the workflow never deletes financial history.
func (r *PostgresRepository) HardDelete(ctx context.Context, saleID string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM sales WHERE id=$1`, saleID)
	if err != nil {
		return fmt.Errorf("delete sale: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) get(ctx context.Context, query, arg string) (*Sale, error) {
	var s Sale
	err := r.pool.QueryRow(ctx, query, arg).
		Scan(&s.ID, &s.OrderID, &s.SoldAt, &s.PaymentMethod, &s.TotalAmount, &s.Voided, &s.VoidedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("select sale: %w", err)
	}
	return &s, nil
}
