package customer

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var ErrNotFound = errors.New("customer not found")

type Customer struct {
	ID       string `json:"customerId"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
}

// Resolver is what the order workflow consumes from the customer directory.
type Resolver interface {
	ResolveCustomer(ctx context.Context, customerID string) (Customer, error)
}

type DB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

type Repository struct {
	db DB
}

func NewRepository(db DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) ResolveCustomer(ctx context.Context, customerID string) (Customer, error) {
	var c Customer
	row := r.db.QueryRow(ctx,
		`SELECT id, full_name, email FROM customers WHERE id=$1`, customerID)
	if err := row.Scan(&c.ID, &c.FullName, &c.Email); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Customer{}, ErrNotFound
		}
		return Customer{}, err
	}
	return c, nil
}

func (r *Repository) Create(ctx context.Context, c *Customer) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	_, err := r.db.Exec(ctx,
		`INSERT INTO customers (id, full_name, email) VALUES ($1, $2, $3)`,
		c.ID, c.FullName, c.Email)
	return err
}
