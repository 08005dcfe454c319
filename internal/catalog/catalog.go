package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var ErrNotFound = errors.New("garment not found")

// Garment is the slice of the catalog the fulfillment workflow needs:
// identity and the unit price captured onto order lines.
type Garment struct {
	ID        string  `json:"garmentId"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unitPrice"`
}

// Resolver is what the order workflow consumes from the catalog.
type Resolver interface {
	ResolveGarment(ctx context.Context, garmentID string) (Garment, error)
}

// DB matches the pgx pool methods the repository uses.
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

func (r *Repository) ResolveGarment(ctx context.Context, garmentID string) (Garment, error) {
	var g Garment
	row := r.db.QueryRow(ctx,
		`SELECT id, name, unit_price FROM garments WHERE id=$1`, garmentID)
	if err := row.Scan(&g.ID, &g.Name, &g.UnitPrice); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Garment{}, ErrNotFound
		}
		return Garment{}, err
	}
	return g, nil
}

// Create registers a garment. Used for seeding and tests; catalog
// maintenance proper lives outside this service.
func (r *Repository) Create(ctx context.Context, g *Garment) error {
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	_, err := r.db.Exec(ctx,
		`INSERT INTO garments (id, name, unit_price) VALUES ($1, $2, $3)`,
		g.ID, g.Name, g.UnitPrice)
	return err
}
