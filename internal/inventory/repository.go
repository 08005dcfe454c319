package inventory

import (
	"context"
	"errors"
	"fmt"

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

// Ledger is the slice of the repository the order workflow consumes.
type Ledger interface {
	CurrentSnapshot(ctx context.Context) (Snapshot, error)
	GetQuantity(ctx context.Context, snapshotID, garmentID string) (int, error)
	AdjustQuantity(ctx context.Context, snapshotID, garmentID string, delta int) error
	RemoveGarment(ctx context.Context, snapshotID, garmentID string) error
}

type PostgresRepository struct {
	pool DBPool
}

func NewPostgresRepository(pool DBPool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// CurrentSnapshot returns the snapshot with the most recent updated_at,
// entries included. ErrNoSnapshot when the ledger is empty.
func (r *PostgresRepository) CurrentSnapshot(ctx context.Context) (Snapshot, error) {
	var s Snapshot
	row := r.pool.QueryRow(ctx, `
		SELECT id, updated_at
		FROM inventory_snapshots
		ORDER BY updated_at DESC
		LIMIT 1
	`)
	if err := row.Scan(&s.ID, &s.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Snapshot{}, ErrNoSnapshot
		}
		return Snapshot{}, fmt.Errorf("select current snapshot: %w", err)
	}

	entries, err := r.loadEntries(ctx, s.ID)
	if err != nil {
		return Snapshot{}, err
	}
	s.Entries = entries
	return s, nil
}

func (r *PostgresRepository) GetSnapshot(ctx context.Context, snapshotID string) (Snapshot, error) {
	var s Snapshot
	row := r.pool.QueryRow(ctx,
		`SELECT id, updated_at FROM inventory_snapshots WHERE id=$1`, snapshotID)
	if err := row.Scan(&s.ID, &s.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Snapshot{}, ErrNotFound
		}
		return Snapshot{}, fmt.Errorf("select snapshot: %w", err)
	}

	entries, err := r.loadEntries(ctx, s.ID)
	if err != nil {
		return Snapshot{}, err
	}
	s.Entries = entries
	return s, nil
}

func (r *PostgresRepository) ListSnapshots(ctx context.Context) ([]Snapshot, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, updated_at
		FROM inventory_snapshots
		ORDER BY updated_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("select snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []Snapshot
	for rows.Next() {
		var s Snapshot
		if err := rows.Scan(&s.ID, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		snapshots = append(snapshots, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return snapshots, nil
}

// GetQuantity returns the quantity on hand for a garment in a snapshot.
// A garment absent from the snapshot is 0, not an error; a missing snapshot
// is ErrNotFound.
func (r *PostgresRepository) GetQuantity(ctx context.Context, snapshotID, garmentID string) (int, error) {
	if err := r.snapshotExists(ctx, snapshotID); err != nil {
		return 0, err
	}

	var quantity int
	row := r.pool.QueryRow(ctx, `
		SELECT quantity
		FROM snapshot_entries
		WHERE snapshot_id=$1 AND garment_id=$2
	`, snapshotID, garmentID)
	if err := row.Scan(&quantity); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("select quantity: %w", err)
	}
	return quantity, nil
}

// AdjustQuantity applies delta to the (snapshot, garment) entry. The check
// and the write happen inside one transaction holding a row lock, so
// concurrent adjustments on the same entry are serialized. A negative delta
// that would drive the quantity below zero fails with
// InsufficientStockError and leaves the entry untouched. A positive delta
// for an absent garment creates the entry; a non-positive one fails with
// ErrNotFound. Every successful adjustment refreshes the snapshot timestamp.
func (r *PostgresRepository) AdjustQuantity(ctx context.Context, snapshotID, garmentID string, delta int) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var exists bool
	if err := tx.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM inventory_snapshots WHERE id=$1)`, snapshotID,
	).Scan(&exists); err != nil {
		return fmt.Errorf("check snapshot: %w", err)
	}
	if !exists {
		return ErrNotFound
	}

	var current int
	err = tx.QueryRow(ctx, `
		SELECT quantity
		FROM snapshot_entries
		WHERE snapshot_id=$1 AND garment_id=$2
		FOR UPDATE
	`, snapshotID, garmentID).Scan(&current)

	switch {
	case errors.Is(err, pgx.ErrNoRows):
		if delta <= 0 {
			return ErrNotFound
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO snapshot_entries (snapshot_id, garment_id, quantity)
			VALUES ($1, $2, $3)
		`, snapshotID, garmentID, delta); err != nil {
			return fmt.Errorf("insert entry: %w", err)
		}
	case err != nil:
		return fmt.Errorf("lock entry: %w", err)
	default:
		next := current + delta
		if next < 0 {
			return &InsufficientStockError{
				GarmentID: garmentID,
				Requested: -delta,
				Available: current,
			}
		}
		if _, err := tx.Exec(ctx, `
			UPDATE snapshot_entries
			SET quantity=$3
			WHERE snapshot_id=$1 AND garment_id=$2
		`, snapshotID, garmentID, next); err != nil {
			return fmt.Errorf("update entry: %w", err)
		}
	}

	if _, err := tx.Exec(ctx, `
		UPDATE inventory_snapshots SET updated_at=now() WHERE id=$1
	`, snapshotID); err != nil {
		return fmt.Errorf("touch snapshot: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit adjust: %w", err)
	}
	return nil
}

// RemoveGarment deletes the entry. Idempotent: removing an absent garment
// is a no-op.
func (r *PostgresRepository) RemoveGarment(ctx context.Context, snapshotID, garmentID string) error {
	_, err := r.pool.Exec(ctx, `
		DELETE FROM snapshot_entries
		WHERE snapshot_id=$1 AND garment_id=$2
	`, snapshotID, garmentID)
	if err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}
	return nil
}

// CreateSnapshot registers a new snapshot with the given entries. The new
// snapshot becomes current by virtue of its timestamp.
func (r *PostgresRepository) CreateSnapshot(ctx context.Context, entries []Entry) (Snapshot, error) {
	s := Snapshot{ID: uuid.NewString(), Entries: entries}

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Snapshot{}, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := tx.QueryRow(ctx, `
		INSERT INTO inventory_snapshots (id) VALUES ($1)
		RETURNING updated_at
	`, s.ID).Scan(&s.UpdatedAt); err != nil {
		return Snapshot{}, fmt.Errorf("insert snapshot: %w", err)
	}

	for _, e := range entries {
		if _, err := tx.Exec(ctx, `
			INSERT INTO snapshot_entries (snapshot_id, garment_id, quantity, location)
			VALUES ($1, $2, $3, $4)
		`, s.ID, e.GarmentID, e.Quantity, e.Location); err != nil {
			return Snapshot{}, fmt.Errorf("insert entry: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return Snapshot{}, fmt.Errorf("commit snapshot: %w", err)
	}
	return s, nil
}

func (r *PostgresRepository) snapshotExists(ctx context.Context, snapshotID string) error {
	var exists bool
	if err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM inventory_snapshots WHERE id=$1)`, snapshotID,
	).Scan(&exists); err != nil {
		return fmt.Errorf("check snapshot: %w", err)
	}
	if !exists {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) loadEntries(ctx context.Context, snapshotID string) ([]Entry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT garment_id, quantity, COALESCE(location, '')
		FROM snapshot_entries
		WHERE snapshot_id=$1
		ORDER BY garment_id
	`, snapshotID)
	if err != nil {
		return nil, fmt.Errorf("select entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.GarmentID, &e.Quantity, &e.Location); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return entries, nil
}
