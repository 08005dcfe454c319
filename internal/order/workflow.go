package order

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/pagalvan/TryOn/internal/catalog"
	"github.com/pagalvan/TryOn/internal/customer"
	"github.com/pagalvan/TryOn/internal/inventory"
)

// LineRequest is the caller's view of an order line: what and how many.
// Prices come from the catalog, never from the client.
type LineRequest struct {
	GarmentID string `json:"garmentId"`
	Quantity  int    `json:"quantity"`
}

// Workflow drives order placement and cancellation across the order store,
// the inventory ledger, and the catalog/customer collaborators. It holds no
// lock spanning order and inventory; placement approximates atomicity with
// the compensation sequence in PlaceOrder.
type Workflow struct {
	orders    Repository
	ledger    inventory.Ledger
	catalog   catalog.Resolver
	customers customer.Resolver
	logger    *log.Logger
}

func NewWorkflow(orders Repository, ledger inventory.Ledger, cat catalog.Resolver, customers customer.Resolver, logger *log.Logger) *Workflow {
	return &Workflow{
		orders:    orders,
		ledger:    ledger,
		catalog:   cat,
		customers: customers,
		logger:    logger,
	}
}

// PlaceOrder validates the request, checks availability against the current
// inventory snapshot, persists the order as pending, and deducts stock line
// by line. If a deduction fails after some lines were already applied, the
// applied deductions are reversed and the order is cancelled, so placement
// is all-or-nothing to external observers. The pending order row is written
// before any inventory change.
func (w *Workflow) PlaceOrder(ctx context.Context, customerID string, reqs []LineRequest) (*Order, error) {
	lines, err := w.validate(ctx, customerID, reqs)
	if err != nil {
		return nil, err
	}

	snap, err := w.ledger.CurrentSnapshot(ctx)
	if err != nil {
		if errors.Is(err, inventory.ErrNoSnapshot) {
			return nil, err
		}
		return nil, fmt.Errorf("resolve current snapshot: %w", err)
	}

	for _, l := range lines {
		available, err := w.ledger.GetQuantity(ctx, snap.ID, l.GarmentID)
		if err != nil {
			return nil, fmt.Errorf("check availability for garment %s: %w", l.GarmentID, err)
		}
		if available < l.Quantity {
			return nil, &inventory.InsufficientStockError{
				GarmentID: l.GarmentID,
				Requested: l.Quantity,
				Available: available,
			}
		}
	}

	o := &Order{
		ID:         uuid.NewString(),
		CustomerID: customerID,
		Status:     StatusPending,
		CreatedAt:  time.Now().UTC(),
		Lines:      lines,
	}
	if err := w.orders.Create(ctx, o); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	for i, l := range lines {
		if err := w.ledger.AdjustQuantity(ctx, snap.ID, l.GarmentID, -l.Quantity); err != nil {
			w.restock(ctx, snap.ID, lines[:i])
			if csErr := w.orders.UpdateStatus(ctx, o.ID, StatusPending, StatusCancelled); csErr != nil {
				w.logger.Printf("cancel order %s after failed deduction: %v", o.ID, csErr)
			}
			o.Status = StatusCancelled

			var insufficient *inventory.InsufficientStockError
			if errors.As(err, &insufficient) {
				return nil, err
			}
			return nil, fmt.Errorf("deduct garment %s: %w", l.GarmentID, err)
		}
	}

	return o, nil
}

// CancelOrder transitions a pending order to cancelled and restocks its
// lines into whatever snapshot is current at cancel time. Inventory is one
// mutable ledger with an audit timestamp; restock is not tied to the
// snapshot debited at placement.
func (w *Workflow) CancelOrder(ctx context.Context, orderID string) error {
	o, err := w.orders.GetByID(ctx, orderID)
	if err != nil {
		return err
	}
	if o.Status.Terminal() {
		return &StateError{OrderID: orderID, Current: o.Status, Attempted: StatusCancelled}
	}

	// The CAS is the serialization point: a concurrent finalize or cancel
	// loses here and nothing is restocked twice.
	if err := w.orders.UpdateStatus(ctx, orderID, StatusPending, StatusCancelled); err != nil {
		return err
	}

	snap, err := w.ledger.CurrentSnapshot(ctx)
	if err != nil {
		if errors.Is(err, inventory.ErrNoSnapshot) {
			w.logger.Printf("order %s cancelled with no inventory snapshot, skipping restock", orderID)
			return nil
		}
		return fmt.Errorf("resolve current snapshot: %w", err)
	}

	for _, l := range o.Lines {
		if err := w.ledger.AdjustQuantity(ctx, snap.ID, l.GarmentID, l.Quantity); err != nil {
			return fmt.Errorf("restock garment %s: %w", l.GarmentID, err)
		}
	}
	return nil
}

func (w *Workflow) validate(ctx context.Context, customerID string, reqs []LineRequest) ([]Line, error) {
	if customerID == "" {
		return nil, &ValidationError{Field: "customerId", Reason: "required"}
	}
	if len(reqs) == 0 {
		return nil, &ValidationError{Field: "lines", Reason: "order must contain at least one line"}
	}

	if _, err := w.customers.ResolveCustomer(ctx, customerID); err != nil {
		if errors.Is(err, customer.ErrNotFound) {
			return nil, &ValidationError{Field: "customerId", Reason: fmt.Sprintf("unknown customer %s", customerID)}
		}
		return nil, fmt.Errorf("resolve customer: %w", err)
	}

	lines := make([]Line, 0, len(reqs))
	for _, r := range reqs {
		if r.GarmentID == "" {
			return nil, &ValidationError{Field: "garmentId", Reason: "required"}
		}
		if r.Quantity <= 0 {
			return nil, &ValidationError{Field: "quantity", Reason: fmt.Sprintf("quantity for garment %s must be positive", r.GarmentID)}
		}

		g, err := w.catalog.ResolveGarment(ctx, r.GarmentID)
		if err != nil {
			if errors.Is(err, catalog.ErrNotFound) {
				return nil, &ValidationError{Field: "garmentId", Reason: fmt.Sprintf("unknown garment %s", r.GarmentID)}
			}
			return nil, fmt.Errorf("resolve garment %s: %w", r.GarmentID, err)
		}
		lines = append(lines, Line{GarmentID: g.ID, Quantity: r.Quantity, UnitPrice: g.UnitPrice})
	}
	return lines, nil
}

// restock reverses deductions already applied by a failed placement.
// Failures here are logged, not returned: the caller is already unwinding.
func (w *Workflow) restock(ctx context.Context, snapshotID string, applied []Line) {
	for _, l := range applied {
		if err := w.ledger.AdjustQuantity(ctx, snapshotID, l.GarmentID, l.Quantity); err != nil {
			w.logger.Printf("compensating restock of garment %s qty %d failed: %v", l.GarmentID, l.Quantity, err)
		}
	}
}
