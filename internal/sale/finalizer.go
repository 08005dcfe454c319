package sale

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/pagalvan/TryOn/internal/order"
)

// OrderStore is the slice of the order repository the finalizer needs.
type OrderStore interface {
	GetByID(ctx context.Context, orderID string) (*order.Order, error)
	UpdateStatus(ctx context.Context, orderID string, from, to order.Status) error
}

// Finalizer converts pending orders into sales and reverses that on void.
type Finalizer struct {
	sales  Repository
	orders OrderStore
	logger *log.Logger
}

func NewFinalizer(sales Repository, orders OrderStore, logger *log.Logger) *Finalizer {
	return &Finalizer{sales: sales, orders: orders, logger: logger}
}

// RecordSale finalizes a pending order: it marks the order completed via
// compare-and-swap, then writes the sale with the order total captured at
// this moment. If the sale insert loses a race on the live-sale unique
// index, the status change is compensated back to pending.
func (f *Finalizer) RecordSale(ctx context.Context, orderID, paymentMethod string) (*Sale, error) {
	if paymentMethod == "" {
		return nil, &order.ValidationError{Field: "paymentMethod", Reason: "required"}
	}

	o, err := f.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.Status == order.StatusCancelled {
		return nil, &order.StateError{OrderID: orderID, Current: o.Status, Attempted: order.StatusCompleted}
	}

	// Lookup before insert keeps the common duplicate case out of the
	// unique-index path and lets us name the existing sale.
	if existing, err := f.sales.GetByOrder(ctx, orderID); err == nil {
		return nil, &DuplicateSaleError{OrderID: orderID, SaleID: existing.ID}
	} else if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("lookup sale for order %s: %w", orderID, err)
	}

	if err := f.orders.UpdateStatus(ctx, orderID, order.StatusPending, order.StatusCompleted); err != nil {
		return nil, err
	}

	s := &Sale{
		ID:            uuid.NewString(),
		OrderID:       orderID,
		SoldAt:        time.Now().UTC(),
		PaymentMethod: paymentMethod,
		TotalAmount:   o.Total(),
	}
	if err := f.sales.Create(ctx, s); err != nil {
		if csErr := f.orders.UpdateStatus(ctx, orderID, order.StatusCompleted, order.StatusPending); csErr != nil {
			f.logger.Printf("revert order %s to pending after failed sale insert: %v", orderID, csErr)
		}
		if errors.Is(err, errDuplicate) {
			return nil, &DuplicateSaleError{OrderID: orderID}
		}
		return nil, fmt.Errorf("create sale: %w", err)
	}

	return s, nil
}

// VoidSale flags the sale as voided and returns the order to pending so it
// can be re-sold or cancelled.
func (f *Finalizer) VoidSale(ctx context.Context, saleID string) error {
	s, err := f.sales.GetByID(ctx, saleID)
	if err != nil {
		return err
	}
	if s.Voided {
		return ErrAlreadyVoided
	}

	if err := f.sales.Void(ctx, saleID); err != nil {
		return err
	}

	if err := f.orders.UpdateStatus(ctx, s.OrderID, order.StatusCompleted, order.StatusPending); err != nil {
		return fmt.Errorf("return order %s to pending: %w", s.OrderID, err)
	}
	return nil
}
