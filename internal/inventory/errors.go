package inventory

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrNoSnapshot = errors.New("no inventory snapshot registered")
)

// InsufficientStockError reports a deduction that would drive a quantity
// below zero. The entry is left untouched when this is returned.
type InsufficientStockError struct {
	GarmentID string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for garment %s: requested %d, available %d",
		e.GarmentID, e.Requested, e.Available)
}
