package sale

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound      = errors.New("sale not found")
	ErrAlreadyVoided = errors.New("sale already voided")

	// errDuplicate is the repository-level signal for the partial unique
	// index on live sales; the finalizer converts it to DuplicateSaleError.
	errDuplicate = errors.New("order already has a live sale")
)

// DuplicateSaleError rejects finalizing an order that already has a
// non-voided sale.
type DuplicateSaleError struct {
	OrderID string
	SaleID  string
}

func (e *DuplicateSaleError) Error() string {
	return fmt.Sprintf("order %s already has sale %s", e.OrderID, e.SaleID)
}
