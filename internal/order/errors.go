package order

import (
	"errors"
	"fmt"
)

var ErrNotFound = errors.New("order not found")

// ValidationError rejects malformed or missing input, naming the offending
// field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// StateError rejects an illegal status transition.
type StateError struct {
	OrderID   string
	Current   Status
	Attempted Status
}

func (e *StateError) Error() string {
	return fmt.Sprintf("order %s is %s, cannot transition to %s",
		e.OrderID, e.Current, e.Attempted)
}
