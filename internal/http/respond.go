package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/pagalvan/TryOn/internal/inventory"
	"github.com/pagalvan/TryOn/internal/order"
	"github.com/pagalvan/TryOn/internal/sale"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps business failures onto HTTP statuses; anything
// unrecognized is an internal error and the cause stays out of the
// response body.
func writeError(w http.ResponseWriter, err error) {
	var validation *order.ValidationError
	var insufficient *inventory.InsufficientStockError
	var state *order.StateError
	var duplicate *sale.DuplicateSaleError

	switch {
	case errors.As(err, &validation):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": validation.Error()})
	case errors.Is(err, order.ErrNotFound),
		errors.Is(err, sale.ErrNotFound),
		errors.Is(err, inventory.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.As(err, &insufficient):
		writeJSON(w, http.StatusConflict, map[string]any{
			"error":     insufficient.Error(),
			"garmentId": insufficient.GarmentID,
			"requested": insufficient.Requested,
			"available": insufficient.Available,
		})
	case errors.As(err, &state):
		writeJSON(w, http.StatusConflict, map[string]string{"error": state.Error()})
	case errors.As(err, &duplicate):
		writeJSON(w, http.StatusConflict, map[string]string{"error": duplicate.Error()})
	case errors.Is(err, inventory.ErrNoSnapshot), errors.Is(err, sale.ErrAlreadyVoided):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}
