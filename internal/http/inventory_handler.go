package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pagalvan/TryOn/internal/catalog"
	"github.com/pagalvan/TryOn/internal/inventory"
	"github.com/pagalvan/TryOn/internal/order"
)

// InventoryStore is the slice of the inventory repository this handler
// exposes: the ledger operations plus snapshot management.
type InventoryStore interface {
	inventory.Ledger
	GetSnapshot(ctx context.Context, snapshotID string) (inventory.Snapshot, error)
	ListSnapshots(ctx context.Context) ([]inventory.Snapshot, error)
	CreateSnapshot(ctx context.Context, entries []inventory.Entry) (inventory.Snapshot, error)
}

type InventoryHandler struct {
	store   InventoryStore
	catalog catalog.Resolver
}

func NewInventoryHandler(store InventoryStore, resolver catalog.Resolver) *InventoryHandler {
	return &InventoryHandler{store: store, catalog: resolver}
}

// Availability reports the on-hand quantity of a garment in the current
// snapshot.
func (h *InventoryHandler) Availability(w http.ResponseWriter, r *http.Request) {
	garmentID := r.URL.Query().Get("garmentId")
	if garmentID == "" {
		writeError(w, &order.ValidationError{Field: "garmentId", Reason: "required"})
		return
	}

	snap, err := h.store.CurrentSnapshot(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	qty, err := h.store.GetQuantity(r.Context(), snap.ID, garmentID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"snapshotId": snap.ID,
		"garmentId":  garmentID,
		"available":  qty,
	})
}

func (h *InventoryHandler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := h.store.GetSnapshot(r.Context(), chi.URLParam(r, "snapshotId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (h *InventoryHandler) ListSnapshots(w http.ResponseWriter, r *http.Request) {
	snaps, err := h.store.ListSnapshots(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snaps)
}

type createSnapshotRequest struct {
	Entries []inventory.Entry `json:"entries"`
}

func (h *InventoryHandler) CreateSnapshot(w http.ResponseWriter, r *http.Request) {
	var req createSnapshotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	if len(req.Entries) == 0 {
		writeError(w, &order.ValidationError{Field: "entries", Reason: "at least one entry required"})
		return
	}

	for _, e := range req.Entries {
		if e.Quantity < 0 {
			writeError(w, &order.ValidationError{Field: "quantity", Reason: "must not be negative"})
			return
		}
		if _, err := h.catalog.ResolveGarment(r.Context(), e.GarmentID); err != nil {
			if errors.Is(err, catalog.ErrNotFound) {
				writeError(w, &order.ValidationError{Field: "garmentId", Reason: "unknown garment " + e.GarmentID})
				return
			}
			writeError(w, err)
			return
		}
	}

	snap, err := h.store.CreateSnapshot(r.Context(), req.Entries)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, snap)
}

type adjustRequest struct {
	SnapshotID string `json:"snapshotId"`
	GarmentID  string `json:"garmentId"`
	Delta      int    `json:"delta"`
}

// Adjust applies a signed delta to a garment's quantity. An empty
// snapshotId targets the current snapshot.
func (h *InventoryHandler) Adjust(w http.ResponseWriter, r *http.Request) {
	var req adjustRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	if req.GarmentID == "" {
		writeError(w, &order.ValidationError{Field: "garmentId", Reason: "required"})
		return
	}

	snapshotID := req.SnapshotID
	if snapshotID == "" {
		snap, err := h.store.CurrentSnapshot(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		snapshotID = snap.ID
	}

	if err := h.store.AdjustQuantity(r.Context(), snapshotID, req.GarmentID, req.Delta); err != nil {
		writeError(w, err)
		return
	}

	qty, err := h.store.GetQuantity(r.Context(), snapshotID, req.GarmentID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"snapshotId": snapshotID,
		"garmentId":  req.GarmentID,
		"quantity":   qty,
	})
}

func (h *InventoryHandler) RemoveGarment(w http.ResponseWriter, r *http.Request) {
	snapshotID := chi.URLParam(r, "snapshotId")
	garmentID := chi.URLParam(r, "garmentId")

	if err := h.store.RemoveGarment(r.Context(), snapshotID, garmentID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
