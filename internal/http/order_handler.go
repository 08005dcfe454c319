package httpapi

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pagalvan/TryOn/internal/order"
)

// OrderWorkflow is the slice of the order workflow this handler exposes.
type OrderWorkflow interface {
	PlaceOrder(ctx context.Context, customerID string, lines []order.LineRequest) (*order.Order, error)
	CancelOrder(ctx context.Context, orderID string) error
}

// OrderReader serves the read side: single order and filtered listings.
type OrderReader interface {
	GetByID(ctx context.Context, orderID string) (*order.Order, error)
	ListByCustomer(ctx context.Context, customerID string) ([]order.Order, error)
	ListByStatus(ctx context.Context, status order.Status) ([]order.Order, error)
}

type OrderHandler struct {
	workflow OrderWorkflow
	orders   OrderReader
	events   EventSink
}

func NewOrderHandler(workflow OrderWorkflow, orders OrderReader, events EventSink) *OrderHandler {
	return &OrderHandler{workflow: workflow, orders: orders, events: events}
}

type placeOrderRequest struct {
	CustomerID string              `json:"customerId"`
	Lines      []order.LineRequest `json:"lines"`
}

func (h *OrderHandler) Place(w http.ResponseWriter, r *http.Request) {
	var req placeOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	o, err := h.workflow.PlaceOrder(r.Context(), req.CustomerID, req.Lines)
	if err != nil {
		writeError(w, err)
		return
	}

	h.events.OrderPlaced(r.Context(), o)
	writeJSON(w, http.StatusCreated, o)
}

func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.GetByID(r.Context(), chi.URLParam(r, "orderId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	if customerID := r.URL.Query().Get("customerId"); customerID != "" {
		orders, err := h.orders.ListByCustomer(r.Context(), customerID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, orders)
		return
	}

	if status := order.Status(r.URL.Query().Get("status")); status != "" {
		if !status.Valid() {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown status"})
			return
		}
		orders, err := h.orders.ListByStatus(r.Context(), status)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, orders)
		return
	}

	writeJSON(w, http.StatusBadRequest, map[string]string{"error": "customerId or status query parameter required"})
}

func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderId")
	if err := h.workflow.CancelOrder(r.Context(), orderID); err != nil {
		writeError(w, err)
		return
	}

	h.events.OrderCancelled(r.Context(), orderID)
	writeJSON(w, http.StatusOK, map[string]any{"orderId": orderID, "status": order.StatusCancelled})
}
