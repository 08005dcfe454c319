package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pagalvan/TryOn/internal/sale"
)

// SaleFinalizer is the slice of the finalizer this handler exposes.
type SaleFinalizer interface {
	RecordSale(ctx context.Context, orderID, paymentMethod string) (*sale.Sale, error)
	VoidSale(ctx context.Context, saleID string) error
}

// SaleReader serves the read side for sales.
type SaleReader interface {
	GetByID(ctx context.Context, saleID string) (*sale.Sale, error)
	ListBySoldAt(ctx context.Context, from, to time.Time) ([]sale.Sale, error)
}

type SaleHandler struct {
	finalizer SaleFinalizer
	sales     SaleReader
	events    EventSink
}

func NewSaleHandler(finalizer SaleFinalizer, sales SaleReader, events EventSink) *SaleHandler {
	return &SaleHandler{finalizer: finalizer, sales: sales, events: events}
}

type recordSaleRequest struct {
	OrderID       string `json:"orderId"`
	PaymentMethod string `json:"paymentMethod"`
}

func (h *SaleHandler) Record(w http.ResponseWriter, r *http.Request) {
	var req recordSaleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	s, err := h.finalizer.RecordSale(r.Context(), req.OrderID, req.PaymentMethod)
	if err != nil {
		writeError(w, err)
		return
	}

	h.events.SaleRecorded(r.Context(), s)
	writeJSON(w, http.StatusCreated, s)
}

func (h *SaleHandler) Get(w http.ResponseWriter, r *http.Request) {
	s, err := h.sales.GetByID(r.Context(), chi.URLParam(r, "saleId"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// List returns sales in a sold-at window. Bounds default to the last 30
// days when omitted.
func (h *SaleHandler) List(w http.ResponseWriter, r *http.Request) {
	to := time.Now().UTC()
	from := to.AddDate(0, 0, -30)

	if raw := r.URL.Query().Get("from"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "from must be RFC 3339"})
			return
		}
		from = parsed
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "to must be RFC 3339"})
			return
		}
		to = parsed
	}

	sales, err := h.sales.ListBySoldAt(r.Context(), from, to)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sales)
}

func (h *SaleHandler) Void(w http.ResponseWriter, r *http.Request) {
	saleID := chi.URLParam(r, "saleId")
	if err := h.finalizer.VoidSale(r.Context(), saleID); err != nil {
		writeError(w, err)
		return
	}

	if s, err := h.sales.GetByID(r.Context(), saleID); err == nil {
		h.events.SaleVoided(r.Context(), s)
	}
	writeJSON(w, http.StatusOK, map[string]string{"saleId": saleID, "status": "voided"})
}
