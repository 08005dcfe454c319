package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewRouter(orders *OrderHandler, sales *SaleHandler, inv *InventoryHandler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/orders", func(r chi.Router) {
		r.Post("/", orders.Place)
		r.Get("/", orders.List)
		r.Get("/{orderId}", orders.Get)
		r.Post("/{orderId}/cancel", orders.Cancel)
	})

	r.Route("/api/sales", func(r chi.Router) {
		r.Post("/", sales.Record)
		r.Get("/", sales.List)
		r.Get("/{saleId}", sales.Get)
		r.Post("/{saleId}/void", sales.Void)
	})

	r.Route("/api/inventory", func(r chi.Router) {
		r.Get("/availability", inv.Availability)
		r.Post("/adjust", inv.Adjust)
		r.Get("/snapshots", inv.ListSnapshots)
		r.Post("/snapshots", inv.CreateSnapshot)
		r.Get("/snapshots/{snapshotId}", inv.GetSnapshot)
		r.Delete("/snapshots/{snapshotId}/garments/{garmentId}", inv.RemoveGarment)
	})

	return r
}
