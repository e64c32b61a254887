package httpx

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rohitpatil/agrimart/internal/cart"
	"github.com/rohitpatil/agrimart/internal/catalog"
	"github.com/rohitpatil/agrimart/internal/checkout"
	"github.com/rohitpatil/agrimart/internal/inventory"
	"github.com/rohitpatil/agrimart/internal/leases"
	"github.com/rohitpatil/agrimart/internal/orders"
	"github.com/rohitpatil/agrimart/internal/payment"
)

func NewRouter() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger)
	r.Use(middleware.Timeout(15 * time.Second))
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())
	return r
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps the workflow error taxonomy onto HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	var (
		stock    *inventory.InsufficientStockError
		missing  *inventory.ProductNotFoundError
		creation *payment.CreationError
	)
	switch {
	case errors.As(err, &stock):
		writeJSON(w, http.StatusConflict, map[string]any{
			"error":      "insufficient stock",
			"product_id": stock.ProductID,
			"requested":  stock.Requested,
			"available":  stock.Available,
		})
	case errors.As(err, &missing):
		writeJSON(w, http.StatusNotFound, map[string]any{
			"error":      "product not found",
			"product_id": missing.ProductID,
		})
	case errors.As(err, &creation):
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "payment gateway order creation failed"})
	case errors.Is(err, payment.ErrVerificationFailed):
		writeJSON(w, http.StatusBadRequest, map[string]string{"status": "failure", "message": "signature verification failed"})
	case errors.Is(err, orders.ErrInvalidTransition), errors.Is(err, leases.ErrInvalidTransition):
		writeJSON(w, http.StatusConflict, map[string]string{"error": "invalid status transition"})
	case errors.Is(err, orders.ErrNotOwner), errors.Is(err, catalog.ErrNotOwner), errors.Is(err, leases.ErrNotOwner):
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "forbidden"})
	case errors.Is(err, orders.ErrNotFound), errors.Is(err, catalog.ErrNotFound), errors.Is(err, leases.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	case errors.Is(err, cart.ErrEmptyCart):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "cart is empty"})
	case errors.Is(err, cart.ErrInvalidQuantity), errors.Is(err, inventory.ErrInvalidQuantity),
		errors.Is(err, checkout.ErrInvalidMethod):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
}
