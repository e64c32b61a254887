package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rohitpatil/agrimart/internal/auth"
	"github.com/rohitpatil/agrimart/internal/payment"
)

type paymentVerifier interface {
	Verify(ctx context.Context, gatewayOrderID, paymentID, signature string) ([]string, error)
	Cancelled(ctx context.Context, gatewayOrderID string) error
}

// PaymentHandler is the thin glue in front of the gateway. The two
// documented endpoints keep their legacy shapes and open CORS; the
// actual trust boundary is the server-side signature recomputation in
// the payment service.
type PaymentHandler struct {
	Gateway   payment.Gateway
	Service   paymentVerifier
	JWTSecret string
}

// Register mounts the endpoints with open CORS. Creation requires a
// logged-in buyer so strangers cannot mint gateway orders against the
// merchant account; verify stays open because the recomputed signature
// is its own trust boundary.
func (h *PaymentHandler) Register(r chi.Router) {
	r.With(openCORS).Options("/api/create-razorpay-order", preflight)
	r.With(openCORS, auth.Middleware(h.JWTSecret)).Post("/api/create-razorpay-order", h.createOrder)
	r.With(openCORS).Options("/api/verify-payment", preflight)
	r.With(openCORS).Post("/api/verify-payment", h.verify)
	r.With(openCORS).Post("/api/payment-cancelled", h.cancelled)
}

func openCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		next.ServeHTTP(w, r)
	})
}

func preflight(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

func (h *PaymentHandler) createOrder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Amount   int64  `json:"amount"` // minor units
		Currency string `json:"currency"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if req.Amount <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "amount must be greater than zero"})
		return
	}
	if req.Currency == "" {
		req.Currency = "INR"
	}

	gw, err := h.Gateway.CreateOrder(r.Context(), req.Amount, req.Currency, "")
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, gw)
}

func (h *PaymentHandler) verify(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OrderID   string `json:"order_id"`
		PaymentID string `json:"payment_id"`
		Signature string `json:"signature"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if req.OrderID == "" || req.PaymentID == "" || req.Signature == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"status": "failure", "message": "missing fields"})
		return
	}

	ids, err := h.Service.Verify(r.Context(), req.OrderID, req.PaymentID, req.Signature)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "success",
		"message":   "payment verified",
		"order_ids": ids,
	})
}

// cancelled: buyer dismissed the widget. Recoverable, nothing changes
// server-side beyond the diagnostic.
func (h *PaymentHandler) cancelled(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OrderID string `json:"order_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if err := h.Service.Cancelled(r.Context(), req.OrderID); errors.Is(err, payment.ErrPaymentCancelled) {
		writeJSON(w, http.StatusOK, map[string]string{
			"status":  "cancelled",
			"message": "payment dismissed; retry with the same order id",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
}
