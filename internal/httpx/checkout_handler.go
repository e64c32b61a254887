package httpx

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rohitpatil/agrimart/internal/auth"
	"github.com/rohitpatil/agrimart/internal/checkout"
	"github.com/rohitpatil/agrimart/internal/orders"
)

type CheckoutHandler struct {
	Service *checkout.Service
}

type checkoutReq struct {
	Reference    string          `json:"reference"`
	BuyerContact string          `json:"buyer_contact"`
	Shipping     orders.Shipping `json:"shipping"`
	Method       string          `json:"payment_method"`
}

func (h *CheckoutHandler) Register(r chi.Router) {
	r.Post("/checkout", h.checkout)
}

func (h *CheckoutHandler) checkout(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.FromContext(r.Context())

	var req checkoutReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	res, err := h.Service.Checkout(r.Context(), checkout.Input{
		Reference:    req.Reference,
		BuyerID:      claims.UserID,
		BuyerContact: req.BuyerContact,
		Shipping:     req.Shipping,
		Method:       orders.PaymentMethod(req.Method),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}
