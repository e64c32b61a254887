package httpx

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/rohitpatil/agrimart/internal/auth"
	"github.com/rohitpatil/agrimart/internal/orders"
	"github.com/rohitpatil/agrimart/internal/redisx"
)

type OrdersHandler struct {
	Repo    *orders.Repo
	Service *orders.Service
	Redis   *redis.Client
}

// RegisterBuyer mounts the buyer-facing routes; RegisterVendor the
// vendor-facing ones. Cancellation is registered on both sides, the
// service checks ownership per role.
func (h *OrdersHandler) RegisterBuyer(r chi.Router) {
	r.Get("/orders", h.listMine)
	r.Get("/orders/{id}", h.get)
	r.Post("/orders/{id}/cancel", h.cancel)
}

func (h *OrdersHandler) RegisterVendor(r chi.Router) {
	r.Get("/vendor/orders", h.listVendor)
	r.Post("/orders/{id}/status", h.advance)
	r.Post("/vendor/orders/{id}/cancel", h.cancel)
}

func (h *OrdersHandler) listMine(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.FromContext(r.Context())
	out, err := h.Repo.ListByBuyer(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *OrdersHandler) listVendor(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.FromContext(r.Context())
	out, err := h.Repo.ListByVendor(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *OrdersHandler) get(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.FromContext(r.Context())
	orderID := chi.URLParam(r, "id")

	// Status cache in front of the DB read (short TTL). The cache is
	// keyed by order id, so the caller is verified against the cached
	// record before anything is served.
	key := fmt.Sprintf(redisx.KeyOrderStatus, orderID)
	if h.Redis != nil {
		if s, err := h.Redis.Get(r.Context(), key).Result(); err == nil && s != "" {
			var cached orders.Order
			if err := json.Unmarshal([]byte(s), &cached); err == nil {
				if cached.BuyerID != claims.UserID && cached.VendorID != claims.UserID {
					writeError(w, orders.ErrNotOwner)
					return
				}
				writeJSON(w, http.StatusOK, cached)
				return
			}
		}
	}

	o, err := h.Repo.Get(r.Context(), orderID)
	if err != nil {
		writeError(w, err)
		return
	}
	if o.BuyerID != claims.UserID && o.VendorID != claims.UserID {
		writeError(w, orders.ErrNotOwner)
		return
	}
	if h.Redis != nil {
		b, _ := json.Marshal(o)
		_ = h.Redis.Set(r.Context(), key, b, redisx.TTLStatusCache).Err()
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *OrdersHandler) advance(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.FromContext(r.Context())
	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	orderID := chi.URLParam(r, "id")
	o, err := h.Service.Advance(r.Context(), orderID, orders.Status(req.Status), claims.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	h.invalidateStatus(r, orderID)
	writeJSON(w, http.StatusOK, o)
}

func (h *OrdersHandler) cancel(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.FromContext(r.Context())

	orderID := chi.URLParam(r, "id")
	o, res, err := h.Service.Cancel(r.Context(), orderID, orders.Actor{
		UserID: claims.UserID,
		Role:   string(claims.Role),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	h.invalidateStatus(r, orderID)

	body := map[string]any{"order": o}
	if !res.AllRestored() {
		// Cancellation stands; the failed restorations are diagnostics.
		body["restore_failures"] = res.Failures
	}
	writeJSON(w, http.StatusOK, body)
}

func (h *OrdersHandler) invalidateStatus(r *http.Request, orderID string) {
	if h.Redis == nil {
		return
	}
	_ = h.Redis.Del(r.Context(), fmt.Sprintf(redisx.KeyOrderStatus, orderID)).Err()
}
