package httpx

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rohitpatil/agrimart/internal/auth"
	"github.com/rohitpatil/agrimart/internal/leases"
)

type LeasesHandler struct {
	Repo *leases.Repo
}

func (h *LeasesHandler) Register(r chi.Router) {
	r.Post("/leases", h.create)
	r.Get("/leases", h.list)
	r.Post("/leases/{id}/decision", h.decide)
	r.Post("/leases/{id}/cancel", h.cancel)
}

func (h *LeasesHandler) create(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.FromContext(r.Context())
	var lr leases.LeaseRequest
	if err := json.NewDecoder(r.Body).Decode(&lr); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if lr.PropertyID == "" || lr.LandownerID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing fields"})
		return
	}
	lr.TenantID = claims.UserID

	out, err := h.Repo.Create(r.Context(), lr)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, out)
}

func (h *LeasesHandler) list(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.FromContext(r.Context())
	var (
		out []leases.LeaseRequest
		err error
	)
	if claims.Role == auth.RoleLandowner {
		out, err = h.Repo.ListByLandowner(r.Context(), claims.UserID)
	} else {
		out, err = h.Repo.ListByTenant(r.Context(), claims.UserID)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// decide: landowner approves or rejects a pending request.
func (h *LeasesHandler) decide(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.FromContext(r.Context())
	var req struct {
		Decision string `json:"decision"` // approved | rejected
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	to := leases.Status(req.Decision)
	if to != leases.StatusApproved && to != leases.StatusRejected {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "decision must be approved or rejected"})
		return
	}

	lr, err := h.Repo.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	if lr.LandownerID != claims.UserID {
		writeError(w, leases.ErrNotOwner)
		return
	}
	if !leases.CanTransition(lr.Status, to) {
		writeError(w, leases.ErrInvalidTransition)
		return
	}
	ok, err := h.Repo.UpdateStatusCAS(r.Context(), lr.ID, lr.Status, to)
	if err != nil {
		writeError(w, err)
		return
	}
	if !ok {
		writeError(w, leases.ErrInvalidTransition)
		return
	}
	lr.Status = to
	writeJSON(w, http.StatusOK, lr)
}

func (h *LeasesHandler) cancel(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.FromContext(r.Context())

	lr, err := h.Repo.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	if lr.TenantID != claims.UserID {
		writeError(w, leases.ErrNotOwner)
		return
	}
	if !leases.CanTransition(lr.Status, leases.StatusCancelled) {
		writeError(w, leases.ErrInvalidTransition)
		return
	}
	ok, err := h.Repo.UpdateStatusCAS(r.Context(), lr.ID, lr.Status, leases.StatusCancelled)
	if err != nil {
		writeError(w, err)
		return
	}
	if !ok {
		writeError(w, leases.ErrInvalidTransition)
		return
	}
	lr.Status = leases.StatusCancelled
	writeJSON(w, http.StatusOK, lr)
}
