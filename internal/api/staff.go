package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ashureev/propdash/internal/domain"
)

// StaffHandler proxies staff management to the remote API.
type StaffHandler struct {
	*Handler
}

// NewStaffHandler creates a StaffHandler.
func NewStaffHandler(base *Handler) *StaffHandler {
	return &StaffHandler{Handler: base}
}

// RegisterRoutes registers staff routes. Callers guard them.
func (h *StaffHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/staff", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Add)
		r.Patch("/{id}/status", h.SetStatus)
		r.Get("/{id}/transactions", h.Transactions)
		r.Delete("/{id}", h.Delete)
	})
}

// List returns all staff members.
func (h *StaffHandler) List(w http.ResponseWriter, r *http.Request) {
	staff, err := h.client.ListStaff(r.Context())
	if err != nil {
		remoteError(w, err, loadFailed)
		return
	}
	if staff == nil {
		staff = []domain.Staff{}
	}
	JSON(w, http.StatusOK, staff)
}

// Add validates the form and creates a staff member.
func (h *StaffHandler) Add(w http.ResponseWriter, r *http.Request) {
	var form domain.NewStaff
	if !h.decode(w, r, &form) {
		return
	}
	form.Normalize()
	if err := form.Validate(); err != nil {
		validationError(w, err)
		return
	}

	created, err := h.client.AddStaff(r.Context(), form)
	if err != nil {
		remoteError(w, err, "Failed to add staff member")
		return
	}
	JSON(w, http.StatusCreated, created)
}

// SetStatus switches a staff member between active and inactive.
func (h *StaffHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	var update domain.StaffStatusUpdate
	if !h.decode(w, r, &update) {
		return
	}
	if err := update.Validate(); err != nil {
		validationError(w, err)
		return
	}

	updated, err := h.client.SetStaffStatus(r.Context(), chi.URLParam(r, "id"), update)
	if err != nil {
		remoteError(w, err, "Failed to update staff status")
		return
	}
	JSON(w, http.StatusOK, updated)
}

// Transactions lists a staff member's transactions.
func (h *StaffHandler) Transactions(w http.ResponseWriter, r *http.Request) {
	txs, err := h.client.StaffTransactions(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		remoteError(w, err, loadFailed)
		return
	}
	if txs == nil {
		txs = []domain.StaffTransaction{}
	}
	JSON(w, http.StatusOK, txs)
}

// Delete removes a staff member.
func (h *StaffHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.client.DeleteStaff(r.Context(), chi.URLParam(r, "id")); err != nil {
		remoteError(w, err, "Failed to remove staff member")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
