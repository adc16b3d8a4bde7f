package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ashureev/propdash/internal/domain"
)

// PropertyHandler proxies property management to the remote API.
type PropertyHandler struct {
	*Handler
}

// NewPropertyHandler creates a PropertyHandler.
func NewPropertyHandler(base *Handler) *PropertyHandler {
	return &PropertyHandler{Handler: base}
}

// RegisterRoutes registers property routes. Callers guard them.
func (h *PropertyHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/properties", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Add)
		r.Post("/{id}/laundry", h.Laundry)
		r.Post("/{id}/check-in", h.CheckIn)
		r.Delete("/{id}", h.Delete)
	})
}

// List returns all properties.
func (h *PropertyHandler) List(w http.ResponseWriter, r *http.Request) {
	props, err := h.client.ListProperties(r.Context())
	if err != nil {
		remoteError(w, err, loadFailed)
		return
	}
	if props == nil {
		props = []domain.Property{}
	}
	JSON(w, http.StatusOK, props)
}

// Add validates the form and creates a property.
func (h *PropertyHandler) Add(w http.ResponseWriter, r *http.Request) {
	var form domain.NewProperty
	if !h.decode(w, r, &form) {
		return
	}
	form.Normalize()
	if err := form.Validate(); err != nil {
		validationError(w, err)
		return
	}

	created, err := h.client.AddProperty(r.Context(), form)
	if err != nil {
		remoteError(w, err, "Failed to add property")
		return
	}
	JSON(w, http.StatusCreated, created)
}

// Laundry records a laundry batch.
func (h *PropertyHandler) Laundry(w http.ResponseWriter, r *http.Request) {
	var rec domain.LaundryRecord
	if !h.decode(w, r, &rec) {
		return
	}
	if err := rec.Validate(); err != nil {
		validationError(w, err)
		return
	}

	raw, err := h.client.RecordLaundry(r.Context(), chi.URLParam(r, "id"), rec)
	if err != nil {
		remoteError(w, err, "Failed to record laundry")
		return
	}
	writeRaw(w, http.StatusCreated, raw)
}

// CheckIn records a guest check-in.
func (h *PropertyHandler) CheckIn(w http.ResponseWriter, r *http.Request) {
	var ci domain.CheckIn
	if !h.decode(w, r, &ci) {
		return
	}
	if err := ci.Validate(); err != nil {
		validationError(w, err)
		return
	}

	raw, err := h.client.CheckIn(r.Context(), chi.URLParam(r, "id"), ci)
	if err != nil {
		remoteError(w, err, "Failed to record check-in")
		return
	}
	writeRaw(w, http.StatusCreated, raw)
}

// Delete removes a property.
func (h *PropertyHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.client.DeleteProperty(r.Context(), chi.URLParam(r, "id")); err != nil {
		remoteError(w, err, "Failed to remove property")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
