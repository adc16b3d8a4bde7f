package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ashureev/propdash/internal/domain"
)

const loadFailed = "Failed to load data"

// DashboardHandler aggregates the dashboard and reports views.
type DashboardHandler struct {
	*Handler
	now func() time.Time
}

// NewDashboardHandler creates a DashboardHandler.
func NewDashboardHandler(base *Handler) *DashboardHandler {
	return &DashboardHandler{Handler: base, now: time.Now}
}

// RegisterRoutes registers the aggregate routes. Callers guard them.
func (h *DashboardHandler) RegisterRoutes(r chi.Router) {
	r.Get("/api/dashboard", h.GetDashboard)
	r.Get("/api/reports", h.GetReport)
}

func propertyParam(r *http.Request) string {
	if p := strings.TrimSpace(r.URL.Query().Get("property")); p != "" {
		return p
	}
	return domain.AllProperties
}

// GetDashboard returns the dashboard aggregate for ?property=.
func (h *DashboardHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	out, err := h.client.Dashboard(r.Context(), propertyParam(r))
	if err != nil {
		remoteError(w, err, loadFailed)
		return
	}
	JSON(w, http.StatusOK, out)
}

// GetReport returns the report for ?property= and ?year=, defaulting to the
// current year.
func (h *DashboardHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	now := h.now()
	year := now.Year()
	if raw := r.URL.Query().Get("year"); raw != "" {
		y, err := strconv.Atoi(raw)
		if err != nil || y < 1900 || y > 9999 {
			Error(w, http.StatusBadRequest, "year must be a four-digit number")
			return
		}
		year = y
	}

	out, err := h.client.Report(r.Context(), propertyParam(r), year, now)
	if err != nil {
		remoteError(w, err, loadFailed)
		return
	}
	JSON(w, http.StatusOK, out)
}
