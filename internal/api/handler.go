// Package api provides the dashboard server's local HTTP handlers.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/ashureev/propdash/internal/apiclient"
	"github.com/ashureev/propdash/internal/auth"
	"github.com/ashureev/propdash/internal/domain"
	"github.com/ashureev/propdash/internal/middleware"
)

const defaultMaxRequestBody = 1 << 20

// Handler holds the dependencies shared by the route groups.
type Handler struct {
	session *auth.Session
	client  *apiclient.Client
	maxBody int64
}

// NewHandler creates a Handler. maxBody <= 0 uses 1 MiB.
func NewHandler(session *auth.Session, client *apiclient.Client, maxBody int64) *Handler {
	if maxBody <= 0 {
		maxBody = defaultMaxRequestBody
	}
	return &Handler{session: session, client: client, maxBody: maxBody}
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Debug("failed to encode response", "error", err)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

// decode reads a JSON body bounded by the configured size. It writes the
// error response itself and reports whether decoding succeeded.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBody)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			Error(w, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		Error(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// validationError answers 422 with the per-field messages.
func validationError(w http.ResponseWriter, err error) {
	var fields domain.FieldErrors
	if errors.As(err, &fields) {
		JSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":  "validation failed",
			"fields": fields,
		})
		return
	}
	Error(w, http.StatusUnprocessableEntity, err.Error())
}

// remoteError maps a failed remote call to a local response. An expired or
// missing session sends the view back to the login page.
func remoteError(w http.ResponseWriter, err error, fallback string) {
	var failed *apiclient.RequestFailedError
	switch {
	case errors.Is(err, apiclient.ErrSessionExpired), errors.Is(err, apiclient.ErrUnauthenticated):
		JSON(w, http.StatusUnauthorized, map[string]string{
			"error":    "Session expired. Please log in again.",
			"redirect": middleware.LoginPath,
		})
	case errors.Is(err, apiclient.ErrTimedOut):
		Error(w, http.StatusGatewayTimeout, "Request timed out. Please try again.")
	case errors.As(err, &failed) && failed.Status >= 400 && failed.Status < 500:
		Error(w, failed.Status, failed.Message)
	default:
		slog.Warn("remote call failed", "error", err)
		Error(w, http.StatusBadGateway, fallback)
	}
}

// writeRaw passes a remote JSON reply through. An empty reply becomes
// {"status":"ok"}.
func writeRaw(w http.ResponseWriter, status int, raw json.RawMessage) {
	if len(raw) == 0 {
		JSON(w, status, map[string]string{"status": "ok"})
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(raw); err != nil {
		slog.Debug("failed to write response", "error", err)
	}
}
