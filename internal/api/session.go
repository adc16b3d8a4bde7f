package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ashureev/propdash/internal/apiclient"
	"github.com/ashureev/propdash/internal/auth"
	"github.com/ashureev/propdash/internal/middleware"
)

// SessionHandler serves login, logout and the auth state.
type SessionHandler struct {
	*Handler
}

// NewSessionHandler creates a SessionHandler.
func NewSessionHandler(base *Handler) *SessionHandler {
	return &SessionHandler{Handler: base}
}

// RegisterRoutes registers session routes. They are not guarded.
func (h *SessionHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/session", func(r chi.Router) {
		r.Get("/", h.GetSession)
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)
	})
}

// GetSession returns {isAuthenticated, isLoading}.
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, h.session.State())
}

type loginRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	RememberMe bool   `json:"rememberMe"`
}

// Login exchanges email and password for a token and stores it.
func (h *SessionHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !h.decode(w, r, &req) {
		return
	}
	req.Email = strings.TrimSpace(req.Email)

	err := h.session.LoginWithPassword(r.Context(), req.Email, req.Password, req.RememberMe)
	var failed *apiclient.RequestFailedError
	switch {
	case err == nil:
		JSON(w, http.StatusOK, h.session.State())
	case errors.Is(err, auth.ErrMissingCredentials):
		Error(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &failed):
		Error(w, http.StatusUnauthorized, failed.Message)
	default:
		remoteError(w, err, "Login failed")
	}
}

// Logout clears the stored credentials.
func (h *SessionHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.session.Logout(r.Context()); err != nil {
		Error(w, http.StatusInternalServerError, "failed to clear credentials")
		return
	}
	JSON(w, http.StatusOK, map[string]any{
		"isAuthenticated": false,
		"isLoading":       false,
		"redirect":        middleware.LoginPath,
	})
}
