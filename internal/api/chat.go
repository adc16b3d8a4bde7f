package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ashureev/propdash/internal/chat"
	"github.com/ashureev/propdash/internal/identity"
)

// ChatHandler serves the chat widget over plain HTTP. The live feed is
// served separately by chat.WebSocketHandler.
type ChatHandler struct {
	*Handler
	mgr      *chat.Manager
	limiter  *chat.RateLimiter
	renderer chat.Renderer
}

// NewChatHandler creates a ChatHandler. limiter and renderer may be nil.
func NewChatHandler(base *Handler, mgr *chat.Manager, limiter *chat.RateLimiter, renderer chat.Renderer) *ChatHandler {
	return &ChatHandler{Handler: base, mgr: mgr, limiter: limiter, renderer: renderer}
}

// RegisterRoutes registers chat routes. They are not guarded: the session
// itself answers unauthenticated users.
func (h *ChatHandler) RegisterRoutes(r chi.Router) {
	r.Get("/api/chat", h.GetChat)
	r.Post("/api/chat/messages", h.PostMessage)
}

// GetChat returns the tab's conversation.
func (h *ChatHandler) GetChat(w http.ResponseWriter, r *http.Request) {
	sess := h.mgr.Get(identity.SessionIDFromContext(r.Context()))
	JSON(w, http.StatusOK, chat.Present(sess.Snapshot(), h.renderer))
}

type messageRequest struct {
	Message string `json:"message"`
}

// PostMessage submits a message and returns the conversation once the reply
// has been appended.
func (h *ChatHandler) PostMessage(w http.ResponseWriter, r *http.Request) {
	if h.limiter != nil && !h.limiter.Allow(identity.IPFromRequest(r)) {
		Error(w, http.StatusTooManyRequests, "rate limit exceeded")
		return
	}

	var req messageRequest
	if !h.decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		Error(w, http.StatusBadRequest, "message is required")
		return
	}

	sess := h.mgr.Get(identity.SessionIDFromContext(r.Context()))
	// The reply belongs to the session; a dropped request must not discard it.
	if !sess.Submit(context.WithoutCancel(r.Context()), req.Message) {
		Error(w, http.StatusConflict, "a reply is already pending")
		return
	}
	JSON(w, http.StatusOK, chat.Present(sess.Snapshot(), h.renderer))
}
