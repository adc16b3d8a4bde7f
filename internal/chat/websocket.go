package chat

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/coder/websocket"

	"github.com/ashureev/propdash/internal/auth"
	"github.com/ashureev/propdash/internal/identity"
	"github.com/ashureev/propdash/internal/metrics"
)

const (
	outboxSize   = 64
	writeTimeout = 5 * time.Second
)

// AuthEvents delivers auth session transitions.
type AuthEvents interface {
	Subscribe(fn func(auth.Event)) func()
}

// WebSocketHandler serves the live chat feed on /ws/chat. The client gets a
// snapshot on connect, then every appended turn and typing change; it can
// submit messages and save its draft over the same socket.
type WebSocketHandler struct {
	mgr           *Manager
	auth          AuthEvents
	limiter       *RateLimiter
	renderer      Renderer
	allowedOrigin string
	isDev         bool
}

// NewWebSocketHandler creates the feed handler. authEvents, limiter and
// renderer may be nil.
func NewWebSocketHandler(mgr *Manager, authEvents AuthEvents, limiter *RateLimiter, renderer Renderer, allowedOrigin string, isDev bool) *WebSocketHandler {
	return &WebSocketHandler{
		mgr:           mgr,
		auth:          authEvents,
		limiter:       limiter,
		renderer:      renderer,
		allowedOrigin: allowedOrigin,
		isDev:         isDev,
	}
}

// wsMessage is a client-to-server message.
type wsMessage struct {
	Type    string `json:"type"`
	Content string `json:"content,omitempty"`
}

// wsEvent is a server-to-client message.
type wsEvent struct {
	Type     string    `json:"type"`
	Snapshot *View     `json:"snapshot,omitempty"`
	Turn     *TurnView `json:"turn,omitempty"`
	Awaiting *bool     `json:"awaiting,omitempty"`
	Redirect string    `json:"redirect,omitempty"`
	Error    string    `json:"error,omitempty"`
}

// ServeHTTP implements http.Handler for the WebSocket upgrade.
func (h *WebSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	sessionID := identity.SessionIDFromContext(r.Context())
	clientKey := identity.IPFromRequest(r)

	if !h.checkOrigin(r) {
		http.Error(w, "origin not allowed", http.StatusForbidden)
		return
	}

	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		slog.Error("failed to accept chat websocket", "error", err, "session_id", sessionID)
		return
	}
	defer func() {
		if closeErr := ws.Close(websocket.StatusNormalClosure, "chat ended"); closeErr != nil {
			slog.Debug("failed to close chat websocket", "error", closeErr, "session_id", sessionID)
		}
	}()

	metrics.ChatConnections.Inc()
	defer metrics.ChatConnections.Dec()
	slog.Info("chat feed connected", "session_id", sessionID, "ip", clientKey)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	outbox := make(chan wsEvent, outboxSize)
	push := func(ev wsEvent) {
		select {
		case outbox <- ev:
		case <-ctx.Done():
		default:
			slog.Warn("chat feed too slow, disconnecting", "session_id", sessionID)
			cancel()
		}
	}

	sess := h.mgr.Get(sessionID)
	detach := sess.Attach()
	defer detach()
	unsubscribe := sess.Subscribe(func(ev Event) { push(h.eventFor(ev)) })
	defer unsubscribe()

	if h.auth != nil {
		unsubscribeAuth := h.auth.Subscribe(func(ev auth.Event) {
			if ev == auth.EventNavigateToLogin {
				push(wsEvent{Type: ev.String(), Redirect: "/login"})
			}
		})
		defer unsubscribeAuth()
	}

	view := Present(sess.Snapshot(), h.renderer)
	push(wsEvent{Type: "snapshot", Snapshot: &view})

	done := make(chan struct{})
	go func() {
		defer close(done)
		defer cancel()
		h.writeLoop(ctx, ws, outbox)
	}()

	h.readLoop(ctx, ws, sess, clientKey, push)
	cancel()
	<-done
	slog.Info("chat feed disconnected", "session_id", sessionID)
}

func (h *WebSocketHandler) eventFor(ev Event) wsEvent {
	awaiting := ev.Awaiting
	out := wsEvent{Type: string(ev.Kind), Awaiting: &awaiting}
	if ev.Turn != nil {
		turn := PresentTurn(*ev.Turn, h.renderer)
		out.Turn = &turn
	}
	return out
}

func (h *WebSocketHandler) checkOrigin(r *http.Request) bool {
	if h.isDev {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" || h.allowedOrigin == "*" || origin == h.allowedOrigin {
		return true
	}
	slog.Warn("chat websocket origin rejected", "origin", origin, "allowed", h.allowedOrigin)
	return false
}

func (h *WebSocketHandler) readLoop(ctx context.Context, ws *websocket.Conn, sess *Session, clientKey string, push func(wsEvent)) {
	for {
		_, data, err := ws.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) != -1 || ctx.Err() != nil {
				slog.Debug("chat websocket closed", "session_id", sess.ID())
			} else {
				slog.Warn("chat websocket read error", "error", err, "session_id", sess.ID())
			}
			return
		}

		var msg wsMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			push(wsEvent{Type: "error", Error: "invalid message"})
			continue
		}

		switch msg.Type {
		case "submit":
			if h.limiter != nil && !h.limiter.Allow(clientKey) {
				push(wsEvent{Type: "error", Error: "rate limit exceeded"})
				continue
			}
			// The reply belongs to the session, not to this connection.
			go func(text string) {
				if !sess.Submit(context.WithoutCancel(ctx), text) {
					push(wsEvent{Type: "error", Error: "message not sent"})
				}
			}(msg.Content)
		case "input":
			sess.SetPendingInput(msg.Content)
		case "ping":
			push(wsEvent{Type: "pong"})
		default:
			push(wsEvent{Type: "error", Error: "unknown message type"})
		}
	}
}

func (h *WebSocketHandler) writeLoop(ctx context.Context, ws *websocket.Conn, outbox <-chan wsEvent) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-outbox:
			if err := writeJSON(ctx, ws, ev); err != nil {
				slog.Debug("chat websocket write failed", "error", err)
				return
			}
		}
	}
}

func writeJSON(ctx context.Context, ws *websocket.Conn, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return ws.Write(ctx, websocket.MessageText, data)
}
