// Package identity resolves the browser tab a request belongs to, so each tab
// gets its own chat conversation.
package identity

import (
	"context"
	"net"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	ClientCookieName   = "propdash_client"
	SessionHeaderName  = "X-Propdash-Session-ID"
	clientCookieMaxAge = 30 * 24 * time.Hour
)

type contextKey int

const (
	clientIDKey contextKey = iota
	sessionIDKey
)

var sessionIDPattern = regexp.MustCompile(`^[A-Za-z0-9._:-]{1,128}$`)

// ClientIDFromContext returns the per-browser id set by Middleware.
func ClientIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(clientIDKey).(string); ok {
		return v
	}
	return ""
}

// SessionIDFromContext returns the tab session id set by Middleware.
func SessionIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(sessionIDKey).(string); ok {
		return v
	}
	return ""
}

// WithSessionID returns a context carrying the given tab session id.
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionIDKey, sessionID)
}

func validSessionID(id string) bool {
	return sessionIDPattern.MatchString(id)
}

func clientID(w http.ResponseWriter, r *http.Request, secure bool) string {
	id := ""
	if c, err := r.Cookie(ClientCookieName); err == nil {
		if _, err := uuid.Parse(c.Value); err == nil {
			id = c.Value
		}
	}
	if id == "" {
		id = uuid.NewString()
	}

	http.SetCookie(w, &http.Cookie{
		Name:     ClientCookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   int(clientCookieMaxAge.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   secure,
	})
	return id
}

func sessionIDFromRequest(r *http.Request) string {
	sid := strings.TrimSpace(r.Header.Get(SessionHeaderName))
	if sid == "" {
		sid = strings.TrimSpace(r.URL.Query().Get("session_id"))
	}
	if !validSessionID(sid) {
		return ""
	}
	return sid
}

// Middleware attaches a per-browser client id (cookie) and the tab session id
// (header or session_id query). Requests without a usable tab id share the
// client id as their session.
func Middleware(isDev bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cid := clientID(w, r, !isDev)
			sid := sessionIDFromRequest(r)
			if sid == "" {
				sid = cid
			}

			ctx := context.WithValue(r.Context(), clientIDKey, cid)
			ctx = WithSessionID(ctx, sid)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// IPFromRequest returns a normalized remote IP.
func IPFromRequest(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
