package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/ashureev/propdash/internal/auth"
)

// LoginPath is where unauthenticated views are sent.
const LoginPath = "/login"

// AuthState exposes the auth session state.
type AuthState interface {
	State() auth.State
}

// RequireAuth guards dashboard routes. While the stored token is still being
// validated it answers 503 {"status":"loading"} instead of redirecting, so a
// page reload does not flash the login view.
func RequireAuth(session AuthState) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			st := session.State()
			switch {
			case st.IsLoading:
				w.Header().Set("Retry-After", "1")
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "loading"})
			case !st.IsAuthenticated:
				writeJSON(w, http.StatusUnauthorized, map[string]string{
					"error":    "login required",
					"redirect": LoginPath,
				})
			default:
				next.ServeHTTP(w, r)
			}
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
