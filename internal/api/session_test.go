package api

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashureev/propdash/internal/auth"
)

func loginMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var body struct{ Email, Password string }
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body.Password != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			writeJSONString(w, `{"error":"Invalid email or password"}`)
			return
		}
		writeJSONString(w, `{"token":"issued"}`)
	})
	return mux
}

func TestSessionLoginLogout(t *testing.T) {
	t.Parallel()
	h := newHarness(t, loginMux())
	require.NoError(t, h.session.Init(t.Context()))

	rec := h.do(t, http.MethodGet, "/api/session", nil)
	assert.Equal(t, auth.State{}, decodeBody[auth.State](t, rec))

	rec = h.do(t, http.MethodPost, "/api/session/login", map[string]any{"email": " a@b.co ", "password": "secret", "rememberMe": true})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, auth.State{IsAuthenticated: true}, decodeBody[auth.State](t, rec))

	token, scope, err := h.vault.Lookup(t.Context())
	require.NoError(t, err)
	assert.Equal(t, "issued", token)
	assert.EqualValues(t, "durable", scope)

	rec = h.do(t, http.MethodPost, "/api/session/logout", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "/login", decodeBody[map[string]any](t, rec)["redirect"])
	assert.False(t, h.session.IsAuthenticated())

	token, _, err = h.vault.Lookup(t.Context())
	require.NoError(t, err)
	assert.Empty(t, token)
}

func TestSessionLoginErrors(t *testing.T) {
	t.Parallel()
	h := newHarness(t, loginMux())

	rec := h.do(t, http.MethodPost, "/api/session/login", map[string]any{"email": "a@b.co", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid email or password", decodeBody[map[string]string](t, rec)["error"])

	rec = h.do(t, http.MethodPost, "/api/session/login", map[string]any{"email": "", "password": "x"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = h.do(t, http.MethodPost, "/api/session/login", "not an object")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
