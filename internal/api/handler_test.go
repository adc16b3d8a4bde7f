package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashureev/propdash/internal/apiclient"
	"github.com/ashureev/propdash/internal/auth"
	"github.com/ashureev/propdash/internal/chat"
	"github.com/ashureev/propdash/internal/credential"
	"github.com/ashureev/propdash/internal/identity"
	"github.com/ashureev/propdash/internal/middleware"
)

type harness struct {
	router  http.Handler
	session *auth.Session
	vault   *credential.Vault
	remote  atomic.Int32
	now     time.Time
}

// newHarness wires the handlers against a fake remote API served by mux.
func newHarness(t *testing.T, mux *http.ServeMux) *harness {
	t.Helper()
	h := &harness{now: time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.remote.Add(1)
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)

	h.vault = credential.NewVault(credential.NewMemoryStore(), credential.NewMemoryStore())
	client := apiclient.New(srv.URL, h.vault)
	h.session = auth.NewSession(h.vault, client)
	client.OnSessionExpired(h.session.Expire)

	base := NewHandler(h.session, client, 1024)
	dash := NewDashboardHandler(base)
	dash.now = func() time.Time { return h.now }
	mgr := chat.NewManager(h.session, client, nil, nil)
	t.Cleanup(mgr.CloseAll)

	r := chi.NewRouter()
	r.Use(identity.Middleware(true))
	NewSessionHandler(base).RegisterRoutes(r)
	NewChatHandler(base, mgr, nil, nil).RegisterRoutes(r)
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(h.session))
		dash.RegisterRoutes(r)
		NewStaffHandler(base).RegisterRoutes(r)
		NewPropertyHandler(base).RegisterRoutes(r)
	})
	h.router = r
	return h
}

func (h *harness) login(t *testing.T) {
	t.Helper()
	require.NoError(t, h.session.Login(context.Background(), "tok", true))
}

func (h *harness) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(identity.SessionHeaderName, "tab-test")
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func writeJSONString(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(body))
}

func TestJSON(t *testing.T) {
	t.Parallel()
	w := httptest.NewRecorder()
	JSON(w, http.StatusOK, map[string]string{"foo": "bar"})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.Equal(t, "bar", decodeBody[map[string]string](t, w)["foo"])
}

func TestError(t *testing.T) {
	t.Parallel()
	w := httptest.NewRecorder()
	Error(w, http.StatusBadGateway, "Failed to load data")

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, map[string]string{"error": "Failed to load data"}, decodeBody[map[string]string](t, w))
}

func TestDecodeRejectsLargeBody(t *testing.T) {
	t.Parallel()
	h := newHarness(t, http.NewServeMux())
	h.login(t)

	big := map[string]string{"name": string(bytes.Repeat([]byte("x"), 4096))}
	rec := h.do(t, http.MethodPost, "/api/staff", big)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Zero(t, h.remote.Load())
}
