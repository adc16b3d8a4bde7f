package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testToken = "tok-1"

type remote struct {
	url   string
	db    string
	calls atomic.Int32
}

// newRemote serves a fake property API. Only testToken is accepted.
func newRemote(t *testing.T) *remote {
	t.Helper()
	rm := &remote{db: filepath.Join(t.TempDir(), "creds.db")}

	authed := func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") != "Bearer "+testToken {
				w.WriteHeader(http.StatusForbidden)
				_, _ = w.Write([]byte(`{"error":"Token expired"}`))
				return
			}
			next(w, r)
		}
	}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var body struct{ Email, Password string }
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body.Password != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"Invalid credentials"}`))
			return
		}
		_, _ = w.Write([]byte(`{"token":"` + testToken + `"}`))
	})
	mux.HandleFunc("GET /api/auth/validate-token", authed(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"valid":true}`))
	}))
	mux.HandleFunc("GET /api/dashboard/financial-overview", authed(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"totalRevenue":1200,"totalExpenses":200,"netProfit":1000,"revenueTrend":4.5}`))
	}))
	mux.HandleFunc("GET /api/dashboard/recent-transactions", authed(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"type":"expense","category":"Utilities","method":"card","amount":200,"time":"2025-01-02"}]`))
	}))
	mux.HandleFunc("GET /api/dashboard/expense-categories", authed(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"category":"Utilities","amount":200,"percentage":100}]`))
	}))
	mux.HandleFunc("GET /api/staff/all", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})
	mux.HandleFunc("POST /api/chatbot", authed(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":true,"message":"Hello from the assistant"}`))
	}))
	mux.HandleFunc("POST /api/nlp-to-sql", authed(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":true}`))
	}))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rm.calls.Add(1)
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)
	rm.url = srv.URL
	return rm
}

// run executes propctl against the fake remote and returns stdout.
func (rm *remote) run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	args = append([]string{"--api-url", rm.url, "--db", rm.db}, args...)
	err := execute(context.Background(), strings.NewReader(stdin), &out, args)
	return out.String(), err
}

func TestLoginRememberStatusLogout(t *testing.T) {
	rm := newRemote(t)

	out, err := rm.run(t, "", "login", "--email", "owner@example.com", "--password", "secret", "--remember")
	require.NoError(t, err)
	assert.Contains(t, out, "Token saved")

	out, err = rm.run(t, "", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "token from credential store")

	out, err = rm.run(t, "", "logout")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged out.")

	out, err = rm.run(t, "", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Not logged in.")
}

func TestLoginWithoutRememberIsNotKept(t *testing.T) {
	rm := newRemote(t)

	out, err := rm.run(t, "", "login", "-e", "owner@example.com", "-p", "secret")
	require.NoError(t, err)
	assert.Contains(t, out, "--remember")

	out, err = rm.run(t, "", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Not logged in.")
}

func TestLoginPromptsForPassword(t *testing.T) {
	rm := newRemote(t)

	out, err := rm.run(t, "secret\n", "login", "--email", "owner@example.com", "--remember")
	require.NoError(t, err)
	assert.Contains(t, out, "Password: ")
	assert.Contains(t, out, "Token saved")
}

func TestLoginRejected(t *testing.T) {
	rm := newRemote(t)

	_, err := rm.run(t, "", "login", "--email", "owner@example.com", "--password", "wrong")
	require.Error(t, err)
	assert.Equal(t, "Invalid credentials", err.Error())
}

func TestDashboardRequiresLogin(t *testing.T) {
	rm := newRemote(t)

	_, err := rm.run(t, "", "dashboard")
	require.ErrorIs(t, err, errNotLoggedIn)
	assert.Zero(t, rm.calls.Load())
}

func TestDashboard(t *testing.T) {
	rm := newRemote(t)
	_, err := rm.run(t, "", "login", "--email", "owner@example.com", "--password", "secret", "--remember")
	require.NoError(t, err)

	out, err := rm.run(t, "", "dashboard")
	require.NoError(t, err)
	assert.Contains(t, out, "1200.00")
	assert.Contains(t, out, "+4.5%")
	assert.Contains(t, out, "Utilities")

	out, err = rm.run(t, "", "dashboard", "--json")
	require.NoError(t, err)
	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "All Properties", got["property"])
}

func TestExpiredTokenLogsOut(t *testing.T) {
	rm := newRemote(t)
	_, err := rm.run(t, "", "login", "--email", "owner@example.com", "--password", "secret", "--remember")
	require.NoError(t, err)

	_, err = rm.run(t, "", "staff", "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "session expired")

	out, err := rm.run(t, "", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Not logged in.")
}

func TestFormValidationSkipsRemote(t *testing.T) {
	rm := newRemote(t)

	_, err := rm.run(t, "", "staff", "add", "--name", "Ann", "--email", "not-an-email")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "email")

	_, err = rm.run(t, "", "staff", "status", "s1", "retired")
	require.Error(t, err)

	_, err = rm.run(t, "", "properties", "laundry", "p1", "--items", "3", "--cost", "abc")
	require.Error(t, err)

	_, err = rm.run(t, "", "reports", "--year", "25")
	require.Error(t, err)

	assert.Zero(t, rm.calls.Load())
}

func TestChat(t *testing.T) {
	rm := newRemote(t)
	_, err := rm.run(t, "", "login", "--email", "owner@example.com", "--password", "secret", "--remember")
	require.NoError(t, err)

	out, err := rm.run(t, "hello there\npaid a $400 electricity bill with card\n/quit\n", "chat")
	require.NoError(t, err)
	assert.Contains(t, out, "Welcome to Chat Assistant!")
	assert.Contains(t, out, "Hello from the assistant")
	assert.Contains(t, out, "Successful operation")
	assert.NotContains(t, out, "hello there")
}

func TestChatLoggedOut(t *testing.T) {
	rm := newRemote(t)

	out, err := rm.run(t, "what is rent?\n", "chat")
	require.NoError(t, err)
	assert.Contains(t, out, "Please log in to use this feature.")
	assert.Zero(t, rm.calls.Load())
}
