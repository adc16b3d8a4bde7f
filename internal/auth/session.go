// Package auth tracks whether the dashboard holds a valid API session.
//
// A Session starts Loading, resolves to Authenticated or Unauthenticated once
// the stored token has been checked against the server, and then moves
// between those two on login, logout and server-side rejection.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ashureev/propdash/internal/credential"
	"github.com/ashureev/propdash/internal/metrics"
)

// State is a snapshot of the session.
type State struct {
	IsAuthenticated bool `json:"isAuthenticated"`
	IsLoading       bool `json:"isLoading"`
}

// Event is delivered to subscribers on every transition.
type Event int

const (
	// EventAuthenticated follows a successful login or token validation.
	EventAuthenticated Event = iota + 1
	// EventNavigateToLogin follows a logout; views should show the login page.
	EventNavigateToLogin
)

func (e Event) String() string {
	switch e {
	case EventAuthenticated:
		return "authenticated"
	case EventNavigateToLogin:
		return "logged_out"
	default:
		return "unknown"
	}
}

// Remote is the part of the API client the session needs.
type Remote interface {
	Login(ctx context.Context, email, password string) (string, error)
	ValidateToken(ctx context.Context, token string) (bool, error)
}

// ErrMissingCredentials is returned by LoginWithPassword for blank input.
var ErrMissingCredentials = errors.New("email and password are required")

// Session is safe for concurrent use. Subscribers are called outside the lock.
type Session struct {
	vault  *credential.Vault
	remote Remote

	mu      sync.RWMutex
	state   State
	subs    map[int]func(Event)
	nextSub int
}

// NewSession returns a session in the Loading state.
func NewSession(vault *credential.Vault, remote Remote) *Session {
	return &Session{
		vault:  vault,
		remote: remote,
		state:  State{IsLoading: true},
		subs:   make(map[int]func(Event)),
	}
}

// State returns the current state.
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// IsAuthenticated reports whether API calls may be made.
func (s *Session) IsAuthenticated() bool {
	return s.State().IsAuthenticated
}

// Subscribe registers fn for transition events and returns a function that
// removes it.
func (s *Session) Subscribe(fn func(Event)) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// Init resolves the Loading state. A stored token (durable scope first) is
// checked against the server; anything but a confirmed valid token ends in a
// logout. Loading is cleared on every path.
func (s *Session) Init(ctx context.Context) error {
	token, scope, err := s.vault.Lookup(ctx)
	if err != nil {
		s.resolve(false)
		return fmt.Errorf("read stored credential: %w", err)
	}
	if token == "" {
		s.resolve(false)
		return nil
	}

	valid, err := s.remote.ValidateToken(ctx, token)
	if err != nil {
		slog.Warn("token validation failed", "scope", scope, "error", err)
	}
	if valid {
		slog.Info("restored session", "scope", scope)
		s.resolve(true)
		s.notify(EventAuthenticated)
		return nil
	}

	return s.Logout(ctx)
}

// Login stores token in the durable scope when remember is set and in the
// session scope otherwise, clearing the other scope.
func (s *Session) Login(ctx context.Context, token string, remember bool) error {
	if err := s.vault.Save(ctx, token, remember); err != nil {
		return fmt.Errorf("store credential: %w", err)
	}
	s.resolve(true)
	s.notify(EventAuthenticated)
	return nil
}

// LoginWithPassword exchanges credentials for a token and logs in with it.
func (s *Session) LoginWithPassword(ctx context.Context, email, password string, remember bool) error {
	if email == "" || password == "" {
		return ErrMissingCredentials
	}
	token, err := s.remote.Login(ctx, email, password)
	if err != nil {
		return err
	}
	return s.Login(ctx, token, remember)
}

// Logout clears both credential scopes and moves to Unauthenticated. It is
// idempotent; the state changes even if a store fails to clear.
func (s *Session) Logout(ctx context.Context) error {
	err := s.vault.Clear(ctx)
	s.resolve(false)
	s.notify(EventNavigateToLogin)
	if err != nil {
		return fmt.Errorf("clear credentials: %w", err)
	}
	return nil
}

// Expire is the hook the API client runs when the server rejects the token.
func (s *Session) Expire(ctx context.Context) {
	slog.Info("session expired, logging out")
	if err := s.Logout(ctx); err != nil {
		slog.Error("logout after session expiry", "error", err)
	}
}

func (s *Session) resolve(authenticated bool) {
	s.mu.Lock()
	s.state = State{IsAuthenticated: authenticated}
	s.mu.Unlock()

	if authenticated {
		metrics.Authenticated.Set(1)
	} else {
		metrics.Authenticated.Set(0)
	}
}

func (s *Session) notify(ev Event) {
	s.mu.RLock()
	fns := make([]func(Event), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.RUnlock()

	for _, fn := range fns {
		fn(ev)
	}
}
