// Package credential keeps the bearer token in one of two scopes: a durable
// scope that survives restarts ("remember me") and a session scope that lives
// as long as the process.
package credential

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Scope selects where a token is persisted.
type Scope string

const (
	Durable Scope = "durable"
	Session Scope = "session"
)

// ErrEmptyToken is returned when saving a blank token.
var ErrEmptyToken = errors.New("credential: empty token")

// Store persists a single token. Implementations must be safe for concurrent use.
type Store interface {
	// Load returns the stored token, or "" when none is stored.
	Load(ctx context.Context) (string, error)
	// Save replaces the stored token.
	Save(ctx context.Context, token string) error
	// Clear removes the stored token. Clearing an empty store is not an error.
	Clear(ctx context.Context) error
}

// MemoryStore is a process-lifetime Store.
type MemoryStore struct {
	mu    sync.RWMutex
	token string
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Load implements Store.
func (m *MemoryStore) Load(_ context.Context) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token, nil
}

// Save implements Store.
func (m *MemoryStore) Save(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	return nil
}

// Clear implements Store.
func (m *MemoryStore) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	return nil
}

// Vault combines a durable and a session store. A token lives in at most one
// of them: saving into one scope clears the other, and a read never observes
// a half-finished save.
type Vault struct {
	mu      sync.Mutex
	durable Store
	session Store
}

// NewVault builds a vault over the two scopes.
func NewVault(durable, session Store) *Vault {
	return &Vault{durable: durable, session: session}
}

// Save writes token into the durable scope when remember is set, otherwise
// into the session scope, and clears the other scope.
func (v *Vault) Save(ctx context.Context, token string, remember bool) error {
	if token == "" {
		return ErrEmptyToken
	}
	target, other := v.session, v.durable
	if remember {
		target, other = v.durable, v.session
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if err := other.Clear(ctx); err != nil {
		return fmt.Errorf("clear stale token: %w", err)
	}
	if err := target.Save(ctx, token); err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	return nil
}

// Token returns the current token, preferring the durable scope. The empty
// string means no token is stored.
func (v *Vault) Token(ctx context.Context) (string, error) {
	token, _, err := v.Lookup(ctx)
	return token, err
}

// Lookup is Token plus the scope the token was found in.
func (v *Vault) Lookup(ctx context.Context) (string, Scope, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	token, err := v.durable.Load(ctx)
	if err != nil {
		return "", "", fmt.Errorf("load durable token: %w", err)
	}
	if token != "" {
		return token, Durable, nil
	}
	token, err = v.session.Load(ctx)
	if err != nil {
		return "", "", fmt.Errorf("load session token: %w", err)
	}
	if token != "" {
		return token, Session, nil
	}
	return "", "", nil
}

// Clear removes the token from both scopes. Both clears are attempted even
// if the first fails.
func (v *Vault) Clear(ctx context.Context) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	var errs []error
	if err := v.durable.Clear(ctx); err != nil {
		errs = append(errs, fmt.Errorf("clear durable token: %w", err))
	}
	if err := v.session.Clear(ctx); err != nil {
		errs = append(errs, fmt.Errorf("clear session token: %w", err))
	}
	return errors.Join(errs...)
}
