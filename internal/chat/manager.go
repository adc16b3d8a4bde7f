package chat

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/ashureev/propdash/internal/intent"
	"github.com/ashureev/propdash/internal/metrics"
)

// Manager owns one Session per browser tab.
type Manager struct {
	auth       Authenticator
	api        Caller
	classifier *intent.Classifier
	transcript TranscriptLogger

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewManager creates an empty manager. transcript may be nil.
func NewManager(auth Authenticator, api Caller, classifier *intent.Classifier, transcript TranscriptLogger) *Manager {
	if transcript == nil {
		transcript = noopTranscript{}
	}
	return &Manager{
		auth:       auth,
		api:        api,
		classifier: classifier,
		transcript: transcript,
		sessions:   make(map[string]*Session),
	}
}

// Get returns the session for id, creating it on first use.
func (m *Manager) Get(id string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[id]; ok {
		return s
	}
	s := NewSession(id, m.auth, m.api, m.classifier, WithTranscript(m.transcript))
	m.sessions[id] = s
	metrics.ChatSessions.Set(float64(len(m.sessions)))
	slog.Info("chat session created", "session_id", id)
	return s
}

// Lookup returns the session for id without creating it.
func (m *Manager) Lookup(id string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Remove closes and forgets the session for id.
func (m *Manager) Remove(id string) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	metrics.ChatSessions.Set(float64(len(m.sessions)))
	m.mu.Unlock()

	if ok {
		s.Close()
		slog.Info("chat session closed", "session_id", id)
	}
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Sweep removes sessions idle for longer than idle and returns how many were
// removed. Sessions with a reply outstanding or a live connection are kept.
func (m *Manager) Sweep(idle time.Duration) int {
	cutoff := time.Now().Add(-idle)

	m.mu.Lock()
	var expired []*Session
	for id, s := range m.sessions {
		if s.IdleSince().Before(cutoff) && !s.Attached() && !s.Snapshot().Awaiting {
			expired = append(expired, s)
			delete(m.sessions, id)
		}
	}
	metrics.ChatSessions.Set(float64(len(m.sessions)))
	m.mu.Unlock()

	for _, s := range expired {
		s.Close()
	}
	return len(expired)
}

// StartSweeper runs Sweep every interval until ctx is done.
func (m *Manager) StartSweeper(ctx context.Context, interval, idle time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if n := m.Sweep(idle); n > 0 {
					slog.Info("expired idle chat sessions", "count", n)
				}
			case <-ctx.Done():
				return
			}
		}
	}()
}

// CloseAll closes every session and the transcript logger.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*Session)
	metrics.ChatSessions.Set(0)
	m.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
	if err := m.transcript.Close(); err != nil {
		slog.Warn("failed to close chat transcript", "error", err)
	}
}
