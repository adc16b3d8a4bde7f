// Package chat implements the dashboard's chat assistant: a per-tab
// conversation that routes each message to the finance or general endpoint
// and records the replies as bot turns.
package chat

import (
	"context"
	"errors"
	"log/slog"
	"maps"
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/ashureev/propdash/internal/apiclient"
	"github.com/ashureev/propdash/internal/domain"
	"github.com/ashureev/propdash/internal/intent"
	"github.com/ashureev/propdash/internal/metrics"
)

// Fixed bot replies.
const (
	ReplyLoginRequired = "Please log in to use this feature."
	ReplyFinanceOK     = "✅ Successful operation"
	ReplyFinanceFailed = "❌ Unsuccessful operation"
	ReplyTimedOut      = "⏳ Request timed out. Please try again."
)

// Greeting is the conversation every new session starts with.
var Greeting = []string{
	"Welcome to Chat Assistant!",
	"I can help you track expenses, transactions and revenue. Try saying things like:",
	"paid a $400 of electricity bill through credit card",
	"Purchased a $40 of groceries with cash",
}

// Authenticator reports whether the dashboard holds an API session.
type Authenticator interface {
	IsAuthenticated() bool
}

// Caller starts authenticated API calls.
type Caller interface {
	Start(ctx context.Context, method, path string, body any) *apiclient.Pending
}

// EventKind distinguishes session events.
type EventKind string

const (
	EventTurn   EventKind = "turn"
	EventTyping EventKind = "typing"
)

// Event is delivered to subscribers after every state change.
type Event struct {
	Kind     EventKind    `json:"type"`
	Turn     *domain.Turn `json:"turn,omitempty"`
	Awaiting bool         `json:"awaiting"`
}

// Snapshot is a copy of the session state.
type Snapshot struct {
	SessionID    string        `json:"sessionId"`
	Turns        []domain.Turn `json:"turns"`
	PendingInput string        `json:"pendingInput"`
	Awaiting     bool          `json:"isAwaitingReply"`
}

// Session is one conversation. Submissions are serialized: while a reply is
// outstanding further submissions are ignored.
type Session struct {
	id         string
	auth       Authenticator
	api        Caller
	classifier *intent.Classifier
	log        TranscriptLogger
	now        func() time.Time

	inflight sync.Mutex

	mu       sync.Mutex
	turns    []domain.Turn
	pending  string
	awaiting bool
	cancel   func()
	closed   bool
	subs     map[int]func(Event)
	nextSub  int
	lastUsed time.Time
	attached int
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithTranscript records every turn to l.
func WithTranscript(l TranscriptLogger) SessionOption {
	return func(s *Session) {
		if l != nil {
			s.log = l
		}
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) SessionOption {
	return func(s *Session) { s.now = now }
}

// NewSession starts a conversation seeded with the greeting turns. A nil
// classifier uses the default vocabulary.
func NewSession(id string, auth Authenticator, api Caller, classifier *intent.Classifier, opts ...SessionOption) *Session {
	s := &Session{
		id:         id,
		auth:       auth,
		api:        api,
		classifier: classifier,
		log:        noopTranscript{},
		now:        time.Now,
		subs:       make(map[int]func(Event)),
	}
	if s.classifier == nil {
		s.classifier = intent.Default()
	}
	for _, opt := range opts {
		opt(s)
	}
	s.lastUsed = s.now()
	for _, text := range Greeting {
		turn := s.newTurnLocked(domain.SenderBot, text)
		s.turns = append(s.turns, turn)
		s.log.Log(entryForTurn(id, turn, ""))
	}
	return s
}

// ID returns the session id.
func (s *Session) ID() string {
	return s.id
}

// Submit sends text to the assistant. It returns false without changing
// anything when text is blank, a reply is already outstanding, or the session
// is closed. It blocks until the reply (or error) turn has been appended.
func (s *Session) Submit(ctx context.Context, text string) bool {
	prompt := strings.TrimSpace(text)
	if prompt == "" {
		return false
	}
	if !s.inflight.TryLock() {
		return false
	}
	defer s.inflight.Unlock()

	if s.isClosed() {
		return false
	}
	s.touch()

	if !s.auth.IsAuthenticated() {
		metrics.ChatMessagesTotal.WithLabelValues("rejected").Inc()
		s.append(domain.SenderBot, ReplyLoginRequired, "")
		return true
	}

	route := s.classifier.Classify(text)
	metrics.ChatMessagesTotal.WithLabelValues(string(route)).Inc()

	s.mu.Lock()
	s.pending = ""
	s.mu.Unlock()
	s.append(domain.SenderUser, text, route)

	s.setAwaiting(true)
	defer s.setAwaiting(false)

	path := apiclient.PathChatbot
	if route == intent.Finance {
		path = apiclient.PathNLPToSQL
	}

	call := s.api.Start(ctx, http.MethodPost, path, apiclient.Prompt{Prompt: prompt})
	if !s.track(call.Cancel) {
		call.Cancel()
	}
	raw, err := call.Wait()
	s.track(nil)

	if errors.Is(err, context.Canceled) {
		slog.Debug("chat request cancelled", "session_id", s.id, "route", route)
		return true
	}

	reply := ""
	if err == nil {
		reply, err = decodeReply(route, raw)
	}
	if err != nil {
		slog.Warn("chat request failed", "session_id", s.id, "route", route, "outcome", apiclient.Outcome(err), "error", err)
		reply = describe(err)
	}
	s.append(domain.SenderBot, reply, route)
	return true
}

func decodeReply(route intent.Route, raw []byte) (string, error) {
	if route == intent.Finance {
		ok, err := apiclient.FinanceReply(raw)
		if err != nil {
			return "", err
		}
		if ok {
			return ReplyFinanceOK, nil
		}
		return ReplyFinanceFailed, nil
	}
	return apiclient.ChatbotReply(raw)
}

// describe turns a failed call into the text of a bot turn.
func describe(err error) string {
	var failed *apiclient.RequestFailedError
	switch {
	case errors.Is(err, apiclient.ErrTimedOut):
		return ReplyTimedOut
	case errors.Is(err, apiclient.ErrSessionExpired):
		return "Error: Session expired. Please log in again."
	case errors.Is(err, apiclient.ErrUnauthenticated):
		return "Error: No authentication token found. Please log in again."
	case errors.Is(err, apiclient.ErrMalformedResponse):
		return "Error: Invalid response format from server"
	case errors.As(err, &failed):
		return "Error: Request failed: " + failed.Message
	default:
		return "Error: " + err.Error()
	}
}

// SetPendingInput stores the unsent draft.
func (s *Session) SetPendingInput(text string) {
	s.mu.Lock()
	s.pending = text
	s.mu.Unlock()
}

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		SessionID:    s.id,
		Turns:        append([]domain.Turn(nil), s.turns...),
		PendingInput: s.pending,
		Awaiting:     s.awaiting,
	}
}

// Subscribe registers fn for session events and returns a function that
// removes it. fn is called outside the session lock, in event order.
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

// Close cancels an outstanding call; its reply is discarded. Later
// submissions are ignored.
func (s *Session) Close() {
	s.mu.Lock()
	s.closed = true
	cancel := s.cancel
	s.subs = make(map[int]func(Event))
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

// Attach marks the session as held by a live connection until the returned
// func is called. An attached session is never idle.
func (s *Session) Attach() (detach func()) {
	s.mu.Lock()
	s.attached++
	s.lastUsed = s.now()
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			s.attached--
			s.lastUsed = s.now()
			s.mu.Unlock()
		})
	}
}

// Attached reports whether a connection holds the session.
func (s *Session) Attached() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attached > 0
}

// IdleSince reports when the session was last submitted to or detached.
func (s *Session) IdleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUsed
}

func (s *Session) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Session) touch() {
	s.mu.Lock()
	s.lastUsed = s.now()
	s.mu.Unlock()
}

// track records the cancel func of the outstanding call. It returns false if
// the session was closed in the meantime.
func (s *Session) track(cancel func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed && cancel != nil {
		return false
	}
	s.cancel = cancel
	return true
}

func (s *Session) newTurnLocked(sender domain.Sender, text string) domain.Turn {
	return domain.Turn{Seq: len(s.turns) + 1, Sender: sender, Text: text, At: s.now()}
}

func (s *Session) append(sender domain.Sender, text string, route intent.Route) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	turn := s.newTurnLocked(sender, text)
	s.turns = append(s.turns, turn)
	fns := s.subscribersLocked()
	awaiting := s.awaiting
	s.mu.Unlock()

	s.log.Log(entryForTurn(s.id, turn, route))
	ev := Event{Kind: EventTurn, Turn: &turn, Awaiting: awaiting}
	for _, fn := range fns {
		fn(ev)
	}
}

func (s *Session) setAwaiting(v bool) {
	s.mu.Lock()
	s.awaiting = v
	fns := s.subscribersLocked()
	s.mu.Unlock()

	ev := Event{Kind: EventTyping, Awaiting: v}
	for _, fn := range fns {
		fn(ev)
	}
}

func (s *Session) subscribersLocked() []func(Event) {
	fns := make([]func(Event), 0, len(s.subs))
	for _, id := range slices.Sorted(maps.Keys(s.subs)) {
		fns = append(fns, s.subs[id])
	}
	return fns
}
