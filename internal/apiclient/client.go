// Package apiclient talks to the remote property-management API. Every
// authenticated call carries the stored bearer token, is bounded by a
// client-side timeout, and maps 401/403 to a forced logout.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/ashureev/propdash/internal/metrics"
)

const (
	// DefaultTimeout bounds every remote call.
	DefaultTimeout = 10 * time.Second

	maxResponseBody = 4 << 20
)

// TokenSource resolves the current bearer token; "" means logged out.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Client is the authenticated fetch layer.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
	timeout    time.Duration

	mu        sync.RWMutex
	onExpired func(ctx context.Context)
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-call timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// New creates a client for the API at baseURL (e.g. http://localhost:5000).
func New(baseURL string, tokens TokenSource, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		tokens:     tokens,
		timeout:    DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// OnSessionExpired registers the hook run on 401/403, before the error is
// returned to the caller. The auth session installs its logout here.
func (c *Client) OnSessionExpired(fn func(ctx context.Context)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onExpired = fn
}

// Pending is an in-flight call. Cancel aborts the underlying HTTP request
// through the same context the timeout uses.
type Pending struct {
	cancel context.CancelFunc
	done   chan struct{}
	body   json.RawMessage
	err    error
}

// Done is closed once the call has resolved.
func (p *Pending) Done() <-chan struct{} {
	return p.done
}

// Cancel aborts the call. Safe to call more than once and after completion.
func (p *Pending) Cancel() {
	p.cancel()
}

// Wait blocks until the call resolves and returns the raw JSON body.
func (p *Pending) Wait() (json.RawMessage, error) {
	<-p.done
	return p.body, p.err
}

func resolved(body json.RawMessage, err error) *Pending {
	done := make(chan struct{})
	close(done)
	return &Pending{cancel: func() {}, done: done, body: body, err: err}
}

// Start issues an authenticated request and returns immediately. If no token
// is stored the returned call has already failed with ErrUnauthenticated and
// nothing was sent.
func (c *Client) Start(ctx context.Context, method, path string, body any) *Pending {
	endpoint := endpointLabel(path)

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return resolved(nil, fmt.Errorf("resolve token: %w", err))
	}
	if token == "" {
		metrics.APIRequestsTotal.WithLabelValues(endpoint, Outcome(ErrUnauthenticated)).Inc()
		return resolved(nil, ErrUnauthenticated)
	}

	reqCtx, cancel := context.WithTimeoutCause(ctx, c.timeout, ErrTimedOut)
	p := &Pending{cancel: cancel, done: make(chan struct{})}

	go func() {
		defer close(p.done)
		defer cancel()

		start := time.Now()
		p.body, p.err = c.authorized(reqCtx, method, path, token, body)
		metrics.APIRequestDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
		metrics.APIRequestsTotal.WithLabelValues(endpoint, Outcome(p.err)).Inc()
		if p.err != nil {
			slog.Debug("api call failed", "method", method, "endpoint", endpoint, "outcome", Outcome(p.err), "error", p.err)
		}
	}()
	return p
}

// Call is Start followed by Wait. When out is non-nil the body is decoded
// into it; a body that does not fit out is ErrMalformedResponse.
func (c *Client) Call(ctx context.Context, method, path string, body, out any) error {
	raw, err := c.Start(ctx, method, path, body).Wait()
	if err != nil {
		return err
	}
	return decodeInto(raw, out)
}

func observeAnonymous(path, outcome string) {
	metrics.APIRequestsTotal.WithLabelValues(endpointLabel(path), outcome).Inc()
}

func decodeInto(raw json.RawMessage, out any) error {
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}

func (c *Client) authorized(ctx context.Context, method, path, token string, body any) (json.RawMessage, error) {
	status, data, err := c.roundTrip(ctx, method, path, token, body)
	if err != nil {
		return nil, err
	}

	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		c.expire(ctx)
		return nil, ErrSessionExpired
	case status < 200 || status > 299:
		return nil, &RequestFailedError{Status: status, Message: errorMessage(status, data)}
	}

	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil
	}
	if !json.Valid(data) {
		return nil, ErrMalformedResponse
	}
	return json.RawMessage(data), nil
}

func (c *Client) expire(ctx context.Context) {
	c.mu.RLock()
	fn := c.onExpired
	c.mu.RUnlock()
	if fn == nil {
		return
	}
	// The logout must complete even though the request context is done.
	hookCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	fn(hookCtx)
}

// roundTrip sends one request. Only transport errors are returned; status
// codes are left to the caller. A fired timeout is reported as ErrTimedOut
// and a caller cancellation as the context's cause.
func (c *Client) roundTrip(ctx context.Context, method, path, token string, body any) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return 0, nil, fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, contextError(ctx, fmt.Errorf("%s %s: %w", method, path, err))
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			slog.Debug("failed to close response body", "error", closeErr)
		}
	}()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return 0, nil, contextError(ctx, fmt.Errorf("read response: %w", err))
	}
	return resp.StatusCode, data, nil
}

func contextError(ctx context.Context, err error) error {
	if ctx.Err() == nil {
		return err
	}
	cause := context.Cause(ctx)
	if errors.Is(cause, ErrTimedOut) {
		return ErrTimedOut
	}
	return cause
}

// errorMessage extracts {"error": "..."} from an error body.
func errorMessage(status int, data []byte) string {
	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(data, &body); err == nil && body.Error != "" {
		return body.Error
	}
	return fmt.Sprintf("HTTP error! Status: %d", status)
}

var idSegment = regexp.MustCompile(`^[0-9a-fA-F-]{6,}$|^\d+$`)

// endpointLabel strips the query and replaces id-like path segments so
// metric cardinality stays bounded.
func endpointLabel(path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	segments := strings.Split(path, "/")
	for i, s := range segments {
		if idSegment.MatchString(s) {
			segments[i] = ":id"
		}
	}
	return strings.Join(segments, "/")
}
