package apiclient

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthenticated means no token was stored; no request was sent.
	ErrUnauthenticated = errors.New("no authentication token found")
	// ErrSessionExpired means the server rejected the token with 401 or 403.
	ErrSessionExpired = errors.New("session expired")
	// ErrTimedOut means the client-side timeout fired and the request was cancelled.
	ErrTimedOut = errors.New("request timed out")
	// ErrMalformedResponse means a 2xx response did not have the expected shape.
	ErrMalformedResponse = errors.New("invalid response format from server")
)

// RequestFailedError is a non-2xx response other than 401/403.
type RequestFailedError struct {
	Status  int
	Message string
}

func (e *RequestFailedError) Error() string {
	return fmt.Sprintf("request failed: %s", e.Message)
}

// Outcome maps an error from this package to a short label for metrics and logs.
func Outcome(err error) string {
	var failed *RequestFailedError
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrUnauthenticated):
		return "unauthenticated"
	case errors.Is(err, ErrSessionExpired):
		return "session_expired"
	case errors.Is(err, ErrTimedOut):
		return "timeout"
	case errors.Is(err, ErrMalformedResponse):
		return "malformed"
	case errors.As(err, &failed):
		return "failed"
	default:
		return "error"
	}
}
