// Package store provides the durable credential backends.
package store

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/ashureev/propdash/internal/credential"
)

// TokenStore is a durable credential.Store that owns a connection.
type TokenStore interface {
	credential.Store

	// Ping verifies the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases the connection.
	Close() error
}

// isBusy reports SQLite lock contention, which is worth retrying.
func isBusy(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

// withRetry runs op, retrying lock contention with exponential backoff
// (25ms, 50ms, 100ms).
func withRetry(ctx context.Context, name string, op func() error) error {
	const maxAttempts = 4
	delay := 25 * time.Millisecond

	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err = op()
		if !isBusy(err) || attempt == maxAttempts {
			return err
		}
		slog.Debug("credential store busy, retrying", "op", name, "attempt", attempt, "delay", delay)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
	return err
}
