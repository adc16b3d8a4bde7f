package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// durableKey is the row holding the remembered token.
const durableKey = "durable"

// SQLiteStore persists the remembered token in a SQLite file so it survives
// restarts and is shared by the server and the CLI.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens (creating if needed) the database at dbPath.
func NewSQLite(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o700); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS credentials (
		scope TEXT PRIMARY KEY,
		token TEXT NOT NULL,
		updated_at INTEGER NOT NULL
	);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Ping verifies database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Load returns the remembered token, or "" if none is stored.
func (s *SQLiteStore) Load(ctx context.Context) (string, error) {
	var token string
	err := s.db.QueryRowContext(ctx, `SELECT token FROM credentials WHERE scope = ?`, durableKey).Scan(&token)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("select token: %w", err)
	}
	return token, nil
}

// Save upserts the remembered token.
func (s *SQLiteStore) Save(ctx context.Context, token string) error {
	query := `
	INSERT INTO credentials (scope, token, updated_at)
	VALUES (?, ?, ?)
	ON CONFLICT(scope) DO UPDATE SET
		token = excluded.token,
		updated_at = excluded.updated_at`

	return withRetry(ctx, "save", func() error {
		if _, err := s.db.ExecContext(ctx, query, durableKey, token, time.Now().Unix()); err != nil {
			return fmt.Errorf("upsert token: %w", err)
		}
		return nil
	})
}

// Clear deletes the remembered token.
func (s *SQLiteStore) Clear(ctx context.Context) error {
	return withRetry(ctx, "clear", func() error {
		if _, err := s.db.ExecContext(ctx, `DELETE FROM credentials WHERE scope = ?`, durableKey); err != nil {
			return fmt.Errorf("delete token: %w", err)
		}
		return nil
	})
}
