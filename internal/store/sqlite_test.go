package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/ashureev/propdash/internal/config"
	"github.com/ashureev/propdash/internal/credential"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSQLite(t *testing.T) (*SQLiteStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nested", "propdash.db")
	s, err := NewSQLite(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s, path
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s, _ := newTestSQLite(t)

	token, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, token)

	require.NoError(t, s.Save(ctx, "first"))
	require.NoError(t, s.Save(ctx, "second"))
	token, err = s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "second", token)

	require.NoError(t, s.Clear(ctx))
	require.NoError(t, s.Clear(ctx))
	token, err = s.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, token)
}

func TestSQLiteStoreSurvivesReopen(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s, path := newTestSQLite(t)
	require.NoError(t, s.Save(ctx, "remembered"))
	require.NoError(t, s.Close())

	reopened, err := NewSQLite(path)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()

	token, err := reopened.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "remembered", token)
}

func TestVaultOverSQLite(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	durable, _ := newTestSQLite(t)
	session := credential.NewMemoryStore()
	v := credential.NewVault(durable, session)

	require.NoError(t, v.Save(ctx, "tok", true))
	d, _ := durable.Load(ctx)
	s, _ := session.Load(ctx)
	assert.Equal(t, "tok", d)
	assert.Empty(t, s)

	require.NoError(t, v.Save(ctx, "tok", false))
	d, _ = durable.Load(ctx)
	s, _ = session.Load(ctx)
	assert.Empty(t, d)
	assert.Equal(t, "tok", s)
}

func TestWithRetry(t *testing.T) {
	t.Parallel()
	calls := 0
	err := withRetry(context.Background(), "test", func() error {
		calls++
		if calls < 3 {
			return errors.New("database is locked (5) (SQLITE_BUSY)")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)

	calls = 0
	err = withRetry(context.Background(), "test", func() error {
		calls++
		return errors.New("constraint failed")
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestOpenSelectsSQLite(t *testing.T) {
	t.Parallel()
	cfg := &config.Config{CredentialBackend: config.BackendSQLite, DBPath: filepath.Join(t.TempDir(), "p.db")}
	s, err := Open(cfg)
	require.NoError(t, err)
	defer func() { _ = s.Close() }()
	require.NoError(t, s.Ping(context.Background()))
	_, ok := s.(*SQLiteStore)
	assert.True(t, ok)

	_, err = Open(&config.Config{CredentialBackend: "etcd"})
	assert.Error(t, err)
}
