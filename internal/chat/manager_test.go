package chat

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManagerGetIsPerTab(t *testing.T) {
	t.Parallel()
	mgr := NewManager(loggedIn(), nil, nil, nil)
	defer mgr.CloseAll()

	a := mgr.Get("tab-a")
	assert.Same(t, a, mgr.Get("tab-a"))
	assert.NotSame(t, a, mgr.Get("tab-b"))
	assert.Equal(t, 2, mgr.Len())

	_, ok := mgr.Lookup("tab-c")
	assert.False(t, ok)
}

func TestManagerRemoveClosesSession(t *testing.T) {
	t.Parallel()
	api := newFakeAPI(t, reply(`{"success":true,"message":"x"}`))
	mgr := NewManager(loggedIn(), api.client, nil, nil)
	defer mgr.CloseAll()

	s := mgr.Get("tab-a")
	mgr.Remove("tab-a")
	assert.Zero(t, mgr.Len())
	assert.False(t, s.Submit(context.Background(), "hello"))
	assert.Zero(t, api.hits.Load())

	mgr.Remove("missing")
}

func TestManagerSweep(t *testing.T) {
	t.Parallel()
	mgr := NewManager(loggedIn(), nil, nil, nil)
	defer mgr.CloseAll()

	old := mgr.Get("old")
	old.now = func() time.Time { return time.Now().Add(-time.Hour) }
	old.touch()
	mgr.Get("fresh")

	assert.Equal(t, 1, mgr.Sweep(30*time.Minute))
	_, ok := mgr.Lookup("old")
	assert.False(t, ok)
	_, ok = mgr.Lookup("fresh")
	require.True(t, ok)
}

func TestManagerSweeperStops(t *testing.T) {
	t.Parallel()
	mgr := NewManager(loggedIn(), nil, nil, nil)
	defer mgr.CloseAll()

	ctx, cancel := context.WithCancel(context.Background())
	mgr.StartSweeper(ctx, 10*time.Millisecond, time.Hour)
	mgr.Get("tab")
	time.Sleep(30 * time.Millisecond)
	cancel()
	assert.Equal(t, 1, mgr.Len())
}

func TestManagerSweepSkipsAttached(t *testing.T) {
	t.Parallel()
	mgr := NewManager(loggedIn(), nil, nil, nil)
	defer mgr.CloseAll()

	s := mgr.Get("held")
	s.now = func() time.Time { return time.Now().Add(-time.Hour) }
	detach := s.Attach()

	assert.Zero(t, mgr.Sweep(30*time.Minute))
	detach()
	assert.Equal(t, 1, mgr.Sweep(30*time.Minute))
}
