package chat

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashureev/propdash/internal/config"
)

func TestTranscriptWritesPerSessionNDJSON(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	logger, err := NewTranscriptLogger(config.ChatLogConfig{Enabled: true, Dir: dir, QueueSize: 16}, nil)
	require.NoError(t, err)

	NewSession("tab/../7", loggedIn(), nil, nil, WithTranscript(logger))
	require.NoError(t, logger.Close())

	path := filepath.Join(dir, "tab_.._7.ndjson")
	entries := readEntries(t, path)
	require.Len(t, entries, len(Greeting))
	assert.Equal(t, "tab/../7", entries[0].SessionID)
	assert.Equal(t, 1, entries[0].Seq)
	assert.Equal(t, "bot", entries[0].Sender)
}

func TestTranscriptRecordsExchange(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	logger, err := NewTranscriptLogger(config.ChatLogConfig{Enabled: true, Dir: dir, QueueSize: 16}, nil)
	require.NoError(t, err)

	api := newFakeAPI(t, reply(`{"success":true,"message":"\u001b[1mbold\u001b[0m reply"}`))
	mgr := NewManager(loggedIn(), api.client, nil, logger)
	s := mgr.Get("tab-2")
	require.True(t, s.Submit(context.Background(), "hello"))
	mgr.CloseAll()

	entries := readEntries(t, filepath.Join(dir, "tab-2.ndjson"))
	require.Len(t, entries, len(Greeting)+2)
	user, bot := entries[len(entries)-2], entries[len(entries)-1]
	assert.Equal(t, "user", user.Sender)
	assert.Equal(t, "general", user.Route)
	assert.Equal(t, "\x1b[1mbold\x1b[0m reply", bot.ContentRaw)
	assert.Equal(t, "bold reply", bot.Content)
}

func TestTranscriptDisabled(t *testing.T) {
	t.Parallel()
	logger, err := NewTranscriptLogger(config.ChatLogConfig{Enabled: false}, nil)
	require.NoError(t, err)
	assert.IsType(t, noopTranscript{}, logger)
	logger.Log(TranscriptEntry{SessionID: "x"})
	assert.NoError(t, logger.Close())
}

func TestCleanForReadability(t *testing.T) {
	t.Parallel()
	tests := []struct{ in, want string }{
		{"\x1b[31merror\x1b[0m plain", "error plain"},
		{"line one\r\nline two", "line one\nline two"},
		{"\x1b]0;title\x07visible\x00", "visible"},
		{"  ✅ Successful operation  ", "✅ Successful operation"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, cleanForReadability(tt.in), "input %q", tt.in)
	}
}

func readEntries(t *testing.T, path string) []TranscriptEntry {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var out []TranscriptEntry
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var e TranscriptEntry
		require.NoError(t, json.Unmarshal(sc.Bytes(), &e))
		out = append(out, e)
	}
	require.NoError(t, sc.Err())
	return out
}
