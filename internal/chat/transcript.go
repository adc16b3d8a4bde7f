package chat

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/ashureev/propdash/internal/config"
	"github.com/ashureev/propdash/internal/domain"
	"github.com/ashureev/propdash/internal/intent"
)

// TranscriptEntry is one NDJSON line of a chat transcript.
type TranscriptEntry struct {
	Timestamp  string `json:"ts"`
	SessionID  string `json:"session_id"`
	Seq        int    `json:"seq"`
	Sender     string `json:"sender"`
	Route      string `json:"route,omitempty"`
	ContentRaw string `json:"content_raw"`
	Content    string `json:"content"`
}

// TranscriptLogger records chat turns. Log must not block.
type TranscriptLogger interface {
	Log(entry TranscriptEntry)
	Close() error
}

type noopTranscript struct{}

func (noopTranscript) Log(TranscriptEntry) {}
func (noopTranscript) Close() error        { return nil }

func entryForTurn(sessionID string, turn domain.Turn, route intent.Route) TranscriptEntry {
	return TranscriptEntry{
		Timestamp:  turn.At.UTC().Format(time.RFC3339Nano),
		SessionID:  sessionID,
		Seq:        turn.Seq,
		Sender:     string(turn.Sender),
		Route:      string(route),
		ContentRaw: turn.Text,
		Content:    cleanForReadability(turn.Text),
	}
}

// FileTranscript appends entries to <dir>/<session_id>.ndjson from a single
// background writer. When the queue is full new entries are dropped.
type FileTranscript struct {
	dir    string
	queue  chan TranscriptEntry
	logger *slog.Logger
	wg     sync.WaitGroup

	closeOnce sync.Once
	mu        sync.RWMutex
	closed    bool
}

// NewTranscriptLogger returns a file logger when cfg.Enabled and a no-op
// logger otherwise.
func NewTranscriptLogger(cfg config.ChatLogConfig, logger *slog.Logger) (TranscriptLogger, error) {
	if !cfg.Enabled {
		return noopTranscript{}, nil
	}
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(cfg.Dir, 0o750); err != nil {
		return nil, fmt.Errorf("create chat log directory: %w", err)
	}
	size := cfg.QueueSize
	if size <= 0 {
		size = 1000
	}

	t := &FileTranscript{
		dir:    cfg.Dir,
		queue:  make(chan TranscriptEntry, size),
		logger: logger,
	}
	t.wg.Add(1)
	go t.run()
	return t, nil
}

// Log queues entry for writing.
func (t *FileTranscript) Log(entry TranscriptEntry) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.closed {
		return
	}
	select {
	case t.queue <- entry:
	default:
		t.logger.Warn("chat transcript queue full, dropping entry", "session_id", entry.SessionID, "seq", entry.Seq)
	}
}

// Close flushes queued entries and stops the writer.
func (t *FileTranscript) Close() error {
	t.closeOnce.Do(func() {
		t.mu.Lock()
		t.closed = true
		close(t.queue)
		t.mu.Unlock()
	})
	t.wg.Wait()
	return nil
}

func (t *FileTranscript) run() {
	defer t.wg.Done()
	for entry := range t.queue {
		if err := t.write(entry); err != nil {
			t.logger.Warn("failed to write chat transcript", "session_id", entry.SessionID, "error", err)
		}
	}
}

func (t *FileTranscript) write(entry TranscriptEntry) error {
	line, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal entry: %w", err)
	}
	path := filepath.Join(t.dir, safeFileName(entry.SessionID)+".ndjson")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o640)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	if _, err := f.Write(append(line, '\n')); err != nil {
		_ = f.Close()
		return fmt.Errorf("append %s: %w", path, err)
	}
	return f.Close()
}

var unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9._-]`)

func safeFileName(id string) string {
	id = unsafeFileChars.ReplaceAllString(id, "_")
	if id == "" || strings.Trim(id, ".") == "" {
		return "session"
	}
	return id
}

var ansiSequence = regexp.MustCompile(`\x1b\[[0-9;?]*[ -/]*[@-~]|\x1b\][^\x07\x1b]*(\x07|\x1b\\)`)

// cleanForReadability strips ANSI escapes and control characters so the
// transcript's content field reads as plain text.
func cleanForReadability(s string) string {
	s = ansiSequence.ReplaceAllString(s, "")
	s = strings.Map(func(r rune) rune {
		switch {
		case r == '\n' || r == '\t':
			return r
		case r == '\r':
			return -1
		case r < 0x20 || r == 0x7f:
			return -1
		}
		return r
	}, s)
	return strings.TrimSpace(s)
}
