package logger

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"testing"
)

// TestLogBuffer collects JSON log lines written by a test logger. Stores and
// backends log from whatever goroutine runs the operation, so writes are
// serialized.
type TestLogBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *TestLogBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *TestLogBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// Reset drops everything logged so far.
func (b *TestLogBuffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf.Reset()
}

// Entries decodes one JSON object per logged line, oldest first.
func (b *TestLogBuffer) Entries() ([]map[string]any, error) {
	var entries []map[string]any
	sc := bufio.NewScanner(strings.NewReader(b.String()))
	for line := 1; sc.Scan(); line++ {
		raw := bytes.TrimSpace(sc.Bytes())
		if len(raw) == 0 {
			continue
		}
		entry := map[string]any{}
		if err := json.Unmarshal(raw, &entry); err != nil {
			return nil, fmt.Errorf("log line %d: %w", line, err)
		}
		entries = append(entries, entry)
	}
	return entries, sc.Err()
}

// WithMessage returns the entries whose msg equals message. Undecodable
// output yields nil.
func (b *TestLogBuffer) WithMessage(message string) []map[string]any {
	entries, err := b.Entries()
	if err != nil {
		return nil
	}
	var matched []map[string]any
	for _, e := range entries {
		if e[slog.MessageKey] == message {
			matched = append(matched, e)
		}
	}
	return matched
}

// GetTestLogger returns a debug-level JSON logger and the buffer it writes
// to. slog.Default is left alone so parallel tests each own their output.
func GetTestLogger(t *testing.T) (*slog.Logger, *TestLogBuffer) {
	t.Helper()

	buf := &TestLogBuffer{}
	return slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})), buf
}

// AssertLogContains fails the test unless content appears somewhere in the
// captured output.
func AssertLogContains(t *testing.T, buf *TestLogBuffer, content string) {
	t.Helper()

	if out := buf.String(); !strings.Contains(out, content) {
		t.Errorf("log output does not contain %q:\n%s", content, out)
	}
}

// AssertLogField fails the test unless some entry logged as message carries
// field with the expected value. JSON numbers decode as float64.
func AssertLogField(t *testing.T, buf *TestLogBuffer, message, field string, expected any) {
	t.Helper()

	matched := buf.WithMessage(message)
	if len(matched) == 0 {
		t.Errorf("no log entry with message %q:\n%s", message, buf.String())
		return
	}
	seen := make([]any, 0, len(matched))
	for _, e := range matched {
		if e[field] == expected {
			return
		}
		seen = append(seen, e[field])
	}
	t.Errorf("log entry %q: field %q = %v, want %v", message, field, seen, expected)
}

// AssertNoErrorLogs fails the test if anything was logged at error level.
func AssertNoErrorLogs(t *testing.T, buf *TestLogBuffer) {
	t.Helper()

	entries, err := buf.Entries()
	if err != nil {
		t.Fatalf("decode log output: %v", err)
	}
	for _, e := range entries {
		if e[slog.LevelKey] == slog.LevelError.String() {
			t.Errorf("unexpected error log: %v", e)
		}
	}
}
