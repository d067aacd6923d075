package testutils

import (
	"context"
	"log/slog"
	"sync"
)

// LogEntry is one captured record. "level" and "message" are always present;
// every attribute, including those added with Logger.With, is stored under its key.
type LogEntry map[string]any

// TestSlogHandler records every log record in memory so tests can assert on
// what was logged and at which level. Handlers derived with WithAttrs share
// the same record list.
type TestSlogHandler struct {
	records *records
	attrs   []slog.Attr
}

type records struct {
	mu      sync.Mutex
	entries []LogEntry
}

func NewTestSlogHandler() *TestSlogHandler {
	return &TestSlogHandler{records: &records{}}
}

func (h *TestSlogHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *TestSlogHandler) Handle(_ context.Context, r slog.Record) error {
	entry := LogEntry{"level": r.Level.String(), "message": r.Message}
	for _, a := range h.attrs {
		entry[a.Key] = a.Value.Any()
	}
	r.Attrs(func(a slog.Attr) bool {
		entry[a.Key] = a.Value.Any()
		return true
	})

	h.records.mu.Lock()
	h.records.entries = append(h.records.entries, entry)
	h.records.mu.Unlock()
	return nil
}

func (h *TestSlogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &TestSlogHandler{
		records: h.records,
		attrs:   append(append([]slog.Attr(nil), h.attrs...), attrs...),
	}
}

// WithGroup is not needed by this module's loggers; groups are flattened.
func (h *TestSlogHandler) WithGroup(string) slog.Handler { return h }

// Entries returns a copy of everything captured so far.
func (h *TestSlogHandler) Entries() []LogEntry {
	h.records.mu.Lock()
	defer h.records.mu.Unlock()
	return append([]LogEntry(nil), h.records.entries...)
}

// Clear drops everything captured so far.
func (h *TestSlogHandler) Clear() {
	h.records.mu.Lock()
	h.records.entries = nil
	h.records.mu.Unlock()
}
