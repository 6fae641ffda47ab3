// Package logbuf implements the capacity-bounded in-memory diagnostic log.
// The buffer is an explicit object owned by the composition root and passed by
// reference to consumers; appends never block and never fail.
package logbuf

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	clog "github.com/charmbracelet/log"

	"vpn-client/pkg/model"
)

// DefaultCapacity is the entry cap used when none is injected.
const DefaultCapacity = 1000

// Breadcrumb forwards an entry to an external sink (crash reporting, console).
// Forwarding failures are swallowed; the buffer itself is the source of truth.
type Breadcrumb func(model.LogEntry) error

// Buffer is a fixed-capacity FIFO of log entries. Once full, each append
// evicts the oldest entry.
type Buffer struct {
	mu       sync.Mutex
	entries  []model.LogEntry
	capacity int
	sink     *clog.Logger
	crumbs   []Breadcrumb
}

// Option configures a Buffer.
type Option func(*Buffer)

// WithCapacity overrides the default entry cap. Non-positive values are ignored.
func WithCapacity(n int) Option {
	return func(b *Buffer) {
		if n > 0 {
			b.capacity = n
		}
	}
}

// WithSink mirrors entries to a console logger.
func WithSink(l *clog.Logger) Option {
	return func(b *Buffer) { b.sink = l }
}

// WithBreadcrumb registers an external forwarder.
func WithBreadcrumb(fn Breadcrumb) Option {
	return func(b *Buffer) {
		if fn != nil {
			b.crumbs = append(b.crumbs, fn)
		}
	}
}

// New builds a Buffer with the given options.
func New(opts ...Option) *Buffer {
	b := &Buffer{capacity: DefaultCapacity}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Debug appends a debug entry.
func (b *Buffer) Debug(msg string, data map[string]any) {
	b.append(model.LevelDebug, msg, data)
}

// Info appends an info entry.
func (b *Buffer) Info(msg string, data map[string]any) {
	b.append(model.LevelInfo, msg, data)
}

// Warning appends a warning entry.
func (b *Buffer) Warning(msg string, data map[string]any) {
	b.append(model.LevelWarning, msg, data)
}

// Error appends an error entry.
func (b *Buffer) Error(msg string, data map[string]any) {
	b.append(model.LevelError, msg, data)
}

func (b *Buffer) append(level model.LogLevel, msg string, data map[string]any) {
	entry := model.LogEntry{
		Timestamp: time.Now(),
		Level:     level,
		Message:   msg,
		Data:      data,
	}
	b.mu.Lock()
	if len(b.entries) >= b.capacity {
		b.entries = b.entries[1:]
	}
	b.entries = append(b.entries, entry)
	sink := b.sink
	crumbs := b.crumbs
	b.mu.Unlock()

	if sink != nil {
		args := make([]any, 0, len(data)*2)
		for k, v := range data {
			args = append(args, k, v)
		}
		switch level {
		case model.LevelDebug:
			sink.Debug(msg, args...)
		case model.LevelWarning:
			sink.Warn(msg, args...)
		case model.LevelError:
			sink.Error(msg, args...)
		default:
			sink.Info(msg, args...)
		}
	}
	for _, crumb := range crumbs {
		_ = crumb(entry)
	}
}

// Entries returns a copy of the buffered entries, oldest first.
func (b *Buffer) Entries() []model.LogEntry {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]model.LogEntry(nil), b.entries...)
}

// Len returns the number of buffered entries.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.entries)
}

// Clear empties the buffer unconditionally.
func (b *Buffer) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries = nil
}

// ExportText renders entries as newline-joined lines.
func (b *Buffer) ExportText() string {
	entries := b.Entries()
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		line := fmt.Sprintf("%s [%s] %s", e.Timestamp.Format(time.RFC3339), e.Level, e.Message)
		if len(e.Data) > 0 {
			if extra, err := json.Marshal(e.Data); err == nil {
				line += " " + string(extra)
			}
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// ExportJSON renders entries as a JSON array of
// {timestamp, level, message, data} objects.
func (b *Buffer) ExportJSON() ([]byte, error) {
	return json.Marshal(b.Entries())
}
