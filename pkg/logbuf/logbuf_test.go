package logbuf

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vpn-client/pkg/model"
)

func TestAppendAndEntries(t *testing.T) {
	b := New()
	b.Debug("starting up", nil)
	b.Info("connected", map[string]any{"endpoint": "wss://api.example.com/ws"})
	b.Warning("slow response", nil)
	b.Error("request failed", map[string]any{"status": 500})

	entries := b.Entries()
	require.Len(t, entries, 4)
	assert.Equal(t, model.LevelDebug, entries[0].Level)
	assert.Equal(t, model.LevelInfo, entries[1].Level)
	assert.Equal(t, model.LevelWarning, entries[2].Level)
	assert.Equal(t, model.LevelError, entries[3].Level)
	assert.Equal(t, "connected", entries[1].Message)
	assert.False(t, entries[0].Timestamp.IsZero())
}

func TestEvictionAtCapacity(t *testing.T) {
	b := New()
	for i := 0; i < DefaultCapacity+1; i++ {
		b.Info(fmt.Sprintf("entry %d", i), nil)
	}

	entries := b.Entries()
	require.Len(t, entries, DefaultCapacity)
	// Oldest entry evicted; the rest shifted.
	assert.Equal(t, "entry 1", entries[0].Message)
	assert.Equal(t, fmt.Sprintf("entry %d", DefaultCapacity), entries[len(entries)-1].Message)
}

func TestInjectedCapacity(t *testing.T) {
	b := New(WithCapacity(3))
	for i := 0; i < 5; i++ {
		b.Info(fmt.Sprintf("entry %d", i), nil)
	}

	entries := b.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, "entry 2", entries[0].Message)
	assert.Equal(t, "entry 4", entries[2].Message)
}

func TestClear(t *testing.T) {
	b := New()
	b.Info("one", nil)
	b.Info("two", nil)
	require.Equal(t, 2, b.Len())

	b.Clear()
	assert.Zero(t, b.Len())
	assert.Empty(t, b.Entries())
}

func TestBreadcrumbFailureSwallowed(t *testing.T) {
	var forwarded []model.LogEntry
	b := New(WithBreadcrumb(func(e model.LogEntry) error {
		forwarded = append(forwarded, e)
		return errors.New("sink down")
	}))

	b.Info("still buffered", nil)

	require.Len(t, forwarded, 1)
	require.Equal(t, 1, b.Len())
	assert.Equal(t, "still buffered", b.Entries()[0].Message)
}

func TestExportJSON(t *testing.T) {
	b := New()
	b.Error("request failed", map[string]any{"status": 500})

	data, err := b.ExportJSON()
	require.NoError(t, err)

	var out []map[string]any
	require.NoError(t, json.Unmarshal(data, &out))
	require.Len(t, out, 1)
	assert.Equal(t, "request failed", out[0]["message"])
	assert.Equal(t, float64(model.LevelError), out[0]["level"])
}

func TestExportText(t *testing.T) {
	b := New()
	b.Info("connected", map[string]any{"endpoint": "wss://api.example.com/ws"})

	text := b.ExportText()
	assert.Contains(t, text, "[info] connected")
	assert.Contains(t, text, `"endpoint":"wss://api.example.com/ws"`)
}
