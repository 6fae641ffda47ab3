package model

import "time"

// LogLevel is a log severity. The numeric codes match the levels external
// diagnostic tooling expects, so they are fixed.
type LogLevel int

const (
	LevelDebug   LogLevel = 500
	LevelInfo    LogLevel = 800
	LevelWarning LogLevel = 900
	LevelError   LogLevel = 1000
)

// String returns the lowercase level name.
func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	}
	return "unknown"
}

// LogEntry is one line of the in-memory diagnostic log.
type LogEntry struct {
	Timestamp time.Time      `json:"timestamp"`
	Level     LogLevel       `json:"level"`
	Message   string         `json:"message"`
	Data      map[string]any `json:"data,omitempty"`
}
