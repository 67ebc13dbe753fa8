package mocks

import (
	"sync"

	"github.com/user/clipforge/pkg/ports"
)

// LogEntry is one recorded call. Msg is the untranslated message key.
type LogEntry struct {
	Level     string
	Component string
	Msg       string
	Args      []interface{}
}

// Logger records log calls instead of printing them. Loggers derived with
// WithComponent share the parent's entries.
type Logger struct {
	component string
	store     *logStore
}

type logStore struct {
	mu      sync.Mutex
	entries []LogEntry
}

// NewLogger creates an empty recording logger.
func NewLogger() *Logger {
	return &Logger{store: &logStore{}}
}

func (l *Logger) record(level, msg string, args []interface{}) {
	l.store.mu.Lock()
	defer l.store.mu.Unlock()
	l.store.entries = append(l.store.entries, LogEntry{Level: level, Component: l.component, Msg: msg, Args: args})
}

func (l *Logger) Debug(msg string, args ...interface{}) { l.record("debug", msg, args) }
func (l *Logger) Info(msg string, args ...interface{})  { l.record("info", msg, args) }
func (l *Logger) Warn(msg string, args ...interface{})  { l.record("warn", msg, args) }
func (l *Logger) Error(msg string, args ...interface{}) { l.record("error", msg, args) }

func (l *Logger) WithComponent(component string) ports.Logger {
	if l.component != "" {
		component = l.component + "/" + component
	}
	return &Logger{component: component, store: l.store}
}

// Entries returns a copy of everything logged so far.
func (l *Logger) Entries() []LogEntry {
	l.store.mu.Lock()
	defer l.store.mu.Unlock()
	return append([]LogEntry(nil), l.store.entries...)
}

// Has reports whether msg was logged at level.
func (l *Logger) Has(level, msg string) bool {
	for _, e := range l.Entries() {
		if e.Level == level && e.Msg == msg {
			return true
		}
	}
	return false
}

var _ ports.Logger = (*Logger)(nil)
