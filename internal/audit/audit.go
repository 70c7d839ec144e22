// Package audit records what nginx-route did to which config file.
// Events are appended to a single JSON Lines (JSONL) history file.
package audit

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// EventType classifies a history event.
type EventType string

const (
	EventAdd      EventType = "add"
	EventDryRun   EventType = "dry-run"
	EventReject   EventType = "reject"
	EventRestore  EventType = "restore"
	EventRollback EventType = "rollback"
	EventReload   EventType = "reload"
	EventError    EventType = "error"
)

// Event represents a single history entry.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	Target    string    `json:"target"`
	Route     string    `json:"route,omitempty"`
	Backup    string    `json:"backup,omitempty"`
	Details   string    `json:"details,omitempty"`
}

// Logger appends and reads history events.
type Logger struct {
	mu   sync.Mutex
	path string
}

// NewLogger creates a logger writing to the JSONL file at path.
func NewLogger(path string) *Logger {
	return &Logger{path: path}
}

// Path returns the history file path.
func (l *Logger) Path() string {
	return l.path
}

// Log appends an event to the history file.
func (l *Logger) Log(event Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(l.path), 0755); err != nil {
		return fmt.Errorf("failed to create history directory: %w", err)
	}

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open history: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write event: %w", err)
	}

	return nil
}

// Events reads all events in the order they were written. Malformed lines
// are skipped. A missing history file yields no events.
func (l *Logger) Events() ([]Event, error) {
	f, err := os.Open(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open history: %w", err)
	}
	defer f.Close()

	var events []Event
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var event Event
		if err := json.Unmarshal(line, &event); err != nil {
			continue
		}
		events = append(events, event)
	}

	if err := scanner.Err(); err != nil {
		return events, fmt.Errorf("error reading history: %w", err)
	}

	return events, nil
}

// Last returns at most n of the most recent events, oldest first. n <= 0
// returns everything.
func (l *Logger) Last(n int) ([]Event, error) {
	events, err := l.Events()
	if err != nil || n <= 0 || len(events) <= n {
		return events, err
	}
	return events[len(events)-n:], nil
}
