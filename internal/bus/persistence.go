package bus

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/ricesearch/bugeval/internal/pkg/errors"
)

// maxEventLine bounds one JSONL record; score and judgement payloads are small.
const maxEventLine = 1 << 20

// LoggedEvent is one line of the event log.
type LoggedEvent struct {
	Event     Event     `json:"event"`
	Topic     string    `json:"topic"`
	Timestamp time.Time `json:"timestamp"`
}

// EventFilter selects events from the log. Zero fields match everything.
type EventFilter struct {
	Since         time.Time // strictly after
	Topic         string
	CorrelationID string // run id
	Limit         int    // at most this many, 0 = all
}

func (f EventFilter) matches(e LoggedEvent) bool {
	if !e.Timestamp.After(f.Since) {
		return false
	}
	if f.Topic != "" && e.Topic != f.Topic {
		return false
	}
	return f.CorrelationID == "" || e.Event.CorrelationID == f.CorrelationID
}

// EventLogger appends published events to a JSON-lines file so a run can be
// inspected after the fact or replayed onto another bus.
type EventLogger struct {
	path    string
	enabled bool

	mu   sync.Mutex
	file *os.File
}

// NewEventLogger opens (or creates) the log at path for appending. A disabled
// logger accepts writes and drops them.
func NewEventLogger(path string, enabled bool) (*EventLogger, error) {
	l := &EventLogger{path: path, enabled: enabled}
	if !enabled {
		return l, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create event log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("open event log: %w", err)
	}
	l.file = f
	return l, nil
}

// Log appends one event. Each record is synced so a crashed run keeps every
// event it published.
func (l *EventLogger) Log(topic string, event Event) error {
	if !l.enabled {
		return nil
	}

	line, err := json.Marshal(LoggedEvent{Event: event, Topic: topic, Timestamp: time.Now()})
	if err != nil {
		return fmt.Errorf("encode event %s: %w", event.ID, err)
	}
	line = append(line, '\n')

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return errors.New(errors.CodeUnavailable, "event log is closed")
	}
	if _, err := l.file.Write(line); err != nil {
		return fmt.Errorf("write event log: %w", err)
	}
	return l.file.Sync()
}

// Events reads the log and returns the events selected by f, oldest first.
// Lines that do not decode are skipped.
func (l *EventLogger) Events(f EventFilter) ([]LoggedEvent, error) {
	if !l.enabled {
		return nil, errors.New(errors.CodeUnavailable, "event logging is disabled")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	file, err := os.Open(l.path)
	if os.IsNotExist(err) {
		return []LoggedEvent{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open event log: %w", err)
	}
	defer file.Close()

	events := []LoggedEvent{}
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 64*1024), maxEventLine)
	for scanner.Scan() {
		var e LoggedEvent
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			continue
		}
		if !f.matches(e) {
			continue
		}
		events = append(events, e)
		if f.Limit > 0 && len(events) >= f.Limit {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read event log: %w", err)
	}
	return events, nil
}

// Replay publishes the events selected by f onto b in log order and returns
// how many were published.
func (l *EventLogger) Replay(ctx context.Context, b Bus, f EventFilter) (int, error) {
	events, err := l.Events(f)
	if err != nil {
		return 0, err
	}

	for i, e := range events {
		if err := ctx.Err(); err != nil {
			return i, err
		}
		if err := b.Publish(ctx, e.Topic, e.Event); err != nil {
			return i, fmt.Errorf("replay event %s: %w", e.Event.ID, err)
		}
	}
	return len(events), nil
}

// Close closes the log file. It is safe to call more than once.
func (l *EventLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	if err != nil {
		return fmt.Errorf("close event log: %w", err)
	}
	return nil
}

// IsEnabled reports whether events are written.
func (l *EventLogger) IsEnabled() bool {
	return l.enabled
}
