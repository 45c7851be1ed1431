// Package bus provides event bus implementations for publishing evaluation progress.
package bus

import (
	"context"
	"time"

	"github.com/ricesearch/bugeval/internal/pkg/hash"
)

// Handler is a function that handles events.
type Handler func(ctx context.Context, event Event) error

// Bus defines the interface for event bus implementations.
type Bus interface {
	// Publish publishes an event to a topic.
	Publish(ctx context.Context, topic string, event Event) error

	// Subscribe subscribes to events on a topic.
	Subscribe(ctx context.Context, topic string, handler Handler) error

	// Close closes the bus and releases resources.
	Close() error
}

// Event represents a bus event.
type Event struct {
	// ID is the event identifier, derived from the event's identity fields.
	ID string `json:"id"`

	// Type is the event type (e.g., "score.recorded").
	Type string `json:"type"`

	// Source is the run that generated the event (e.g., "codebleu", "judge").
	Source string `json:"source"`

	// Timestamp is when the event was created, in Unix milliseconds.
	Timestamp int64 `json:"timestamp"`

	// CorrelationID links events of the same run.
	CorrelationID string `json:"correlation_id,omitempty"`

	// Payload contains the event data.
	Payload any `json:"payload"`
}

// Topics for evaluation events.
const (
	TopicScoreRecorded     = "eval.score.recorded"
	TopicReportSkipped     = "eval.report.skipped"
	TopicJudgementRecorded = "eval.judgement.recorded"
)

// EvaluationTopics lists every topic evaluation runs publish on.
var EvaluationTopics = []string{TopicScoreRecorded, TopicReportSkipped, TopicJudgementRecorded}

// Event types.
const (
	TypeScoreRecorded     = "score.recorded"
	TypeReportSkipped     = "report.skipped"
	TypeJudgementRecorded = "judgement.recorded"
)

// ScoreRecorded is the payload of a TopicScoreRecorded event.
type ScoreRecorded struct {
	Project     string  `json:"project"`
	Filename    string  `json:"filename"`
	Candidate   string  `json:"candidate_key"`
	GroundTruth string  `json:"ground_truth_method"`
	CodeBLEU    float64 `json:"codebleu"`
}

// ReportSkipped is the payload of a TopicReportSkipped event. Candidate is
// empty when the whole report was skipped.
type ReportSkipped struct {
	Project   string `json:"project"`
	Filename  string `json:"filename"`
	Candidate string `json:"candidate_key,omitempty"`
	Reason    string `json:"reason"`
	Detail    string `json:"detail,omitempty"`
}

// JudgementRecorded is the payload of a TopicJudgementRecorded event.
type JudgementRecorded struct {
	Filename         string `json:"filename"`
	RootCause        string `json:"root_cause_identification"`
	FixSuggestion    string `json:"fix_suggestion"`
	ProblemLocation  string `json:"problem_location_identification"`
	WrongInformation string `json:"wrong_information"`
}

// NewEvent builds an event whose ID is derived from the type and idParts, so
// republishing the same fact yields the same ID.
func NewEvent(eventType, source, correlationID string, payload any, idParts ...string) Event {
	return Event{
		ID:            hash.EventID(append([]string{eventType}, idParts...)...),
		Type:          eventType,
		Source:        source,
		Timestamp:     time.Now().UnixMilli(),
		CorrelationID: correlationID,
		Payload:       payload,
	}
}
