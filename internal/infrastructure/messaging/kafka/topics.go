// Package kafka carries the run-trigger topics the worker consumes and the
// completion events it publishes back.
package kafka

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/dealsense/icp-engine/pkg/errors"
)

// Topic constants.
const (
	TopicDiscoveryRequested = "icp.discovery.requested"
	TopicScoringRequested   = "icp.scoring.requested"
	TopicRunCompleted       = "icp.run.completed"
	TopicDeadLetter         = "icp.dead_letter"
)

// EventEnvelope standardizes event messages across topics.
type EventEnvelope struct {
	EventID       string            `json:"event_id"`
	EventType     string            `json:"event_type"`
	Source        string            `json:"source"`
	Timestamp     time.Time         `json:"timestamp"`
	SchemaVersion string            `json:"schema_version"`
	TraceID       string            `json:"trace_id,omitempty"`
	Payload       json.RawMessage   `json:"payload"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// DiscoveryRequestedPayload asks the worker to run discovery for a workspace.
type DiscoveryRequestedPayload struct {
	WorkspaceID string    `json:"workspace_id"`
	RequestedBy string    `json:"requested_by,omitempty"`
	RequestedAt time.Time `json:"requested_at"`
}

// ScoringRequestedPayload asks the worker to score a workspace's open records.
type ScoringRequestedPayload struct {
	WorkspaceID string    `json:"workspace_id"`
	RequestedBy string    `json:"requested_by,omitempty"`
	RequestedAt time.Time `json:"requested_at"`
}

// RunCompletedPayload reports a finished (or failed) run back to the
// surrounding application.
type RunCompletedPayload struct {
	WorkspaceID    string    `json:"workspace_id"`
	RunType        string    `json:"run_type"` // "discovery" or "scoring"
	Status         string    `json:"status"`   // "succeeded" or "failed"
	Mode           string    `json:"mode,omitempty"`
	ProfileID      string    `json:"profile_id,omitempty"`
	ProfileVersion int       `json:"profile_version,omitempty"`
	DealsScored    int       `json:"deals_scored,omitempty"`
	ContactsScored int       `json:"contacts_scored,omitempty"`
	Error          string    `json:"error,omitempty"`
	CompletedAt    time.Time `json:"completed_at"`
}

// NewEnvelope wraps a payload into a versioned envelope.
func NewEnvelope(eventType string, payload interface{}) (*EventEnvelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "marshal event payload")
	}
	return &EventEnvelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		Source:        "icp-engine",
		Timestamp:     time.Now().UTC(),
		SchemaVersion: "1.0",
		Payload:       raw,
	}, nil
}

// DecodeEnvelope parses a raw message value into an envelope.
func DecodeEnvelope(value []byte) (*EventEnvelope, error) {
	var env EventEnvelope
	if err := json.Unmarshal(value, &env); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "unmarshal event envelope")
	}
	return &env, nil
}

// DecodePayload parses the envelope's payload into dst.
func (e *EventEnvelope) DecodePayload(dst interface{}) error {
	if err := json.Unmarshal(e.Payload, dst); err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "unmarshal event payload")
	}
	return nil
}

//Personal.AI order the ending
