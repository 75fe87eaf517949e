// Package eventstream defines the transport-neutral events emitted after a
// measurement string has been converted and recorded.
package eventstream

import (
	"time"

	"github.com/google/uuid"
)

const (
	// SchemaVersionV1 is the first version of the event payload schema.
	SchemaVersionV1 = 1

	// EventTypeConversionCompleted is emitted after a conversion is recorded.
	EventTypeConversionCompleted = "measures.conversion.completed"
)

// ConversionEvent is a transport-neutral event payload for a completed conversion.
type ConversionEvent struct {
	SchemaVersion int       `json:"schema_version"`
	EventType     string    `json:"event_type"`
	EventID       string    `json:"event_id"`
	EmittedAt     time.Time `json:"emitted_at"`
	Sequence      string    `json:"sequence"`
	Processed     []int     `json:"processed"`

	// AuditID is the audit log row ID, zero when no row was written.
	AuditID int64 `json:"audit_id,omitempty"`
}

// NewConversionEvent builds a v1 event with a fresh ID and the current time.
func NewConversionEvent(sequence string, processed []int, auditID int64) *ConversionEvent {
	if processed == nil {
		processed = []int{}
	}

	return &ConversionEvent{
		SchemaVersion: SchemaVersionV1,
		EventType:     EventTypeConversionCompleted,
		EventID:       uuid.NewString(),
		EmittedAt:     time.Now().UTC(),
		Sequence:      sequence,
		Processed:     append([]int{}, processed...),
		AuditID:       auditID,
	}
}
