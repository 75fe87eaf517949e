// Package storage defines the audit log of processed measurements and the
// drivers that persist it.
package storage

import (
	"context"
	"time"
)

// Record is one row of the audit log.
type Record struct {
	ID        int64     `json:"id"`
	Sequence  string    `json:"sequence"`
	Processed []int     `json:"processed"`
	CreatedAt time.Time `json:"timestamp"`
}

// Driver defines the interface for persisting and listing audit records.
// Every successful conversion is recorded exactly once.
type Driver interface {
	// Record appends one row and returns it with its assigned ID and timestamp.
	// IDs are assigned in strictly increasing insertion order.
	Record(ctx context.Context, sequence string, processed []int) (*Record, error)

	// ListAll returns every record ordered by ID descending (newest first).
	ListAll(ctx context.Context) ([]*Record, error)

	// Close closes the store and releases any resources.
	Close() error
}
