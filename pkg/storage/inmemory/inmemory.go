// Package inmemory provides a process-local storage.Driver.
package inmemory

import (
	"context"
	"sync"
	"time"

	"github.com/papercomputeco/measures/pkg/storage"
)

// Driver implements storage.Driver using a slice guarded by a mutex.
type Driver struct {
	// mu is a read write sync mutex guarding records, nextID and closed
	mu sync.RWMutex

	// records are kept in insertion order (ascending ID)
	records []*storage.Record
	nextID  int64
	closed  bool
}

// NewDriver creates a new in-memory audit log.
func NewDriver() *Driver {
	return &Driver{
		nextID: 1,
	}
}

// Record appends a row.
func (d *Driver) Record(_ context.Context, sequence string, processed []int) (*storage.Record, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil, storage.ErrClosed
	}

	rec := &storage.Record{
		ID:        d.nextID,
		Sequence:  sequence,
		Processed: append([]int{}, processed...),
		CreatedAt: time.Now().UTC(),
	}
	d.nextID++
	d.records = append(d.records, rec)

	return copyRecord(rec), nil
}

// ListAll returns all rows, newest first.
func (d *Driver) ListAll(_ context.Context) ([]*storage.Record, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		return nil, storage.ErrClosed
	}

	out := make([]*storage.Record, 0, len(d.records))
	for i := len(d.records) - 1; i >= 0; i-- {
		out = append(out, copyRecord(d.records[i]))
	}
	return out, nil
}

// Close marks the driver closed. Further calls return storage.ErrClosed.
func (d *Driver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.closed = true
	return nil
}

func copyRecord(r *storage.Record) *storage.Record {
	c := *r
	c.Processed = append([]int{}, r.Processed...)
	return &c
}
