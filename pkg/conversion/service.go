// Package conversion runs a measurement sequence through validation and
// decoding, then fans the result out to the audit log, the secure history and
// the event stream.
package conversion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/papercomputeco/measures/pkg/decoder"
	"github.com/papercomputeco/measures/pkg/eventstream"
	"github.com/papercomputeco/measures/pkg/history"
	"github.com/papercomputeco/measures/pkg/logger"
	"github.com/papercomputeco/measures/pkg/storage"
	"github.com/papercomputeco/measures/pkg/worker"
)

// ErrRecord wraps every failure to write the audit log.
var ErrRecord = errors.New("failed to record conversion")

// Enqueuer accepts conversion events for asynchronous delivery.
// *worker.Pool satisfies it.
type Enqueuer interface {
	Enqueue(job worker.Job) bool
}

// Config wires a Service to its sinks.
type Config struct {
	// Storer is the audit log. Required.
	Storer storage.Driver

	// History is the in-memory secure history. Required.
	History *history.Store

	// Events receives one event per successful conversion. Optional.
	Events Enqueuer

	Logger *slog.Logger
}

// Result is a successful conversion.
type Result struct {
	Sequence  string
	Processed []int
	AuditID   int64
}

// Service is safe for concurrent use.
type Service struct {
	storer  storage.Driver
	history *history.Store
	events  Enqueuer
	logger  *slog.Logger
}

func NewService(c *Config) (*Service, error) {
	if c.Storer == nil {
		return nil, errors.New("conversion service requires a storage driver")
	}
	if c.History == nil {
		return nil, errors.New("conversion service requires a history store")
	}

	log := c.Logger
	if log == nil {
		log = logger.Nop()
	}

	return &Service{
		storer:  c.Storer,
		history: c.History,
		events:  c.Events,
		logger:  log,
	}, nil
}

// Convert validates and decodes input. Invalid input yields a
// *decoder.ValidationError and touches no sink. A successful decode is
// recorded in the audit log first; only once that succeeds is it appended to
// the secure history and queued for publishing.
func (s *Service) Convert(ctx context.Context, input string) (*Result, error) {
	if err := decoder.Validate(input); err != nil {
		s.logger.Warn("invalid sequence received",
			"input", input,
			"error", err,
		)
		return nil, err
	}

	processed, err := decoder.Decode(input)
	if err != nil {
		s.logger.Error("error during conversion",
			"input", input,
			"error", err,
		)
		return nil, err
	}

	rec, err := s.storer.Record(ctx, input, processed)
	if err != nil {
		s.logger.Error("failed to record conversion",
			"input", input,
			"error", err,
		)
		return nil, fmt.Errorf("%w: %w", ErrRecord, err)
	}

	s.history.Append(history.Entry{
		Sequence:  input,
		Processed: processed,
	})

	if s.events != nil {
		s.events.Enqueue(worker.Job{
			Event: eventstream.NewConversionEvent(input, processed, rec.ID),
		})
	}

	s.logger.Info("sequence processed and secure history updated",
		"sequence", input,
		"audit_id", rec.ID,
	)

	return &Result{
		Sequence:  input,
		Processed: processed,
		AuditID:   rec.ID,
	}, nil
}

// AuditLog returns every recorded conversion, newest first. The slice is
// never nil.
func (s *Service) AuditLog(ctx context.Context) ([]*storage.Record, error) {
	records, err := s.storer.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []*storage.Record{}
	}
	return records, nil
}

// SecureHistory returns a snapshot of the secure history, oldest first.
func (s *Service) SecureHistory() []history.Entry {
	return s.history.Entries()
}
