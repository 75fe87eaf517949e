package nop

import (
	"context"

	"github.com/papercomputeco/measures/pkg/eventstream"
)

var _ eventstream.Publisher = (*Publisher)(nil)

// Publisher is a no-op eventstream publisher used for tests and disabled mode.
type Publisher struct{}

// NewPublisher creates a new no-op eventstream publisher.
func NewPublisher() *Publisher {
	return &Publisher{}
}

// PublishConversion validates input and otherwise does nothing.
// It is the publisher used when no event stream is configured.
func (p *Publisher) PublishConversion(_ context.Context, event *eventstream.ConversionEvent) error {
	if event == nil {
		return eventstream.ErrNilConversionEvent
	}

	return nil
}

// Close is a no-op.
func (p *Publisher) Close() error {
	return nil
}
