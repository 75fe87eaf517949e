package eventstream

import "context"

// Publisher publishes conversion events to an event stream backend.
type Publisher interface {
	PublishConversion(ctx context.Context, event *ConversionEvent) error
	Close() error
}
