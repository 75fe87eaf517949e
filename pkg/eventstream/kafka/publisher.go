// Package kafka publishes conversion events to a Kafka topic using
// segmentio/kafka-go.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/papercomputeco/measures/pkg/eventstream"
	"github.com/papercomputeco/measures/pkg/logger"
)

const (
	defaultBatchTimeout = 50 * time.Millisecond
	defaultWriteTimeout = 10 * time.Second

	// HeaderEventType carries the event type so consumers can filter without
	// decoding the payload.
	HeaderEventType = "event_type"

	// HeaderSchemaVersion carries the payload schema version.
	HeaderSchemaVersion = "schema_version"
)

var (
	// ErrNoBrokers is returned when the publisher is configured without brokers.
	ErrNoBrokers = errors.New("kafka: at least one broker is required")

	// ErrNoTopic is returned when the publisher is configured without a topic.
	ErrNoTopic = errors.New("kafka: topic is required")
)

// Config is the configuration for a Kafka publisher.
type Config struct {
	// Brokers is the list of bootstrap broker addresses (host:port).
	Brokers []string

	// Topic is the destination topic for conversion events.
	Topic string

	// ClientID identifies this publisher to the brokers.
	ClientID string

	// BatchTimeout bounds how long the writer buffers messages before flushing.
	BatchTimeout time.Duration

	// WriteTimeout bounds a single produce request.
	WriteTimeout time.Duration

	Logger *slog.Logger
}

// messageWriter is the subset of *kafkago.Writer the publisher needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Publisher implements eventstream.Publisher on a Kafka topic. Messages are
// keyed by event ID and carry the JSON encoded event as their value.
type Publisher struct {
	writer messageWriter
	topic  string
	logger *slog.Logger
}

var _ eventstream.Publisher = (*Publisher)(nil)

// NewPublisher validates c and creates a publisher backed by a kafka-go Writer.
// No connection is made until the first event is published.
func NewPublisher(c *Config) (*Publisher, error) {
	if len(c.Brokers) == 0 {
		return nil, ErrNoBrokers
	}
	if c.Topic == "" {
		return nil, ErrNoTopic
	}

	batchTimeout := c.BatchTimeout
	if batchTimeout <= 0 {
		batchTimeout = defaultBatchTimeout
	}

	writeTimeout := c.WriteTimeout
	if writeTimeout <= 0 {
		writeTimeout = defaultWriteTimeout
	}

	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(c.Brokers...),
		Topic:                  c.Topic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireOne,
		BatchTimeout:           batchTimeout,
		WriteTimeout:           writeTimeout,
		AllowAutoTopicCreation: true,
	}
	if c.ClientID != "" {
		w.Transport = &kafkago.Transport{ClientID: c.ClientID}
	}

	return newPublisher(w, c.Topic, c.Logger), nil
}

func newPublisher(w messageWriter, topic string, log *slog.Logger) *Publisher {
	if log == nil {
		log = logger.Nop()
	}

	return &Publisher{
		writer: w,
		topic:  topic,
		logger: log,
	}
}

// PublishConversion encodes event and writes it to the topic.
func (p *Publisher) PublishConversion(ctx context.Context, event *eventstream.ConversionEvent) error {
	if event == nil {
		return eventstream.ErrNilConversionEvent
	}

	msg, err := toMessage(event)
	if err != nil {
		return err
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka: writing event %s to %s: %w", event.EventID, p.topic, err)
	}

	p.logger.Debug("conversion event published",
		"topic", p.topic,
		"event_id", event.EventID,
	)
	return nil
}

// Close flushes pending messages and closes the writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}

func toMessage(event *eventstream.ConversionEvent) (kafkago.Message, error) {
	value, err := json.Marshal(event)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("kafka: encoding event %s: %w", event.EventID, err)
	}

	return kafkago.Message{
		Key:   []byte(event.EventID),
		Value: value,
		Time:  event.EmittedAt,
		Headers: []kafkago.Header{
			{Key: HeaderEventType, Value: []byte(event.EventType)},
			{Key: HeaderSchemaVersion, Value: fmt.Appendf(nil, "%d", event.SchemaVersion)},
		},
	}, nil
}
