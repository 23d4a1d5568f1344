package producer

import (
	"context"
	"encoding/json"
	"time"

	"go-directory/internal/events"

	kafkago "github.com/segmentio/kafka-go"
)

// MessageWriter is the part of *kafkago.Writer the publisher needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
}

// DefaultPublishTimeout bounds one publish so a slow or lost broker cannot
// hold up the write request that triggered it.
const DefaultPublishTimeout = 500 * time.Millisecond

type EventPublisher struct {
	writer  MessageWriter
	topic   string
	timeout time.Duration
}

type Option func(*EventPublisher)

func WithTimeout(d time.Duration) Option {
	return func(p *EventPublisher) {
		if d > 0 {
			p.timeout = d
		}
	}
}

func NewEventPublisher(writer MessageWriter, topic string, opts ...Option) *EventPublisher {
	if topic == "" {
		topic = events.EmployeeLifecycleTopic
	}
	p := &EventPublisher{writer: writer, topic: topic, timeout: DefaultPublishTimeout}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Publish writes one lifecycle event keyed by employee id, so all events of
// one employee land on the same partition in order.
func (p *EventPublisher) Publish(ctx context.Context, event events.EmployeeEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	// the write already committed, a client hang-up must not drop the event
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.timeout)
	defer cancel()

	return p.writer.WriteMessages(ctx, kafkago.Message{
		Topic: p.topic,
		Key:   []byte(event.EmployeeID),
		Value: payload,
		Headers: []kafkago.Header{
			{Key: "event_type", Value: []byte(event.EventType)},
		},
	})
}
