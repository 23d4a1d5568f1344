package employee

import (
	"context"

	"go-directory/internal/events"
)

// EventPublisher announces committed employee writes. Implementations live in
// internal/messaging/kafka/producer.
type EventPublisher interface {
	Publish(ctx context.Context, event events.EmployeeEvent) error
}

type noopEventPublisher struct{}

func (noopEventPublisher) Publish(context.Context, events.EmployeeEvent) error {
	return nil
}
