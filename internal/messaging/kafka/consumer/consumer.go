package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"time"

	"go-directory/internal/bootstrap"
	"go-directory/internal/events"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// MessageReader is the part of *kafkago.Reader the consumer needs.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafkago.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafkago.Message) error
}

// Fetch failures back off from fetchRetryDelay, doubling up to maxFetchRetryDelay.
var (
	fetchRetryDelay    = 500 * time.Millisecond
	maxFetchRetryDelay = 30 * time.Second
)

// ConsumeEmployeeLifecycle records every employee lifecycle event in the
// audit log until ctx is cancelled. Undecodable messages are committed and
// skipped so they never block the partition. It also returns once the reader
// is closed.
func ConsumeEmployeeLifecycle(
	ctx context.Context,
	reader MessageReader,
	audit bootstrap.AuditLogger,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.employee_lifecycle")
	log.Info("employee lifecycle consumer started")

	delay := fetchRetryDelay
	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("employee lifecycle consumer stopped")
				return
			}
			if errors.Is(err, io.EOF) {
				log.Info("employee lifecycle reader closed, consumer stopped")
				return
			}
			log.Error("fetch employee lifecycle message failed",
				zap.Duration("retry_in", delay),
				zap.Error(err),
			)
			select {
			case <-ctx.Done():
				log.Info("employee lifecycle consumer stopped")
				return
			case <-time.After(delay):
			}
			delay = min(delay*2, maxFetchRetryDelay)
			continue
		}
		delay = fetchRetryDelay

		handleMessage(ctx, msg, audit, log)

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit employee lifecycle message failed",
				zap.Int64("offset", msg.Offset),
				zap.Error(err),
			)
		}
	}
}

func handleMessage(ctx context.Context, msg kafkago.Message, audit bootstrap.AuditLogger, log *zap.Logger) {
	var event events.EmployeeEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		log.Error("decode employee lifecycle event failed",
			zap.Int64("offset", msg.Offset),
			zap.Error(err),
		)
		return
	}

	switch event.EventType {
	case events.EmployeeCreated, events.EmployeeUpdated, events.EmployeeDeleted:
	default:
		log.Warn("unknown employee lifecycle event, skipping", zap.String("event_type", event.EventType))
		return
	}

	audit.Log(ctx, bootstrap.AuditLog{
		Action:  event.EventType,
		Message: "employee " + event.EmployeeID,
		Meta: map[string]any{
			"employee_id": event.EmployeeID,
			"email":       event.Email,
			"request_id":  event.RequestID,
			"occurred_at": event.OccurredAt,
		},
	})

	log.Debug("employee lifecycle event audited",
		zap.String("event_type", event.EventType),
		zap.String("employee_id", event.EmployeeID),
	)
}
