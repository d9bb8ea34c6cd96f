package notify

import (
	"context"

	"coopfin-loan-engine/internal/domain/event"
	"coopfin-loan-engine/pkg/logger"
)

// LogPublisher writes events to the structured log. Used when no broker is configured.
type LogPublisher struct{}

func (LogPublisher) Publish(_ context.Context, events ...event.Event) error {
	for _, evt := range events {
		fields := map[string]any{
			"event_type":   evt.Type,
			"aggregate_id": evt.AggregateID,
		}
		if evt.Amount != 0 {
			fields["amount"] = evt.Amount
		}
		for k, v := range evt.Attributes {
			fields[k] = v
		}
		logger.WithFields(fields).Info("event")
	}
	return nil
}
