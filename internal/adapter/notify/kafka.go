// Package notify delivers engine events to the outside world.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"coopfin-loan-engine/internal/domain/event"
	"coopfin-loan-engine/pkg/logger"

	kafkago "github.com/segmentio/kafka-go"
)

// messageWriter is the part of *kafkago.Writer the publisher needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

type KafkaPublisher struct {
	w     messageWriter
	topic string
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafkago.Hash{},
		BatchTimeout:           10 * time.Millisecond,
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return &KafkaPublisher{w: w, topic: topic}
}

// Publish keys every message by aggregate id so one loan's events stay ordered.
func (p *KafkaPublisher) Publish(ctx context.Context, events ...event.Event) error {
	msgs := make([]kafkago.Message, 0, len(events))
	for _, evt := range events {
		payload, err := json.Marshal(evt)
		if err != nil {
			return fmt.Errorf("marshal event %s: %w", evt.Type, err)
		}
		logger.WithFields(map[string]any{
			"event_type":   evt.Type,
			"aggregate_id": evt.AggregateID,
			"topic":        p.topic,
		}).Debugf("notify: publishing %d bytes", len(payload))

		msgs = append(msgs, kafkago.Message{
			Key:   []byte(evt.AggregateID),
			Value: payload,
			Time:  evt.OccurredAt,
			Headers: []kafkago.Header{
				{Key: "event_type", Value: []byte(evt.Type)},
			},
		})
	}
	if len(msgs) == 0 {
		return nil
	}
	if err := p.w.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("kafka publish to %s: %w", p.topic, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error { return p.w.Close() }
