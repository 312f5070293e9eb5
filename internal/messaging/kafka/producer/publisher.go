package producer

import (
	"context"

	kafkago "github.com/segmentio/kafka-go"

	"go-mes/internal/messaging/kafka"
)

// buildMessage maps an outbox row onto the wire message. The aggregate
// id keys the message so events for one node stay in partition order,
// and the request_id header lets consumers correlate the event with
// the originating HTTP request.
func buildMessage(event kafka.OutboxEvent) kafkago.Message {
	return kafkago.Message{
		Topic: event.Topic,
		Key:   []byte(event.AggregateID),
		Value: event.Payload,
		Headers: []kafkago.Header{
			{Key: "event_type", Value: []byte(event.EventType)},
			{Key: "aggregate_type", Value: []byte(event.AggregateType)},
			{Key: "request_id", Value: []byte(event.RequestID)},
		},
	}
}

func publishEvent(ctx context.Context, writer *kafkago.Writer, event kafka.OutboxEvent) error {
	return writer.WriteMessages(ctx, buildMessage(event))
}
