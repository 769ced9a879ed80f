// Package publisher drains the order outbox to Kafka.
package publisher

import (
	"context"
	"time"

	"github.com/fjod/food_cart/internal/orders"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const DefaultBatchSize = 100

type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

func NewKafkaWriter(topic string, brokers ...string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
}

type OutboxPoller struct {
	eventTick time.Duration
	batchSize int
	outbox    orders.Outbox
	writer    MessageWriter
	log       *zap.Logger
}

func NewOutboxPoller(outbox orders.Outbox, writer MessageWriter, log *zap.Logger) *OutboxPoller {
	return &OutboxPoller{
		eventTick: time.Second,
		batchSize: DefaultBatchSize,
		outbox:    outbox,
		writer:    writer,
		log:       log,
	}
}

// Run publishes pending events every tick until ctx is done.
func (p *OutboxPoller) Run(ctx context.Context) {
	eventTicker := time.NewTicker(p.eventTick)
	defer eventTicker.Stop()
	for {
		select {
		case <-eventTicker.C:
			p.PublishPending(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// PublishPending sends one batch of unpublished events and returns how many
// made it. An event that fails stays pending and is retried on the next call.
func (p *OutboxPoller) PublishPending(ctx context.Context) int {
	events, err := p.outbox.GetUnpublishedEvents(ctx, p.batchSize)
	if err != nil {
		p.log.Error("failed to fetch outbox events", zap.Error(err))
		return 0
	}

	published := 0
	for _, event := range events {
		if err := p.publish(ctx, event); err != nil {
			p.log.Warn("failed to publish event",
				zap.Int64("event_id", event.ID),
				zap.String("order_id", event.AggregateID),
				zap.Error(err))
			continue
		}

		if err := p.outbox.MarkEventPublished(ctx, event.ID); err != nil {
			p.log.Error("failed to mark event as published", zap.Int64("event_id", event.ID), zap.Error(err))
			continue
		}
		published++
	}
	return published
}

func (p *OutboxPoller) publish(ctx context.Context, event *orders.OutboxEvent) error {
	msg := kafka.Message{
		Key:   []byte(event.AggregateID), // order id keeps one order on one partition
		Value: event.Payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.EventType)},
		},
	}

	return p.writer.WriteMessages(ctx, msg)
}
