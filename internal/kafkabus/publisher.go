package kafkabus

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/2beens/routinestats/internal/telemetry/tracing"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel/attribute"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher writes JSON encoded values to a single topic.
type Publisher struct {
	topic  string
	writer messageWriter
}

func NewPublisher(topic string, writer messageWriter) *Publisher {
	return &Publisher{
		topic:  topic,
		writer: writer,
	}
}

func (p *Publisher) Publish(ctx context.Context, key string, value any) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "kafkabus.publish")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()
	span.SetAttributes(
		attribute.String("topic", p.topic),
		attribute.String("key", key),
	)

	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal %s message: %w", p.topic, err)
	}
	if err := p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: payload,
	}); err != nil {
		return fmt.Errorf("write %s message: %w", p.topic, err)
	}
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}
