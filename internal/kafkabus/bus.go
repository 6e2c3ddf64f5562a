package kafkabus

import (
	"time"

	"github.com/segmentio/kafka-go"
)

// Bus builds readers and writers against one set of brokers.
type Bus struct {
	brokers []string
	groupID string
}

func NewBus(brokers []string, groupID string) *Bus {
	return &Bus{
		brokers: brokers,
		groupID: groupID,
	}
}

// Reader returns a consumer group reader, offsets are committed explicitly.
func (b *Bus) Reader(topic string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:     b.brokers,
		GroupID:     b.groupID,
		Topic:       topic,
		StartOffset: kafka.FirstOffset,
		MinBytes:    1,
		MaxBytes:    10e6,
		MaxWait:     500 * time.Millisecond,
	})
}

func (b *Bus) Writer(topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(b.brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
	}
}
