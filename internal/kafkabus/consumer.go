package kafkabus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/2beens/routinestats/internal/eventlog"
	"github.com/2beens/routinestats/internal/routine"
	"github.com/2beens/routinestats/internal/telemetry/metrics"
	"github.com/2beens/routinestats/internal/telemetry/tracing"

	"github.com/go-redis/redis/v8"
	"github.com/segmentio/kafka-go"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

const (
	dedupeKeyPrefix  = "routinestats::ingest::"
	DefaultDedupeTTL = 24 * time.Hour

	minRetryBackoff = 500 * time.Millisecond
	maxRetryBackoff = 30 * time.Second
)

// RecordKind tells the consumer what the messages on its topic carry.
type RecordKind string

const (
	RecordKindEvent    RecordKind = "event"
	RecordKindFeedback RecordKind = "feedback"
)

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type logWriter interface {
	LogEvent(ctx context.Context, event routine.EventRecord, source eventlog.Source) (*routine.EventRecord, error)
	LogFeedback(ctx context.Context, feedback routine.FeedbackRecord, source eventlog.Source) (*routine.FeedbackRecord, error)
}

var errBadPayload = errors.New("bad payload")

// Consumer writes records from a topic through the event log service. Redelivered
// records are recognized by a redis key per record and skipped. Undecodable
// records are counted and committed, storage failures are retried.
type Consumer struct {
	topic          string
	kind           RecordKind
	reader         messageReader
	service        logWriter
	rdb            *redis.Client
	dedupeTTL      time.Duration
	metricsManager *metrics.Manager
}

func NewConsumer(
	topic string,
	kind RecordKind,
	reader messageReader,
	service logWriter,
	rdb *redis.Client,
	metricsManager *metrics.Manager,
) *Consumer {
	return &Consumer{
		topic:          topic,
		kind:           kind,
		reader:         reader,
		service:        service,
		rdb:            rdb,
		dedupeTTL:      DefaultDedupeTTL,
		metricsManager: metricsManager,
	}
}

// Run consumes until ctx is done.
func (c *Consumer) Run(ctx context.Context) error {
	log.Infof("kafka consumer [%s] started", c.topic)
	defer log.Infof("kafka consumer [%s] stopped", c.topic)

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("fetch %s message: %w", c.topic, err)
		}

		if err := c.handleWithRetry(ctx, msg); err != nil {
			// only ctx cancellation gets here, the message is redelivered after restart
			return nil
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			log.Errorf("commit %s message at offset %d: %s", c.topic, msg.Offset, err)
		}
	}
}

func (c *Consumer) handleWithRetry(ctx context.Context, msg kafka.Message) error {
	backoff := minRetryBackoff
	for {
		err := c.handle(ctx, msg)
		if err == nil {
			return nil
		}
		if errors.Is(err, errBadPayload) {
			log.Warnf("skipping %s message at offset %d: %s", c.topic, msg.Offset, err)
			return nil
		}

		c.metricsManager.CounterIngestErrors.WithLabelValues(c.topic, "storage").Inc()
		log.Errorf("ingest %s message at offset %d, retrying in %s: %s", c.topic, msg.Offset, backoff, err)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, maxRetryBackoff)
	}
}

func (c *Consumer) handle(ctx context.Context, msg kafka.Message) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "kafkabus.consume")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()
	span.SetAttributes(
		attribute.String("topic", c.topic),
		attribute.Int("partition", msg.Partition),
		attribute.Int64("offset", msg.Offset),
	)

	switch c.kind {
	case RecordKindEvent:
		var event routine.EventRecord
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			c.metricsManager.CounterIngestErrors.WithLabelValues(c.topic, "decode").Inc()
			return fmt.Errorf("%w: %s", errBadPayload, err)
		}
		return c.ingestOnce(ctx, c.dedupeKey(event.ID, msg), func() error {
			_, err := c.service.LogEvent(ctx, event, eventlog.SourceKafka)
			return err
		})
	case RecordKindFeedback:
		var feedback routine.FeedbackRecord
		if err := json.Unmarshal(msg.Value, &feedback); err != nil {
			c.metricsManager.CounterIngestErrors.WithLabelValues(c.topic, "decode").Inc()
			return fmt.Errorf("%w: %s", errBadPayload, err)
		}
		return c.ingestOnce(ctx, c.dedupeKey(feedback.ID, msg), func() error {
			_, err := c.service.LogFeedback(ctx, feedback, eventlog.SourceKafka)
			return err
		})
	default:
		return fmt.Errorf("%w: unknown record kind %q", errBadPayload, c.kind)
	}
}

// dedupeKey prefers the record id, records without one are keyed by their log position.
func (c *Consumer) dedupeKey(recordID string, msg kafka.Message) string {
	if recordID != "" {
		return fmt.Sprintf("%s%s::%s", dedupeKeyPrefix, c.kind, recordID)
	}
	return fmt.Sprintf("%s%s::%d::%d", dedupeKeyPrefix, msg.Topic, msg.Partition, msg.Offset)
}

func (c *Consumer) ingestOnce(ctx context.Context, key string, write func() error) error {
	fresh, err := c.rdb.SetNX(ctx, key, "1", c.dedupeTTL).Result()
	if err != nil {
		// records with ids are still protected by the primary key
		log.Warnf("ingest dedupe check [%s]: %s", key, err)
		fresh = true
	}
	if !fresh {
		log.Debugf("ingest: %s already processed", key)
		return nil
	}

	err = write()
	switch {
	case err == nil, errors.Is(err, eventlog.ErrDuplicateRecord):
		return nil
	case errors.Is(err, eventlog.ErrInvalidEventType), errors.Is(err, eventlog.ErrRejectedRecord):
		c.metricsManager.CounterIngestErrors.WithLabelValues(c.topic, "invalid").Inc()
		return fmt.Errorf("%w: %s", errBadPayload, err)
	}

	// let the retry claim the key again
	if delErr := c.rdb.Del(ctx, key).Err(); delErr != nil {
		log.Warnf("ingest: release dedupe key %s: %s", key, delErr)
	}
	return err
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}
