package kafkabus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/2beens/routinestats/internal/eventlog"
	"github.com/2beens/routinestats/internal/routine"
	"github.com/2beens/routinestats/internal/telemetry/metrics"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/go-redis/redismock/v8"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeReader struct {
	mu        sync.Mutex
	messages  []kafka.Message
	committed []int64
	drained   chan struct{}
	closed    bool
}

func newFakeReader(messages ...kafka.Message) *fakeReader {
	return &fakeReader{
		messages: messages,
		drained:  make(chan struct{}),
	}
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	r.mu.Lock()
	if len(r.messages) > 0 {
		msg := r.messages[0]
		r.messages = r.messages[1:]
		r.mu.Unlock()
		return msg, nil
	}
	r.mu.Unlock()

	select {
	case <-r.drained:
	default:
		close(r.drained)
	}
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, msg := range msgs {
		r.committed = append(r.committed, msg.Offset)
	}
	return nil
}

func (r *fakeReader) Close() error {
	r.closed = true
	return nil
}

type fakeLogWriter struct {
	mu         sync.Mutex
	events     []routine.EventRecord
	feedback   []routine.FeedbackRecord
	sources    []eventlog.Source
	failFirstN int
	err        error
}

func (w *fakeLogWriter) LogEvent(_ context.Context, event routine.EventRecord, source eventlog.Source) (*routine.EventRecord, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.failFirstN > 0 {
		w.failFirstN--
		return nil, errors.New("db unavailable")
	}
	if w.err != nil {
		return nil, w.err
	}
	w.events = append(w.events, event)
	w.sources = append(w.sources, source)
	return &event, nil
}

func (w *fakeLogWriter) LogFeedback(_ context.Context, feedback routine.FeedbackRecord, source eventlog.Source) (*routine.FeedbackRecord, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.feedback = append(w.feedback, feedback)
	w.sources = append(w.sources, source)
	return &feedback, nil
}

func message(t *testing.T, offset int64, value any) kafka.Message {
	t.Helper()
	raw, err := json.Marshal(value)
	require.NoError(t, err)
	return kafka.Message{Topic: "routine.events", Partition: 0, Offset: offset, Value: raw}
}

// runUntilDrained runs the consumer until the reader has no messages left.
func runUntilDrained(t *testing.T, consumer *Consumer, reader *fakeReader) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error)
	go func() {
		done <- consumer.Run(ctx)
	}()

	select {
	case <-reader.drained:
	case <-time.After(5 * time.Second):
		t.Fatal("consumer did not drain the reader")
	}
	cancel()
	require.NoError(t, <-done)
}

func TestConsumer_Events(t *testing.T) {
	first := routine.EventRecord{ID: gofakeit.UUID(), Type: routine.EventTypeWakeUp, Timestamp: time.Now()}
	second := routine.EventRecord{ID: gofakeit.UUID(), Type: routine.EventTypeLunch, Timestamp: time.Now()}
	noID := routine.EventRecord{Type: routine.EventTypeDinner, Timestamp: time.Now()}

	reader := newFakeReader(
		message(t, 1, first),
		kafka.Message{Topic: "routine.events", Offset: 2, Value: []byte("{not json")},
		message(t, 3, first),
		message(t, 4, second),
		message(t, 5, noID),
	)
	writer := &fakeLogWriter{}
	metricsManager := metrics.NewTestManager()
	rdb, redisMock := redismock.NewClientMock()

	redisMock.ExpectSetNX("routinestats::ingest::event::"+first.ID, "1", DefaultDedupeTTL).SetVal(true)
	// redelivery of the first record
	redisMock.ExpectSetNX("routinestats::ingest::event::"+first.ID, "1", DefaultDedupeTTL).SetVal(false)
	redisMock.ExpectSetNX("routinestats::ingest::event::"+second.ID, "1", DefaultDedupeTTL).SetVal(true)
	redisMock.ExpectSetNX("routinestats::ingest::routine.events::0::5", "1", DefaultDedupeTTL).SetVal(true)

	consumer := NewConsumer("routine.events", RecordKindEvent, reader, writer, rdb, metricsManager)
	runUntilDrained(t, consumer, reader)

	require.Len(t, writer.events, 3)
	assert.Equal(t, first.ID, writer.events[0].ID)
	assert.Equal(t, second.ID, writer.events[1].ID)
	assert.Equal(t, routine.EventTypeDinner, writer.events[2].Type)
	for _, source := range writer.sources {
		assert.Equal(t, eventlog.SourceKafka, source)
	}
	assert.Equal(t, []int64{1, 2, 3, 4, 5}, reader.committed)
	assert.Equal(t, float64(1), testutil.ToFloat64(metricsManager.CounterIngestErrors.WithLabelValues("routine.events", "decode")))
	assert.NoError(t, redisMock.ExpectationsWereMet())
}

func TestConsumer_InvalidEventTypeIsSkipped(t *testing.T) {
	event := routine.EventRecord{ID: gofakeit.UUID(), Type: "training", Timestamp: time.Now()}
	reader := newFakeReader(message(t, 7, event))
	writer := &fakeLogWriter{err: eventlog.ErrInvalidEventType}
	metricsManager := metrics.NewTestManager()
	rdb, redisMock := redismock.NewClientMock()
	redisMock.ExpectSetNX("routinestats::ingest::event::"+event.ID, "1", DefaultDedupeTTL).SetVal(true)

	consumer := NewConsumer("routine.events", RecordKindEvent, reader, writer, rdb, metricsManager)
	runUntilDrained(t, consumer, reader)

	assert.Empty(t, writer.events)
	assert.Equal(t, []int64{7}, reader.committed)
	assert.Equal(t, float64(1), testutil.ToFloat64(metricsManager.CounterIngestErrors.WithLabelValues("routine.events", "invalid")))
	assert.NoError(t, redisMock.ExpectationsWereMet())
}

func TestConsumer_RejectedRecordIsSkipped(t *testing.T) {
	event := routine.EventRecord{ID: gofakeit.UUID(), Type: routine.EventTypeLunch, Timestamp: time.Now()}
	reader := newFakeReader(message(t, 8, event))
	writer := &fakeLogWriter{err: fmt.Errorf("add event: %w", eventlog.ErrRejectedRecord)}
	metricsManager := metrics.NewTestManager()
	rdb, redisMock := redismock.NewClientMock()
	redisMock.ExpectSetNX("routinestats::ingest::event::"+event.ID, "1", DefaultDedupeTTL).SetVal(true)

	consumer := NewConsumer("routine.events", RecordKindEvent, reader, writer, rdb, metricsManager)
	runUntilDrained(t, consumer, reader)

	// the partition moves on past the bad record
	assert.Equal(t, []int64{8}, reader.committed)
	assert.Equal(t, float64(1), testutil.ToFloat64(metricsManager.CounterIngestErrors.WithLabelValues("routine.events", "invalid")))
	assert.Zero(t, testutil.ToFloat64(metricsManager.CounterIngestErrors.WithLabelValues("routine.events", "storage")))
	assert.NoError(t, redisMock.ExpectationsWereMet())
}

func TestConsumer_StorageFailureIsRetried(t *testing.T) {
	event := routine.EventRecord{ID: gofakeit.UUID(), Type: routine.EventTypeBedtime, Timestamp: time.Now()}
	key := "routinestats::ingest::event::" + event.ID
	reader := newFakeReader(message(t, 9, event))
	writer := &fakeLogWriter{failFirstN: 1}
	metricsManager := metrics.NewTestManager()
	rdb, redisMock := redismock.NewClientMock()
	redisMock.ExpectSetNX(key, "1", DefaultDedupeTTL).SetVal(true)
	redisMock.ExpectDel(key).SetVal(1)
	redisMock.ExpectSetNX(key, "1", DefaultDedupeTTL).SetVal(true)

	consumer := NewConsumer("routine.events", RecordKindEvent, reader, writer, rdb, metricsManager)
	runUntilDrained(t, consumer, reader)

	require.Len(t, writer.events, 1)
	assert.Equal(t, []int64{9}, reader.committed)
	assert.Equal(t, float64(1), testutil.ToFloat64(metricsManager.CounterIngestErrors.WithLabelValues("routine.events", "storage")))
	assert.NoError(t, redisMock.ExpectationsWereMet())
}

func TestConsumer_Feedback(t *testing.T) {
	fb := routine.FeedbackRecord{
		ID:            gofakeit.UUID(),
		EventType:     routine.EventTypeBoardingBus,
		Timestamp:     time.Now(),
		WasSuccessful: true,
	}
	reader := newFakeReader(message(t, 3, fb))
	writer := &fakeLogWriter{}
	rdb, redisMock := redismock.NewClientMock()
	redisMock.ExpectSetNX("routinestats::ingest::feedback::"+fb.ID, "1", DefaultDedupeTTL).SetVal(true)

	consumer := NewConsumer("routine.feedback", RecordKindFeedback, reader, writer, rdb, metrics.NewTestManager())
	runUntilDrained(t, consumer, reader)

	require.Len(t, writer.feedback, 1)
	assert.Equal(t, fb.ID, writer.feedback[0].ID)
	assert.True(t, writer.feedback[0].WasSuccessful)
	assert.NoError(t, redisMock.ExpectationsWereMet())

	require.NoError(t, consumer.Close())
	assert.True(t, reader.closed)
}
