package eventlog

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/2beens/routinestats/internal/routine"
	"github.com/2beens/routinestats/internal/telemetry/metrics"
	"github.com/2beens/routinestats/internal/telemetry/tracing"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

//go:generate mockgen -source=$GOFILE -destination=repo_mocks_test.go -package=eventlog_test

type repo interface {
	AddEvent(ctx context.Context, event routine.EventRecord) error
	ListEvents(ctx context.Context, filter Filter) ([]routine.EventRecord, error)
	DeleteEvent(ctx context.Context, id string) error
	ClearEvents(ctx context.Context) (int64, error)
	DeleteEventsBefore(ctx context.Context, before time.Time) (int64, error)
	AddFeedback(ctx context.Context, feedback routine.FeedbackRecord) error
	ListFeedback(ctx context.Context, filter Filter) ([]routine.FeedbackRecord, error)
	DeleteFeedbackBefore(ctx context.Context, before time.Time) (int64, error)
}

// Source tells where a record entered the system, used as a metrics label.
type Source string

const (
	SourceHTTP  Source = "http"
	SourceKafka Source = "kafka"
)

// EventListener is notified after an event was stored.
type EventListener func(ctx context.Context, event routine.EventRecord)

type Service struct {
	repo           repo
	metricsManager *metrics.Manager
	now            func() time.Time

	mu             sync.RWMutex
	changeHooks    []func()
	eventListeners []EventListener
}

type ServiceOption func(*Service)

func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		s.now = now
	}
}

func NewService(repo repo, metricsManager *metrics.Manager, opts ...ServiceOption) *Service {
	s := &Service{
		repo:           repo,
		metricsManager: metricsManager,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// OnChange registers fn to be called after every write that alters the logs.
func (s *Service) OnChange(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.changeHooks = append(s.changeHooks, fn)
}

func (s *Service) OnEventLogged(listener EventListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.eventListeners = append(s.eventListeners, listener)
}

func (s *Service) changed() {
	s.mu.RLock()
	hooks := make([]func(), len(s.changeHooks))
	copy(hooks, s.changeHooks)
	s.mu.RUnlock()

	for _, fn := range hooks {
		fn()
	}
}

func (s *Service) notifyEventLogged(ctx context.Context, event routine.EventRecord) {
	s.mu.RLock()
	listeners := make([]EventListener, len(s.eventListeners))
	copy(listeners, s.eventListeners)
	s.mu.RUnlock()

	for _, l := range listeners {
		l(ctx, event)
	}
}

// LogEvent validates and stores a new event. A missing id is generated and a
// zero timestamp is replaced with the current time.
func (s *Service) LogEvent(ctx context.Context, event routine.EventRecord, source Source) (_ *routine.EventRecord, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.eventlog.events.add")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	if !event.Type.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidEventType, event.Type)
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.now()
	}
	span.SetAttributes(
		attribute.String("type", event.Type.String()),
		attribute.String("source", string(source)),
	)

	if err := s.repo.AddEvent(ctx, event); err != nil {
		return nil, fmt.Errorf("add event: %w", err)
	}

	s.metricsManager.CounterEventsLogged.WithLabelValues(event.Type.String(), string(source)).Inc()
	log.Debugf("event logged: %s [%s] at %s", event.ID, event.Type, event.Timestamp.Format(time.RFC3339))

	s.changed()
	s.notifyEventLogged(ctx, event)

	return &event, nil
}

func (s *Service) LogFeedback(ctx context.Context, feedback routine.FeedbackRecord, source Source) (_ *routine.FeedbackRecord, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.eventlog.feedback.add")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	if !feedback.EventType.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidEventType, feedback.EventType)
	}
	if feedback.TargetEventType != nil && !feedback.TargetEventType.IsValid() {
		return nil, fmt.Errorf("%w: target %q", ErrInvalidEventType, *feedback.TargetEventType)
	}
	if feedback.ID == "" {
		feedback.ID = uuid.NewString()
	}
	if feedback.Timestamp.IsZero() {
		feedback.Timestamp = s.now()
	}
	span.SetAttributes(
		attribute.String("type", feedback.EventType.String()),
		attribute.Bool("successful", feedback.WasSuccessful),
	)

	if err := s.repo.AddFeedback(ctx, feedback); err != nil {
		return nil, fmt.Errorf("add feedback: %w", err)
	}

	s.metricsManager.CounterFeedbackLogged.WithLabelValues(
		feedback.EventType.String(),
		strconv.FormatBool(feedback.WasSuccessful),
	).Inc()
	log.Debugf("feedback logged: %s [%s] successful: %t (source: %s)", feedback.ID, feedback.EventType, feedback.WasSuccessful, source)

	s.changed()

	return &feedback, nil
}

func (s *Service) ListEvents(ctx context.Context, filter Filter) (_ []routine.EventRecord, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.eventlog.events.list")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	events, err := s.repo.ListEvents(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

func (s *Service) ListFeedback(ctx context.Context, filter Filter) (_ []routine.FeedbackRecord, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.eventlog.feedback.list")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	feedback, err := s.repo.ListFeedback(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list feedback: %w", err)
	}
	return feedback, nil
}

func (s *Service) DeleteEvent(ctx context.Context, id string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.eventlog.events.delete")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	if err := s.repo.DeleteEvent(ctx, id); err != nil {
		return fmt.Errorf("delete event %s: %w", id, err)
	}
	s.changed()
	return nil
}

func (s *Service) ClearEvents(ctx context.Context) (_ int64, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.eventlog.events.clear")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	deleted, err := s.repo.ClearEvents(ctx)
	if err != nil {
		return 0, fmt.Errorf("clear events: %w", err)
	}
	log.Warnf("event log cleared, %d events removed", deleted)
	s.changed()
	return deleted, nil
}
