package analytics

import (
	"context"
	"time"

	"github.com/2beens/routinestats/internal/routine"
	"github.com/2beens/routinestats/internal/telemetry/tracing"

	"go.opentelemetry.io/otel/attribute"
)

type snapshotLoader interface {
	Load(ctx context.Context) (*Snapshot, error)
}

// Defaults are the query parameters used when a caller does not provide them.
type Defaults struct {
	Days                    int
	BaselineDays            int
	OutlierThresholdMinutes int
	FeedbackDays            int
	AdjustmentDays          int
}

// Dashboard is everything the home screen shows, computed from one snapshot.
type Dashboard struct {
	GeneratedAt       time.Time                    `json:"generatedAt"`
	ConsistencyScore  float64                      `json:"consistencyScore"`
	Suggestions       []routine.RoutineSuggestion  `json:"suggestions"`
	RecentAdjustments []routine.AdaptiveAdjustment `json:"recentAdjustments"`
	FeedbackSummaries []routine.FeedbackSummary    `json:"feedbackSummaries"`
}

// Service answers analytics queries. Each query builds a fresh engine over the
// current snapshot, nothing computed is kept between queries.
type Service struct {
	loader   snapshotLoader
	defaults Defaults
	loc      *time.Location
	now      func() time.Time
}

type ServiceOption func(*Service)

func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		s.now = now
	}
}

func NewService(loader snapshotLoader, defaults Defaults, loc *time.Location, opts ...ServiceOption) *Service {
	if loc == nil {
		loc = time.Local
	}
	s := &Service{
		loader:   loader,
		defaults: defaults,
		loc:      loc,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Defaults() Defaults {
	return s.defaults
}

func (s *Service) Now() time.Time {
	return s.now().In(s.loc)
}

func (s *Service) Location() *time.Location {
	return s.loc
}

func (s *Service) engine(ctx context.Context) (*routine.Engine, error) {
	snapshot, err := s.loader.Load(ctx)
	if err != nil {
		return nil, err
	}
	engine := routine.NewEngine(routine.WithClock(s.now), routine.WithLocation(s.loc))
	engine.SetEvents(snapshot.Events)
	engine.SetFeedback(snapshot.Feedback)
	return engine, nil
}

func query[T any](
	ctx context.Context,
	s *Service,
	spanName string,
	ask func(engine *routine.Engine) T,
	attrs ...attribute.KeyValue,
) (_ T, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, spanName)
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()
	span.SetAttributes(attrs...)

	engine, err := s.engine(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	return ask(engine), nil
}

func (s *Service) DailySummaries(ctx context.Context, days int) ([]routine.DailySummary, error) {
	return query(ctx, s, "analytics.summaries", func(e *routine.Engine) []routine.DailySummary {
		return e.DailySummaries(days)
	}, attribute.Int("days", days))
}

func (s *Service) EventInsight(ctx context.Context, eventType routine.EventType, days int) (*routine.EventInsight, error) {
	return query(ctx, s, "analytics.insights.event", func(e *routine.Engine) *routine.EventInsight {
		return e.EventInsight(eventType, days)
	}, attribute.String("event-type", eventType.String()), attribute.Int("days", days))
}

func (s *Service) AllEventInsights(ctx context.Context, days int) ([]routine.EventInsight, error) {
	return query(ctx, s, "analytics.insights.all", func(e *routine.Engine) []routine.EventInsight {
		return e.AllEventInsights(days)
	}, attribute.Int("days", days))
}

func (s *Service) DurationInsight(ctx context.Context, from, to routine.EventType, days int) (*routine.DurationInsight, error) {
	return query(ctx, s, "analytics.durations.pair", func(e *routine.Engine) *routine.DurationInsight {
		return e.DurationInsight(from, to, days)
	}, attribute.String("from", from.String()), attribute.String("to", to.String()), attribute.Int("days", days))
}

func (s *Service) CommuteInsights(ctx context.Context, days int) ([]routine.DurationInsight, error) {
	return query(ctx, s, "analytics.durations.commute", func(e *routine.Engine) []routine.DurationInsight {
		return e.CommuteInsights(days)
	}, attribute.Int("days", days))
}

func (s *Service) SleepInsight(ctx context.Context, days int) (*routine.DurationInsight, error) {
	return query(ctx, s, "analytics.durations.sleep", func(e *routine.Engine) *routine.DurationInsight {
		return e.SleepInsight(days)
	}, attribute.Int("days", days))
}

func (s *Service) ConsistencyScore(ctx context.Context, days int) (float64, error) {
	return query(ctx, s, "analytics.consistency", func(e *routine.Engine) float64 {
		return e.OverallConsistencyScore(days)
	}, attribute.Int("days", days))
}

func (s *Service) RoutineSuggestions(ctx context.Context, days int) ([]routine.RoutineSuggestion, error) {
	return query(ctx, s, "analytics.suggestions", func(e *routine.Engine) []routine.RoutineSuggestion {
		return e.RoutineSuggestions(days)
	}, attribute.Int("days", days))
}

func (s *Service) CheckOutlier(
	ctx context.Context,
	eventType routine.EventType,
	timestamp time.Time,
	thresholdMinutes, baselineDays int,
) (routine.OutlierInfo, error) {
	return query(ctx, s, "analytics.outlier", func(e *routine.Engine) routine.OutlierInfo {
		return e.CheckOutlier(eventType, timestamp, thresholdMinutes, baselineDays)
	},
		attribute.String("event-type", eventType.String()),
		attribute.Int("threshold", thresholdMinutes),
		attribute.Int("baseline-days", baselineDays),
	)
}

func (s *Service) FeedbackSummary(ctx context.Context, eventType routine.EventType, days int) (*routine.FeedbackSummary, error) {
	return query(ctx, s, "analytics.feedback.event", func(e *routine.Engine) *routine.FeedbackSummary {
		return e.FeedbackSummary(eventType, days)
	}, attribute.String("event-type", eventType.String()), attribute.Int("days", days))
}

func (s *Service) AllFeedbackSummaries(ctx context.Context, days int) ([]routine.FeedbackSummary, error) {
	return query(ctx, s, "analytics.feedback.all", func(e *routine.Engine) []routine.FeedbackSummary {
		return e.AllFeedbackSummaries(days)
	}, attribute.Int("days", days))
}

func (s *Service) AdaptiveAdjustment(
	ctx context.Context,
	eventType routine.EventType,
	baseTime time.Time,
	days int,
) (*routine.AdaptiveAdjustment, error) {
	return query(ctx, s, "analytics.adjustment.adaptive", func(e *routine.Engine) *routine.AdaptiveAdjustment {
		return e.AdaptiveAdjustment(eventType, baseTime, days)
	}, attribute.String("event-type", eventType.String()), attribute.Int("days", days))
}

func (s *Service) RecentAdjustment(ctx context.Context, eventType routine.EventType) (*routine.AdaptiveAdjustment, error) {
	return query(ctx, s, "analytics.adjustment.recent", func(e *routine.Engine) *routine.AdaptiveAdjustment {
		return e.RecentAdjustment(eventType)
	}, attribute.String("event-type", eventType.String()))
}

// Dashboard combines consistency, suggestions and the recent adjustments of
// the boarding events.
func (s *Service) Dashboard(ctx context.Context, days int) (*Dashboard, error) {
	return query(ctx, s, "analytics.dashboard", func(e *routine.Engine) *Dashboard {
		dashboard := &Dashboard{
			GeneratedAt:       s.Now(),
			ConsistencyScore:  e.OverallConsistencyScore(days),
			Suggestions:       e.RoutineSuggestions(days),
			RecentAdjustments: []routine.AdaptiveAdjustment{},
			FeedbackSummaries: e.AllFeedbackSummaries(s.defaults.FeedbackDays),
		}
		for _, et := range routine.BoardingEventTypes {
			if adj := e.RecentAdjustment(et); adj != nil {
				dashboard.RecentAdjustments = append(dashboard.RecentAdjustments, *adj)
			}
		}
		return dashboard
	}, attribute.Int("days", days))
}
