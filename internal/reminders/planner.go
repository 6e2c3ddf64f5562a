package reminders

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/2beens/routinestats/internal/analytics"
	"github.com/2beens/routinestats/internal/routine"
	"github.com/2beens/routinestats/internal/telemetry/metrics"
	"github.com/2beens/routinestats/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=reminders_test

type analyticsService interface {
	Defaults() analytics.Defaults
	Now() time.Time
	Location() *time.Location
	RoutineSuggestions(ctx context.Context, days int) ([]routine.RoutineSuggestion, error)
	AdaptiveAdjustment(ctx context.Context, eventType routine.EventType, baseTime time.Time, days int) (*routine.AdaptiveAdjustment, error)
	CheckOutlier(ctx context.Context, eventType routine.EventType, timestamp time.Time, thresholdMinutes, baselineDays int) (routine.OutlierInfo, error)
}

type publisher interface {
	Publish(ctx context.Context, key string, value any) error
}

// Reminder is one planned notification. Delivering it is up to whoever
// consumes the plan.
type Reminder struct {
	EventType         routine.EventType `json:"eventType"`
	SuggestedTime     time.Time         `json:"suggestedTime"`
	RemindAt          time.Time         `json:"remindAt"`
	AdjustmentMinutes int               `json:"adjustmentMinutes"`
	Confidence        float64           `json:"confidence"`
	Reasoning         string            `json:"reasoning"`
	AdjustmentReason  string            `json:"adjustmentReason,omitempty"`
}

type Plan struct {
	Day         string     `json:"day"`
	GeneratedAt time.Time  `json:"generatedAt"`
	Reminders   []Reminder `json:"reminders"`
}

type OutlierAlert struct {
	EventID                  string             `json:"eventId"`
	EventType                routine.EventType  `json:"eventType"`
	Timestamp                time.Time          `json:"timestamp"`
	DeviationMinutes         int                `json:"deviationMinutes"`
	ThresholdMinutes         int                `json:"thresholdMinutes"`
	BaselineAverageTimeOfDay *routine.TimeOfDay `json:"baselineAverageTimeOfDay,omitempty"`
}

// Planner turns routine suggestions and feedback adjustments into reminder
// plans, and raises alerts for logged events that are far off their usual time.
type Planner struct {
	service        analyticsService
	plans          publisher
	alerts         publisher
	leadTime       time.Duration
	metricsManager *metrics.Manager
}

// NewPlanner builds a planner, plans and alerts may be nil when nothing
// consumes them.
func NewPlanner(
	service analyticsService,
	plans publisher,
	alerts publisher,
	leadTime time.Duration,
	metricsManager *metrics.Manager,
) *Planner {
	return &Planner{
		service:        service,
		plans:          plans,
		alerts:         alerts,
		leadTime:       leadTime,
		metricsManager: metricsManager,
	}
}

// Plan returns the reminders for day ordered by reminder time. Each reminder is
// the suggested time on day, moved by the feedback adjustment and then by the
// lead time.
func (p *Planner) Plan(ctx context.Context, day time.Time) (_ []Reminder, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "reminders.plan")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	defaults := p.service.Defaults()
	day = day.In(p.service.Location())
	span.SetAttributes(attribute.String("day", day.Format(time.DateOnly)))

	suggestions, err := p.service.RoutineSuggestions(ctx, defaults.Days)
	if err != nil {
		return nil, fmt.Errorf("routine suggestions: %w", err)
	}

	reminders := make([]Reminder, 0, len(suggestions))
	for _, suggestion := range suggestions {
		suggested := suggestion.SuggestedTimeOfDay.On(day)
		reminder := Reminder{
			EventType:     suggestion.EventType,
			SuggestedTime: suggested,
			RemindAt:      suggested,
			Confidence:    suggestion.Confidence,
			Reasoning:     suggestion.Reasoning,
		}

		adjustment, err := p.service.AdaptiveAdjustment(ctx, suggestion.EventType, suggested, defaults.AdjustmentDays)
		if err != nil {
			return nil, fmt.Errorf("adaptive adjustment for %s: %w", suggestion.EventType, err)
		}
		if adjustment != nil {
			reminder.RemindAt = adjustment.AdjustedTime
			reminder.AdjustmentMinutes = adjustment.AdjustmentMinutes
			reminder.AdjustmentReason = adjustment.Reason
		}

		reminder.RemindAt = reminder.RemindAt.Add(-p.leadTime)
		reminders = append(reminders, reminder)
	}

	sort.SliceStable(reminders, func(i, j int) bool {
		return reminders[i].RemindAt.Before(reminders[j].RemindAt)
	})
	span.SetAttributes(attribute.Int("reminders", len(reminders)))
	return reminders, nil
}

// PublishPlan plans day and publishes it keyed by the day, so consumers keep
// only the latest plan per day.
func (p *Planner) PublishPlan(ctx context.Context, day time.Time) error {
	reminders, err := p.Plan(ctx, day)
	if err != nil {
		return err
	}
	if p.plans == nil {
		return nil
	}

	dayKey := day.In(p.service.Location()).Format(time.DateOnly)
	plan := Plan{
		Day:         dayKey,
		GeneratedAt: p.service.Now(),
		Reminders:   reminders,
	}
	if err := p.plans.Publish(ctx, dayKey, plan); err != nil {
		return fmt.Errorf("publish plan for %s: %w", dayKey, err)
	}
	p.metricsManager.CounterRemindersPublished.Add(float64(len(reminders)))
	log.Debugf("published %d reminders for %s", len(reminders), dayKey)
	return nil
}

// Run publishes today's plan right away and then every interval until ctx is done.
// Failures are logged and retried on the next tick.
func (p *Planner) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := p.PublishPlan(ctx, p.service.Now()); err != nil && ctx.Err() == nil {
			log.Errorf("reminder plan: %s", err)
		}
		select {
		case <-ctx.Done():
			log.Debugln("reminder planner stopped")
			return
		case <-ticker.C:
		}
	}
}

// CheckLoggedEvent compares a freshly logged event with its baseline and
// publishes an alert when it is an outlier.
func (p *Planner) CheckLoggedEvent(ctx context.Context, event routine.EventRecord) (_ routine.OutlierInfo, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "reminders.outlier.check")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()
	span.SetAttributes(attribute.String("event-type", event.Type.String()))

	defaults := p.service.Defaults()
	info, err := p.service.CheckOutlier(ctx, event.Type, event.Timestamp, defaults.OutlierThresholdMinutes, defaults.BaselineDays)
	if err != nil {
		return routine.OutlierInfo{}, fmt.Errorf("check outlier: %w", err)
	}
	span.SetAttributes(attribute.Bool("outlier", info.IsOutlier))
	if !info.IsOutlier {
		return info, nil
	}

	p.metricsManager.CounterOutliersDetected.WithLabelValues(event.Type.String()).Inc()
	log.Infof("outlier: %s at %s is %d minutes off", event.Type, event.Timestamp.Format(time.RFC3339), info.DeviationMinutes)
	if p.alerts == nil {
		return info, nil
	}

	alert := OutlierAlert{
		EventID:                  event.ID,
		EventType:                event.Type,
		Timestamp:                event.Timestamp,
		DeviationMinutes:         info.DeviationMinutes,
		ThresholdMinutes:         info.ThresholdMinutes,
		BaselineAverageTimeOfDay: info.BaselineAverageTimeOfDay,
	}
	if err := p.alerts.Publish(ctx, event.ID, alert); err != nil {
		return info, fmt.Errorf("publish outlier alert: %w", err)
	}
	return info, nil
}

// OnEventLogged adapts CheckLoggedEvent to an event log listener.
func (p *Planner) OnEventLogged(ctx context.Context, event routine.EventRecord) {
	if _, err := p.CheckLoggedEvent(ctx, event); err != nil {
		log.Errorf("event %s logged, outlier check: %s", event.ID, err)
	}
}
