package eventlog

import (
	"context"
	"fmt"
	"time"

	"github.com/2beens/routinestats/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

type RetentionPolicy struct {
	EventRetentionDays    int
	FeedbackRetentionDays int
}

// ApplyRetention removes events and feedback older than their horizons.
// A non-positive horizon keeps the records forever.
func (s *Service) ApplyRetention(ctx context.Context, policy RetentionPolicy) (events, feedback int64, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.eventlog.retention")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	now := s.now()
	if policy.EventRetentionDays > 0 {
		before := now.AddDate(0, 0, -policy.EventRetentionDays)
		events, err = s.repo.DeleteEventsBefore(ctx, before)
		if err != nil {
			return 0, 0, fmt.Errorf("delete events before %s: %w", before.Format(time.DateOnly), err)
		}
	}
	if policy.FeedbackRetentionDays > 0 {
		before := now.AddDate(0, 0, -policy.FeedbackRetentionDays)
		feedback, err = s.repo.DeleteFeedbackBefore(ctx, before)
		if err != nil {
			return events, 0, fmt.Errorf("delete feedback before %s: %w", before.Format(time.DateOnly), err)
		}
	}
	span.SetAttributes(
		attribute.Int64("events", events),
		attribute.Int64("feedback", feedback),
	)

	s.metricsManager.CounterRetentionDeleted.WithLabelValues("event").Add(float64(events))
	s.metricsManager.CounterRetentionDeleted.WithLabelValues("feedback").Add(float64(feedback))
	if events > 0 || feedback > 0 {
		s.changed()
	}

	return events, feedback, nil
}

// RunRetention applies the policy every interval until ctx is done.
func (s *Service) RunRetention(ctx context.Context, interval time.Duration, policy RetentionPolicy) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Debugln("retention cleanup stopped")
			return
		case <-ticker.C:
			events, feedback, err := s.ApplyRetention(ctx, policy)
			if err != nil {
				log.Errorf("retention cleanup: %s", err)
				continue
			}
			log.Debugf("retention cleanup: removed %d events, %d feedback records", events, feedback)
		}
	}
}
