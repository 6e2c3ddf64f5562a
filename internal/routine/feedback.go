package routine

import (
	"time"
)

const (
	adjustmentMinAttempts       = 3
	adjustmentOptimizeAttempts  = 10
	recentFeedbackMaxAge        = 24 * time.Hour
	recentFailureAdjustment     = -5
	recentFailureConfidence     = 0.7
	recentFailureAdjustmentText = "Adjusted 5 minutes earlier based on yesterday's feedback"
)

// adjustmentPolicy is one step of the success rate ladder, evaluated in order.
type adjustmentPolicy struct {
	applies    func(rate float64, attempts int) bool
	minutes    int
	confidence float64
	reason     string
}

var adjustmentPolicies = []adjustmentPolicy{
	{
		applies:    func(rate float64, _ int) bool { return rate < 0.5 },
		minutes:    -10,
		confidence: 0.8,
		reason:     "Low success rate, reminding 10 minutes earlier",
	},
	{
		applies:    func(rate float64, _ int) bool { return rate < 0.7 },
		minutes:    -5,
		confidence: 0.6,
		reason:     "Fine-tuning after recent misses, reminding 5 minutes earlier",
	},
	{
		applies:    func(rate float64, _ int) bool { return rate < 0.9 },
		minutes:    0,
		confidence: 0.8,
		reason:     "Current schedule is working well",
	},
	{
		applies:    func(_ float64, attempts int) bool { return attempts >= adjustmentOptimizeAttempts },
		minutes:    2,
		confidence: 0.5,
		reason:     "Consistently on time, trying a reminder 2 minutes later",
	},
	{
		applies:    func(float64, int) bool { return true },
		minutes:    0,
		confidence: 0.9,
		reason:     "Excellent success rate, maintaining the current schedule",
	},
}

func (s *snapshot) feedbackSummary(eventType EventType, days int) *FeedbackSummary {
	records := feedbackInWindow(s.feedback, eventType, s.now, s.window(days), s.loc)
	if len(records) == 0 {
		return nil
	}

	summary := &FeedbackSummary{
		EventType:          eventType,
		TotalAttempts:      len(records),
		MostRecentFeedback: records[len(records)-1],
	}
	adjustmentSum := 0
	for _, fb := range records {
		if fb.WasSuccessful {
			summary.SuccessCount++
		} else {
			summary.FailureCount++
		}
		adjustmentSum += fb.AdjustmentAppliedMinutes
	}
	summary.SuccessRate = float64(summary.SuccessCount) / float64(summary.TotalAttempts)
	summary.AverageAdjustmentMinutes = float64(adjustmentSum) / float64(summary.TotalAttempts)

	return summary
}

func (s *snapshot) allFeedbackSummaries(days int) []FeedbackSummary {
	summaries := make([]FeedbackSummary, 0, len(BoardingEventTypes))
	for _, et := range BoardingEventTypes {
		if summary := s.feedbackSummary(et, days); summary != nil {
			summaries = append(summaries, *summary)
		}
	}
	return summaries
}

// adaptiveAdjustment shifts baseTime according to the success rate of the
// feedback in the window. Fewer than 3 attempts yields nil.
func (s *snapshot) adaptiveAdjustment(eventType EventType, baseTime time.Time, days int) *AdaptiveAdjustment {
	summary := s.feedbackSummary(eventType, days)
	if summary == nil || summary.TotalAttempts < adjustmentMinAttempts {
		return nil
	}

	for _, policy := range adjustmentPolicies {
		if !policy.applies(summary.SuccessRate, summary.TotalAttempts) {
			continue
		}
		return &AdaptiveAdjustment{
			EventType:         eventType,
			OriginalTime:      baseTime,
			AdjustedTime:      baseTime.Add(time.Duration(policy.minutes) * time.Minute),
			AdjustmentMinutes: policy.minutes,
			Reason:            policy.reason,
			Confidence:        policy.confidence,
		}
	}
	return nil
}

// recentAdjustment looks only at the latest feedback for the event type. A miss
// within the last 24 hours moves the reminder 5 minutes earlier than now.
func (s *snapshot) recentAdjustment(eventType EventType) *AdaptiveAdjustment {
	var latest *FeedbackRecord
	for i := range s.feedback {
		fb := &s.feedback[i]
		if fb.EventType != eventType {
			continue
		}
		if latest == nil || fb.Timestamp.After(latest.Timestamp) {
			latest = fb
		}
	}
	if latest == nil || s.now.Sub(latest.Timestamp) > recentFeedbackMaxAge {
		return nil
	}
	if latest.WasSuccessful {
		return nil
	}

	return &AdaptiveAdjustment{
		EventType:         eventType,
		OriginalTime:      s.now,
		AdjustedTime:      s.now.Add(recentFailureAdjustment * time.Minute),
		AdjustmentMinutes: recentFailureAdjustment,
		Reason:            recentFailureAdjustmentText,
		Confidence:        recentFailureConfidence,
	}
}
