package routine

import "time"

// EventInsight holds time-of-day statistics of one event type over a day window.
type EventInsight struct {
	EventType        EventType `json:"eventType"`
	AverageTimeOfDay TimeOfDay `json:"averageTimeOfDay"`
	Earliest         time.Time `json:"earliestTimestamp"`
	Latest           time.Time `json:"latestTimestamp"`
	// Consistency is 1 - stddev/60min of the time-of-day samples, floored at 0.
	Consistency     float64 `json:"consistency"`
	OccurrenceCount int     `json:"occurrenceCount"`
}

// DurationInsight holds elapsed time statistics between two events logged on the same day.
type DurationInsight struct {
	FromEvent              EventType `json:"fromEvent"`
	ToEvent                EventType `json:"toEvent"`
	AverageDurationSeconds float64   `json:"averageDurationSeconds"`
	MinDurationSeconds     float64   `json:"minDurationSeconds"`
	MaxDurationSeconds     float64   `json:"maxDurationSeconds"`
	SampleCount            int       `json:"sampleCount"`
}

func (di DurationInsight) AverageDuration() time.Duration {
	return time.Duration(di.AverageDurationSeconds * float64(time.Second))
}

type DailySummary struct {
	Date   time.Time     `json:"date"`
	Events []EventRecord `json:"events"`
	// CompletionRate is the share of event types logged that day.
	CompletionRate float64 `json:"completionRate"`
}

type RoutineSuggestion struct {
	EventType          EventType `json:"eventType"`
	SuggestedTimeOfDay TimeOfDay `json:"suggestedTimeOfDay"`
	Confidence         float64   `json:"confidence"`
	Reasoning          string    `json:"reasoning"`
}

type OutlierInfo struct {
	IsOutlier        bool `json:"isOutlier"`
	DeviationMinutes int  `json:"deviationMinutes"`
	// BaselineAverageTimeOfDay is nil when there was not enough data for a baseline.
	BaselineAverageTimeOfDay *TimeOfDay `json:"baselineAverageTimeOfDay,omitempty"`
	ThresholdMinutes         int        `json:"thresholdMinutes"`
}

type FeedbackSummary struct {
	EventType                EventType      `json:"eventType"`
	TotalAttempts            int            `json:"totalAttempts"`
	SuccessCount             int            `json:"successCount"`
	FailureCount             int            `json:"failureCount"`
	SuccessRate              float64        `json:"successRate"`
	AverageAdjustmentMinutes float64        `json:"averageAdjustmentMinutes"`
	MostRecentFeedback       FeedbackRecord `json:"mostRecentFeedback"`
}

type AdaptiveAdjustment struct {
	EventType         EventType `json:"eventType"`
	OriginalTime      time.Time `json:"originalTime"`
	AdjustedTime      time.Time `json:"adjustedTime"`
	AdjustmentMinutes int       `json:"adjustmentMinutes"`
	Reason            string    `json:"reason"`
	Confidence        float64   `json:"confidence"`
}
