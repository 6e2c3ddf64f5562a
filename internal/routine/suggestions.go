package routine

import (
	"fmt"
	"time"
)

const (
	wakeUpSuggestionMinConsistency  = 0.6
	bedtimeSuggestionMinConsistency = 0.5
	leavingHomeSuggestionMinSamples = 2

	// outliers are only meaningful against a baseline with at least this many days
	outlierMinOccurrences = 3
	halfDayMinutes        = minutesPerDay / 2
)

// routineSuggestions returns the qualifying suggestions in the order
// wake-up, leaving home, bedtime.
func (s *snapshot) routineSuggestions(days int) []RoutineSuggestion {
	suggestions := make([]RoutineSuggestion, 0, 3)

	if wakeUp := s.eventInsight(EventTypeWakeUp, days); wakeUp != nil && wakeUp.Consistency > wakeUpSuggestionMinConsistency {
		suggestions = append(suggestions, RoutineSuggestion{
			EventType:          EventTypeWakeUp,
			SuggestedTimeOfDay: wakeUp.AverageTimeOfDay,
			Confidence:         wakeUp.Consistency,
			Reasoning: fmt.Sprintf(
				"You usually wake up around %s. Keeping this wake-up time helps maintain your routine.",
				wakeUp.AverageTimeOfDay,
			),
		})
	}

	leavingHome := s.eventInsight(EventTypeLeavingHome, days)
	commute := s.durationInsight(EventTypeLeavingHome, EventTypeArrivingAtWork, days)
	if leavingHome != nil && commute != nil && commute.SampleCount >= leavingHomeSuggestionMinSamples {
		commuteMinutes := int(commute.AverageDurationSeconds / 60)
		suggestions = append(suggestions, RoutineSuggestion{
			EventType:          EventTypeLeavingHome,
			SuggestedTimeOfDay: leavingHome.AverageTimeOfDay,
			Confidence:         leavingHome.Consistency,
			Reasoning: fmt.Sprintf(
				"Your commute to work takes about %d minutes on average. Leaving at %s keeps you on schedule.",
				commuteMinutes, leavingHome.AverageTimeOfDay,
			),
		})
	}

	if bedtime := s.eventInsight(EventTypeBedtime, days); bedtime != nil && bedtime.Consistency > bedtimeSuggestionMinConsistency {
		suggestions = append(suggestions, RoutineSuggestion{
			EventType:          EventTypeBedtime,
			SuggestedTimeOfDay: bedtime.AverageTimeOfDay,
			Confidence:         bedtime.Consistency,
			Reasoning: fmt.Sprintf(
				"Going to bed around %s keeps your sleep schedule consistent.",
				bedtime.AverageTimeOfDay,
			),
		})
	}

	return suggestions
}

// overallConsistencyScore is the mean consistency over all event types with data, 0 without data.
func (s *snapshot) overallConsistencyScore(days int) float64 {
	insights := s.allEventInsights(days)
	if len(insights) == 0 {
		return 0
	}
	var sum float64
	for _, insight := range insights {
		sum += insight.Consistency
	}
	return sum / float64(len(insights))
}

// checkOutlier compares the clock value of timestamp with the event's average
// over the baseline window. Deviations wrap around midnight, so 23:50 vs 00:10
// is 20 minutes apart.
func (s *snapshot) checkOutlier(eventType EventType, timestamp time.Time, thresholdMinutes, baselineDays int) OutlierInfo {
	baseline := s.eventInsight(eventType, baselineDays)
	if baseline == nil || baseline.OccurrenceCount < outlierMinOccurrences {
		return OutlierInfo{
			IsOutlier:        false,
			ThresholdMinutes: thresholdMinutes,
		}
	}

	baselineMinutes := baseline.AverageTimeOfDay.Minutes()
	candidateMinutes := minutesSinceMidnight(timestamp.In(s.loc))

	deviation := candidateMinutes - baselineMinutes
	if deviation > halfDayMinutes {
		deviation -= minutesPerDay
	} else if deviation < -halfDayMinutes {
		deviation += minutesPerDay
	}
	if deviation < 0 {
		deviation = -deviation
	}

	average := baseline.AverageTimeOfDay
	return OutlierInfo{
		IsOutlier:                deviation >= thresholdMinutes,
		DeviationMinutes:         deviation,
		BaselineAverageTimeOfDay: &average,
		ThresholdMinutes:         thresholdMinutes,
	}
}
