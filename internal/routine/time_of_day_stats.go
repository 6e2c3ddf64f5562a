package routine

import (
	"math"
	"sort"
	"time"
)

// consistencySpreadMinutes is the standard deviation at which consistency reaches 0.
const consistencySpreadMinutes = 60.0

func (s *snapshot) eventInsight(eventType EventType, days int) *EventInsight {
	day2events := s.day2events()

	var selected []time.Time
	for _, day := range s.trailingDays(days) {
		ev, ok := firstOfType(day2events[day], eventType)
		if !ok {
			continue
		}
		selected = append(selected, ev.Timestamp)
	}
	if len(selected) == 0 {
		return nil
	}

	minutes := make([]int, 0, len(selected))
	for _, ts := range selected {
		minutes = append(minutes, minutesSinceMidnight(ts.In(s.loc)))
	}

	sort.Slice(selected, func(i, j int) bool {
		return selected[i].Before(selected[j])
	})

	return &EventInsight{
		EventType:        eventType,
		AverageTimeOfDay: TimeOfDayFromMinutes(meanMinutes(minutes)),
		Earliest:         selected[0],
		Latest:           selected[len(selected)-1],
		Consistency:      consistency(minutes),
		OccurrenceCount:  len(selected),
	}
}

func (s *snapshot) allEventInsights(days int) []EventInsight {
	insights := make([]EventInsight, 0, len(AllEventTypes))
	for _, et := range AllEventTypes {
		if insight := s.eventInsight(et, days); insight != nil {
			insights = append(insights, *insight)
		}
	}
	return insights
}

// dailySummaries lists the days in the window that have at least one event,
// most recent first.
func (s *snapshot) dailySummaries(days int) []DailySummary {
	day2events := s.day2events()

	summaries := make([]DailySummary, 0)
	for _, day := range s.trailingDays(days) {
		dayEvents := day2events[day]
		if len(dayEvents) == 0 {
			continue
		}

		loggedTypes := make(map[EventType]bool)
		for _, ev := range dayEvents {
			loggedTypes[ev.Type] = true
		}

		events := make([]EventRecord, len(dayEvents))
		copy(events, dayEvents)
		summaries = append(summaries, DailySummary{
			Date:           day,
			Events:         events,
			CompletionRate: float64(len(loggedTypes)) / float64(len(AllEventTypes)),
		})
	}
	return summaries
}

// meanMinutes is the truncated integer mean, minutes must not be empty.
func meanMinutes(minutes []int) int {
	sum := 0
	for _, m := range minutes {
		sum += m
	}
	return sum / len(minutes)
}

func populationStdDev(values []int) float64 {
	if len(values) == 0 {
		return 0
	}
	var mean float64
	for _, v := range values {
		mean += float64(v)
	}
	mean /= float64(len(values))

	var variance float64
	for _, v := range values {
		d := float64(v) - mean
		variance += d * d
	}
	variance /= float64(len(values))
	return math.Sqrt(variance)
}

func consistency(minutes []int) float64 {
	return math.Max(0, 1-populationStdDev(minutes)/consistencySpreadMinutes)
}
