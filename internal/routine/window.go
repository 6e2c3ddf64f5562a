package routine

import (
	"sort"
	"time"
)

// startOfDay returns local midnight of t's calendar day in loc.
func startOfDay(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}

const secondsPerDay = 24 * 60 * 60

// dayNumber counts calendar days since the Unix epoch for t's day in loc.
func dayNumber(t time.Time, loc *time.Location) int64 {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC).Unix() / secondsPerDay
}

// logSpanDays is the number of calendar days from the oldest logged record up
// to and including today, 0 for empty logs. Records dated after today count as today.
func logSpanDays(events []EventRecord, feedback []FeedbackRecord, now time.Time, loc *time.Location) int64 {
	var oldest time.Time
	found := false
	for _, ev := range events {
		if !found || ev.Timestamp.Before(oldest) {
			oldest, found = ev.Timestamp, true
		}
	}
	for _, fb := range feedback {
		if !found || fb.Timestamp.Before(oldest) {
			oldest, found = fb.Timestamp, true
		}
	}
	if !found {
		return 0
	}
	return max(dayNumber(now, loc)-dayNumber(oldest, loc)+1, 1)
}

// clampWindow caps days at span. Days older than the oldest record add
// nothing to any result, and the cap keeps date arithmetic in range.
func clampWindow(days int, span int64) int {
	if days <= 0 || span <= 0 {
		return 0
	}
	if int64(days) > span {
		return int(span)
	}
	return days
}

// trailingDays returns the starts of the last days calendar days ending with
// the day of now, most recent first. days <= 0 yields an empty window. Callers
// clamp days with clampWindow first.
func trailingDays(now time.Time, days int, loc *time.Location) []time.Time {
	if days <= 0 {
		return nil
	}
	today := startOfDay(now, loc)
	var window []time.Time
	for offset := 0; offset < days; offset++ {
		window = append(window, today.AddDate(0, 0, -offset))
	}
	return window
}

// windowStart is the first instant that belongs to the trailing window.
func windowStart(now time.Time, days int, loc *time.Location) time.Time {
	return startOfDay(now, loc).AddDate(0, 0, -(days - 1))
}

// eventsByDay groups the events by local calendar day, each day sorted chronologically.
func eventsByDay(events []EventRecord, loc *time.Location) map[time.Time][]EventRecord {
	day2events := make(map[time.Time][]EventRecord)
	for _, ev := range events {
		day := startOfDay(ev.Timestamp, loc)
		day2events[day] = append(day2events[day], ev)
	}
	for day := range day2events {
		dayEvents := day2events[day]
		sort.SliceStable(dayEvents, func(i, j int) bool {
			return dayEvents[i].Timestamp.Before(dayEvents[j].Timestamp)
		})
	}
	return day2events
}

// firstOfType returns the chronologically first event of eventType from a
// day's events, which must already be sorted.
func firstOfType(dayEvents []EventRecord, eventType EventType) (EventRecord, bool) {
	for _, ev := range dayEvents {
		if ev.Type == eventType {
			return ev, true
		}
	}
	return EventRecord{}, false
}

// feedbackInWindow filters feedback for eventType logged within the trailing window.
func feedbackInWindow(
	feedback []FeedbackRecord,
	eventType EventType,
	now time.Time,
	days int,
	loc *time.Location,
) []FeedbackRecord {
	if days <= 0 {
		return nil
	}
	from := windowStart(now, days, loc)
	to := startOfDay(now, loc).AddDate(0, 0, 1)

	var filtered []FeedbackRecord
	for _, fb := range feedback {
		if fb.EventType != eventType {
			continue
		}
		if fb.Timestamp.Before(from) || !fb.Timestamp.Before(to) {
			continue
		}
		filtered = append(filtered, fb)
	}
	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].Timestamp.Before(filtered[j].Timestamp)
	})
	return filtered
}
