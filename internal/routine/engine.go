package routine

import (
	"sync"
	"time"
)

// Engine computes routine analytics over the event and feedback logs it was given.
// Nothing is cached between queries: every call recomputes from the current
// snapshot, so the engine is safe for concurrent use.
type Engine struct {
	mu       sync.RWMutex
	events   []EventRecord
	feedback []FeedbackRecord

	now func() time.Time
	loc *time.Location
}

type Option func(*Engine)

// WithClock sets the function used to determine "today" and "now".
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithLocation sets the time zone used to split timestamps into calendar days
// and clock values.
func WithLocation(loc *time.Location) Option {
	return func(e *Engine) {
		if loc != nil {
			e.loc = loc
		}
	}
}

func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		now: time.Now,
		loc: time.Local,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// SetEvents replaces the event log the next queries operate on. The slice is copied.
func (e *Engine) SetEvents(events []EventRecord) {
	cp := make([]EventRecord, len(events))
	copy(cp, events)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = cp
}

// SetFeedback replaces the feedback log the next queries operate on. The slice is copied.
func (e *Engine) SetFeedback(feedback []FeedbackRecord) {
	cp := make([]FeedbackRecord, len(feedback))
	copy(cp, feedback)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.feedback = cp
}

func (e *Engine) Location() *time.Location {
	return e.loc
}

// snapshot captures inputs and the current instant once per query, so a single
// query never observes two different "now" values or a half replaced log.
type snapshot struct {
	events   []EventRecord
	feedback []FeedbackRecord
	now      time.Time
	loc      *time.Location
	byDay    map[time.Time][]EventRecord

	span      int64
	spanKnown bool
}

func (e *Engine) snapshot() *snapshot {
	e.mu.RLock()
	events, feedback := e.events, e.feedback
	e.mu.RUnlock()

	return &snapshot{
		events:   events,
		feedback: feedback,
		now:      e.now().In(e.loc),
		loc:      e.loc,
	}
}

func (s *snapshot) day2events() map[time.Time][]EventRecord {
	if s.byDay == nil {
		s.byDay = eventsByDay(s.events, s.loc)
	}
	return s.byDay
}

// window clamps a requested window length to the span of the logs.
func (s *snapshot) window(days int) int {
	if !s.spanKnown {
		s.span = logSpanDays(s.events, s.feedback, s.now, s.loc)
		s.spanKnown = true
	}
	return clampWindow(days, s.span)
}

// trailingDays is the clamped trailing window of the snapshot.
func (s *snapshot) trailingDays(days int) []time.Time {
	return trailingDays(s.now, s.window(days), s.loc)
}

func (e *Engine) DailySummaries(days int) []DailySummary {
	return e.snapshot().dailySummaries(days)
}

func (e *Engine) EventInsight(eventType EventType, days int) *EventInsight {
	return e.snapshot().eventInsight(eventType, days)
}

func (e *Engine) AllEventInsights(days int) []EventInsight {
	return e.snapshot().allEventInsights(days)
}

func (e *Engine) DurationInsight(from, to EventType, days int) *DurationInsight {
	return e.snapshot().durationInsight(from, to, days)
}

func (e *Engine) CommuteInsights(days int) []DurationInsight {
	return e.snapshot().commuteInsights(days)
}

// SleepInsight pairs bedtime with a wake-up logged later on the same calendar
// day. Sleep spanning midnight is not paired, so this rarely yields a result
// for a regular night; see DurationInsight.
func (e *Engine) SleepInsight(days int) *DurationInsight {
	return e.snapshot().durationInsight(EventTypeBedtime, EventTypeWakeUp, days)
}

func (e *Engine) OverallConsistencyScore(days int) float64 {
	return e.snapshot().overallConsistencyScore(days)
}

func (e *Engine) RoutineSuggestions(days int) []RoutineSuggestion {
	return e.snapshot().routineSuggestions(days)
}

func (e *Engine) CheckOutlier(eventType EventType, timestamp time.Time, thresholdMinutes, baselineDays int) OutlierInfo {
	return e.snapshot().checkOutlier(eventType, timestamp, thresholdMinutes, baselineDays)
}

func (e *Engine) FeedbackSummary(eventType EventType, days int) *FeedbackSummary {
	return e.snapshot().feedbackSummary(eventType, days)
}

func (e *Engine) AllFeedbackSummaries(days int) []FeedbackSummary {
	return e.snapshot().allFeedbackSummaries(days)
}

func (e *Engine) AdaptiveAdjustment(eventType EventType, baseTime time.Time, days int) *AdaptiveAdjustment {
	return e.snapshot().adaptiveAdjustment(eventType, baseTime, days)
}

func (e *Engine) RecentAdjustment(eventType EventType) *AdaptiveAdjustment {
	return e.snapshot().recentAdjustment(eventType)
}
