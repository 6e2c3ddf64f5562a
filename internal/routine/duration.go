package routine

// EventPair is an ordered (from, to) pair of events.
type EventPair struct {
	From EventType
	To   EventType
}

// CommutePairs are the morning and evening commute legs, in reporting order.
var CommutePairs = []EventPair{
	{From: EventTypeLeavingHome, To: EventTypeBoardingBus},
	{From: EventTypeBoardingBus, To: EventTypeBoardingSubway},
	{From: EventTypeBoardingSubway, To: EventTypeArrivingAtWork},
	{From: EventTypeLeavingHome, To: EventTypeArrivingAtWork},
	{From: EventTypeLeavingWork, To: EventTypeArrivingHome},
}

// durationInsight pairs the first from-event and the first to-event of each day
// in the window. A day counts only if the to-event is strictly later than the
// from-event on that same calendar day.
func (s *snapshot) durationInsight(from, to EventType, days int) *DurationInsight {
	day2events := s.day2events()

	var samples []float64
	for _, day := range s.trailingDays(days) {
		dayEvents := day2events[day]
		fromEv, ok := firstOfType(dayEvents, from)
		if !ok {
			continue
		}
		toEv, ok := firstOfType(dayEvents, to)
		if !ok {
			continue
		}
		if !toEv.Timestamp.After(fromEv.Timestamp) {
			continue
		}
		samples = append(samples, toEv.Timestamp.Sub(fromEv.Timestamp).Seconds())
	}
	if len(samples) == 0 {
		return nil
	}

	var sum float64
	minSec, maxSec := samples[0], samples[0]
	for _, sec := range samples {
		sum += sec
		minSec = min(minSec, sec)
		maxSec = max(maxSec, sec)
	}

	return &DurationInsight{
		FromEvent:              from,
		ToEvent:                to,
		AverageDurationSeconds: sum / float64(len(samples)),
		MinDurationSeconds:     minSec,
		MaxDurationSeconds:     maxSec,
		SampleCount:            len(samples),
	}
}

func (s *snapshot) commuteInsights(days int) []DurationInsight {
	insights := make([]DurationInsight, 0, len(CommutePairs))
	for _, pair := range CommutePairs {
		if insight := s.durationInsight(pair.From, pair.To, days); insight != nil {
			insights = append(insights, *insight)
		}
	}
	return insights
}
