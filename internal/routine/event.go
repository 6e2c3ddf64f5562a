package routine

import (
	"fmt"
	"time"
)

// EventType is one of the fixed daily routine milestones:
//   - wake_up
//   - leaving_home
//   - boarding_bus
//   - boarding_subway
//   - arriving_at_work
//   - lunch
//   - leaving_work
//   - boarding_return_bus
//   - boarding_return_subway
//   - arriving_home
//   - dinner
//   - hobby
//   - bedtime
type EventType string

const (
	EventTypeWakeUp               EventType = "wake_up"
	EventTypeLeavingHome          EventType = "leaving_home"
	EventTypeBoardingBus          EventType = "boarding_bus"
	EventTypeBoardingSubway       EventType = "boarding_subway"
	EventTypeArrivingAtWork       EventType = "arriving_at_work"
	EventTypeLunch                EventType = "lunch"
	EventTypeLeavingWork          EventType = "leaving_work"
	EventTypeBoardingReturnBus    EventType = "boarding_return_bus"
	EventTypeBoardingReturnSubway EventType = "boarding_return_subway"
	EventTypeArrivingHome         EventType = "arriving_home"
	EventTypeDinner               EventType = "dinner"
	EventTypeHobby                EventType = "hobby"
	EventTypeBedtime              EventType = "bedtime"
)

// AllEventTypes lists every event type in the order used for all
// per-type listings.
var AllEventTypes = []EventType{
	EventTypeWakeUp,
	EventTypeLeavingHome,
	EventTypeBoardingBus,
	EventTypeBoardingSubway,
	EventTypeArrivingAtWork,
	EventTypeLunch,
	EventTypeLeavingWork,
	EventTypeBoardingReturnBus,
	EventTypeBoardingReturnSubway,
	EventTypeArrivingHome,
	EventTypeDinner,
	EventTypeHobby,
	EventTypeBedtime,
}

// BoardingEventTypes are the events users give "caught it" / "missed it" feedback on.
var BoardingEventTypes = []EventType{
	EventTypeBoardingBus,
	EventTypeBoardingSubway,
	EventTypeBoardingReturnBus,
	EventTypeBoardingReturnSubway,
}

var eventTypeNames = map[EventType]string{
	EventTypeWakeUp:               "Wake up",
	EventTypeLeavingHome:          "Leaving home",
	EventTypeBoardingBus:          "Boarding bus",
	EventTypeBoardingSubway:       "Boarding subway",
	EventTypeArrivingAtWork:       "Arriving at work",
	EventTypeLunch:                "Lunch",
	EventTypeLeavingWork:          "Leaving work",
	EventTypeBoardingReturnBus:    "Boarding return bus",
	EventTypeBoardingReturnSubway: "Boarding return subway",
	EventTypeArrivingHome:         "Arriving home",
	EventTypeDinner:               "Dinner",
	EventTypeHobby:                "Hobby",
	EventTypeBedtime:              "Bedtime",
}

func (et EventType) String() string {
	return string(et)
}

// DisplayName is the human readable name used in reasoning texts.
func (et EventType) DisplayName() string {
	if name, ok := eventTypeNames[et]; ok {
		return name
	}
	return string(et)
}

func (et EventType) IsValid() bool {
	_, ok := eventTypeNames[et]
	return ok
}

func ParseEventType(s string) (EventType, error) {
	et := EventType(s)
	if !et.IsValid() {
		return "", fmt.Errorf("unknown event type: %q", s)
	}
	return et, nil
}

// EventRecord is a single logged routine event. Records are immutable once created.
type EventRecord struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
}

// FeedbackRecord is the user's answer to a reminder ("caught it" / "missed it").
// AdjustmentAppliedMinutes is the shift that was applied to the reminder, negative means earlier.
type FeedbackRecord struct {
	ID                       string     `json:"id"`
	EventType                EventType  `json:"eventType"`
	Timestamp                time.Time  `json:"timestamp"`
	WasSuccessful            bool       `json:"wasSuccessful"`
	TargetEventType          *EventType `json:"targetEventType,omitempty"`
	AdjustmentAppliedMinutes int        `json:"adjustmentAppliedMinutes"`
	Notes                    *string    `json:"notes,omitempty"`
}
