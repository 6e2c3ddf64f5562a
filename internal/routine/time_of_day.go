package routine

import (
	"encoding/json"
	"fmt"
	"time"
)

const minutesPerDay = 24 * 60

// TimeOfDay is a clock value detached from any calendar date.
type TimeOfDay struct {
	Hour   int
	Minute int
}

func TimeOfDayFromMinutes(minutes int) TimeOfDay {
	minutes = ((minutes % minutesPerDay) + minutesPerDay) % minutesPerDay
	return TimeOfDay{
		Hour:   minutes / 60,
		Minute: minutes % 60,
	}
}

// TimeOfDayOf returns the clock value of t in its own location.
func TimeOfDayOf(t time.Time) TimeOfDay {
	return TimeOfDay{
		Hour:   t.Hour(),
		Minute: t.Minute(),
	}
}

func ParseTimeOfDay(s string) (TimeOfDay, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("parse time of day %q: %w", s, err)
	}
	return TimeOfDayOf(t), nil
}

// Minutes returns minutes since midnight (0-1439).
func (tod TimeOfDay) Minutes() int {
	return tod.Hour*60 + tod.Minute
}

// On places the clock value on the calendar day of date, in date's location.
func (tod TimeOfDay) On(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), tod.Hour, tod.Minute, 0, 0, date.Location())
}

func (tod TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", tod.Hour, tod.Minute)
}

func (tod TimeOfDay) MarshalJSON() ([]byte, error) {
	return json.Marshal(tod.String())
}

func (tod *TimeOfDay) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseTimeOfDay(s)
	if err != nil {
		return err
	}
	*tod = parsed
	return nil
}

func minutesSinceMidnight(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}
