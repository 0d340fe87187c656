package timetable

import (
	"fmt"
	"strings"
	"time"
)

// Range is a half-open time interval [Start, End).
type Range struct {
	Start time.Time
	End   time.Time
}

func NewRange(start, end time.Time) Range {
	return Range{Start: start, End: end}
}

// Overlaps reports whether two half-open ranges intersect. Touching boundaries
// (r.End == other.Start) do not count as an overlap. Callers only ever compare
// ranges belonging to the same room.
func (r Range) Overlaps(other Range) bool {
	return r.Start.Before(other.End) && other.Start.Before(r.End)
}

// Contains reports whether the instant t falls inside the range.
func (r Range) Contains(t time.Time) bool {
	return !t.Before(r.Start) && t.Before(r.End)
}

// TimeOfDay is a wall-clock time without a date.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// MinuteOfDay returns the minute offset from midnight.
func (t TimeOfDay) MinuteOfDay() int {
	return t.Hour*60 + t.Minute
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// IsZero reports whether the value is the zero time of day (midnight).
func (t TimeOfDay) IsZero() bool {
	return t.Hour == 0 && t.Minute == 0
}

// Before reports whether t is earlier in the day than other.
func (t TimeOfDay) Before(other TimeOfDay) bool {
	return t.MinuteOfDay() < other.MinuteOfDay()
}

// At anchors the time of day onto the given calendar date.
func (t TimeOfDay) At(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), t.Hour, t.Minute, 0, 0, date.Location())
}

// ParseTimeOfDay parses a "15:04" formatted string.
func ParseTimeOfDay(value string) (TimeOfDay, error) {
	parsed, err := time.Parse("15:04", strings.TrimSpace(value))
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("invalid time of day %q: %w", value, err)
	}

	return TimeOfDay{Hour: parsed.Hour(), Minute: parsed.Minute()}, nil
}
