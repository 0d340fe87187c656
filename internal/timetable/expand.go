package timetable

import (
	"fmt"
	"strings"
	"time"
)

// DaySlot is the configured time range and room for one weekday of a weekly
// recurring pattern.
type DaySlot struct {
	Start    TimeOfDay
	End      TimeOfDay
	RoomCode string
}

// WeeklyPattern maps a lowercased weekday token (full name or 3-letter
// abbreviation) to its configured time and room.
type WeeklyPattern map[string]DaySlot

// BuildWeeklyPattern aligns the delimited import columns positionally. When
// fewer time/room entries than weekdays are supplied, the first entry is reused
// as the default for the remaining weekdays.
func BuildWeeklyPattern(days, starts, ends, rooms []string) (WeeklyPattern, error) {
	if len(days) == 0 {
		return nil, fmt.Errorf("no weekdays supplied")
	}

	if len(starts) == 0 || len(ends) == 0 || len(rooms) == 0 {
		return nil, fmt.Errorf("start times, end times and rooms must not be empty")
	}

	pattern := make(WeeklyPattern, len(days))

	for i, day := range days {
		token := strings.ToLower(strings.TrimSpace(day))
		if token == "" {
			continue
		}

		start, err := ParseTimeOfDay(pick(starts, i))
		if err != nil {
			return nil, err
		}

		end, err := ParseTimeOfDay(pick(ends, i))
		if err != nil {
			return nil, err
		}

		pattern[token] = DaySlot{
			Start:    start,
			End:      end,
			RoomCode: strings.TrimSpace(pick(rooms, i)),
		}
	}

	if len(pattern) == 0 {
		return nil, fmt.Errorf("no weekdays supplied")
	}

	return pattern, nil
}

// pick returns the aligned entry, falling back to the first one when the list
// is shorter than the weekday list.
func pick(values []string, i int) string {
	if i < len(values) {
		return values[i]
	}

	return values[0]
}

// Lookup finds the configured slot for a date's weekday, trying the full
// weekday name first and its 3-letter abbreviation second.
func (p WeeklyPattern) Lookup(date time.Time) (DaySlot, bool) {
	full := strings.ToLower(date.Weekday().String())

	if slot, ok := p[full]; ok {
		return slot, true
	}

	slot, ok := p[full[:3]]

	return slot, ok
}

// RoomCodes returns the distinct room codes the pattern references.
func (p WeeklyPattern) RoomCodes() []string {
	seen := make(map[string]struct{}, len(p))
	codes := make([]string, 0, len(p))

	for _, slot := range p {
		if _, ok := seen[slot.RoomCode]; ok {
			continue
		}

		seen[slot.RoomCode] = struct{}{}
		codes = append(codes, slot.RoomCode)
	}

	return codes
}

// SessionSeed carries the descriptive fields shared by every session a single
// import row produces.
type SessionSeed struct {
	Subject         string
	ClassCode       string
	LecturerName    string
	LecturerContact string
}

// Session is one concrete dated teaching session produced by expansion.
type Session struct {
	SessionSeed
	Date     time.Time
	Slot     int
	Start    TimeOfDay
	End      TimeOfDay
	RoomID   string
	RoomCode string
}

// RoomResolver resolves room codes to room identifiers in one batch. Codes that
// do not resolve must be absent from the returned map; they become an empty
// room reference on the session rather than a failure.
type RoomResolver func(codes []string) (map[string]string, error)

// ExpandWeekly walks every date in [startDate, endDate] inclusive and emits one
// session for each date whose weekday appears in the pattern. Room codes are
// resolved once up front. The slot index is derived from the configured start
// time via the continuous slot function.
func ExpandWeekly(seed SessionSeed, startDate, endDate time.Time, pattern WeeklyPattern, resolve RoomResolver) ([]Session, error) {
	if endDate.Before(startDate) {
		return nil, fmt.Errorf("end date %s is before start date %s",
			endDate.Format("2006-01-02"), startDate.Format("2006-01-02"))
	}

	roomIDs, err := resolve(pattern.RoomCodes())
	if err != nil {
		return nil, fmt.Errorf("failed to resolve room codes: %w", err)
	}

	var sessions []Session

	for date := startDate; !date.After(endDate); date = date.AddDate(0, 0, 1) {
		slot, ok := pattern.Lookup(date)
		if !ok {
			continue
		}

		sessions = append(sessions, Session{
			SessionSeed: seed,
			Date:        date,
			Slot:        SlotIndexFor(slot.Start),
			Start:       slot.Start,
			End:         slot.End,
			RoomID:      roomIDs[slot.RoomCode],
			RoomCode:    slot.RoomCode,
		})
	}

	return sessions, nil
}

// ExpandDates is the companion entry point for import rows that name explicit
// dates and times instead of a weekly pattern: one session per listed time span
// per listed date, against a single pre-resolved room.
func ExpandDates(seed SessionSeed, dates []time.Time, spans []SlotSpan, roomID, roomCode string) []Session {
	sessions := make([]Session, 0, len(dates)*len(spans))

	for _, date := range dates {
		for _, span := range spans {
			sessions = append(sessions, Session{
				SessionSeed: seed,
				Date:        date,
				Slot:        SlotIndexFor(span.Start),
				Start:       span.Start,
				End:         span.End,
				RoomID:      roomID,
				RoomCode:    roomCode,
			})
		}
	}

	return sessions
}
