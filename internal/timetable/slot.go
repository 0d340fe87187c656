package timetable

import (
	"fmt"
	"strconv"
	"strings"
)

// SlotSpan is the wall-clock range a slot number maps to.
type SlotSpan struct {
	Start TimeOfDay
	End   TimeOfDay
}

const (
	slotBaseHour     = 7
	slotBaseMinute   = 30
	slotPitchMinutes = 130
	// MaxSlotIndex caps the continuous slot index.
	MaxSlotIndex = 12
)

// legacySlotSpans is the 8-slot numbering regime used by older timetables.
var legacySlotSpans = map[int]SlotSpan{
	1: {Start: TimeOfDay{7, 30}, End: TimeOfDay{9, 0}},
	2: {Start: TimeOfDay{9, 10}, End: TimeOfDay{10, 40}},
	3: {Start: TimeOfDay{10, 50}, End: TimeOfDay{12, 20}},
	4: {Start: TimeOfDay{12, 50}, End: TimeOfDay{14, 20}},
	5: {Start: TimeOfDay{14, 30}, End: TimeOfDay{16, 0}},
	6: {Start: TimeOfDay{16, 10}, End: TimeOfDay{17, 40}},
	7: {Start: TimeOfDay{18, 0}, End: TimeOfDay{19, 30}},
	8: {Start: TimeOfDay{19, 45}, End: TimeOfDay{21, 15}},
}

// newSlotSpans is the 6-slot numbering regime used by newer timetables.
var newSlotSpans = map[int]SlotSpan{
	1: {Start: TimeOfDay{7, 30}, End: TimeOfDay{9, 50}},
	2: {Start: TimeOfDay{10, 0}, End: TimeOfDay{12, 20}},
	3: {Start: TimeOfDay{12, 50}, End: TimeOfDay{15, 10}},
	4: {Start: TimeOfDay{15, 20}, End: TimeOfDay{17, 40}},
	5: {Start: TimeOfDay{18, 0}, End: TimeOfDay{20, 20}},
	6: {Start: TimeOfDay{20, 0}, End: TimeOfDay{22, 20}},
}

// SlotSpanFor maps a slot number to its wall-clock range under one of the two
// numbering regimes. The second return value is false when the slot number has
// no mapping; callers must reject such slots.
func SlotSpanFor(slot int, newRegime bool) (SlotSpan, bool) {
	if newRegime {
		span, ok := newSlotSpans[slot]

		return span, ok
	}

	span, ok := legacySlotSpans[slot]

	return span, ok
}

// SlotIndexFor derives a slot index from an arbitrary start time. Slots begin at
// 07:30 and are spaced 130 minutes apart; the index is the slot the start time
// falls into, clamped to MaxSlotIndex. Start times before 07:30 yield 0. An
// exact boundary instant opens the next slot (plain integer division), so a
// start at 07:30 plus one pitch belongs to slot 2. This function labels
// sessions only; it does not recover end times.
func SlotIndexFor(start TimeOfDay) int {
	base := slotBaseHour*60 + slotBaseMinute

	offset := start.MinuteOfDay() - base
	if offset < 0 {
		return 0
	}

	index := offset/slotPitchMinutes + 1
	if index > MaxSlotIndex {
		return MaxSlotIndex
	}

	return index
}

// ParseSlotList parses a slot specifier accepting a comma list and/or dash
// ranges, e.g. "1,3" or "1-4" or "1-2,5".
func ParseSlotList(spec string) ([]int, error) {
	var slots []int

	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		if from, to, ok := strings.Cut(part, "-"); ok {
			lo, err := strconv.Atoi(strings.TrimSpace(from))
			if err != nil {
				return nil, fmt.Errorf("invalid slot range %q: %w", part, err)
			}

			hi, err := strconv.Atoi(strings.TrimSpace(to))
			if err != nil {
				return nil, fmt.Errorf("invalid slot range %q: %w", part, err)
			}

			if hi < lo {
				return nil, fmt.Errorf("invalid slot range %q: end before start", part)
			}

			for s := lo; s <= hi; s++ {
				slots = append(slots, s)
			}

			continue
		}

		slot, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid slot number %q: %w", part, err)
		}

		slots = append(slots, slot)
	}

	if len(slots) == 0 {
		return nil, fmt.Errorf("empty slot specifier %q", spec)
	}

	return slots, nil
}
