package timetable_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"roomtime/internal/timetable"
)

func TestSlotSpanFor(t *testing.T) {
	tests := []struct {
		name      string
		slot      int
		newRegime bool
		wantStart timetable.TimeOfDay
		wantEnd   timetable.TimeOfDay
		wantOK    bool
	}{
		{
			name:      "new regime slot 1",
			slot:      1,
			newRegime: true,
			wantStart: timetable.TimeOfDay{Hour: 7, Minute: 30},
			wantEnd:   timetable.TimeOfDay{Hour: 9, Minute: 50},
			wantOK:    true,
		},
		{
			name:      "legacy regime slot 8",
			slot:      8,
			newRegime: false,
			wantStart: timetable.TimeOfDay{Hour: 19, Minute: 45},
			wantEnd:   timetable.TimeOfDay{Hour: 21, Minute: 15},
			wantOK:    true,
		},
		{
			name:      "legacy regime slot 4 after lunch gap",
			slot:      4,
			newRegime: false,
			wantStart: timetable.TimeOfDay{Hour: 12, Minute: 50},
			wantEnd:   timetable.TimeOfDay{Hour: 14, Minute: 20},
			wantOK:    true,
		},
		{
			name:      "slot 9 has no mapping in legacy regime",
			slot:      9,
			newRegime: false,
			wantOK:    false,
		},
		{
			name:      "slot 9 has no mapping in new regime",
			slot:      9,
			newRegime: true,
			wantOK:    false,
		},
		{
			name:      "slot 0 has no mapping",
			slot:      0,
			newRegime: true,
			wantOK:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := timetable.SlotSpanFor(tt.slot, tt.newRegime)

			assert.Equal(t, tt.wantOK, ok)

			if tt.wantOK {
				assert.Equal(t, tt.wantStart, got.Start)
				assert.Equal(t, tt.wantEnd, got.End)
			}
		})
	}
}

func TestSlotIndexFor(t *testing.T) {
	tests := []struct {
		name  string
		start timetable.TimeOfDay
		want  int
	}{
		{name: "first slot start", start: timetable.TimeOfDay{Hour: 7, Minute: 30}, want: 1},
		{name: "inside second slot", start: timetable.TimeOfDay{Hour: 9, Minute: 45}, want: 2},
		{name: "exact pitch boundary opens next slot", start: timetable.TimeOfDay{Hour: 9, Minute: 40}, want: 2},
		{name: "before the first slot", start: timetable.TimeOfDay{Hour: 7, Minute: 0}, want: 0},
		{name: "midnight", start: timetable.TimeOfDay{}, want: 0},
		{name: "last slot reachable in a day", start: timetable.TimeOfDay{Hour: 23, Minute: 55}, want: 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, timetable.SlotIndexFor(tt.start))
		})
	}
}

func TestSlotIndexFor_ClampAtMaxIndex(t *testing.T) {
	// Slot 12 opens 130*11 minutes after 07:30. TimeOfDay values that far out
	// only arise from arithmetic, never from parsing, but the index still
	// clamps rather than growing without bound.
	assert.Equal(t, 12, timetable.SlotIndexFor(timetable.TimeOfDay{Hour: 31, Minute: 20}))
	assert.Equal(t, 12, timetable.SlotIndexFor(timetable.TimeOfDay{Hour: 40, Minute: 0}))
}

func TestParseSlotList(t *testing.T) {
	tests := []struct {
		name    string
		spec    string
		want    []int
		wantErr bool
	}{
		{name: "comma list", spec: "1,3", want: []int{1, 3}},
		{name: "dash range", spec: "1-4", want: []int{1, 2, 3, 4}},
		{name: "mixed", spec: "1-2,5", want: []int{1, 2, 5}},
		{name: "whitespace tolerated", spec: " 2 , 4 ", want: []int{2, 4}},
		{name: "reversed range", spec: "4-1", wantErr: true},
		{name: "garbage", spec: "abc", wantErr: true},
		{name: "empty", spec: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := timetable.ParseSlotList(tt.spec)

			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
