package model

import (
	"fmt"
	"roomtime/internal/timetable"
	"roomtime/shared/model"
	"time"
)

const (
	TableName  = "class_sessions"
	EntityName = "class session"

	FieldID        = "id"
	FieldRoomID    = "room_id"
	FieldDate      = "session_date"
	FieldSlot      = "slot"
	FieldStartTime = "start_time"
	FieldEndTime   = "end_time"
	FieldSubject   = "subject"
	FieldClassCode = "class_code"
)

// Session is a teaching session. It has no approval lifecycle: it occupies its
// room from the moment it exists.
type Session struct {
	ID              string    `db:"id"`
	RoomID          string    `db:"room_id"`
	Date            time.Time `db:"session_date"`
	Slot            int       `db:"slot"`
	StartTime       string    `db:"start_time"`
	EndTime         string    `db:"end_time"`
	Subject         string    `db:"subject"`
	ClassCode       string    `db:"class_code"`
	LecturerName    string    `db:"lecturer_name"`
	LecturerContact string    `db:"lecturer_contact"`
	model.Metadata
}

// Span anchors the session's start/end times onto its date.
func (s Session) Span() (timetable.Range, error) {
	start, err := timetable.ParseTimeOfDay(s.StartTime)
	if err != nil {
		return timetable.Range{}, fmt.Errorf("session %s has invalid start time: %w", s.ID, err)
	}

	end, err := timetable.ParseTimeOfDay(s.EndTime)
	if err != nil {
		return timetable.Range{}, fmt.Errorf("session %s has invalid end time: %w", s.ID, err)
	}

	return timetable.NewRange(start.At(s.Date), end.At(s.Date)), nil
}
