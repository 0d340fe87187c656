package model

import (
	"roomtime/internal/timetable"
	"roomtime/shared/model"
	"time"
)

const (
	TableName  = "bookings"
	EntityName = "booking"

	FieldID              = "id"
	FieldRoomID          = "room_id"
	FieldRequestedBy     = "requested_by"
	FieldRequestedByName = "requested_by_name"
	FieldStartAt         = "start_at"
	FieldEndAt           = "end_at"
	FieldDurationHours   = "duration_hours"
	FieldReason          = "reason"
	FieldStatus          = "status"
)

type Booking struct {
	ID              string    `db:"id"`
	RoomID          string    `db:"room_id"`
	RequestedBy     string    `db:"requested_by"`
	RequestedByName string    `db:"requested_by_name"`
	StartAt         time.Time `db:"start_at"`
	EndAt           time.Time `db:"end_at"`
	DurationHours   int       `db:"duration_hours"`
	Reason          string    `db:"reason"`
	Status          string    `db:"status"`
	model.Metadata
}

// Span returns the booking's half-open occupancy interval.
func (b Booking) Span() timetable.Range {
	return timetable.NewRange(b.StartAt, b.EndAt)
}

// Claim projects the booking into the engine's allocation representation.
func (b Booking) Claim() timetable.Claim {
	return timetable.Claim{
		ID:     b.ID,
		Span:   b.Span(),
		Status: b.Status,
	}
}
