package timetable

import (
	"fmt"
	"roomtime/shared/failure"
)

// Booking lifecycle states. Pending is the initial state; Approved and
// Rejected are terminal as far as this engine is concerned.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// Room availability states. Only available rooms accept new bookings.
const (
	RoomAvailable = "available"
	RoomHidden    = "hidden"
	RoomDisabled  = "disabled"
)

// Settings is the booking window configuration. It is supplied per call; the
// engine keeps no ambient configuration.
type Settings struct {
	StartHour           int
	EndHour             int
	SlotDurationMinutes int
}

// Claim is an existing allocation of a room over a time range, as loaded by the
// caller. The engine never queries storage itself.
type Claim struct {
	ID     string
	Span   Range
	Status string
}

// StatusChange is a single status transition the caller must persist.
type StatusChange struct {
	ID        string
	OldStatus string
	NewStatus string
}

// ValidateCreate checks a booking request against the configured window, room
// state and the room's existing occupancy. classSpans are teaching sessions in
// the room; claims are the room's bookings. Overlap with pending bookings never
// blocks creation: competing requests coexist until one is approved.
func ValidateCreate(span Range, durationHours int, settings Settings, roomStatus string, classSpans []Range, claims []Claim) error {
	if durationHours*60 != settings.SlotDurationMinutes {
		return failure.BadRequestFromString(
			fmt.Sprintf("booking duration must be %d minutes", settings.SlotDurationMinutes))
	}

	startHour := span.Start.Hour()
	if startHour < settings.StartHour || startHour >= settings.EndHour {
		return failure.BadRequestFromString(
			fmt.Sprintf("booking must start between %02d:00 and %02d:00", settings.StartHour, settings.EndHour))
	}

	if roomStatus != RoomAvailable {
		return failure.Conflict("room is not available for booking")
	}

	for _, class := range classSpans {
		if span.Overlaps(class) {
			return failure.Conflict("room is occupied by a class at the requested time")
		}
	}

	for _, claim := range claims {
		if claim.Status == StatusApproved && span.Overlaps(claim.Span) {
			return failure.Conflict("slot is already booked")
		}
	}

	return nil
}

// CascadeApproval returns the status transitions implied by approving the given
// booking: every other pending claim in the room whose span overlaps the
// approved span moves to rejected. The caller applies the diffs together with
// the approval itself in one transaction. Nothing cascades for any other
// transition.
func CascadeApproval(approved Claim, claims []Claim) []StatusChange {
	var changes []StatusChange

	for _, claim := range claims {
		if claim.ID == approved.ID || claim.Status != StatusPending {
			continue
		}

		if approved.Span.Overlaps(claim.Span) {
			changes = append(changes, StatusChange{
				ID:        claim.ID,
				OldStatus: claim.Status,
				NewStatus: StatusRejected,
			})
		}
	}

	return changes
}
