package dto

import (
	"roomtime/internal/domains/booking/model"
	"roomtime/internal/timetable"
	"roomtime/shared"
	"roomtime/shared/constant"
	gDto "roomtime/shared/dto"
	gModel "roomtime/shared/model"
	"roomtime/shared/timezone"
	"time"

	"github.com/google/uuid"
)

type CreateBookingRequest struct {
	RoomID        string `json:"room_id"        validate:"required"`
	StartAt       string `json:"start_at"       validate:"required"`
	DurationHours int    `json:"duration_hours" validate:"required,gte=1"`
	Reason        string `json:"reason"         validate:"omitempty,max=500"`
}

func (c *CreateBookingRequest) ToModel(user, userName string) (model.Booking, error) {
	startAt, err := timezone.Parse(constant.DateFormat, c.StartAt)
	if err != nil {
		return model.Booking{}, err
	}

	// RFC3339 inputs keep whatever offset the client spelled. The booking
	// window is defined in app wall-clock hours, so normalize before any
	// validation reads the start hour.
	startAt = timezone.ToAppTime(startAt)

	return model.Booking{
		ID:              uuid.NewString(),
		RoomID:          c.RoomID,
		RequestedBy:     user,
		RequestedByName: userName,
		StartAt:         startAt,
		EndAt:           startAt.Add(time.Duration(c.DurationHours) * time.Hour),
		DurationHours:   c.DurationHours,
		Reason:          c.Reason,
		Status:          timetable.StatusPending,
		Metadata: gModel.Metadata{
			CreatedAt:  timezone.Now(),
			ModifiedAt: timezone.Now(),
			CreatedBy:  user,
			ModifiedBy: user,
		},
	}, nil
}

type UpdateBookingStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=approved rejected"`
}

type BookingResponse struct {
	ID              string `json:"id"`
	RoomID          string `json:"room_id"`
	RequestedBy     string `json:"requested_by"`
	RequestedByName string `json:"requested_by_name"`
	StartAt         string `json:"start_at"`
	EndAt           string `json:"end_at"`
	DurationHours   int    `json:"duration_hours"`
	Reason          string `json:"reason"`
	Status          string `json:"status"`
	gDto.Metadata
}

func (r *BookingResponse) FromModel(model model.Booking) {
	r.ID = model.ID
	r.RoomID = model.RoomID
	r.RequestedBy = model.RequestedBy
	r.RequestedByName = model.RequestedByName
	r.StartAt = timezone.Format(model.StartAt, constant.DateFormat)
	r.EndAt = timezone.Format(model.EndAt, constant.DateFormat)
	r.DurationHours = model.DurationHours
	r.Reason = model.Reason
	r.Status = model.Status
	r.Metadata.FromModel(model.Metadata)
}

type GetBookingsResponse struct {
	Bookings  []BookingResponse `json:"bookings"`
	TotalPage int               `json:"total_page"`
	TotalData int               `json:"total_data"`
}

func (r *GetBookingsResponse) FromModels(models []model.Booking, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Bookings = make([]BookingResponse, len(models))
	for i, mod := range models {
		r.Bookings[i].FromModel(mod)
	}
}

// CascadedRejection reports one pending booking rejected as a side effect of an
// approval.
type CascadedRejection struct {
	ID        string `json:"id"`
	OldStatus string `json:"old_status"`
	NewStatus string `json:"new_status"`
}

type UpdateBookingStatusResponse struct {
	Booking            BookingResponse     `json:"booking"`
	CascadedRejections []CascadedRejection `json:"cascaded_rejections"`
}

func (r *UpdateBookingStatusResponse) FromModel(booking model.Booking, changes []timetable.StatusChange) {
	r.Booking.FromModel(booking)

	r.CascadedRejections = make([]CascadedRejection, len(changes))
	for i, change := range changes {
		r.CascadedRejections[i] = CascadedRejection{
			ID:        change.ID,
			OldStatus: change.OldStatus,
			NewStatus: change.NewStatus,
		}
	}
}
