package dto

import (
	"roomtime/internal/domains/session/model"
	"roomtime/internal/timetable"
	"roomtime/shared"
	"roomtime/shared/constant"
	gDto "roomtime/shared/dto"
	gModel "roomtime/shared/model"
	"roomtime/shared/timezone"

	"github.com/google/uuid"
)

type CreateSessionRequest struct {
	RoomID          string `json:"room_id"          validate:"required"`
	Date            string `json:"date"             validate:"required"`
	StartTime       string `json:"start_time"       validate:"required"`
	EndTime         string `json:"end_time"         validate:"required"`
	Subject         string `json:"subject"          validate:"required,max=200"`
	ClassCode       string `json:"class_code"       validate:"omitempty,max=50"`
	LecturerName    string `json:"lecturer_name"    validate:"omitempty,max=100"`
	LecturerContact string `json:"lecturer_contact" validate:"omitempty,max=100"`
}

func (c *CreateSessionRequest) ToModel(user string) (model.Session, error) {
	date, err := timezone.Parse(constant.DateOnlyFormat, c.Date)
	if err != nil {
		return model.Session{}, err
	}

	start, err := timetable.ParseTimeOfDay(c.StartTime)
	if err != nil {
		return model.Session{}, err
	}

	end, err := timetable.ParseTimeOfDay(c.EndTime)
	if err != nil {
		return model.Session{}, err
	}

	return model.Session{
		ID:              uuid.NewString(),
		RoomID:          c.RoomID,
		Date:            date,
		Slot:            timetable.SlotIndexFor(start),
		StartTime:       start.String(),
		EndTime:         end.String(),
		Subject:         c.Subject,
		ClassCode:       c.ClassCode,
		LecturerName:    c.LecturerName,
		LecturerContact: c.LecturerContact,
		Metadata: gModel.Metadata{
			CreatedAt:  timezone.Now(),
			ModifiedAt: timezone.Now(),
			CreatedBy:  user,
			ModifiedBy: user,
		},
	}, nil
}

type SessionResponse struct {
	ID              string `json:"id"`
	RoomID          string `json:"room_id"`
	Date            string `json:"date"`
	Slot            int    `json:"slot"`
	StartTime       string `json:"start_time"`
	EndTime         string `json:"end_time"`
	Subject         string `json:"subject"`
	ClassCode       string `json:"class_code"`
	LecturerName    string `json:"lecturer_name"`
	LecturerContact string `json:"lecturer_contact"`
	gDto.Metadata
}

func (r *SessionResponse) FromModel(model model.Session) {
	r.ID = model.ID
	r.RoomID = model.RoomID
	r.Date = model.Date.Format(constant.DateOnlyFormat)
	r.Slot = model.Slot
	r.StartTime = model.StartTime
	r.EndTime = model.EndTime
	r.Subject = model.Subject
	r.ClassCode = model.ClassCode
	r.LecturerName = model.LecturerName
	r.LecturerContact = model.LecturerContact
	r.Metadata.FromModel(model.Metadata)
}

type GetSessionsResponse struct {
	Sessions  []SessionResponse `json:"sessions"`
	TotalPage int               `json:"total_page"`
	TotalData int               `json:"total_data"`
}

func (r *GetSessionsResponse) FromModels(models []model.Session, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Sessions = make([]SessionResponse, len(models))
	for i, mod := range models {
		r.Sessions[i].FromModel(mod)
	}
}
