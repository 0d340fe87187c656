package dto

import (
	"roomtime/internal/domains/room/model"
	"roomtime/shared"
	gDto "roomtime/shared/dto"
	gModel "roomtime/shared/model"
	"roomtime/shared/timezone"

	"github.com/google/uuid"
)

type CreateRoomRequest struct {
	Code     string `json:"code"     validate:"required,max=20"`
	Name     string `json:"name"     validate:"required,max=100"`
	Building string `json:"building" validate:"omitempty,max=100"`
	Capacity int    `json:"capacity" validate:"omitempty,gte=0"`
	Status   string `json:"status"   validate:"omitempty,oneof=available hidden disabled"`
}

func (c *CreateRoomRequest) ToModel(user string) model.Room {
	status := model.StatusAvailable
	if c.Status != "" {
		status = c.Status
	}

	return model.Room{
		ID:       uuid.NewString(),
		Code:     c.Code,
		Name:     c.Name,
		Building: c.Building,
		Capacity: c.Capacity,
		Status:   status,
		Metadata: gModel.Metadata{
			CreatedAt:  timezone.Now(),
			ModifiedAt: timezone.Now(),
			CreatedBy:  user,
			ModifiedBy: user,
		},
	}
}

type UpdateRoomRequest struct {
	Name     string `db:"name"     json:"name"     validate:"omitempty,max=100"`
	Building string `db:"building" json:"building" validate:"omitempty,max=100"`
	Capacity int    `db:"capacity" json:"capacity" validate:"omitempty,gte=0"`
	Status   string `db:"status"   json:"status"   validate:"omitempty,oneof=available hidden disabled"`
}

type RoomResponse struct {
	ID       string `json:"id"`
	Code     string `json:"code"`
	Name     string `json:"name"`
	Building string `json:"building"`
	Capacity int    `json:"capacity"`
	Status   string `json:"status"`
	gDto.Metadata
}

func (r *RoomResponse) FromModel(model model.Room) {
	r.ID = model.ID
	r.Code = model.Code
	r.Name = model.Name
	r.Building = model.Building
	r.Capacity = model.Capacity
	r.Status = model.Status
	r.Metadata.FromModel(model.Metadata)
}

type GetRoomsResponse struct {
	Rooms     []RoomResponse `json:"rooms"`
	TotalPage int            `json:"total_page"`
	TotalData int            `json:"total_data"`
}

func (r *GetRoomsResponse) FromModels(models []model.Room, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Rooms = make([]RoomResponse, len(models))
	for i, mod := range models {
		r.Rooms[i].FromModel(mod)
	}
}
