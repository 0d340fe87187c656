package model

import "roomtime/shared/model"

const (
	TableName  = "rooms"
	EntityName = "room"

	FieldID       = "id"
	FieldCode     = "code"
	FieldName     = "name"
	FieldBuilding = "building"
	FieldCapacity = "capacity"
	FieldStatus   = "status"
)

const (
	StatusAvailable = "available"
	StatusHidden    = "hidden"
	StatusDisabled  = "disabled"
)

type Room struct {
	ID       string `db:"id"`
	Code     string `db:"code"`
	Name     string `db:"name"`
	Building string `db:"building"`
	Capacity int    `db:"capacity"`
	Status   string `db:"status"`
	model.Metadata
}
