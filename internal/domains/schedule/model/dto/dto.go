package dto

// Occupancy source kinds.
const (
	SourceBooking = "booking"
	SourceClass   = "class"
)

// OccupancyEntry is one allocation of a room, projected from either a booking
// or a teaching session. It is a read-only view, never persisted.
type OccupancyEntry struct {
	ID              string `json:"id"`
	RoomID          string `json:"room_id"`
	RoomName        string `json:"room_name"`
	RequestedBy     string `json:"requested_by"`
	RequestedByName string `json:"requested_by_name"`
	Start           string `json:"start"`
	End             string `json:"end"`
	DurationHours   int    `json:"duration_hours"`
	Description     string `json:"description"`
	Status          string `json:"status"`
	Source          string `json:"source"`
	CreatedAt       string `json:"created_at"`
}

type RoomScheduleResponse struct {
	RoomID   string           `json:"room_id"`
	RoomName string           `json:"room_name"`
	Entries  []OccupancyEntry `json:"entries"`
}

// RecurringImportRow is one row of the weekly-pattern import format. The
// delimited columns align positionally: the i-th weekday uses the i-th start
// time, end time and room code, falling back to the first entry when the lists
// are shorter than the weekday list.
type RecurringImportRow struct {
	SubjectCode     string `json:"subject_code"`
	StartDate       string `json:"start_date"`
	EndDate         string `json:"end_date"`
	DaysOfWeek      string `json:"days_of_week"`
	StartTimes      string `json:"start_times"`
	EndTimes        string `json:"end_times"`
	RoomCodes       string `json:"room_codes"`
	ClassCode       string `json:"class_code"`
	LecturerName    string `json:"lecturer_name"`
	LecturerContact string `json:"lecturer_contact"`
}

// PerDateImportRow is one row of the legacy per-date import format. Times come
// either from explicit start/end lists or from a slot specifier interpreted
// under the regime the IsNewSlot flag selects.
type PerDateImportRow struct {
	Subject         string `json:"subject"`
	ClassCode       string `json:"class_code"`
	RoomCode        string `json:"room_code"`
	Dates           string `json:"dates"`
	StartTimes      string `json:"start_times"`
	EndTimes        string `json:"end_times"`
	IsNewSlot       bool   `json:"is_new_slot"`
	Slots           string `json:"slots"`
	LecturerName    string `json:"lecturer_name"`
	LecturerContact string `json:"lecturer_contact"`
}

// ImportResult reports the outcome of a bulk import. Failed rows never abort
// the batch; each contributes one message to Errors.
type ImportResult struct {
	SuccessCount int      `json:"success_count"`
	FailureCount int      `json:"failure_count"`
	Errors       []string `json:"errors"`
}
