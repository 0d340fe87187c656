package service

import (
	"fmt"
	"io"
	"strings"

	"roomtime/internal/domains/schedule/model/dto"

	"github.com/xuri/excelize/v2"
)

// Workbook column order for the recurring format: subject code, start date,
// end date, days of week, start times, end times, room codes, class code,
// lecturer name, lecturer contact. The first row is a header.
func ParseRecurringWorkbook(r io.Reader) ([]dto.RecurringImportRow, error) {
	records, err := workbookRows(r)
	if err != nil {
		return nil, err
	}

	rows := make([]dto.RecurringImportRow, 0, len(records))

	for _, record := range records {
		rows = append(rows, dto.RecurringImportRow{
			SubjectCode:     cell(record, 0),
			StartDate:       cell(record, 1),
			EndDate:         cell(record, 2),
			DaysOfWeek:      cell(record, 3),
			StartTimes:      cell(record, 4),
			EndTimes:        cell(record, 5),
			RoomCodes:       cell(record, 6),
			ClassCode:       cell(record, 7),
			LecturerName:    cell(record, 8),
			LecturerContact: cell(record, 9),
		})
	}

	return rows, nil
}

// Workbook column order for the per-date format: subject, class code, room
// code, dates, start times, end times, new-slot flag, slots, lecturer name,
// lecturer contact. The first row is a header.
func ParsePerDateWorkbook(r io.Reader) ([]dto.PerDateImportRow, error) {
	records, err := workbookRows(r)
	if err != nil {
		return nil, err
	}

	rows := make([]dto.PerDateImportRow, 0, len(records))

	for _, record := range records {
		rows = append(rows, dto.PerDateImportRow{
			Subject:         cell(record, 0),
			ClassCode:       cell(record, 1),
			RoomCode:        cell(record, 2),
			Dates:           cell(record, 3),
			StartTimes:      cell(record, 4),
			EndTimes:        cell(record, 5),
			IsNewSlot:       parseFlag(cell(record, 6)),
			Slots:           cell(record, 7),
			LecturerName:    cell(record, 8),
			LecturerContact: cell(record, 9),
		})
	}

	return rows, nil
}

// workbookRows reads the first sheet and drops the header row and fully empty
// rows.
func workbookRows(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	records, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}

	if len(records) <= 1 {
		return nil, nil
	}

	rows := make([][]string, 0, len(records)-1)

	for _, record := range records[1:] {
		if isEmptyRow(record) {
			continue
		}

		rows = append(rows, record)
	}

	return rows, nil
}

func isEmptyRow(record []string) bool {
	for _, value := range record {
		if strings.TrimSpace(value) != "" {
			return false
		}
	}

	return true
}

func cell(record []string, i int) string {
	if i < len(record) {
		return strings.TrimSpace(record[i])
	}

	return ""
}

func parseFlag(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "y":
		return true
	default:
		return false
	}
}
