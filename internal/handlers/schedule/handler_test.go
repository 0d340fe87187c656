package schedule_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"roomtime/infras/otel/mocks"
	scheduleMocks "roomtime/internal/domains/schedule/mocks"
	"roomtime/internal/domains/schedule/model/dto"
	"roomtime/internal/handlers/schedule"
	"roomtime/shared/constant"
)

func newScheduleHandler(t *testing.T) (schedule.Handler, *scheduleMocks.MockSchedule) {
	t.Helper()

	ctrl := gomock.NewController(t)
	svc := scheduleMocks.NewMockSchedule(ctrl)

	return schedule.New(svc, mocks.NewOtel()), svc
}

func TestScheduleHandler_ImportRecurring_JSONBody(t *testing.T) {
	handler, svc := newScheduleHandler(t)

	rows := []dto.RecurringImportRow{
		{
			SubjectCode: "Operating Systems",
			StartDate:   "2026-02-02",
			EndDate:     "2026-02-09",
			DaysOfWeek:  "mon",
			StartTimes:  "07:30",
			EndTimes:    "09:50",
			RoomCodes:   "A101",
			ClassCode:   "OS-01",
		},
	}

	svc.EXPECT().
		ImportRecurring(gomock.Any(), rows).
		Return(dto.ImportResult{SuccessCount: 1, Errors: []string{}}, nil)

	body, err := json.Marshal(rows)
	require.NoError(t, err)

	request := httptest.NewRequest(http.MethodPost, "/schedules/import/recurring", bytes.NewReader(body))
	request.Header.Set(constant.RequestHeaderContentType, constant.ContentTypeJSON)
	recorder := httptest.NewRecorder()

	handler.ImportRecurring(recorder, request)

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), `"success_count":1`)
}

func TestScheduleHandler_ImportPerDate_JSONBody(t *testing.T) {
	handler, svc := newScheduleHandler(t)

	rows := []dto.PerDateImportRow{
		{
			Subject:   "Algorithms",
			ClassCode: "ALG-01",
			RoomCode:  "A101",
			Dates:     "2026-03-02",
			IsNewSlot: true,
			Slots:     "1-2",
		},
	}

	svc.EXPECT().
		ImportPerDate(gomock.Any(), rows).
		Return(dto.ImportResult{SuccessCount: 1, Errors: []string{}}, nil)

	body, err := json.Marshal(rows)
	require.NoError(t, err)

	request := httptest.NewRequest(http.MethodPost, "/schedules/import/per-date", bytes.NewReader(body))
	request.Header.Set(constant.RequestHeaderContentType, constant.ContentTypeJSON)
	recorder := httptest.NewRecorder()

	handler.ImportPerDate(recorder, request)

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), `"success_count":1`)
}

func TestScheduleHandler_ImportRecurring_MalformedJSON(t *testing.T) {
	handler, _ := newScheduleHandler(t)

	request := httptest.NewRequest(http.MethodPost, "/schedules/import/recurring", bytes.NewReader([]byte("{not json")))
	request.Header.Set(constant.RequestHeaderContentType, constant.ContentTypeJSON)
	recorder := httptest.NewRecorder()

	handler.ImportRecurring(recorder, request)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}
