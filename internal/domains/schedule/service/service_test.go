package service_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"roomtime/config"
	"roomtime/infras/otel/mocks"
	bookingMocks "roomtime/internal/domains/booking/mocks"
	bookingModel "roomtime/internal/domains/booking/model"
	roomMocks "roomtime/internal/domains/room/mocks"
	roomModel "roomtime/internal/domains/room/model"
	"roomtime/internal/domains/schedule/model/dto"
	"roomtime/internal/domains/schedule/service"
	sessionMocks "roomtime/internal/domains/session/mocks"
	sessionModel "roomtime/internal/domains/session/model"
	"roomtime/internal/timetable"
	cacheMocks "roomtime/shared/cache/mocks"
	"roomtime/shared/constant"
	"roomtime/shared/failure"
)

type scheduleMockSet struct {
	roomRepo    *roomMocks.MockRoom
	bookingRepo *bookingMocks.MockBooking
	sessionRepo *sessionMocks.MockSession
	cache       *cacheMocks.MockRedisCache
}

func newScheduleService(t *testing.T) (service.Schedule, scheduleMockSet) {
	t.Helper()

	ctrl := gomock.NewController(t)

	set := scheduleMockSet{
		roomRepo:    roomMocks.NewMockRoom(ctrl),
		bookingRepo: bookingMocks.NewMockBooking(ctrl),
		sessionRepo: sessionMocks.NewMockSession(ctrl),
		cache:       cacheMocks.NewMockRedisCache(ctrl),
	}

	cfg := &config.Config{}
	cfg.Cache.TTL = 3600

	set.cache.EXPECT().Save(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	set.cache.EXPECT().Clear(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	svc := service.New(set.roomRepo, set.bookingRepo, set.sessionRepo, cfg, set.cache, mocks.NewOtel())

	return svc, set
}

func importerContext() context.Context {
	ctx := context.WithValue(context.Background(), constant.ContextKeyUserID, "lecturer-1")

	return context.WithValue(ctx, constant.ContextKeyUserRole, constant.RoleLecturer)
}

func TestScheduleService_RoomSchedule(t *testing.T) {
	svc, set := newScheduleService(t)

	date := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	at := func(hour, minute int) time.Time {
		return time.Date(2026, 3, 2, hour, minute, 0, 0, time.UTC)
	}

	set.cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("cache miss"))
	set.roomRepo.EXPECT().GetByID(gomock.Any(), "room-1").Return(roomModel.Room{
		ID: "room-1", Code: "A101", Name: "Lab A101", Status: roomModel.StatusAvailable,
	}, nil)
	set.bookingRepo.EXPECT().ListForRoomSpan(gomock.Any(), "room-1", gomock.Any(), gomock.Any()).Return([]bookingModel.Booking{
		{ID: "approved-1", RoomID: "room-1", StartAt: at(9, 0), EndAt: at(10, 0), DurationHours: 1, Status: timetable.StatusApproved, Reason: "defense"},
		{ID: "rejected-1", RoomID: "room-1", StartAt: at(10, 0), EndAt: at(11, 0), DurationHours: 1, Status: timetable.StatusRejected},
		{ID: "pending-1", RoomID: "room-1", StartAt: at(13, 0), EndAt: at(14, 0), DurationHours: 1, Status: timetable.StatusPending, Reason: "meetup"},
	}, nil)
	set.sessionRepo.EXPECT().ListForRoomDates(gomock.Any(), "room-1", gomock.Any(), gomock.Any()).Return([]sessionModel.Session{
		{
			ID: "class-1", RoomID: "room-1", Date: date, Slot: 1,
			StartTime: "07:30", EndTime: "09:50",
			Subject: "Operating Systems", ClassCode: "OS-01", LecturerName: "Dr. Tan",
		},
	}, nil)

	res, err := svc.RoomSchedule(context.Background(), "room-1", date, date)

	require.NoError(t, err)
	assert.Equal(t, "room-1", res.RoomID)
	assert.Equal(t, "Lab A101", res.RoomName)

	// Rejected bookings are excluded; the rest is ordered by start time.
	require.Len(t, res.Entries, 3)
	assert.Equal(t, "class-1", res.Entries[0].ID)
	assert.Equal(t, dto.SourceClass, res.Entries[0].Source)
	assert.Equal(t, timetable.StatusApproved, res.Entries[0].Status)
	assert.Equal(t, "Operating Systems (OS-01)", res.Entries[0].Description)
	assert.Equal(t, "approved-1", res.Entries[1].ID)
	assert.Equal(t, dto.SourceBooking, res.Entries[1].Source)
	assert.Equal(t, "pending-1", res.Entries[2].ID)
}

func TestScheduleService_RoomSchedule_RoomNotFound(t *testing.T) {
	svc, set := newScheduleService(t)

	set.cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("cache miss"))
	set.roomRepo.EXPECT().GetByID(gomock.Any(), "missing").Return(roomModel.Room{}, nil)

	date := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	_, err := svc.RoomSchedule(context.Background(), "missing", date, date)

	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, failure.GetCode(err))
}

func TestScheduleService_ImportRecurring_RowIsolation(t *testing.T) {
	svc, set := newScheduleService(t)

	goodRow := dto.RecurringImportRow{
		SubjectCode: "Operating Systems",
		StartDate:   "2026-02-02",
		EndDate:     "2026-02-09",
		DaysOfWeek:  "mon",
		StartTimes:  "07:30",
		EndTimes:    "09:50",
		RoomCodes:   "A101",
		ClassCode:   "OS-01",
	}

	badRow := goodRow
	badRow.StartDate = "not-a-date"

	rows := []dto.RecurringImportRow{goodRow, goodRow, badRow, goodRow, goodRow}

	set.roomRepo.EXPECT().
		ResolveCodes(gomock.Any(), []string{"A101"}).
		Return(map[string]string{"A101": "room-1"}, nil).
		Times(4)
	set.sessionRepo.EXPECT().
		InsertBatch(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, sessions []sessionModel.Session) error {
			// 2026-02-02 and 2026-02-09 are the only Mondays in range.
			require.Len(t, sessions, 2)
			assert.Equal(t, 1, sessions[0].Slot)
			assert.Equal(t, "room-1", sessions[0].RoomID)

			return nil
		}).
		Times(4)

	res, err := svc.ImportRecurring(importerContext(), rows)

	require.NoError(t, err)
	assert.Equal(t, 4, res.SuccessCount)
	assert.Equal(t, 1, res.FailureCount)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], "row 3")
}

func TestScheduleService_ImportRecurring_NoMatchingWeekdayIsNoOp(t *testing.T) {
	svc, set := newScheduleService(t)

	// 2026-02-03 through 2026-02-05 is Tuesday through Thursday; a Sunday
	// pattern expands to nothing, which is a valid no-op row.
	row := dto.RecurringImportRow{
		SubjectCode: "Operating Systems",
		StartDate:   "2026-02-03",
		EndDate:     "2026-02-05",
		DaysOfWeek:  "sun",
		StartTimes:  "07:30",
		EndTimes:    "09:50",
		RoomCodes:   "A101",
	}

	set.roomRepo.EXPECT().
		ResolveCodes(gomock.Any(), []string{"A101"}).
		Return(map[string]string{"A101": "room-1"}, nil)

	res, err := svc.ImportRecurring(importerContext(), []dto.RecurringImportRow{row})

	require.NoError(t, err)
	assert.Equal(t, 1, res.SuccessCount)
	assert.Zero(t, res.FailureCount)
	assert.Empty(t, res.Errors)
}

func TestScheduleService_ImportRecurring_Forbidden(t *testing.T) {
	svc, _ := newScheduleService(t)

	ctx := context.WithValue(context.Background(), constant.ContextKeyUserRole, constant.RoleStudent)

	_, err := svc.ImportRecurring(ctx, []dto.RecurringImportRow{{}})

	require.Error(t, err)
	assert.Equal(t, http.StatusForbidden, failure.GetCode(err))
}

func TestScheduleService_ImportPerDate_ExplicitTimes(t *testing.T) {
	svc, set := newScheduleService(t)

	rows := []dto.PerDateImportRow{
		{
			Subject:    "Networks",
			ClassCode:  "NET-02",
			RoomCode:   "B202",
			Dates:      "2026-03-02,2026-03-03",
			StartTimes: "13:00",
			EndTimes:   "14:00",
		},
	}

	set.roomRepo.EXPECT().
		ResolveCodes(gomock.Any(), []string{"B202"}).
		Return(map[string]string{"B202": "room-2"}, nil)
	set.sessionRepo.EXPECT().
		InsertBatch(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, sessions []sessionModel.Session) error {
			require.Len(t, sessions, 2)
			assert.Equal(t, "13:00", sessions[0].StartTime)
			assert.Equal(t, "14:00", sessions[0].EndTime)
			assert.Equal(t, 3, sessions[0].Slot)
			assert.Equal(t, "room-2", sessions[0].RoomID)

			return nil
		})

	res, err := svc.ImportPerDate(importerContext(), rows)

	require.NoError(t, err)
	assert.Equal(t, 1, res.SuccessCount)
	assert.Zero(t, res.FailureCount)
}

func TestScheduleService_ImportPerDate_SlotSpecifier(t *testing.T) {
	svc, set := newScheduleService(t)

	rows := []dto.PerDateImportRow{
		{
			Subject:   "Algorithms",
			RoomCode:  "A101",
			Dates:     "2026-03-02",
			IsNewSlot: true,
			Slots:     "1-2",
		},
	}

	set.roomRepo.EXPECT().
		ResolveCodes(gomock.Any(), []string{"A101"}).
		Return(map[string]string{"A101": "room-1"}, nil)
	set.sessionRepo.EXPECT().
		InsertBatch(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, sessions []sessionModel.Session) error {
			require.Len(t, sessions, 2)
			assert.Equal(t, "07:30", sessions[0].StartTime)
			assert.Equal(t, "09:50", sessions[0].EndTime)
			assert.Equal(t, "10:00", sessions[1].StartTime)
			assert.Equal(t, "12:20", sessions[1].EndTime)

			return nil
		})

	res, err := svc.ImportPerDate(importerContext(), rows)

	require.NoError(t, err)
	assert.Equal(t, 1, res.SuccessCount)
}

func TestScheduleService_ImportPerDate_RowFailures(t *testing.T) {
	tests := []struct {
		name      string
		row       dto.PerDateImportRow
		setupMock func(set scheduleMockSet)
		wantErr   string
	}{
		{
			name: "slot outside the regime domain",
			row: dto.PerDateImportRow{
				Subject:   "Algorithms",
				RoomCode:  "A101",
				Dates:     "2026-03-02",
				IsNewSlot: true,
				Slots:     "9",
			},
			setupMock: func(_ scheduleMockSet) {},
			wantErr:   "slot 9",
		},
		{
			name: "unknown room code",
			row: dto.PerDateImportRow{
				Subject:    "Algorithms",
				RoomCode:   "Z999",
				Dates:      "2026-03-02",
				StartTimes: "13:00",
				EndTimes:   "14:00",
			},
			setupMock: func(set scheduleMockSet) {
				set.roomRepo.EXPECT().
					ResolveCodes(gomock.Any(), []string{"Z999"}).
					Return(map[string]string{}, nil)
			},
			wantErr: "unknown room",
		},
		{
			name: "mismatched time lists",
			row: dto.PerDateImportRow{
				Subject:    "Algorithms",
				RoomCode:   "A101",
				Dates:      "2026-03-02",
				StartTimes: "13:00,15:00",
				EndTimes:   "14:00",
			},
			setupMock: func(_ scheduleMockSet) {},
			wantErr:   "differ in length",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, set := newScheduleService(t)
			tt.setupMock(set)

			res, err := svc.ImportPerDate(importerContext(), []dto.PerDateImportRow{tt.row})

			require.NoError(t, err)
			assert.Zero(t, res.SuccessCount)
			assert.Equal(t, 1, res.FailureCount)
			require.Len(t, res.Errors, 1)
			assert.Contains(t, res.Errors[0], tt.wantErr)
		})
	}
}
