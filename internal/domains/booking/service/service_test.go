package service_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"roomtime/config"
	pgMocks "roomtime/infras/postgres/mocks"
	bookingMocks "roomtime/internal/domains/booking/mocks"
	"roomtime/internal/domains/booking/model"
	"roomtime/internal/domains/booking/model/dto"
	"roomtime/internal/domains/booking/service"
	roomMocks "roomtime/internal/domains/room/mocks"
	roomModel "roomtime/internal/domains/room/model"
	sessionMocks "roomtime/internal/domains/session/mocks"
	sessionModel "roomtime/internal/domains/session/model"
	"roomtime/infras/otel/mocks"
	"roomtime/internal/timetable"
	cacheMocks "roomtime/shared/cache/mocks"
	"roomtime/shared/constant"
	"roomtime/shared/failure"
)

type bookingMockSet struct {
	repo        *bookingMocks.MockBooking
	roomRepo    *roomMocks.MockRoom
	sessionRepo *sessionMocks.MockSession
	db          *pgMocks.MockTransactor
	cache       *cacheMocks.MockRedisCache
}

func newBookingService(t *testing.T) (service.Booking, bookingMockSet) {
	t.Helper()

	ctrl := gomock.NewController(t)

	set := bookingMockSet{
		repo:        bookingMocks.NewMockBooking(ctrl),
		roomRepo:    roomMocks.NewMockRoom(ctrl),
		sessionRepo: sessionMocks.NewMockSession(ctrl),
		db:          pgMocks.NewMockTransactor(ctrl),
		cache:       cacheMocks.NewMockRedisCache(ctrl),
	}

	cfg := &config.Config{}
	cfg.Cache.TTL = 3600
	cfg.Booking.StartHour = 7
	cfg.Booking.EndHour = 22
	cfg.Booking.SlotDurationMinutes = 60

	// Cache writes and invalidations happen in background goroutines.
	set.cache.EXPECT().Save(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	set.cache.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	set.cache.EXPECT().Clear(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	svc := service.New(set.repo, set.roomRepo, set.sessionRepo, set.db, cfg, set.cache, mocks.NewOtel())

	return svc, set
}

func passthroughTx(set bookingMockSet) {
	set.db.EXPECT().
		WithTransaction(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, fn func(tx *sqlx.Tx) error) error {
			return fn(nil)
		})
}

func requesterContext(role string) context.Context {
	ctx := context.WithValue(context.Background(), constant.ContextKeyUserID, "user-1")
	ctx = context.WithValue(ctx, constant.ContextKeyUserName, "User One")

	return context.WithValue(ctx, constant.ContextKeyUserRole, role)
}

func availableRoom() roomModel.Room {
	return roomModel.Room{ID: "room-1", Code: "A101", Name: "Lab A101", Status: roomModel.StatusAvailable}
}

func TestBookingService_Create(t *testing.T) {
	at := func(hour, minute int) time.Time {
		return time.Date(2026, 3, 2, hour, minute, 0, 0, time.UTC)
	}

	tests := []struct {
		name      string
		req       dto.CreateBookingRequest
		setupMock func(set bookingMockSet)
		wantCode  int
	}{
		{
			name: "successful creation in an empty room",
			req: dto.CreateBookingRequest{
				RoomID:        "room-1",
				StartAt:       "2026-03-02T09:00:00Z",
				DurationHours: 1,
				Reason:        "thesis defense",
			},
			setupMock: func(set bookingMockSet) {
				passthroughTx(set)
				set.roomRepo.EXPECT().GetByIDForUpdate(gomock.Any(), gomock.Any(), "room-1").Return(availableRoom(), nil)
				set.sessionRepo.EXPECT().ListForRoomOnDateTx(gomock.Any(), gomock.Any(), "room-1", gomock.Any()).Return(nil, nil)
				set.repo.EXPECT().ListForRoomSpanTx(gomock.Any(), gomock.Any(), "room-1", gomock.Any(), gomock.Any()).Return(nil, nil)
				set.repo.EXPECT().InsertTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
			},
		},
		{
			name: "room does not exist",
			req: dto.CreateBookingRequest{
				RoomID:        "missing",
				StartAt:       "2026-03-02T09:00:00Z",
				DurationHours: 1,
			},
			setupMock: func(set bookingMockSet) {
				passthroughTx(set)
				set.roomRepo.EXPECT().GetByIDForUpdate(gomock.Any(), gomock.Any(), "missing").Return(roomModel.Room{}, nil)
			},
			wantCode: http.StatusNotFound,
		},
		{
			name: "duration does not match the configured slot",
			req: dto.CreateBookingRequest{
				RoomID:        "room-1",
				StartAt:       "2026-03-02T09:00:00Z",
				DurationHours: 2,
			},
			setupMock: func(set bookingMockSet) {
				passthroughTx(set)
				set.roomRepo.EXPECT().GetByIDForUpdate(gomock.Any(), gomock.Any(), "room-1").Return(availableRoom(), nil)
				set.sessionRepo.EXPECT().ListForRoomOnDateTx(gomock.Any(), gomock.Any(), "room-1", gomock.Any()).Return(nil, nil)
				set.repo.EXPECT().ListForRoomSpanTx(gomock.Any(), gomock.Any(), "room-1", gomock.Any(), gomock.Any()).Return(nil, nil)
			},
			wantCode: http.StatusBadRequest,
		},
		{
			name: "start outside the booking window",
			req: dto.CreateBookingRequest{
				RoomID:        "room-1",
				StartAt:       "2026-03-02T06:00:00Z",
				DurationHours: 1,
			},
			setupMock: func(set bookingMockSet) {
				passthroughTx(set)
				set.roomRepo.EXPECT().GetByIDForUpdate(gomock.Any(), gomock.Any(), "room-1").Return(availableRoom(), nil)
				set.sessionRepo.EXPECT().ListForRoomOnDateTx(gomock.Any(), gomock.Any(), "room-1", gomock.Any()).Return(nil, nil)
				set.repo.EXPECT().ListForRoomSpanTx(gomock.Any(), gomock.Any(), "room-1", gomock.Any(), gomock.Any()).Return(nil, nil)
			},
			wantCode: http.StatusBadRequest,
		},
		{
			// 09:00+07:00 is 02:00 in the app timezone; the offset spelling
			// must not change the window verdict.
			name: "start hour is evaluated in the app timezone",
			req: dto.CreateBookingRequest{
				RoomID:        "room-1",
				StartAt:       "2026-03-02T09:00:00+07:00",
				DurationHours: 1,
			},
			setupMock: func(set bookingMockSet) {
				passthroughTx(set)
				set.roomRepo.EXPECT().GetByIDForUpdate(gomock.Any(), gomock.Any(), "room-1").Return(availableRoom(), nil)
				set.sessionRepo.EXPECT().ListForRoomOnDateTx(gomock.Any(), gomock.Any(), "room-1", gomock.Any()).Return(nil, nil)
				set.repo.EXPECT().ListForRoomSpanTx(gomock.Any(), gomock.Any(), "room-1", gomock.Any(), gomock.Any()).Return(nil, nil)
			},
			wantCode: http.StatusBadRequest,
		},
		{
			name: "room is hidden",
			req: dto.CreateBookingRequest{
				RoomID:        "room-1",
				StartAt:       "2026-03-02T09:00:00Z",
				DurationHours: 1,
			},
			setupMock: func(set bookingMockSet) {
				passthroughTx(set)
				hidden := availableRoom()
				hidden.Status = roomModel.StatusHidden
				set.roomRepo.EXPECT().GetByIDForUpdate(gomock.Any(), gomock.Any(), "room-1").Return(hidden, nil)
				set.sessionRepo.EXPECT().ListForRoomOnDateTx(gomock.Any(), gomock.Any(), "room-1", gomock.Any()).Return(nil, nil)
				set.repo.EXPECT().ListForRoomSpanTx(gomock.Any(), gomock.Any(), "room-1", gomock.Any(), gomock.Any()).Return(nil, nil)
			},
			wantCode: http.StatusConflict,
		},
		{
			name: "class session occupies the slot",
			req: dto.CreateBookingRequest{
				RoomID:        "room-1",
				StartAt:       "2026-03-02T09:00:00Z",
				DurationHours: 1,
			},
			setupMock: func(set bookingMockSet) {
				passthroughTx(set)
				set.roomRepo.EXPECT().GetByIDForUpdate(gomock.Any(), gomock.Any(), "room-1").Return(availableRoom(), nil)
				set.sessionRepo.EXPECT().ListForRoomOnDateTx(gomock.Any(), gomock.Any(), "room-1", gomock.Any()).Return([]sessionModel.Session{
					{
						ID:        "class-1",
						RoomID:    "room-1",
						Date:      time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
						StartTime: "09:30",
						EndTime:   "10:40",
						Subject:   "Databases",
					},
				}, nil)
				set.repo.EXPECT().ListForRoomSpanTx(gomock.Any(), gomock.Any(), "room-1", gomock.Any(), gomock.Any()).Return(nil, nil)
			},
			wantCode: http.StatusConflict,
		},
		{
			name: "approved booking occupies the slot",
			req: dto.CreateBookingRequest{
				RoomID:        "room-1",
				StartAt:       "2026-03-02T09:00:00Z",
				DurationHours: 1,
			},
			setupMock: func(set bookingMockSet) {
				passthroughTx(set)
				set.roomRepo.EXPECT().GetByIDForUpdate(gomock.Any(), gomock.Any(), "room-1").Return(availableRoom(), nil)
				set.sessionRepo.EXPECT().ListForRoomOnDateTx(gomock.Any(), gomock.Any(), "room-1", gomock.Any()).Return(nil, nil)
				set.repo.EXPECT().ListForRoomSpanTx(gomock.Any(), gomock.Any(), "room-1", gomock.Any(), gomock.Any()).Return([]model.Booking{
					{ID: "approved-1", RoomID: "room-1", StartAt: at(9, 30), EndAt: at(10, 30), Status: timetable.StatusApproved},
				}, nil)
			},
			wantCode: http.StatusConflict,
		},
		{
			name: "pending competitors never block creation",
			req: dto.CreateBookingRequest{
				RoomID:        "room-1",
				StartAt:       "2026-03-02T09:00:00Z",
				DurationHours: 1,
				Reason:        "study group",
			},
			setupMock: func(set bookingMockSet) {
				passthroughTx(set)
				set.roomRepo.EXPECT().GetByIDForUpdate(gomock.Any(), gomock.Any(), "room-1").Return(availableRoom(), nil)
				set.sessionRepo.EXPECT().ListForRoomOnDateTx(gomock.Any(), gomock.Any(), "room-1", gomock.Any()).Return(nil, nil)
				set.repo.EXPECT().ListForRoomSpanTx(gomock.Any(), gomock.Any(), "room-1", gomock.Any(), gomock.Any()).Return([]model.Booking{
					{ID: "pending-1", RoomID: "room-1", StartAt: at(9, 0), EndAt: at(10, 0), Status: timetable.StatusPending},
					{ID: "pending-2", RoomID: "room-1", StartAt: at(9, 30), EndAt: at(10, 30), Status: timetable.StatusPending},
				}, nil)
				set.repo.EXPECT().InsertTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, set := newBookingService(t)
			tt.setupMock(set)

			res, err := svc.Create(requesterContext(constant.RoleStudent), tt.req)

			if tt.wantCode != 0 {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, failure.GetCode(err))

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.req.RoomID, res.RoomID)
			assert.Equal(t, timetable.StatusPending, res.Status)
			assert.Equal(t, "user-1", res.RequestedBy)
		})
	}
}

func TestBookingService_UpdateStatus_ApproveCascades(t *testing.T) {
	svc, set := newBookingService(t)

	at := func(hour, minute int) time.Time {
		return time.Date(2026, 3, 2, hour, minute, 0, 0, time.UTC)
	}

	target := model.Booking{
		ID:     "booking-a",
		RoomID: "room-1",
		StartAt: at(9, 0), EndAt: at(10, 0),
		DurationHours: 1,
		Status:        timetable.StatusPending,
	}

	passthroughTx(set)
	set.repo.EXPECT().GetByIDForUpdate(gomock.Any(), gomock.Any(), "booking-a").Return(target, nil)
	set.roomRepo.EXPECT().GetByIDForUpdate(gomock.Any(), gomock.Any(), "room-1").Return(availableRoom(), nil)
	set.repo.EXPECT().ListForRoomSpanTx(gomock.Any(), gomock.Any(), "room-1", gomock.Any(), gomock.Any()).Return([]model.Booking{
		target,
		{ID: "booking-c", RoomID: "room-1", StartAt: at(9, 30), EndAt: at(10, 30), Status: timetable.StatusPending},
	}, nil)
	set.repo.EXPECT().UpdateStatusTx(gomock.Any(), gomock.Any(), "booking-c", timetable.StatusRejected, "admin-1").Return(nil)
	set.repo.EXPECT().UpdateStatusTx(gomock.Any(), gomock.Any(), "booking-a", timetable.StatusApproved, "admin-1").Return(nil)

	ctx := context.WithValue(context.Background(), constant.ContextKeyUserID, "admin-1")
	ctx = context.WithValue(ctx, constant.ContextKeyUserRole, constant.RoleAdmin)

	res, err := svc.UpdateStatus(ctx, dto.UpdateBookingStatusRequest{Status: timetable.StatusApproved}, "booking-a")

	require.NoError(t, err)
	assert.Equal(t, timetable.StatusApproved, res.Booking.Status)
	require.Len(t, res.CascadedRejections, 1)
	assert.Equal(t, "booking-c", res.CascadedRejections[0].ID)
	assert.Equal(t, timetable.StatusPending, res.CascadedRejections[0].OldStatus)
	assert.Equal(t, timetable.StatusRejected, res.CascadedRejections[0].NewStatus)
}

func TestBookingService_UpdateStatus_RejectDoesNotCascade(t *testing.T) {
	svc, set := newBookingService(t)

	target := model.Booking{
		ID:     "booking-a",
		RoomID: "room-1",
		StartAt: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC),
		EndAt:   time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC),
		Status:  timetable.StatusPending,
	}

	passthroughTx(set)
	set.repo.EXPECT().GetByIDForUpdate(gomock.Any(), gomock.Any(), "booking-a").Return(target, nil)
	set.repo.EXPECT().UpdateStatusTx(gomock.Any(), gomock.Any(), "booking-a", timetable.StatusRejected, "admin-1").Return(nil)

	ctx := context.WithValue(context.Background(), constant.ContextKeyUserID, "admin-1")
	ctx = context.WithValue(ctx, constant.ContextKeyUserRole, constant.RoleAdmin)

	res, err := svc.UpdateStatus(ctx, dto.UpdateBookingStatusRequest{Status: timetable.StatusRejected}, "booking-a")

	require.NoError(t, err)
	assert.Equal(t, timetable.StatusRejected, res.Booking.Status)
	assert.Empty(t, res.CascadedRejections)
}

func TestBookingService_UpdateStatus_Errors(t *testing.T) {
	tests := []struct {
		name      string
		role      string
		setupMock func(set bookingMockSet)
		wantCode  int
	}{
		{
			name:      "non-admin is forbidden",
			role:      constant.RoleStudent,
			setupMock: func(_ bookingMockSet) {},
			wantCode:  http.StatusForbidden,
		},
		{
			name: "booking not found",
			role: constant.RoleAdmin,
			setupMock: func(set bookingMockSet) {
				passthroughTx(set)
				set.repo.EXPECT().GetByIDForUpdate(gomock.Any(), gomock.Any(), "booking-a").Return(model.Booking{}, nil)
			},
			wantCode: http.StatusNotFound,
		},
		{
			name: "booking already resolved",
			role: constant.RoleAdmin,
			setupMock: func(set bookingMockSet) {
				passthroughTx(set)
				set.repo.EXPECT().GetByIDForUpdate(gomock.Any(), gomock.Any(), "booking-a").Return(model.Booking{
					ID:     "booking-a",
					RoomID: "room-1",
					Status: timetable.StatusApproved,
				}, nil)
			},
			wantCode: http.StatusConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, set := newBookingService(t)
			tt.setupMock(set)

			ctx := context.WithValue(context.Background(), constant.ContextKeyUserID, "user-1")
			ctx = context.WithValue(ctx, constant.ContextKeyUserRole, tt.role)

			_, err := svc.UpdateStatus(ctx, dto.UpdateBookingStatusRequest{Status: timetable.StatusApproved}, "booking-a")

			require.Error(t, err)
			assert.Equal(t, tt.wantCode, failure.GetCode(err))
		})
	}
}

func TestBookingService_Get(t *testing.T) {
	svc, set := newBookingService(t)

	set.cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("cache miss"))
	set.repo.EXPECT().GetByID(gomock.Any(), "booking-a").Return(model.Booking{
		ID:     "booking-a",
		RoomID: "room-1",
		Status: timetable.StatusPending,
	}, nil)

	res, err := svc.Get(context.Background(), "booking-a")

	require.NoError(t, err)
	assert.Equal(t, "booking-a", res.ID)
}

func TestBookingService_Create_InvalidatesRoomSchedule(t *testing.T) {
	ctrl := gomock.NewController(t)

	set := bookingMockSet{
		repo:        bookingMocks.NewMockBooking(ctrl),
		roomRepo:    roomMocks.NewMockRoom(ctrl),
		sessionRepo: sessionMocks.NewMockSession(ctrl),
		db:          pgMocks.NewMockTransactor(ctrl),
		cache:       cacheMocks.NewMockRedisCache(ctrl),
	}

	cfg := &config.Config{}
	cfg.Cache.TTL = 3600
	cfg.Booking.StartHour = 7
	cfg.Booking.EndHour = 22
	cfg.Booking.SlotDurationMinutes = 60

	// Invalidations run in a background goroutine, so capture the cleared
	// prefixes instead of counting calls.
	cleared := make(chan string, 8)
	set.cache.EXPECT().Save(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	set.cache.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	set.cache.EXPECT().
		Clear(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, prefix string) error {
			cleared <- prefix

			return nil
		}).
		AnyTimes()

	svc := service.New(set.repo, set.roomRepo, set.sessionRepo, set.db, cfg, set.cache, mocks.NewOtel())

	passthroughTx(set)
	set.roomRepo.EXPECT().GetByIDForUpdate(gomock.Any(), gomock.Any(), "room-1").Return(availableRoom(), nil)
	set.sessionRepo.EXPECT().ListForRoomOnDateTx(gomock.Any(), gomock.Any(), "room-1", gomock.Any()).Return(nil, nil)
	set.repo.EXPECT().ListForRoomSpanTx(gomock.Any(), gomock.Any(), "room-1", gomock.Any(), gomock.Any()).Return(nil, nil)
	set.repo.EXPECT().InsertTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

	_, err := svc.Create(requesterContext(constant.RoleStudent), dto.CreateBookingRequest{
		RoomID:        "room-1",
		StartAt:       "2026-03-02T09:00:00Z",
		DurationHours: 1,
	})

	require.NoError(t, err)
	waitForClearedPrefix(t, cleared, constant.CacheRoomSchedule+constant.Asterix)
}

func waitForClearedPrefix(t *testing.T, cleared <-chan string, want string) {
	t.Helper()

	deadline := time.After(2 * time.Second)

	for {
		select {
		case prefix := <-cleared:
			if prefix == want {
				return
			}
		case <-deadline:
			t.Fatalf("cache prefix %q was never cleared", want)
		}
	}
}

func TestBookingService_Get_NotFound(t *testing.T) {
	svc, set := newBookingService(t)

	set.cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("cache miss"))
	set.repo.EXPECT().GetByID(gomock.Any(), "missing").Return(model.Booking{}, nil)

	_, err := svc.Get(context.Background(), "missing")

	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, failure.GetCode(err))
}
