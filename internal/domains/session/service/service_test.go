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
	roomMocks "roomtime/internal/domains/room/mocks"
	roomModel "roomtime/internal/domains/room/model"
	sessionMocks "roomtime/internal/domains/session/mocks"
	"roomtime/internal/domains/session/model"
	"roomtime/internal/domains/session/model/dto"
	"roomtime/internal/domains/session/service"
	cacheMocks "roomtime/shared/cache/mocks"
	"roomtime/shared/constant"
	"roomtime/shared/failure"
)

type sessionMockSet struct {
	repo     *sessionMocks.MockSession
	roomRepo *roomMocks.MockRoom
	cache    *cacheMocks.MockRedisCache
}

func newSessionService(t *testing.T) (service.Session, sessionMockSet) {
	t.Helper()

	ctrl := gomock.NewController(t)

	set := sessionMockSet{
		repo:     sessionMocks.NewMockSession(ctrl),
		roomRepo: roomMocks.NewMockRoom(ctrl),
		cache:    cacheMocks.NewMockRedisCache(ctrl),
	}

	cfg := &config.Config{}
	cfg.Cache.TTL = 3600

	set.cache.EXPECT().Save(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	set.cache.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	set.cache.EXPECT().Clear(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	svc := service.New(set.repo, set.roomRepo, cfg, set.cache, mocks.NewOtel())

	return svc, set
}

func roleContext(role string) context.Context {
	ctx := context.WithValue(context.Background(), constant.ContextKeyUserID, "user-1")

	return context.WithValue(ctx, constant.ContextKeyUserRole, role)
}

func TestSessionService_Create(t *testing.T) {
	req := dto.CreateSessionRequest{
		RoomID:    "room-1",
		Date:      "2026-03-02",
		StartTime: "07:30",
		EndTime:   "09:50",
		Subject:   "Operating Systems",
		ClassCode: "OS-01",
	}

	tests := []struct {
		name      string
		role      string
		req       dto.CreateSessionRequest
		setupMock func(set sessionMockSet)
		wantCode  int
	}{
		{
			name: "lecturer creates a session",
			role: constant.RoleLecturer,
			req:  req,
			setupMock: func(set sessionMockSet) {
				set.roomRepo.EXPECT().GetByID(gomock.Any(), "room-1").Return(roomModel.Room{ID: "room-1"}, nil)
				set.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(nil)
			},
		},
		{
			name:      "student is forbidden",
			role:      constant.RoleStudent,
			req:       req,
			setupMock: func(_ sessionMockSet) {},
			wantCode:  http.StatusForbidden,
		},
		{
			name: "room does not exist",
			role: constant.RoleAdmin,
			req:  req,
			setupMock: func(set sessionMockSet) {
				set.roomRepo.EXPECT().GetByID(gomock.Any(), "room-1").Return(roomModel.Room{}, nil)
			},
			wantCode: http.StatusNotFound,
		},
		{
			name: "invalid date is rejected",
			role: constant.RoleLecturer,
			req: dto.CreateSessionRequest{
				RoomID:    "room-1",
				Date:      "02-03-2026",
				StartTime: "07:30",
				EndTime:   "09:50",
				Subject:   "Operating Systems",
			},
			setupMock: func(_ sessionMockSet) {},
			wantCode:  http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, set := newSessionService(t)
			tt.setupMock(set)

			res, err := svc.Create(roleContext(tt.role), tt.req)

			if tt.wantCode != 0 {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, failure.GetCode(err))

				return
			}

			require.NoError(t, err)
			assert.Equal(t, "room-1", res.RoomID)
			assert.Equal(t, 1, res.Slot)
			assert.Equal(t, "07:30", res.StartTime)
			assert.Equal(t, "09:50", res.EndTime)
		})
	}
}

func TestSessionService_Get_NotFound(t *testing.T) {
	svc, set := newSessionService(t)

	set.cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("cache miss"))
	set.repo.EXPECT().GetByID(gomock.Any(), "missing").Return(model.Session{}, nil)

	_, err := svc.Get(context.Background(), "missing")

	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, failure.GetCode(err))
}

func TestSessionService_Delete(t *testing.T) {
	svc, set := newSessionService(t)

	set.repo.EXPECT().GetByID(gomock.Any(), "session-1").Return(model.Session{ID: "session-1"}, nil)
	set.repo.EXPECT().Delete(gomock.Any(), "session-1").Return(nil)

	err := svc.Delete(roleContext(constant.RoleLecturer), "session-1")

	require.NoError(t, err)
}

func TestSessionService_Delete_InvalidatesRoomSchedule(t *testing.T) {
	ctrl := gomock.NewController(t)

	set := sessionMockSet{
		repo:     sessionMocks.NewMockSession(ctrl),
		roomRepo: roomMocks.NewMockRoom(ctrl),
		cache:    cacheMocks.NewMockRedisCache(ctrl),
	}

	cfg := &config.Config{}
	cfg.Cache.TTL = 3600

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

	svc := service.New(set.repo, set.roomRepo, cfg, set.cache, mocks.NewOtel())

	set.repo.EXPECT().GetByID(gomock.Any(), "session-1").Return(model.Session{ID: "session-1"}, nil)
	set.repo.EXPECT().Delete(gomock.Any(), "session-1").Return(nil)

	err := svc.Delete(roleContext(constant.RoleLecturer), "session-1")
	require.NoError(t, err)

	want := constant.CacheRoomSchedule + constant.Asterix
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

func TestSessionService_Delete_Forbidden(t *testing.T) {
	svc, _ := newSessionService(t)

	err := svc.Delete(roleContext(constant.RoleStudent), "session-1")

	require.Error(t, err)
	assert.Equal(t, http.StatusForbidden, failure.GetCode(err))
}
