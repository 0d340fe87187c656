package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=../mocks/service_mock.go -package=mocks

import (
	"context"
	"fmt"
	"sort"
	"time"

	"roomtime/config"
	"roomtime/infras/otel"
	bookingRepo "roomtime/internal/domains/booking/repository"
	roomRepo "roomtime/internal/domains/room/repository"
	"roomtime/internal/domains/schedule/model/dto"
	sessionRepo "roomtime/internal/domains/session/repository"
	"roomtime/internal/timetable"
	"roomtime/shared"
	"roomtime/shared/cache"
	"roomtime/shared/constant"
	"roomtime/shared/failure"
	"roomtime/shared/timezone"

	"github.com/rs/zerolog/log"
)

type Schedule interface {
	RoomSchedule(ctx context.Context, roomID string, from, to time.Time) (dto.RoomScheduleResponse, error)
	ImportRecurring(ctx context.Context, rows []dto.RecurringImportRow) (dto.ImportResult, error)
	ImportPerDate(ctx context.Context, rows []dto.PerDateImportRow) (dto.ImportResult, error)
}

type serviceImpl struct {
	roomRepo    roomRepo.Room
	bookingRepo bookingRepo.Booking
	sessionRepo sessionRepo.Session
	cfg         *config.Config
	cache       cache.RedisCache
	otel        otel.Otel
}

func New(
	roomRepo roomRepo.Room,
	bookingRepo bookingRepo.Booking,
	sessionRepo sessionRepo.Session,
	cfg *config.Config,
	cache cache.RedisCache,
	otel otel.Otel,
) Schedule {
	return &serviceImpl{
		roomRepo:    roomRepo,
		bookingRepo: bookingRepo,
		sessionRepo: sessionRepo,
		cfg:         cfg,
		cache:       cache,
		otel:        otel,
	}
}

// occupancy pairs an entry with its start instant so the merged list can be
// sorted before the times are formatted.
type occupancy struct {
	entry dto.OccupancyEntry
	start time.Time
}

// RoomSchedule merges a room's bookings and teaching sessions over an inclusive
// date range into one time-ordered occupancy view. Rejected bookings are
// excluded; sessions carry approved status since they have no approval
// lifecycle.
func (s *serviceImpl) RoomSchedule(ctx context.Context, roomID string, from, to time.Time) (res dto.RoomScheduleResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".schedule.RoomSchedule")
	defer scope.End()
	defer scope.TraceIfError(err)

	cacheKey := shared.BuildCacheKey(constant.CacheRoomSchedule, roomID,
		from.Format(constant.DateOnlyFormat), to.Format(constant.DateOnlyFormat))

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for room schedule")

		return res, nil
	}

	room, err := s.roomRepo.GetByID(ctx, roomID)
	if err != nil {
		log.Error().Err(err).Msg("failed to get room")

		return res, fmt.Errorf("failed to get room: %w", err)
	}

	if room.ID == constant.Empty {
		return res, failure.NotFound("room not found") // nolint:wrapcheck
	}

	// The range is inclusive of the end date, so bookings intersect
	// [from, to+1day) while sessions match on the date column directly.
	rangeEnd := to.AddDate(0, 0, 1)

	bookings, err := s.bookingRepo.ListForRoomSpan(ctx, roomID, from, rangeEnd)
	if err != nil {
		log.Error().Err(err).Msg("failed to list bookings for room")

		return res, fmt.Errorf("failed to list bookings for room: %w", err)
	}

	sessions, err := s.sessionRepo.ListForRoomDates(ctx, roomID, from, to)
	if err != nil {
		log.Error().Err(err).Msg("failed to list class sessions for room")

		return res, fmt.Errorf("failed to list class sessions for room: %w", err)
	}

	entries := make([]occupancy, 0, len(bookings)+len(sessions))

	for _, booking := range bookings {
		if booking.Status == timetable.StatusRejected {
			continue
		}

		entries = append(entries, occupancy{
			start: booking.StartAt,
			entry: dto.OccupancyEntry{
				ID:              booking.ID,
				RoomID:          room.ID,
				RoomName:        room.Name,
				RequestedBy:     booking.RequestedBy,
				RequestedByName: booking.RequestedByName,
				Start:           timezone.Format(booking.StartAt, constant.DateFormat),
				End:             timezone.Format(booking.EndAt, constant.DateFormat),
				DurationHours:   booking.DurationHours,
				Description:     booking.Reason,
				Status:          booking.Status,
				Source:          dto.SourceBooking,
				CreatedAt:       timezone.Format(booking.CreatedAt, constant.DateFormat),
			},
		})
	}

	for _, session := range sessions {
		span, err := session.Span()
		if err != nil {
			log.Warn().Err(err).Str("sessionID", session.ID).Msg("skipping class session with invalid times")

			continue
		}

		description := session.Subject
		if session.ClassCode != constant.Empty {
			description = fmt.Sprintf("%s (%s)", session.Subject, session.ClassCode)
		}

		entries = append(entries, occupancy{
			start: span.Start,
			entry: dto.OccupancyEntry{
				ID:              session.ID,
				RoomID:          room.ID,
				RoomName:        room.Name,
				RequestedBy:     session.LecturerContact,
				RequestedByName: session.LecturerName,
				Start:           timezone.Format(span.Start, constant.DateFormat),
				End:             timezone.Format(span.End, constant.DateFormat),
				DurationHours:   int(span.End.Sub(span.Start).Minutes()) / 60,
				Description:     description,
				Status:          timetable.StatusApproved,
				Source:          dto.SourceClass,
				CreatedAt:       timezone.Format(session.CreatedAt, constant.DateFormat),
			},
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].start.Before(entries[j].start)
	})

	res.RoomID = room.ID
	res.RoomName = room.Name
	res.Entries = make([]dto.OccupancyEntry, len(entries))

	for i, e := range entries {
		res.Entries[i] = e.entry
	}

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save room schedule to cache")
		}
	}()

	return res, nil
}
