package service

import (
	"context"
	"fmt"
	"roomtime/config"
	"roomtime/infras/otel"
	"roomtime/infras/postgres"
	"roomtime/internal/domains/booking/model"
	"roomtime/internal/domains/booking/model/dto"
	"roomtime/internal/domains/booking/repository"
	roomRepo "roomtime/internal/domains/room/repository"
	sessionRepo "roomtime/internal/domains/session/repository"
	"roomtime/internal/timetable"
	"roomtime/shared"
	"roomtime/shared/cache"
	"roomtime/shared/constant"
	gDto "roomtime/shared/dto"
	"roomtime/shared/failure"
	"roomtime/shared/timezone"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

const (
	cacheGetBooking    = "booking:get"
	cacheGetAllBooking = "booking:gets"
	cacheCountBooking  = "booking:count"
)

type Booking interface {
	Create(ctx context.Context, req dto.CreateBookingRequest) (dto.BookingResponse, error)
	GetAll(ctx context.Context, req gDto.QueryParams, filter repository.ListFilter) (dto.GetBookingsResponse, error)
	Count(ctx context.Context, req gDto.QueryParams, filter repository.ListFilter) (int, error)
	Get(ctx context.Context, id string) (dto.BookingResponse, error)
	UpdateStatus(ctx context.Context, req dto.UpdateBookingStatusRequest, id string) (dto.UpdateBookingStatusResponse, error)
}

type serviceImpl struct {
	repo        repository.Booking
	roomRepo    roomRepo.Room
	sessionRepo sessionRepo.Session
	db          postgres.Transactor
	cfg         *config.Config
	cache       cache.RedisCache
	otel        otel.Otel
}

func New(
	repo repository.Booking,
	roomRepo roomRepo.Room,
	sessionRepo sessionRepo.Session,
	db postgres.Transactor,
	cfg *config.Config,
	cache cache.RedisCache,
	otel otel.Otel,
) Booking {
	return &serviceImpl{
		repo:        repo,
		roomRepo:    roomRepo,
		sessionRepo: sessionRepo,
		db:          db,
		cfg:         cfg,
		cache:       cache,
		otel:        otel,
	}
}

// settings snapshots the configured booking window for one validating call.
func (s *serviceImpl) settings() timetable.Settings {
	return timetable.Settings{
		StartHour:           s.cfg.Booking.StartHour,
		EndHour:             s.cfg.Booking.EndHour,
		SlotDurationMinutes: s.cfg.Booking.SlotDurationMinutes,
	}
}

// Create validates the request against the room's occupancy and persists the
// booking as pending. The conflict read and the insert run in one transaction,
// with a row lock on the room so concurrent writes on the same room serialize.
func (s *serviceImpl) Create(ctx context.Context, req dto.CreateBookingRequest) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.Create")
	defer scope.End()
	defer scope.TraceIfError(err)

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)
	userName, _ := ctx.Value(constant.ContextKeyUserName).(string)

	booking, err := req.ToModel(user, userName)
	if err != nil {
		log.Error().Err(err).Msg("failed to parse booking request")

		return res, failure.BadRequestFromString(fmt.Sprintf("invalid date/time format: %v", err)) // nolint:wrapcheck
	}

	err = s.db.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		room, err := s.roomRepo.GetByIDForUpdate(ctx, tx, booking.RoomID)
		if err != nil {
			return fmt.Errorf("failed to load room: %w", err)
		}

		if room.ID == constant.Empty {
			return failure.NotFound("room not found") // nolint:wrapcheck
		}

		classSpans, err := s.classSpansForDate(ctx, tx, booking)
		if err != nil {
			return err
		}

		existing, err := s.repo.ListForRoomSpanTx(ctx, tx, booking.RoomID, booking.StartAt, booking.EndAt)
		if err != nil {
			return fmt.Errorf("failed to load existing bookings: %w", err)
		}

		claims := make([]timetable.Claim, len(existing))
		for i, b := range existing {
			claims[i] = b.Claim()
		}

		if err := timetable.ValidateCreate(booking.Span(), booking.DurationHours, s.settings(), room.Status, classSpans, claims); err != nil {
			return err
		}

		return s.repo.InsertTx(ctx, tx, booking)
	})

	if err != nil {
		log.Error().Err(err).Str("roomID", booking.RoomID).Msg("failed to create booking")

		return res, err
	}

	res.FromModel(booking)

	go func() {
		c := context.WithoutCancel(ctx)

		shared.InvalidateCaches(c, s.cache, cacheGetAllBooking)
		shared.InvalidateCaches(c, s.cache, cacheCountBooking)
		shared.InvalidateCaches(c, s.cache, constant.CacheRoomSchedule)
	}()

	return res, nil
}

// classSpansForDate loads the teaching sessions sharing the booking's room and
// date and anchors them onto concrete intervals.
func (s *serviceImpl) classSpansForDate(ctx context.Context, tx *sqlx.Tx, booking model.Booking) ([]timetable.Range, error) {
	day := timezone.ToAppTime(booking.StartAt)
	date := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())

	sessions, err := s.sessionRepo.ListForRoomOnDateTx(ctx, tx, booking.RoomID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to load class sessions: %w", err)
	}

	spans := make([]timetable.Range, 0, len(sessions))

	for _, session := range sessions {
		span, err := session.Span()
		if err != nil {
			log.Warn().Err(err).Str("sessionID", session.ID).Msg("skipping class session with invalid times")

			continue
		}

		spans = append(spans, span)
	}

	return spans, nil
}

// UpdateStatus transitions a pending booking to approved or rejected. Approval
// additionally rejects every other pending booking in the room whose interval
// overlaps the approved one; the cascade diffs and the approval itself are
// applied in a single transaction.
func (s *serviceImpl) UpdateStatus(ctx context.Context, req dto.UpdateBookingStatusRequest, id string) (res dto.UpdateBookingStatusResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.UpdateStatus")
	defer scope.End()
	defer scope.TraceIfError(err)

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)

	role, _ := ctx.Value(constant.ContextKeyUserRole).(string)
	if role != constant.RoleAdmin {
		return res, failure.Forbidden("only administrators may update booking status") // nolint:wrapcheck
	}

	var (
		booking model.Booking
		changes []timetable.StatusChange
	)

	err = s.db.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		booking, err = s.repo.GetByIDForUpdate(ctx, tx, id)
		if err != nil {
			return fmt.Errorf("failed to load booking: %w", err)
		}

		if booking.ID == constant.Empty {
			return failure.NotFound("booking not found") // nolint:wrapcheck
		}

		if booking.Status != timetable.StatusPending {
			return failure.Conflict("booking is not pending") // nolint:wrapcheck
		}

		if req.Status == timetable.StatusApproved {
			// Lock the room row so the cascade scan cannot race a concurrent
			// pending insert on the same room.
			if _, err := s.roomRepo.GetByIDForUpdate(ctx, tx, booking.RoomID); err != nil {
				return fmt.Errorf("failed to lock room: %w", err)
			}

			others, err := s.repo.ListForRoomSpanTx(ctx, tx, booking.RoomID, booking.StartAt, booking.EndAt)
			if err != nil {
				return fmt.Errorf("failed to load competing bookings: %w", err)
			}

			claims := make([]timetable.Claim, len(others))
			for i, b := range others {
				claims[i] = b.Claim()
			}

			changes = timetable.CascadeApproval(booking.Claim(), claims)

			for _, change := range changes {
				if err := s.repo.UpdateStatusTx(ctx, tx, change.ID, change.NewStatus, user); err != nil {
					return err
				}
			}
		}

		if err := s.repo.UpdateStatusTx(ctx, tx, booking.ID, req.Status, user); err != nil {
			return err
		}

		booking.Status = req.Status

		return nil
	})

	if err != nil {
		log.Error().Err(err).Str("bookingID", id).Msg("failed to update booking status")

		return res, err
	}

	res.FromModel(booking, changes)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Delete(c, shared.BuildCacheKey(cacheGetBooking, id)); err != nil {
			log.Error().Err(err).Msg("failed to delete booking from cache")
		}

		shared.InvalidateCaches(c, s.cache, cacheGetAllBooking)
		shared.InvalidateCaches(c, s.cache, cacheCountBooking)
		shared.InvalidateCaches(c, s.cache, constant.CacheRoomSchedule)
	}()

	return res, nil
}

func (s *serviceImpl) GetAll(ctx context.Context, req gDto.QueryParams, filter repository.ListFilter) (res dto.GetBookingsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.GetAll")
	defer scope.End()
	defer scope.TraceIfError(err)

	cacheKey := shared.BuildCacheKeyWithQuery(cacheGetAllBooking, req, filter.RoomID, filter.Status, filter.RequestedBy)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for bookings")

		return res, nil
	}

	total, err := s.Count(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count bookings")

		return res, fmt.Errorf("failed to count bookings: %w", err)
	}

	models, err := s.repo.List(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get bookings")

		return res, fmt.Errorf("failed to get bookings: %w", err)
	}

	res.FromModels(models, total, req.Limit)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save bookings to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Count(ctx context.Context, req gDto.QueryParams, filter repository.ListFilter) (res int, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.Count")
	defer scope.End()
	defer scope.TraceIfError(err)

	cacheKey := shared.BuildCacheKeyWithQuery(cacheCountBooking, req, filter.RoomID, filter.Status, filter.RequestedBy)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		return res, nil
	}

	res, err = s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count bookings")

		return res, fmt.Errorf("failed to count bookings: %w", err)
	}

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save booking count to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.Get")
	defer scope.End()
	defer scope.TraceIfError(err)

	cacheKey := shared.BuildCacheKey(cacheGetBooking, id)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for booking")

		return res, nil
	}

	booking, err := s.repo.GetByID(ctx, id)
	if err != nil {
		log.Error().Err(err).Msg("failed to get booking")

		return res, fmt.Errorf("failed to get booking: %w", err)
	}

	if booking.ID == constant.Empty {
		return res, failure.NotFound("booking not found") // nolint:wrapcheck
	}

	res.FromModel(booking)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save booking to cache")
		}
	}()

	return res, nil
}
