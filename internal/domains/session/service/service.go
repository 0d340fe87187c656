package service

import (
	"context"
	"fmt"
	"roomtime/config"
	"roomtime/infras/otel"
	roomRepo "roomtime/internal/domains/room/repository"
	"roomtime/internal/domains/session/model/dto"
	"roomtime/internal/domains/session/repository"
	"roomtime/shared"
	"roomtime/shared/cache"
	"roomtime/shared/constant"
	gDto "roomtime/shared/dto"
	"roomtime/shared/failure"

	"github.com/rs/zerolog/log"
)

const (
	cacheGetSession    = "session:get"
	cacheGetAllSession = "session:gets"
	cacheCountSession  = "session:count"
)

type Session interface {
	Create(ctx context.Context, req dto.CreateSessionRequest) (dto.SessionResponse, error)
	GetAll(ctx context.Context, req gDto.QueryParams, filter repository.ListFilter) (dto.GetSessionsResponse, error)
	Count(ctx context.Context, req gDto.QueryParams, filter repository.ListFilter) (int, error)
	Get(ctx context.Context, id string) (dto.SessionResponse, error)
	Delete(ctx context.Context, id string) error
}

type serviceImpl struct {
	repo     repository.Session
	roomRepo roomRepo.Room
	cfg      *config.Config
	cache    cache.RedisCache
	otel     otel.Otel
}

func New(repo repository.Session, roomRepo roomRepo.Room, cfg *config.Config, cache cache.RedisCache, otel otel.Otel) Session {
	return &serviceImpl{
		repo:     repo,
		roomRepo: roomRepo,
		cfg:      cfg,
		cache:    cache,
		otel:     otel,
	}
}

// Create registers a teaching session. Sessions take effect immediately, so
// only lecturers and administrators may create them.
func (s *serviceImpl) Create(ctx context.Context, req dto.CreateSessionRequest) (res dto.SessionResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".session.Create")
	defer scope.End()
	defer scope.TraceIfError(err)

	role, _ := ctx.Value(constant.ContextKeyUserRole).(string)
	if role != constant.RoleAdmin && role != constant.RoleLecturer {
		return res, failure.Forbidden("only lecturers and administrators may create class sessions") // nolint:wrapcheck
	}

	user, _ := ctx.Value(constant.ContextKeyUserID).(string)

	session, err := req.ToModel(user)
	if err != nil {
		log.Error().Err(err).Msg("failed to parse class session request")

		return res, failure.BadRequestFromString(fmt.Sprintf("invalid date/time format: %v", err)) // nolint:wrapcheck
	}

	room, err := s.roomRepo.GetByID(ctx, session.RoomID)
	if err != nil {
		log.Error().Err(err).Msg("failed to get room")

		return res, fmt.Errorf("failed to get room: %w", err)
	}

	if room.ID == constant.Empty {
		return res, failure.NotFound("room not found") // nolint:wrapcheck
	}

	if err = s.repo.Insert(ctx, session); err != nil {
		log.Error().Err(err).Msg("failed to create class session")

		return res, err
	}

	res.FromModel(session)

	go func() {
		c := context.WithoutCancel(ctx)

		shared.InvalidateCaches(c, s.cache, cacheGetAllSession)
		shared.InvalidateCaches(c, s.cache, cacheCountSession)
		shared.InvalidateCaches(c, s.cache, constant.CacheRoomSchedule)
	}()

	return res, nil
}

func (s *serviceImpl) GetAll(ctx context.Context, req gDto.QueryParams, filter repository.ListFilter) (res dto.GetSessionsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".session.GetAll")
	defer scope.End()
	defer scope.TraceIfError(err)

	cacheKey := shared.BuildCacheKeyWithQuery(cacheGetAllSession, req, filter.RoomID, filter.ClassCode)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for class sessions")

		return res, nil
	}

	total, err := s.Count(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count class sessions")

		return res, fmt.Errorf("failed to count class sessions: %w", err)
	}

	models, err := s.repo.List(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get class sessions")

		return res, fmt.Errorf("failed to get class sessions: %w", err)
	}

	res.FromModels(models, total, req.Limit)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save class sessions to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Count(ctx context.Context, req gDto.QueryParams, filter repository.ListFilter) (res int, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".session.Count")
	defer scope.End()
	defer scope.TraceIfError(err)

	cacheKey := shared.BuildCacheKeyWithQuery(cacheCountSession, req, filter.RoomID, filter.ClassCode)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		return res, nil
	}

	res, err = s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count class sessions")

		return res, fmt.Errorf("failed to count class sessions: %w", err)
	}

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save class session count to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.SessionResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".session.Get")
	defer scope.End()
	defer scope.TraceIfError(err)

	cacheKey := shared.BuildCacheKey(cacheGetSession, id)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for class session")

		return res, nil
	}

	session, err := s.repo.GetByID(ctx, id)
	if err != nil {
		log.Error().Err(err).Msg("failed to get class session")

		return res, fmt.Errorf("failed to get class session: %w", err)
	}

	if session.ID == constant.Empty {
		return res, failure.NotFound("class session not found") // nolint:wrapcheck
	}

	res.FromModel(session)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save class session to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Delete(ctx context.Context, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".session.Delete")
	defer scope.End()
	defer scope.TraceIfError(err)

	role, _ := ctx.Value(constant.ContextKeyUserRole).(string)
	if role != constant.RoleAdmin && role != constant.RoleLecturer {
		return failure.Forbidden("only lecturers and administrators may delete class sessions") // nolint:wrapcheck
	}

	session, err := s.repo.GetByID(ctx, id)
	if err != nil {
		log.Error().Err(err).Msg("failed to get class session")

		return fmt.Errorf("failed to get class session: %w", err)
	}

	if session.ID == constant.Empty {
		return failure.NotFound("class session not found") // nolint:wrapcheck
	}

	if err = s.repo.Delete(ctx, id); err != nil {
		log.Error().Err(err).Msg("failed to delete class session")

		return err
	}

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Delete(c, shared.BuildCacheKey(cacheGetSession, id)); err != nil {
			log.Error().Err(err).Msg("failed to delete class session from cache")
		}

		shared.InvalidateCaches(c, s.cache, cacheGetAllSession)
		shared.InvalidateCaches(c, s.cache, cacheCountSession)
		shared.InvalidateCaches(c, s.cache, constant.CacheRoomSchedule)
	}()

	return nil
}
