//go:build wireinject
// +build wireinject

package di

import (
	"roomtime/config"
	"roomtime/infras/jwt"
	"roomtime/infras/otel"
	"roomtime/infras/postgres"
	"roomtime/infras/redis"
	"roomtime/shared/cache"
	"roomtime/transport/http"
	"roomtime/transport/http/middleware"
	"roomtime/transport/http/router"

	bookingRepository "roomtime/internal/domains/booking/repository"
	bookingService "roomtime/internal/domains/booking/service"
	roomRepository "roomtime/internal/domains/room/repository"
	roomService "roomtime/internal/domains/room/service"
	scheduleService "roomtime/internal/domains/schedule/service"
	sessionRepository "roomtime/internal/domains/session/repository"
	sessionService "roomtime/internal/domains/session/service"

	bookingHandler "roomtime/internal/handlers/booking"
	roomHandler "roomtime/internal/handlers/room"
	scheduleHandler "roomtime/internal/handlers/schedule"
	sessionHandler "roomtime/internal/handlers/session"

	"github.com/google/wire"
)

var configurations = wire.NewSet(
	config.Get,
)

var infrastructures = wire.NewSet(
	postgres.New,
	wire.Bind(new(postgres.Transactor), new(*postgres.Connection)),
	otel.New,
	redis.New,
	jwt.New,
)

var middlewares = wire.NewSet(
	middleware.NewAppMiddleware,
	middleware.NewAuthMiddleware,
)

var sharedHelpers = wire.NewSet(
	cache.NewRedisCache,
)

var roomDomain = wire.NewSet(
	roomRepository.New,
	roomService.New,
)

var bookingDomain = wire.NewSet(
	bookingRepository.New,
	bookingService.New,
)

var sessionDomain = wire.NewSet(
	sessionRepository.New,
	sessionService.New,
)

var scheduleDomain = wire.NewSet(
	scheduleService.New,
)

var domains = wire.NewSet(
	roomDomain,
	bookingDomain,
	sessionDomain,
	scheduleDomain,
)

var routing = wire.NewSet(
	wire.Struct(new(router.DomainHandlers), "*"),
	roomHandler.New,
	bookingHandler.New,
	sessionHandler.New,
	scheduleHandler.New,
	router.New,
)

func InitializeService() *http.HTTP {
	wire.Build(
		configurations,
		infrastructures,
		middlewares,
		sharedHelpers,
		domains,
		routing,
		http.New,
	)

	return &http.HTTP{}
}
