//go:build wireinject
// +build wireinject

package di

import (
	"roomdesk/config"
	"roomdesk/infras/jwt"
	"roomdesk/infras/kafka"
	"roomdesk/infras/otel"
	"roomdesk/infras/postgres"
	"roomdesk/infras/redis"
	"roomdesk/infras/webhook"
	"roomdesk/internal/events"
	"roomdesk/permissions"
	"roomdesk/shared/cache"
	"roomdesk/transport/http"
	"roomdesk/transport/http/middleware"
	"roomdesk/transport/http/router"

	"github.com/google/wire"

	authService "roomdesk/internal/domains/auth/service"
	bookingRepository "roomdesk/internal/domains/booking/repository"
	bookingService "roomdesk/internal/domains/booking/service"
	roomRepository "roomdesk/internal/domains/room/repository"
	roomService "roomdesk/internal/domains/room/service"
	supportService "roomdesk/internal/domains/support/service"
	userRepository "roomdesk/internal/domains/user/repository"
	userService "roomdesk/internal/domains/user/service"

	authHandler "roomdesk/internal/handlers/auth"
	bookingHandler "roomdesk/internal/handlers/booking"
	roomHandler "roomdesk/internal/handlers/room"
	supportHandler "roomdesk/internal/handlers/support"
	userHandler "roomdesk/internal/handlers/user"
)

var configurations = wire.NewSet(
	config.Get,
	permissions.Get,
)

var infrastructures = wire.NewSet(
	postgres.New,
	otel.New,
	redis.New,
	jwt.New,
	kafka.New,
	webhook.New,
)

var middlewares = wire.NewSet(
	middleware.NewAppMiddleware,
	middleware.NewAuthRoleMiddleware,
)

var sharedHelpers = wire.NewSet(
	cache.NewRedisCache,
	events.NewPublisher,
)

var authDomain = wire.NewSet(
	userRepository.New,
	authService.New,
)

var userDomain = wire.NewSet(
	userService.New,
)

var roomDomain = wire.NewSet(
	roomRepository.New,
	roomService.New,
)

var bookingDomain = wire.NewSet(
	bookingRepository.New,
	bookingService.New,
)

var supportDomain = wire.NewSet(
	supportService.New,
)

var domains = wire.NewSet(
	authDomain,
	userDomain,
	roomDomain,
	bookingDomain,
	supportDomain,
)

var routing = wire.NewSet(
	wire.Struct(new(router.DomainHandlers), "*"),
	authHandler.New,
	roomHandler.New,
	bookingHandler.New,
	userHandler.New,
	supportHandler.New,
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
