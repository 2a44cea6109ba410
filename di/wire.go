//go:build wireinject
// +build wireinject

package di

import (
	"github.com/google/wire"

	"tasktracker/config"
	"tasktracker/infras/identity"
	"tasktracker/infras/metrics"
	"tasktracker/infras/mongo"
	"tasktracker/infras/otel"
	"tasktracker/infras/redis"
	"tasktracker/shared/cache"
	"tasktracker/transport/http"
	"tasktracker/transport/http/middleware"
	"tasktracker/transport/http/router"

	taskRepository "tasktracker/internal/domains/task/repository"
	taskService "tasktracker/internal/domains/task/service"
	taskHandler "tasktracker/internal/handlers/task"
)

var configurations = wire.NewSet(
	config.Get,
)

var infrastructures = wire.NewSet(
	mongo.New,
	otel.New,
	redis.New,
	identity.New,
	metrics.New,
)

var middlewares = wire.NewSet(
	middleware.NewAppMiddleware,
	middleware.NewAuthMiddleware,
)

var sharedHelpers = wire.NewSet(
	cache.NewRedisCache,
)

var taskDomain = wire.NewSet(
	taskRepository.New,
	taskService.New,
)

var domains = wire.NewSet(
	taskDomain,
)

var routing = wire.NewSet(
	wire.Struct(new(router.DomainHandlers), "*"),
	taskHandler.New,
	router.New,
)

func InitializeService() (*http.HTTP, error) {
	wire.Build(
		configurations,
		infrastructures,
		middlewares,
		sharedHelpers,
		domains,
		routing,
		http.New,
	)

	return &http.HTTP{}, nil
}
