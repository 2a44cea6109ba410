package router

import (
	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "tasktracker/docs" // registers the swagger document
	"tasktracker/infras/metrics"
	"tasktracker/internal/handlers/task"
	"tasktracker/transport/http/middleware"
)

type DomainHandlers struct {
	Task task.Handler
}

type Router struct {
	DomainHandlers DomainHandlers
	App            middleware.AppMiddleware
	Metrics        *metrics.Metrics
}

func (r *Router) SetupRoutes(router chi.Router) {
	router.Use(r.App.RequestID, r.App.CORS(), r.App.Tracing, r.App.Metrics)

	router.Handle("/metrics", r.Metrics.Handler())
	router.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	router.Route("/api", func(routerGroup chi.Router) {
		routerGroup.Use(r.App.RateLimit())

		r.DomainHandlers.Task.Router(routerGroup)
	})
}

func New(domainHandlers DomainHandlers, app middleware.AppMiddleware, metrics *metrics.Metrics) Router {
	return Router{
		DomainHandlers: domainHandlers,
		App:            app,
		Metrics:        metrics,
	}
}
