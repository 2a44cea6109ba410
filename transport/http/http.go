package http

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"tasktracker/config"
	"tasktracker/infras/mongo"
	"tasktracker/shared/constant"
	"tasktracker/transport/http/response"
	"tasktracker/transport/http/router"
)

type ServerState int32

const (
	ServerStateReady ServerState = iota + 1
	ServerStateInGracePeriod
	ServerStateInCleanupPeriod
)

const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 10 * time.Second
)

type HTTP struct {
	Config *config.Config
	Router router.Router
	DB     *mongo.Connection

	state     atomic.Int32
	mux       *chi.Mux
	server    *http.Server
	setupOnce sync.Once
}

func New(cfg *config.Config, r router.Router, db *mongo.Connection) *HTTP {
	return &HTTP{
		Config: cfg,
		Router: r,
		DB:     db,
	}
}

// Serve listens until the process receives SIGINT or SIGTERM and the shutdown periods elapse.
func (h *HTTP) Serve() {
	h.setup()

	h.server = &http.Server{
		Addr:              net.JoinHostPort(h.Config.Server.Host, h.Config.Server.Port),
		Handler:           h.mux,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	done := make(chan struct{})
	h.setupGracefulShutdown(done)

	log.Info().Str("port", h.Config.Server.Port).Msg("Starting up HTTP server.")

	if err := h.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("Failed to start HTTP server")
	}

	<-done
}

// ServeHTTP lets the service run behind a platform that supplies its own listener.
func (h *HTTP) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.setup()

	h.mux.ServeHTTP(w, r)
}

func (h *HTTP) State() ServerState {
	return ServerState(h.state.Load())
}

func (h *HTTP) setState(state ServerState) {
	h.state.Store(int32(state))
}

func (h *HTTP) setup() {
	h.setupOnce.Do(func() {
		h.setupRoutes()
		h.setState(ServerStateReady)
	})
}

func (h *HTTP) setupRoutes() {
	h.mux = chi.NewRouter()

	h.Router.SetupRoutes(h.mux)

	h.mux.Get("/health", h.health)
}

func (h *HTTP) health(w http.ResponseWriter, _ *http.Request) {
	if h.State() != ServerStateReady {
		response.WithPreparingShutdown(w)

		return
	}

	response.WithHealthy(w)
}

func (h *HTTP) setupGracefulShutdown(done chan struct{}) {
	serverStateCh := make(chan os.Signal, 1)

	signal.Notify(serverStateCh, os.Interrupt, syscall.SIGTERM)

	go h.respondToSigterm(serverStateCh, done)
}

func (h *HTTP) respondToSigterm(signals chan os.Signal, done chan struct{}) {
	defer close(done)

	<-signals

	if h.Config.Server.Env == constant.ServerEnvDevelopment {
		log.Warn().Msg("Received SIGTERM. Shutting down now.")
	} else {
		shutdownConfig := h.Config.Server.Shutdown

		log.Info().Msg("Received SIGTERM.")
		log.Info().Int64("seconds", shutdownConfig.GracePeriodSeconds).Msg("Entering grace period.")

		h.setState(ServerStateInGracePeriod)

		time.Sleep(time.Duration(shutdownConfig.GracePeriodSeconds) * time.Second)

		log.Info().Int64("seconds", shutdownConfig.CleanupPeriodSeconds).Msg("Entering cleanup period.")

		h.setState(ServerStateInCleanupPeriod)

		time.Sleep(time.Duration(shutdownConfig.CleanupPeriodSeconds) * time.Second)
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := h.server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Failed to shut down HTTP server cleanly")
	}

	if err := h.DB.Close(ctx); err != nil {
		log.Error().Err(err).Msg("Failed to disconnect from database")
	}

	log.Info().Msg("Cleaning up completed. Shutting down now.")
}
