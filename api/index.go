package handler

import (
	"net/http"
	"sync"

	"github.com/rs/zerolog/log"

	"tasktracker/config"
	"tasktracker/di"
	"tasktracker/shared/logger"
	tHTTP "tasktracker/transport/http"
	"tasktracker/transport/http/response"
)

var (
	once    sync.Once
	service *tHTTP.HTTP
	initErr error
)

// Handler is the serverless entry point. The service is built on the first request
// and reused while the instance stays warm.
func Handler(w http.ResponseWriter, r *http.Request) {
	r.RequestURI = r.URL.String()

	once.Do(func() {
		cfg := config.Get()

		logger.InitLogger()

		logger.SetLogLevel(cfg)

		if initErr = cfg.ValidateServer(); initErr != nil {
			return
		}

		service, initErr = di.InitializeService()
	})

	if initErr != nil {
		log.Error().Err(initErr).Msg("Service unavailable")

		response.WithPreparingShutdown(w)

		return
	}

	service.ServeHTTP(w, r)
}
