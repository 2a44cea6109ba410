package main

import (
	"github.com/rs/zerolog/log"

	"tasktracker/config"
	"tasktracker/di"
	"tasktracker/shared/logger"
)

// @title Task Tracker API
// @version 1.0
// @description Per-user task records gated by identity provider ID tokens.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Identity provider ID token, prefixed with "Bearer ".
func main() {
	cfg := config.Get()

	logger.InitLogger()

	logger.SetLogLevel(cfg)

	if err := cfg.ValidateServer(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	http, err := di.InitializeService()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize service")
	}

	http.Serve()
}
