package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"

	"tasktracker/config"
	"tasktracker/internal/client/api"
	"tasktracker/internal/client/identity"
	"tasktracker/internal/client/session"
	"tasktracker/internal/client/tui"
	"tasktracker/shared/logger"
)

func main() {
	cfg := config.Get()

	closer, err := logger.InitFileLogger(cfg.Client.LogFile)
	if err != nil {
		logger.InitLogger()
		log.Fatal().Err(err).Msg("Failed to open log file")
	}
	defer closer.Close()

	logger.SetLogLevel(cfg)

	if err = cfg.ValidateClient(); err != nil {
		logger.InitLogger()
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	watcher := session.NewWatcher()

	identityClient, err := identity.NewFromConfig(cfg, watcher)
	if err != nil {
		logger.InitLogger()
		log.Fatal().Err(err).Msg("Failed to set up credentials store")
	}

	path := ""
	if len(os.Args) > 1 {
		path = os.Args[1]
	}

	ctx := context.Background()
	model := tui.New(ctx, identityClient, api.New(cfg.Client.APIBaseURL, identityClient, nil), path)

	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	stop := tui.Forward(program, watcher)
	defer stop()

	if _, err = program.Run(); err != nil {
		log.Error().Err(err).Msg("Client exited with error")
	}
}
