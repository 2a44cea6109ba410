package logger

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"tasktracker/config"
)

func InitLogger() {
	initLogger(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
}

// InitFileLogger sends all log output to the file at path. The terminal client
// uses it so log lines never paint over the screen.
func InitFileLogger(path string) (io.Closer, error) {
	if path == "" {
		initLogger(io.Discard)

		return io.NopCloser(nil), nil
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	initLogger(zerolog.ConsoleWriter{Out: file, TimeFormat: time.RFC3339, NoColor: true})

	return file, nil
}

func initLogger(output io.Writer) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(zerolog.TraceLevel)

	log.Logger = log.Output(output)
	log.Trace().Msg("Zerolog initialized.")
}

func ErrorWithStack(err error) {
	log.Error().Msgf("%+v", errors.WithStack(err))
}

func SetLogLevel(config *config.Config) {
	level, err := zerolog.ParseLevel(config.Server.LogLevel)
	if err != nil {
		level = zerolog.TraceLevel
		log.Trace().Str("loglevel", level.String()).Msg("Environment has no log level set up, using default.")
	} else {
		log.Trace().Str("loglevel", level.String()).Msg("Desired log level detected.")
	}

	zerolog.SetGlobalLevel(level)
}
