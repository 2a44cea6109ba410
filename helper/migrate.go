package helper

//nolint:revive
import (
	"errors"
	"fmt"
	"net/url"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mongodb"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/rs/zerolog/log"

	"tasktracker/config"
)

const migrationsSource = "file://migrations/mongodb"

var errUnknownAction = errors.New("unknown migration action")

// connectionString points the URI at the task database and names the collection
// that records applied versions.
func connectionString(config *config.Config) (string, error) {
	uri, err := url.Parse(config.DB.Mongo.URI)
	if err != nil {
		return "", fmt.Errorf("invalid mongo uri: %w", err)
	}

	uri.Path = "/" + config.DB.Mongo.Database

	query := uri.Query()
	query.Set("x-migrations-collection", config.DB.Mongo.MigrationCollection)
	uri.RawQuery = query.Encode()

	return uri.String(), nil
}

func getConnection(config *config.Config) (*migrate.Migrate, error) {
	dsn, err := connectionString(config)
	if err != nil {
		return nil, err
	}

	mig, err := migrate.New(migrationsSource, dsn)
	if err != nil {
		return nil, fmt.Errorf("error creating migrate instance: %w", err)
	}

	return mig, nil
}

func Runner(config *config.Config, action string) error {
	switch action {
	case "up", "down", "step-up", "drop":
	default:
		return fmt.Errorf("%w: %s", errUnknownAction, action)
	}

	mig, err := getConnection(config)
	if err != nil {
		return fmt.Errorf("error creating migrate instance: %w", err)
	}

	defer mig.Close()

	switch action {
	case "up":
		if err := mig.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("error running migrations: %w", err)
		}

		log.Info().Msg("Database migrations completed successfully")

		return nil
	case "down":
		if err := mig.Steps(-1); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("error rolling back migrations: %w", err)
		}

		log.Info().Msg("Database migrations rolled back successfully")

		return nil
	case "step-up":
		if err := mig.Steps(1); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("error running migrations: %w", err)
		}

		log.Info().Msg("Database migrations completed successfully")

		return nil
	case "drop":
		if err := mig.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("error rolling back migrations: %w", err)
		}

		log.Info().Msg("Database migrations rolled back successfully")

		return nil
	}

	return nil
}

func Up(config *config.Config) error {
	return Runner(config, "up")
}

func StepUp(config *config.Config) error {
	return Runner(config, "step-up")
}

func Down(config *config.Config) error {
	return Runner(config, "down")
}

func Drop(config *config.Config) error {
	return Runner(config, "drop")
}
