package config

import (
	"fmt"
	"sync"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"
)

type Config struct {
	Server struct {
		Env      string `envconfig:"ENV"`
		LogLevel string `envconfig:"LOG_LEVEL"`
		Port     string `envconfig:"PORT"      default:"5001"`
		Host     string `envconfig:"HOST"`
		Shutdown struct {
			CleanupPeriodSeconds int64 `envconfig:"CLEANUP_PERIOD_SECONDS"`
			GracePeriodSeconds   int64 `envconfig:"GRACE_PERIOD_SECONDS"`
		} `envconfig:"SHUTDOWN"`
	} `envconfig:"SERVER"`

	App struct {
		Name             string `envconfig:"NAME" default:"tasktracker"`
		EnforceOwnership bool   `envconfig:"ENFORCE_OWNERSHIP"`
		CORS             struct {
			AllowCredentials bool     `envconfig:"ALLOW_CREDENTIALS"`
			AllowedHeaders   []string `envconfig:"ALLOWED_HEADERS"`
			AllowedMethods   []string `envconfig:"ALLOWED_METHODS"`
			AllowedOrigins   []string `envconfig:"ALLOWED_ORIGINS"`
			Enable           bool     `envconfig:"ENABLE"`
			MaxAgeSeconds    int      `envconfig:"MAX_AGE_SECONDS"`
		} `envconfig:"CORS"`
		RateLimiter      struct {
			Enable        bool `envconfig:"ENABLE"`
			MaxRequests   int  `envconfig:"MAX_REQUESTS"`
			WindowSeconds int  `envconfig:"WINDOW_SECONDS"`
		} `envconfig:"RATE_LIMITER"`
	} `envconfig:"APP"`

	Cache struct {
		Redis struct {
			Primary struct {
				Host     string `envconfig:"HOST"`
				Port     string `envconfig:"PORT"`
				Password string `envconfig:"PASSWORD"`
				DB       int    `envconfig:"DB"`
			} `envconfig:"PRIMARY"`
		} `envconfig:"REDIS"`
	} `envconfig:"CACHE"`

	Identity struct {
		ProjectID       string `envconfig:"PROJECT_ID"`
		CredentialsFile string `envconfig:"CREDENTIALS_FILE"`
		IssuerPrefix    string `envconfig:"ISSUER_PREFIX" default:"https://securetoken.google.com/"`
		JWKSURL         string `envconfig:"JWKS_URL"      default:"https://www.googleapis.com/service_accounts/v1/jwk/securetoken@system.gserviceaccount.com" validate:"required,url"`
	} `envconfig:"IDENTITY"`

	DB struct {
		Mongo struct {
			URI                 string `envconfig:"URI"                  validate:"required"`
			Database            string `envconfig:"DATABASE"             default:"tasktracker" validate:"required"`
			Collection          string `envconfig:"COLLECTION"           default:"tasks"       validate:"required"`
			MaxRetry            int    `envconfig:"MAX_RETRY"            default:"3"`
			RetryWaitTime       int    `envconfig:"RETRY_WAIT_TIME"      default:"2"`
			MigrationCollection string `envconfig:"MIGRATION_COLLECTION" default:"schema_migrations"`
		} `envconfig:"MONGO"`
	} `envconfig:"DB"`

	External struct {
		Otel struct {
			Endpoint string `envconfig:"ENDPOINT"`
		} `envconfig:"OTEL"`
	} `envconfig:"EXTERNAL"`

	Client struct {
		APIBaseURL         string `envconfig:"API_BASE_URL"       default:"http://localhost:5001"                   validate:"required,url"`
		IdentityAPIKey     string `envconfig:"IDENTITY_API_KEY"                                                      validate:"required"`
		IdentityBaseURL    string `envconfig:"IDENTITY_BASE_URL"  default:"https://identitytoolkit.googleapis.com/v1" validate:"required,url"`
		TokenBaseURL       string `envconfig:"TOKEN_BASE_URL"     default:"https://securetoken.googleapis.com/v1"     validate:"required,url"`
		GoogleClientID     string `envconfig:"GOOGLE_CLIENT_ID"`
		GoogleClientSecret string `envconfig:"GOOGLE_CLIENT_SECRET"`
		LogFile            string `envconfig:"LOG_FILE"`
	} `envconfig:"CLIENT"`
}

var (
	conf        Config
	once        sync.Once
	initialized bool
)

func Init() error {
	var err error

	once.Do(func() {
		err = godotenv.Load(".env")
		if err != nil {
			log.Warn().Err(err).Msg("Could not load .env file, continuing with existing environment variables")
		} else {
			log.Info().Msg("Successfully loaded variables from .env file into environment")
		}

		err = envconfig.Process("", &conf)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to process environment variables")
		}

		initialized = true

		log.Info().Msg("Service configuration initialized successfully")
	})

	if err != nil {
		return fmt.Errorf("loading .env file: %w", err)
	}

	return nil
}

func Get() *Config {
	if !initialized {
		if err := Init(); err != nil {
			log.Debug().Err(err).Msg("Configuration loaded without .env file")
		}
	}

	return &conf
}
