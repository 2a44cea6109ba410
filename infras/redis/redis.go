package redis

import (
	"context"
	"net"
	"time"

	goRedis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"tasktracker/config"
)

const pingTimeout = 5 * time.Second

// New builds the client backing the rate limiter. The connection is only checked
// when the limiter is enabled; an unreachable server is logged, not fatal.
func New(config *config.Config) *goRedis.Client {
	primary := config.Cache.Redis.Primary

	client := goRedis.NewClient(&goRedis.Options{
		Addr:     net.JoinHostPort(primary.Host, primary.Port),
		Password: primary.Password,
		DB:       primary.DB,
	})

	if !config.App.RateLimiter.Enable {
		return client
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		log.Error().Err(err).Str("host", primary.Host).Str("port", primary.Port).Msg("Failed to connect to Redis")

		return client
	}

	log.Info().
		Int("db", primary.DB).
		Str("host", primary.Host).
		Str("port", primary.Port).
		Msg("Connected to Redis")

	return client
}
