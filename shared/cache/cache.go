package cache

//go:generate go run go.uber.org/mock/mockgen -source=./cache.go -destination=./mocks/cache_mock.go -package=mocks

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"tasktracker/infras/otel"
)

const (
	otelScopeName          = "cache"
	otelCacheKeyAttribute  = "cache.key"
	otelCacheHitsAttribute = "cache.hits"
)

// incrementScript counts a hit and starts the expiry only with the first hit of a
// window, so later hits never extend it.
var incrementScript = redis.NewScript(`
local hits = redis.call('INCR', KEYS[1])
if hits == 1 then
	redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
return hits
`)

type RedisCache interface {
	// Increment adds one hit to key and returns the hits counted in the current window.
	Increment(ctx context.Context, key string, window time.Duration) (hits int64, err error)
}

type redisCache struct {
	client *redis.Client
	otel   otel.Otel
}

func NewRedisCache(client *redis.Client, ot otel.Otel) RedisCache {
	return &redisCache{
		client: client,
		otel:   ot,
	}
}

// Increment implements RedisCache.
func (cache *redisCache) Increment(ctx context.Context, key string, window time.Duration) (hits int64, err error) {
	ctx, scope := cache.otel.NewScope(ctx, otelScopeName, otelScopeName+".Increment")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	scope.SetAttribute(otelCacheKeyAttribute, key)

	hits, err = incrementScript.Run(ctx, cache.client, []string{key}, window.Milliseconds()).Int64()
	if err != nil {
		log.Error().Err(err).Str("key", key).Str("RedisCache", "Increment").Msg("failed to increment cache")

		return 0, fmt.Errorf("failed to increment cache value: %w", err)
	}

	scope.SetAttribute(otelCacheHitsAttribute, hits)

	return hits, nil
}
