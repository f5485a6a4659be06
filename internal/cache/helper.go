package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"starboard/internal/observability"

	"github.com/redis/go-redis/v9"
)

// GetJSON fetches the value at key and unmarshals it into dest. Returns false
// on a miss, an unreachable cache, or a decode failure; callers fall through
// to the source of truth in all three cases.
func GetJSON(ctx context.Context, key, family string, dest interface{}) bool {
	if client == nil {
		return false
	}
	ctx, span := observability.GetTraceLayer().TraceRedisOperation(ctx, "get")
	defer span.End()

	raw, err := client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			observability.RedisErrorRate.WithLabelValues("get").Inc()
		}
		observability.CacheHits.WithLabelValues(family, "miss").Inc()
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		observability.CacheHits.WithLabelValues(family, "miss").Inc()
		return false
	}
	observability.CacheHits.WithLabelValues(family, "hit").Inc()
	return true
}

// SetJSON marshals value and stores it at key with the given TTL. Failures
// are recorded in metrics but never surfaced; the cache is best-effort.
func SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	if client == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	ctx, span := observability.GetTraceLayer().TraceRedisOperation(ctx, "set")
	defer span.End()

	if err := client.Set(ctx, key, raw, ttl).Err(); err != nil {
		observability.RedisErrorRate.WithLabelValues("set").Inc()
	}
}
