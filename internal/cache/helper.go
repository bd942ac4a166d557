package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"kbomate/internal/middleware"
	"kbomate/internal/observability"

	"github.com/redis/go-redis/v9"
)

// GetJSON loads key into dest. It reports false on a miss, a decode error or when caching is off.
func GetJSON(ctx context.Context, key string, dest any) bool {
	if client == nil {
		return false
	}
	ctx, span := observability.GetTraceLayer().TraceRedisOperation(ctx, "get")
	defer span.End()

	raw, err := client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			middleware.Logger.WarnContext(ctx, "cache read failed", "key", key, "error", err)
		}
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		Invalidate(ctx, key)
		return false
	}
	return true
}

// SetJSON stores value under key. Failures are logged and otherwise ignored.
func SetJSON(ctx context.Context, key string, value any, ttl time.Duration) {
	if client == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := client.Set(ctx, key, raw, ttl).Err(); err != nil {
		middleware.Logger.WarnContext(ctx, "cache write failed", "key", key, "error", err)
	}
}

// Aside returns the cached value for key or calls load and caches its result.
func Aside[T any](ctx context.Context, key string, ttl time.Duration, load func(context.Context) (T, error)) (T, error) {
	var cached T
	if GetJSON(ctx, key, &cached) {
		return cached, nil
	}

	val, err := load(ctx)
	if err != nil {
		return val, err
	}
	SetJSON(ctx, key, val, ttl)
	return val, nil
}

// Invalidate drops the given keys.
func Invalidate(ctx context.Context, keys ...string) {
	if client == nil || len(keys) == 0 {
		return
	}
	if err := client.Del(ctx, keys...).Err(); err != nil {
		middleware.Logger.WarnContext(ctx, "cache invalidate failed", "keys", keys, "error", err)
	}
}

// InvalidateUserRole forgets the cached role of a user after a role change.
func InvalidateUserRole(ctx context.Context, userID uint) {
	Invalidate(ctx, UserRoleKey(userID))
}

// InvalidateActiveBanners drops every per-location banner listing.
func InvalidateActiveBanners(ctx context.Context) {
	Invalidate(ctx, ActiveBannersKey(""), ActiveBannersKey("home"), ActiveBannersKey("team"))
}
