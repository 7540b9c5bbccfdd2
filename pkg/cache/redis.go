package cache

import (
	"context"
	"time"

	pkgredis "github.com/mywealth/wealth-backend/pkg/redis"
)

// Redis shares cached values across API instances. Capacity is bounded by
// the server's maxmemory policy rather than by this type.
type Redis struct {
	client pkgredis.CacheStore
	scope  string
	ttl    time.Duration
}

// NewRedis namespaces keys under scope and expires them after ttl.
func NewRedis(client pkgredis.CacheStore, scope string, ttl time.Duration) *Redis {
	return &Redis{client: client, scope: scope, ttl: ttl}
}

func (r *Redis) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := r.client.Get(ctx, r.client.CacheKey(r.scope, key))
	if err != nil {
		if pkgredis.IsNil(err) {
			return "", false, nil
		}
		return "", false, err
	}
	return value, true, nil
}

func (r *Redis) Set(ctx context.Context, key, value string) error {
	return r.client.Set(ctx, r.client.CacheKey(r.scope, key), value, r.ttl)
}
