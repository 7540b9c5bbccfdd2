// Package cache holds the key/value stores used to memoize market lookups.
package cache

import "context"

// Store keeps string values for a fixed TTL chosen at construction.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}
