package cache

import (
	"context"
	"time"
)

// Cache is the hot read-through tier in front of the response_cache
// table. Implementations must report a miss, never an error, for
// entries they cannot decode.
type Cache interface {
	GetJSON(ctx context.Context, key string, dst any) (hit bool, err error)
	SetJSON(ctx context.Context, key string, val any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}
