package redis

import (
	"errors"
	"time"

	"github.com/bidhaus/goapi/base/ctx"
)

var (
	// ErrNotFound is returned when the key does not exist
	ErrNotFound = errors.New("key not found")
)

// Service wraps the subset of redis commands used across the app.
type Service interface {
	Get(context ctx.Ctx, key string) ([]byte, error)
	Set(context ctx.Ctx, key string, val []byte, expire time.Duration) error
	// SetNX sets the key only when absent and reports whether it was set.
	SetNX(context ctx.Ctx, key string, val []byte, expire time.Duration) (bool, error)
	Del(context ctx.Ctx, ks ...string) (int, error)
	Exists(context ctx.Ctx, key string) (bool, error)
	Expire(context ctx.Ctx, key string, ttl time.Duration) error
	// TTL returns the remaining ttl in seconds
	TTL(context ctx.Ctx, key string) (int, error)
	Incr(context ctx.Ctx, key string) (int64, error)
	Incrby(context ctx.Ctx, key string, val int) (int64, error)
}
