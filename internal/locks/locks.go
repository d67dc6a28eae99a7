// Package locks serializes booking writes per court.
package locks

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/codr1/courtbook/internal/config"
)

var ErrLockTimeout = errors.New("timed out waiting for court lock")

// Locker hands out exclusive per-court locks. The returned unlock func must
// be called exactly once.
type Locker interface {
	Lock(ctx context.Context, courtID int64) (func(), error)
}

// New builds the locker configured in cfg.
func New(ctx context.Context, cfg config.LocksConfig) (Locker, error) {
	switch cfg.Driver {
	case "", config.LockDriverLocal:
		return NewLocalLocker(), nil
	case config.LockDriverRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, fmt.Errorf("redis ping %s: %w", cfg.Redis.Addr, err)
		}
		return NewRedisLocker(client, cfg.Redis.Prefix, cfg.Redis.LockTTL), nil
	default:
		return nil, fmt.Errorf("unsupported locks driver: %s", cfg.Driver)
	}
}

func timeoutErr(ctx context.Context, courtID int64) error {
	return fmt.Errorf("%w: court %d: %v", ErrLockTimeout, courtID, context.Cause(ctx))
}
