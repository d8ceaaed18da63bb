package config

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

var RedisClient *redis.Client

// InitRedis accepts either a host:port address or a redis:// / rediss:// URL.
func InitRedis(opts RedisOptions) error {
	target := opts.Target()
	if target == "" {
		return errors.New("REDIS_ADDR (or REDIS_URL) environment variable is not set")
	}

	ro := &redis.Options{Addr: target}
	if strings.HasPrefix(target, "redis://") || strings.HasPrefix(target, "rediss://") {
		parsed, err := redis.ParseURL(target)
		if err != nil {
			return err
		}
		ro = parsed
	}
	if opts.PoolSize > 0 {
		ro.PoolSize = opts.PoolSize
	}
	client := redis.NewClient(ro)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return err
	}

	RedisClient = client
	return nil
}
