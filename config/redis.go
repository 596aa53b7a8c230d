package config

import (
	"context"
	"strings"

	"github.com/redis/go-redis/v9"
)

// NewRedis connects to redis. Accepts either a plain host:port or a
// redis:// URL. Returns nil when no address is configured; callers treat
// a nil client as "caching disabled".
func NewRedis(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	if cfg.Addr == "" {
		return nil, nil
	}

	var client *redis.Client
	if strings.HasPrefix(cfg.Addr, "redis://") || strings.HasPrefix(cfg.Addr, "rediss://") {
		opt, err := redis.ParseURL(cfg.Addr)
		if err != nil {
			return nil, err
		}
		client = redis.NewClient(opt)
	} else {
		client = redis.NewClient(&redis.Options{Addr: cfg.Addr})
	}

	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, err
	}
	return client, nil
}
