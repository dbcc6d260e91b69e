package purge

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

type redisConfig struct {
	Addr     string `json:"addr"`
	Password string `json:"password"`
	DB       int    `json:"db"`
	Prefix   string `json:"prefix"`
}

// redisPurger drops entries of a page cache shared through redis, keyed by
// prefix + full URL.
type redisPurger struct {
	client *redis.Client
	prefix string
}

func init() {
	Register("redis", createRedisPurger)
}

func createRedisPurger(args interface{}) (Purger, error) {
	cfg := &redisConfig{}
	if err := decodeConfig(args, cfg); err != nil {
		return nil, err
	}
	if cfg.Addr == "" {
		return nil, fmt.Errorf("redis purge addr is required")
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return newRedisPurger(client, cfg.Prefix), nil
}

func newRedisPurger(client *redis.Client, prefix string) *redisPurger {
	return &redisPurger{client: client, prefix: prefix}
}

func (p *redisPurger) Name() string {
	return "redis"
}

func (p *redisPurger) Purge(ctx context.Context, rawURL string) error {
	return p.client.Del(ctx, p.prefix+rawURL).Err()
}
