package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vibe-gaming/passwordless/internal/config"
)

const (
	RedisTypeSingle  = "redis"
	RedisTypeCluster = "redisCluster"

	pingTimeout = 1500 * time.Millisecond
	// Throttle lookups fail open, so a slow redis must not hold up issuance.
	ioTimeout = time.Second
)

var ErrUnknownRedisType = errors.New("wrong redis type")

// NewRedis backs the per-IP issuance throttle. The asynq queue builds its own
// connections from the same config. On ping failure the client is still
// returned together with the error.
func NewRedis(cfg config.Cache) (redis.UniversalClient, error) {
	var client redis.UniversalClient

	switch cfg.Type {
	case RedisTypeSingle:
		client = redis.NewClient(singleOptions(cfg.Redis))
	case RedisTypeCluster:
		client = redis.NewClusterClient(clusterOptions(cfg.RedisCluster))
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownRedisType, cfg.Type)
	}

	return client, ping(client)
}

func singleOptions(cfg config.Redis) *redis.Options {
	return &redis.Options{
		Addr:            cfg.Address,
		Password:        cfg.Password,
		PoolSize:        cfg.PoolSize,
		ConnMaxIdleTime: 170 * time.Second,
		DialTimeout:     ioTimeout,
		ReadTimeout:     ioTimeout,
		WriteTimeout:    ioTimeout,
	}
}

func clusterOptions(cfg config.RedisCluster) *redis.ClusterOptions {
	return &redis.ClusterOptions{
		Addrs:    cfg.Addresses,
		Password: cfg.Password,
		// counters are written and read on masters only
		RouteRandomly:   false,
		ReadOnly:        false,
		PoolSize:        cfg.PoolSize,
		ConnMaxLifetime: 15 * time.Minute,
		DialTimeout:     ioTimeout,
		ReadTimeout:     ioTimeout,
		WriteTimeout:    ioTimeout,
	}
}

func ping(client redis.UniversalClient) error {
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	return client.Ping(ctx).Err()
}
