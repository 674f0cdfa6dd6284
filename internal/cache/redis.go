package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/maxviazov/taskboard-service/internal/config"
	"github.com/maxviazov/taskboard-service/internal/model"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const connectTimeout = 5 * time.Second

// NewRedisClient connects to cfg.Addr and pings it before returning.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	if cfg.Addr == "" {
		return nil, errors.New("redis addr is required")
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// Redis stores stats as JSON strings that expire after ttl.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

func NewRedis(client *redis.Client, ttl time.Duration, logger zerolog.Logger) *Redis {
	return &Redis{
		client: client,
		ttl:    ttl,
		logger: logger.With().Str("module", "cache").Str("component", "redis").Logger(),
	}
}

func (c *Redis) Get(ctx context.Context, userID *int64) (model.DashboardStats, bool, error) {
	raw, err := c.client.Get(ctx, dashboardKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return model.DashboardStats{}, false, nil
	}
	if err != nil {
		return model.DashboardStats{}, false, fmt.Errorf("redis get: %w", err)
	}
	var stats model.DashboardStats
	if err := json.Unmarshal(raw, &stats); err != nil {
		// A corrupt entry is treated as a miss and overwritten by the next Set.
		c.logger.Warn().Err(err).Str("key", dashboardKey(userID)).Msg("discarding undecodable cache entry")
		return model.DashboardStats{}, false, nil
	}
	return stats, true, nil
}

func (c *Redis) Set(ctx context.Context, userID *int64, stats model.DashboardStats) error {
	raw, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("encode dashboard stats: %w", err)
	}
	if err := c.client.Set(ctx, dashboardKey(userID), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Invalidate walks the key space with SCAN so large databases are never blocked by KEYS.
func (c *Redis) Invalidate(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, keyPrefix+"*", 100).Iterator()
	var batch []string
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == 100 {
			if err := c.client.Del(ctx, batch...).Err(); err != nil {
				return fmt.Errorf("redis del: %w", err)
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis scan: %w", err)
	}
	if len(batch) > 0 {
		if err := c.client.Del(ctx, batch...).Err(); err != nil {
			return fmt.Errorf("redis del: %w", err)
		}
	}
	c.logger.Debug().Msg("dashboard cache invalidated")
	return nil
}

// Ping lets the readiness probe include Redis.
func (c *Redis) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

var _ DashboardCache = (*Redis)(nil)
