// Package cache provides the Redis-backed store for rendered page
// fragments, so published pages can be served without re-running the
// renderer.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/goto/salt/log"
	"github.com/redis/go-redis/v9"
)

type Config struct {
	Enabled  bool          `mapstructure:"enabled" default:"false"`
	Host     string        `mapstructure:"host" default:"localhost"`
	Port     int           `mapstructure:"port" default:"6379"`
	Password string        `mapstructure:"password" default:""`
	DB       int           `mapstructure:"db" default:"0"`
	TTL      time.Duration `mapstructure:"ttl" default:"24h"`
}

// NewClient creates a Redis client and verifies the connection with a
// ping.
func NewClient(cfg Config, logger log.Logger) (*redis.Client, error) {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	logger.Info("render cache connected", "addr", addr)
	return client, nil
}
