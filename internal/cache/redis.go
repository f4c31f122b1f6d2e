package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Domenick1991/skybooker/config"
	"github.com/Domenick1991/skybooker/internal/domain"
)

type RedisCache struct {
	client    *redis.Client
	flightTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, flightTTL time.Duration) *RedisCache {
	return NewRedisCacheWithClient(
		redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		flightTTL,
	)
}

func NewRedisCacheWithClient(client *redis.Client, flightTTL time.Duration) *RedisCache {
	return &RedisCache{client: client, flightTTL: flightTTL}
}

// GetFlight returns nil, nil when the flight is not cached.
func (c *RedisCache) GetFlight(ctx context.Context, flightID string) (*domain.Flight, error) {
	data, err := c.client.Get(ctx, flightKey(flightID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var flight domain.Flight
	if err := json.Unmarshal(data, &flight); err != nil {
		return nil, err
	}
	return &flight, nil
}

func (c *RedisCache) SetFlight(ctx context.Context, flight *domain.Flight) error {
	payload, err := json.Marshal(flight)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, flightKey(flight.ID), payload, c.flightTTL).Err()
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

func flightKey(flightID string) string {
	return "cache:flight:" + flightID
}
