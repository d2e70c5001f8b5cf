package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	gocache "github.com/patrickmn/go-cache"
)

const (
	DriverNone   = "none"
	DriverMemory = "memory"
	DriverRedis  = "redis"
)

// LinkCache keeps link id -> target url lookups close to the redirect handler.
//
// Set overwrites an entry and is used after the link itself changed. Add only
// stores when the id is not cached yet, so a lookup filled from an older read
// never replaces a newer entry.
type LinkCache interface {
	Get(ctx context.Context, id string) (string, bool, error)
	Set(ctx context.Context, id, targetURL string) error
	Add(ctx context.Context, id, targetURL string) error
}

type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedis(client *redis.Client, ttl time.Duration) *Redis {
	return &Redis{client: client, ttl: ttl}
}

func redisKey(id string) string {
	return fmt.Sprintf("link:%s", id)
}

func (r *Redis) Get(ctx context.Context, id string) (string, bool, error) {
	target, err := r.client.Get(ctx, redisKey(id)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get link %s from redis: %w", id, err)
	}
	return target, true, nil
}

func (r *Redis) Set(ctx context.Context, id, targetURL string) error {
	if err := r.client.Set(ctx, redisKey(id), targetURL, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set link %s in redis: %w", id, err)
	}
	return nil
}

func (r *Redis) Add(ctx context.Context, id, targetURL string) error {
	if err := r.client.SetNX(ctx, redisKey(id), targetURL, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to add link %s to redis: %w", id, err)
	}
	return nil
}

type Memory struct {
	items *gocache.Cache
}

func NewMemory(ttl time.Duration) *Memory {
	return &Memory{items: gocache.New(ttl, 2*ttl)}
}

func (m *Memory) Get(_ context.Context, id string) (string, bool, error) {
	v, ok := m.items.Get(id)
	if !ok {
		return "", false, nil
	}
	target, ok := v.(string)
	return target, ok, nil
}

func (m *Memory) Set(_ context.Context, id, targetURL string) error {
	m.items.SetDefault(id, targetURL)
	return nil
}

func (m *Memory) Add(_ context.Context, id, targetURL string) error {
	// an existing entry wins
	_ = m.items.Add(id, targetURL, gocache.DefaultExpiration)
	return nil
}
