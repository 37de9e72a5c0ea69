package middleware

import (
	"context"
	"fmt"
	"sync"
	"time"

	"tasksapi/pkg/config"

	"github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
)

// RateLimitStore counts hits per key inside fixed windows. Increment returns
// the count including this hit and the moment the window resets.
type RateLimitStore interface {
	Increment(ctx context.Context, key string, window time.Duration) (int, time.Time, error)
}

// NewRateLimitStore builds the store selected by cfg.Store.
func NewRateLimitStore(cfg config.RateLimitConfig) (RateLimitStore, error) {
	switch cfg.Store {
	case "", "memory":
		return NewMemoryStore(), nil
	case "redis":
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("invalid rate limit redis url: %w", err)
		}

		return NewRedisStore(redis.NewClient(opts)), nil
	default:
		return nil, fmt.Errorf("unknown rate limit store %q", cfg.Store)
	}
}

type rateLimitEntry struct {
	Count     int
	ResetTime time.Time
}

type MemoryStore struct {
	cache *cache.Cache
	mutex sync.Mutex
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{cache: cache.New(5*time.Minute, 10*time.Minute)}
}

func (s *MemoryStore) Increment(_ context.Context, key string, window time.Duration) (int, time.Time, error) {
	now := time.Now()

	s.mutex.Lock()
	defer s.mutex.Unlock()

	if item, found := s.cache.Get(key); found {
		entry := item.(rateLimitEntry)

		if now.Before(entry.ResetTime) {
			entry.Count++
			s.cache.Set(key, entry, entry.ResetTime.Sub(now))

			return entry.Count, entry.ResetTime, nil
		}
	}

	entry := rateLimitEntry{Count: 1, ResetTime: now.Add(window)}
	s.cache.Set(key, entry, window)

	return entry.Count, entry.ResetTime, nil
}

// ItemCount reports how many keys hold a live window.
func (s *MemoryStore) ItemCount() int {
	return s.cache.ItemCount()
}

// RedisStore shares counters between instances. The first hit of a window
// sets the key expiry.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Increment(ctx context.Context, key string, window time.Duration) (int, time.Time, error) {
	count, err := s.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("rate limit incr: %w", err)
	}

	if count == 1 {
		if err := s.client.PExpire(ctx, key, window).Err(); err != nil {
			return 0, time.Time{}, fmt.Errorf("rate limit expire: %w", err)
		}
	}

	ttl, err := s.client.PTTL(ctx, key).Result()
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("rate limit ttl: %w", err)
	}

	// A key left without expiry would never reset.
	if ttl < 0 {
		ttl = window
		if err := s.client.PExpire(ctx, key, window).Err(); err != nil {
			return 0, time.Time{}, fmt.Errorf("rate limit expire: %w", err)
		}
	}

	return int(count), time.Now().Add(ttl), nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
