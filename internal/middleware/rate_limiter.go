package middleware

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/eduflow/eduflow-server/internal/apperror"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type RateLimitStore interface {
	Increment(ctx context.Context, key string, window time.Duration) (int, error)
	GetCount(ctx context.Context, key string) (int, error)
}

// RedisStore shares counters across server instances.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Increment bumps the counter and starts its window on the first hit only, so a steady
// stream of attempts cannot keep the key alive forever.
func (s *RedisStore) Increment(ctx context.Context, key string, window time.Duration) (int, error) {
	count, err := s.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if count == 1 {
		if err := s.client.Expire(ctx, key, window).Err(); err != nil {
			return 0, err
		}
	}
	return int(count), nil
}

func (s *RedisStore) GetCount(ctx context.Context, key string) (int, error) {
	count, err := s.client.Get(ctx, key).Int()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return count, err
}

// MemoryStore keeps counters in process. Used when Redis is disabled.
type MemoryStore struct {
	mu    sync.Mutex
	store map[string]*rateLimitEntry
	now   func() time.Time
}

type rateLimitEntry struct {
	count     int
	expiresAt time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		store: make(map[string]*rateLimitEntry),
		now:   time.Now,
	}
}

func (s *MemoryStore) Increment(_ context.Context, key string, window time.Duration) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for k, entry := range s.store {
		if !now.Before(entry.expiresAt) {
			delete(s.store, k)
		}
	}

	entry, exists := s.store[key]
	if !exists {
		entry = &rateLimitEntry{expiresAt: now.Add(window)}
		s.store[key] = entry
	}

	entry.count++
	return entry.count, nil
}

func (s *MemoryStore) GetCount(_ context.Context, key string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, exists := s.store[key]
	if !exists || !s.now().Before(entry.expiresAt) {
		return 0, nil
	}
	return entry.count, nil
}

type RateLimitConfig struct {
	Enabled bool
	Limit   int
	Window  time.Duration
}

// RateLimiter throttles requests per client IP and route.
type RateLimiter struct {
	store  RateLimitStore
	logger *zap.Logger
}

func NewRateLimiter(store RateLimitStore, logger *zap.Logger) *RateLimiter {
	return &RateLimiter{
		store:  store,
		logger: logger,
	}
}

// RateLimit rejects a client with ErrRateLimited once it has made config.Limit requests
// to the route within the window. If the store is unreachable the request is let through.
func (r *RateLimiter) RateLimit(config RateLimitConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !config.Enabled || config.Limit <= 0 {
			return c.Next()
		}

		ip := c.IP()
		if ip == "" {
			ip = c.Context().RemoteIP().String()
		}
		key := fmt.Sprintf("rate_limit:%s:%s", c.Path(), ip)

		allowed, err := r.allow(c.UserContext(), key, config)
		if err != nil {
			r.logger.Warn("Rate limit store unavailable", zap.String("key", key), zap.Error(err))
			return c.Next()
		}
		if !allowed {
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(int(config.Window.Seconds())))
			return apperror.ErrRateLimited
		}

		return c.Next()
	}
}

func (r *RateLimiter) allow(ctx context.Context, key string, config RateLimitConfig) (bool, error) {
	count, err := r.store.GetCount(ctx, key)
	if err != nil {
		return false, err
	}
	if count >= config.Limit {
		return false, nil
	}

	if _, err := r.store.Increment(ctx, key, config.Window); err != nil {
		return false, err
	}
	return true, nil
}
