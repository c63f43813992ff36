package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/bazaar/backend/internal/domain/shared"
	"github.com/redis/go-redis/v9"
)

// RedisRunGuard implements RunGuard using Redis.
// This is suitable for distributed deployments where multiple instances
// must agree on which generation run is in flight.
type RedisRunGuard struct {
	client    *redis.Client
	keyPrefix string
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// NewRedisRunGuard creates a new Redis-based run guard
func NewRedisRunGuard(cfg RedisConfig) (*RedisRunGuard, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisRunGuard{
		client:    client,
		keyPrefix: "runguard:",
	}, nil
}

// NewRedisRunGuardWithClient creates a guard with an existing Redis client.
// This is useful for testing or when sharing a client across components
func NewRedisRunGuardWithClient(client *redis.Client, keyPrefix string) *RedisRunGuard {
	if keyPrefix == "" {
		keyPrefix = "runguard:"
	}
	return &RedisRunGuard{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// TryAcquire marks the key as in-flight with a TTL.
// Uses SETNX so two instances racing on the same key see exactly one winner.
func (g *RedisRunGuard) TryAcquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	acquired, err := g.client.SetNX(ctx, g.keyPrefix+key, "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire run guard: %w", err)
	}
	return acquired, nil
}

// Release clears the key so the operation can be submitted again
func (g *RedisRunGuard) Release(ctx context.Context, key string) error {
	if err := g.client.Del(ctx, g.keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("failed to release run guard: %w", err)
	}
	return nil
}

// Close closes the Redis client
func (g *RedisRunGuard) Close() error {
	return g.client.Close()
}

// GetClient returns the underlying Redis client (for testing/monitoring)
func (g *RedisRunGuard) GetClient() *redis.Client {
	return g.client
}

// Ensure RedisRunGuard implements RunGuard
var _ shared.RunGuard = (*RedisRunGuard)(nil)
