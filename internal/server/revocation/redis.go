package revocation

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "falcontrade:revoked:"

// redisClient is the subset of *redis.Client the registry uses.
type redisClient interface {
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Exists(ctx context.Context, keys ...string) *redis.IntCmd
}

// RedisRegistry keeps the denylist in Redis. Each key expires together with
// its token, so no purge pass is needed.
type RedisRegistry struct {
	client redisClient
	now    func() time.Time
}

func NewRedisRegistry(client redisClient) *RedisRegistry {
	return &RedisRegistry{client: client, now: time.Now}
}

// Revoke stores the digest until expiresAt. A token that has already expired
// is rejected by validation anyway and is not stored.
func (r *RedisRegistry) Revoke(ctx context.Context, tokenHash string, expiresAt time.Time) error {
	ttl := expiresAt.Sub(r.now())
	if ttl <= 0 {
		return nil
	}
	if err := r.client.Set(ctx, keyPrefix+tokenHash, 1, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set revocation in Redis: %w", err)
	}
	return nil
}

func (r *RedisRegistry) IsRevoked(ctx context.Context, tokenHash string) (bool, error) {
	n, err := r.client.Exists(ctx, keyPrefix+tokenHash).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check revocation in Redis: %w", err)
	}
	return n > 0, nil
}

// NewRedisClient connects and pings once so a bad address fails at startup.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return client, nil
}
