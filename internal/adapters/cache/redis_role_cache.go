package cache

import (
	"context"
	"errors"
	"fmt"
	"parcel-booking-service/internal/domain"
	"parcel-booking-service/internal/platform/obs"
	"parcel-booking-service/internal/ports"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const roleKeyPrefix = "role:"

// RedisRoleCache is a read-through cache in front of a RoleStore.
// Every authorized request resolves a role, so hits avoid a database
// round trip. Redis failures fall back to the underlying store.
type RedisRoleCache struct {
	client *redis.Client
	store  ports.RoleStore
	ttl    time.Duration
}

func NewRedisRoleCache(client *redis.Client, store ports.RoleStore, ttl time.Duration) (*RedisRoleCache, error) {
	if client == nil {
		return nil, errors.New("role cache: redis client is nil")
	}
	if store == nil {
		return nil, errors.New("role cache: backing store is nil")
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &RedisRoleCache{client: client, store: store, ttl: ttl}, nil
}

func (c *RedisRoleCache) GetRole(ctx context.Context, email string) (_ domain.Role, err error) {
	defer obs.Time(ctx, "role.cache.GetRole")(&err)

	key := roleKeyPrefix + email

	cached, err := c.client.Get(ctx, key).Result()
	switch {
	case err == nil:
		if r, perr := domain.ParseRole(cached); perr == nil {
			return r, nil
		}
	case !errors.Is(err, redis.Nil):
		zap.L().Warn("role cache read failed", zap.String("email", email), zap.Error(err))
	}

	role, err := c.store.GetRole(ctx, email)
	if err != nil {
		return "", fmt.Errorf("role cache: %w", err)
	}

	if err := c.client.Set(ctx, key, string(role), c.ttl).Err(); err != nil {
		zap.L().Warn("role cache write failed", zap.String("email", email), zap.Error(err))
	}
	return role, nil
}

// SetRole writes through to the store and drops the cached entry.
func (c *RedisRoleCache) SetRole(ctx context.Context, email string, role domain.Role) error {
	if err := c.store.SetRole(ctx, email, role); err != nil {
		return fmt.Errorf("role cache: %w", err)
	}

	if err := c.client.Del(ctx, roleKeyPrefix+email).Err(); err != nil {
		// A stale entry would outlive the change until ttl; surface it.
		return fmt.Errorf("role cache: invalidate %s: %w", email, err)
	}
	return nil
}
