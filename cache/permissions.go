package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const permissionKeyPrefix = "aquasync:role-permissions:"

// PermissionLoader reads a role's permissions from the source of truth.
type PermissionLoader func(ctx context.Context, roleID uuid.UUID) ([]string, error)

// PermissionCache caches role permission sets in Redis. A nil cache, or one
// without a client, always calls the loader.
type PermissionCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewPermissionCache instantiates the cache helper.
func NewPermissionCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) *PermissionCache {
	return &PermissionCache{client: client, ttl: ttl, logger: logger}
}

func permissionKey(roleID uuid.UUID) string {
	return permissionKeyPrefix + roleID.String()
}

// Permissions returns the cached permission set for roleID, populating it
// from load on a miss. Redis failures degrade to the loader.
func (c *PermissionCache) Permissions(ctx context.Context, roleID uuid.UUID, load PermissionLoader) ([]string, error) {
	if load == nil {
		return nil, errors.New("cache: loader required")
	}
	if c == nil || c.client == nil {
		return load(ctx, roleID)
	}

	key := permissionKey(roleID)
	payload, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var perms []string
		if jsonErr := json.Unmarshal(payload, &perms); jsonErr == nil {
			return perms, nil
		}
		c.logger.Warn("discarding corrupt permission cache entry", zap.String("key", key))
	case !errors.Is(err, redis.Nil):
		c.logger.Warn("permission cache read failed", zap.String("key", key), zap.Error(err))
	}

	perms, err := load(ctx, roleID)
	if err != nil {
		return nil, err
	}
	if perms == nil {
		perms = []string{}
	}

	raw, err := json.Marshal(perms)
	if err == nil {
		err = c.client.Set(ctx, key, raw, c.ttl).Err()
	}
	if err != nil {
		c.logger.Warn("permission cache write failed", zap.String("key", key), zap.Error(err))
	}
	return perms, nil
}

// Invalidate drops the cached set for roleID.
func (c *PermissionCache) Invalidate(ctx context.Context, roleID uuid.UUID) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Del(ctx, permissionKey(roleID)).Err()
}
