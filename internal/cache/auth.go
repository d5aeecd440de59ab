package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mealdeck/mealdeck/internal/model"
)

const (
	// authCachePrefix is the Redis key prefix for auth context cache.
	authCachePrefix = "auth:ctx:"
	// authCacheTTL is the time-to-live for cached auth contexts.
	// Deactivating an account takes at most this long to propagate.
	authCacheTTL = 5 * time.Minute
)

// CachedAuthContext represents auth context stored in Redis.
type CachedAuthContext struct {
	UserID  string `json:"user_id"`
	Email   string `json:"email"`
	IsStaff bool   `json:"is_staff"`
}

// GetAuthContext retrieves a cached auth context by cache key.
// Returns nil if not found (cache miss).
func (c *Cache) GetAuthContext(ctx context.Context, cacheKey string) (*model.AuthContext, error) {
	key := authCachePrefix + cacheKey

	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		// Cache miss is not an error
		return nil, nil //nolint:nilerr
	}

	var cached CachedAuthContext
	if err := json.Unmarshal(data, &cached); err != nil {
		// Corrupted cache entry - treat as miss
		return nil, nil //nolint:nilerr
	}

	return &model.AuthContext{
		UserID:  cached.UserID,
		Email:   cached.Email,
		IsStaff: cached.IsStaff,
	}, nil
}

// SetAuthContext caches an auth context.
func (c *Cache) SetAuthContext(ctx context.Context, cacheKey string, auth *model.AuthContext) error {
	key := authCachePrefix + cacheKey

	cached := CachedAuthContext{
		UserID:  auth.UserID,
		Email:   auth.Email,
		IsStaff: auth.IsStaff,
	}

	data, err := json.Marshal(cached)
	if err != nil {
		return fmt.Errorf("marshal auth context: %w", err)
	}

	return c.client.Set(ctx, key, data, authCacheTTL).Err()
}

// DeleteAuthContext removes a cached auth context.
// Used when a profile update changes what the context carries.
func (c *Cache) DeleteAuthContext(ctx context.Context, cacheKey string) error {
	key := authCachePrefix + cacheKey
	return c.client.Del(ctx, key).Err()
}
