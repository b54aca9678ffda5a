package cache

import (
	"context"
	"encoding/json"
	"time"

	"linkbio/pkg/store"

	"github.com/redis/go-redis/v9"
)

type ProfileCacheInterface interface {
	Get(ctx context.Context, username string) (*CachedProfile, error)
	Set(ctx context.Context, username string, view *CachedProfile, ttl time.Duration) error
	Delete(ctx context.Context, username string) error
}

type ProfileCache struct {
	client *redis.Client
}

// CachedProfile is the public view served to visitors: the profile
// plus its active links. Missing is true for cached negative lookups.
type CachedProfile struct {
	Missing bool           `json:"missing"`
	Profile *store.Profile `json:"profile,omitempty"`
	Links   []store.Link   `json:"links,omitempty"`
}

func NewProfileCache(client *redis.Client) *ProfileCache {
	return &ProfileCache{client: client}
}

func (c *ProfileCache) Get(ctx context.Context, username string) (*CachedProfile, error) {
	key := "profile:" + username
	val, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var cached CachedProfile
	if err := json.Unmarshal([]byte(val), &cached); err != nil {
		return nil, err
	}

	return &cached, nil
}

func (c *ProfileCache) Set(ctx context.Context, username string, view *CachedProfile, ttl time.Duration) error {
	key := "profile:" + username
	data, err := json.Marshal(view)
	if err != nil {
		return err
	}

	return c.client.Set(ctx, key, data, ttl).Err()
}

func (c *ProfileCache) Delete(ctx context.Context, username string) error {
	key := "profile:" + username
	return c.client.Del(ctx, key).Err()
}
