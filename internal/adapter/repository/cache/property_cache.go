package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/SashaDiz/real-estate-directory/internal/property/domain"
)

const propertyTTL = 1 * time.Hour

// PropertyCache is a read-through cache for property-by-id lookups.
// Every mutation, counter increments included, must invalidate the
// cached entry so counters never serve stale values.
type PropertyCache struct {
	client *redis.Client
}

func NewPropertyCache(addr string) (*PropertyCache, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if _, err := client.Ping(context.Background()).Result(); err != nil {
		return nil, err
	}
	return &PropertyCache{client: client}, nil
}

// Get returns (nil, nil) on a cache miss.
func (c *PropertyCache) Get(ctx context.Context, id string) (*domain.Property, error) {
	data, err := c.client.Get(ctx, "property:"+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var property domain.Property
	if err := json.Unmarshal(data, &property); err != nil {
		return nil, err
	}
	return &property, nil
}

func (c *PropertyCache) Set(ctx context.Context, property *domain.Property) error {
	data, err := json.Marshal(property)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, "property:"+property.ID, data, propertyTTL).Err()
}

func (c *PropertyCache) Invalidate(ctx context.Context, id string) error {
	return c.client.Del(ctx, "property:"+id).Err()
}

func (c *PropertyCache) Close() error {
	return c.client.Close()
}
