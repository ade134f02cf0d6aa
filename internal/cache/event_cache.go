package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// EventCache is the Redis PIN index of active events
type EventCache interface {
	SetPIN(ctx context.Context, pin, eventID string) error
	GetEventID(ctx context.Context, pin string) (string, error)
	DeletePIN(ctx context.Context, pin string) error
	PINExists(ctx context.Context, pin string) (bool, error)
}

type eventCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewEventCache creates a new event cache
func NewEventCache(client *redis.Client) EventCache {
	return &eventCache{
		client: client,
		ttl:    24 * time.Hour, // Refreshed by the PIN reindex job
	}
}

func (c *eventCache) key(pin string) string {
	return fmt.Sprintf("event:pin:%s", pin)
}

func (c *eventCache) SetPIN(ctx context.Context, pin, eventID string) error {
	return c.client.Set(ctx, c.key(pin), eventID, c.ttl).Err()
}

func (c *eventCache) GetEventID(ctx context.Context, pin string) (string, error) {
	id, err := c.client.Get(ctx, c.key(pin)).Result()
	if err == redis.Nil {
		return "", nil
	}
	return id, err
}

func (c *eventCache) DeletePIN(ctx context.Context, pin string) error {
	return c.client.Del(ctx, c.key(pin)).Err()
}

func (c *eventCache) PINExists(ctx context.Context, pin string) (bool, error) {
	n, err := c.client.Exists(ctx, c.key(pin)).Result()
	return n > 0, err
}
