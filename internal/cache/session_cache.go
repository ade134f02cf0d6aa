package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"pinot/internal/model"
)

// SessionCache stores admin panel sessions
type SessionCache interface {
	Set(ctx context.Context, session *model.AdminSession) error
	Get(ctx context.Context, id string) (*model.AdminSession, error)
	Delete(ctx context.Context, id string) error
}

type sessionCache struct {
	client *redis.Client
}

func NewSessionCache(client *redis.Client) SessionCache {
	return &sessionCache{
		client: client,
	}
}

func (c *sessionCache) key(id string) string {
	return "admin:session:" + id
}

func (c *sessionCache) Set(ctx context.Context, session *model.AdminSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(session.ID), data, time.Until(session.ExpiresAt)).Err()
}

func (c *sessionCache) Get(ctx context.Context, id string) (*model.AdminSession, error) {
	data, err := c.client.Get(ctx, c.key(id)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var session model.AdminSession
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (c *sessionCache) Delete(ctx context.Context, id string) error {
	return c.client.Del(ctx, c.key(id)).Err()
}
