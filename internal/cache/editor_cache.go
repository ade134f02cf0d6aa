package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"pinot/internal/editor"
)

// EditorCache keeps the working label/card set of an event between requests
type EditorCache interface {
	Set(ctx context.Context, state *editor.State) error
	Get(ctx context.Context, eventID string) (*editor.State, error)
	Delete(ctx context.Context, eventID string) error
}

type editorCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewEditorCache creates a new editor session cache
func NewEditorCache(client *redis.Client) EditorCache {
	return &editorCache{
		client: client,
		ttl:    12 * time.Hour,
	}
}

func (c *editorCache) key(eventID string) string {
	return fmt.Sprintf("event:%s:editor", eventID)
}

func (c *editorCache) Set(ctx context.Context, state *editor.State) error {
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(state.EventID), data, c.ttl).Err()
}

func (c *editorCache) Get(ctx context.Context, eventID string) (*editor.State, error) {
	data, err := c.client.Get(ctx, c.key(eventID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var state editor.State
	if err := json.Unmarshal([]byte(data), &state); err != nil {
		return nil, err
	}
	return &state, nil
}

func (c *editorCache) Delete(ctx context.Context, eventID string) error {
	return c.client.Del(ctx, c.key(eventID)).Err()
}
