package cache

import (
	"context"
	"encoding/json"
	"time"

	"growwise/internal/model"

	"github.com/redis/go-redis/v9"
)

// SessionCache mirrors live assessment session snapshots so a restarted
// client can rejoin and ops can inspect in-flight sessions
type SessionCache interface {
	Set(ctx context.Context, snapshot *model.SessionSnapshot) error
	Get(ctx context.Context, id string) (*model.SessionSnapshot, error)
	Delete(ctx context.Context, id string) error
}

type sessionCache struct {
	client *redis.Client
}

// NewSessionCache creates a new session cache
func NewSessionCache(client *redis.Client) SessionCache {
	return &sessionCache{
		client: client,
	}
}

func (c *sessionCache) Set(ctx context.Context, snapshot *model.SessionSnapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, "assessment:"+snapshot.ID, data, 15*time.Minute).Err()
}

func (c *sessionCache) Get(ctx context.Context, id string) (*model.SessionSnapshot, error) {
	data, err := c.client.Get(ctx, "assessment:"+id).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var snapshot model.SessionSnapshot
	err = json.Unmarshal([]byte(data), &snapshot)
	return &snapshot, err
}

func (c *sessionCache) Delete(ctx context.Context, id string) error {
	return c.client.Del(ctx, "assessment:"+id).Err()
}
