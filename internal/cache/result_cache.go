package cache

import (
	"context"
	"encoding/json"
	"time"

	"growwise/internal/model"

	"github.com/redis/go-redis/v9"
)

// ResultCache keeps each user's most recent assessment result so the
// dashboard doesn't hit Mongo on every load
type ResultCache interface {
	SetLatest(ctx context.Context, userID string, result *model.AssessmentResult) error
	GetLatest(ctx context.Context, userID string) (*model.AssessmentResult, error)
	Invalidate(ctx context.Context, userID string) error
}

type resultCache struct {
	client *redis.Client
}

// NewResultCache creates a new result cache
func NewResultCache(client *redis.Client) ResultCache {
	return &resultCache{
		client: client,
	}
}

func (c *resultCache) SetLatest(ctx context.Context, userID string, result *model.AssessmentResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, "result:latest:"+userID, data, time.Hour).Err()
}

func (c *resultCache) GetLatest(ctx context.Context, userID string) (*model.AssessmentResult, error) {
	data, err := c.client.Get(ctx, "result:latest:"+userID).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var result model.AssessmentResult
	err = json.Unmarshal([]byte(data), &result)
	return &result, err
}

func (c *resultCache) Invalidate(ctx context.Context, userID string) error {
	return c.client.Del(ctx, "result:latest:"+userID).Err()
}
