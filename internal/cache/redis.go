package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"lendit/internal/config"
	"lendit/internal/models"

	"github.com/redis/go-redis/v9"
)

// RedisViewCache keeps item views in Redis so projection queries are
// not recomputed on every read.
type RedisViewCache struct {
	client *redis.Client
}

// NewRedisClient создает новый клиент Redis на основе конфигурации
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	options := &redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	}

	return redis.NewClient(options)
}

func NewRedisViewCache(client *redis.Client) *RedisViewCache {
	return &RedisViewCache{client: client}
}

func itemViewKey(itemID int64) string {
	return fmt.Sprintf("item_view:%d", itemID)
}

func (c *RedisViewCache) GetItemView(ctx context.Context, itemID int64) (*models.ItemView, error) {
	if c.client == nil {
		return nil, fmt.Errorf("redis client is nil")
	}
	val, err := c.client.Get(ctx, itemViewKey(itemID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get item view from redis: %w", err)
	}

	var view models.ItemView
	if err := json.Unmarshal([]byte(val), &view); err != nil {
		return nil, fmt.Errorf("failed to unmarshal item view: %w", err)
	}
	return &view, nil
}

func (c *RedisViewCache) SetItemView(ctx context.Context, view *models.ItemView, ttl time.Duration) error {
	if c.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	data, err := json.Marshal(view)
	if err != nil {
		return fmt.Errorf("failed to marshal item view: %w", err)
	}
	if err := c.client.Set(ctx, itemViewKey(view.ID), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set item view in redis: %w", err)
	}
	return nil
}

func (c *RedisViewCache) InvalidateItem(ctx context.Context, itemID int64) error {
	if c.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if err := c.client.Del(ctx, itemViewKey(itemID)).Err(); err != nil {
		return fmt.Errorf("failed to delete item view from redis: %w", err)
	}
	return nil
}

// Ping проверяет соединение с Redis
func Ping(ctx context.Context, client *redis.Client) error {
	_, err := client.Ping(ctx).Result()
	if err != nil {
		return fmt.Errorf("failed to ping Redis: %w", err)
	}
	return nil
}

// Close закрывает соединение с Redis
func Close(client *redis.Client) error {
	if client != nil {
		return client.Close()
	}
	return nil
}
