// Package videocache caches videos table reads in Redis. The review
// screen polls while a video is generating, so list and row lookups get
// a short-lived cache in front of the database. The cache is optional;
// callers hold a nil *Cache when Redis is not configured.
package videocache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/Luksuz/ai-video-editor-client/models"
)

const (
	listKey    = "videos:list"
	keyPrefix  = "videos:"
	defaultTTL = 30 * time.Second
)

// ErrMiss is returned when the requested entry is not cached.
var ErrMiss = errors.New("cache miss")

// Cache is a read-through cache for video rows.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	logger *logrus.Logger
}

// New connects to Redis and verifies the connection with a short ping.
// A non-positive ttl falls back to the default.
func New(addr, password string, db int, ttl time.Duration, logger *logrus.Logger) (*Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := client.Ping(ctx).Result(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	if ttl <= 0 {
		ttl = defaultTTL
	}
	logger.Infof("Video cache connected to redis at %s", addr)
	return &Cache{client: client, ttl: ttl, logger: logger}, nil
}

func videoKey(id uuid.UUID) string {
	return keyPrefix + id.String()
}

// GetList returns the cached video list or ErrMiss.
func (c *Cache) GetList(ctx context.Context) ([]models.Video, error) {
	data, err := c.client.Get(ctx, listKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrMiss
		}
		return nil, fmt.Errorf("get cached video list: %w", err)
	}

	var videos []models.Video
	if err := json.Unmarshal([]byte(data), &videos); err != nil {
		return nil, fmt.Errorf("decode cached video list: %w", err)
	}
	return videos, nil
}

// SetList stores the video list for the cache TTL.
func (c *Cache) SetList(ctx context.Context, videos []models.Video) error {
	data, err := json.Marshal(videos)
	if err != nil {
		return fmt.Errorf("marshal video list: %w", err)
	}
	if err := c.client.Set(ctx, listKey, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache video list: %w", err)
	}
	return nil
}

// GetVideo returns one cached video row or ErrMiss.
func (c *Cache) GetVideo(ctx context.Context, id uuid.UUID) (models.Video, error) {
	data, err := c.client.Get(ctx, videoKey(id)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return models.Video{}, ErrMiss
		}
		return models.Video{}, fmt.Errorf("get cached video %s: %w", id, err)
	}

	var video models.Video
	if err := json.Unmarshal([]byte(data), &video); err != nil {
		return models.Video{}, fmt.Errorf("decode cached video %s: %w", id, err)
	}
	return video, nil
}

// SetVideo stores one video row for the cache TTL.
func (c *Cache) SetVideo(ctx context.Context, video models.Video) error {
	data, err := json.Marshal(video)
	if err != nil {
		return fmt.Errorf("marshal video %s: %w", video.ID, err)
	}
	if err := c.client.Set(ctx, videoKey(video.ID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache video %s: %w", video.ID, err)
	}
	return nil
}

// Invalidate drops the list entry and any given video rows, for example
// after a rename or delete.
func (c *Cache) Invalidate(ctx context.Context, ids ...uuid.UUID) error {
	keys := make([]string, 0, len(ids)+1)
	keys = append(keys, listKey)
	for _, id := range ids {
		keys = append(keys, videoKey(id))
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("invalidate video cache: %w", err)
	}
	return nil
}

// Close releases the Redis connection.
func (c *Cache) Close() error {
	return c.client.Close()
}
