package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/supabase-community/postgrest-go"

	"github.com/Luksuz/ai-video-editor-client/models"
)

// ErrVideoNotFound is returned when no videos row matches the given id.
var ErrVideoNotFound = errors.New("video not found")

const videosTable = "videos"

// ListVideos returns all video rows, newest first. Row lifecycle is owned
// by the processing service; this side only reads.
func (c *Client) ListVideos(ctx context.Context) ([]models.Video, error) {
	body, _, err := c.supabase.From(videosTable).
		Select("*", "", false).
		Order("created_at", &postgrest.OrderOpts{Ascending: false}).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("list videos: %w", err)
	}

	var videos []models.Video
	if err := json.Unmarshal(body, &videos); err != nil {
		return nil, fmt.Errorf("decode videos: %w", err)
	}
	// The review screen expects a list even when the table is empty.
	if videos == nil {
		videos = []models.Video{}
	}
	return videos, nil
}

// GetVideo returns one video row by id.
func (c *Client) GetVideo(ctx context.Context, id uuid.UUID) (models.Video, error) {
	body, _, err := c.supabase.From(videosTable).
		Select("*", "", false).
		Eq("id", id.String()).
		Execute()
	if err != nil {
		return models.Video{}, fmt.Errorf("fetch video %s: %w", id, err)
	}

	var videos []models.Video
	if err := json.Unmarshal(body, &videos); err != nil {
		return models.Video{}, fmt.Errorf("decode video %s: %w", id, err)
	}
	if len(videos) == 0 {
		return models.Video{}, fmt.Errorf("%w: %s", ErrVideoNotFound, id)
	}
	return videos[0], nil
}

// RenameVideo updates a video's display name and returns the updated row.
func (c *Client) RenameVideo(ctx context.Context, id uuid.UUID, name string) (models.Video, error) {
	body, _, err := c.supabase.From(videosTable).
		Update(map[string]interface{}{
			"name":       name,
			"updated_at": time.Now(),
		}, "representation", "").
		Eq("id", id.String()).
		Execute()
	if err != nil {
		return models.Video{}, fmt.Errorf("rename video %s: %w", id, err)
	}

	var videos []models.Video
	if err := json.Unmarshal(body, &videos); err != nil || len(videos) == 0 {
		return models.Video{}, fmt.Errorf("%w: %s", ErrVideoNotFound, id)
	}
	return videos[0], nil
}

// DeleteVideo removes a video row. Chunk files in storage are owned by
// the processing service and are not touched here.
func (c *Client) DeleteVideo(ctx context.Context, id uuid.UUID) error {
	_, _, err := c.supabase.From(videosTable).
		Delete("", "").
		Eq("id", id.String()).
		Execute()
	if err != nil {
		return fmt.Errorf("delete video %s: %w", id, err)
	}
	return nil
}
