package handlers

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/Luksuz/ai-video-editor-client/internal/storage"
	"github.com/Luksuz/ai-video-editor-client/internal/videocache"
	"github.com/Luksuz/ai-video-editor-client/models"
)

// RenameVideoRequest is the PATCH body for renaming a video.
type RenameVideoRequest struct {
	Name string `json:"name" validate:"required"`
}

// VideoSuccessResponse defines the structure for a successful response for a single video.
type VideoSuccessResponse struct {
	Status string       `json:"status"`
	Data   models.Video `json:"data"`
}

// VideoListSuccessResponse defines the structure for a successful response when listing videos.
type VideoListSuccessResponse struct {
	Status string         `json:"status"`
	Data   []models.Video `json:"data"`
}

// ErrorResponse defines a common structure for error responses.
type ErrorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// ListVideos godoc
// @Summary List generated videos
// @Description Returns every generated video, newest first. Reads go through the cache when one is configured; a cache failure falls back to the table.
// @Tags videos
// @Produce  json
// @Success 200 {object} VideoListSuccessResponse "Successfully retrieved list of videos"
// @Failure 500 {object} ErrorResponse "Internal server error if videos cannot be retrieved"
// @Router /videos [get]
func (h *ApplicationHandler) ListVideos(c *fiber.Ctx) error {
	if h.Cache != nil {
		videos, err := h.Cache.GetList(c.Context())
		if err == nil {
			return c.Status(fiber.StatusOK).JSON(VideoListSuccessResponse{Status: "success", Data: videos})
		}
		if !errors.Is(err, videocache.ErrMiss) {
			h.Logger.Warnf("Video list cache read failed: %v", err)
		}
	}

	videos, err := h.Videos.ListVideos(c.Context())
	if err != nil {
		h.Logger.Errorf("Error listing videos: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Status:  "error",
			Message: fmt.Sprintf("Could not list videos: %v", err),
		})
	}
	// An empty table must serialize as [], whatever the store returned.
	if videos == nil {
		videos = []models.Video{}
	}

	if h.Cache != nil {
		if err := h.Cache.SetList(c.Context(), videos); err != nil {
			h.Logger.Warnf("Video list cache write failed: %v", err)
		}
	}

	return c.Status(fiber.StatusOK).JSON(VideoListSuccessResponse{Status: "success", Data: videos})
}

// GetVideo godoc
// @Summary Get one video
// @Description Returns one video row with its chunk URLs and progress counters.
// @Tags videos
// @Produce  json
// @Param   videoId path string true "Video ID (UUID)"
// @Success 200 {object} VideoSuccessResponse "Successfully retrieved the video"
// @Failure 400 {object} ErrorResponse "Bad request if the id is not a UUID"
// @Failure 404 {object} ErrorResponse "Not found if no video has that id"
// @Router /videos/{videoId} [get]
func (h *ApplicationHandler) GetVideo(c *fiber.Ctx) error {
	videoID, err := uuid.Parse(c.Params("videoId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Status:  "error",
			Message: "Invalid video ID format",
		})
	}

	if h.Cache != nil {
		video, err := h.Cache.GetVideo(c.Context(), videoID)
		if err == nil {
			return c.Status(fiber.StatusOK).JSON(VideoSuccessResponse{Status: "success", Data: video})
		}
		if !errors.Is(err, videocache.ErrMiss) {
			h.Logger.Warnf("Video cache read failed for %s: %v", videoID, err)
		}
	}

	video, err := h.Videos.GetVideo(c.Context(), videoID)
	if err != nil {
		if errors.Is(err, storage.ErrVideoNotFound) {
			return h.respondLookupError(c, err)
		}
		h.Logger.Errorf("Error fetching video %s: %v", videoID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Status:  "error",
			Message: fmt.Sprintf("Could not fetch video: %v", err),
		})
	}

	if h.Cache != nil {
		if err := h.Cache.SetVideo(c.Context(), video); err != nil {
			h.Logger.Warnf("Video cache write failed for %s: %v", videoID, err)
		}
	}

	return c.Status(fiber.StatusOK).JSON(VideoSuccessResponse{Status: "success", Data: video})
}

// RenameVideo updates a video's display name.
// PATCH /api/v1/videos/:videoId
func (h *ApplicationHandler) RenameVideo(c *fiber.Ctx) error {
	videoID, err := uuid.Parse(c.Params("videoId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "error",
			"message": "Invalid video ID format",
		})
	}

	payload := new(RenameVideoRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "error",
			"message": fmt.Sprintf("Invalid request body: %v", err),
		})
	}
	if err := validate.Struct(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "error",
			"message": "name is required",
		})
	}

	video, err := h.Videos.RenameVideo(c.Context(), videoID, payload.Name)
	if err != nil {
		if errors.Is(err, storage.ErrVideoNotFound) {
			return h.respondLookupError(c, err)
		}
		h.Logger.Errorf("Error renaming video %s: %v", videoID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"status":  "error",
			"message": fmt.Sprintf("Could not rename video: %v", err),
		})
	}

	h.invalidateVideoCache(c, videoID)
	h.Logger.Infof("Renamed video %s to %q", videoID, payload.Name)
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "success",
		"data":   video,
	})
}

// DeleteVideo removes a video row and closes any open review of it.
// DELETE /api/v1/videos/:videoId
func (h *ApplicationHandler) DeleteVideo(c *fiber.Ctx) error {
	videoID, err := uuid.Parse(c.Params("videoId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "error",
			"message": "Invalid video ID format",
		})
	}

	if err := h.Videos.DeleteVideo(c.Context(), videoID); err != nil {
		h.Logger.Errorf("Error deleting video %s: %v", videoID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"status":  "error",
			"message": fmt.Sprintf("Could not delete video: %v", err),
		})
	}

	h.Reviews.Remove(videoID)
	h.invalidateVideoCache(c, videoID)
	h.Logger.Infof("Deleted video %s", videoID)
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status":  "success",
		"message": "Video deleted successfully",
	})
}

// invalidateVideoCache drops the cached list and row after a write. Cache
// trouble is never surfaced; the write already happened.
func (h *ApplicationHandler) invalidateVideoCache(c *fiber.Ctx, videoID uuid.UUID) {
	if h.Cache == nil {
		return
	}
	if err := h.Cache.Invalidate(c.Context(), videoID); err != nil {
		h.Logger.Warnf("Cache invalidation failed for %s: %v", videoID, err)
	}
}
