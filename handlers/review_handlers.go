package handlers

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/Luksuz/ai-video-editor-client/internal/chunkgrid"
	"github.com/Luksuz/ai-video-editor-client/internal/processing"
	"github.com/Luksuz/ai-video-editor-client/internal/storage"
	"github.com/Luksuz/ai-video-editor-client/utils"
)

// OpenReviewRequest names the video whose chunks get reviewed.
type OpenReviewRequest struct {
	VideoID string `json:"video_id" validate:"required,uuid"`
}

// ChunkIndexRequest addresses one chunk position in the grid.
type ChunkIndexRequest struct {
	ChunkIndex *int `json:"chunk_index" validate:"required"`
}

// StartDragRequest begins dragging a custom asset over the grid.
type StartDragRequest struct {
	AssetID  string `json:"asset_id"`
	AssetURL string `json:"asset_url" validate:"required,url"`
}

// reviewView summarizes a grid for responses that do not page chunks.
func reviewView(grid *chunkgrid.Grid) fiber.Map {
	return fiber.Map{
		"video_id":     grid.VideoID(),
		"chunk_count":  grid.ChunkCount(),
		"total_pages":  grid.TotalPages(),
		"current_page": grid.CurrentPage(),
	}
}

// resolveReview maps the :videoId route param to an open review grid.
func (h *ApplicationHandler) resolveReview(c *fiber.Ctx) (*chunkgrid.Grid, error) {
	id, err := uuid.Parse(c.Params("videoId"))
	if err != nil {
		return nil, errors.New("invalid video ID format")
	}
	return h.Reviews.Get(id)
}

// OpenReview opens (or reopens) the chunk review of a generated video,
// seeding the grid from the video's current chunk URLs.
// POST /api/v1/reviews
func (h *ApplicationHandler) OpenReview(c *fiber.Ctx) error {
	var payload OpenReviewRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, fmt.Sprintf("Cannot parse JSON: %v", err))
	}
	if err := validate.Struct(payload); err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, strings.Join(utils.FormatValidationErrors(err), ", "))
	}
	videoID, err := uuid.Parse(payload.VideoID)
	if err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "Invalid video ID format")
	}

	video, err := h.Videos.GetVideo(c.Context(), videoID)
	if err != nil {
		if errors.Is(err, storage.ErrVideoNotFound) {
			return utils.RespondWithError(c, fiber.StatusNotFound, err.Error())
		}
		h.Logger.Errorf("Error fetching video %s for review: %v", videoID, err)
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Could not fetch video for review")
	}
	if len(video.ChunkURLs) == 0 {
		return utils.RespondWithError(c, fiber.StatusConflict, "Video has no chunks to review yet")
	}

	// Reopening refreshes the chunk list but keeps the existing grid, so a
	// review left on page 3 stays on page 3.
	grid, err := h.Reviews.Get(videoID)
	if err != nil {
		grid = chunkgrid.New(videoID.String(), video.ChunkURLs, h.Replacer, h.Logger)
		h.Reviews.Put(videoID, grid)
	} else {
		grid.SetChunks(video.ChunkURLs)
	}

	h.Logger.Infof("Opened review of video %s with %d chunks", videoID, grid.ChunkCount())
	return utils.RespondWithJSON(c, fiber.StatusCreated, reviewView(grid))
}

// GetReviewChunks returns one page of the grid. A page query parameter
// moves the grid to that page first; out-of-range values clamp.
// GET /api/v1/reviews/:videoId/chunks?page=n
func (h *ApplicationHandler) GetReviewChunks(c *fiber.Ctx) error {
	grid, err := h.resolveReview(c)
	if err != nil {
		return h.respondLookupError(c, err)
	}

	if page := c.QueryInt("page", -1); page >= 0 {
		grid.SetPage(page)
	}

	view := reviewView(grid)
	view["chunks"] = grid.Page()
	return utils.RespondWithJSON(c, fiber.StatusOK, view)
}

// ToggleChunkPlayback starts playback of a chunk, stopping whichever chunk
// was playing before. Toggling the playing chunk stops it.
// PUT /api/v1/reviews/:videoId/playback
func (h *ApplicationHandler) ToggleChunkPlayback(c *fiber.Ctx) error {
	grid, err := h.resolveReview(c)
	if err != nil {
		return h.respondLookupError(c, err)
	}

	var payload ChunkIndexRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, fmt.Sprintf("Cannot parse JSON: %v", err))
	}
	if err := validate.Struct(payload); err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, strings.Join(utils.FormatValidationErrors(err), ", "))
	}

	playing, err := grid.TogglePlayback(*payload.ChunkIndex)
	if err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, err.Error())
	}

	return utils.RespondWithJSON(c, fiber.StatusOK, fiber.Map{
		"chunk_index": *payload.ChunkIndex,
		"playing":     playing,
	})
}

// StartDrag begins dragging a custom asset over the grid. Starting a new
// drag abandons any previous one.
// POST /api/v1/reviews/:videoId/drag
func (h *ApplicationHandler) StartDrag(c *fiber.Ctx) error {
	grid, err := h.resolveReview(c)
	if err != nil {
		return h.respondLookupError(c, err)
	}

	var payload StartDragRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, fmt.Sprintf("Cannot parse JSON: %v", err))
	}
	if err := validate.Struct(payload); err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, strings.Join(utils.FormatValidationErrors(err), ", "))
	}

	grid.DragStart(payload.AssetID, payload.AssetURL)
	state, _ := grid.ActiveDrag()
	return utils.RespondWithJSON(c, fiber.StatusOK, state)
}

// SetDropTarget marks the chunk currently hovered during a drag. Only the
// last hovered chunk is remembered; nothing is replaced until drop.
// PUT /api/v1/reviews/:videoId/drag/target
func (h *ApplicationHandler) SetDropTarget(c *fiber.Ctx) error {
	grid, err := h.resolveReview(c)
	if err != nil {
		return h.respondLookupError(c, err)
	}

	var payload ChunkIndexRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, fmt.Sprintf("Cannot parse JSON: %v", err))
	}
	if err := validate.Struct(payload); err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, strings.Join(utils.FormatValidationErrors(err), ", "))
	}

	if err := grid.DragOver(*payload.ChunkIndex); err != nil {
		status := fiber.StatusBadRequest
		if errors.Is(err, chunkgrid.ErrNoActiveDrag) {
			status = fiber.StatusConflict
		}
		return utils.RespondWithError(c, status, err.Error())
	}

	state, _ := grid.ActiveDrag()
	return utils.RespondWithJSON(c, fiber.StatusOK, state)
}

// DropOnTarget commits the drag: the hovered chunk is sent to the
// processing service for replacement by the dragged asset. The drag state
// resets whether or not the replacement succeeds.
// POST /api/v1/reviews/:videoId/drag/drop
func (h *ApplicationHandler) DropOnTarget(c *fiber.Ctx) error {
	grid, err := h.resolveReview(c)
	if err != nil {
		return h.respondLookupError(c, err)
	}

	result, err := grid.Drop(c.Context())
	if err != nil {
		var apiErr *processing.APIError
		switch {
		case errors.Is(err, chunkgrid.ErrNoActiveDrag):
			return utils.RespondWithError(c, fiber.StatusConflict, err.Error())
		case errors.Is(err, chunkgrid.ErrNoDropTarget):
			return utils.RespondWithError(c, fiber.StatusBadRequest, err.Error())
		case errors.As(err, &apiErr):
			h.Logger.Errorf("Chunk replacement rejected by processing service: %v", err)
			return utils.RespondWithError(c, fiber.StatusBadGateway, apiErr.Message())
		}
		h.Logger.Errorf("Chunk replacement failed: %v", err)
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Could not request chunk replacement")
	}

	return utils.RespondWithJSON(c, fiber.StatusAccepted, fiber.Map{
		"message": "Chunk replacement requested",
		"result":  result,
	})
}

// CancelDrag abandons the current drag without replacing anything.
// DELETE /api/v1/reviews/:videoId/drag
func (h *ApplicationHandler) CancelDrag(c *fiber.Ctx) error {
	grid, err := h.resolveReview(c)
	if err != nil {
		return h.respondLookupError(c, err)
	}

	grid.DragEnd()
	return utils.RespondWithJSON(c, fiber.StatusOK, reviewView(grid))
}
