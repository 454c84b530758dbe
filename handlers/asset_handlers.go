package handlers

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/Luksuz/ai-video-editor-client/internal/storage"
	"github.com/Luksuz/ai-video-editor-client/internal/uploader"
	"github.com/Luksuz/ai-video-editor-client/models"
	"github.com/Luksuz/ai-video-editor-client/utils"
)

// assetPrefix is where a video's custom clips live in the bucket.
func assetPrefix(videoID uuid.UUID) string {
	return "custom/" + videoID.String()
}

// UploadCustomAsset stores a user-provided clip under the video's asset
// prefix. These clips are the drag sources for chunk replacement.
// POST /api/v1/videos/:videoId/assets
func (h *ApplicationHandler) UploadCustomAsset(c *fiber.Ctx) error {
	videoID, err := uuid.Parse(c.Params("videoId"))
	if err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "Invalid video ID format")
	}

	// The video must exist before accepting assets for it.
	if _, err := h.Videos.GetVideo(c.Context(), videoID); err != nil {
		if errors.Is(err, storage.ErrVideoNotFound) {
			return utils.RespondWithError(c, fiber.StatusNotFound, err.Error())
		}
		h.Logger.Errorf("Error verifying video %s for asset upload: %v", videoID, err)
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Could not verify video")
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "No file provided")
	}
	src, err := fileHeader.Open()
	if err != nil {
		h.Logger.Errorf("Error opening asset file %s: %v", fileHeader.Filename, err)
		return utils.RespondWithError(c, fiber.StatusInternalServerError, fmt.Sprintf("Error opening file: %v", err))
	}
	defer src.Close()

	assetID := uuid.New()
	path := fmt.Sprintf("%s/%s%s", assetPrefix(videoID), assetID, filepath.Ext(fileHeader.Filename))

	key, err := h.Storage.Upload(c.Context(), path, uploader.ContentTypeFor(fileHeader.Filename), src)
	if err != nil {
		h.Logger.Errorf("Error uploading asset %s for video %s: %v", fileHeader.Filename, videoID, err)
		status := fiber.StatusInternalServerError
		var uploadErr *storage.UploadError
		if errors.As(err, &uploadErr) {
			status = fiber.StatusBadGateway
		}
		return utils.RespondWithError(c, status, fmt.Sprintf("Upload failed for %s: %v", fileHeader.Filename, err))
	}

	asset := models.CustomAsset{
		ID:         assetID,
		VideoID:    videoID,
		Name:       fileHeader.Filename,
		StorageKey: key,
		URL:        h.Storage.PublicURL(path),
		CreatedAt:  time.Now(),
	}

	h.Logger.Infof("Uploaded custom asset %s for video %s", assetID, videoID)
	return utils.RespondWithJSON(c, fiber.StatusCreated, asset)
}

// ListCustomAssets lists the clips uploaded for a video, newest first.
// GET /api/v1/videos/:videoId/assets
func (h *ApplicationHandler) ListCustomAssets(c *fiber.Ctx) error {
	videoID, err := uuid.Parse(c.Params("videoId"))
	if err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "Invalid video ID format")
	}

	objects, err := h.Storage.ListObjects(assetPrefix(videoID), 100, 0)
	if err != nil {
		h.Logger.Errorf("Error listing assets for video %s: %v", videoID, err)
		return utils.RespondWithError(c, fiber.StatusInternalServerError, "Could not list assets")
	}

	return utils.RespondWithJSON(c, fiber.StatusOK, objects)
}
