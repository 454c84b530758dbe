package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/Luksuz/ai-video-editor-client/internal/processing"
	"github.com/Luksuz/ai-video-editor-client/internal/storage"
	"github.com/Luksuz/ai-video-editor-client/internal/trackset"
	"github.com/Luksuz/ai-video-editor-client/internal/uploader"
	"github.com/Luksuz/ai-video-editor-client/models"
)

// UploadFileHandler handles the editor's direct upload: one audio file plus
// its breakpoint metadata land in object storage in a single request. The
// {success, key, url} response shape is fixed by the front-end contract, so
// this handler does not use the shared envelope.
func (h *ApplicationHandler) UploadFileHandler(c *fiber.Ctx) error {
	// Get the file from the request
	fileHeader, err := c.FormFile("file")
	if err != nil {
		h.Logger.Errorf("Upload request without a file field: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "No file provided",
		})
	}

	// Breakpoints arrive as a JSON array string next to the file.
	var breakpoints []float64
	if raw := c.FormValue("breakpoints"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &breakpoints); err != nil {
			h.Logger.Errorf("Malformed breakpoints field for %s: %v", fileHeader.Filename, err)
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"error":   "breakpoints must be a JSON array of numbers",
			})
		}
	}
	if breakpoints == nil {
		breakpoints = []float64{}
	}

	// The front-end probes the duration before uploading; absent means unknown.
	var duration float64
	if raw := c.FormValue("duration"); raw != "" {
		d, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			h.Logger.Errorf("Malformed duration field for %s: %v", fileHeader.Filename, err)
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"error":   "duration must be a number",
			})
		}
		duration = d
	}

	src, err := fileHeader.Open()
	if err != nil {
		h.Logger.Errorf("Error opening uploaded file %s: %v", fileHeader.Filename, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   fmt.Sprintf("Error opening file: %v", err),
		})
	}
	defer src.Close()

	id := uuid.New()
	path := fmt.Sprintf("uploads/%s%s", id, filepath.Ext(fileHeader.Filename))

	key, err := h.Storage.Upload(c.Context(), path, uploader.ContentTypeFor(fileHeader.Filename), src)
	if err != nil {
		h.Logger.Errorf("Error uploading %s to storage: %v", fileHeader.Filename, err)
		status := fiber.StatusInternalServerError
		var uploadErr *storage.UploadError
		if errors.As(err, &uploadErr) {
			status = fiber.StatusBadGateway
		}
		return c.Status(status).JSON(fiber.Map{
			"success": false,
			"error":   fmt.Sprintf("Upload failed for %s: %v", fileHeader.Filename, err),
		})
	}

	// Metadata sidecar. The file upload already succeeded, so a failure
	// here is logged and swallowed rather than reported to the user.
	meta := models.TrackMetadata{
		FileName:    fileHeader.Filename,
		Duration:    duration,
		Breakpoints: breakpoints,
	}
	metaBytes, err := json.Marshal(meta)
	if err == nil {
		metaPath := fmt.Sprintf("uploads/%s.metadata.json", id)
		if _, err := h.Storage.Upload(c.Context(), metaPath, "application/json", bytes.NewReader(metaBytes)); err != nil {
			h.Logger.Warnf("Metadata upload for %s failed: %v", fileHeader.Filename, err)
		}
	}

	h.Logger.Infof("Uploaded %s as %s", fileHeader.Filename, key)
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"key":     key,
		"url":     h.Storage.PublicURL(path),
	})
}

// SaveTrack uploads one session track's file and metadata to storage.
// POST /api/v1/sessions/:sessionId/tracks/:trackId/save
func (h *ApplicationHandler) SaveTrack(c *fiber.Ctx) error {
	sess, err := h.resolveSession(c)
	if err != nil {
		return h.respondLookupError(c, err)
	}
	trackID, err := uuid.Parse(c.Params("trackId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "error",
			"message": "Invalid track ID format",
		})
	}

	// Upload errors from the coordinator already carry the file name.
	track, err := h.Uploads.SaveTrack(c.Context(), sess.Tracks, trackID)
	if err != nil {
		return h.respondUploadError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "success",
		"data":   track,
	})
}

// SubmitSessionRequest is the optional submit body. output_dir defaults to
// the session id so repeated submits of one session land in one place.
type SubmitSessionRequest struct {
	CombineVideos bool   `json:"combine_videos"`
	OutputDir     string `json:"output_dir"`
}

// SubmitSession force-uploads pending tracks and hands the session's track
// list to the external processing service.
// POST /api/v1/sessions/:sessionId/submit
func (h *ApplicationHandler) SubmitSession(c *fiber.Ctx) error {
	sess, err := h.resolveSession(c)
	if err != nil {
		return h.respondLookupError(c, err)
	}

	payload := new(SubmitSessionRequest)
	if len(c.Body()) > 0 {
		if err := c.BodyParser(payload); err != nil {
			h.Logger.Errorf("Error parsing submit payload: %v", err)
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"status":  "error",
				"message": fmt.Sprintf("Invalid request body: %v", err),
			})
		}
	}
	if payload.OutputDir == "" {
		payload.OutputDir = sess.ID.String()
	}

	h.Logger.Infof("Submitting session %s (combine=%v, output=%s)", sess.ID, payload.CombineVideos, payload.OutputDir)
	result, err := h.Uploads.Submit(c.Context(), sess.Tracks, payload.CombineVideos, payload.OutputDir)
	if err != nil {
		return h.respondUploadError(c, err)
	}

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"status":  "success",
		"message": "Processing started",
		"data":    result,
	})
}

// respondUploadError maps save/submit failures onto HTTP statuses. The
// messages keep the triggering file name the coordinator wraps in, so the
// front-end can show which track failed.
func (h *ApplicationHandler) respondUploadError(c *fiber.Ctx, err error) error {
	var apiErr *processing.APIError
	var uploadErr *storage.UploadError

	status := fiber.StatusInternalServerError
	message := err.Error()
	switch {
	case errors.Is(err, trackset.ErrTrackNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, trackset.ErrUploadInProgress), errors.Is(err, uploader.ErrBusyUploading):
		status = fiber.StatusConflict
	case errors.Is(err, uploader.ErrNoTracks):
		status = fiber.StatusBadRequest
	case errors.As(err, &apiErr):
		status = fiber.StatusBadGateway
		message = apiErr.Message()
	case errors.As(err, &uploadErr):
		status = fiber.StatusBadGateway
	}

	h.Logger.Errorf("Upload operation failed: %v", err)
	return c.Status(status).JSON(fiber.Map{
		"status":  "error",
		"message": message,
	})
}
