package handlers

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/Luksuz/ai-video-editor-client/internal/storage"
	"github.com/Luksuz/ai-video-editor-client/internal/trackset"
)

var errBadSessionID = errors.New("invalid session ID format")

// resolveSession maps the :sessionId route param to a live session.
func (h *ApplicationHandler) resolveSession(c *fiber.Ctx) (*Session, error) {
	id, err := uuid.Parse(c.Params("sessionId"))
	if err != nil {
		return nil, errBadSessionID
	}
	return h.Sessions.Get(id)
}

// respondLookupError renders id resolution failures: unknown ids are 404,
// malformed ids are 400.
func (h *ApplicationHandler) respondLookupError(c *fiber.Ctx, err error) error {
	status := fiber.StatusBadRequest
	switch {
	case errors.Is(err, ErrSessionNotFound),
		errors.Is(err, ErrReviewNotFound),
		errors.Is(err, trackset.ErrTrackNotFound),
		errors.Is(err, storage.ErrVideoNotFound):
		status = fiber.StatusNotFound
	}
	return c.Status(status).JSON(fiber.Map{
		"status":  "error",
		"message": err.Error(),
	})
}

// sessionView is the session payload handlers return: the id plus a
// point-in-time snapshot of its tracks.
func sessionView(sess *Session) fiber.Map {
	return fiber.Map{
		"id":         sess.ID,
		"created_at": sess.CreatedAt,
		"tracks":     sess.Tracks.Snapshot(),
	}
}

// CreateSession starts an empty editor session.
// POST /api/v1/sessions
func (h *ApplicationHandler) CreateSession(c *fiber.Ctx) error {
	sess, err := h.Sessions.Create()
	if err != nil {
		h.Logger.Errorf("Error creating session: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"status":  "error",
			"message": fmt.Sprintf("Could not create session: %v", err),
		})
	}

	h.Logger.Infof("Created session %s", sess.ID)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"status": "success",
		"data":   sessionView(sess),
	})
}

// GetSession returns the session's track list with upload state and chunks.
// GET /api/v1/sessions/:sessionId
func (h *ApplicationHandler) GetSession(c *fiber.Ctx) error {
	sess, err := h.resolveSession(c)
	if err != nil {
		return h.respondLookupError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "success",
		"data":   sessionView(sess),
	})
}

// DeleteSession tears a session down and releases its spooled files.
// DELETE /api/v1/sessions/:sessionId
func (h *ApplicationHandler) DeleteSession(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("sessionId"))
	if err != nil {
		return h.respondLookupError(c, errBadSessionID)
	}
	if err := h.Sessions.Remove(id); err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return h.respondLookupError(c, err)
		}
		// The session is gone either way; spool cleanup failures only get logged.
		h.Logger.Warnf("Session %s removed with cleanup error: %v", id, err)
	}

	h.Logger.Infof("Deleted session %s", id)
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status":  "success",
		"message": "Session deleted successfully",
	})
}
