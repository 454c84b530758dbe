package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"math"
	"math/rand"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/Luksuz/ai-video-editor-client/internal/trackset"
	"github.com/Luksuz/ai-video-editor-client/models"
	"github.com/Luksuz/ai-video-editor-client/utils"
)

var validate = validator.New()

// ReorderRequest moves the track at position from to position to.
type ReorderRequest struct {
	From int `json:"from" validate:"min=0"`
	To   int `json:"to" validate:"min=0"`
}

// BreakpointRequest carries one cut point in seconds.
type BreakpointRequest struct {
	Time float64 `json:"time" validate:"required,gt=0"`
}

// EvenSplitRequest asks for the track to be cut into count equal chunks.
type EvenSplitRequest struct {
	Count int `json:"count" validate:"required,min=1"`
}

// AddTracks appends uploaded audio files to the session's track list in
// input order. Each file needs a client-probed duration; the form carries
// them as a JSON array aligned with the files.
// POST /api/v1/sessions/:sessionId/tracks
func (h *ApplicationHandler) AddTracks(c *fiber.Ctx) error {
	sess, err := h.resolveSession(c)
	if err != nil {
		return h.respondLookupError(c, err)
	}

	form, err := c.MultipartForm()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "error",
			"message": "Expected multipart form data",
		})
	}
	files := form.File["file"]
	if len(files) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "error",
			"message": "No file provided",
		})
	}

	var durations []float64
	if raw := c.FormValue("durations"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &durations); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"status":  "error",
				"message": "durations must be a JSON array of numbers",
			})
		}
	} else if raw := c.FormValue("duration"); raw != "" {
		d, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"status":  "error",
				"message": "duration must be a number",
			})
		}
		durations = []float64{d}
	}
	if len(durations) != len(files) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "error",
			"message": "durations must list one entry per file",
		})
	}

	h.Logger.Infof("Adding %d track(s) to session %s", len(files), sess.ID)
	added := make([]models.Track, 0, len(files))
	for i, fh := range files {
		src, err := fh.Open()
		if err != nil {
			h.Logger.Errorf("Error opening uploaded file %s: %v", fh.Filename, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"status":  "error",
				"message": fmt.Sprintf("Error opening file %s: %v", fh.Filename, err),
			})
		}
		track, err := sess.Tracks.Add(fh.Filename, src, durations[i])
		src.Close()
		if err != nil {
			status := fiber.StatusInternalServerError
			if errors.Is(err, trackset.ErrDurationUnknown) {
				status = fiber.StatusBadRequest
			}
			h.Logger.Errorf("Error adding track %s: %v", fh.Filename, err)
			return c.Status(status).JSON(fiber.Map{
				"status":  "error",
				"message": fmt.Sprintf("Could not add %s: %v", fh.Filename, err),
			})
		}
		added = append(added, track)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"status": "success",
		"data":   added,
	})
}

// RemoveTrack drops a track from the session and releases its spooled file.
// DELETE /api/v1/sessions/:sessionId/tracks/:trackId
func (h *ApplicationHandler) RemoveTrack(c *fiber.Ctx) error {
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

	if err := sess.Tracks.Remove(trackID); err != nil {
		return h.respondLookupError(c, err)
	}

	h.Logger.Infof("Removed track %s from session %s", trackID, sess.ID)
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status":  "success",
		"message": "Track removed successfully",
	})
}

// ReorderTracks moves one track to a new position. Drag gestures may call
// this repeatedly; each call commits the order it names.
// PUT /api/v1/sessions/:sessionId/tracks/reorder
func (h *ApplicationHandler) ReorderTracks(c *fiber.Ctx) error {
	sess, err := h.resolveSession(c)
	if err != nil {
		return h.respondLookupError(c, err)
	}

	payload := new(ReorderRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "error",
			"message": fmt.Sprintf("Invalid request body: %v", err),
		})
	}
	if err := validate.Struct(payload); err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, strings.Join(utils.FormatValidationErrors(err), ", "))
	}

	if err := sess.Tracks.Reorder(payload.From, payload.To); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "error",
			"message": err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "success",
		"data":   sess.Tracks.Snapshot(),
	})
}

// AddBreakpoint places a cut point on a track. Points outside the open
// interval (0, duration) are rejected.
// POST /api/v1/sessions/:sessionId/tracks/:trackId/breakpoints
func (h *ApplicationHandler) AddBreakpoint(c *fiber.Ctx) error {
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

	payload := new(BreakpointRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "error",
			"message": fmt.Sprintf("Invalid request body: %v", err),
		})
	}
	if err := validate.Struct(payload); err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, strings.Join(utils.FormatValidationErrors(err), ", "))
	}

	track, err := sess.Tracks.AddBreakpoint(trackID, payload.Time)
	if err != nil {
		if errors.Is(err, trackset.ErrBreakpointOutOfRange) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"status":  "error",
				"message": err.Error(),
			})
		}
		return h.respondLookupError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "success",
		"data":   track,
	})
}

// RemoveBreakpoint deletes a cut point from a track. Removing a point that
// is not set leaves the track unchanged.
// DELETE /api/v1/sessions/:sessionId/tracks/:trackId/breakpoints
func (h *ApplicationHandler) RemoveBreakpoint(c *fiber.Ctx) error {
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

	payload := new(BreakpointRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "error",
			"message": fmt.Sprintf("Invalid request body: %v", err),
		})
	}

	track, err := sess.Tracks.RemoveBreakpoint(trackID, payload.Time)
	if err != nil {
		return h.respondLookupError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "success",
		"data":   track,
	})
}

// EvenSplitTrack replaces a track's breakpoints with count equal chunks.
// PUT /api/v1/sessions/:sessionId/tracks/:trackId/even-split
func (h *ApplicationHandler) EvenSplitTrack(c *fiber.Ctx) error {
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

	payload := new(EvenSplitRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "error",
			"message": fmt.Sprintf("Invalid request body: %v", err),
		})
	}
	if err := validate.Struct(payload); err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, strings.Join(utils.FormatValidationErrors(err), ", "))
	}

	track, err := sess.Tracks.EvenSplit(trackID, payload.Count)
	if err != nil {
		if errors.Is(err, trackset.ErrInvalidSplitCount) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"status":  "error",
				"message": err.Error(),
			})
		}
		return h.respondLookupError(c, err)
	}

	h.Logger.Infof("Split track %s into %d chunks", trackID, payload.Count)
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "success",
		"data":   track,
	})
}

// GetWaveform returns the decorative waveform for a track: a stable
// pseudo-random bar pattern seeded from the track id, not real audio
// analysis.
// GET /api/v1/sessions/:sessionId/tracks/:trackId/waveform?bars=n
func (h *ApplicationHandler) GetWaveform(c *fiber.Ctx) error {
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
	if _, err := sess.Tracks.Get(trackID); err != nil {
		return h.respondLookupError(c, err)
	}

	bars := c.QueryInt("bars", 64)
	if bars < 8 {
		bars = 8
	}
	if bars > 512 {
		bars = 512
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "success",
		"data": fiber.Map{
			"track_id": trackID,
			"bars":     waveformBars(trackID, bars),
		},
	})
}

// waveformBars derives n bar heights in (0, 1] from the track id. The same
// track always renders the same pattern.
func waveformBars(id uuid.UUID, n int) []float64 {
	seed := fnv.New64a()
	seed.Write(id[:])
	rng := rand.New(rand.NewSource(int64(seed.Sum64())))

	bars := make([]float64, n)
	for i := range bars {
		bars[i] = math.Round((0.1+0.9*rng.Float64())*1000) / 1000
	}
	return bars
}
