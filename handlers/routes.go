package handlers

import (
	"github.com/gofiber/fiber/v2"
	fiberSwagger "github.com/swaggo/fiber-swagger"
)

// RegisterRoutes mounts every route on the app. Handlers hang off the
// ApplicationHandler so tests can stand up the full route table with
// faked collaborators.
func RegisterRoutes(app *fiber.App, h *ApplicationHandler) {
	// Health check route
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status":  "ok",
			"message": "AI video editor gateway is healthy",
		})
	})

	app.Get("/swagger/*", fiberSwagger.WrapHandler)

	// Upload boundary for the editor front-end. Lives outside the
	// versioned group because its response shape is fixed by the
	// front-end contract.
	app.Post("/api/upload", h.UploadFileHandler)

	apiV1 := app.Group("/api/v1")

	// Editor session routes
	sessions := apiV1.Group("/sessions")
	sessions.Post("", h.CreateSession)
	sessions.Get("/:sessionId", h.GetSession)
	sessions.Delete("/:sessionId", h.DeleteSession)
	sessions.Post("/:sessionId/submit", h.SubmitSession)

	// Track routes within a session
	sessionTracks := sessions.Group("/:sessionId/tracks")
	sessionTracks.Post("", h.AddTracks)
	sessionTracks.Put("/reorder", h.ReorderTracks)
	sessionTracks.Delete("/:trackId", h.RemoveTrack)
	sessionTracks.Post("/:trackId/breakpoints", h.AddBreakpoint)
	sessionTracks.Delete("/:trackId/breakpoints", h.RemoveBreakpoint)
	sessionTracks.Put("/:trackId/even-split", h.EvenSplitTrack)
	sessionTracks.Get("/:trackId/waveform", h.GetWaveform)
	sessionTracks.Post("/:trackId/save", h.SaveTrack)

	// Video routes
	videos := apiV1.Group("/videos")
	videos.Get("", h.ListVideos)
	videos.Get("/:videoId", h.GetVideo)
	videos.Patch("/:videoId", h.RenameVideo)
	videos.Delete("/:videoId", h.DeleteVideo)
	videos.Post("/:videoId/assets", h.UploadCustomAsset)
	videos.Get("/:videoId/assets", h.ListCustomAssets)

	// Chunk review routes
	reviews := apiV1.Group("/reviews")
	reviews.Post("", h.OpenReview)
	reviews.Get("/:videoId/chunks", h.GetReviewChunks)
	reviews.Put("/:videoId/playback", h.ToggleChunkPlayback)
	reviews.Post("/:videoId/drag", h.StartDrag)
	reviews.Put("/:videoId/drag/target", h.SetDropTarget)
	reviews.Post("/:videoId/drag/drop", h.DropOnTarget)
	reviews.Delete("/:videoId/drag", h.CancelDrag)
}
