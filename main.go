package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"github.com/Luksuz/ai-video-editor-client/config"
	_ "github.com/Luksuz/ai-video-editor-client/docs"
	"github.com/Luksuz/ai-video-editor-client/handlers"
	"github.com/Luksuz/ai-video-editor-client/internal/processing"
	"github.com/Luksuz/ai-video-editor-client/internal/storage"
	"github.com/Luksuz/ai-video-editor-client/internal/uploader"
	"github.com/Luksuz/ai-video-editor-client/internal/videocache"
	"github.com/Luksuz/ai-video-editor-client/middleware"
)

// @title AI Video Editor Gateway API
// @version 1.0
// @description Gateway for uploading audio tracks, submitting them for video generation, and reviewing generated chunks.
// @BasePath /api/v1
func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger := config.NewLogger(cfg)

	// Initialize Supabase client
	store, err := storage.NewClient(cfg.SupabaseURL, cfg.SupabaseKey, cfg.StorageBucket, logger)
	if err != nil {
		logger.Fatalf("Failed to initialize Supabase: %v", err)
	}
	// A missing bucket only breaks uploads, so the gateway still starts.
	if err := store.EnsureBucket(); err != nil {
		logger.Warnf("Could not ensure storage bucket %q: %v", cfg.StorageBucket, err)
	}

	processor := processing.NewClient(cfg.ProcessingAPIURL, logger)

	var cache *videocache.Cache
	if cfg.RedisAddr != "" {
		cache, err = videocache.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, 5*time.Minute, logger)
		if err != nil {
			logger.Warnf("Video cache disabled: %v", err)
			cache = nil
		}
	}

	sessions := handlers.NewSessionStore(cfg.SpoolDir)
	h := handlers.NewApplicationHandler(
		store,
		store,
		uploader.New(store, processor, logger),
		processor,
		cache,
		sessions,
		handlers.NewReviewStore(),
		logger,
	)

	app := fiber.New()

	// Middleware
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.AllowedOrigins,
		AllowHeaders: "Origin, Content-Type, Accept",
	}))
	app.Use(middleware.RequestLogger(logger))

	handlers.RegisterRoutes(app, h)

	go func() {
		logger.Infof("Starting AI video editor gateway on port %s...", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			logger.Fatalf("Server error: %v", err)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down gateway...")
	if err := app.ShutdownWithTimeout(30 * time.Second); err != nil {
		logger.Errorf("Forced shutdown: %v", err)
	}
	sessions.CloseAll()
	if cache != nil {
		if err := cache.Close(); err != nil {
			logger.Warnf("Closing video cache: %v", err)
		}
	}
	logger.Info("Gateway shut down gracefully.")
}
