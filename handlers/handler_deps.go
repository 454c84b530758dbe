package handlers

import (
	"context"
	"io"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Luksuz/ai-video-editor-client/internal/chunkgrid"
	"github.com/Luksuz/ai-video-editor-client/internal/storage"
	"github.com/Luksuz/ai-video-editor-client/internal/uploader"
	"github.com/Luksuz/ai-video-editor-client/internal/videocache"
	"github.com/Luksuz/ai-video-editor-client/models"
)

// ObjectStorage defines the object storage operations handlers expect.
// This allows for decoupling and easier testing.
// The concrete implementation is *storage.Client.
type ObjectStorage interface {
	Upload(ctx context.Context, path, contentType string, content io.Reader) (string, error)
	PublicURL(path string) string
	ListObjects(prefix string, limit, offset int) ([]storage.ObjectInfo, error)
}

// VideoStore defines the videos-table operations handlers expect.
// The concrete implementation is *storage.Client as well; the split lets
// tests fake the table without faking object storage.
type VideoStore interface {
	ListVideos(ctx context.Context) ([]models.Video, error)
	GetVideo(ctx context.Context, id uuid.UUID) (models.Video, error)
	RenameVideo(ctx context.Context, id uuid.UUID, name string) (models.Video, error)
	DeleteVideo(ctx context.Context, id uuid.UUID) error
}

// ApplicationHandler holds shared dependencies for handlers.
type ApplicationHandler struct {
	Logger   *logrus.Logger
	Storage  ObjectStorage
	Videos   VideoStore
	Uploads  *uploader.Coordinator
	Replacer chunkgrid.Replacer
	Cache    *videocache.Cache // nil when Redis is not configured
	Sessions *SessionStore
	Reviews  *ReviewStore
}

// NewApplicationHandler creates a new ApplicationHandler with the given dependencies.
func NewApplicationHandler(store ObjectStorage, videos VideoStore, uploads *uploader.Coordinator, replacer chunkgrid.Replacer, cache *videocache.Cache, sessions *SessionStore, reviews *ReviewStore, logger *logrus.Logger) *ApplicationHandler {
	return &ApplicationHandler{
		Logger:   logger,
		Storage:  store,
		Videos:   videos,
		Uploads:  uploads,
		Replacer: replacer,
		Cache:    cache,
		Sessions: sessions,
		Reviews:  reviews,
	}
}
