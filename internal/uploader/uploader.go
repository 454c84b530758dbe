// Package uploader sequences per-track uploads to storage and the final
// submit to the processing service. Saving a track uploads its file bytes
// plus a metadata sidecar and freezes its chunk list; submitting force-
// uploads anything still local and posts the aggregated breakpoint payload.
package uploader

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Luksuz/ai-video-editor-client/internal/processing"
	"github.com/Luksuz/ai-video-editor-client/internal/timeline"
	"github.com/Luksuz/ai-video-editor-client/internal/trackset"
	"github.com/Luksuz/ai-video-editor-client/models"
)

var (
	// ErrNoTracks is returned when submit is called on an empty list.
	ErrNoTracks = errors.New("no tracks to submit")
	// ErrBusyUploading is returned when submit is called while a track
	// is still mid-upload. The caller should wait and retry.
	ErrBusyUploading = errors.New("wait for uploads to finish before submitting")
)

// ObjectStore is the slice of the storage client the coordinator needs.
type ObjectStore interface {
	Upload(ctx context.Context, path, contentType string, content io.Reader) (string, error)
	PublicURL(path string) string
}

// Processor submits aggregated track payloads for slicing.
type Processor interface {
	ProcessAndStore(ctx context.Context, req processing.ProcessRequest) (json.RawMessage, error)
}

// Coordinator drives track saves and submission for any track list.
type Coordinator struct {
	store     ObjectStore
	processor Processor
	logger    *logrus.Logger
}

// New creates a coordinator on top of the given collaborators.
func New(store ObjectStore, processor Processor, logger *logrus.Logger) *Coordinator {
	return &Coordinator{
		store:     store,
		processor: processor,
		logger:    logger,
	}
}

// SaveTrack uploads one track's file and metadata sidecar, then marks it
// uploaded with the storage location and the chunk list derived from its
// current breakpoints. A failed upload reverts the track to local so the
// user can retry. Saving an already uploaded track is a no-op.
func (u *Coordinator) SaveTrack(ctx context.Context, list *trackset.List, id uuid.UUID) (models.Track, error) {
	snap, started, err := list.BeginUpload(id)
	if err != nil {
		return models.Track{}, err
	}
	if !started {
		u.logger.Infof("Track %s already uploaded, skipping", id)
		return snap, nil
	}

	chunks := timeline.Chunks(snap.Duration, snap.Breakpoints.Times())

	file, err := os.Open(snap.SpoolPath)
	if err != nil {
		list.FailUpload(snap.ID)
		return models.Track{}, fmt.Errorf("open track file for %q: %w", snap.Name, err)
	}
	defer file.Close()

	path := "uploads/" + snap.ID.String() + filepath.Ext(snap.Name)
	key, err := u.store.Upload(ctx, path, ContentTypeFor(snap.Name), file)
	if err != nil {
		list.FailUpload(snap.ID)
		return models.Track{}, fmt.Errorf("upload %q: %w", snap.Name, err)
	}
	url := u.store.PublicURL(path)

	// The sidecar is best-effort. The primary upload already succeeded,
	// so a metadata failure is logged and swallowed, not surfaced.
	if err := u.uploadMetadata(ctx, snap); err != nil {
		u.logger.WithFields(logrus.Fields{
			"track": snap.ID,
			"error": err.Error(),
		}).Warn("Metadata upload failed, keeping primary upload")
	}

	u.logger.WithFields(logrus.Fields{
		"track":  snap.ID,
		"key":    key,
		"chunks": len(chunks),
	}).Info("Track uploaded")

	return list.FinishUpload(snap.ID, key, url, chunks)
}

func (u *Coordinator) uploadMetadata(ctx context.Context, snap models.Track) error {
	meta := models.TrackMetadata{
		FileName:    snap.Name,
		Duration:    snap.Duration,
		Breakpoints: snap.Breakpoints.Times(),
	}
	data, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}

	metaPath := "uploads/" + snap.ID.String() + ".metadata.json"
	if _, err := u.store.Upload(ctx, metaPath, "application/json", bytes.NewReader(data)); err != nil {
		return err
	}
	return nil
}

// Submit aggregates every track's storage URL and breakpoints into one
// processing request. Tracks still local are force-uploaded first,
// concurrently and independently. If any track is mid-upload when Submit
// is called, it fails fast before touching the network.
func (u *Coordinator) Submit(ctx context.Context, list *trackset.List, combine bool, outputDir string) (json.RawMessage, error) {
	if list.AnyUploading() {
		return nil, ErrBusyUploading
	}
	if list.Len() == 0 {
		return nil, ErrNoTracks
	}

	if err := u.uploadPending(ctx, list); err != nil {
		return nil, err
	}

	snaps := list.Snapshot()
	items := make([]processing.ProcessItem, 0, len(snaps))
	for _, tr := range snaps {
		if tr.StorageURL == nil {
			return nil, fmt.Errorf("track %q has no storage url after upload", tr.Name)
		}
		items = append(items, processing.ProcessItem{
			SupabaseURL: *tr.StorageURL,
			Breakpoints: tr.Breakpoints.Times(),
		})
	}

	return u.processor.ProcessAndStore(ctx, processing.ProcessRequest{
		Data:          items,
		CombineVideos: combine,
		OutputDir:     outputDir,
	})
}

// uploadPending saves every still-local track. Uploads run concurrently
// with no ordering guarantee between tracks; each failure reverts only
// its own track.
func (u *Coordinator) uploadPending(ctx context.Context, list *trackset.List) error {
	ids := list.LocalIDs()
	if len(ids) == 0 {
		return nil
	}

	u.logger.Infof("Force-uploading %d local tracks before submit", len(ids))

	var wg sync.WaitGroup
	errs := make([]error, len(ids))
	for i, id := range ids {
		wg.Add(1)
		go func(i int, id uuid.UUID) {
			defer wg.Done()
			if _, err := u.SaveTrack(ctx, list, id); err != nil {
				errs[i] = err
			}
		}(i, id)
	}
	wg.Wait()

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("upload before submit: %w", err)
	}
	return nil
}

// ContentTypeFor maps a file name to its MIME type by extension. Unknown
// extensions fall back to application/octet-stream.
func ContentTypeFor(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".mp3":
		return "audio/mpeg"
	case ".wav":
		return "audio/wav"
	case ".flac":
		return "audio/flac"
	case ".ogg":
		return "audio/ogg"
	case ".m4a":
		return "audio/mp4"
	case ".aac":
		return "audio/aac"
	case ".mp4":
		return "video/mp4"
	case ".mov":
		return "video/quicktime"
	case ".webm":
		return "video/webm"
	case ".json":
		return "application/json"
	default:
		return "application/octet-stream"
	}
}
