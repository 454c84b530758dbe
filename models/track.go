package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/Luksuz/ai-video-editor-client/internal/timeline"
)

// TrackStatus is the per-track upload lifecycle. A track starts local,
// moves to uploading while its bytes are in flight, and lands on uploaded.
// A failed upload reverts to local so the user can retry.
type TrackStatus string

const (
	TrackStatusLocal     TrackStatus = "local"
	TrackStatusUploading TrackStatus = "uploading"
	TrackStatusUploaded  TrackStatus = "uploaded"
)

// Track is one uploaded audio file in an editor session, together with its
// breakpoint set and upload state. SpoolPath points at the locally staged
// copy of the file; it is owned by the session's track list and never
// serialized.
type Track struct {
	ID          uuid.UUID        `json:"id"`
	Name        string           `json:"name"`
	SpoolPath   string           `json:"-"`
	Duration    float64          `json:"duration"`
	Status      TrackStatus      `json:"status"`
	Breakpoints timeline.Cutlist `json:"breakpoints"`
	StorageKey  *string          `json:"storage_key,omitempty"`
	StorageURL  *string          `json:"storage_url,omitempty"`
	Chunks      []timeline.Chunk `json:"chunks,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
}

// TrackMetadata is the JSON sidecar uploaded next to a track's audio file.
type TrackMetadata struct {
	FileName    string    `json:"fileName"`
	Duration    float64   `json:"duration"`
	Breakpoints []float64 `json:"breakpoints"`
}
