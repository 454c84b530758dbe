package models

import (
	"time"

	"github.com/google/uuid"
)

// Video statuses reported by the processing service. The service owns the
// full lifecycle; this gateway only ever reads them.
const (
	VideoStatusGenerating = "generating"
	VideoStatusComplete   = "complete"
	VideoStatusFailed     = "failed"
)

// Video represents a row of the videos table. Rows are created and
// advanced by the external processing service; this side reads them,
// renames them, deletes them, and requests chunk replacements.
type Video struct {
	ID              uuid.UUID `json:"id"`
	Name            *string   `json:"name,omitempty"`
	Status          string    `json:"status"`
	OriginalURL     *string   `json:"original_url,omitempty"`
	PreviewURL      *string   `json:"preview_url,omitempty"`
	Breakpoints     []float64 `json:"breakpoints,omitempty"`
	TotalChunks     *int      `json:"total_chunks,omitempty"`
	CompletedChunks *int      `json:"completed_chunks,omitempty"`
	ChunkURLs       []string  `json:"chunk_urls,omitempty"`
	ErrorMessage    *string   `json:"error_message,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
