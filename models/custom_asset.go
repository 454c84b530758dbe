package models

import (
	"time"

	"github.com/google/uuid"
)

// CustomAsset is a locally uploaded replacement clip tied to a parent
// video. Assets only ever act as drag sources for chunk replacement; the
// processing service fetches them by URL when a replace is requested.
type CustomAsset struct {
	ID         uuid.UUID `json:"id"`
	VideoID    uuid.UUID `json:"video_id"`
	Name       string    `json:"name"`
	StorageKey string    `json:"storage_key"`
	URL        string    `json:"url"`
	CreatedAt  time.Time `json:"created_at"`
}
