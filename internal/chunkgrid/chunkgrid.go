// Package chunkgrid holds the review state for one processed video: a
// paginated view over its chunk URLs, a single-target drag protocol that
// pairs an uploaded custom asset with the chunk it should replace, and a
// one-at-a-time playback toggle.
package chunkgrid

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/Luksuz/ai-video-editor-client/internal/processing"
)

// DefaultPageSize is how many chunks one grid page shows.
const DefaultPageSize = 10

var (
	// ErrNoActiveDrag is returned for drag-over and drop calls with no
	// drag in progress.
	ErrNoActiveDrag = errors.New("no drag in progress")
	// ErrNoDropTarget is returned when a drop fires before any chunk was
	// marked as the target.
	ErrNoDropTarget = errors.New("no chunk marked as drop target")
	// ErrChunkIndexOutOfRange is returned for chunk indices outside the
	// current chunk list.
	ErrChunkIndexOutOfRange = errors.New("chunk index out of range")
)

// Replacer issues chunk replace requests to the processing service.
type Replacer interface {
	ReplaceChunk(ctx context.Context, req processing.ReplaceChunkRequest) (json.RawMessage, error)
}

// DragState is the asset captured at drag start plus the chunk currently
// marked as the drop target, if any.
type DragState struct {
	AssetID     string `json:"asset_id"`
	AssetURL    string `json:"asset_url"`
	TargetIndex int    `json:"target_index"`
}

// ChunkView is one chunk as the review page renders it.
type ChunkView struct {
	Index      int    `json:"index"`
	URL        string `json:"url"`
	Playing    bool   `json:"playing"`
	DropTarget bool   `json:"drop_target"`
}

// Grid is the review state for one video. All methods are safe for
// concurrent use.
type Grid struct {
	mu       sync.Mutex
	replacer Replacer
	logger   *logrus.Logger

	videoID  string
	chunks   []string
	pageSize int
	page     int
	playing  int
	dragging bool
	drag     DragState
}

// New creates a grid over the given video's chunk URLs.
func New(videoID string, chunkURLs []string, replacer Replacer, logger *logrus.Logger) *Grid {
	return &Grid{
		replacer: replacer,
		logger:   logger,
		videoID:  videoID,
		chunks:   append([]string(nil), chunkURLs...),
		pageSize: DefaultPageSize,
		playing:  -1,
		drag:     DragState{TargetIndex: -1},
	}
}

// VideoID returns the id of the video under review.
func (g *Grid) VideoID() string {
	return g.videoID
}

// ChunkCount returns the total number of chunks.
func (g *Grid) ChunkCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.chunks)
}

// SetChunks replaces the chunk list, for example after a refresh shows
// the processing service added or replaced chunks. The current page is
// re-clamped and any playback or drop target pointing past the new end
// is cleared.
func (g *Grid) SetChunks(chunkURLs []string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.chunks = append([]string(nil), chunkURLs...)
	g.page = clamp(g.page, 0, g.totalPages()-1)
	if g.playing >= len(g.chunks) {
		g.playing = -1
	}
	if g.drag.TargetIndex >= len(g.chunks) {
		g.drag.TargetIndex = -1
	}
}

// TotalPages returns the page count. An empty grid still has one page.
func (g *Grid) TotalPages() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.totalPages()
}

func (g *Grid) totalPages() int {
	if len(g.chunks) == 0 {
		return 1
	}
	return (len(g.chunks) + g.pageSize - 1) / g.pageSize
}

// CurrentPage returns the clamped current page index.
func (g *Grid) CurrentPage() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.page
}

// SetPage moves to page i, clamped into the valid range, and returns the
// page actually selected.
func (g *Grid) SetPage(i int) int {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.page = clamp(i, 0, g.totalPages()-1)
	return g.page
}

// Page returns the chunks on the current page with their absolute
// indices and view flags.
func (g *Grid) Page() []ChunkView {
	g.mu.Lock()
	defer g.mu.Unlock()

	start := g.page * g.pageSize
	end := start + g.pageSize
	if start > len(g.chunks) {
		start = len(g.chunks)
	}
	if end > len(g.chunks) {
		end = len(g.chunks)
	}

	views := make([]ChunkView, 0, end-start)
	for i := start; i < end; i++ {
		views = append(views, ChunkView{
			Index:      i,
			URL:        g.chunks[i],
			Playing:    g.playing == i,
			DropTarget: g.dragging && g.drag.TargetIndex == i,
		})
	}
	return views
}

// DragStart captures the asset being dragged. Starting a new drag
// abandons any previous one.
func (g *Grid) DragStart(assetID, assetURL string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.dragging = true
	g.drag = DragState{AssetID: assetID, AssetURL: assetURL, TargetIndex: -1}
}

// DragOver marks the chunk at index as the drop target. Only one chunk
// is the target at a time; entering a new one clears the previous.
func (g *Grid) DragOver(index int) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.dragging {
		return ErrNoActiveDrag
	}
	if index < 0 || index >= len(g.chunks) {
		return fmt.Errorf("%w: %d of %d", ErrChunkIndexOutOfRange, index, len(g.chunks))
	}
	g.drag.TargetIndex = index
	return nil
}

// ActiveDrag returns the drag in progress, if any.
func (g *Grid) ActiveDrag() (DragState, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.drag, g.dragging
}

// Drop issues the replace request for the targeted chunk. Drag state is
// reset whether or not the request succeeds; a failed replace leaves the
// grid ready for the user to try again.
func (g *Grid) Drop(ctx context.Context) (json.RawMessage, error) {
	g.mu.Lock()
	if !g.dragging {
		g.mu.Unlock()
		return nil, ErrNoActiveDrag
	}
	drag := g.drag
	g.resetDrag()
	if drag.TargetIndex < 0 {
		g.mu.Unlock()
		return nil, ErrNoDropTarget
	}
	req := processing.ReplaceChunkRequest{
		CustomVideoURL: drag.AssetURL,
		ChunkVideoURL:  g.chunks[drag.TargetIndex],
		VideoID:        g.videoID,
		ChunkIndex:     drag.TargetIndex,
	}
	g.mu.Unlock()

	g.logger.WithFields(logrus.Fields{
		"video_id":    req.VideoID,
		"chunk_index": req.ChunkIndex,
		"asset_id":    drag.AssetID,
	}).Info("Dropping custom asset onto chunk")

	return g.replacer.ReplaceChunk(ctx, req)
}

// DragEnd resets drag state after a drag that never dropped.
func (g *Grid) DragEnd() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.resetDrag()
}

func (g *Grid) resetDrag() {
	g.dragging = false
	g.drag = DragState{TargetIndex: -1}
}

// TogglePlayback starts playback on the chunk at index, stopping any
// other, or stops it if it was already playing. It reports whether the
// chunk is playing afterwards.
func (g *Grid) TogglePlayback(index int) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if index < 0 || index >= len(g.chunks) {
		return false, fmt.Errorf("%w: %d of %d", ErrChunkIndexOutOfRange, index, len(g.chunks))
	}
	if g.playing == index {
		g.playing = -1
		return false, nil
	}
	g.playing = index
	return true, nil
}

// Playing returns the index of the playing chunk, or -1.
func (g *Grid) Playing() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.playing
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
