// Package trackset maintains the ordered track list of one editor session:
// staged file copies, breakpoint edits, drag reordering, and the per-track
// upload state machine (local -> uploading -> uploaded, reverting to local
// on failure).
package trackset

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Luksuz/ai-video-editor-client/internal/timeline"
	"github.com/Luksuz/ai-video-editor-client/models"
)

var (
	// ErrTrackNotFound is returned when no track matches the given id.
	ErrTrackNotFound = errors.New("track not found")
	// ErrDurationUnknown is returned when a track is added without a
	// usable duration from the caller's media layer.
	ErrDurationUnknown = errors.New("track duration unknown or not positive")
	// ErrBreakpointOutOfRange is returned for breakpoint times outside
	// the open interval (0, duration).
	ErrBreakpointOutOfRange = errors.New("breakpoint outside (0, duration)")
	// ErrInvalidSplitCount is returned for even-split counts below 1.
	ErrInvalidSplitCount = errors.New("split count must be at least 1")
	// ErrIndexOutOfRange is returned for reorder positions outside the list.
	ErrIndexOutOfRange = errors.New("position outside track list")
	// ErrUploadInProgress is returned when an operation requires a track
	// (or every track) to be out of the uploading state.
	ErrUploadInProgress = errors.New("upload already in progress")
)

// List is the ordered collection of tracks in one editor session. All
// methods are safe for concurrent use. Each track owns exactly one spooled
// file under the list's directory; Remove and Close release them.
type List struct {
	mu     sync.Mutex
	dir    string
	tracks []*models.Track
}

// NewList creates an empty list with a fresh spool directory under
// baseDir. An empty baseDir falls back to the system temp directory.
func NewList(baseDir string) (*List, error) {
	dir, err := os.MkdirTemp(baseDir, "tracks-")
	if err != nil {
		return nil, fmt.Errorf("create spool directory: %w", err)
	}
	return &List{dir: dir}, nil
}

// Add appends a new track built from the given file content. Duration
// comes from the caller's media probing; a non-positive value is an
// explicit ErrDurationUnknown rather than a silently broken track.
func (l *List) Add(name string, src io.Reader, duration float64) (models.Track, error) {
	if duration <= 0 {
		return models.Track{}, fmt.Errorf("%w: %q", ErrDurationUnknown, name)
	}

	id := uuid.New()
	spoolPath := filepath.Join(l.dir, id.String()+filepath.Ext(name))

	dst, err := os.Create(spoolPath)
	if err != nil {
		return models.Track{}, fmt.Errorf("spool %q: %w", name, err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(spoolPath)
		return models.Track{}, fmt.Errorf("spool %q: %w", name, err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(spoolPath)
		return models.Track{}, fmt.Errorf("spool %q: %w", name, err)
	}

	track := &models.Track{
		ID:        id,
		Name:      name,
		SpoolPath: spoolPath,
		Duration:  duration,
		Status:    models.TrackStatusLocal,
		CreatedAt: time.Now(),
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.tracks = append(l.tracks, track)
	return snapshot(track), nil
}

// Remove deletes a track by id and releases its spooled file.
func (l *List) Remove(id uuid.UUID) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i, tr := range l.tracks {
		if tr.ID == id {
			l.tracks = append(l.tracks[:i], l.tracks[i+1:]...)
			os.Remove(tr.SpoolPath)
			return nil
		}
	}
	return ErrTrackNotFound
}

// Reorder moves the track at from to position to, keeping every other
// track's relative order. Drag gestures call this repeatedly with the
// latest indices, so any valid (from, to) pair must be accepted at any
// time, not just once per gesture.
func (l *List) Reorder(from, to int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	n := len(l.tracks)
	if from < 0 || from >= n || to < 0 || to >= n {
		return fmt.Errorf("%w: from=%d to=%d len=%d", ErrIndexOutOfRange, from, to, n)
	}
	if from == to {
		return nil
	}

	moved := l.tracks[from]
	rest := append(l.tracks[:from], l.tracks[from+1:]...)
	rest = append(rest, nil)
	copy(rest[to+1:], rest[to:])
	rest[to] = moved
	l.tracks = rest
	return nil
}

// AddBreakpoint inserts a cut time on the given track. Times must fall
// strictly inside (0, duration); duplicates are a silent no-op.
func (l *List) AddBreakpoint(id uuid.UUID, t float64) (models.Track, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	tr, err := l.find(id)
	if err != nil {
		return models.Track{}, err
	}
	if t <= 0 || t >= tr.Duration {
		return models.Track{}, fmt.Errorf("%w: t=%v duration=%v", ErrBreakpointOutOfRange, t, tr.Duration)
	}
	tr.Breakpoints.Add(t)
	return snapshot(tr), nil
}

// RemoveBreakpoint removes a cut time by exact value; absent times are a
// no-op.
func (l *List) RemoveBreakpoint(id uuid.UUID, t float64) (models.Track, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	tr, err := l.find(id)
	if err != nil {
		return models.Track{}, err
	}
	tr.Breakpoints.Remove(t)
	return snapshot(tr), nil
}

// EvenSplit cuts the track into count equal chunks, replacing its
// breakpoints with the count-1 interior cut times. A count of 1 clears
// the breakpoints, leaving the whole track as a single chunk.
func (l *List) EvenSplit(id uuid.UUID, count int) (models.Track, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	tr, err := l.find(id)
	if err != nil {
		return models.Track{}, err
	}
	if count < 1 {
		return models.Track{}, fmt.Errorf("%w: count=%d", ErrInvalidSplitCount, count)
	}
	tr.Breakpoints.EvenSplit(tr.Duration, count-1)
	return snapshot(tr), nil
}

// Get returns a copy of the track with the given id.
func (l *List) Get(id uuid.UUID) (models.Track, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	tr, err := l.find(id)
	if err != nil {
		return models.Track{}, err
	}
	return snapshot(tr), nil
}

// Snapshot returns copies of all tracks in list order.
func (l *List) Snapshot() []models.Track {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]models.Track, len(l.tracks))
	for i, tr := range l.tracks {
		out[i] = snapshot(tr)
	}
	return out
}

// Len returns the number of tracks.
func (l *List) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.tracks)
}

// AnyUploading reports whether any track is mid-upload.
func (l *List) AnyUploading() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, tr := range l.tracks {
		if tr.Status == models.TrackStatusUploading {
			return true
		}
	}
	return false
}

// LocalIDs returns the ids of tracks that have not been uploaded yet.
func (l *List) LocalIDs() []uuid.UUID {
	l.mu.Lock()
	defer l.mu.Unlock()

	var ids []uuid.UUID
	for _, tr := range l.tracks {
		if tr.Status == models.TrackStatusLocal {
			ids = append(ids, tr.ID)
		}
	}
	return ids
}

// BeginUpload transitions a local track to uploading and returns a copy
// for the upload work. For an already uploaded track it reports
// started=false with no error: re-saving is a no-op. A track currently
// uploading yields ErrUploadInProgress.
func (l *List) BeginUpload(id uuid.UUID) (models.Track, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	tr, err := l.find(id)
	if err != nil {
		return models.Track{}, false, err
	}
	switch tr.Status {
	case models.TrackStatusUploaded:
		return snapshot(tr), false, nil
	case models.TrackStatusUploading:
		return models.Track{}, false, fmt.Errorf("%w: track %s", ErrUploadInProgress, tr.ID)
	}
	tr.Status = models.TrackStatusUploading
	return snapshot(tr), true, nil
}

// FinishUpload marks a track uploaded and attaches the storage location
// and the chunk list derived at save time. The chunk list is frozen from
// here on.
func (l *List) FinishUpload(id uuid.UUID, key, url string, chunks []timeline.Chunk) (models.Track, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	tr, err := l.find(id)
	if err != nil {
		return models.Track{}, err
	}
	tr.Status = models.TrackStatusUploaded
	tr.StorageKey = &key
	tr.StorageURL = &url
	tr.Chunks = chunks
	return snapshot(tr), nil
}

// FailUpload reverts a track to local after a failed upload. No failure
// state is retained; the track is simply retryable.
func (l *List) FailUpload(id uuid.UUID) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if tr, err := l.find(id); err == nil && tr.Status == models.TrackStatusUploading {
		tr.Status = models.TrackStatusLocal
	}
}

// Close releases every spooled file and the spool directory itself.
func (l *List) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.tracks = nil
	return os.RemoveAll(l.dir)
}

func (l *List) find(id uuid.UUID) (*models.Track, error) {
	for _, tr := range l.tracks {
		if tr.ID == id {
			return tr, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrTrackNotFound, id)
}

// snapshot copies a track so callers never share mutable state with the
// list.
func snapshot(tr *models.Track) models.Track {
	out := *tr
	out.Breakpoints = tr.Breakpoints.Clone()
	if tr.Chunks != nil {
		out.Chunks = make([]timeline.Chunk, len(tr.Chunks))
		copy(out.Chunks, tr.Chunks)
	}
	return out
}
