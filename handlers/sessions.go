package handlers

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Luksuz/ai-video-editor-client/internal/chunkgrid"
	"github.com/Luksuz/ai-video-editor-client/internal/trackset"
)

// Sentinel errors so handlers can map lookups to 404 with errors.Is.
var (
	ErrSessionNotFound = errors.New("session not found")
	ErrReviewNotFound  = errors.New("review not found")
)

// Session is one editor session: the server-side home of a user's track
// list between the first upload and submit. Sessions live in memory; a
// restart drops them along with their spooled files.
type Session struct {
	ID        uuid.UUID      `json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	Tracks    *trackset.List `json:"-"`
}

// SessionStore keeps live editor sessions keyed by id.
type SessionStore struct {
	mu       sync.Mutex
	spoolDir string
	sessions map[uuid.UUID]*Session
}

// NewSessionStore creates a store whose sessions spool uploads under
// spoolDir. An empty spoolDir falls back to the system temp directory.
func NewSessionStore(spoolDir string) *SessionStore {
	return &SessionStore{
		spoolDir: spoolDir,
		sessions: make(map[uuid.UUID]*Session),
	}
}

// Create starts a new session with an empty track list.
func (s *SessionStore) Create() (*Session, error) {
	tracks, err := trackset.NewList(s.spoolDir)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	sess := &Session{
		ID:        uuid.New(),
		CreatedAt: time.Now(),
		Tracks:    tracks,
	}
	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()
	return sess, nil
}

// Get returns the session with the given id.
func (s *SessionStore) Get(id uuid.UUID) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return sess, nil
}

// Remove drops the session and releases its spooled files.
func (s *SessionStore) Remove(id uuid.UUID) error {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return sess.Tracks.Close()
}

// Len reports how many sessions are live.
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// CloseAll tears down every session. Called on shutdown.
func (s *SessionStore) CloseAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, sess := range s.sessions {
		_ = sess.Tracks.Close()
		delete(s.sessions, id)
	}
}

// ReviewStore keeps one open chunk review grid per video.
type ReviewStore struct {
	mu    sync.Mutex
	grids map[uuid.UUID]*chunkgrid.Grid
}

func NewReviewStore() *ReviewStore {
	return &ReviewStore{grids: make(map[uuid.UUID]*chunkgrid.Grid)}
}

// Put installs the grid for a video, replacing any open review of it.
func (s *ReviewStore) Put(videoID uuid.UUID, grid *chunkgrid.Grid) {
	s.mu.Lock()
	s.grids[videoID] = grid
	s.mu.Unlock()
}

// Get returns the open review grid for a video.
func (s *ReviewStore) Get(videoID uuid.UUID) (*chunkgrid.Grid, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	grid, ok := s.grids[videoID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrReviewNotFound, videoID)
	}
	return grid, nil
}

// Remove closes the review for a video if one is open.
func (s *ReviewStore) Remove(videoID uuid.UUID) {
	s.mu.Lock()
	delete(s.grids, videoID)
	s.mu.Unlock()
}
