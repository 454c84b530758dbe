package uploader

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/Luksuz/ai-video-editor-client/internal/processing"
	"github.com/Luksuz/ai-video-editor-client/internal/trackset"
	"github.com/Luksuz/ai-video-editor-client/models"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

type uploadCall struct {
	Path        string
	ContentType string
	Body        string
}

// fakeStore records uploads and can be told to fail specific paths.
type fakeStore struct {
	mu      sync.Mutex
	uploads []uploadCall
	fail    map[string]error
}

func (s *fakeStore) Upload(ctx context.Context, path, contentType string, content io.Reader) (string, error) {
	body, _ := io.ReadAll(content)

	s.mu.Lock()
	defer s.mu.Unlock()
	for suffix, err := range s.fail {
		if strings.HasSuffix(path, suffix) {
			return "", err
		}
	}
	s.uploads = append(s.uploads, uploadCall{Path: path, ContentType: contentType, Body: string(body)})
	return "videos/" + path, nil
}

func (s *fakeStore) PublicURL(path string) string {
	return "https://cdn.test/" + path
}

func (s *fakeStore) calls() []uploadCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]uploadCall, len(s.uploads))
	copy(out, s.uploads)
	return out
}

type fakeProcessor struct {
	mu     sync.Mutex
	called bool
	req    processing.ProcessRequest
	err    error
}

func (p *fakeProcessor) ProcessAndStore(ctx context.Context, req processing.ProcessRequest) (json.RawMessage, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.called = true
	p.req = req
	if p.err != nil {
		return nil, p.err
	}
	return json.RawMessage(`{"status":"success"}`), nil
}

func newTestCoordinator(store *fakeStore, proc *fakeProcessor) *Coordinator {
	return New(store, proc, testLogger())
}

func newTestTrackList(t *testing.T) *trackset.List {
	t.Helper()
	list, err := trackset.NewList(t.TempDir())
	if err != nil {
		t.Fatalf("NewList: %v", err)
	}
	t.Cleanup(func() { list.Close() })
	return list
}

func addTrack(t *testing.T, list *trackset.List, name string, duration float64, breakpoints ...float64) models.Track {
	t.Helper()
	tr, err := list.Add(name, strings.NewReader("fake audio content"), duration)
	if err != nil {
		t.Fatalf("Add(%q): %v", name, err)
	}
	for _, bp := range breakpoints {
		if _, err := list.AddBreakpoint(tr.ID, bp); err != nil {
			t.Fatalf("AddBreakpoint(%v): %v", bp, err)
		}
	}
	return tr
}

func TestSaveTrack_Success(t *testing.T) {
	store := &fakeStore{}
	coord := newTestCoordinator(store, &fakeProcessor{})
	list := newTestTrackList(t)
	tr := addTrack(t, list, "intro.mp3", 120, 30, 90)

	saved, err := coord.SaveTrack(context.Background(), list, tr.ID)
	if err != nil {
		t.Fatalf("SaveTrack: %v", err)
	}

	if saved.Status != models.TrackStatusUploaded {
		t.Errorf("status = %q, want uploaded", saved.Status)
	}
	wantKey := "videos/uploads/" + tr.ID.String() + ".mp3"
	if saved.StorageKey == nil || *saved.StorageKey != wantKey {
		t.Errorf("key = %v, want %q", saved.StorageKey, wantKey)
	}
	wantURL := "https://cdn.test/uploads/" + tr.ID.String() + ".mp3"
	if saved.StorageURL == nil || *saved.StorageURL != wantURL {
		t.Errorf("url = %v, want %q", saved.StorageURL, wantURL)
	}
	if len(saved.Chunks) != 3 {
		t.Errorf("chunks = %d, want 3", len(saved.Chunks))
	}

	calls := store.calls()
	if len(calls) != 2 {
		t.Fatalf("uploads = %d, want file + metadata", len(calls))
	}
	if calls[0].ContentType != "audio/mpeg" {
		t.Errorf("file content type = %q", calls[0].ContentType)
	}
	if calls[0].Body != "fake audio content" {
		t.Errorf("file body = %q", calls[0].Body)
	}
	if !strings.HasSuffix(calls[1].Path, ".metadata.json") {
		t.Errorf("metadata path = %q", calls[1].Path)
	}
}

func TestSaveTrack_MetadataSidecarContents(t *testing.T) {
	store := &fakeStore{}
	coord := newTestCoordinator(store, &fakeProcessor{})
	list := newTestTrackList(t)
	tr := addTrack(t, list, "intro.mp3", 120, 30, 90)

	if _, err := coord.SaveTrack(context.Background(), list, tr.ID); err != nil {
		t.Fatalf("SaveTrack: %v", err)
	}

	calls := store.calls()
	var meta models.TrackMetadata
	if err := json.Unmarshal([]byte(calls[1].Body), &meta); err != nil {
		t.Fatalf("metadata not valid JSON: %v", err)
	}
	if meta.FileName != "intro.mp3" {
		t.Errorf("fileName = %q", meta.FileName)
	}
	if meta.Duration != 120 {
		t.Errorf("duration = %v", meta.Duration)
	}
	if len(meta.Breakpoints) != 2 || meta.Breakpoints[0] != 30 || meta.Breakpoints[1] != 90 {
		t.Errorf("breakpoints = %v", meta.Breakpoints)
	}
	if !strings.Contains(calls[1].Body, `"fileName"`) {
		t.Errorf("metadata keys not camelCase: %s", calls[1].Body)
	}
}

func TestSaveTrack_NoBreakpointsYieldsSingleChunk(t *testing.T) {
	store := &fakeStore{}
	coord := newTestCoordinator(store, &fakeProcessor{})
	list := newTestTrackList(t)
	tr := addTrack(t, list, "whole.wav", 45)

	saved, err := coord.SaveTrack(context.Background(), list, tr.ID)
	if err != nil {
		t.Fatalf("SaveTrack: %v", err)
	}
	if len(saved.Chunks) != 1 {
		t.Fatalf("chunks = %d, want 1", len(saved.Chunks))
	}
	if saved.Chunks[0].Start != 0 || saved.Chunks[0].End != 45 {
		t.Errorf("chunk = %+v, want full span", saved.Chunks[0])
	}
}

func TestSaveTrack_AlreadyUploadedIsNoop(t *testing.T) {
	store := &fakeStore{}
	coord := newTestCoordinator(store, &fakeProcessor{})
	list := newTestTrackList(t)
	tr := addTrack(t, list, "a.mp3", 60)

	if _, err := coord.SaveTrack(context.Background(), list, tr.ID); err != nil {
		t.Fatal(err)
	}
	before := len(store.calls())

	saved, err := coord.SaveTrack(context.Background(), list, tr.ID)
	if err != nil {
		t.Fatalf("second SaveTrack: %v", err)
	}
	if saved.Status != models.TrackStatusUploaded {
		t.Errorf("status = %q", saved.Status)
	}
	if got := len(store.calls()); got != before {
		t.Errorf("second save re-uploaded: %d calls, want %d", got, before)
	}
}

func TestSaveTrack_StorageFailureRevertsTrack(t *testing.T) {
	store := &fakeStore{fail: map[string]error{".mp3": errors.New("storage down")}}
	coord := newTestCoordinator(store, &fakeProcessor{})
	list := newTestTrackList(t)
	tr := addTrack(t, list, "a.mp3", 60)

	if _, err := coord.SaveTrack(context.Background(), list, tr.ID); err == nil {
		t.Fatal("expected upload error")
	}

	got, err := list.Get(tr.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != models.TrackStatusLocal {
		t.Errorf("status after failure = %q, want local", got.Status)
	}
	if len(store.calls()) != 0 {
		t.Errorf("metadata uploaded despite primary failure")
	}

	// The track is retryable once storage recovers.
	store.mu.Lock()
	store.fail = nil
	store.mu.Unlock()
	if _, err := coord.SaveTrack(context.Background(), list, tr.ID); err != nil {
		t.Fatalf("retry after recovery: %v", err)
	}
}

func TestSaveTrack_MetadataFailureIsNonFatal(t *testing.T) {
	store := &fakeStore{fail: map[string]error{".metadata.json": errors.New("sidecar rejected")}}
	coord := newTestCoordinator(store, &fakeProcessor{})
	list := newTestTrackList(t)
	tr := addTrack(t, list, "a.mp3", 60)

	saved, err := coord.SaveTrack(context.Background(), list, tr.ID)
	if err != nil {
		t.Fatalf("SaveTrack: %v", err)
	}
	if saved.Status != models.TrackStatusUploaded {
		t.Errorf("status = %q, want uploaded despite metadata failure", saved.Status)
	}
}

func TestSaveTrack_MissingSpoolFile(t *testing.T) {
	store := &fakeStore{}
	coord := newTestCoordinator(store, &fakeProcessor{})
	list := newTestTrackList(t)
	tr := addTrack(t, list, "a.mp3", 60)

	os.Remove(tr.SpoolPath)

	if _, err := coord.SaveTrack(context.Background(), list, tr.ID); err == nil {
		t.Fatal("expected error for missing file")
	}

	got, _ := list.Get(tr.ID)
	if got.Status != models.TrackStatusLocal {
		t.Errorf("status = %q, want local", got.Status)
	}
}

func TestSubmit_FailsFastWhileUploading(t *testing.T) {
	store := &fakeStore{}
	proc := &fakeProcessor{}
	coord := newTestCoordinator(store, proc)
	list := newTestTrackList(t)
	tr := addTrack(t, list, "a.mp3", 60)

	if _, _, err := list.BeginUpload(tr.ID); err != nil {
		t.Fatal(err)
	}

	_, err := coord.Submit(context.Background(), list, false, "out")
	if !errors.Is(err, ErrBusyUploading) {
		t.Fatalf("err = %v, want ErrBusyUploading", err)
	}
	if proc.called {
		t.Error("processor called despite in-flight upload")
	}
	if len(store.calls()) != 0 {
		t.Error("storage touched despite in-flight upload")
	}
}

func TestSubmit_EmptyList(t *testing.T) {
	coord := newTestCoordinator(&fakeStore{}, &fakeProcessor{})
	list := newTestTrackList(t)

	if _, err := coord.Submit(context.Background(), list, false, "out"); !errors.Is(err, ErrNoTracks) {
		t.Errorf("err = %v, want ErrNoTracks", err)
	}
}

func TestSubmit_ForceUploadsLocalTracks(t *testing.T) {
	store := &fakeStore{}
	proc := &fakeProcessor{}
	coord := newTestCoordinator(store, proc)
	list := newTestTrackList(t)
	a := addTrack(t, list, "a.mp3", 120, 30, 90)
	b := addTrack(t, list, "b.wav", 60, 15)
	c := addTrack(t, list, "c.mp3", 30)

	resp, err := coord.Submit(context.Background(), list, true, "session-42")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if resp == nil {
		t.Error("processor response not passed through")
	}

	if !proc.called {
		t.Fatal("processor not called")
	}
	if !proc.req.CombineVideos || proc.req.OutputDir != "session-42" {
		t.Errorf("request options = combine:%v dir:%q", proc.req.CombineVideos, proc.req.OutputDir)
	}
	if len(proc.req.Data) != 3 {
		t.Fatalf("payload items = %d, want 3", len(proc.req.Data))
	}

	// Payload follows track list order with each track's own breakpoints.
	wantURLs := []string{
		"https://cdn.test/uploads/" + a.ID.String() + ".mp3",
		"https://cdn.test/uploads/" + b.ID.String() + ".wav",
		"https://cdn.test/uploads/" + c.ID.String() + ".mp3",
	}
	for i, item := range proc.req.Data {
		if item.SupabaseURL != wantURLs[i] {
			t.Errorf("item %d url = %q, want %q", i, item.SupabaseURL, wantURLs[i])
		}
	}
	if len(proc.req.Data[0].Breakpoints) != 2 || len(proc.req.Data[1].Breakpoints) != 1 || len(proc.req.Data[2].Breakpoints) != 0 {
		t.Errorf("breakpoint counts wrong: %+v", proc.req.Data)
	}

	for _, id := range []models.Track{a, b, c} {
		got, _ := list.Get(id.ID)
		if got.Status != models.TrackStatusUploaded {
			t.Errorf("track %q status = %q, want uploaded", got.Name, got.Status)
		}
	}
	if got := len(store.calls()); got != 6 {
		t.Errorf("storage calls = %d, want 3 files + 3 sidecars", got)
	}
}

func TestSubmit_UploadFailureAbortsBeforeProcessor(t *testing.T) {
	store := &fakeStore{fail: map[string]error{".wav": errors.New("storage down")}}
	proc := &fakeProcessor{}
	coord := newTestCoordinator(store, proc)
	list := newTestTrackList(t)
	a := addTrack(t, list, "a.mp3", 60)
	b := addTrack(t, list, "b.wav", 60)

	_, err := coord.Submit(context.Background(), list, false, "out")
	if err == nil {
		t.Fatal("expected upload failure")
	}
	if proc.called {
		t.Error("processor called despite failed upload")
	}

	// Tracks fail independently: a uploaded, b reverted to local.
	gotA, _ := list.Get(a.ID)
	if gotA.Status != models.TrackStatusUploaded {
		t.Errorf("a status = %q, want uploaded", gotA.Status)
	}
	gotB, _ := list.Get(b.ID)
	if gotB.Status != models.TrackStatusLocal {
		t.Errorf("b status = %q, want local", gotB.Status)
	}
}

func TestSubmit_AllTracksAlreadyUploaded(t *testing.T) {
	store := &fakeStore{}
	proc := &fakeProcessor{}
	coord := newTestCoordinator(store, proc)
	list := newTestTrackList(t)
	tr := addTrack(t, list, "a.mp3", 60, 20)

	if _, err := coord.SaveTrack(context.Background(), list, tr.ID); err != nil {
		t.Fatal(err)
	}
	before := len(store.calls())

	if _, err := coord.Submit(context.Background(), list, false, "out"); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if got := len(store.calls()); got != before {
		t.Errorf("submit re-uploaded already uploaded tracks")
	}
	if !proc.called {
		t.Error("processor not called")
	}
}

func TestContentTypeFor(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"track.mp3", "audio/mpeg"},
		{"track.WAV", "audio/wav"},
		{"track.flac", "audio/flac"},
		{"track.ogg", "audio/ogg"},
		{"track.m4a", "audio/mp4"},
		{"track.aac", "audio/aac"},
		{"clip.mp4", "video/mp4"},
		{"clip.mov", "video/quicktime"},
		{"clip.webm", "video/webm"},
		{"meta.json", "application/json"},
		{"mystery.bin", "application/octet-stream"},
		{"noextension", "application/octet-stream"},
	}
	for _, tt := range tests {
		if got := ContentTypeFor(tt.name); got != tt.want {
			t.Errorf("ContentTypeFor(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}
