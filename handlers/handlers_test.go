package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Luksuz/ai-video-editor-client/internal/processing"
	"github.com/Luksuz/ai-video-editor-client/internal/storage"
	"github.com/Luksuz/ai-video-editor-client/internal/uploader"
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
	Body        []byte
}

// fakeStore stands in for the storage client on both the handler side and
// the upload coordinator side.
type fakeStore struct {
	mu       sync.Mutex
	uploads  []uploadCall
	fail     map[string]error // keyed by path suffix
	objects  []storage.ObjectInfo
	listErr  error
	prefixes []string
}

func (f *fakeStore) Upload(ctx context.Context, path, contentType string, content io.Reader) (string, error) {
	body, err := io.ReadAll(content)
	if err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for suffix, failErr := range f.fail {
		if strings.HasSuffix(path, suffix) {
			return "", failErr
		}
	}
	f.uploads = append(f.uploads, uploadCall{Path: path, ContentType: contentType, Body: body})
	return "videos/" + path, nil
}

func (f *fakeStore) PublicURL(path string) string {
	return "https://cdn.test/" + path
}

func (f *fakeStore) ListObjects(prefix string, limit, offset int) ([]storage.ObjectInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prefixes = append(f.prefixes, prefix)
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.objects, nil
}

func (f *fakeStore) calls() []uploadCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]uploadCall(nil), f.uploads...)
}

// fakeVideos is an in-memory videos table.
type fakeVideos struct {
	mu        sync.Mutex
	rows      []models.Video
	listCalls int
	getCalls  int
	failWith  error
}

func (f *fakeVideos) ListVideos(ctx context.Context) ([]models.Video, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	if f.failWith != nil {
		return nil, f.failWith
	}
	return append([]models.Video(nil), f.rows...), nil
}

func (f *fakeVideos) GetVideo(ctx context.Context, id uuid.UUID) (models.Video, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getCalls++
	if f.failWith != nil {
		return models.Video{}, f.failWith
	}
	for _, v := range f.rows {
		if v.ID == id {
			return v, nil
		}
	}
	return models.Video{}, fmt.Errorf("%w: %s", storage.ErrVideoNotFound, id)
}

func (f *fakeVideos) RenameVideo(ctx context.Context, id uuid.UUID, name string) (models.Video, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.rows {
		if f.rows[i].ID == id {
			f.rows[i].Name = &name
			f.rows[i].UpdatedAt = time.Now()
			return f.rows[i], nil
		}
	}
	return models.Video{}, fmt.Errorf("%w: %s", storage.ErrVideoNotFound, id)
}

func (f *fakeVideos) DeleteVideo(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.rows[:0]
	for _, v := range f.rows {
		if v.ID != id {
			kept = append(kept, v)
		}
	}
	f.rows = kept
	return nil
}

type fakeProcessor struct {
	mu     sync.Mutex
	called int
	req    processing.ProcessRequest
	err    error
}

func (f *fakeProcessor) ProcessAndStore(ctx context.Context, req processing.ProcessRequest) (json.RawMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.called++
	f.req = req
	if f.err != nil {
		return nil, f.err
	}
	return json.RawMessage(`{"video_id":"generated"}`), nil
}

type fakeReplacer struct {
	mu     sync.Mutex
	called int
	req    processing.ReplaceChunkRequest
	err    error
}

func (f *fakeReplacer) ReplaceChunk(ctx context.Context, req processing.ReplaceChunkRequest) (json.RawMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.called++
	f.req = req
	if f.err != nil {
		return nil, f.err
	}
	return json.RawMessage(`{"status":"replacing"}`), nil
}

type testApp struct {
	app      *fiber.App
	handler  *ApplicationHandler
	store    *fakeStore
	videos   *fakeVideos
	proc     *fakeProcessor
	replacer *fakeReplacer
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	logger := testLogger()
	store := &fakeStore{fail: map[string]error{}}
	videos := &fakeVideos{}
	proc := &fakeProcessor{}
	replacer := &fakeReplacer{}

	h := NewApplicationHandler(
		store,
		videos,
		uploader.New(store, proc, logger),
		replacer,
		nil,
		NewSessionStore(t.TempDir()),
		NewReviewStore(),
		logger,
	)

	app := fiber.New()
	RegisterRoutes(app, h)

	return &testApp{
		app:      app,
		handler:  h,
		store:    store,
		videos:   videos,
		proc:     proc,
		replacer: replacer,
	}
}

// envelope is the shared response shape of the /api/v1 routes.
type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func doJSON(t *testing.T, app *fiber.App, method, target string, payload interface{}) (*http.Response, envelope) {
	t.Helper()

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}

	raw, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		t.Fatalf("read response body: %v", err)
	}

	var env envelope
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil {
			t.Fatalf("decode response %q: %v", raw, err)
		}
	}
	return resp, env
}

func decodeData(t *testing.T, env envelope, out interface{}) {
	t.Helper()
	if err := json.Unmarshal(env.Data, out); err != nil {
		t.Fatalf("decode data %q: %v", env.Data, err)
	}
}

type formFile struct {
	field   string
	name    string
	content string
}

func multipartRequest(t *testing.T, target string, files []formFile, values map[string]string) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, f := range files {
		part, err := w.CreateFormFile(f.field, f.name)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := part.Write([]byte(f.content)); err != nil {
			t.Fatalf("write form file: %v", err)
		}
	}
	for k, v := range values {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("write form field: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, target, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func createSession(t *testing.T, ta *testApp) *Session {
	t.Helper()
	sess, err := ta.handler.Sessions.Create()
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	return sess
}

func addTrack(t *testing.T, sess *Session, name string, duration float64) models.Track {
	t.Helper()
	track, err := sess.Tracks.Add(name, strings.NewReader("audio-bytes-"+name), duration)
	if err != nil {
		t.Fatalf("add track %s: %v", name, err)
	}
	return track
}

func seedVideo(ta *testApp, name string, chunks int) models.Video {
	id := uuid.New()
	urls := make([]string, chunks)
	for i := range urls {
		urls[i] = fmt.Sprintf("https://cdn.test/generated/%s/chunk_%d.mp4", id, i)
	}
	created := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)
	video := models.Video{
		ID:        id,
		Name:      &name,
		Status:    models.VideoStatusComplete,
		ChunkURLs: urls,
		CreatedAt: created,
		UpdatedAt: created,
	}
	ta.videos.mu.Lock()
	ta.videos.rows = append(ta.videos.rows, video)
	ta.videos.mu.Unlock()
	return video
}
