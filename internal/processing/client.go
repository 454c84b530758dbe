// Package processing is the HTTP client for the external video-processing
// service. The service does all the actual slicing and stitching; this side
// only posts breakpoint payloads and chunk-replacement requests and treats
// the response as opaque beyond success or failure.
package processing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// APIError represents a non-2xx response from the processing service.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("processing api: HTTP %d: %s", e.StatusCode, e.Message())
}

// Message returns the human-readable error from the response body. The
// service reports errors as {"detail": "..."}; anything else passes
// through as-is.
func (e *APIError) Message() string {
	var payload struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal([]byte(e.Body), &payload); err == nil && payload.Detail != "" {
		return payload.Detail
	}
	if s := strings.TrimSpace(e.Body); s != "" {
		return s
	}
	return http.StatusText(e.StatusCode)
}

// IsRetryable returns true for server errors (5xx). Client errors (4xx)
// are considered permanent.
func (e *APIError) IsRetryable() bool {
	return e.StatusCode >= 500
}

// ProcessItem is one track's contribution to a process-and-store request.
type ProcessItem struct {
	SupabaseURL string    `json:"supabase_url"`
	Breakpoints []float64 `json:"breakpoints"`
}

// ProcessRequest is the body of POST /video/process-and-store.
type ProcessRequest struct {
	Data          []ProcessItem `json:"data"`
	CombineVideos bool          `json:"combine_videos"`
	OutputDir     string        `json:"output_dir"`
}

// ReplaceChunkRequest is the body of POST /video/replace-chunk.
type ReplaceChunkRequest struct {
	CustomVideoURL string `json:"custom_video_url"`
	ChunkVideoURL  string `json:"chunk_video_url"`
	VideoID        string `json:"video_id"`
	ChunkIndex     int    `json:"chunk_index"`
}

// Client calls the processing service over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *logrus.Logger
}

// NewClient creates a client for the processing service at baseURL.
func NewClient(baseURL string, logger *logrus.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			// Slicing and stitching on the far side can take a while.
			Timeout: 5 * time.Minute,
		},
		logger: logger,
	}
}

// ProcessAndStore submits the aggregated track payload for slicing.
func (c *Client) ProcessAndStore(ctx context.Context, req ProcessRequest) (json.RawMessage, error) {
	// A track with no cuts still sends an empty list, not null.
	for i := range req.Data {
		if req.Data[i].Breakpoints == nil {
			req.Data[i].Breakpoints = []float64{}
		}
	}

	c.logger.WithFields(logrus.Fields{
		"tracks":     len(req.Data),
		"combine":    req.CombineVideos,
		"output_dir": req.OutputDir,
	}).Info("Submitting tracks for processing")

	return c.post(ctx, "/video/process-and-store", req)
}

// ReplaceChunk asks the service to swap one chunk of a stored video for a
// custom clip.
func (c *Client) ReplaceChunk(ctx context.Context, req ReplaceChunkRequest) (json.RawMessage, error) {
	c.logger.WithFields(logrus.Fields{
		"video_id":    req.VideoID,
		"chunk_index": req.ChunkIndex,
	}).Info("Requesting chunk replacement")

	return c.post(ctx, "/video/replace-chunk", req)
}

func (c *Client) post(ctx context.Context, path string, payload interface{}) (json.RawMessage, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal processing payload: %w", err)
	}

	url := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call processing api: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return json.RawMessage(respBody), nil
	}

	c.logger.WithFields(logrus.Fields{
		"path":   path,
		"status": resp.StatusCode,
	}).Error("Processing api returned an error")

	return nil, &APIError{StatusCode: resp.StatusCode, Body: string(respBody)}
}
