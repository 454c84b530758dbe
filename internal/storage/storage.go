// Package storage wraps the Supabase project this editor stores files and
// video rows in. One Client carries both halves: object storage for track
// and asset uploads, and the videos table read by the review screen. The
// client is constructed once with explicit configuration and injected,
// never pulled from a global.
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	storage_go "github.com/supabase-community/storage-go"
	supa "github.com/supabase-community/supabase-go"
)

// UploadError represents a non-2xx response from the storage upload
// endpoint.
type UploadError struct {
	StatusCode int
	Body       string
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("storage upload failed: HTTP %d: %s", e.StatusCode, e.Body)
}

// IsRetryable returns true for server errors (5xx). Client errors (4xx)
// are considered permanent.
func (e *UploadError) IsRetryable() bool {
	return e.StatusCode >= 500
}

// ObjectInfo describes one stored object under the configured bucket.
type ObjectInfo struct {
	Name      string `json:"name"`
	URL       string `json:"url"`
	CreatedAt string `json:"created_at,omitempty"`
}

// Client talks to one Supabase project: its storage buckets and its
// videos table.
type Client struct {
	supabase   *supa.Client
	baseURL    string
	apiKey     string
	bucket     string
	httpClient *http.Client
	logger     *logrus.Logger
}

// NewClient builds a storage client for the given project. All three of
// baseURL, apiKey and bucket are required.
func NewClient(baseURL, apiKey, bucket string, logger *logrus.Logger) (*Client, error) {
	supaClient, err := supa.NewClient(baseURL, apiKey, nil)
	if err != nil {
		return nil, fmt.Errorf("init supabase client: %w", err)
	}
	if bucket == "" {
		return nil, fmt.Errorf("storage bucket name is required")
	}
	return &Client{
		supabase: supaClient,
		baseURL:  strings.TrimRight(baseURL, "/"),
		apiKey:   apiKey,
		bucket:   bucket,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		logger: logger,
	}, nil
}

// Bucket returns the configured bucket name.
func (c *Client) Bucket() string {
	return c.bucket
}

// Upload writes an object at path within the configured bucket and
// returns the bucket-qualified object key reported by storage. Existing
// objects at the same path are overwritten.
func (c *Client) Upload(ctx context.Context, path, contentType string, content io.Reader) (string, error) {
	url := fmt.Sprintf("%s/storage/v1/object/%s/%s", c.baseURL, c.bucket, path)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, content)
	if err != nil {
		return "", fmt.Errorf("create upload request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("x-upsert", "true")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", path, err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		c.logger.WithFields(logrus.Fields{
			"path":   path,
			"status": resp.StatusCode,
		}).Error("Storage upload failed")
		return "", &UploadError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	// Storage reports the object key as {"Key": "bucket/path"}; fall back
	// to building it ourselves if the body is not what we expect.
	var result struct {
		Key string `json:"Key"`
	}
	key := c.bucket + "/" + path
	if err := json.Unmarshal(respBody, &result); err == nil && result.Key != "" {
		key = result.Key
	}

	c.logger.Infof("Uploaded %s to bucket %s", path, c.bucket)
	return key, nil
}

// PublicURL returns the public URL for a bucket-relative object path.
func (c *Client) PublicURL(path string) string {
	return c.supabase.Storage.GetPublicUrl(c.bucket, path).SignedURL
}

// EnsureBucket creates the configured bucket as public if it does not
// exist yet.
func (c *Client) EnsureBucket() error {
	buckets, err := c.supabase.Storage.ListBuckets()
	if err != nil {
		return fmt.Errorf("list buckets: %w", err)
	}
	for _, b := range buckets {
		if b.Id == c.bucket {
			return nil
		}
	}

	c.logger.Infof("Bucket %s not found, creating it", c.bucket)
	if _, err := c.supabase.Storage.CreateBucket(c.bucket, storage_go.BucketOptions{Public: true}); err != nil {
		return fmt.Errorf("create bucket %q: %w", c.bucket, err)
	}
	return nil
}

// ListObjects returns the objects under prefix, newest first, with their
// public URLs attached.
func (c *Client) ListObjects(prefix string, limit, offset int) ([]ObjectInfo, error) {
	if limit <= 0 {
		limit = 100
	}
	files, err := c.supabase.Storage.ListFiles(c.bucket, prefix, storage_go.FileSearchOptions{
		Limit:  limit,
		Offset: offset,
		SortByOptions: storage_go.SortBy{
			Column: "created_at",
			Order:  "desc",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("list objects under %q: %w", prefix, err)
	}

	objects := make([]ObjectInfo, 0, len(files))
	for _, f := range files {
		path := f.Name
		if prefix != "" {
			path = strings.TrimRight(prefix, "/") + "/" + f.Name
		}
		objects = append(objects, ObjectInfo{
			Name:      f.Name,
			URL:       c.PublicURL(path),
			CreatedAt: f.CreatedAt,
		})
	}
	return objects, nil
}
