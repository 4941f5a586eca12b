// Package client implements the browser-side coordination core as a plain Go
// session: URL classification, metadata extraction, download orchestration
// and task polling against the JSON API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Akbar758742/multi-platform-video-downloader/internal/models"
	"github.com/Akbar758742/multi-platform-video-downloader/internal/platform"
)

// DefaultPollInterval is the reference status polling period.
const DefaultPollInterval = 2 * time.Second

const (
	fallbackExtractError  = "Failed to extract video information"
	fallbackDownloadError = "Failed to start download"
	fallbackCancelError   = "Failed to cancel download"
	fallbackStatusError   = "Task not found"
)

// Client is a typed HTTP client for the downloader API.
type Client struct {
	baseURL string
	httpc   *http.Client
}

// New builds a client for the API at baseURL. The request timeout is twice
// the poll period so a stuck status query cannot overlap more than one cycle.
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{Timeout: 2 * DefaultPollInterval},
	}
}

// Classify maps a raw URL string to its platform tag and display label.
func (c *Client) Classify(raw string) platform.Classification {
	return platform.Classify(raw)
}

// Extract requests metadata for a URL. An empty URL fails locally with a
// ValidationError and no request is made. Missing response fields get display
// defaults: "Unknown Title", "Unknown" uploader, unknown duration sentinel,
// and a single implicit best-quality option when no formats are listed.
func (c *Client) Extract(ctx context.Context, rawURL string) (*models.VideoMetadata, error) {
	url := strings.TrimSpace(rawURL)
	if url == "" {
		return nil, &ValidationError{Message: "URL is required"}
	}

	var resp models.ExtractResponse
	if err := c.postJSON(ctx, "/api/extract", models.ExtractRequest{URL: url}, &resp); err != nil {
		return nil, &ExtractionError{Message: fallbackExtractError, Err: err}
	}
	if !resp.Success {
		return nil, &ExtractionError{Message: messageOr(resp.Error, fallbackExtractError)}
	}

	meta := &models.VideoMetadata{
		URL:             url,
		Title:           messageOr(resp.Title, "Unknown Title"),
		Uploader:        messageOr(resp.Uploader, "Unknown"),
		DurationSeconds: models.DurationUnknown,
		ThumbnailURL:    resp.Thumbnail,
		Platform:        resp.Platform,
		Formats:         resp.Formats,
	}
	if resp.Duration != nil {
		meta.DurationSeconds = *resp.Duration
	}
	if len(meta.Formats) == 0 {
		meta.Formats = []models.FormatOption{{FormatID: "", Description: "Best Quality (Default)"}}
	}
	return meta, nil
}

// StartDownload asks the server to begin an asynchronous download and returns
// the task id. An empty formatID means "best quality".
func (c *Client) StartDownload(ctx context.Context, url, formatID string) (string, error) {
	var resp models.DownloadResponse
	err := c.postJSON(ctx, "/api/download", models.DownloadRequest{URL: url, FormatID: formatID}, &resp)
	if err != nil {
		return "", &DownloadStartError{Message: fallbackDownloadError, Err: err}
	}
	if !resp.Success || resp.TaskID == "" {
		return "", &DownloadStartError{Message: messageOr(resp.Error, fallbackDownloadError)}
	}
	return resp.TaskID, nil
}

// Status queries one task. Transport and decode failures are returned raw so
// the caller can tell them apart from protocol-level answers.
func (c *Client) Status(ctx context.Context, taskID string) (*models.StatusResponse, error) {
	var resp models.StatusResponse
	if err := c.getJSON(ctx, "/api/status/"+taskID, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Cancel requests a best-effort cancellation of a task.
func (c *Client) Cancel(ctx context.Context, taskID string) error {
	var resp models.CancelResponse
	if err := c.postJSON(ctx, "/api/cancel/"+taskID, struct{}{}, &resp); err != nil {
		return &CancelError{Message: fallbackCancelError, Err: err}
	}
	if !resp.Success {
		return &CancelError{Message: messageOr(resp.Error, fallbackCancelError)}
	}
	return nil
}

// RetrievalURL returns the file retrieval reference for a completed task.
func (c *Client) RetrievalURL(taskID string) string {
	return c.baseURL + "/api/download/" + taskID
}

func (c *Client) postJSON(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

// do executes the request and decodes the JSON envelope. Non-2xx responses
// still carry an envelope with success=false, so the status code itself is
// not treated as an error.
func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func messageOr(message, fallback string) string {
	if message != "" {
		return message
	}
	return fallback
}
