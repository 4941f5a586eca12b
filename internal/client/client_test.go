package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/Akbar758742/multi-platform-video-downloader/internal/models"
)

func writeJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(payload)
}

func TestClient_Extract_EmptyURLMakesNoRequest(t *testing.T) {
	var requests atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		writeJSON(w, http.StatusOK, models.ExtractResponse{Success: true})
	}))
	defer srv.Close()

	c := New(srv.URL)
	for _, url := range []string{"", "   ", "\t\n"} {
		_, err := c.Extract(context.Background(), url)
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Errorf("Extract(%q) error = %v, expected ValidationError", url, err)
		}
	}
	if n := requests.Load(); n != 0 {
		t.Errorf("expected no requests for empty URLs, server saw %d", n)
	}
}

func TestClient_Extract_AppliesDisplayDefaults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, models.ExtractResponse{Success: true, URL: "https://youtu.be/abc"})
	}))
	defer srv.Close()

	meta, err := New(srv.URL).Extract(context.Background(), "https://youtu.be/abc")
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if meta.Title != "Unknown Title" {
		t.Errorf("expected default title, got %q", meta.Title)
	}
	if meta.Uploader != "Unknown" {
		t.Errorf("expected default uploader, got %q", meta.Uploader)
	}
	if meta.DurationSeconds != models.DurationUnknown {
		t.Errorf("expected unknown duration sentinel, got %d", meta.DurationSeconds)
	}
	if meta.DurationString() != "Unknown" {
		t.Errorf("expected duration displayed as Unknown, got %q", meta.DurationString())
	}
	if len(meta.Formats) != 1 {
		t.Fatalf("expected exactly one implicit format option, got %d", len(meta.Formats))
	}
	if meta.Formats[0].FormatID != "" {
		t.Errorf("implicit option must have no format id, got %q", meta.Formats[0].FormatID)
	}
	if meta.Formats[0].DisplayText() != "Best Quality (Default)" {
		t.Errorf("unexpected implicit option text %q", meta.Formats[0].DisplayText())
	}
}

func TestClient_Extract_PopulatedResponse(t *testing.T) {
	duration := 125
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, models.ExtractResponse{
			Success:  true,
			URL:      "https://youtu.be/abc",
			Title:    "Some Video",
			Uploader: "Some Channel",
			Duration: &duration,
			Platform: "youtube",
			Formats: []models.FormatOption{
				{FormatID: "22", Description: "720p"},
				{FormatID: "18"},
				{FormatID: "137", Description: "1080p"},
			},
		})
	}))
	defer srv.Close()

	meta, err := New(srv.URL).Extract(context.Background(), "  https://youtu.be/abc  ")
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if meta.URL != "https://youtu.be/abc" {
		t.Errorf("expected trimmed URL, got %q", meta.URL)
	}
	if meta.DurationString() != "2:05" {
		t.Errorf("duration 125 displayed as %q, expected 2:05", meta.DurationString())
	}

	// Insertion order is display order, and descriptions fall back per option.
	ids := []string{"22", "18", "137"}
	texts := []string{"720p", "Format 18", "1080p"}
	for i, f := range meta.Formats {
		if f.FormatID != ids[i] {
			t.Errorf("format %d id = %q, expected %q", i, f.FormatID, ids[i])
		}
		if f.DisplayText() != texts[i] {
			t.Errorf("format %d text = %q, expected %q", i, f.DisplayText(), texts[i])
		}
	}
}

func TestClient_Extract_ServerFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusInternalServerError, models.ExtractResponse{Success: false, Error: "Video unavailable"})
	}))
	defer srv.Close()

	_, err := New(srv.URL).Extract(context.Background(), "https://youtu.be/gone")
	var exErr *ExtractionError
	if !errors.As(err, &exErr) {
		t.Fatalf("expected ExtractionError, got %v", err)
	}
	if exErr.Message != "Video unavailable" {
		t.Errorf("expected server message, got %q", exErr.Message)
	}
}

func TestClient_Extract_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	_, err := New(srv.URL).Extract(context.Background(), "https://youtu.be/abc")
	var exErr *ExtractionError
	if !errors.As(err, &exErr) {
		t.Fatalf("expected ExtractionError, got %v", err)
	}
	if exErr.Message != "Failed to extract video information" {
		t.Errorf("expected generic fallback message, got %q", exErr.Message)
	}
	if exErr.Unwrap() == nil {
		t.Error("expected wrapped transport error")
	}
}

func TestClient_StartDownload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req models.DownloadRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.URL == "" {
			writeJSON(w, http.StatusBadRequest, models.DownloadResponse{Success: false, Error: "URL is required"})
			return
		}
		writeJSON(w, http.StatusOK, models.DownloadResponse{Success: true, TaskID: "task-1"})
	}))
	defer srv.Close()

	c := New(srv.URL)
	id, err := c.StartDownload(context.Background(), "https://youtu.be/abc", "22")
	if err != nil {
		t.Fatalf("StartDownload failed: %v", err)
	}
	if id != "task-1" {
		t.Errorf("expected task-1, got %q", id)
	}

	_, err = c.StartDownload(context.Background(), "", "")
	var dlErr *DownloadStartError
	if !errors.As(err, &dlErr) {
		t.Fatalf("expected DownloadStartError, got %v", err)
	}
	if dlErr.Message != "URL is required" {
		t.Errorf("expected server message, got %q", dlErr.Message)
	}
}

func TestClient_Cancel(t *testing.T) {
	var ok atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ok.Load() {
			writeJSON(w, http.StatusOK, models.CancelResponse{Success: true})
			return
		}
		writeJSON(w, http.StatusBadRequest, models.CancelResponse{Success: false, Error: "Failed to cancel download or task not found"})
	}))
	defer srv.Close()

	c := New(srv.URL)

	err := c.Cancel(context.Background(), "task-1")
	var cErr *CancelError
	if !errors.As(err, &cErr) {
		t.Fatalf("expected CancelError, got %v", err)
	}

	ok.Store(true)
	if err := c.Cancel(context.Background(), "task-1"); err != nil {
		t.Errorf("Cancel failed: %v", err)
	}
}

func TestClient_RetrievalURL(t *testing.T) {
	c := New("http://localhost:8080/")
	if got := c.RetrievalURL("abc"); got != "http://localhost:8080/api/download/abc" {
		t.Errorf("RetrievalURL = %q", got)
	}
}
