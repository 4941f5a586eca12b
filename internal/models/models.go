package models

import (
	"fmt"
	"time"
)

// TaskStatus represents the current state of a download task. The exact wire
// strings are a compatibility contract with API consumers.
type TaskStatus string

const (
	StatusCreated     TaskStatus = "created"
	StatusStarting    TaskStatus = "starting"
	StatusExtracting  TaskStatus = "extracting"
	StatusDownloading TaskStatus = "downloading"
	StatusCompleted   TaskStatus = "completed"
	StatusFailed      TaskStatus = "failed"
	StatusCancelled   TaskStatus = "cancelled"
)

// String returns the wire representation of the status.
func (s TaskStatus) String() string {
	return string(s)
}

// IsTerminal reports whether no further transition leaves this status.
func (s TaskStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCancelled
}

// IsActive reports whether the task is still being worked on.
func (s TaskStatus) IsActive() bool {
	return s == StatusCreated || s == StatusStarting || s == StatusExtracting || s == StatusDownloading
}

// DownloadTask stores metadata and runtime state for one download attempt.
type DownloadTask struct {
	ID        string     `json:"id"`
	URL       string     `json:"url"`
	Platform  string     `json:"platform,omitempty"`
	FormatID  string     `json:"format_id,omitempty"`
	Title     string     `json:"title,omitempty"`
	Thumbnail string     `json:"thumbnail,omitempty"`
	Status    TaskStatus `json:"status"`
	Progress  int        `json:"progress"`
	FilePath  string     `json:"file_path,omitempty"`
	Error     string     `json:"error,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// DurationUnknown is the sentinel for a missing duration. It is displayed as
// "Unknown" rather than computed as zero.
const DurationUnknown = -1

// FormatOption is one selectable quality for a video. An empty FormatID means
// "let the extractor choose".
type FormatOption struct {
	FormatID    string `json:"format_id"`
	Description string `json:"description,omitempty"`
}

// DisplayText returns the option's description, falling back to "Format {id}"
// when the server supplied none.
func (f FormatOption) DisplayText() string {
	if f.Description != "" {
		return f.Description
	}
	return "Format " + f.FormatID
}

// VideoMetadata is the result of one successful extraction. It is immutable
// once built and discarded when a new extraction starts.
type VideoMetadata struct {
	URL             string
	Title           string
	Uploader        string
	DurationSeconds int
	ThumbnailURL    string
	Platform        string
	Formats         []FormatOption
}

// DurationString formats the duration for display, "Unknown" when missing.
func (m *VideoMetadata) DurationString() string {
	if m.DurationSeconds < 0 {
		return "Unknown"
	}
	return FormatDuration(m.DurationSeconds)
}

// FormatDuration renders seconds as M:SS with zero-padded seconds,
// e.g. 125 -> "2:05".
func FormatDuration(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

// ProgressEvent is pushed to clients over WebSocket.
type ProgressEvent struct {
	ID          string     `json:"id"`
	Status      TaskStatus `json:"status"`
	Progress    int        `json:"progress"`
	Message     string     `json:"message,omitempty"`
	DownloadURL string     `json:"download_url,omitempty"`
	Error       string     `json:"error,omitempty"`
}
