package models

// JSON envelopes exchanged with the HTTP API. Field names and the success
// flag are a compatibility contract; do not rename.

// ExtractRequest is the body of POST /api/extract.
type ExtractRequest struct {
	URL string `json:"url"`
}

// ExtractResponse carries extracted metadata. Duration is a pointer so a
// missing value can be told apart from zero.
type ExtractResponse struct {
	Success   bool           `json:"success"`
	URL       string         `json:"url,omitempty"`
	Title     string         `json:"title,omitempty"`
	Uploader  string         `json:"uploader,omitempty"`
	Duration  *int           `json:"duration,omitempty"`
	Thumbnail string         `json:"thumbnail,omitempty"`
	Platform  string         `json:"platform,omitempty"`
	Formats   []FormatOption `json:"formats,omitempty"`
	Error     string         `json:"error,omitempty"`
}

// DownloadRequest is the body of POST /api/download. An absent FormatID means
// "best quality".
type DownloadRequest struct {
	URL      string `json:"url"`
	FormatID string `json:"format_id,omitempty"`
}

// DownloadResponse answers a download start request.
type DownloadResponse struct {
	Success bool   `json:"success"`
	TaskID  string `json:"task_id,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// StatusResponse answers GET /api/status/{task_id}.
type StatusResponse struct {
	Success bool          `json:"success"`
	Task    *DownloadTask `json:"task,omitempty"`
	Error   string        `json:"error,omitempty"`
}

// CancelResponse answers POST /api/cancel/{task_id}.
type CancelResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// ListResponse answers GET /api/downloads.
type ListResponse struct {
	Success bool           `json:"success"`
	Tasks   []DownloadTask `json:"tasks"`
	Error   string         `json:"error,omitempty"`
}
