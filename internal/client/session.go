package client

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/Akbar758742/multi-platform-video-downloader/internal/models"
)

// Display is what the UI should render for the tracked task after one
// observation. Err carries the typed error for that cycle, if any.
type Display struct {
	Status      models.TaskStatus
	Message     string
	Progress    int
	DownloadURL string
	Err         error
}

// Session owns the state the browser page kept in module-level variables:
// the cached metadata, the single tracked task and the single polling loop.
// At most one polling loop is ever active; starting a new download tears the
// previous one down before installing its own.
type Session struct {
	client   *Client
	interval time.Duration
	onUpdate func(Display)

	mu         sync.Mutex
	metadata   *models.VideoMetadata
	taskID     string
	cancelPoll context.CancelFunc
	display    Display
}

// NewSession builds a session around an API client. onUpdate is invoked with
// every display change; it may be nil. A non-positive interval falls back to
// DefaultPollInterval.
func NewSession(c *Client, interval time.Duration, onUpdate func(Display)) *Session {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if onUpdate == nil {
		onUpdate = func(Display) {}
	}
	return &Session{client: c, interval: interval, onUpdate: onUpdate}
}

// Current returns the last emitted display state.
func (s *Session) Current() Display {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.display
}

// Metadata returns the cached extraction result, nil when none is held.
func (s *Session) Metadata() *models.VideoMetadata {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.metadata
}

// TaskID returns the currently tracked task id, empty when none.
func (s *Session) TaskID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.taskID
}

// Extract fetches metadata for a URL and caches it for StartDownload.
// Retrying the same target keeps the previous cache on failure; switching
// targets clears it first so stale metadata is never shown.
func (s *Session) Extract(ctx context.Context, rawURL string) (*models.VideoMetadata, error) {
	trimmed := strings.TrimSpace(rawURL)

	s.mu.Lock()
	if s.metadata != nil && s.metadata.URL != trimmed {
		s.metadata = nil
	}
	s.mu.Unlock()

	meta, err := s.client.Extract(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.metadata = meta
	s.mu.Unlock()
	return meta, nil
}

// StartDownload begins a download for the extracted URL and installs the
// polling loop for the returned task. Any previous loop is cancelled, the
// progress display resets to zero and the old retrieval reference is dropped.
func (s *Session) StartDownload(ctx context.Context, formatID string) (string, error) {
	s.mu.Lock()
	meta := s.metadata
	s.mu.Unlock()
	if meta == nil {
		return "", &StateError{Message: "no video information extracted yet"}
	}

	taskID, err := s.client.StartDownload(ctx, meta.URL, formatID)
	if err != nil {
		return "", err
	}

	reset := Display{Status: models.StatusCreated, Message: "Task created", Progress: 0}

	s.mu.Lock()
	if s.cancelPoll != nil {
		s.cancelPoll()
	}
	pollCtx, cancel := context.WithCancel(context.Background())
	s.cancelPoll = cancel
	s.taskID = taskID
	s.display = reset
	s.mu.Unlock()

	s.onUpdate(reset)
	go s.poll(pollCtx, taskID)
	return taskID, nil
}

// Cancel requests cancellation of the tracked task. On success the poller
// stops and the cancellation notice is shown; on failure the poller keeps
// running, since the task may still be alive server-side.
func (s *Session) Cancel(ctx context.Context) error {
	s.mu.Lock()
	taskID := s.taskID
	s.mu.Unlock()
	if taskID == "" {
		return &StateError{Message: "no download in progress"}
	}

	if err := s.client.Cancel(ctx, taskID); err != nil {
		d := s.Current()
		d.Message = err.Error()
		d.Err = err
		s.emit(taskID, d)
		return err
	}

	s.stopPolling(taskID)
	d := s.Current()
	d.Status = models.StatusCancelled
	d.Message = "Download cancelled"
	d.Err = nil
	s.emit(taskID, d)
	return nil
}

// Close tears down any active polling loop.
func (s *Session) Close() {
	s.mu.Lock()
	if s.cancelPoll != nil {
		s.cancelPoll()
		s.cancelPoll = nil
	}
	s.mu.Unlock()
}

func (s *Session) poll(ctx context.Context, taskID string) {
	// One immediate query on task-id assignment, then the fixed period.
	if s.observe(ctx, taskID) {
		s.stopPolling(taskID)
		return
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if s.observe(ctx, taskID) {
				s.stopPolling(taskID)
				return
			}
		}
	}
}

// observe performs one status query and returns true when polling must stop.
func (s *Session) observe(ctx context.Context, taskID string) bool {
	resp, err := s.client.Status(ctx, taskID)
	if ctx.Err() != nil || s.stale(taskID) {
		return true
	}

	if err != nil {
		// Transient connectivity failure: surface it for this cycle, but a
		// single failed query must not abandon an in-flight download.
		d := s.Current()
		pollErr := &TransientPollError{Message: "Connection error, retrying...", Err: err}
		d.Message = pollErr.Message
		d.Err = pollErr
		s.emit(taskID, d)
		return false
	}

	if !resp.Success {
		// The server answered but does not know the task: hard failure.
		msg := messageOr(resp.Error, fallbackStatusError)
		d := s.Current()
		d.Message = msg
		d.Err = &TerminalPollError{Message: msg}
		s.emit(taskID, d)
		return true
	}

	if resp.Task == nil {
		// success=true with no task record is undefined server behavior;
		// treat it like a transient failure and keep polling.
		d := s.Current()
		pollErr := &TransientPollError{Message: "Waiting for status..."}
		d.Message = pollErr.Message
		d.Err = pollErr
		s.emit(taskID, d)
		return false
	}

	d := s.displayFor(resp.Task)
	s.emit(taskID, d)
	return resp.Task.Status.IsTerminal()
}

// displayFor is a total mapping from task status to display record. Progress
// is taken verbatim only while downloading; completed always shows 100.
func (s *Session) displayFor(task *models.DownloadTask) Display {
	d := Display{Status: task.Status, Progress: s.Current().Progress}

	switch task.Status {
	case models.StatusCreated:
		d.Message = "Task created"
	case models.StatusStarting:
		d.Message = "Starting download..."
	case models.StatusExtracting:
		d.Message = "Extracting video information..."
	case models.StatusDownloading:
		d.Message = "Downloading..."
		d.Progress = task.Progress
	case models.StatusCompleted:
		d.Message = "Download completed!"
		d.Progress = 100
		if task.FilePath != "" {
			d.DownloadURL = s.client.RetrievalURL(task.ID)
		}
	case models.StatusFailed:
		d.Message = messageOr(task.Error, "Download failed")
	case models.StatusCancelled:
		d.Message = messageOr(task.Error, "Download cancelled")
	default:
		d.Message = "Processing..."
	}
	return d
}

// emit records and publishes a display state, unless the session has moved on
// to another task in the meantime.
func (s *Session) emit(taskID string, d Display) {
	s.mu.Lock()
	if s.taskID != taskID {
		s.mu.Unlock()
		return
	}
	s.display = d
	s.mu.Unlock()
	s.onUpdate(d)
}

func (s *Session) stopPolling(taskID string) {
	s.mu.Lock()
	if s.taskID == taskID && s.cancelPoll != nil {
		s.cancelPoll()
		s.cancelPoll = nil
	}
	s.mu.Unlock()
}

func (s *Session) stale(taskID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.taskID != taskID
}
