// Package manager owns the server-side download task lifecycle. Tasks walk
// created -> starting -> extracting -> downloading and finish in completed,
// failed or cancelled; terminal statuses absorb every later update.
package manager

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Akbar758742/multi-platform-video-downloader/internal/models"
)

type Manager struct {
	logger      *slog.Logger
	extractor   Extractor
	repo        *Repository
	downloadDir string

	mu      sync.RWMutex
	tasks   map[string]*models.DownloadTask
	cancels map[string]context.CancelFunc

	onUpdate func(models.DownloadTask)
}

func New(logger *slog.Logger, ext Extractor, repo *Repository, downloadDir string) *Manager {
	m := &Manager{
		logger:      logger,
		extractor:   ext,
		repo:        repo,
		downloadDir: downloadDir,
		tasks:       make(map[string]*models.DownloadTask),
		cancels:     make(map[string]context.CancelFunc),
	}
	m.restore()
	return m
}

// SetUpdateCallback registers a hook invoked with a snapshot after every task
// mutation.
func (m *Manager) SetUpdateCallback(fn func(models.DownloadTask)) {
	m.onUpdate = fn
}

// restore loads persisted tasks into memory. Tasks that were in flight when
// the process died cannot resume, so they are marked failed.
func (m *Manager) restore() {
	if m.repo == nil {
		return
	}
	tasks, err := m.repo.List()
	if err != nil {
		m.logger.Warn("failed to restore tasks", "error", err)
		return
	}
	for i := range tasks {
		task := tasks[i]
		if !task.Status.IsTerminal() {
			task.Status = models.StatusFailed
			task.Error = "interrupted by server restart"
			task.UpdatedAt = time.Now()
			if err := m.repo.Save(&task); err != nil {
				m.logger.Warn("failed to persist restored task", "task_id", task.ID, "error", err)
			}
		}
		m.tasks[task.ID] = &task
	}
	if len(tasks) > 0 {
		m.logger.Info("tasks restored", "count", len(tasks))
	}
}

// Create registers a new task in the created state and returns a snapshot.
func (m *Manager) Create(url, platform, formatID string) models.DownloadTask {
	now := time.Now()
	task := &models.DownloadTask{
		ID:        uuid.NewString(),
		URL:       url,
		Platform:  platform,
		FormatID:  formatID,
		Status:    models.StatusCreated,
		Progress:  0,
		CreatedAt: now,
		UpdatedAt: now,
	}

	m.mu.Lock()
	m.tasks[task.ID] = task
	m.mu.Unlock()

	m.persist(task.ID)
	m.logger.Info("task created", "task_id", task.ID, "url", url, "platform", platform)
	return *task
}

// Start launches the download runner for a created task.
func (m *Manager) Start(id string) error {
	m.mu.Lock()
	task, ok := m.tasks[id]
	if !ok {
		m.mu.Unlock()
		return fmt.Errorf("task not found: %s", id)
	}
	if task.Status != models.StatusCreated {
		m.mu.Unlock()
		return fmt.Errorf("task %s already started (status %s)", id, task.Status)
	}
	task.Status = models.StatusStarting
	task.UpdatedAt = time.Now()

	ctx, cancel := context.WithCancel(context.Background())
	m.cancels[id] = cancel
	m.mu.Unlock()

	m.persist(id)
	m.notify(id)

	go m.run(ctx, id)
	return nil
}

func (m *Manager) run(ctx context.Context, id string) {
	defer func() {
		m.mu.Lock()
		if cancel, ok := m.cancels[id]; ok {
			cancel()
			delete(m.cancels, id)
		}
		m.mu.Unlock()
	}()

	task, ok := m.Get(id)
	if !ok {
		return
	}

	m.update(id, func(t *models.DownloadTask) {
		t.Status = models.StatusExtracting
	})

	meta, err := m.extractor.ExtractInfo(ctx, task.URL)
	if err != nil {
		m.finishWithError(id, err)
		return
	}

	if err := os.MkdirAll(m.downloadDir, 0o755); err != nil {
		m.finishWithError(id, fmt.Errorf("failed to create downloads dir: %w", err))
		return
	}
	outputPath := filepath.Join(m.downloadDir, OutputName(meta.Title))

	m.update(id, func(t *models.DownloadTask) {
		t.Status = models.StatusDownloading
		t.Title = meta.Title
		t.Thumbnail = meta.ThumbnailURL
	})

	filePath, err := m.extractor.Download(ctx, task.URL, task.FormatID, outputPath, func(percent int) {
		m.update(id, func(t *models.DownloadTask) {
			if t.Status == models.StatusDownloading {
				t.Progress = percent
			}
		})
	})
	if err != nil {
		m.finishWithError(id, err)
		return
	}

	m.update(id, func(t *models.DownloadTask) {
		t.Status = models.StatusCompleted
		t.Progress = 100
		t.FilePath = filePath
		t.Error = ""
	})
	m.logger.Info("task completed", "task_id", id, "file", filePath)
}

func (m *Manager) finishWithError(id string, err error) {
	if errors.Is(err, context.Canceled) {
		// Cancel already moved the task to cancelled.
		m.persist(id)
		return
	}
	m.logger.Error("task failed", "task_id", id, "error", err)
	m.update(id, func(t *models.DownloadTask) {
		t.Status = models.StatusFailed
		t.Error = err.Error()
	})
}

// Cancel moves a non-terminal task to cancelled and stops its runner. It
// returns false when the task is unknown or already finished.
func (m *Manager) Cancel(id string) bool {
	m.mu.Lock()
	task, ok := m.tasks[id]
	if !ok || task.Status.IsTerminal() {
		m.mu.Unlock()
		return false
	}
	task.Status = models.StatusCancelled
	task.UpdatedAt = time.Now()
	cancel := m.cancels[id]
	m.mu.Unlock()

	m.persist(id)
	m.notify(id)
	if cancel != nil {
		cancel()
	}
	m.logger.Info("task cancelled", "task_id", id)
	return true
}

// Get returns a snapshot of one task.
func (m *Manager) Get(id string) (models.DownloadTask, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	task, ok := m.tasks[id]
	if !ok {
		return models.DownloadTask{}, false
	}
	return *task, true
}

// All returns snapshots of every task, most recently updated first.
func (m *Manager) All() []models.DownloadTask {
	m.mu.RLock()
	tasks := make([]models.DownloadTask, 0, len(m.tasks))
	for _, t := range m.tasks {
		tasks = append(tasks, *t)
	}
	m.mu.RUnlock()

	sort.Slice(tasks, func(i, j int) bool {
		return tasks[i].UpdatedAt.After(tasks[j].UpdatedAt)
	})
	return tasks
}

// update applies fn to a task unless it already reached a terminal status,
// then persists and notifies.
func (m *Manager) update(id string, fn func(*models.DownloadTask)) {
	m.mu.Lock()
	task, ok := m.tasks[id]
	if !ok || task.Status.IsTerminal() {
		m.mu.Unlock()
		return
	}
	fn(task)
	task.UpdatedAt = time.Now()
	m.mu.Unlock()

	m.persist(id)
	m.notify(id)
}

func (m *Manager) persist(id string) {
	if m.repo == nil {
		return
	}
	task, ok := m.Get(id)
	if !ok {
		return
	}
	if err := m.repo.Save(&task); err != nil {
		m.logger.Warn("failed to persist task", "task_id", id, "error", err)
	}
}

func (m *Manager) notify(id string) {
	if m.onUpdate == nil {
		return
	}
	if task, ok := m.Get(id); ok {
		m.onUpdate(task)
	}
}

// StartCleanupLoop periodically drops terminal tasks older than ttl together
// with their files.
func (m *Manager) StartCleanupLoop(ctx context.Context, interval, ttl time.Duration) {
	if interval <= 0 || ttl <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.CleanOld(ttl)
			}
		}
	}()
}

// CleanOld removes terminal tasks not updated since ttl ago and returns how
// many were dropped.
func (m *Manager) CleanOld(ttl time.Duration) int {
	cutoff := time.Now().Add(-ttl)
	var oldTasks []models.DownloadTask

	m.mu.Lock()
	for id, task := range m.tasks {
		if task.Status.IsTerminal() && task.UpdatedAt.Before(cutoff) {
			oldTasks = append(oldTasks, *task)
			delete(m.tasks, id)
		}
	}
	m.mu.Unlock()

	for _, task := range oldTasks {
		if task.FilePath != "" {
			_ = os.Remove(task.FilePath)
		}
		if m.repo != nil {
			if err := m.repo.Delete(task.ID); err != nil {
				m.logger.Warn("failed to delete task record", "task_id", task.ID, "error", err)
			}
		}
	}

	if len(oldTasks) > 0 {
		m.logger.Info("cleanup completed", "removed_tasks", len(oldTasks))
	}
	return len(oldTasks)
}

// OutputName builds a safe output filename from a video title.
func OutputName(title string) string {
	title = strings.TrimSpace(title)
	title = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '.' || r == '_' || r == '-' {
			return r
		}
		if r == ' ' {
			return '_'
		}
		return '_'
	}, title)
	if len(title) > 50 {
		title = title[:50]
	}
	if title == "" {
		title = "video"
	}
	return fmt.Sprintf("%s_%d.mp4", title, time.Now().Unix())
}
