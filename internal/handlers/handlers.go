package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"github.com/Akbar758742/multi-platform-video-downloader/internal/manager"
	"github.com/Akbar758742/multi-platform-video-downloader/internal/models"
	"github.com/Akbar758742/multi-platform-video-downloader/internal/platform"
	"github.com/Akbar758742/multi-platform-video-downloader/templates"
)

type App struct {
	logger *slog.Logger

	router    *chi.Mux
	manager   *manager.Manager
	extractor manager.Extractor

	mu   sync.RWMutex
	subs map[string]map[*websocket.Conn]struct{}

	upgrader websocket.Upgrader
}

func NewApp(logger *slog.Logger, mgr *manager.Manager, ext manager.Extractor) *App {
	app := &App{
		logger:    logger,
		router:    chi.NewRouter(),
		manager:   mgr,
		extractor: ext,
		subs:      make(map[string]map[*websocket.Conn]struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}

	mgr.SetUpdateCallback(app.broadcastTask)
	app.registerRoutes()
	return app
}

func (a *App) Router() http.Handler {
	return a.router
}

func (a *App) registerRoutes() {
	a.router.Use(middleware.RequestID)
	a.router.Use(middleware.RealIP)
	a.router.Use(middleware.Recoverer)
	a.router.Use(middleware.Timeout(30 * time.Minute))
	a.router.Use(a.corsMiddleware)

	a.router.Get("/", a.index)
	a.router.Post("/api/extract", a.apiExtract)
	a.router.Post("/api/download", a.apiDownload)
	a.router.Get("/api/status/{taskID}", a.apiStatus)
	a.router.Get("/api/downloads", a.apiDownloads)
	a.router.Post("/api/cancel/{taskID}", a.apiCancel)
	a.router.Get("/api/download/{taskID}", a.downloadFile)
	a.router.Get("/ws/{taskID}", a.taskWS)
	a.router.Get("/healthz", a.health)

	staticFS := http.FileServer(http.Dir("static"))
	a.router.Handle("/static/*", http.StripPrefix("/static/", staticFS))
}

func (a *App) health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok", "timestamp": time.Now().Format(time.RFC3339)})
}

func (a *App) index(w http.ResponseWriter, r *http.Request) {
	recent := a.manager.All()
	if len(recent) > 10 {
		recent = recent[:10]
	}
	a.render(w, r, templates.IndexPage(recent))
}

func (a *App) apiExtract(w http.ResponseWriter, r *http.Request) {
	var req models.ExtractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.respondJSON(w, http.StatusBadRequest, models.ExtractResponse{Success: false, Error: "Invalid request body"})
		return
	}

	url := strings.TrimSpace(req.URL)
	if url == "" {
		a.respondJSON(w, http.StatusBadRequest, models.ExtractResponse{Success: false, Error: "URL is required"})
		return
	}

	cls := platform.Classify(url)
	meta, err := a.extractor.ExtractInfo(r.Context(), url)
	if err != nil {
		a.logger.Warn("extraction failed", "url", url, "error", err)
		a.respondJSON(w, http.StatusInternalServerError, models.ExtractResponse{Success: false, Error: err.Error()})
		return
	}

	resp := models.ExtractResponse{
		Success:   true,
		URL:       url,
		Title:     meta.Title,
		Uploader:  meta.Uploader,
		Thumbnail: meta.ThumbnailURL,
		Platform:  string(cls.Platform),
		Formats:   meta.Formats,
	}
	if meta.DurationSeconds >= 0 {
		duration := meta.DurationSeconds
		resp.Duration = &duration
	}
	a.respondJSON(w, http.StatusOK, resp)
}

func (a *App) apiDownload(w http.ResponseWriter, r *http.Request) {
	var req models.DownloadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.respondJSON(w, http.StatusBadRequest, models.DownloadResponse{Success: false, Error: "Invalid request body"})
		return
	}

	url := strings.TrimSpace(req.URL)
	if url == "" {
		a.respondJSON(w, http.StatusBadRequest, models.DownloadResponse{Success: false, Error: "URL is required"})
		return
	}

	cls := platform.Classify(url)
	task := a.manager.Create(url, string(cls.Platform), req.FormatID)
	if err := a.manager.Start(task.ID); err != nil {
		a.logger.Error("failed to start task", "task_id", task.ID, "error", err)
		a.respondJSON(w, http.StatusInternalServerError, models.DownloadResponse{Success: false, Error: err.Error()})
		return
	}

	a.respondJSON(w, http.StatusOK, models.DownloadResponse{
		Success: true,
		TaskID:  task.ID,
		Message: "Download started",
	})
}

func (a *App) apiStatus(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "taskID")
	task, ok := a.manager.Get(taskID)
	if !ok {
		a.respondJSON(w, http.StatusNotFound, models.StatusResponse{Success: false, Error: "Task not found"})
		return
	}
	a.respondJSON(w, http.StatusOK, models.StatusResponse{Success: true, Task: &task})
}

func (a *App) apiDownloads(w http.ResponseWriter, r *http.Request) {
	a.respondJSON(w, http.StatusOK, models.ListResponse{Success: true, Tasks: a.manager.All()})
}

func (a *App) apiCancel(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "taskID")
	if !a.manager.Cancel(taskID) {
		a.respondJSON(w, http.StatusBadRequest, models.CancelResponse{
			Success: false,
			Error:   "Failed to cancel download or task not found",
		})
		return
	}
	a.respondJSON(w, http.StatusOK, models.CancelResponse{Success: true, Message: "Download cancelled"})
}

func (a *App) downloadFile(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "taskID")
	task, ok := a.manager.Get(taskID)
	if !ok {
		http.NotFound(w, r)
		return
	}
	if task.Status != models.StatusCompleted || task.FilePath == "" {
		http.Error(w, "download not completed", http.StatusConflict)
		return
	}
	if _, err := os.Stat(task.FilePath); err != nil {
		http.Error(w, "file not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Disposition", "attachment; filename=\""+filepath.Base(task.FilePath)+"\"")
	http.ServeFile(w, r, task.FilePath)
}

func (a *App) taskWS(w http.ResponseWriter, r *http.Request) {
	taskID := chi.URLParam(r, "taskID")
	task, ok := a.manager.Get(taskID)
	if !ok {
		http.Error(w, "task not found", http.StatusNotFound)
		return
	}

	conn, err := a.upgrader.Upgrade(w, r, nil)
	if err != nil {
		a.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	a.mu.Lock()
	if a.subs[taskID] == nil {
		a.subs[taskID] = make(map[*websocket.Conn]struct{})
	}
	a.subs[taskID][conn] = struct{}{}
	a.mu.Unlock()

	_ = conn.WriteJSON(progressEvent(task))

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	a.mu.Lock()
	delete(a.subs[taskID], conn)
	a.mu.Unlock()
	_ = conn.Close()
}

func (a *App) broadcastTask(task models.DownloadTask) {
	evt := progressEvent(task)

	a.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(a.subs[task.ID]))
	for c := range a.subs[task.ID] {
		conns = append(conns, c)
	}
	a.mu.RUnlock()

	for _, c := range conns {
		if err := c.WriteJSON(evt); err != nil {
			a.mu.Lock()
			delete(a.subs[task.ID], c)
			a.mu.Unlock()
			_ = c.Close()
		}
	}
}

func progressEvent(task models.DownloadTask) models.ProgressEvent {
	evt := models.ProgressEvent{
		ID:       task.ID,
		Status:   task.Status,
		Progress: task.Progress,
		Message:  statusMessage(task.Status),
		Error:    task.Error,
	}
	if task.Status == models.StatusCompleted && task.FilePath != "" {
		evt.DownloadURL = "/api/download/" + task.ID
	}
	return evt
}

func statusMessage(status models.TaskStatus) string {
	switch status {
	case models.StatusCreated:
		return "Task created"
	case models.StatusStarting:
		return "Starting download"
	case models.StatusExtracting:
		return "Extracting video information"
	case models.StatusDownloading:
		return "Downloading"
	case models.StatusCompleted:
		return "Download completed"
	case models.StatusFailed:
		return "Download failed"
	case models.StatusCancelled:
		return "Download cancelled"
	default:
		return "Processing"
	}
}

func (a *App) render(w http.ResponseWriter, r *http.Request, component templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := component.Render(r.Context(), w); err != nil {
		a.logger.Error("failed to render template", "error", err)
		http.Error(w, "failed to render page", http.StatusInternalServerError)
	}
}

func (a *App) respondJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		a.logger.Error("failed to encode json", "error", err)
	}
}

func (a *App) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
