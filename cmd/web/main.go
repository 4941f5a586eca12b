package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/lrstanley/go-ytdlp"

	"github.com/Akbar758742/multi-platform-video-downloader/internal/database"
	"github.com/Akbar758742/multi-platform-video-downloader/internal/extractor"
	"github.com/Akbar758742/multi-platform-video-downloader/internal/handlers"
	"github.com/Akbar758742/multi-platform-video-downloader/internal/manager"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	addr := envOrDefault("APP_ADDR", ":8080")
	downloadsDir := envOrDefault("DOWNLOADS_DIR", "downloads")
	dataDir := envOrDefault("DATA_DIR", "data")
	cleanupInterval := time.Duration(envIntOrDefault("CLEANUP_INTERVAL_MIN", 30)) * time.Minute
	taskTTL := time.Duration(envIntOrDefault("TASK_TTL_HOURS", 24)) * time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Fetch the yt-dlp binary if it is not already on PATH.
	ytdlp.MustInstall(ctx, nil)

	db, err := database.Init(dataDir)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	repo, err := manager.NewRepository(db)
	if err != nil {
		logger.Error("failed to init task repository", "error", err)
		os.Exit(1)
	}

	ext := extractor.NewService(logger)
	mgr := manager.New(logger, ext, repo, downloadsDir)
	mgr.StartCleanupLoop(ctx, cleanupInterval, taskTTL)

	app := handlers.NewApp(logger, mgr, ext)

	srv := &http.Server{
		Addr:              addr,
		Handler:           app.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      10 * time.Minute,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		logger.Info("server started", "addr", addr, "downloads_dir", downloadsDir)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutdown signal received")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
		_ = srv.Close()
	}
	logger.Info("server stopped")
}

func envOrDefault(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func envIntOrDefault(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}
