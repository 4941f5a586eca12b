package extractor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/lrstanley/go-ytdlp"

	"github.com/Akbar758742/multi-platform-video-downloader/internal/models"
)

// ProgressCallback receives percent updates emitted while a download runs.
type ProgressCallback func(percent int)

// Service wraps yt-dlp operations. Format negotiation, muxing and
// platform-specific scraping all stay inside yt-dlp.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	return &Service{logger: logger}
}

// rawInfo is the subset of yt-dlp's --dump-single-json output we care about.
type rawInfo struct {
	Title     string   `json:"title"`
	Uploader  string   `json:"uploader"`
	Duration  *float64 `json:"duration"`
	Thumbnail string   `json:"thumbnail"`
	Formats   []struct {
		FormatID   string `json:"format_id"`
		FormatNote string `json:"format_note"`
		Ext        string `json:"ext"`
		Resolution string `json:"resolution"`
	} `json:"formats"`
}

// ExtractInfo fetches metadata for a URL without downloading anything.
func (s *Service) ExtractInfo(ctx context.Context, url string) (*models.VideoMetadata, error) {
	dl := ytdlp.New().
		SkipDownload().
		DumpSingleJSON().
		NoWarnings()

	result, err := dl.Run(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("yt-dlp info extraction failed: %w", err)
	}

	var info rawInfo
	if err := json.Unmarshal([]byte(result.Stdout), &info); err != nil {
		return nil, fmt.Errorf("failed to parse yt-dlp output: %w", err)
	}

	meta := &models.VideoMetadata{
		URL:             url,
		Title:           info.Title,
		Uploader:        info.Uploader,
		DurationSeconds: models.DurationUnknown,
		ThumbnailURL:    info.Thumbnail,
	}
	if info.Duration != nil {
		meta.DurationSeconds = int(*info.Duration)
	}

	for _, f := range info.Formats {
		if f.FormatID == "" {
			continue
		}
		meta.Formats = append(meta.Formats, models.FormatOption{
			FormatID:    f.FormatID,
			Description: formatDescription(f.Resolution, f.FormatNote, f.Ext),
		})
	}

	s.logger.Info("metadata extracted", "url", url, "title", meta.Title, "formats", len(meta.Formats))
	return meta, nil
}

// Download fetches the video into outputPath, reporting progress through cb.
// It returns the path of the downloaded file, which may differ from
// outputPath when yt-dlp picks another container.
func (s *Service) Download(ctx context.Context, url, formatID, outputPath string, cb ProgressCallback) (string, error) {
	format := formatID
	if format == "" {
		format = "bestvideo+bestaudio/best"
	}

	dl := ytdlp.New().
		ForceOverwrites().
		RestrictFilenames().
		NoWarnings().
		Format(format).
		Output(outputPath)

	dl.ProgressFunc(500*time.Millisecond, func(update ytdlp.ProgressUpdate) {
		if cb == nil || update.TotalBytes <= 0 {
			return
		}
		percent := int(float64(update.DownloadedBytes) / float64(update.TotalBytes) * 100)
		if percent > 100 {
			percent = 100
		}
		cb(percent)
	})

	result, err := dl.Run(ctx, url)
	if err != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("yt-dlp download failed: %w", err)
	}

	filePath := outputPath
	if result != nil {
		if info, infoErr := result.GetExtractedInfo(); infoErr == nil && len(info) > 0 && info[0].Filename != nil {
			filePath = *info[0].Filename
		}
	}

	s.logger.Info("download finished", "url", url, "file", filePath)
	return filePath, nil
}

// formatDescription builds a human-readable label from format fields,
// e.g. "1280x720 - 720p - .mp4".
func formatDescription(resolution, note, ext string) string {
	var parts []string
	if resolution != "" && resolution != "audio only" {
		parts = append(parts, resolution)
	}
	if note != "" && note != "Default" {
		parts = append(parts, note)
	}
	if ext != "" {
		parts = append(parts, "."+ext)
	}
	return strings.Join(parts, " - ")
}
