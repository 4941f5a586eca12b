package manager

import (
	"context"

	"github.com/Akbar758742/multi-platform-video-downloader/internal/extractor"
	"github.com/Akbar758742/multi-platform-video-downloader/internal/models"
)

// Extractor is the slice of the yt-dlp wrapper the task runner needs.
type Extractor interface {
	ExtractInfo(ctx context.Context, url string) (*models.VideoMetadata, error)
	Download(ctx context.Context, url, formatID, outputPath string, cb extractor.ProgressCallback) (string, error)
}
