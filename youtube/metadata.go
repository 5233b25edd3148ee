package youtube

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Metadata is the per-video information yt-dlp can provide without an API
// key: enough to title the cached document and name its file.
type Metadata struct {
	VideoID  string
	Title    string
	Channel  string
	Duration time.Duration
}

// MetadataFetcher reads single-video metadata through yt-dlp, for the
// direct summarize path where no Data API credentials are involved.
type MetadataFetcher struct {
	runner ytdlpRunner
	logger *slog.Logger
}

// NewMetadataFetcher returns a fetcher shelling out to the given yt-dlp
// executable. Empty path means "yt-dlp" from PATH.
func NewMetadataFetcher(ytdlpPath, cookiesFile string, timeout time.Duration, logger *slog.Logger) *MetadataFetcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &MetadataFetcher{
		runner: ytdlpRunner{Path: ytdlpPath, CookiesFile: cookiesFile, Timeout: timeout},
		logger: logger,
	}
}

// Fetch returns metadata for a video. Unavailable videos map to
// ErrVideoUnavailable.
func (f *MetadataFetcher) Fetch(ctx context.Context, videoID string) (*Metadata, error) {
	info, err := f.runner.videoInfo(ctx, videoID)
	if err != nil {
		if isPermanentYtdlpError(err) {
			return nil, fmt.Errorf("%w: %v", ErrVideoUnavailable, err)
		}
		return nil, err
	}
	if info.Title == "" {
		return nil, fmt.Errorf("youtube: no title for video %s", videoID)
	}

	channel := info.Uploader
	if channel == "" {
		channel = info.Channel
	}
	if channel == "" {
		channel = info.UploaderID
	}

	return &Metadata{
		VideoID:  videoID,
		Title:    info.Title,
		Channel:  channel,
		Duration: time.Duration(info.Duration) * time.Second,
	}, nil
}
