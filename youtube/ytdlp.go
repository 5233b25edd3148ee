package youtube

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

// DefaultYtdlpTimeout bounds a single yt-dlp invocation.
const DefaultYtdlpTimeout = 60 * time.Second

// ytdlpInfo is the slice of yt-dlp's -J output this tool reads.
type ytdlpInfo struct {
	ID                string                      `json:"id"`
	Title             string                      `json:"title"`
	Uploader          string                      `json:"uploader"`
	Channel           string                      `json:"channel"`
	UploaderID        string                      `json:"uploader_id"`
	Duration          float64                     `json:"duration"`
	Subtitles         map[string][]subtitleFormat `json:"subtitles"`
	AutomaticCaptions map[string][]subtitleFormat `json:"automatic_captions"`
}

type subtitleFormat struct {
	Ext string `json:"ext"`
	URL string `json:"url"`
}

// ytdlpRunner shells out to yt-dlp for the metadata the Data API either
// cannot provide (caption URLs) or would cost quota for.
type ytdlpRunner struct {
	// Path is the yt-dlp executable, "yt-dlp" from PATH when empty.
	Path string
	// CookiesFile, when set and present on disk, is passed to yt-dlp for
	// age-restricted and bot-checked videos.
	CookiesFile string
	// Timeout bounds each invocation. Zero means DefaultYtdlpTimeout.
	Timeout time.Duration
}

// videoInfo runs yt-dlp -J for a video and parses the JSON it prints.
func (r ytdlpRunner) videoInfo(ctx context.Context, videoID string) (*ytdlpInfo, error) {
	path := r.Path
	if path == "" {
		path = "yt-dlp"
	}
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = DefaultYtdlpTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	args := []string{"-J", "--no-warnings", "--skip-download"}
	if r.CookiesFile != "" {
		if _, err := os.Stat(r.CookiesFile); err == nil {
			args = append(args, "--cookies", r.CookiesFile)
		}
	}
	args = append(args, "https://www.youtube.com/watch?v="+videoID)

	cmd := exec.CommandContext(ctx, path, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("yt-dlp: %w: %s", err, msg)
		}
		return nil, fmt.Errorf("yt-dlp: %w", err)
	}

	var info ytdlpInfo
	if err := json.Unmarshal(stdout.Bytes(), &info); err != nil {
		return nil, fmt.Errorf("parse yt-dlp output: %w", err)
	}
	return &info, nil
}

// permanentPatterns are yt-dlp error fragments that no amount of retrying
// will fix.
var permanentPatterns = []string{
	"video unavailable",
	"private video",
	"sign in to confirm your age",
	"this video is not available",
	"this video has been removed",
}

// isPermanentYtdlpError reports whether a yt-dlp failure is final for the
// video, as opposed to a transient network or throttling problem.
func isPermanentYtdlpError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrNoTranscript) || errors.Is(err, ErrVideoUnavailable) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, p := range permanentPatterns {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}
