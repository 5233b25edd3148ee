package youtube

import (
	"context"
	"fmt"
	"html"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"ytvault/retry"
)

// DefaultLanguage is the preferred subtitle language when none is
// configured.
const DefaultLanguage = "en"

// TranscriptFetcher downloads a video's subtitles through yt-dlp and
// flattens them to plain text.
type TranscriptFetcher struct {
	runner ytdlpRunner
	client *http.Client
	retry  retry.Config
	logger *slog.Logger
}

// TranscriptOption configures a TranscriptFetcher.
type TranscriptOption func(*TranscriptFetcher)

// WithYtdlp overrides the yt-dlp executable path and timeout.
func WithYtdlp(path string, timeout time.Duration) TranscriptOption {
	return func(f *TranscriptFetcher) {
		f.runner.Path = path
		f.runner.Timeout = timeout
	}
}

// WithCookiesFile passes a Netscape cookies file to yt-dlp.
func WithCookiesFile(path string) TranscriptOption {
	return func(f *TranscriptFetcher) { f.runner.CookiesFile = path }
}

// WithHTTPClient overrides the client used to fetch subtitle files.
func WithHTTPClient(c *http.Client) TranscriptOption {
	return func(f *TranscriptFetcher) { f.client = c }
}

// NewTranscriptFetcher returns a fetcher with default settings.
func NewTranscriptFetcher(logger *slog.Logger, opts ...TranscriptOption) *TranscriptFetcher {
	if logger == nil {
		logger = slog.Default()
	}
	f := &TranscriptFetcher{
		client: http.DefaultClient,
		retry:  retry.DefaultConfig(),
		logger: logger,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch returns the transcript for a video in the preferred language or the
// closest available fallback. It returns a *TranscriptError wrapping
// ErrNoTranscript when the video has no subtitles at all.
func (f *TranscriptFetcher) Fetch(ctx context.Context, videoID, language string) (*Transcript, error) {
	if language == "" {
		language = DefaultLanguage
	}

	var transcript *Transcript
	err := retry.Do(ctx, f.retry, transcriptErrorClassifier, func(ctx context.Context) error {
		var err error
		transcript, err = f.fetch(ctx, videoID, language)
		return err
	})
	if err != nil {
		return nil, &TranscriptError{VideoID: videoID, Err: err}
	}
	return transcript, nil
}

func (f *TranscriptFetcher) fetch(ctx context.Context, videoID, language string) (*Transcript, error) {
	info, err := f.runner.videoInfo(ctx, videoID)
	if err != nil {
		return nil, err
	}

	vttURL, lang := selectSubtitleURL(info.Subtitles, info.AutomaticCaptions, language)
	if vttURL == "" {
		return nil, ErrNoTranscript
	}
	f.logger.Debug("fetching subtitles",
		"video_id", videoID, "language", lang, "preferred", language)

	content, err := f.download(ctx, vttURL)
	if err != nil {
		return nil, fmt.Errorf("download subtitles: %w", err)
	}

	text := ParseWebVTT(content)
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: subtitle file was empty", ErrNoTranscript)
	}

	return &Transcript{VideoID: videoID, FullText: text, Language: lang}, nil
}

func (f *TranscriptFetcher) download(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("subtitle fetch returned %s", resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// selectSubtitleURL picks the best VTT track. Priority: manual subtitles in
// the preferred language, then auto-captions in the preferred language, then
// any manual track, then any auto-caption.
func selectSubtitleURL(manual, auto map[string][]subtitleFormat, language string) (url, lang string) {
	if u := vttURL(manual[language]); u != "" {
		return u, language
	}
	if u := vttURL(auto[language]); u != "" {
		return u, language
	}
	for lang, formats := range manual {
		if u := vttURL(formats); u != "" {
			return u, lang
		}
	}
	for lang, formats := range auto {
		if u := vttURL(formats); u != "" {
			return u, lang
		}
	}
	return "", ""
}

func vttURL(formats []subtitleFormat) string {
	for _, f := range formats {
		if f.Ext == "vtt" && f.URL != "" {
			return f.URL
		}
	}
	return ""
}

func transcriptErrorClassifier(err error) bool {
	return !isPermanentYtdlpError(err) && retry.IsRetryable(err)
}

var (
	timestampPattern = regexp.MustCompile(`^\d{2}:\d{2}:\d{2}\.\d{3}\s+-->\s+`)
	tagPattern       = regexp.MustCompile(`<[^>]+>`)
)

// ParseWebVTT flattens WebVTT subtitle content to plain text: the header,
// timestamps, cue numbers, and markup are dropped, entities are unescaped,
// and consecutive duplicate lines (ubiquitous in auto-captions) collapse
// to one.
func ParseWebVTT(content string) string {
	var out []string
	inCue := false

	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case line == "":
			continue
		case strings.HasPrefix(line, "WEBVTT"):
			continue
		case timestampPattern.MatchString(line):
			inCue = true
			continue
		case isDigits(line):
			continue
		case strings.HasPrefix(line, "NOTE"),
			strings.HasPrefix(line, "STYLE"),
			strings.HasPrefix(line, "REGION"):
			continue
		}
		if !inCue {
			continue
		}

		text := strings.TrimSpace(html.UnescapeString(tagPattern.ReplaceAllString(line, "")))
		if text == "" {
			continue
		}
		if len(out) > 0 && out[len(out)-1] == text {
			continue
		}
		out = append(out, text)
	}

	return strings.Join(out, "\n")
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
