// Package subscriptions orchestrates a batch run over the authenticated
// account's subscription feed: list recent uploads, filter them down, then
// fetch, summarize, and cache each survivor.
package subscriptions

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"ytvault/filter"
	"ytvault/vault"
	"ytvault/youtube"
)

// shortsMaxDuration is the cutoff below which a video is treated as a
// YouTube Short and skipped.
const shortsMaxDuration = 60 * time.Second

// Lister is the slice of the Data API the run needs.
type Lister interface {
	SubscribedChannels(ctx context.Context) ([]youtube.Channel, error)
	RecentVideos(ctx context.Context, channelID string, since time.Time) ([]youtube.Video, error)
	VideoDurations(ctx context.Context, videoIDs []string) (map[string]time.Duration, error)
}

// TranscriptFetcher fetches one video's transcript.
type TranscriptFetcher interface {
	Fetch(ctx context.Context, videoID, language string) (*youtube.Transcript, error)
}

// Summarizer produces a sectioned summary from transcript text.
type Summarizer interface {
	Summarize(ctx context.Context, transcript string) (vault.Summary, error)
}

// Cache is the slice of the vault store the run needs.
type Cache interface {
	Contains(videoID string) bool
	Save(doc *vault.Document) error
	EnsureReviewNotes() error
}

// Options configures a run.
type Options struct {
	// Days is the lookback window for recent uploads.
	Days int
	// IncludeKeywords and ExcludeKeywords drive the keyword filter stage.
	IncludeKeywords []string
	ExcludeKeywords []string
	// ExcludeChannels drops whole channels by display name before any
	// videos are listed. Matching is case-insensitive.
	ExcludeChannels []string
	// Criteria drives the LLM filter stage. Empty criteria skip it.
	Criteria filter.Criteria
	// Language is the preferred transcript language.
	Language string
	// DryRun lists the videos that would be processed and stops.
	DryRun bool
	// MaxVideos caps how many filtered videos are processed. Zero or
	// negative means no cap.
	MaxVideos int
}

// Report is the outcome of a run.
type Report struct {
	// RunID correlates the report with the run's log lines.
	RunID string
	// Candidates is how many videos survived filtering, before the cap.
	Candidates int
	// Processed is how many videos were summarized and cached.
	Processed int
	// SkippedCached is how many videos were already in the vault.
	SkippedCached int
	// NoTranscript counts videos with no subtitles at all.
	NoTranscript int
	// Errors counts per-video failures other than missing transcripts.
	Errors int
}

// Runner executes subscription runs against its collaborators.
type Runner struct {
	lister      Lister
	transcripts TranscriptFetcher
	summarizer  Summarizer
	cache       Cache
	pipeline    *filter.Pipeline
	logger      *slog.Logger
	now         func() time.Time
}

// NewRunner wires a runner. pipeline handles both filter stages.
func NewRunner(lister Lister, transcripts TranscriptFetcher, summarizer Summarizer, cache Cache, pipeline *filter.Pipeline, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		lister:      lister,
		transcripts: transcripts,
		summarizer:  summarizer,
		cache:       cache,
		pipeline:    pipeline,
		logger:      logger,
		now:         time.Now,
	}
}

// Run executes one subscription pass. Setup failures (listing subscriptions)
// abort with an error; per-channel and per-video failures become warnings
// and report counters.
func (r *Runner) Run(ctx context.Context, opts Options) (*Report, error) {
	report := &Report{RunID: uuid.NewString()}
	logger := r.logger.With("run_id", report.RunID)

	channels, err := r.lister.SubscribedChannels(ctx)
	if err != nil {
		return nil, err
	}
	logger.Info("listed subscriptions", "channels", len(channels))

	channels = excludeChannels(channels, opts.ExcludeChannels, logger)

	since := r.now().UTC().AddDate(0, 0, -opts.Days)
	videos := r.listRecent(ctx, channels, since, logger)
	logger.Info("listed recent uploads", "videos", len(videos), "days", opts.Days)

	videos = dedupe(videos)
	videos = r.dropCached(videos, report, logger)
	videos = r.dropShorts(ctx, videos, logger)

	videos, err = r.pipeline.Run(ctx, videos, opts.IncludeKeywords, opts.ExcludeKeywords, opts.Criteria)
	if err != nil {
		return nil, err
	}
	report.Candidates = len(videos)

	if opts.MaxVideos > 0 && len(videos) > opts.MaxVideos {
		logger.Info("capping run", "candidates", len(videos), "max", opts.MaxVideos)
		videos = videos[:opts.MaxVideos]
	}

	if opts.DryRun {
		for _, v := range videos {
			logger.Info("would process",
				"channel", v.Channel, "title", v.Title,
				"published", v.Published.Format("2006-01-02"), "video_id", v.ID)
		}
		return report, nil
	}

	if err := r.cache.EnsureReviewNotes(); err != nil {
		logger.Warn("review notes", "error", err)
	}

	for i, v := range videos {
		logger.Info("processing video",
			"n", i+1, "of", len(videos), "channel", v.Channel, "title", v.Title)
		r.processVideo(ctx, v, opts.Language, report, logger)
		if ctx.Err() != nil {
			return report, ctx.Err()
		}
	}

	logger.Info("run complete",
		"processed", report.Processed, "candidates", report.Candidates,
		"skipped_cached", report.SkippedCached, "no_transcript", report.NoTranscript,
		"errors", report.Errors)
	return report, nil
}

// processVideo handles one video end to end. Failures are isolated: they
// log, bump a counter, and leave the rest of the batch alone.
func (r *Runner) processVideo(ctx context.Context, v youtube.Video, language string, report *Report, logger *slog.Logger) {
	transcript, err := r.transcripts.Fetch(ctx, v.ID, language)
	if err != nil {
		if errors.Is(err, youtube.ErrNoTranscript) {
			logger.Warn("no transcript", "video_id", v.ID, "title", v.Title)
			report.NoTranscript++
		} else {
			logger.Warn("transcript fetch failed", "video_id", v.ID, "error", err)
			report.Errors++
		}
		return
	}

	summary, err := r.summarizer.Summarize(ctx, transcript.FullText)
	if err != nil {
		logger.Warn("summarize failed", "video_id", v.ID, "error", err)
		report.Errors++
		return
	}

	// Raw title and channel go into the frontmatter; the store sanitizes
	// them for the file path itself.
	doc := &vault.Document{
		VideoID:    v.ID,
		Title:      v.Title,
		Channel:    v.Channel,
		Summary:    summary,
		Transcript: transcript.FullText,
	}
	if err := r.cache.Save(doc); err != nil {
		logger.Warn("cache write failed", "video_id", v.ID, "error", err)
		report.Errors++
		return
	}

	report.Processed++
}

func (r *Runner) listRecent(ctx context.Context, channels []youtube.Channel, since time.Time, logger *slog.Logger) []youtube.Video {
	var videos []youtube.Video
	for _, ch := range channels {
		recent, err := r.lister.RecentVideos(ctx, ch.ID, since)
		if err != nil {
			// One broken channel must not sink the batch.
			logger.Warn("listing channel failed", "channel", ch.Title, "error", err)
			continue
		}
		videos = append(videos, recent...)
	}
	return videos
}

// dropCached removes videos that already have a vault document.
func (r *Runner) dropCached(videos []youtube.Video, report *Report, logger *slog.Logger) []youtube.Video {
	fresh := videos[:0]
	for _, v := range videos {
		if r.cache.Contains(v.ID) {
			report.SkippedCached++
			continue
		}
		fresh = append(fresh, v)
	}
	if report.SkippedCached > 0 {
		logger.Info("skipped cached videos", "count", report.SkippedCached)
	}
	return fresh
}

// dropShorts removes videos at or under the Shorts cutoff. A failed
// durations call leaves the list untouched: worse to lose real videos than
// to let a Short through.
func (r *Runner) dropShorts(ctx context.Context, videos []youtube.Video, logger *slog.Logger) []youtube.Video {
	if len(videos) == 0 {
		return videos
	}
	ids := make([]string, len(videos))
	for i, v := range videos {
		ids[i] = v.ID
	}

	durations, err := r.lister.VideoDurations(ctx, ids)
	if err != nil {
		logger.Warn("duration lookup failed, keeping all videos", "error", err)
		return videos
	}

	kept := videos[:0]
	for _, v := range videos {
		if d, ok := durations[v.ID]; ok && d <= shortsMaxDuration {
			logger.Info("skipping short",
				"channel", v.Channel, "title", v.Title, "duration", d)
			continue
		}
		kept = append(kept, v)
	}
	return kept
}

// excludeChannels drops channels whose display name is in the exclusion
// list. Names that match nothing are reported, they are usually typos.
func excludeChannels(channels []youtube.Channel, exclude []string, logger *slog.Logger) []youtube.Channel {
	if len(exclude) == 0 {
		return channels
	}
	excluded := make(map[string]bool, len(exclude))
	for _, name := range exclude {
		excluded[strings.ToLower(name)] = false
	}

	kept := channels[:0]
	for _, ch := range channels {
		key := strings.ToLower(ch.Title)
		if _, ok := excluded[key]; ok {
			excluded[key] = true
			logger.Info("excluding channel", "channel", ch.Title)
			continue
		}
		kept = append(kept, ch)
	}
	for _, name := range exclude {
		if !excluded[strings.ToLower(name)] {
			logger.Warn("exclude channel not found in subscriptions", "channel", name)
		}
	}
	return kept
}

// dedupe removes duplicate video ids, keeping first occurrence order.
func dedupe(videos []youtube.Video) []youtube.Video {
	seen := make(map[string]bool, len(videos))
	out := videos[:0]
	for _, v := range videos {
		if seen[v.ID] {
			continue
		}
		seen[v.ID] = true
		out = append(out, v)
	}
	return out
}
