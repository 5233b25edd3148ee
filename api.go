package ytvault

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"ytvault/config"
	"ytvault/filter"
	"ytvault/llm"
	"ytvault/subscriptions"
	"ytvault/summarize"
	"ytvault/vault"
	"ytvault/youtube"
)

// SummarizeVideo runs the single-video workflow: resolve the id, reuse any
// cached transcript and summary, fetch and summarize what is missing, cache
// the result, and write the rendered summary to out.
func SummarizeVideo(ctx context.Context, cfg *config.Config, logger *slog.Logger, urlOrID string, out io.Writer) error {
	if logger == nil {
		logger = slog.Default()
	}

	videoID, err := youtube.ResolveVideoID(urlOrID)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidURL, urlOrID)
	}

	root, err := cfg.ResolveVaultRoot()
	if err != nil {
		return err
	}
	store := vault.NewStore(root, logger)

	doc, err := store.Lookup(videoID)
	if errors.Is(err, ErrNotFound) {
		doc = &vault.Document{VideoID: videoID}
	} else if err != nil {
		return err
	}

	// Title and channel decide the file's place in the vault. Fetch them
	// when missing, but a metadata failure never blocks summarization.
	if doc.Title == "" || doc.Channel == "" {
		meta := youtube.NewMetadataFetcher(cfg.YtdlpPath, cfg.CookiesFile, cfg.YtdlpTimeout, logger)
		m, err := meta.Fetch(ctx, videoID)
		if err != nil {
			logger.Warn("metadata fetch failed", "video_id", videoID, "error", err)
		} else {
			doc.Title = m.Title
			doc.Channel = m.Channel
			logger.Info("fetched metadata", "title", doc.Title, "channel", doc.Channel)
		}
	}

	if doc.Transcript == "" {
		fetcher := youtube.NewTranscriptFetcher(logger,
			youtube.WithYtdlp(cfg.YtdlpPath, cfg.YtdlpTimeout),
			youtube.WithCookiesFile(cfg.CookiesFile))
		transcript, err := fetcher.Fetch(ctx, videoID, cfg.Language)
		if err != nil {
			return err
		}
		doc.Transcript = transcript.FullText
		if err := store.Save(doc); err != nil {
			logger.Warn("caching transcript failed", "video_id", videoID, "error", err)
		} else {
			logger.Info("cached transcript", "video_id", videoID, "chars", len(doc.Transcript))
		}
	} else {
		logger.Info("loaded transcript from cache", "video_id", videoID)
	}

	if doc.Summary.Empty() {
		completer := llm.NewClient(cfg.AnthropicAPIKey, cfg.Model,
			llm.WithSystemPrompt(summarize.SystemPrompt),
			llm.WithRequestsPerMinute(llm.DefaultRequestsPerMinute))
		summary, err := summarize.Transcript(ctx, completer, doc.Transcript)
		if err != nil {
			return err
		}
		doc.Summary = summary
		if err := store.Save(doc); err != nil {
			logger.Warn("caching summary failed", "video_id", videoID, "error", err)
		}
	} else {
		logger.Info("loaded summary from cache", "video_id", videoID)
	}

	renderSummary(out, doc.Summary)
	return nil
}

// RunSubscriptions wires the collaborators and executes one batch run over
// the subscription feed.
func RunSubscriptions(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts subscriptions.Options) (*subscriptions.Report, error) {
	if logger == nil {
		logger = slog.Default()
	}

	auth := youtube.NewAuthenticator(cfg.OAuthDir)
	ts, err := auth.TokenSource(ctx)
	if err != nil {
		return nil, err
	}
	api, err := youtube.NewAPIClient(ctx, ts, logger)
	if err != nil {
		return nil, err
	}

	root, err := cfg.ResolveVaultRoot()
	if err != nil {
		return nil, err
	}
	store := vault.NewStore(root, logger)

	fetcher := youtube.NewTranscriptFetcher(logger,
		youtube.WithYtdlp(cfg.YtdlpPath, cfg.YtdlpTimeout),
		youtube.WithCookiesFile(cfg.CookiesFile))

	filterClient := llm.NewClient(cfg.AnthropicAPIKey, cfg.Model,
		llm.WithRequestsPerMinute(llm.DefaultRequestsPerMinute))
	summaryClient := llm.NewClient(cfg.AnthropicAPIKey, cfg.Model,
		llm.WithSystemPrompt(summarize.SystemPrompt),
		llm.WithRequestsPerMinute(llm.DefaultRequestsPerMinute))

	runner := subscriptions.NewRunner(
		api,
		fetcher,
		llmSummarizer{completer: summaryClient},
		store,
		filter.NewPipeline(filterClient, logger),
		logger,
	)
	return runner.Run(ctx, opts)
}

// Authorize runs the interactive OAuth flow, replacing any stored token.
func Authorize(ctx context.Context, cfg *config.Config) error {
	return youtube.NewAuthenticator(cfg.OAuthDir).Authorize(ctx)
}

// llmSummarizer adapts the summarize package to the orchestrator's
// Summarizer interface.
type llmSummarizer struct {
	completer llm.Completer
}

func (s llmSummarizer) Summarize(ctx context.Context, transcript string) (vault.Summary, error) {
	return summarize.Transcript(ctx, s.completer, transcript)
}

// renderSummary writes a summary in the sectioned format the vault uses.
func renderSummary(w io.Writer, s vault.Summary) {
	rule := strings.Repeat("=", 60)
	fmt.Fprintln(w, rule)
	if s.Overview != "" {
		fmt.Fprintf(w, "SUMMARY:\n%s\n", s.Overview)
	}
	if len(s.Takeaways) > 0 {
		fmt.Fprintln(w, "\nTOP TAKEAWAYS:")
		for _, item := range s.Takeaways {
			fmt.Fprintf(w, "- %s\n", item)
		}
	}
	if s.Protocols != "" {
		fmt.Fprintf(w, "\nPROTOCOLS & INSTRUCTIONS:\n%s\n", s.Protocols)
	}
	fmt.Fprintln(w, rule)
}
