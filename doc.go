// Package ytvault summarizes YouTube videos into an Obsidian-compatible
// Markdown vault.
//
// It fetches transcripts with yt-dlp, summarizes them with the Anthropic
// API, and caches every result as a Markdown document with YAML frontmatter
// that survives hand edits in Obsidian.
//
// # Overview
//
// ytvault provides two high-level entry points:
//
//   - SummarizeVideo: summarize a single video by URL or id
//   - RunSubscriptions: batch-process recent uploads from the
//     authenticated account's subscriptions
//
// # Quick Start
//
// Summarize one video:
//
//	cfg, err := config.Load()
//	if err != nil {
//		log.Fatal(err)
//	}
//	err = ytvault.SummarizeVideo(ctx, cfg, logger, "dQw4w9WgXcQ", os.Stdout)
//
// Process the subscription feed:
//
//	report, err := ytvault.RunSubscriptions(ctx, cfg, logger, subscriptions.Options{
//		Days:      7,
//		MaxVideos: 10,
//	})
//
// # Configuration
//
// Configuration comes from a .env file and the environment, see the config
// package. The important variables:
//
//   - ANTHROPIC_API_KEY: API key for summarization and LLM filtering
//   - CLAUDE_MODEL: model id (optional)
//   - OBSIDIAN_VAULT_PATH: vault directory, defaults to the working directory
//   - OAUTH_DIR: directory for YouTube OAuth files, defaults to ~/.ytvault
//   - YTDLP_PATH: yt-dlp executable, defaults to yt-dlp from PATH
//
// # Error Handling
//
// All operations return errors that work with errors.Is and errors.As:
//
//	if errors.Is(err, ytvault.ErrNoTranscript) {
//		fmt.Println("video has no subtitles")
//	}
//
//	var terr *ytvault.TranscriptError
//	if errors.As(err, &terr) {
//		fmt.Printf("transcript for %s failed: %v\n", terr.VideoID, terr.Err)
//	}
//
// # Advanced Usage
//
// For more control, use the sub-packages directly:
//
//   - vault: the Markdown document model and store
//   - youtube: OAuth, Data API listing, transcripts, metadata
//   - filter: keyword and LLM batch filtering
//   - summarize: the summarization prompt and response parsing
//   - subscriptions: the batch orchestrator
//
// # Dependencies
//
// ytvault requires yt-dlp to be installed and available in PATH or
// specified via YTDLP_PATH.
//
// Install yt-dlp: https://github.com/yt-dlp/yt-dlp
package ytvault
