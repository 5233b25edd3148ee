package main

import (
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"ytvault"
	"ytvault/config"
	"ytvault/filter"
	"ytvault/subscriptions"
)

func setupLogging(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}

func newSummarizeCommand() *cobra.Command {
	var lang, model string

	cmd := &cobra.Command{
		Use:   "summarize <url-or-video-id>",
		Short: "Summarize a single YouTube video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(lang, model)
			if err != nil {
				return err
			}
			return ytvault.SummarizeVideo(cmd.Context(), cfg, slog.Default(), args[0], os.Stdout)
		},
	}
	cmd.Flags().StringVar(&lang, "lang", "", "Transcript language code")
	cmd.Flags().StringVar(&model, "model", "", "Model id for summarization")
	return cmd
}

func newSubscriptionsCommand() *cobra.Command {
	var (
		days            int
		dryRun          bool
		includeKeywords string
		excludeKeywords string
		excludeChannels string
		filterPrompt    string
		excludePrompt   string
		maxVideos       int
		lang, model     string
	)

	cmd := &cobra.Command{
		Use:   "subscriptions",
		Short: "Process recent videos from YouTube subscriptions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(lang, model)
			if err != nil {
				return err
			}

			opts := subscriptions.Options{
				Days:            flagOrConfigInt(cmd.Flags(), "days", days, cfg.WindowDays),
				IncludeKeywords: flagOrConfigList(includeKeywords, cfg.IncludeKeywords),
				ExcludeKeywords: flagOrConfigList(excludeKeywords, cfg.ExcludeKeywords),
				ExcludeChannels: flagOrConfigList(excludeChannels, cfg.ExcludeChannels),
				Criteria: filter.Criteria{
					IncludePrompt: flagOrConfig(filterPrompt, cfg.FilterPrompt),
					ExcludePrompt: flagOrConfig(excludePrompt, cfg.ExcludePrompt),
				},
				Language:  cfg.Language,
				DryRun:    dryRun,
				MaxVideos: flagOrConfigInt(cmd.Flags(), "max-videos", maxVideos, cfg.MaxVideos),
			}

			_, err = ytvault.RunSubscriptions(cmd.Context(), cfg, slog.Default(), opts)
			return err
		},
	}

	cmd.Flags().IntVar(&days, "days", config.DefaultWindowDays, "Fetch videos from the last N days")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Preview filtered videos without processing")
	cmd.Flags().StringVar(&includeKeywords, "include-keywords", "", "Comma-separated keyword inclusion list")
	cmd.Flags().StringVar(&excludeKeywords, "exclude-keywords", "", "Comma-separated keyword exclusion list")
	cmd.Flags().StringVar(&excludeChannels, "exclude-channels", "", "Comma-separated channel names to exclude")
	cmd.Flags().StringVar(&filterPrompt, "filter-prompt", "", "Natural-language inclusion criteria for the LLM filter")
	cmd.Flags().StringVar(&excludePrompt, "exclude-prompt", "", "Natural-language exclusion criteria for the LLM filter")
	cmd.Flags().IntVar(&maxVideos, "max-videos", config.DefaultMaxVideos, "Maximum number of videos to process")
	cmd.Flags().StringVar(&lang, "lang", "", "Transcript language code")
	cmd.Flags().StringVar(&model, "model", "", "Model id for filtering and summarization")
	return cmd
}

func newAuthCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "auth",
		Short: "Run the YouTube OAuth flow and store the token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			return ytvault.Authorize(cmd.Context(), cfg)
		},
	}
}

// flagOrConfig prefers a non-empty flag value over the config default.
func flagOrConfig(flag, fallback string) string {
	if flag != "" {
		return flag
	}
	return fallback
}

// flagOrConfigInt prefers an explicitly set flag over the config value.
func flagOrConfigInt(flags *pflag.FlagSet, name string, flagValue, fallback int) int {
	if flags.Changed(name) {
		return flagValue
	}
	return fallback
}

// flagOrConfigList splits a comma-separated flag value, falling back to the
// config default when the flag is unset.
func flagOrConfigList(flag string, fallback []string) []string {
	if flag == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(flag, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
