// Command ytvault summarizes YouTube videos into an Obsidian vault.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"ytvault/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := newRootCommand()
	cmd.SetArgs(normalizeArgs(os.Args[1:]))
	if err := cmd.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}

// normalizeArgs keeps the historical bare-argument invocation working:
// "ytvault <url>" runs the summarize command.
func normalizeArgs(args []string) []string {
	if len(args) == 0 {
		return args
	}
	switch args[0] {
	case "summarize", "subscriptions", "auth", "help", "completion", "-h", "--help":
		return args
	}
	return append([]string{"summarize"}, args...)
}

func newRootCommand() *cobra.Command {
	var verbose bool

	rootCmd := &cobra.Command{
		Use:           "ytvault",
		Short:         "Summarize YouTube videos into an Obsidian vault",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging(verbose)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(newSummarizeCommand())
	rootCmd.AddCommand(newSubscriptionsCommand())
	rootCmd.AddCommand(newAuthCommand())
	return rootCmd
}

// loadConfig loads and validates configuration, applying command-level
// overrides first.
func loadConfig(lang, model string) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if lang != "" {
		cfg.Language = lang
	}
	if model != "" {
		cfg.Model = model
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
