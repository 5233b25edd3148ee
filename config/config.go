// Package config loads runtime configuration from a .env file and the
// environment. The resulting struct is handed to the components explicitly,
// nothing reads the environment after startup.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Defaults applied when the environment leaves a knob unset.
const (
	DefaultModel      = "claude-sonnet-4-5-20250929"
	DefaultLanguage   = "en"
	defaultOAuthDir   = ".ytvault"
	defaultYtdlpBin   = "yt-dlp"
	defaultYtdlpWait  = 60 * time.Second
	DefaultMaxVideos  = 50
	DefaultWindowDays = 7
)

// ErrNoAPIKey indicates ANTHROPIC_API_KEY is unset.
var ErrNoAPIKey = errors.New("config: ANTHROPIC_API_KEY is not set")

// Config is the full runtime configuration.
type Config struct {
	// AnthropicAPIKey authenticates the summarizer and LLM filter.
	AnthropicAPIKey string
	// Model is the model id used for summaries and filtering.
	Model string
	// Language is the preferred transcript language code.
	Language string

	// VaultRoot is the Obsidian vault directory. Empty means the current
	// working directory.
	VaultRoot string
	// OAuthDir holds credentials.json and token.json.
	OAuthDir string

	// YtdlpPath is the yt-dlp executable.
	YtdlpPath string
	// YtdlpTimeout bounds each yt-dlp invocation.
	YtdlpTimeout time.Duration
	// CookiesFile is an optional Netscape cookies file for yt-dlp.
	CookiesFile string

	// Subscription-run defaults, overridable per invocation by flags.
	IncludeKeywords []string
	ExcludeKeywords []string
	ExcludeChannels []string
	FilterPrompt    string
	ExcludePrompt   string
	WindowDays      int
	MaxVideos       int
}

// Load reads .env (when present) and the environment into a Config.
// A missing .env file is not an error.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config: load .env: %w", err)
	}

	cfg := &Config{
		AnthropicAPIKey: os.Getenv("ANTHROPIC_API_KEY"),
		Model:           envOr("CLAUDE_MODEL", DefaultModel),
		Language:        envOr("TRANSCRIPT_LANGUAGE", DefaultLanguage),
		VaultRoot:       os.Getenv("OBSIDIAN_VAULT_PATH"),
		OAuthDir:        os.Getenv("OAUTH_DIR"),
		YtdlpPath:       envOr("YTDLP_PATH", defaultYtdlpBin),
		CookiesFile:     os.Getenv("YOUTUBE_COOKIES_FILE"),
		IncludeKeywords: splitCSV(os.Getenv("SUBSCRIPTION_INCLUDE_KEYWORDS")),
		ExcludeKeywords: splitCSV(os.Getenv("SUBSCRIPTION_EXCLUDE_KEYWORDS")),
		ExcludeChannels: splitCSV(os.Getenv("SUBSCRIPTION_EXCLUDE_CHANNELS")),
		FilterPrompt:    os.Getenv("SUBSCRIPTION_FILTER_PROMPT"),
		ExcludePrompt:   os.Getenv("SUBSCRIPTION_EXCLUDE_PROMPT"),
		YtdlpTimeout:    defaultYtdlpWait,
		WindowDays:      DefaultWindowDays,
		MaxVideos:       DefaultMaxVideos,
	}

	if raw := os.Getenv("YTDLP_TIMEOUT"); raw != "" {
		seconds, err := strconv.Atoi(raw)
		if err != nil || seconds <= 0 {
			return nil, fmt.Errorf("config: invalid YTDLP_TIMEOUT %q", raw)
		}
		cfg.YtdlpTimeout = time.Duration(seconds) * time.Second
	}

	if raw := os.Getenv("SUBSCRIPTION_WINDOW_DAYS"); raw != "" {
		days, err := strconv.Atoi(raw)
		if err != nil || days <= 0 {
			return nil, fmt.Errorf("config: invalid SUBSCRIPTION_WINDOW_DAYS %q", raw)
		}
		cfg.WindowDays = days
	}

	if raw := os.Getenv("SUBSCRIPTION_MAX_VIDEOS"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("config: invalid SUBSCRIPTION_MAX_VIDEOS %q", raw)
		}
		cfg.MaxVideos = n
	}

	if cfg.OAuthDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("config: resolve home dir: %w", err)
		}
		cfg.OAuthDir = filepath.Join(home, defaultOAuthDir)
	}

	return cfg, nil
}

// Validate checks the pieces every command needs. The vault path must exist
// when set; an unset path falls back to the working directory.
func (c *Config) Validate() error {
	if c.AnthropicAPIKey == "" {
		return ErrNoAPIKey
	}
	if c.VaultRoot != "" {
		info, err := os.Stat(c.VaultRoot)
		if err != nil {
			return fmt.Errorf("config: vault path %s: %w", c.VaultRoot, err)
		}
		if !info.IsDir() {
			return fmt.Errorf("config: vault path %s is not a directory", c.VaultRoot)
		}
	}
	return nil
}

// ResolveVaultRoot returns the configured vault root or the working
// directory when none is set.
func (c *Config) ResolveVaultRoot() (string, error) {
	if c.VaultRoot != "" {
		return c.VaultRoot, nil
	}
	return os.Getwd()
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// splitCSV splits a comma-separated list, trimming whitespace and dropping
// empty entries.
func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
