package config

import (
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"ANTHROPIC_API_KEY", "CLAUDE_MODEL", "TRANSCRIPT_LANGUAGE",
		"OBSIDIAN_VAULT_PATH", "OAUTH_DIR", "YTDLP_PATH", "YTDLP_TIMEOUT",
		"YOUTUBE_COOKIES_FILE", "SUBSCRIPTION_INCLUDE_KEYWORDS",
		"SUBSCRIPTION_EXCLUDE_KEYWORDS", "SUBSCRIPTION_EXCLUDE_CHANNELS",
		"SUBSCRIPTION_FILTER_PROMPT", "SUBSCRIPTION_EXCLUDE_PROMPT",
		"SUBSCRIPTION_WINDOW_DAYS", "SUBSCRIPTION_MAX_VIDEOS",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir()) // no .env here

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Model != DefaultModel {
		t.Errorf("Model = %q", cfg.Model)
	}
	if cfg.Language != DefaultLanguage {
		t.Errorf("Language = %q", cfg.Language)
	}
	if cfg.YtdlpPath != "yt-dlp" {
		t.Errorf("YtdlpPath = %q", cfg.YtdlpPath)
	}
	if cfg.YtdlpTimeout != 60*time.Second {
		t.Errorf("YtdlpTimeout = %v", cfg.YtdlpTimeout)
	}
	if filepath.Base(cfg.OAuthDir) != ".ytvault" {
		t.Errorf("OAuthDir = %q", cfg.OAuthDir)
	}
	if len(cfg.IncludeKeywords) != 0 {
		t.Errorf("IncludeKeywords = %v", cfg.IncludeKeywords)
	}
	if cfg.WindowDays != DefaultWindowDays {
		t.Errorf("WindowDays = %d", cfg.WindowDays)
	}
	if cfg.MaxVideos != DefaultMaxVideos {
		t.Errorf("MaxVideos = %d", cfg.MaxVideos)
	}
}

func TestLoadFromEnv(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())
	t.Setenv("ANTHROPIC_API_KEY", "sk-test")
	t.Setenv("CLAUDE_MODEL", "some-model")
	t.Setenv("SUBSCRIPTION_INCLUDE_KEYWORDS", "ai, golang ,, testing")
	t.Setenv("YTDLP_TIMEOUT", "120")
	t.Setenv("OAUTH_DIR", "/tmp/oauth")
	t.Setenv("SUBSCRIPTION_WINDOW_DAYS", "3")
	t.Setenv("SUBSCRIPTION_MAX_VIDEOS", "25")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.AnthropicAPIKey != "sk-test" {
		t.Errorf("AnthropicAPIKey = %q", cfg.AnthropicAPIKey)
	}
	if cfg.Model != "some-model" {
		t.Errorf("Model = %q", cfg.Model)
	}
	want := []string{"ai", "golang", "testing"}
	if len(cfg.IncludeKeywords) != len(want) {
		t.Fatalf("IncludeKeywords = %v", cfg.IncludeKeywords)
	}
	for i := range want {
		if cfg.IncludeKeywords[i] != want[i] {
			t.Errorf("IncludeKeywords[%d] = %q", i, cfg.IncludeKeywords[i])
		}
	}
	if cfg.YtdlpTimeout != 2*time.Minute {
		t.Errorf("YtdlpTimeout = %v", cfg.YtdlpTimeout)
	}
	if cfg.OAuthDir != "/tmp/oauth" {
		t.Errorf("OAuthDir = %q", cfg.OAuthDir)
	}
	if cfg.WindowDays != 3 {
		t.Errorf("WindowDays = %d", cfg.WindowDays)
	}
	if cfg.MaxVideos != 25 {
		t.Errorf("MaxVideos = %d", cfg.MaxVideos)
	}
}

func TestLoadBadTimeout(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())
	t.Setenv("YTDLP_TIMEOUT", "soon")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for non-numeric YTDLP_TIMEOUT")
	}
}

func TestLoadBadSubscriptionLimits(t *testing.T) {
	for _, key := range []string{"SUBSCRIPTION_WINDOW_DAYS", "SUBSCRIPTION_MAX_VIDEOS"} {
		t.Run(key, func(t *testing.T) {
			clearEnv(t)
			t.Chdir(t.TempDir())
			t.Setenv(key, "-1")
			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %s=-1", key)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	cfg := &Config{}
	if err := cfg.Validate(); !errors.Is(err, ErrNoAPIKey) {
		t.Fatalf("err = %v, want ErrNoAPIKey", err)
	}

	cfg.AnthropicAPIKey = "sk-test"
	cfg.VaultRoot = filepath.Join(t.TempDir(), "missing")
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing vault path")
	}

	cfg.VaultRoot = t.TempDir()
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}
}

func TestSplitCSV(t *testing.T) {
	if got := splitCSV(""); got != nil {
		t.Errorf("splitCSV(\"\") = %v", got)
	}
	got := splitCSV(" a ,b,, c ")
	if len(got) != 3 || got[0] != "a" || got[1] != "b" || got[2] != "c" {
		t.Errorf("splitCSV = %v", got)
	}
}
