package config

import (
	"os"
	"path/filepath"
	"testing"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{configPathEnv, openAIAPIKeyEnv, databaseDSNEnv, redisAddrEnv, realtimeURLEnv} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg := Load()
	if cfg.Realtime.Model != "gpt-realtime" {
		t.Fatalf("expected the default realtime model, got %q", cfg.Realtime.Model)
	}
	if cfg.Chat.Model != "gpt-4o-mini" {
		t.Fatalf("expected the default chat model, got %q", cfg.Chat.Model)
	}
	if len(cfg.Feeds) != 6 {
		t.Fatalf("expected six default feeds, got %d", len(cfg.Feeds))
	}
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "voyce.yaml")
	raw := []byte("realtime:\n  model: gpt-realtime-mini\nchat:\n  temperature: 0.2\nfeeds:\n  - source: Clarín\n    url: https://example.com/rss\n")
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatalf("expected fixture write to succeed, got %v", err)
	}
	t.Setenv(configPathEnv, path)

	cfg := Load()
	if cfg.Realtime.Model != "gpt-realtime-mini" {
		t.Fatalf("expected the file model, got %q", cfg.Realtime.Model)
	}
	if cfg.Chat.Temperature != 0.2 {
		t.Fatalf("expected the file temperature, got %v", cfg.Chat.Temperature)
	}
	if len(cfg.Feeds) != 1 || cfg.Feeds[0].Source != "Clarín" {
		t.Fatalf("expected the file feed list to replace defaults, got %v", cfg.Feeds)
	}
	// Untouched sections keep their defaults.
	if cfg.Realtime.BaseURL != "https://api.openai.com" {
		t.Fatalf("expected the default base url, got %q", cfg.Realtime.BaseURL)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "voyce.yaml")
	raw := []byte("realtime:\n  apiKey: from-file\ndatabase:\n  dsn: postgres://file\n")
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatalf("expected fixture write to succeed, got %v", err)
	}
	t.Setenv(configPathEnv, path)
	t.Setenv(openAIAPIKeyEnv, "from-env")
	t.Setenv(databaseDSNEnv, "postgres://env")
	t.Setenv(realtimeURLEnv, "wss://proxy.example/v1/realtime")

	cfg := Load()
	if cfg.Realtime.APIKey != "from-env" {
		t.Fatalf("expected the env key to win, got %q", cfg.Realtime.APIKey)
	}
	if cfg.Database.DSN != "postgres://env" {
		t.Fatalf("expected the env dsn to win, got %q", cfg.Database.DSN)
	}
	if cfg.Realtime.RealtimeURL != "wss://proxy.example/v1/realtime" {
		t.Fatalf("expected the env realtime url, got %q", cfg.Realtime.RealtimeURL)
	}
}

func TestLoadUnreadableFileFallsBack(t *testing.T) {
	clearEnv(t)
	t.Setenv(configPathEnv, filepath.Join(t.TempDir(), "missing.yaml"))

	cfg := Load()
	if cfg.Realtime.Model != "gpt-realtime" {
		t.Fatalf("expected defaults on a missing file, got %q", cfg.Realtime.Model)
	}
	if len(cfg.Feeds) != 6 {
		t.Fatalf("expected default feeds on a missing file, got %d", len(cfg.Feeds))
	}
}
