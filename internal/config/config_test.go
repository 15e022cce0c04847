package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestLoadValidConfig(t *testing.T) {
	path := writeConfig(t, `
email: dev@example.com
level: core
github:
  username: octocat
  token: ghp_test
ai:
  provider: openai
  api_key: sk-test
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Email != "dev@example.com" {
		t.Errorf("email = %q", cfg.Email)
	}
	if cfg.GitHub.Username != "octocat" {
		t.Errorf("github username = %q", cfg.GitHub.Username)
	}
	if cfg.GitHubToken() != "ghp_test" {
		t.Errorf("token = %q", cfg.GitHubToken())
	}
	if !cfg.AIEnabled() || cfg.AIKey() != "sk-test" {
		t.Errorf("AI should be enabled with sk-test, got enabled=%v key=%q", cfg.AIEnabled(), cfg.AIKey())
	}
}

func TestLoadRejectsUnknownProvider(t *testing.T) {
	path := writeConfig(t, `
ai:
  provider: bard
`)
	if _, err := Load(path); err == nil {
		t.Error("expected error for unknown provider")
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope", "config.yaml")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Level != "core" {
		t.Errorf("default level = %q, want core", cfg.Level)
	}
	// First run should have written the defaults out
	if _, err := os.Stat(path); err != nil {
		t.Errorf("defaults not written to %s: %v", path, err)
	}
}

func TestEnvFallbacks(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "env-token")
	t.Setenv("REFLECT_AI_KEY", "env-key")
	t.Setenv("REFLECT_SYNC_DSN", "postgres://env")

	cfg := &Config{AI: &AIConfig{Provider: "claude"}}
	if cfg.GitHubToken() != "env-token" {
		t.Errorf("token = %q, want env-token", cfg.GitHubToken())
	}
	if cfg.AIKey() != "env-key" {
		t.Errorf("ai key = %q, want env-key", cfg.AIKey())
	}
	if cfg.SyncDSN() != "postgres://env" {
		t.Errorf("sync dsn = %q, want postgres://env", cfg.SyncDSN())
	}

	// Config values win over environment
	cfg.GitHub.Token = "file-token"
	if cfg.GitHubToken() != "file-token" {
		t.Errorf("config token should win, got %q", cfg.GitHubToken())
	}
}

func TestSyncDisabledByDefault(t *testing.T) {
	cfg := &Config{}
	if cfg.SyncDSN() != "" {
		t.Errorf("expected empty sync DSN, got %q", cfg.SyncDSN())
	}
}
