package config

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

//go:embed default_config.yaml
var defaultConfigFS embed.FS

// GitHubConfig identifies the account whose merged PRs are analyzed.
type GitHubConfig struct {
	Username string `yaml:"username"`
	Token    string `yaml:"token"`
}

// AIConfig selects the generative-text provider.
type AIConfig struct {
	Provider string `yaml:"provider"` // "claude" or "openai"
	APIKey   string `yaml:"api_key"`
	Model    string `yaml:"model"`
}

// SyncConfig enables the optional durable cross-device store.
type SyncConfig struct {
	PostgresDSN string `yaml:"postgres_dsn"`
}

type Config struct {
	Email  string       `yaml:"email"`
	Level  string       `yaml:"level"`
	GitHub GitHubConfig `yaml:"github"`
	AI     *AIConfig    `yaml:"ai,omitempty"`
	Sync   *SyncConfig  `yaml:"sync,omitempty"`
}

// GitHubToken returns the resolved PAT (config or GITHUB_TOKEN env var).
func (c *Config) GitHubToken() string {
	if c.GitHub.Token != "" {
		return c.GitHub.Token
	}
	return os.Getenv("GITHUB_TOKEN")
}

// AIEnabled returns true if AI is configured with a valid API key.
func (c *Config) AIEnabled() bool {
	return c.AI != nil && c.AIKey() != ""
}

// AIKey returns the resolved API key (config or env var).
func (c *Config) AIKey() string {
	if c.AI != nil && c.AI.APIKey != "" {
		return c.AI.APIKey
	}
	return os.Getenv("REFLECT_AI_KEY")
}

// SyncDSN returns the durable-store DSN (config or env var), or "" when
// sync is disabled.
func (c *Config) SyncDSN() string {
	if c.Sync != nil && c.Sync.PostgresDSN != "" {
		return c.Sync.PostgresDSN
	}
	return os.Getenv("REFLECT_SYNC_DSN")
}

func DefaultConfigPath() string {
	return filepath.Join(xdg.ConfigHome, "self-reflect", "config.yaml")
}

func CachePath() string {
	return filepath.Join(xdg.CacheHome, "self-reflect", "cache.db")
}

func StorePath() string {
	return filepath.Join(xdg.DataHome, "self-reflect", "assessments.db")
}

func loadDefaults() (*Config, error) {
	data, err := defaultConfigFS.ReadFile("default_config.yaml")
	if err != nil {
		return nil, fmt.Errorf("reading embedded config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded config: %w", err)
	}
	return &cfg, nil
}

func Load(path string) (*Config, error) {
	defaults, err := loadDefaults()
	if err != nil {
		return nil, err
	}

	if path == "" {
		path = DefaultConfigPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Write defaults to config path on first run
			if err := writeDefaults(path); err != nil {
				// Non-fatal: just use embedded defaults
				return defaults, nil
			}
			return defaults, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func writeDefaults(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, _ := defaultConfigFS.ReadFile("default_config.yaml")
	return os.WriteFile(path, data, 0o644)
}

func validate(cfg *Config) error {
	if cfg.AI != nil {
		switch cfg.AI.Provider {
		case "claude", "openai":
		default:
			return fmt.Errorf("ai: unknown provider %q (valid: claude, openai)", cfg.AI.Provider)
		}
	}
	return nil
}
