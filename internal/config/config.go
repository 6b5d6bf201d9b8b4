// Package config loads fieldops configuration from a YAML file with
// environment overrides. A missing config file is not an error: defaults are
// usable out of the box, and credentials normally arrive through the
// environment (optionally via a .env file).
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all fieldops configuration.
type Config struct {
	// StateDir is where the local store keeps its collection snapshots and
	// the operation journal.
	StateDir string `yaml:"state_dir"`

	Remote  RemoteConfig  `yaml:"remote"`
	Sync    SyncConfig    `yaml:"sync"`
	Redis   RedisConfig   `yaml:"redis"`
	Summary SummaryConfig `yaml:"summary"`
}

// RemoteConfig points at the authoritative activity store.
type RemoteConfig struct {
	BaseURL string `yaml:"base_url"`
	Timeout string `yaml:"timeout"`
}

// TimeoutDuration parses the configured timeout, falling back to 30s for a
// missing or malformed value.
func (r RemoteConfig) TimeoutDuration() time.Duration {
	d, err := time.ParseDuration(r.Timeout)
	if err != nil || d <= 0 {
		return 30 * time.Second
	}
	return d
}

// SyncConfig tunes the sync engine.
type SyncConfig struct {
	// FallbackAssignee receives admin-authored activities that name no
	// explicit assignee.
	FallbackAssignee string `yaml:"fallback_assignee"`
	// FallbackAdmin is the default assignee for field-promoter-authored
	// activities.
	FallbackAdmin string `yaml:"fallback_admin"`
	// RefreshSpec is the cron spec for background refresh in watch mode.
	RefreshSpec string `yaml:"refresh_spec"`
}

// RedisConfig enables the optional Redis change-broadcast transport. An empty
// Addr disables it; the fsnotify watcher alone then covers cross-process
// convergence on one machine.
type RedisConfig struct {
	Addr    string `yaml:"addr"`
	Channel string `yaml:"channel"`
}

// SummaryConfig configures the text-generation collaborator.
type SummaryConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"`
}

// Default returns the built-in configuration.
func Default() Config {
	home, _ := os.UserHomeDir()
	return Config{
		StateDir: filepath.Join(home, ".fieldops"),
		Remote: RemoteConfig{
			BaseURL: "http://localhost:8787",
			Timeout: "30s",
		},
		Sync: SyncConfig{
			FallbackAssignee: "coordinator",
			FallbackAdmin:    "admin",
			RefreshSpec:      "@every 5m",
		},
		Redis: RedisConfig{
			Channel: "fieldops:changes",
		},
		Summary: SummaryConfig{
			Model: "gemini-2.5-flash",
		},
	}
}

// Load reads path (if it exists) over the defaults, then applies environment
// overrides. A .env file in the working directory is honored when present.
func Load(path string) (Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
			}
		case os.IsNotExist(err):
			// Defaults + env only.
		default:
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("FIELDOPS_STATE_DIR"); v != "" {
		cfg.StateDir = v
	}
	if v := os.Getenv("FIELDOPS_REMOTE_URL"); v != "" {
		cfg.Remote.BaseURL = v
	}
	if v := os.Getenv("FIELDOPS_REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		cfg.Summary.APIKey = v
	}
}
