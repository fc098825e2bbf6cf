// Package config loads and saves the engine configuration from a TOML file
// in the user's config directory.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration.
type Config struct {
	// Play-event feed configuration
	Feed FeedConfig `toml:"feed"`

	// Knowledge store configuration
	Knowledge KnowledgeConfig `toml:"knowledge"`

	// Application configuration
	App AppConfig `toml:"app"`
}

// FeedConfig contains play-event feed monitoring settings.
type FeedConfig struct {
	FilePath     string `toml:"file_path"`     // Path to the JSONL play-event feed
	PollInterval string `toml:"poll_interval"` // Backup polling interval (e.g., "500ms")
	UseFsnotify  bool   `toml:"use_fsnotify"`  // Use file system events
}

// KnowledgeConfig contains knowledge persistence settings.
type KnowledgeConfig struct {
	Backend   string `toml:"backend"`    // Persistence backend: sqlite, file, or memory
	DBPath    string `toml:"db_path"`    // SQLite database path (sqlite backend)
	FilePath  string `toml:"file_path"`  // Snapshot file path (file backend)
	Encrypt   bool   `toml:"encrypt"`    // Encrypt the file backend snapshot
	PruneDays int    `toml:"prune_days"` // Entries older than this are evicted
}

// AppConfig contains general application settings.
type AppConfig struct {
	DebugMode bool `toml:"debug_mode"` // Enable debug logging
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Feed: FeedConfig{
			FilePath:     "",
			PollInterval: "500ms",
			UseFsnotify:  true,
		},
		Knowledge: KnowledgeConfig{
			Backend:   "sqlite",
			DBPath:    "",
			FilePath:  "",
			Encrypt:   false,
			PruneDays: 30,
		},
		App: AppConfig{
			DebugMode: false,
		},
	}
}

// configPath returns the path to the configuration file.
func configPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}

	configDir := filepath.Join(homeDir, ".duel-insight")
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return "", fmt.Errorf("create config directory: %w", err)
	}

	return filepath.Join(configDir, "config.toml"), nil
}

// Load loads the configuration from disk. Returns default config if the
// file doesn't exist.
func Load() (*Config, error) {
	path, err := configPath()
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	return &config, nil
}

// Save saves the configuration to disk.
func (c *Config) Save() error {
	path, err := configPath()
	if err != nil {
		return err
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Validate validates the configuration values.
func (c *Config) Validate() error {
	if _, err := time.ParseDuration(c.Feed.PollInterval); err != nil {
		return fmt.Errorf("invalid poll interval %q: %w", c.Feed.PollInterval, err)
	}

	switch c.Knowledge.Backend {
	case "sqlite", "file", "memory":
	default:
		return fmt.Errorf("unknown knowledge backend %q", c.Knowledge.Backend)
	}

	if c.Knowledge.PruneDays < 0 {
		return fmt.Errorf("prune days cannot be negative: %d", c.Knowledge.PruneDays)
	}

	return nil
}

// FeedPollInterval returns the feed poll interval as a duration.
func (c *Config) FeedPollInterval() (time.Duration, error) {
	return time.ParseDuration(c.Feed.PollInterval)
}
