// Package config provides configuration loading and structs for the ruslat server and client.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug   bool          `yaml:"debug"`
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	Data    DataConfig    `yaml:"data"`
	Client  ClientConfig  `yaml:"client"`
	Redis   RedisConfig   `yaml:"redis"`
	Search  SearchConfig  `yaml:"search"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host           string        `yaml:"host"`
	Port           int           `yaml:"port"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	// RateLimit is the allowed requests per second per client address; 0 disables limiting.
	RateLimit float64 `yaml:"rate_limit"`
	RateBurst int     `yaml:"rate_burst"`
}

// StorageConfig holds the database path.
type StorageConfig struct {
	DatabasePath string `yaml:"database_path"`
}

// DataConfig names the users file imported at startup.
type DataConfig struct {
	UsersFile string `yaml:"users_file"`
	// Watch reimports UsersFile whenever it changes.
	Watch *bool `yaml:"watch"`
}

// WatchOrDefault returns whether to watch the users file; defaults to true when unset.
func (d *DataConfig) WatchOrDefault() bool {
	if d.Watch != nil {
		return *d.Watch
	}
	return true
}

// ClientConfig holds settings for talking to a running server.
type ClientConfig struct {
	ServerURL string        `yaml:"server_url"`
	Timeout   time.Duration `yaml:"timeout"`
	// CacheBackend is "memory" or "redis".
	CacheBackend string        `yaml:"cache_backend"`
	CacheSize    int           `yaml:"cache_size"`
	CacheTTL     time.Duration `yaml:"cache_ttl"`
	// RateLimit caps outgoing lookups per second; 0 disables throttling.
	RateLimit float64 `yaml:"rate_limit"`
}

// RedisConfig holds Redis connection parameters for the shared cache.
type RedisConfig struct {
	Addr      string `yaml:"addr"`
	Password  string `yaml:"password"`
	DB        int    `yaml:"db"`
	Namespace string `yaml:"namespace"`
}

// SearchConfig holds matching behavior.
type SearchConfig struct {
	// HandleKeyboard applies keyboard-layout correction to page lookups.
	HandleKeyboard *bool `yaml:"handle_keyboard"`
	// Debounce delays interactive searches until typing pauses.
	Debounce time.Duration `yaml:"debounce"`
	// MinQueryLength is the shortest trimmed query sent to the server.
	MinQueryLength int `yaml:"min_query_length"`
}

// HandleKeyboardOrDefault returns whether page lookups use keyboard correction; defaults to true.
func (s *SearchConfig) HandleKeyboardOrDefault() bool {
	if s.HandleKeyboard != nil {
		return *s.HandleKeyboard
	}
	return true
}

// Load reads and parses the config file at path, expands paths, and applies defaults.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	cfg.Storage.DatabasePath = expandPath(cfg.Storage.DatabasePath, configDir)
	if cfg.Data.UsersFile != "" {
		cfg.Data.UsersFile = expandPath(cfg.Data.UsersFile, configDir)
	}

	return &cfg, nil
}

// Save writes the config to path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
