package promptline

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/mitchellh/go-homedir"

	defaults "github.com/Paranoid-AF/promptline/default"
)

// Config represents the user's promptline configuration.
type Config struct {
	Version int           `toml:"version" json:"version"`
	Suggest SuggestConfig `toml:"suggest" json:"suggest"`
	History HistoryConfig `toml:"history" json:"history"`
}

// SuggestConfig holds settings for suggestion fetching.
type SuggestConfig struct {
	MaxCandidates   int    `toml:"max_candidates" json:"max_candidates"`
	CacheTTLSeconds int    `toml:"cache_ttl_seconds" json:"cache_ttl_seconds"`
	CacheCapacity   int    `toml:"cache_capacity" json:"cache_capacity"`
	Socket          string `toml:"socket" json:"socket"`
	// DropStaleResponses discards suggestion responses that complete after a
	// newer request's response was already applied.
	DropStaleResponses *bool `toml:"drop_stale_responses" json:"drop_stale_responses"`
}

// HistoryConfig holds settings for the in-memory history log.
type HistoryConfig struct {
	File               string `toml:"file" json:"file"`
	MaxEntries         int    `toml:"max_entries" json:"max_entries"`
	ImportShellHistory *bool  `toml:"import_shell_history" json:"import_shell_history"`
}

// ConfigDir returns the config directory path.
// Resolution order: $PROMPTLINE_CONFIG_DIR > $XDG_CONFIG_HOME/promptline > ~/.config/promptline
func ConfigDir() string {
	if dir := os.Getenv("PROMPTLINE_CONFIG_DIR"); dir != "" {
		return dir
	}
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, "promptline")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join("/tmp", "promptline-config")
	}
	return filepath.Join(home, ".config", "promptline")
}

// ConfigPath returns the full path to the config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// DefaultConfig returns the default configuration from the embedded default_config.toml.
func DefaultConfig() *Config {
	var cfg Config
	if _, err := toml.Decode(defaults.DefaultConfigTOML, &cfg); err != nil {
		panic("promptline: invalid embedded default_config.toml: " + err.Error())
	}
	return &cfg
}

// LoadConfig loads config from disk or returns defaults if not found.
func LoadConfig() (*Config, error) {
	return LoadConfigFile(ConfigPath())
}

// LoadConfigFile loads config from path, filling missing fields from defaults.
func LoadConfigFile(path string) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	defaults := DefaultConfig()
	if cfg.Version == 0 {
		cfg.Version = defaults.Version
	}
	if cfg.Suggest.MaxCandidates == 0 {
		cfg.Suggest.MaxCandidates = defaults.Suggest.MaxCandidates
	}
	if cfg.Suggest.CacheTTLSeconds == 0 {
		cfg.Suggest.CacheTTLSeconds = defaults.Suggest.CacheTTLSeconds
	}
	if cfg.Suggest.CacheCapacity == 0 {
		cfg.Suggest.CacheCapacity = defaults.Suggest.CacheCapacity
	}
	if cfg.Suggest.DropStaleResponses == nil {
		cfg.Suggest.DropStaleResponses = defaults.Suggest.DropStaleResponses
	}
	if cfg.History.MaxEntries == 0 {
		cfg.History.MaxEntries = defaults.History.MaxEntries
	}
	if cfg.History.ImportShellHistory == nil {
		cfg.History.ImportShellHistory = defaults.History.ImportShellHistory
	}

	return &cfg, nil
}

// ValidateConfig checks configuration for potential issues and returns warnings.
func ValidateConfig(cfg *Config) []string {
	var warnings []string
	if cfg == nil {
		return warnings
	}
	if cfg.Suggest.MaxCandidates < 0 {
		warnings = append(warnings, "suggest.max_candidates is negative; the source default will be used")
	}
	if cfg.Suggest.CacheTTLSeconds < 0 {
		warnings = append(warnings, "suggest.cache_ttl_seconds is negative; caching is disabled")
	}
	if cfg.History.MaxEntries < 0 {
		warnings = append(warnings, "history.max_entries is negative; the history log is unbounded")
	}
	if cfg.History.File != "" {
		if _, err := os.Stat(expandHome(cfg.History.File)); err != nil {
			warnings = append(warnings, "history.file is not readable: "+err.Error())
		}
	}
	return warnings
}

// ResolveSocketPath returns the suggestion daemon socket path.
// Priority: $PROMPTLINE_SOCKET env > config value > $XDG_RUNTIME_DIR/promptline.sock > /tmp.
func ResolveSocketPath(cfg *Config) string {
	if path := os.Getenv("PROMPTLINE_SOCKET"); path != "" {
		return path
	}
	if cfg != nil && cfg.Suggest.Socket != "" {
		return expandHome(cfg.Suggest.Socket)
	}
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return dir + "/promptline.sock"
	}
	return fmt.Sprintf("/tmp/promptline-%d.sock", os.Getuid())
}

// ResolveHistoryFile returns the shell history file to import.
// Priority: $PROMPTLINE_HISTFILE env > config value. Empty means auto-detect.
func ResolveHistoryFile(cfg *Config) string {
	if path := os.Getenv("PROMPTLINE_HISTFILE"); path != "" {
		return path
	}
	if cfg != nil {
		return expandHome(cfg.History.File)
	}
	return ""
}

// expandHome replaces a leading ~ with the user's home directory.
func expandHome(path string) string {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return path
	}
	return expanded
}

// CacheTTL returns the suggestion cache TTL, or zero when caching is disabled.
func CacheTTL(cfg *Config) time.Duration {
	if cfg == nil || cfg.Suggest.CacheTTLSeconds <= 0 {
		return 0
	}
	return time.Duration(cfg.Suggest.CacheTTLSeconds) * time.Second
}

// DropStaleResponses reports whether the stale-response guard is enabled.
func DropStaleResponses(cfg *Config) bool {
	if cfg == nil || cfg.Suggest.DropStaleResponses == nil {
		return false
	}
	return *cfg.Suggest.DropStaleResponses
}

// ImportShellHistory reports whether the shell history file should seed the log.
func ImportShellHistory(cfg *Config) bool {
	if cfg == nil || cfg.History.ImportShellHistory == nil {
		return true
	}
	return *cfg.History.ImportShellHistory
}
