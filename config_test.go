package promptline

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Suggest.MaxCandidates != 8 {
		t.Errorf("expected max_candidates 8, got %d", cfg.Suggest.MaxCandidates)
	}
	if DropStaleResponses(cfg) {
		t.Error("stale-response guard should default to off")
	}
	if !ImportShellHistory(cfg) {
		t.Error("shell history import should default to on")
	}
	if CacheTTL(cfg) != 30*time.Second {
		t.Errorf("expected 30s cache TTL, got %s", CacheTTL(cfg))
	}
}

func TestLoadConfigMissingFileReturnsDefaults(t *testing.T) {
	t.Setenv("PROMPTLINE_CONFIG_DIR", t.TempDir())
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.History.MaxEntries != DefaultConfig().History.MaxEntries {
		t.Errorf("expected default max_entries, got %d", cfg.History.MaxEntries)
	}
}

func TestLoadConfigFillsMissingFields(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("PROMPTLINE_CONFIG_DIR", dir)
	content := "[suggest]\nmax_candidates = 3\ndrop_stale_responses = true\n"
	if err := os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Suggest.MaxCandidates != 3 {
		t.Errorf("expected max_candidates 3, got %d", cfg.Suggest.MaxCandidates)
	}
	if !DropStaleResponses(cfg) {
		t.Error("expected drop_stale_responses from file")
	}
	if cfg.Suggest.CacheTTLSeconds != 30 {
		t.Errorf("expected default cache_ttl_seconds, got %d", cfg.Suggest.CacheTTLSeconds)
	}
	if cfg.History.MaxEntries != 1000 {
		t.Errorf("expected default max_entries, got %d", cfg.History.MaxEntries)
	}
}

func TestLoadConfigInvalidTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[suggest\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfigFile(path); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestConfigDirResolution(t *testing.T) {
	t.Setenv("PROMPTLINE_CONFIG_DIR", "")
	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	if got := ConfigDir(); got != "/xdg/promptline" {
		t.Errorf("ConfigDir() = %s, want /xdg/promptline", got)
	}
	t.Setenv("PROMPTLINE_CONFIG_DIR", "/custom")
	if got := ConfigDir(); got != "/custom" {
		t.Errorf("ConfigDir() = %s, want /custom", got)
	}
}

func TestResolveSocketPath(t *testing.T) {
	tests := []struct {
		name     string
		envSetup func(t *testing.T)
		cfg      *Config
		expected string
	}{
		{
			name: "PROMPTLINE_SOCKET",
			envSetup: func(t *testing.T) {
				t.Setenv("PROMPTLINE_SOCKET", "/custom/promptline.sock")
			},
			cfg:      &Config{Suggest: SuggestConfig{Socket: "/cfg.sock"}},
			expected: "/custom/promptline.sock",
		},
		{
			name: "config",
			envSetup: func(t *testing.T) {
				t.Setenv("PROMPTLINE_SOCKET", "")
			},
			cfg:      &Config{Suggest: SuggestConfig{Socket: "/cfg.sock"}},
			expected: "/cfg.sock",
		},
		{
			name: "XDG_RUNTIME_DIR",
			envSetup: func(t *testing.T) {
				t.Setenv("PROMPTLINE_SOCKET", "")
				t.Setenv("XDG_RUNTIME_DIR", "/run/user/1000")
			},
			expected: "/run/user/1000/promptline.sock",
		},
		{
			name: "fallback",
			envSetup: func(t *testing.T) {
				t.Setenv("PROMPTLINE_SOCKET", "")
				t.Setenv("XDG_RUNTIME_DIR", "")
			},
			expected: fmt.Sprintf("/tmp/promptline-%d.sock", os.Getuid()),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.envSetup(t)
			if got := ResolveSocketPath(tt.cfg); got != tt.expected {
				t.Errorf("ResolveSocketPath() = %s, want %s", got, tt.expected)
			}
		})
	}
}

func TestValidateConfig(t *testing.T) {
	cfg := DefaultConfig()
	if w := ValidateConfig(cfg); len(w) != 0 {
		t.Errorf("expected no warnings for defaults, got %v", w)
	}
	cfg.Suggest.MaxCandidates = -1
	cfg.History.File = filepath.Join(t.TempDir(), "missing")
	if w := ValidateConfig(cfg); len(w) != 2 {
		t.Errorf("expected 2 warnings, got %v", w)
	}
	if w := ValidateConfig(nil); len(w) != 0 {
		t.Errorf("expected no warnings for nil config, got %v", w)
	}
}

func TestResolveHistoryFile(t *testing.T) {
	cfg := DefaultConfig()

	t.Setenv("PROMPTLINE_HISTFILE", "")
	if got := ResolveHistoryFile(cfg); got != "" {
		t.Errorf("expected auto-detect (empty), got %q", got)
	}

	cfg.History.File = "/var/log/hist"
	if got := ResolveHistoryFile(cfg); got != "/var/log/hist" {
		t.Errorf("expected config value, got %q", got)
	}

	cfg.History.File = "~/.zsh_history"
	got := ResolveHistoryFile(cfg)
	if strings.HasPrefix(got, "~") || !strings.HasSuffix(got, "/.zsh_history") {
		t.Errorf("expected ~ to be expanded, got %q", got)
	}

	t.Setenv("PROMPTLINE_HISTFILE", "/custom/hist")
	if got := ResolveHistoryFile(cfg); got != "/custom/hist" {
		t.Errorf("expected env override, got %q", got)
	}
}

func TestCacheTTLDisabled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Suggest.CacheTTLSeconds = 0
	if CacheTTL(cfg) != 0 {
		t.Error("zero TTL should disable caching")
	}
	if CacheTTL(nil) != 0 {
		t.Error("nil config should disable caching")
	}
}
