// Package config loads matgraph configuration from .matgraph/config.json,
// falling back to defaults when no file exists.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config represents the complete matgraph configuration
type Config struct {
	Version int `json:"version" mapstructure:"version"`

	Scanner ScannerConfig `json:"scanner" mapstructure:"scanner"`
	Engine  EngineConfig  `json:"engine" mapstructure:"engine"`
	Storage StorageConfig `json:"storage" mapstructure:"storage"`
	Watcher WatcherConfig `json:"watcher" mapstructure:"watcher"`
	Logging LoggingConfig `json:"logging" mapstructure:"logging"`
}

// ScannerConfig controls script discovery and lexical extraction.
type ScannerConfig struct {
	// Extensions lists script file extensions to scan (lowercase, with dot).
	Extensions []string `json:"extensions" mapstructure:"extensions"`
	// IgnoreDirs are directory names skipped during the walk.
	IgnoreDirs []string `json:"ignoreDirs" mapstructure:"ignoreDirs"`
	// UseGitignore honors a project-level .gitignore during the walk.
	UseGitignore bool `json:"useGitignore" mapstructure:"useGitignore"`
	// Denylist holds identifiers never recorded as call sites: language
	// keywords and common built-ins. Hand-maintained and necessarily
	// incomplete; a known source of both false positives and negatives.
	Denylist []string `json:"denylist" mapstructure:"denylist"`
	// MinIdentifierLength is the shortest identifier recorded as a call.
	MinIdentifierLength int `json:"minIdentifierLength" mapstructure:"minIdentifierLength"`
	// MaxFileSizeBytes caps how large a script may be before it is
	// recorded as unreadable instead of parsed.
	MaxFileSizeBytes int64 `json:"maxFileSizeBytes" mapstructure:"maxFileSizeBytes"`
}

// EngineConfig controls query execution limits and caching.
type EngineConfig struct {
	// MaxPathsPerQuery bounds simple-path enumeration; exceeding it
	// truncates the result and flags the response.
	MaxPathsPerQuery int `json:"maxPathsPerQuery" mapstructure:"maxPathsPerQuery"`
	// MaxCachedProjects bounds the per-project snapshot LRU.
	MaxCachedProjects int `json:"maxCachedProjects" mapstructure:"maxCachedProjects"`
}

// StorageConfig controls snapshot persistence.
type StorageConfig struct {
	// PersistSnapshots writes the latest scan snapshot to
	// .matgraph/matgraph.db for warm starts and the status view.
	PersistSnapshots bool `json:"persistSnapshots" mapstructure:"persistSnapshots"`
}

// WatcherConfig controls file-watch based cache invalidation.
type WatcherConfig struct {
	Enabled    bool `json:"enabled" mapstructure:"enabled"`
	DebounceMs int  `json:"debounceMs" mapstructure:"debounceMs"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Format string `json:"format" mapstructure:"format"`
	Level  string `json:"level" mapstructure:"level"`
}

// DefaultDenylist seeds the call-site exclusion set: MATLAB keywords
// plus built-ins commonly seen in plotting/IO-heavy scripts.
func DefaultDenylist() []string {
	return []string{
		"if", "else", "elseif", "end", "for", "while", "switch", "case", "otherwise",
		"try", "catch", "function", "return", "break", "continue", "global", "persistent",
		"clear", "clc", "close", "figure", "plot", "subplot", "title", "xlabel", "ylabel",
		"legend", "grid", "hold", "axis", "xlim", "ylim", "text", "annotation", "gcf",
		"fprintf", "mean", "isnumeric", "isempty", "on", "off", "length", "size",
		"exist", "mkdir", "fullfile", "char", "string", "regexp", "bitset", "bitget",
		"double", "abs", "vertcat", "find", "sort", "unique", "eval", "saveas", "imwrite",
		"getframe", "set", "get", "xline", "yline", "yticks",
	}
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version: 1,
		Scanner: ScannerConfig{
			Extensions:          []string{".m"},
			IgnoreDirs:          []string{".git", ".svn", ".matgraph", "slprj", "codegen"},
			UseGitignore:        true,
			Denylist:            DefaultDenylist(),
			MinIdentifierLength: 2,
			MaxFileSizeBytes:    4 * 1024 * 1024,
		},
		Engine: EngineConfig{
			MaxPathsPerQuery:  10000,
			MaxCachedProjects: 8,
		},
		Storage: StorageConfig{
			PersistSnapshots: true,
		},
		Watcher: WatcherConfig{
			Enabled:    false,
			DebounceMs: 2000,
		},
		Logging: LoggingConfig{
			Format: "human",
			Level:  "info",
		},
	}
}

// ConfigDir returns the matgraph state directory for a project root.
func ConfigDir(projectRoot string) string {
	return filepath.Join(projectRoot, ".matgraph")
}

// LoadConfig loads configuration from <projectRoot>/.matgraph/config.json.
// A missing file yields the defaults; a malformed file is an error.
func LoadConfig(projectRoot string) (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(ConfigDir(projectRoot))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	applyFloors(cfg)
	return cfg, nil
}

// SaveConfig writes the configuration to .matgraph/config.json.
func SaveConfig(projectRoot string, cfg *Config) error {
	dir := ConfigDir(projectRoot)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(dir, "config.json"), data, 0o644)
}

// applyFloors clamps nonsensical values back to usable minimums.
func applyFloors(cfg *Config) {
	if cfg.Scanner.MinIdentifierLength < 1 {
		cfg.Scanner.MinIdentifierLength = 2
	}
	if cfg.Engine.MaxPathsPerQuery < 1 {
		cfg.Engine.MaxPathsPerQuery = 10000
	}
	if cfg.Engine.MaxCachedProjects < 1 {
		cfg.Engine.MaxCachedProjects = 8
	}
	if len(cfg.Scanner.Extensions) == 0 {
		cfg.Scanner.Extensions = []string{".m"}
	}
}
