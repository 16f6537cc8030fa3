// Package config loads peopledex configuration with layered precedence:
// hardcoded defaults, then a project .peopledex.yaml, then PEOPLEDEX_*
// environment variables.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	apperrors "github.com/peopledex/peopledex/internal/errors"
)

// Config is the complete peopledex configuration.
type Config struct {
	Vault    VaultConfig    `yaml:"vault" json:"vault"`
	Parser   ParserConfig   `yaml:"parser" json:"parser"`
	Index    IndexConfig    `yaml:"index" json:"index"`
	Scanner  ScannerConfig  `yaml:"scanner" json:"scanner"`
	Mentions MentionsConfig `yaml:"mentions" json:"mentions"`
	Watcher  WatcherConfig  `yaml:"watcher" json:"watcher"`
	Logging  LoggingConfig  `yaml:"logging" json:"logging"`
}

// VaultConfig locates the document vault.
type VaultConfig struct {
	// Path is the vault root directory. Defaults to the current directory.
	Path string `yaml:"path" json:"path"`
}

// ParserConfig configures definition-block parsing. The toggles are pointers
// so an explicit false in the config file is distinguishable from unset.
type ParserConfig struct {
	// DashDividers enables "---" as a block divider (default true).
	DashDividers *bool `yaml:"dash_dividers" json:"dash_dividers"`

	// UnderscoreDividers enables "___" as a block divider (default true).
	UnderscoreDividers *bool `yaml:"underscore_dividers" json:"underscore_dividers"`
}

// DashEnabled resolves the dash divider toggle, defaulting to true.
func (p ParserConfig) DashEnabled() bool {
	return p.DashDividers == nil || *p.DashDividers
}

// UnderscoreEnabled resolves the underscore divider toggle, defaulting to true.
func (p ParserConfig) UnderscoreEnabled() bool {
	return p.UnderscoreDividers == nil || *p.UnderscoreDividers
}

// IndexConfig configures the search index.
type IndexConfig struct {
	// CacheSize bounds the search result cache (default 1000).
	CacheSize int `yaml:"cache_size" json:"cache_size"`
}

// ScannerConfig configures line-scanning strategy selection.
type ScannerConfig struct {
	// ShortMax is the inclusive upper bound for the short-line strategy
	// (default 120).
	ShortMax int `yaml:"short_max" json:"short_max"`

	// MediumMax is the inclusive upper bound for the medium-line strategy
	// (default 600).
	MediumMax int `yaml:"medium_max" json:"medium_max"`

	// CacheSize bounds the per-line scan cache (default 500).
	CacheSize int `yaml:"cache_size" json:"cache_size"`
}

// MentionsConfig configures the mention counter's incremental queue.
type MentionsConfig struct {
	// BatchSize is how many queued documents each tick rescans (default 5).
	BatchSize int `yaml:"batch_size" json:"batch_size"`

	// QueueDelay is the pause between queue ticks (default "250ms").
	QueueDelay string `yaml:"queue_delay" json:"queue_delay"`

	// QueueCapacity bounds the rescan queue (default 256).
	QueueCapacity int `yaml:"queue_capacity" json:"queue_capacity"`
}

// WatcherConfig configures vault watching.
type WatcherConfig struct {
	// Debounce is the event coalescing window (default "200ms").
	Debounce string `yaml:"debounce" json:"debounce"`
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error (default "info").
	Level string `yaml:"level" json:"level"`

	// File is the log file path. Empty uses the default under ~/.peopledex/logs.
	File string `yaml:"file" json:"file"`
}

// NewConfig returns a configuration populated with defaults.
func NewConfig() *Config {
	return &Config{
		Vault: VaultConfig{
			Path: ".",
		},
		Parser: ParserConfig{
			DashDividers:       boolPtr(true),
			UnderscoreDividers: boolPtr(true),
		},
		Index: IndexConfig{
			CacheSize: 1000,
		},
		Scanner: ScannerConfig{
			ShortMax:  120,
			MediumMax: 600,
			CacheSize: 500,
		},
		Mentions: MentionsConfig{
			BatchSize:     5,
			QueueDelay:    "250ms",
			QueueCapacity: 256,
		},
		Watcher: WatcherConfig{
			Debounce: "200ms",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from the given directory, in order of increasing
// precedence: defaults, .peopledex.yaml (or .yml), then PEOPLEDEX_*
// environment variables. A missing config file is not an error.
func Load(dir string) (*Config, error) {
	cfg := NewConfig()

	if err := cfg.loadFromFile(dir); err != nil {
		return nil, err
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFromFile tries .peopledex.yaml first, then .peopledex.yml.
func (c *Config) loadFromFile(dir string) error {
	for _, name := range []string{".peopledex.yaml", ".peopledex.yml"} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return c.loadYAML(path)
		}
	}
	return nil
}

func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return apperrors.New(apperrors.ErrCodeConfigNotFound,
			"failed to read config file", err).WithDetail("path", path)
	}

	var parsed Config
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return apperrors.New(apperrors.ErrCodeConfigInvalid,
			"failed to parse config file", err).WithDetail("path", path)
	}

	c.mergeWith(&parsed)
	return nil
}

// mergeWith copies set values from other into c. Divider toggles merge on
// non-nil, so an explicit false in the file takes effect.
func (c *Config) mergeWith(other *Config) {
	if other.Vault.Path != "" {
		c.Vault.Path = other.Vault.Path
	}
	if other.Parser.DashDividers != nil {
		c.Parser.DashDividers = other.Parser.DashDividers
	}
	if other.Parser.UnderscoreDividers != nil {
		c.Parser.UnderscoreDividers = other.Parser.UnderscoreDividers
	}
	if other.Index.CacheSize != 0 {
		c.Index.CacheSize = other.Index.CacheSize
	}
	if other.Scanner.ShortMax != 0 {
		c.Scanner.ShortMax = other.Scanner.ShortMax
	}
	if other.Scanner.MediumMax != 0 {
		c.Scanner.MediumMax = other.Scanner.MediumMax
	}
	if other.Scanner.CacheSize != 0 {
		c.Scanner.CacheSize = other.Scanner.CacheSize
	}
	if other.Mentions.BatchSize != 0 {
		c.Mentions.BatchSize = other.Mentions.BatchSize
	}
	if other.Mentions.QueueDelay != "" {
		c.Mentions.QueueDelay = other.Mentions.QueueDelay
	}
	if other.Mentions.QueueCapacity != 0 {
		c.Mentions.QueueCapacity = other.Mentions.QueueCapacity
	}
	if other.Watcher.Debounce != "" {
		c.Watcher.Debounce = other.Watcher.Debounce
	}
	if other.Logging.Level != "" {
		c.Logging.Level = other.Logging.Level
	}
	if other.Logging.File != "" {
		c.Logging.File = other.Logging.File
	}
}

// applyEnvOverrides applies PEOPLEDEX_* environment variables, the highest
// precedence layer.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("PEOPLEDEX_VAULT"); v != "" {
		c.Vault.Path = v
	}
	if v := os.Getenv("PEOPLEDEX_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("PEOPLEDEX_LOG_FILE"); v != "" {
		c.Logging.File = v
	}
	if v, ok := envBool("PEOPLEDEX_DASH_DIVIDERS"); ok {
		c.Parser.DashDividers = boolPtr(v)
	}
	if v, ok := envBool("PEOPLEDEX_UNDERSCORE_DIVIDERS"); ok {
		c.Parser.UnderscoreDividers = boolPtr(v)
	}
	if v, ok := envInt("PEOPLEDEX_INDEX_CACHE_SIZE"); ok {
		c.Index.CacheSize = v
	}
	if v, ok := envInt("PEOPLEDEX_SCAN_CACHE_SIZE"); ok {
		c.Scanner.CacheSize = v
	}
}

func boolPtr(v bool) *bool {
	return &v
}

func envBool(name string) (bool, bool) {
	raw := os.Getenv(name)
	if raw == "" {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}

func envInt(name string) (int, bool) {
	raw := os.Getenv(name)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}

// Validate checks the final configuration.
func (c *Config) Validate() error {
	if c.Index.CacheSize < 0 {
		return apperrors.ConfigError("index cache_size must be non-negative", nil)
	}
	if c.Scanner.ShortMax <= 0 || c.Scanner.MediumMax <= c.Scanner.ShortMax {
		return apperrors.ConfigError("scanner thresholds must satisfy 0 < short_max < medium_max", nil)
	}
	if c.Mentions.BatchSize <= 0 {
		return apperrors.ConfigError("mentions batch_size must be positive", nil)
	}
	if _, err := c.QueueDelay(); err != nil {
		return err
	}
	if _, err := c.WatchDebounce(); err != nil {
		return err
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return apperrors.ConfigError("logging level must be one of debug, info, warn, error", nil).
			WithDetail("level", c.Logging.Level)
	}
	return nil
}

// QueueDelay parses the mention queue delay.
func (c *Config) QueueDelay() (time.Duration, error) {
	d, err := time.ParseDuration(c.Mentions.QueueDelay)
	if err != nil {
		return 0, apperrors.New(apperrors.ErrCodeConfigInvalid,
			"invalid mentions queue_delay", err).WithDetail("value", c.Mentions.QueueDelay)
	}
	return d, nil
}

// WatchDebounce parses the watcher debounce window.
func (c *Config) WatchDebounce() (time.Duration, error) {
	d, err := time.ParseDuration(c.Watcher.Debounce)
	if err != nil {
		return 0, apperrors.New(apperrors.ErrCodeConfigInvalid,
			"invalid watcher debounce", err).WithDetail("value", c.Watcher.Debounce)
	}
	return d, nil
}
