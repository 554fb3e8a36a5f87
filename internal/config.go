package internal

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	minPollInterval = 50 * time.Millisecond
	maxPollInterval = 10 * time.Second
)

// Config is the savecaptions configuration file
type Config struct {
	SaveDir           string        `yaml:"save_dir"`
	PollInterval      time.Duration `yaml:"poll_interval"`
	MergeStrategy     string        `yaml:"merge_strategy"`
	MinFragmentLength int           `yaml:"min_fragment_length"`
	CatalogPath       string        `yaml:"catalog_path"`
	LogLevel          string        `yaml:"log_level"`
	Source            SourceConfig  `yaml:"source"`
}

// DefaultConfig returns the configuration used when no file exists
func DefaultConfig(paths AppPaths) Config {
	return Config{
		SaveDir:           paths.CaptionsDir,
		PollInterval:      DefaultPollInterval,
		MergeStrategy:     string(DefaultStrategy),
		MinFragmentLength: DefaultMinFragmentLength,
		CatalogPath:       paths.CatalogPath(),
		LogLevel:          LogLevelInfo.String(),
	}
}

// Validate applies defaults, checks required fields, and rejects out-of-range values
func (c *Config) Validate() error {
	if c.SaveDir == "" {
		return fmt.Errorf("config: save_dir is required")
	}
	c.SaveDir = expandHome(c.SaveDir)
	c.CatalogPath = expandHome(c.CatalogPath)

	if c.PollInterval == 0 {
		c.PollInterval = DefaultPollInterval
	}
	if c.PollInterval < minPollInterval || c.PollInterval > maxPollInterval {
		return fmt.Errorf("config: poll_interval must be between %s and %s, got %s", minPollInterval, maxPollInterval, c.PollInterval)
	}

	strategy, err := ParseStrategy(c.MergeStrategy)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	c.MergeStrategy = string(strategy)

	if c.MinFragmentLength < 0 {
		return fmt.Errorf("config: min_fragment_length must be >= 0, got %d", c.MinFragmentLength)
	}
	if c.MinFragmentLength == 0 {
		c.MinFragmentLength = DefaultMinFragmentLength
	}

	level, err := ParseLogLevel(c.LogLevel)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	c.LogLevel = level.String()

	switch c.Source.Kind {
	case "", SourceKindFile, SourceKindCommand, SourceKindPTY:
	default:
		return fmt.Errorf("config: unsupported source kind: %s (supported: file, command, pty)", c.Source.Kind)
	}
	c.Source.Path = expandHome(c.Source.Path)
	return nil
}

// Strategy returns the parsed merge strategy. Call after Validate.
func (c Config) Strategy() Strategy {
	return Strategy(c.MergeStrategy)
}

// RecorderOptions builds recorder options from the configuration
func (c Config) RecorderOptions() RecorderOptions {
	return RecorderOptions{
		SaveDir:           c.SaveDir,
		Strategy:          c.Strategy(),
		PollInterval:      c.PollInterval,
		MinFragmentLength: c.MinFragmentLength,
	}
}

// Save writes the configuration as YAML
func (c Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// ConfigLoader reads the config file and applies SAVECAPTIONS_* environment
// overrides. Tests can override Lookup to inject deterministic maps.
type ConfigLoader struct {
	// Path of the config file; empty means Paths.ConfigPath()
	Path string
	// Required makes a missing file an error
	Required bool
	Paths    AppPaths
	Lookup   func(string) (string, bool)
}

// Load returns the validated configuration
func (l ConfigLoader) Load() (Config, error) {
	if l.Lookup == nil {
		l.Lookup = os.LookupEnv
	}
	path := l.Path
	if path == "" {
		path = l.Paths.ConfigPath()
	}

	cfg := DefaultConfig(l.Paths)
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: decode %s: %w", path, err)
		}
		LogDebug("Loaded config from %s", path)
	case errors.Is(err, os.ErrNotExist) && !l.Required:
		LogDebug("No config file at %s, using defaults", path)
	default:
		return Config{}, fmt.Errorf("config: %w", err)
	}

	overrideString(l.Lookup, "SAVECAPTIONS_SAVE_DIR", &cfg.SaveDir)
	overrideString(l.Lookup, "SAVECAPTIONS_MERGE_STRATEGY", &cfg.MergeStrategy)
	overrideString(l.Lookup, "SAVECAPTIONS_CATALOG_PATH", &cfg.CatalogPath)
	overrideString(l.Lookup, "SAVECAPTIONS_LOG_LEVEL", &cfg.LogLevel)
	overrideString(l.Lookup, "SAVECAPTIONS_SOURCE_KIND", &cfg.Source.Kind)
	overrideString(l.Lookup, "SAVECAPTIONS_SOURCE_PATH", &cfg.Source.Path)
	overrideString(l.Lookup, "SAVECAPTIONS_SOURCE_COMMAND", &cfg.Source.Command)
	if err := overrideDuration(l.Lookup, "SAVECAPTIONS_POLL_INTERVAL", &cfg.PollInterval); err != nil {
		return Config{}, err
	}
	if err := overrideInt(l.Lookup, "SAVECAPTIONS_MIN_FRAGMENT_LENGTH", &cfg.MinFragmentLength); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func overrideString(lookup func(string) (string, bool), key string, target *string) {
	if value, ok := lookup(key); ok && strings.TrimSpace(value) != "" {
		*target = strings.TrimSpace(value)
	}
}

func overrideDuration(lookup func(string) (string, bool), key string, target *time.Duration) error {
	value, ok := lookup(key)
	if !ok || strings.TrimSpace(value) == "" {
		return nil
	}
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return fmt.Errorf("config: %s: %w", key, err)
	}
	*target = d
	return nil
}

func overrideInt(lookup func(string) (string, bool), key string, target *int) error {
	value, ok := lookup(key)
	if !ok || strings.TrimSpace(value) == "" {
		return nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fmt.Errorf("config: %s: %w", key, err)
	}
	*target = n
	return nil
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}
