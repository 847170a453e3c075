package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/harrison/seeker/internal/filelock"
	"github.com/harrison/seeker/internal/search"
)

// ResultsConfig controls the results log file and its rotation.
type ResultsConfig struct {
	// File is the base name of the results log. Files carrying this name
	// (or a rotated variant of it) are excluded from matching.
	File string `yaml:"file"`

	// MaxSizeMB is the size at which the log rotates.
	MaxSizeMB int `yaml:"max_size_mb"`

	// MaxBackups is how many rotated logs to keep (0 = keep all).
	MaxBackups int `yaml:"max_backups"`

	// MaxAgeDays is how long rotated logs are kept (0 = forever).
	MaxAgeDays int `yaml:"max_age_days"`
}

// Config represents seeker's persisted settings. CLI flags override these
// per invocation; see MergeWithFlags.
type Config struct {
	// Workers is the search worker pool size.
	Workers int `yaml:"workers"`

	// Pattern is the default file-name glob.
	Pattern string `yaml:"pattern"`

	// Months is the default recency cutoff (0 = disabled).
	Months int `yaml:"months"`

	// Fraction is the required multi-term match fraction.
	Fraction float64 `yaml:"fraction"`

	// LogLevel sets console verbosity (trace, debug, info, warn, error).
	LogLevel string `yaml:"log_level"`

	// Progress enables the periodic progress line.
	Progress bool `yaml:"progress"`

	// InitialDelay is how long the first progress tick waits.
	InitialDelay time.Duration `yaml:"progress_initial_delay"`

	// Interval is the cadence of subsequent progress ticks.
	Interval time.Duration `yaml:"progress_interval"`

	// RearmIdle keeps idle workers re-checking the queue while peers are
	// still fanning out instead of exiting on first empty.
	RearmIdle bool `yaml:"rearm_idle_workers"`

	// History enables recording runs in the history database.
	History bool `yaml:"history"`

	// Results configures the results log.
	Results ResultsConfig `yaml:"results"`
}

// DefaultConfig returns a Config with the compiled-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Workers:      search.DefaultWorkers,
		Pattern:      search.DefaultPattern,
		Months:       0,
		Fraction:     0.5,
		LogLevel:     "info",
		Progress:     true,
		InitialDelay: search.DefaultInitialDelay,
		Interval:     search.DefaultProgressInterval,
		RearmIdle:    false,
		History:      true,
		Results: ResultsConfig{
			File:       search.DefaultResultsLog,
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 0,
		},
	}
}

// yamlConfig mirrors Config with string durations so the settings file can
// say "500ms" instead of a nanosecond count.
type yamlConfig struct {
	Workers      int           `yaml:"workers"`
	Pattern      string        `yaml:"pattern"`
	Months       int           `yaml:"months"`
	Fraction     float64       `yaml:"fraction"`
	LogLevel     string        `yaml:"log_level"`
	Progress     bool          `yaml:"progress"`
	InitialDelay string        `yaml:"progress_initial_delay"`
	Interval     string        `yaml:"progress_interval"`
	RearmIdle    bool          `yaml:"rearm_idle_workers"`
	History      bool          `yaml:"history"`
	Results      ResultsConfig `yaml:"results"`
}

// LoadConfig loads settings from the given file path. A missing file is not
// an error: the defaults come back unchanged. A malformed file is an error.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var yamlCfg yamlConfig
	if err := yaml.Unmarshal(data, &yamlCfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Apply non-zero values from the file over the defaults.
	if yamlCfg.Workers != 0 {
		cfg.Workers = yamlCfg.Workers
	}
	if yamlCfg.Pattern != "" {
		cfg.Pattern = yamlCfg.Pattern
	}
	if yamlCfg.Months != 0 {
		cfg.Months = yamlCfg.Months
	}
	if yamlCfg.Fraction != 0 {
		cfg.Fraction = yamlCfg.Fraction
	}
	if yamlCfg.LogLevel != "" {
		cfg.LogLevel = yamlCfg.LogLevel
	}
	if yamlCfg.InitialDelay != "" {
		d, err := time.ParseDuration(yamlCfg.InitialDelay)
		if err != nil {
			return nil, fmt.Errorf("invalid progress_initial_delay %q: %w", yamlCfg.InitialDelay, err)
		}
		cfg.InitialDelay = d
	}
	if yamlCfg.Interval != "" {
		d, err := time.ParseDuration(yamlCfg.Interval)
		if err != nil {
			return nil, fmt.Errorf("invalid progress_interval %q: %w", yamlCfg.Interval, err)
		}
		cfg.Interval = d
	}
	// RearmIdle defaults to false, so a plain truth check suffices.
	if yamlCfg.RearmIdle {
		cfg.RearmIdle = yamlCfg.RearmIdle
	}

	// Progress and History default to true; only an explicit key in the
	// file may turn them off, so presence has to be detected.
	var rawMap map[string]interface{}
	if err := yaml.Unmarshal(data, &rawMap); err == nil {
		if _, exists := rawMap["progress"]; exists {
			cfg.Progress = yamlCfg.Progress
		}
		if _, exists := rawMap["history"]; exists {
			cfg.History = yamlCfg.History
		}

		if resultsSection, exists := rawMap["results"]; exists && resultsSection != nil {
			resultsMap, _ := resultsSection.(map[string]interface{})
			if _, exists := resultsMap["file"]; exists {
				cfg.Results.File = yamlCfg.Results.File
			}
			if _, exists := resultsMap["max_size_mb"]; exists {
				cfg.Results.MaxSizeMB = yamlCfg.Results.MaxSizeMB
			}
			if _, exists := resultsMap["max_backups"]; exists {
				cfg.Results.MaxBackups = yamlCfg.Results.MaxBackups
			}
			if _, exists := resultsMap["max_age_days"]; exists {
				cfg.Results.MaxAgeDays = yamlCfg.Results.MaxAgeDays
			}
		}
	}

	return cfg, nil
}

// MergeWithFlags merges CLI flags into the configuration. Non-nil flag
// values override file settings, letting flags take precedence.
func (c *Config) MergeWithFlags(workers *int, pattern *string, months *int, fraction *float64, progress *bool, rearm *bool, resultsFile *string, history *bool) {
	if workers != nil {
		c.Workers = *workers
	}
	if pattern != nil {
		c.Pattern = *pattern
	}
	if months != nil {
		c.Months = *months
	}
	if fraction != nil {
		c.Fraction = *fraction
	}
	if progress != nil {
		c.Progress = *progress
	}
	if rearm != nil {
		c.RearmIdle = *rearm
	}
	if resultsFile != nil {
		c.Results.File = *resultsFile
	}
	if history != nil {
		c.History = *history
	}
}

// Normalize clamps every out-of-range value to its valid bound. Settings
// anomalies are corrected, never rejected: any loaded config is usable.
func (c *Config) Normalize() {
	if c.Workers == 0 {
		c.Workers = search.DefaultWorkers
	}
	if c.Workers < 1 {
		c.Workers = 1
	}
	if c.Pattern == "" {
		c.Pattern = search.DefaultPattern
	}
	if c.Months < 0 {
		c.Months = 0
	}
	c.Fraction = search.ClampFraction(c.Fraction)
	if !validLogLevels[c.LogLevel] {
		c.LogLevel = "info"
	}
	if c.InitialDelay <= 0 {
		c.InitialDelay = search.DefaultInitialDelay
	}
	if c.Interval <= 0 {
		c.Interval = search.DefaultProgressInterval
	}
	if c.Results.File == "" {
		c.Results.File = search.DefaultResultsLog
	}
	if c.Results.MaxSizeMB <= 0 {
		c.Results.MaxSizeMB = 10
	}
	if c.Results.MaxBackups < 0 {
		c.Results.MaxBackups = 0
	}
	if c.Results.MaxAgeDays < 0 {
		c.Results.MaxAgeDays = 0
	}
}

var validLogLevels = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Save writes the configuration to path atomically. Concurrent savers
// serialize on a sibling lock file so the settings file never tears.
func (c *Config) Save(path string) error {
	out := yamlConfig{
		Workers:      c.Workers,
		Pattern:      c.Pattern,
		Months:       c.Months,
		Fraction:     c.Fraction,
		LogLevel:     c.LogLevel,
		Progress:     c.Progress,
		InitialDelay: c.InitialDelay.String(),
		Interval:     c.Interval.String(),
		RearmIdle:    c.RearmIdle,
		History:      c.History,
		Results:      c.Results,
	}

	data, err := yaml.Marshal(&out)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return filelock.LockAndWrite(path, data)
}
