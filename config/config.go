package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/ngalaiko/spellcheck/checker"
	"github.com/ngalaiko/spellcheck/coordinator"
	"github.com/ngalaiko/spellcheck/count"
	"github.com/ngalaiko/spellcheck/token"
)

// ErrInvalidConfig is wrapped by every Validate failure.
var ErrInvalidConfig = errors.New("invalid config")

// Config is the complete spellcheck configuration.
type Config struct {
	Report      ReportConfig      `yaml:"report"`
	Table       TableConfig       `yaml:"table"`
	Checker     CheckerConfig     `yaml:"checker"`
	Coordinator CoordinatorConfig `yaml:"coordinator"`
	Log         LogConfig         `yaml:"log"`
}

// ReportConfig controls where reports go.
type ReportConfig struct {
	// Path is the append-only report file.
	Path string `yaml:"path"`
	// SummaryToSink appends the final summary to Path instead of printing it.
	SummaryToSink bool `yaml:"summary_to_sink"`
}

// TableConfig sizes the shared frequency table and each task's private one.
type TableConfig struct {
	Capacity    int `yaml:"capacity"`
	LockStripes int `yaml:"lock_stripes"`
}

// CheckerConfig controls how tasks read their sources.
type CheckerConfig struct {
	MaxTokenLen      int    `yaml:"max_token_len"`
	DictionaryPolicy string `yaml:"dictionary_policy"`
}

// CoordinatorConfig controls task scheduling.
type CoordinatorConfig struct {
	MaxConcurrent int `yaml:"max_concurrent"`
	TrendSize     int `yaml:"trend_size"`
}

// LogConfig controls logging.
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Report: ReportConfig{
			Path: "spellcheck.out",
		},
		Table: TableConfig{
			Capacity:    count.DefaultCapacity,
			LockStripes: 1,
		},
		Checker: CheckerConfig{
			MaxTokenLen:      token.DefaultMaxLen,
			DictionaryPolicy: string(checker.PolicyAbort),
		},
		Coordinator: CoordinatorConfig{
			TrendSize: 10,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// LoadFromFile reads a YAML config file on top of the defaults.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(expandHome(path))
	if err != nil {
		return nil, err
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, errors.Wrapf(err, "parse config %s", path)
	}
	if err := config.Validate(); err != nil {
		return nil, errors.Wrapf(err, "config %s", path)
	}
	return config, nil
}

// SaveToFile writes the config as YAML, creating parent directories.
func (c *Config) SaveToFile(path string) error {
	path = expandHome(path)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrap(err, "create config directory")
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "marshal config")
	}
	return errors.Wrap(os.WriteFile(path, data, 0644), "write config")
}

// Validate checks the config for values no component accepts.
func (c *Config) Validate() error {
	if c.Report.Path == "" {
		return errors.Wrap(ErrInvalidConfig, "report.path is required")
	}
	if c.Table.Capacity <= 0 {
		return errors.Wrapf(ErrInvalidConfig, "table.capacity must be positive, got %d", c.Table.Capacity)
	}
	if c.Table.LockStripes < 1 || c.Table.LockStripes > c.Table.Capacity {
		return errors.Wrapf(ErrInvalidConfig, "table.lock_stripes must be in [1, %d], got %d", c.Table.Capacity, c.Table.LockStripes)
	}
	if c.Checker.MaxTokenLen <= 0 {
		return errors.Wrapf(ErrInvalidConfig, "checker.max_token_len must be positive, got %d", c.Checker.MaxTokenLen)
	}
	switch checker.DictionaryPolicy(c.Checker.DictionaryPolicy) {
	case checker.PolicyAbort, checker.PolicyEmpty:
	default:
		return errors.Wrapf(ErrInvalidConfig, "checker.dictionary_policy must be %q or %q, got %q",
			checker.PolicyAbort, checker.PolicyEmpty, c.Checker.DictionaryPolicy)
	}
	if c.Coordinator.MaxConcurrent < 0 {
		return errors.Wrapf(ErrInvalidConfig, "coordinator.max_concurrent must not be negative, got %d", c.Coordinator.MaxConcurrent)
	}
	if c.Coordinator.TrendSize <= 0 {
		return errors.Wrapf(ErrInvalidConfig, "coordinator.trend_size must be positive, got %d", c.Coordinator.TrendSize)
	}
	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		return errors.Wrapf(ErrInvalidConfig, "log.level: %v", err)
	}
	return nil
}

// CoordinatorOptions translates c for coordinator.New.
func (c *Config) CoordinatorOptions() coordinator.Config {
	return coordinator.Config{
		Checker: checker.Options{
			MaxTokenLen:      c.Checker.MaxTokenLen,
			DictionaryPolicy: checker.DictionaryPolicy(c.Checker.DictionaryPolicy),
			TableCapacity:    c.Table.Capacity,
		},
		SharedCapacity:    c.Table.Capacity,
		SharedLockStripes: c.Table.LockStripes,
		MaxConcurrent:     c.Coordinator.MaxConcurrent,
		TrendSize:         c.Coordinator.TrendSize,
	}
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}
