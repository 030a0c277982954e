// Package config handles configuration loading and management for dispatchd.
// It supports XDG config paths, project-level overrides, and environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Config holds all configuration for dispatchd.
type Config struct {
	Anthropic  AnthropicConfig  `mapstructure:"anthropic"`
	Store      StoreConfig      `mapstructure:"store"`
	Thresholds ThresholdsConfig `mapstructure:"thresholds"`
	Learning   LearningConfig   `mapstructure:"learning"`
	Agents     AgentsConfig     `mapstructure:"agents"`
	Lexicon    LexiconConfig    `mapstructure:"lexicon"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

// StoreConfig holds persistence settings.
type StoreConfig struct {
	// Path is the SQLite database location. Empty selects the XDG default.
	Path string `mapstructure:"path"`
	// InMemory switches to the non-durable in-memory store.
	InMemory bool `mapstructure:"in_memory"`
}

// ThresholdsConfig holds the initial routing confidence thresholds.
// The learning loop adjusts them at runtime within [0.1, 0.9].
type ThresholdsConfig struct {
	High   float64 `mapstructure:"high"`
	Medium float64 `mapstructure:"medium"`
}

// LearningConfig holds learning-loop settings.
type LearningConfig struct {
	// Rate is the initial EMA learning rate.
	Rate float64 `mapstructure:"rate"`
	// Decay multiplies the rate after every cycle.
	Decay float64 `mapstructure:"decay"`
}

// AgentsConfig holds agent execution settings.
type AgentsConfig struct {
	// Timeout bounds each agent's execution per request.
	Timeout time.Duration `mapstructure:"timeout"`
	// LatencyScale stretches the simulated fleet's response delay.
	LatencyScale time.Duration `mapstructure:"latency_scale"`
	// UseAPI switches the specialist agents to the Anthropic API.
	UseAPI bool `mapstructure:"use_api"`
}

// LexiconConfig holds keyword lexicon settings.
type LexiconConfig struct {
	// Path is an optional lexicon YAML file. When set it overrides the
	// built-in lexicons and is watched for changes.
	Path string `mapstructure:"path"`
}

// LoggingConfig holds structured-logging settings.
type LoggingConfig struct {
	// Level is the minimum log level (debug, info, warn, error).
	Level string `mapstructure:"level"`
	// File is an optional log file path. Empty logs to stderr only.
	File string `mapstructure:"file"`
	// MaxSizeMB caps the log file size before rotation.
	MaxSizeMB int `mapstructure:"max_size_mb"`
	// MaxBackups caps how many rotated files are kept.
	MaxBackups int `mapstructure:"max_backups"`
	// MaxAgeDays caps how long rotated files are kept.
	MaxAgeDays int `mapstructure:"max_age_days"`
}

// Validate checks cross-field constraints the loader cannot express.
func (c *Config) Validate() error {
	if c.Thresholds.High <= c.Thresholds.Medium {
		return fmt.Errorf("thresholds.high (%.2f) must exceed thresholds.medium (%.2f)",
			c.Thresholds.High, c.Thresholds.Medium)
	}
	if c.Learning.Rate <= 0 || c.Learning.Rate > 1 {
		return fmt.Errorf("learning.rate %.2f out of (0, 1]", c.Learning.Rate)
	}
	if c.Learning.Decay <= 0 || c.Learning.Decay > 1 {
		return fmt.Errorf("learning.decay %.2f out of (0, 1]", c.Learning.Decay)
	}
	return nil
}

// GetUserConfigPath returns the path to the user config file.
func GetUserConfigPath() string {
	return filepath.Join(getUserConfigDir(), "config.yaml")
}

// getUserConfigDir returns the XDG config directory for dispatchd.
func getUserConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "dispatchd")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".config", "dispatchd")
	}
	return filepath.Join(home, ".config", "dispatchd")
}

// findProjectConfig searches for .dispatchd.yaml in the current directory
// and parents.
func findProjectConfig() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		configPath := filepath.Join(cwd, ".dispatchd.yaml")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(cwd)
		if parent == cwd {
			break
		}
		cwd = parent
	}

	return ""
}

// expandEnv expands ${VAR} references in a string.
func expandEnv(s string) string {
	return os.ExpandEnv(s)
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Anthropic: AnthropicConfig{
			APIKey: "",
			Model:  "",
		},
		Store: StoreConfig{
			Path:     "",
			InMemory: false,
		},
		Thresholds: ThresholdsConfig{
			High:   0.70,
			Medium: 0.60,
		},
		Learning: LearningConfig{
			Rate:  0.1,
			Decay: 0.95,
		},
		Agents: AgentsConfig{
			Timeout:      30 * time.Second,
			LatencyScale: 50 * time.Millisecond,
			UseAPI:       false,
		},
		Logging: LoggingConfig{
			Level:      "info",
			File:       "",
			MaxSizeMB:  50,
			MaxBackups: 3,
			MaxAgeDays: 14,
		},
	}
}
