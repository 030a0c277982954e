package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Load loads configuration from XDG paths, project overrides, and
// environment variables.
// Precedence (highest to lowest):
//  1. Environment variables (DISPATCHD_*, ANTHROPIC_API_KEY)
//  2. Project config (.dispatchd.yaml in current directory or parent)
//  3. User config (~/.config/dispatchd/config.yaml)
//  4. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	userConfigDir := getUserConfigDir()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(userConfigDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading user config: %w", err)
		}
	}

	// Project config takes precedence over the user config.
	projectConfig := findProjectConfig()
	if projectConfig != "" {
		projectViper := viper.New()
		projectViper.SetConfigFile(projectConfig)
		if err := projectViper.ReadInConfig(); err == nil {
			if err := v.MergeConfigMap(projectViper.AllSettings()); err != nil {
				return nil, fmt.Errorf("merging project config: %w", err)
			}
		}
	}

	v.AutomaticEnv()
	v.SetEnvPrefix("DISPATCHD")

	v.BindEnv("anthropic.api_key", "ANTHROPIC_API_KEY")
	v.BindEnv("store.path", "DISPATCHD_STORE_PATH")
	v.BindEnv("lexicon.path", "DISPATCHD_LEXICON_PATH")
	v.BindEnv("logging.level", "DISPATCHD_LOG_LEVEL")

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.Anthropic.APIKey = expandEnv(cfg.Anthropic.APIKey)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromPath loads configuration from a specific path (for testing).
func LoadFromPath(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.Anthropic.APIKey = expandEnv(cfg.Anthropic.APIKey)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// setDefaults configures default values.
func setDefaults(v *viper.Viper) {
	def := Default()

	v.SetDefault("anthropic.api_key", def.Anthropic.APIKey)
	v.SetDefault("anthropic.model", def.Anthropic.Model)

	v.SetDefault("store.path", def.Store.Path)
	v.SetDefault("store.in_memory", def.Store.InMemory)

	v.SetDefault("thresholds.high", def.Thresholds.High)
	v.SetDefault("thresholds.medium", def.Thresholds.Medium)

	v.SetDefault("learning.rate", def.Learning.Rate)
	v.SetDefault("learning.decay", def.Learning.Decay)

	v.SetDefault("agents.timeout", def.Agents.Timeout.String())
	v.SetDefault("agents.latency_scale", def.Agents.LatencyScale.String())
	v.SetDefault("agents.use_api", def.Agents.UseAPI)

	v.SetDefault("lexicon.path", "")

	v.SetDefault("logging.level", def.Logging.Level)
	v.SetDefault("logging.file", def.Logging.File)
	v.SetDefault("logging.max_size_mb", def.Logging.MaxSizeMB)
	v.SetDefault("logging.max_backups", def.Logging.MaxBackups)
	v.SetDefault("logging.max_age_days", def.Logging.MaxAgeDays)
}
