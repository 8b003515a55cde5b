package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/ogre-kun/outliers-calculator/internal/paths"
)

// CurrentVersion is the only supported config schema version.
const CurrentVersion = 1

// EnvPrefix prefixes every environment override.
const EnvPrefix = "QDIXON"

// ConfigPathEnvVar points at an explicit config file.
const ConfigPathEnvVar = "QDIXON_CONFIG_PATH"

// Config represents the complete qdixon configuration
type Config struct {
	Version int           `json:"version" mapstructure:"version"`
	Table   TableConfig   `json:"table" mapstructure:"table"`
	Output  OutputConfig  `json:"output" mapstructure:"output"`
	History HistoryConfig `json:"history" mapstructure:"history"`
	Logging LoggingConfig `json:"logging" mapstructure:"logging"`
}

// TableConfig selects the critical value table
type TableConfig struct {
	// Path to a .toml, .yaml or .json table file. Empty means the built-in table.
	Path string `json:"path" mapstructure:"path"`
}

// OutputConfig contains report rendering options
type OutputConfig struct {
	Format     string `json:"format" mapstructure:"format"`
	MeanPlaces int    `json:"meanPlaces" mapstructure:"meanPlaces"`
}

// HistoryConfig contains analysis history options
type HistoryConfig struct {
	Enabled bool   `json:"enabled" mapstructure:"enabled"`
	Dir     string `json:"dir" mapstructure:"dir"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Format string `json:"format" mapstructure:"format"`
	Level  string `json:"level" mapstructure:"level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version: CurrentVersion,
		Output: OutputConfig{
			Format:     "human",
			MeanPlaces: 3,
		},
		History: HistoryConfig{
			Enabled: true,
		},
		Logging: LoggingConfig{
			Format: "human",
			Level:  "warn",
		},
	}
}

// LoadResult describes where a configuration came from
type LoadResult struct {
	Config       *Config
	ConfigPath   string
	UsedDefaults bool
	EnvOverrides []EnvOverride
}

// EnvOverride records one environment variable that changed a setting
type EnvOverride struct {
	EnvVar string `json:"envVar"`
	Key    string `json:"key"`
	Value  string `json:"value"`
}

// LoadConfig loads configuration from .qdixon/config.json under root
func LoadConfig(root string) (*Config, error) {
	result, err := LoadConfigWithDetails(root)
	if err != nil {
		return nil, err
	}
	return result.Config, nil
}

// LoadConfigWithDetails loads configuration and reports its sources.
// $QDIXON_CONFIG_PATH replaces the project config file; QDIXON_* variables
// override individual keys.
func LoadConfigWithDetails(root string) (*LoadResult, error) {
	v := newViper()

	explicit := os.Getenv(ConfigPathEnvVar)
	if explicit != "" {
		v.SetConfigFile(explicit)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("json")
		v.AddConfigPath(paths.GetProjectDataDir(root))
	}

	result := &LoadResult{}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if explicit != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		result.UsedDefaults = true
	} else {
		result.ConfigPath = v.ConfigFileUsed()
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	result.Config = &cfg
	result.EnvOverrides = activeOverrides()
	return result, nil
}

// LoadConfigFromPath loads one config file, ignoring the environment.
func LoadConfigFromPath(path string) (*Config, error) {
	v := newViperDefaults()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config %s: %w", path, err)
	}
	return &cfg, nil
}

// Save writes the configuration to .qdixon/config.json under root
func (c *Config) Save(root string) error {
	configPath := paths.GetConfigPath(root)
	if _, err := paths.EnsureDir(filepath.Dir(configPath)); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(configPath, append(data, '\n'), 0644)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Version != CurrentVersion {
		return &ConfigError{Field: "version", Message: fmt.Sprintf("unsupported config version %d", c.Version)}
	}
	if !oneOf(c.Output.Format, "human", "json") {
		return &ConfigError{Field: "output.format", Message: fmt.Sprintf("unknown format %q (want human or json)", c.Output.Format)}
	}
	if c.Output.MeanPlaces < 0 || c.Output.MeanPlaces > 28 {
		return &ConfigError{Field: "output.meanPlaces", Message: fmt.Sprintf("%d is outside 0..28", c.Output.MeanPlaces)}
	}
	if !oneOf(strings.ToLower(c.Logging.Level), "debug", "info", "warn", "warning", "error") {
		return &ConfigError{Field: "logging.level", Message: fmt.Sprintf("unknown level %q", c.Logging.Level)}
	}
	if !oneOf(c.Logging.Format, "human", "json") {
		return &ConfigError{Field: "logging.format", Message: fmt.Sprintf("unknown format %q (want human or json)", c.Logging.Format)}
	}
	return nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error in field '" + e.Field + "': " + e.Message
}

func oneOf(s string, allowed ...string) bool {
	for _, a := range allowed {
		if s == a {
			return true
		}
	}
	return false
}
