package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, root, content string) string {
	t.Helper()
	dir := filepath.Join(root, ".qdixon")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("Failed to create .qdixon dir: %v", err)
	}
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return path
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range GetSupportedEnvVars() {
		t.Setenv(name, "")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Version != CurrentVersion {
		t.Errorf("Version = %d, want %d", cfg.Version, CurrentVersion)
	}
	if cfg.Output.Format != "human" {
		t.Errorf("Output.Format = %q, want %q", cfg.Output.Format, "human")
	}
	if cfg.Output.MeanPlaces != 3 {
		t.Errorf("Output.MeanPlaces = %d, want 3", cfg.Output.MeanPlaces)
	}
	if cfg.Table.Path != "" {
		t.Errorf("Table.Path = %q, want built-in table", cfg.Table.Path)
	}
	if !cfg.History.Enabled {
		t.Error("History should be enabled by default")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() = %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantField string
	}{
		{"default", func(*Config) {}, ""},
		{"bad version", func(c *Config) { c.Version = 2 }, "version"},
		{"bad format", func(c *Config) { c.Output.Format = "xml" }, "output.format"},
		{"negative places", func(c *Config) { c.Output.MeanPlaces = -1 }, "output.meanPlaces"},
		{"too many places", func(c *Config) { c.Output.MeanPlaces = 29 }, "output.meanPlaces"},
		{"bad level", func(c *Config) { c.Logging.Level = "verbose" }, "logging.level"},
		{"upper level", func(c *Config) { c.Logging.Level = "DEBUG" }, ""},
		{"bad log format", func(c *Config) { c.Logging.Format = "text" }, "logging.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantField == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			var cfgErr *ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("Validate() error = %v, want *ConfigError", err)
			}
			if cfgErr.Field != tt.wantField {
				t.Errorf("Field = %q, want %q", cfgErr.Field, tt.wantField)
			}
		})
	}
}

func TestConfigError_Error(t *testing.T) {
	err := &ConfigError{
		Field:   "version",
		Message: "unsupported config version 99",
	}

	got := err.Error()
	want := "config error in field 'version': unsupported config version 99"

	if got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestLoadConfig_Default(t *testing.T) {
	clearEnv(t)
	tmpDir := t.TempDir()

	result, err := LoadConfigWithDetails(tmpDir)
	if err != nil {
		t.Fatalf("LoadConfigWithDetails() error = %v", err)
	}

	if !result.UsedDefaults {
		t.Error("UsedDefaults should be true when no config file exists")
	}
	if result.ConfigPath != "" {
		t.Errorf("ConfigPath = %q, want empty string", result.ConfigPath)
	}
	if result.Config.Output.MeanPlaces != 3 {
		t.Errorf("Output.MeanPlaces = %d, want 3 (default)", result.Config.Output.MeanPlaces)
	}
	if len(result.EnvOverrides) != 0 {
		t.Errorf("len(EnvOverrides) = %d, want 0", len(result.EnvOverrides))
	}
}

func TestLoadConfig_FromFile(t *testing.T) {
	clearEnv(t)
	tmpDir := t.TempDir()
	path := writeConfig(t, tmpDir, `{
		"version": 1,
		"table": {"path": "tables/extended.toml"},
		"output": {"meanPlaces": 4}
	}`)

	result, err := LoadConfigWithDetails(tmpDir)
	if err != nil {
		t.Fatalf("LoadConfigWithDetails() error = %v", err)
	}

	if result.ConfigPath != path {
		t.Errorf("ConfigPath = %q, want %q", result.ConfigPath, path)
	}
	cfg := result.Config
	if cfg.Table.Path != "tables/extended.toml" {
		t.Errorf("Table.Path = %q, want %q", cfg.Table.Path, "tables/extended.toml")
	}
	if cfg.Output.MeanPlaces != 4 {
		t.Errorf("Output.MeanPlaces = %d, want 4", cfg.Output.MeanPlaces)
	}
	// keys missing from the file keep their defaults
	if cfg.Output.Format != "human" {
		t.Errorf("Output.Format = %q, want %q (default)", cfg.Output.Format, "human")
	}
	if !cfg.History.Enabled {
		t.Error("History.Enabled should keep its default")
	}
}

func TestLoadConfig_InvalidJSON(t *testing.T) {
	clearEnv(t)
	tmpDir := t.TempDir()
	writeConfig(t, tmpDir, `{"version": 1,`)

	if _, err := LoadConfig(tmpDir); err == nil {
		t.Error("LoadConfig() should fail on malformed JSON")
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	tests := []struct {
		name     string
		envVars  map[string]string
		validate func(t *testing.T, result *LoadResult)
	}{
		{
			name:    "format override",
			envVars: map[string]string{"QDIXON_OUTPUT_FORMAT": "json"},
			validate: func(t *testing.T, result *LoadResult) {
				if result.Config.Output.Format != "json" {
					t.Errorf("Output.Format = %q, want %q", result.Config.Output.Format, "json")
				}
				if len(result.EnvOverrides) != 1 {
					t.Errorf("len(EnvOverrides) = %d, want 1", len(result.EnvOverrides))
				}
			},
		},
		{
			name:    "int override",
			envVars: map[string]string{"QDIXON_OUTPUT_MEANPLACES": "5"},
			validate: func(t *testing.T, result *LoadResult) {
				if result.Config.Output.MeanPlaces != 5 {
					t.Errorf("Output.MeanPlaces = %d, want 5", result.Config.Output.MeanPlaces)
				}
				if result.EnvOverrides[0].Key != "output.meanPlaces" {
					t.Errorf("EnvOverrides[0].Key = %q, want %q", result.EnvOverrides[0].Key, "output.meanPlaces")
				}
			},
		},
		{
			name:    "bool override",
			envVars: map[string]string{"QDIXON_HISTORY_ENABLED": "false"},
			validate: func(t *testing.T, result *LoadResult) {
				if result.Config.History.Enabled {
					t.Error("History.Enabled should be false")
				}
			},
		},
		{
			name: "multiple overrides",
			envVars: map[string]string{
				"QDIXON_LOGGING_LEVEL": "debug",
				"QDIXON_TABLE_PATH":    "/tmp/table.yaml",
				"QDIXON_HISTORY_DIR":   "/tmp/history",
			},
			validate: func(t *testing.T, result *LoadResult) {
				cfg := result.Config
				if cfg.Logging.Level != "debug" {
					t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "debug")
				}
				if cfg.Table.Path != "/tmp/table.yaml" {
					t.Errorf("Table.Path = %q, want %q", cfg.Table.Path, "/tmp/table.yaml")
				}
				if cfg.History.Dir != "/tmp/history" {
					t.Errorf("History.Dir = %q, want %q", cfg.History.Dir, "/tmp/history")
				}
				if len(result.EnvOverrides) != 3 {
					t.Errorf("len(EnvOverrides) = %d, want 3", len(result.EnvOverrides))
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			tmpDir := t.TempDir()
			writeConfig(t, tmpDir, `{"version": 1, "output": {"format": "human", "meanPlaces": 2}}`)

			result, err := LoadConfigWithDetails(tmpDir)
			if err != nil {
				t.Fatalf("LoadConfigWithDetails() error = %v", err)
			}
			tt.validate(t, result)
		})
	}
}

func TestLoadConfig_InvalidIntEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("QDIXON_OUTPUT_MEANPLACES", "not-a-number")

	if _, err := LoadConfig(t.TempDir()); err == nil {
		t.Error("LoadConfig() should fail when an int override does not parse")
	}
}

func TestLoadConfigWithDetails_EnvConfigPath(t *testing.T) {
	clearEnv(t)
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "custom-config.json")
	if err := os.WriteFile(configPath, []byte(`{"version": 1, "output": {"meanPlaces": 6}}`), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	t.Setenv(ConfigPathEnvVar, configPath)

	result, err := LoadConfigWithDetails(t.TempDir())
	if err != nil {
		t.Fatalf("LoadConfigWithDetails() error = %v", err)
	}
	if result.ConfigPath != configPath {
		t.Errorf("ConfigPath = %q, want %q", result.ConfigPath, configPath)
	}
	if result.Config.Output.MeanPlaces != 6 {
		t.Errorf("Output.MeanPlaces = %d, want 6", result.Config.Output.MeanPlaces)
	}
}

func TestLoadConfigWithDetails_MissingEnvConfigPath(t *testing.T) {
	clearEnv(t)
	t.Setenv(ConfigPathEnvVar, filepath.Join(t.TempDir(), "missing.json"))

	if _, err := LoadConfigWithDetails(t.TempDir()); err == nil {
		t.Error("an explicit config path that does not exist should be an error")
	}
}

func TestLoadConfigFromPath(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "c.json")
	if err := os.WriteFile(path, []byte(`{"version": 1, "logging": {"level": "error"}}`), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	cfg, err := LoadConfigFromPath(path)
	if err != nil {
		t.Fatalf("LoadConfigFromPath() error = %v", err)
	}
	if cfg.Logging.Level != "error" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "error")
	}

	if _, err := LoadConfigFromPath(filepath.Join(tmpDir, "nope.json")); err == nil {
		t.Error("LoadConfigFromPath() should fail for a missing file")
	}
}

func TestConfig_Save(t *testing.T) {
	clearEnv(t)
	tmpDir := t.TempDir()

	cfg := DefaultConfig()
	cfg.Output.MeanPlaces = 5
	cfg.Table.Path = "extended.yaml"

	if err := cfg.Save(tmpDir); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	configPath := filepath.Join(tmpDir, ".qdixon", "config.json")
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		t.Fatal("Config file was not created")
	}

	loaded, err := LoadConfig(tmpDir)
	if err != nil {
		t.Fatalf("LoadConfig() after save error = %v", err)
	}
	if loaded.Output.MeanPlaces != 5 {
		t.Errorf("Loaded Output.MeanPlaces = %d, want 5", loaded.Output.MeanPlaces)
	}
	if loaded.Table.Path != "extended.yaml" {
		t.Errorf("Loaded Table.Path = %q, want %q", loaded.Table.Path, "extended.yaml")
	}
}

func TestGetSupportedEnvVars(t *testing.T) {
	vars := GetSupportedEnvVars()

	want := map[string]bool{
		"QDIXON_OUTPUT_FORMAT":     false,
		"QDIXON_OUTPUT_MEANPLACES": false,
		"QDIXON_CONFIG_PATH":       false,
	}
	for _, v := range vars {
		if _, ok := want[v]; ok {
			want[v] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("GetSupportedEnvVars() missing %s", name)
		}
	}
	for i := 1; i < len(vars); i++ {
		if vars[i] < vars[i-1] {
			t.Fatalf("GetSupportedEnvVars() not sorted: %v", vars)
		}
	}
}
