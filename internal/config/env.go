package config

import (
	"os"
	"sort"
	"strings"

	"github.com/spf13/viper"
)

// configKeys lists every settable key. Viper only binds environment
// variables for keys it knows about, so each gets a default here.
var configKeys = []string{
	"version",
	"table.path",
	"output.format",
	"output.meanPlaces",
	"history.enabled",
	"history.dir",
	"logging.level",
	"logging.format",
}

// newViper returns a viper instance with defaults and QDIXON_* env binding.
func newViper() *viper.Viper {
	v := newViperDefaults()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func newViperDefaults() *viper.Viper {
	d := DefaultConfig()
	v := viper.New()
	v.SetDefault("version", d.Version)
	v.SetDefault("table.path", d.Table.Path)
	v.SetDefault("output.format", d.Output.Format)
	v.SetDefault("output.meanPlaces", d.Output.MeanPlaces)
	v.SetDefault("history.enabled", d.History.Enabled)
	v.SetDefault("history.dir", d.History.Dir)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	return v
}

// EnvVarFor returns the environment variable that overrides key.
func EnvVarFor(key string) string {
	return EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// GetSupportedEnvVars returns every recognised environment variable, sorted.
func GetSupportedEnvVars() []string {
	vars := make([]string, 0, len(configKeys)+1)
	for _, key := range configKeys {
		vars = append(vars, EnvVarFor(key))
	}
	vars = append(vars, ConfigPathEnvVar)
	sort.Strings(vars)
	return vars
}

func activeOverrides() []EnvOverride {
	var overrides []EnvOverride
	for _, key := range configKeys {
		name := EnvVarFor(key)
		if value, ok := os.LookupEnv(name); ok && value != "" {
			overrides = append(overrides, EnvOverride{EnvVar: name, Key: key, Value: value})
		}
	}
	return overrides
}
