package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ogre-kun/outliers-calculator/internal/config"
	"github.com/ogre-kun/outliers-calculator/internal/paths"
)

// ConfigShowResponse is the response format for config show
type ConfigShowResponse struct {
	ConfigPath   string               `json:"configPath,omitempty"`
	UsedDefaults bool                 `json:"usedDefaults"`
	EnvOverrides []config.EnvOverride `json:"envOverrides,omitempty"`
	Config       *config.Config       `json:"config"`

	settings []configSetting
}

type configSetting struct {
	key          string
	value        string
	defaultValue string
}

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage qdixon configuration",
		Long:  "View and manage qdixon configuration stored in .qdixon/config.json",
	}

	cmd.AddCommand(newConfigShowCmd(a))
	cmd.AddCommand(newConfigEnvCmd())
	cmd.AddCommand(newConfigInitCmd(a))
	return cmd
}

func newConfigShowCmd(a *app) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := a.outputFormat(format)
			if err != nil {
				return err
			}
			resp := &ConfigShowResponse{
				ConfigPath:   a.loaded.ConfigPath,
				UsedDefaults: a.loaded.UsedDefaults,
				EnvOverrides: a.loaded.EnvOverrides,
				Config:       a.cfg,
				settings:     describeConfig(a.cfg, config.DefaultConfig()),
			}
			return writeResponse(cmd.OutOrStdout(), resp, f)
		},
	}
	cmd.Flags().StringVar(&format, "format", "", "Output format (human, json)")
	return cmd
}

func newConfigEnvCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "env",
		Short: "List supported environment variables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range config.GetSupportedEnvVars() {
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), name); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func newConfigInitCmd(a *app) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default .qdixon/config.json",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := paths.GetConfigPath(a.dir)
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
			if err := config.DefaultConfig().Save(a.dir); err != nil {
				return err
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return err
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config file")
	return cmd
}

func describeConfig(cfg, defaults *config.Config) []configSetting {
	return []configSetting{
		{"version", strconv.Itoa(cfg.Version), strconv.Itoa(defaults.Version)},
		{"table.path", valueOrDefault(cfg.Table.Path, "(built-in)"), "(built-in)"},
		{"output.format", cfg.Output.Format, defaults.Output.Format},
		{"output.meanPlaces", strconv.Itoa(cfg.Output.MeanPlaces), strconv.Itoa(defaults.Output.MeanPlaces)},
		{"history.enabled", strconv.FormatBool(cfg.History.Enabled), strconv.FormatBool(defaults.History.Enabled)},
		{"history.dir", valueOrDefault(cfg.History.Dir, "(home)"), "(home)"},
		{"logging.level", strings.ToLower(cfg.Logging.Level), defaults.Logging.Level},
		{"logging.format", cfg.Logging.Format, defaults.Logging.Format},
	}
}

func valueOrDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
