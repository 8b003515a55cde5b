package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ogre-kun/outliers-calculator/internal/config"
	qerrors "github.com/ogre-kun/outliers-calculator/internal/errors"
	"github.com/ogre-kun/outliers-calculator/internal/history"
	"github.com/ogre-kun/outliers-calculator/internal/paths"
	"github.com/ogre-kun/outliers-calculator/internal/qdixon"
	"github.com/ogre-kun/outliers-calculator/internal/slogutil"
	"github.com/ogre-kun/outliers-calculator/internal/tablefile"
	"github.com/ogre-kun/outliers-calculator/internal/version"
)

// app carries state shared by every subcommand of one invocation.
type app struct {
	dir       string
	verbosity int
	quiet     bool

	loaded *config.LoadResult
	cfg    *config.Config
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "qdixon",
		Short: "qdixon - Dixon Q-test outlier trimming",
		Long: `qdixon repeatedly applies Dixon's Q-test to a small sample (3 to 30 values),
removing low and high outliers until none qualify, and reports the trimmed
sample, its mean, and every trimming round.`,
		Version:       version.Info(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load(cmd)
		},
	}

	root.SetVersionTemplate("qdixon version {{.Version}}\n")
	root.PersistentFlags().StringVar(&a.dir, "dir", ".", "Project directory holding .qdixon/config.json")
	root.PersistentFlags().CountVarP(&a.verbosity, "verbose", "v", "Increase log verbosity (-v info, -vv debug)")
	root.PersistentFlags().BoolVarP(&a.quiet, "quiet", "q", false, "Suppress all log output")

	root.AddCommand(newAnalyzeCmd(a))
	root.AddCommand(newTableCmd(a))
	root.AddCommand(newHistoryCmd(a))
	root.AddCommand(newConfigCmd(a))
	root.AddCommand(newVersionCmd())

	return root
}

// load reads configuration and builds the logger. Config errors are fatal.
func (a *app) load(cmd *cobra.Command) error {
	result, err := config.LoadConfigWithDetails(a.dir)
	if err != nil {
		return err
	}
	if err := result.Config.Validate(); err != nil {
		return err
	}
	a.loaded = result
	a.cfg = result.Config

	base := slogutil.LevelFromString(a.cfg.Logging.Level)
	level := slogutil.LevelFromVerbosity(a.verbosity, a.quiet, base)
	a.logger = slogutil.NewLoggerWithFormat(cmd.ErrOrStderr(), level, a.cfg.Logging.Format)

	if result.UsedDefaults {
		a.logger.Debug("No config file, using defaults", "dir", a.dir)
	} else {
		a.logger.Debug("Loaded config", "path", result.ConfigPath)
	}
	for _, ov := range result.EnvOverrides {
		a.logger.Debug("Environment override", "env", ov.EnvVar, "key", ov.Key)
	}
	return nil
}

func newContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// loadTable resolves the critical value table.
// Precedence: --table flag > table.path in config > built-in table.
// A relative config path is taken relative to the project directory.
func (a *app) loadTable(flagPath string) (*qdixon.CriticalTable, string, error) {
	path := flagPath
	if path == "" && a.cfg.Table.Path != "" {
		path = a.cfg.Table.Path
		if !filepath.IsAbs(path) {
			path = filepath.Join(a.dir, path)
		}
	}
	if path == "" {
		return qdixon.DefaultTable(), "built-in", nil
	}

	table, err := tablefile.Load(path)
	if err != nil {
		return nil, "", err
	}
	a.logger.Info("Loaded critical value table", "path", path, "entries", table.Len())
	return table, path, nil
}

// openHistory opens the history store named by the configuration.
func (a *app) openHistory() (*history.Store, error) {
	if !a.cfg.History.Enabled {
		return nil, &config.ConfigError{Field: "history.enabled", Message: "history is disabled"}
	}
	dir, err := paths.GetHistoryDir(a.cfg.History.Dir)
	if err != nil {
		return nil, err
	}
	return history.Open(dir, a.logger.With("component", "history"))
}

// outputFormat returns the --format flag if given, else the configured format.
func (a *app) outputFormat(flag string) (OutputFormat, error) {
	f := flag
	if f == "" {
		f = a.cfg.Output.Format
	}
	switch OutputFormat(f) {
	case FormatHuman, FormatJSON:
		return OutputFormat(f), nil
	default:
		return "", qerrors.Newf(qerrors.InvalidInput, "unsupported format: %s (want human or json)", f)
	}
}

// writeResponse formats resp and writes it with a trailing newline.
func writeResponse(w io.Writer, resp interface{}, format OutputFormat) error {
	out, err := FormatResponse(resp, format)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, out)
	return err
}
