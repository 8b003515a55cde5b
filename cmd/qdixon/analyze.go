package main

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	qerrors "github.com/ogre-kun/outliers-calculator/internal/errors"
	"github.com/ogre-kun/outliers-calculator/internal/history"
	"github.com/ogre-kun/outliers-calculator/internal/output"
	"github.com/ogre-kun/outliers-calculator/internal/qdixon"
	"github.com/ogre-kun/outliers-calculator/internal/sample"
)

type analyzeOptions struct {
	input  string
	table  string
	format string
	places int
	save   bool
}

func newAnalyzeCmd(a *app) *cobra.Command {
	opts := &analyzeOptions{}

	cmd := &cobra.Command{
		Use:   "analyze [values...]",
		Short: "Trim outliers from a sample with the Dixon Q-test",
		Long: `Run the Dixon Q-test repeatedly on a sample of 3 to 30 values.

Values are separated by commas, semicolons or whitespace. Place them after
"--" when any is negative so they are not read as flags.

Examples:
  qdixon analyze 4.2 2.6 1.7 6.8 3.9 9.1 5.5 7.3 8.2 2.1 5.7 52.0
  qdixon analyze -- -74.2 1.23 2.34 600.22 701.22
  qdixon analyze --input data.txt --table extended.toml --format json
  cat data.csv | qdixon analyze --input - --save`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runAnalyze(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.input, "input", "i", "", "Read values from a file (- for stdin)")
	cmd.Flags().StringVar(&opts.table, "table", "", "Critical value table file (.toml, .yaml, .json)")
	cmd.Flags().StringVar(&opts.format, "format", "", "Output format (human, json)")
	cmd.Flags().IntVar(&opts.places, "places", -1, "Decimal places for the trimmed mean (default from config)")
	cmd.Flags().BoolVar(&opts.save, "save", false, "Record the run in the analysis history")

	return cmd
}

func (a *app) runAnalyze(cmd *cobra.Command, args []string, opts *analyzeOptions) error {
	format, err := a.outputFormat(opts.format)
	if err != nil {
		return err
	}

	// -1 is the flag default and defers to the config.
	places := a.cfg.Output.MeanPlaces
	if opts.places != -1 {
		if opts.places < 0 || opts.places > 28 {
			return qerrors.Newf(qerrors.InvalidInput, "--places must be between 0 and 28, got %d", opts.places)
		}
		places = opts.places
	}

	values, err := readSample(cmd, args, opts.input)
	if err != nil {
		return err
	}

	table, source, err := a.loadTable(opts.table)
	if err != nil {
		return err
	}

	a.logger.Debug("Analyzing sample", "size", len(values), "values", sample.Join(values), "table", table.Name(), "source", source)
	start := time.Now()

	res, err := qdixon.Analyze(values, table)
	if err != nil {
		a.logger.Debug("Analysis failed", "code", string(qerrors.CodeOf(err)))
		return err
	}

	report, err := output.BuildReport(res, int32(places))
	if err != nil {
		return err
	}
	a.logger.Info("Analysis finished",
		"rounds", res.Rounds(),
		"outliers", len(res.Outliers()),
		"stop", string(res.StopReason()),
		"duration", time.Since(start),
	)

	if opts.save {
		if err := a.saveRun(cmd, report); err != nil {
			return err
		}
	}

	return writeResponse(cmd.OutOrStdout(), report, format)
}

// readSample takes values from --input or the positional arguments, never both.
func readSample(cmd *cobra.Command, args []string, input string) ([]decimal.Decimal, error) {
	switch {
	case input != "" && len(args) > 0:
		return nil, qerrors.Newf(qerrors.InvalidInput, "pass values as arguments or with --input, not both")
	case input == "-":
		return sample.Read(cmd.InOrStdin())
	case input != "":
		return sample.ReadFile(input)
	default:
		return sample.Parse(strings.Join(args, " "))
	}
}

// saveRun records report and stamps it with the new run id.
func (a *app) saveRun(cmd *cobra.Command, report *output.Report) error {
	store, err := a.openHistory()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	payload, err := output.DeterministicEncode(report)
	if err != nil {
		return err
	}

	run := &history.Run{
		Table:      report.Table,
		SampleSize: report.SampleSize,
		Outliers:   len(report.Outliers),
		Rounds:     report.Rounds,
		Mean:       report.Mean,
		StopReason: report.StopReason,
		Report:     payload,
	}
	if err := store.Record(newContext(cmd), run); err != nil {
		return err
	}

	report.Run = &output.RunInfo{ID: run.ID, RecordedAt: run.RecordedAt}
	a.logger.Info("Recorded run", "runId", run.ID)
	return nil
}
