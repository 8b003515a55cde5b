package main

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	qerrors "github.com/ogre-kun/outliers-calculator/internal/errors"
	"github.com/ogre-kun/outliers-calculator/internal/output"
)

// OutputFormat represents the output format type
type OutputFormat string

const (
	FormatJSON  OutputFormat = "json"
	FormatHuman OutputFormat = "human"
)

// FormatResponse formats a response according to the specified format
func FormatResponse(resp interface{}, format OutputFormat) (string, error) {
	switch format {
	case FormatJSON:
		return formatJSON(resp)
	case FormatHuman:
		return formatHuman(resp)
	default:
		return "", fmt.Errorf("unsupported format: %s", format)
	}
}

// formatJSON formats the response as indented JSON with sorted keys
func formatJSON(resp interface{}) (string, error) {
	data, err := output.DeterministicEncodeIndented(resp, "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return string(data), nil
}

// formatHuman formats the response in human-readable format
func formatHuman(resp interface{}) (string, error) {
	switch v := resp.(type) {
	case *output.Report:
		return formatReportHuman(v)
	case *TableResponse:
		return formatTableHuman(v)
	case *HistoryListResponse:
		return formatHistoryListHuman(v)
	case *ConfigShowResponse:
		return formatConfigHuman(v)
	default:
		// For unknown types, fall back to JSON
		return formatJSON(resp)
	}
}

func formatReportHuman(r *output.Report) (string, error) {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Dixon Q-test (table: %s)\n", r.Table))
	b.WriteString(strings.Repeat("=", 60) + "\n\n")

	if r.Run != nil {
		b.WriteString(fmt.Sprintf("Run: %s (%s)\n\n", r.Run.ID, r.Run.RecordedAt.Format(time.RFC3339)))
	}

	b.WriteString(fmt.Sprintf("Sample (%d): %s\n", r.SampleSize, strings.Join(r.Sample, ", ")))
	b.WriteString(fmt.Sprintf("Sorted: %s\n", strings.Join(r.Sorted, ", ")))
	b.WriteString(fmt.Sprintf("Critical value: %s\n\n", r.CriticalValue))

	if len(r.Steps) == 0 {
		b.WriteString("No trimming rounds.\n\n")
	} else {
		b.WriteString("Rounds:\n")
		for _, s := range r.Steps {
			b.WriteString(fmt.Sprintf("  %d. %-8s %s  n %d -> %d  Q low %s  Q high %s  critical %s\n",
				s.Round, s.Kind, s.Regime, s.SizeBefore, s.SizeAfter, s.Low, s.High, s.Critical))
			b.WriteString(fmt.Sprintf("     removed: %s\n", strings.Join(s.Removed, ", ")))
		}
		b.WriteString("\n")
	}

	b.WriteString(fmt.Sprintf("Outliers (%d): %s\n", len(r.Outliers), joinOrNone(r.Outliers)))
	b.WriteString(fmt.Sprintf("Trimmed (%d): %s\n", r.TrimmedSize, strings.Join(r.Trimmed, ", ")))
	b.WriteString(fmt.Sprintf("Mean: %s\n", r.Mean))
	b.WriteString(fmt.Sprintf("Averages: original %s, trimmed %s\n", r.Plot.OriginalAverage, r.Plot.TrimmedAverage))
	b.WriteString(fmt.Sprintf("Stopped: %s", describeStop(r.StopReason)))

	return b.String(), nil
}

func formatTableHuman(t *TableResponse) (string, error) {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Critical values: %s (%s)\n", t.Name, t.Source))
	b.WriteString(strings.Repeat("=", 30) + "\n")
	b.WriteString(fmt.Sprintf("%6s  %s\n", "size", "value"))
	for _, e := range t.Entries {
		b.WriteString(fmt.Sprintf("%6d  %s\n", e.Size, e.Value))
	}
	b.WriteString(fmt.Sprintf("\n%d entries, sizes %s", len(t.Entries), t.Coverage))

	return b.String(), nil
}

func formatHistoryListHuman(h *HistoryListResponse) (string, error) {
	if len(h.Runs) == 0 {
		return "No recorded runs.", nil
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("%-36s  %-20s  %4s  %8s  %6s  %s\n", "ID", "RECORDED", "N", "OUTLIERS", "ROUNDS", "MEAN"))
	for _, r := range h.Runs {
		b.WriteString(fmt.Sprintf("%-36s  %-20s  %4d  %8d  %6d  %s\n",
			r.ID, r.RecordedAt.Format(time.RFC3339), r.SampleSize, r.Outliers, r.Rounds, r.Mean))
	}
	b.WriteString(fmt.Sprintf("\n%d run(s)", len(h.Runs)))
	return b.String(), nil
}

func formatConfigHuman(c *ConfigShowResponse) (string, error) {
	var b strings.Builder

	b.WriteString("qdixon Configuration\n")
	b.WriteString(strings.Repeat("─", 50) + "\n")
	if c.UsedDefaults {
		b.WriteString("Source: defaults (no config file found)\n")
	} else if c.ConfigPath != "" {
		b.WriteString(fmt.Sprintf("Source: %s\n", c.ConfigPath))
	}

	if len(c.EnvOverrides) > 0 {
		b.WriteString("\nEnvironment Overrides:\n")
		for _, ov := range c.EnvOverrides {
			b.WriteString(fmt.Sprintf("  %s=%s → %s\n", ov.EnvVar, ov.Value, ov.Key))
		}
	}

	cfg := c.settings
	b.WriteString("\n")
	for _, s := range cfg {
		modified := ""
		if s.value != s.defaultValue {
			modified = fmt.Sprintf(" (default: %s)", s.defaultValue)
		}
		b.WriteString(fmt.Sprintf("%s: %s%s\n", s.key, s.value, modified))
	}

	return strings.TrimRight(b.String(), "\n"), nil
}

func joinOrNone(values []string) string {
	if len(values) == 0 {
		return "none"
	}
	return strings.Join(values, ", ")
}

func describeStop(reason string) string {
	switch reason {
	case "converged":
		return "converged (no extreme reached the critical value)"
	case "untestable":
		return "untestable (fewer than 5 values remain)"
	default:
		return reason
	}
}

// printError writes err and any suggested fixes to w.
func printError(w io.Writer, err error) {
	fmt.Fprintf(w, "Error: %v\n", err)

	var ae *qerrors.AnalysisError
	if !errors.As(err, &ae) || len(ae.SuggestedFixes) == 0 {
		return
	}
	fmt.Fprintln(w, "Suggested fixes:")
	for _, fix := range ae.SuggestedFixes {
		fmt.Fprintf(w, "  - %s\n", fix.Description)
		if fix.Command != "" {
			fmt.Fprintf(w, "    $ %s\n", fix.Command)
		}
	}
}
