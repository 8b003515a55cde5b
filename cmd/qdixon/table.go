package main

import (
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	qerrors "github.com/ogre-kun/outliers-calculator/internal/errors"
	"github.com/ogre-kun/outliers-calculator/internal/output"
	"github.com/ogre-kun/outliers-calculator/internal/qdixon"
	"github.com/ogre-kun/outliers-calculator/internal/tablefile"
)

// TableResponse is the output of table show
type TableResponse struct {
	Name     string          `json:"name"`
	Source   string          `json:"source"`
	Coverage string          `json:"coverage"`
	Entries  []TableEntryCLI `json:"entries"`
}

// TableEntryCLI is one critical value row
type TableEntryCLI struct {
	Size  int    `json:"size"`
	Value string `json:"value"`
}

func newTableCmd(a *app) *cobra.Command {
	var tablePath string

	cmd := &cobra.Command{
		Use:   "table",
		Short: "Inspect and edit critical value tables",
		Long: `Critical value tables map sample sizes (3 to 30) to Q-test thresholds.
The built-in table covers sizes 3 to 13; larger samples need a table file.`,
	}
	cmd.PersistentFlags().StringVar(&tablePath, "table", "", "Critical value table file (default from config, else built-in)")

	cmd.AddCommand(newTableShowCmd(a, &tablePath))
	cmd.AddCommand(newTableExportCmd(a, &tablePath))
	cmd.AddCommand(newTableSetCmd(a, &tablePath))
	return cmd
}

func newTableShowCmd(a *app, tablePath *string) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective critical value table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := a.outputFormat(format)
			if err != nil {
				return err
			}
			table, source, err := a.loadTable(*tablePath)
			if err != nil {
				return err
			}
			return writeResponse(cmd.OutOrStdout(), newTableResponse(table, source), f)
		},
	}
	cmd.Flags().StringVar(&format, "format", "", "Output format (human, json)")
	return cmd
}

func newTableExportCmd(a *app, tablePath *string) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the effective table to a file",
		Long: `Write the effective table to a file. The format follows the extension:
.toml, .yaml/.yml or .json.

Examples:
  qdixon table export --out table.toml
  qdixon table export --table extended.yaml --out extended.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			table, _, err := a.loadTable(*tablePath)
			if err != nil {
				return err
			}
			return a.writeTable(cmd, out, table)
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "Destination file")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}

func newTableSetCmd(a *app, tablePath *string) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "set SIZE VALUE",
		Short: "Write a copy of the table with one entry added or replaced",
		Long: `Write a copy of the effective table with the critical value for SIZE set
to VALUE. The source table is not modified.

Examples:
  qdixon table set 14 0.546 --out extended.toml
  qdixon table set 3 0.941 --table extended.toml --out extended.toml`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			size, err := strconv.Atoi(args[0])
			if err != nil {
				return qerrors.Newf(qerrors.InvalidInput, "size %q is not an integer", args[0])
			}
			value, err := decimal.NewFromString(args[1])
			if err != nil {
				return qerrors.Newf(qerrors.InvalidInput, "value %q is not a decimal", args[1])
			}

			table, _, err := a.loadTable(*tablePath)
			if err != nil {
				return err
			}
			updated, err := table.With(size, value)
			if err != nil {
				return err
			}
			return a.writeTable(cmd, out, updated)
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "Destination file")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}

func (a *app) writeTable(cmd *cobra.Command, path string, table *qdixon.CriticalTable) error {
	if err := tablefile.Save(path, table); err != nil {
		return err
	}
	a.logger.Info("Wrote critical value table", "path", path, "entries", table.Len())
	_, err := fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d entries (%s) to %s\n", table.Len(), coverage(table), path)
	return err
}

func newTableResponse(table *qdixon.CriticalTable, source string) *TableResponse {
	entries := table.Entries()
	resp := &TableResponse{
		Name:     table.Name(),
		Source:   source,
		Coverage: coverage(table),
		Entries:  make([]TableEntryCLI, len(entries)),
	}
	for i, e := range entries {
		resp.Entries[i] = TableEntryCLI{Size: e.Size, Value: output.FormatCritical(e.Value)}
	}
	return resp
}

// coverage describes table sizes as ranges, e.g. "3-13, 15".
func coverage(table *qdixon.CriticalTable) string {
	sizes := table.Sizes()
	if len(sizes) == 0 {
		return "none"
	}

	var parts []string
	start, prev := sizes[0], sizes[0]
	flush := func() {
		if start == prev {
			parts = append(parts, strconv.Itoa(start))
		} else {
			parts = append(parts, fmt.Sprintf("%d-%d", start, prev))
		}
	}
	for _, s := range sizes[1:] {
		if s == prev+1 {
			prev = s
			continue
		}
		flush()
		start, prev = s, s
	}
	flush()
	return joinOrNone(parts)
}
