package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	qerrors "github.com/ogre-kun/outliers-calculator/internal/errors"
	"github.com/ogre-kun/outliers-calculator/internal/output"
)

// HistoryListResponse is the output of history list
type HistoryListResponse struct {
	Runs []HistoryRunCLI `json:"runs"`
}

// HistoryRunCLI summarizes one recorded run
type HistoryRunCLI struct {
	ID         string    `json:"id"`
	RecordedAt time.Time `json:"recordedAt"`
	Table      string    `json:"table"`
	SampleSize int       `json:"sampleSize"`
	Outliers   int       `json:"outliers"`
	Rounds     int       `json:"rounds"`
	Mean       string    `json:"mean"`
	StopReason string    `json:"stopReason"`
}

func newHistoryCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List, show and delete recorded analyses",
		Long:  "Runs recorded with 'qdixon analyze --save' are kept in a local SQLite database.",
	}

	cmd.AddCommand(newHistoryListCmd(a))
	cmd.AddCommand(newHistoryShowCmd(a))
	cmd.AddCommand(newHistoryDeleteCmd(a))
	return cmd
}

func newHistoryListCmd(a *app) *cobra.Command {
	var (
		limit  int
		format string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := a.outputFormat(format)
			if err != nil {
				return err
			}
			store, err := a.openHistory()
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			runs, err := store.List(newContext(cmd), limit)
			if err != nil {
				return err
			}

			resp := &HistoryListResponse{Runs: make([]HistoryRunCLI, len(runs))}
			for i, r := range runs {
				resp.Runs[i] = HistoryRunCLI{
					ID:         r.ID,
					RecordedAt: r.RecordedAt,
					Table:      r.Table,
					SampleSize: r.SampleSize,
					Outliers:   r.Outliers,
					Rounds:     r.Rounds,
					Mean:       r.Mean,
					StopReason: r.StopReason,
				}
			}
			return writeResponse(cmd.OutOrStdout(), resp, f)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of runs (0 for all)")
	cmd.Flags().StringVar(&format, "format", "", "Output format (human, json)")
	return cmd
}

func newHistoryShowCmd(a *app) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "show ID",
		Short: "Print the full report of a recorded run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := a.outputFormat(format)
			if err != nil {
				return err
			}
			store, err := a.openHistory()
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			run, err := store.Get(newContext(cmd), args[0])
			if err != nil {
				return err
			}

			var report output.Report
			if err := json.Unmarshal(run.Report, &report); err != nil {
				return qerrors.New(qerrors.InternalError, fmt.Sprintf("run %s has an unreadable report", run.ID), err)
			}
			report.Run = &output.RunInfo{ID: run.ID, RecordedAt: run.RecordedAt}
			return writeResponse(cmd.OutOrStdout(), &report, f)
		},
	}
	cmd.Flags().StringVar(&format, "format", "", "Output format (human, json)")
	return cmd
}

func newHistoryDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a recorded run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openHistory()
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.Delete(newContext(cmd), args[0]); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Deleted run %s\n", args[0])
			return err
		},
	}
}
