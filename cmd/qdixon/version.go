package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ogre-kun/outliers-calculator/internal/version"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build and runtime details",
		Args:  cobra.NoArgs,
		// Works even when the config is broken.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), version.Full())
			return err
		},
	}
}
