package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lodgeworks/hutpipe/pkg/configuration"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "hutpipe",
		Short:         "Lodging reservation pipeline: imports, occupancy, quota tools",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(newImportCmd())
	cmd.AddCommand(newOccupancyCmd())
	cmd.AddCommand(newQuotaCmd())
	cmd.AddCommand(newBackupsCmd())
	cmd.AddCommand(newSchemaCmd())
	return cmd
}

func execute() {
	err := newRootCmd().Execute()
	// Explicit teardown before exiting so the log file is closed even on a
	// failed run.
	configuration.Use().Unload()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
