package main

import (
	"github.com/spf13/cobra"

	"github.com/lodgeworks/hutpipe/modules/lodging/infrastructure/persistence"
)

func newSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Apply the lodging database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			pool, err := connectDB(cmd.Context())
			if err != nil {
				return err
			}
			defer pool.Close()
			return persistence.ApplySchema(cmd.Context(), pool)
		},
	}
}
