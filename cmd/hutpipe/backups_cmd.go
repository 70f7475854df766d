package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lodgeworks/hutpipe/modules/lodging/domain/entities/backup"
	"github.com/lodgeworks/hutpipe/modules/lodging/infrastructure/persistence"
	"github.com/lodgeworks/hutpipe/pkg/composables"
)

func newBackupsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backups",
		Short: "Inspect and restore reservation table backups",
	}
	cmd.AddCommand(newBackupsListCmd())
	cmd.AddCommand(newBackupsRestoreCmd())
	return cmd
}

type backupInfo struct {
	Name string `json:"name"`
	Rows int64  `json:"rows"`
}

type backupsListOutput struct {
	LiveRows int64        `json:"live_rows"`
	Backups  []backupInfo `json:"backups"`
}

func newBackupsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List reservation backup tables with their row counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			pool, err := connectDB(cmd.Context())
			if err != nil {
				return err
			}
			defer pool.Close()
			ctx := composables.WithPool(cmd.Context(), pool)

			liveRows, err := persistence.NewReservationRepository().Count(ctx)
			if err != nil {
				return err
			}

			repo := persistence.NewBackupRepository()
			names, err := repo.List(ctx)
			if err != nil {
				return err
			}
			infos := make([]backupInfo, 0, len(names))
			for _, name := range names {
				rows, err := repo.RowCount(ctx, name)
				if err != nil {
					return err
				}
				infos = append(infos, backupInfo{Name: name, Rows: rows})
			}
			return writeJSON(backupsListOutput{LiveRows: liveRows, Backups: infos})
		},
	}
}

func newBackupsRestoreCmd() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "restore",
		Short: "Restore the reservation table from a named backup",
		RunE: func(cmd *cobra.Command, args []string) error {
			pool, err := connectDB(cmd.Context())
			if err != nil {
				return err
			}
			defer pool.Close()
			ctx := composables.WithPool(cmd.Context(), pool)

			repo := persistence.NewBackupRepository()
			exists, err := repo.Exists(ctx, name)
			if err != nil {
				return err
			}
			if !exists {
				return fmt.Errorf("backup table %q does not exist", name)
			}
			rows, err := repo.RowCount(ctx, name)
			if err != nil {
				return err
			}
			if err := repo.Restore(ctx, &backup.Handle{Name: name, Rows: rows}); err != nil {
				return err
			}
			return writeJSON(backupInfo{Name: name, Rows: rows})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Backup table name")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}
