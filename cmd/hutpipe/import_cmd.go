package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/lodgeworks/hutpipe/modules/lodging/domain/entities/report"
	"github.com/lodgeworks/hutpipe/modules/lodging/infrastructure/importer"
	"github.com/lodgeworks/hutpipe/modules/lodging/infrastructure/persistence"
	"github.com/lodgeworks/hutpipe/modules/lodging/services"
	"github.com/lodgeworks/hutpipe/pkg/composables"
	"github.com/lodgeworks/hutpipe/pkg/configuration"
	"github.com/lodgeworks/hutpipe/pkg/eventbus"
)

var errRunFailed = errors.New("import run failed")

// runExitError maps a failed run to the process exit error. Returned (not
// os.Exit) so deferred pool and log-file teardown still runs.
func runExitError(run *report.Run) error {
	if run.Success {
		return nil
	}
	return errRunFailed
}

func importCommands(cfg *configuration.Configuration) importer.Commands {
	return importer.Commands{
		Reservations: cfg.Import.Argv(cfg.Import.ReservationsCmd),
		Daily:        cfg.Import.Argv(cfg.Import.DailyCmd),
		Quotas:       cfg.Import.Argv(cfg.Import.QuotasCmd),
		Production:   cfg.Import.Argv(cfg.Import.ProductionCmd),
		DryRunFlag:   cfg.Import.DryRunFlag,
	}
}

func newImportCmd() *cobra.Command {
	var (
		fromDate string
		toDate   string
		kinds    []string
	)

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Run the transactional reservation import pipeline",
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := parseDateUTC(fromDate)
			if err != nil {
				return err
			}
			to, err := parseDateUTC(toDate)
			if err != nil {
				return err
			}
			stageKinds := make([]importer.StageKind, 0, len(kinds))
			for _, k := range kinds {
				kind, err := importer.ParseKind(k)
				if err != nil {
					return err
				}
				stageKinds = append(stageKinds, kind)
			}

			cfg := configuration.Use()
			pool, err := connectDB(cmd.Context())
			if err != nil {
				return err
			}
			defer pool.Close()
			ctx := composables.WithPool(cmd.Context(), pool)

			logger := cfg.Logger()
			publisher := eventbus.NewEventPublisher(logger)
			publisher.Subscribe(func(event string, run *report.Run) {
				logger.Debugf("%s: run %s success=%v", event, run.ID, run.Success)
			})

			runner := importer.NewCommandRunner(importCommands(cfg), logger.WithField("component", "importer"))
			svc := services.NewImportService(
				persistence.NewBackupRepository(),
				runner,
				importer.NewTokenAnalyzer(),
				publisher,
				logger,
			)

			run, err := svc.Run(ctx, services.ImportOptions{From: from, To: to, Kinds: stageKinds})
			if err != nil {
				return err
			}
			if err := writeJSON(run); err != nil {
				return err
			}
			return runExitError(run)
		},
	}

	cmd.Flags().StringVar(&fromDate, "from", "", "Range start (UTC, YYYY-MM-DD)")
	cmd.Flags().StringVar(&toDate, "to", "", "Range end (UTC, YYYY-MM-DD, inclusive)")
	cmd.Flags().StringSliceVar(&kinds, "kinds", nil, "Import kinds to run (reservations,daily,quotas); default all")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}
