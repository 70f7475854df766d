package main

import (
	"github.com/spf13/cobra"

	"github.com/lodgeworks/hutpipe/modules/lodging/infrastructure/persistence"
	"github.com/lodgeworks/hutpipe/modules/lodging/services"
	"github.com/lodgeworks/hutpipe/pkg/composables"
	"github.com/lodgeworks/hutpipe/pkg/configuration"
)

func newOccupancyCmd() *cobra.Command {
	var (
		fromDate string
		toDate   string
	)

	cmd := &cobra.Command{
		Use:   "occupancy",
		Short: "Build the per-day occupancy report for a date range",
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := parseDateUTC(fromDate)
			if err != nil {
				return err
			}
			to, err := parseDateUTC(toDate)
			if err != nil {
				return err
			}

			pool, err := connectDB(cmd.Context())
			if err != nil {
				return err
			}
			defer pool.Close()
			ctx := composables.WithPool(cmd.Context(), pool)

			svc := services.NewOccupancyService(
				persistence.NewDailySummaryRepository(),
				persistence.NewReservationRepository(),
				configuration.Use().Logger(),
			)
			report, err := svc.Aggregate(ctx, from, to)
			if err != nil {
				return err
			}
			return writeJSON(report)
		},
	}

	cmd.Flags().StringVar(&fromDate, "from", "", "Range start (UTC, YYYY-MM-DD)")
	cmd.Flags().StringVar(&toDate, "to", "", "Range end (UTC, YYYY-MM-DD, inclusive)")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}
