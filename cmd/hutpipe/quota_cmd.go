package main

import (
	"github.com/spf13/cobra"

	"github.com/lodgeworks/hutpipe/modules/lodging/infrastructure/persistence"
	"github.com/lodgeworks/hutpipe/modules/lodging/services"
	"github.com/lodgeworks/hutpipe/pkg/composables"
	"github.com/lodgeworks/hutpipe/pkg/configuration"
	"github.com/lodgeworks/hutpipe/pkg/eventbus"
)

func newQuotaCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quota",
		Short: "Resolve and optimize bed quotas",
	}
	cmd.AddCommand(newQuotaEffectiveCmd())
	cmd.AddCommand(newQuotaOptimizeCmd())
	return cmd
}

func quotaService(publisher eventbus.EventBus) *services.QuotaService {
	reservations := persistence.NewReservationRepository()
	occupancy := services.NewOccupancyService(
		persistence.NewDailySummaryRepository(),
		reservations,
		configuration.Use().Logger(),
	)
	return services.NewQuotaService(
		persistence.NewQuotaRepository(),
		occupancy,
		reservations,
		publisher,
	)
}

func newQuotaEffectiveCmd() *cobra.Command {
	var dayArg string

	cmd := &cobra.Command{
		Use:   "effective",
		Short: "Show the effective quota for a day",
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := parseDateUTC(dayArg)
			if err != nil {
				return err
			}

			pool, err := connectDB(cmd.Context())
			if err != nil {
				return err
			}
			defer pool.Close()
			ctx := composables.WithPool(cmd.Context(), pool)

			effective, err := quotaService(nil).EffectiveForDay(ctx, day)
			if err != nil {
				return err
			}
			return writeJSON(effective)
		},
	}

	cmd.Flags().StringVar(&dayArg, "day", "", "Day to resolve (UTC, YYYY-MM-DD)")
	_ = cmd.MarkFlagRequired("day")
	return cmd
}

func newQuotaOptimizeCmd() *cobra.Command {
	var (
		dayArg string
		target int
	)

	cmd := &cobra.Command{
		Use:   "optimize",
		Short: "Compute the quota adjustment needed to hit a target occupancy",
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := parseDateUTC(dayArg)
			if err != nil {
				return err
			}

			pool, err := connectDB(cmd.Context())
			if err != nil {
				return err
			}
			defer pool.Close()
			ctx := composables.WithPool(cmd.Context(), pool)

			logger := configuration.Use().Logger()
			publisher := eventbus.NewEventPublisher(logger)
			publisher.Subscribe(func(event string, opt *services.DayOptimization) {
				logger.Infof("%s: day %s delta %.2f", event, opt.Day.Format("2006-01-02"), opt.Result.Delta)
			})

			opt, err := quotaService(publisher).OptimizeDay(ctx, day, target)
			if err != nil {
				return err
			}
			return writeJSON(opt)
		},
	}

	cmd.Flags().StringVar(&dayArg, "day", "", "Day to optimize (UTC, YYYY-MM-DD)")
	cmd.Flags().IntVar(&target, "target", 0, "Target total occupancy for the day")
	_ = cmd.MarkFlagRequired("day")
	_ = cmd.MarkFlagRequired("target")
	return cmd
}
