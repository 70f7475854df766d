package services

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/sirupsen/logrus"

	"github.com/lodgeworks/hutpipe/modules/lodging/domain/aggregates/quota"
	"github.com/lodgeworks/hutpipe/modules/lodging/domain/entities/dailysummary"
	"github.com/lodgeworks/hutpipe/modules/lodging/domain/entities/reservation"
)

// FreeCapacity is the per-day free-bed count split into semantic buckets.
type FreeCapacity struct {
	Special   int `json:"special"`
	Dormitory int `json:"dormitory"`
	MultiBed  int `json:"multi_bed"`
	Double    int `json:"double"`
}

func (f FreeCapacity) Total() int {
	return f.Special + f.Dormitory + f.MultiBed + f.Double
}

// DayRecord is one calendar day of the occupancy report.
type DayRecord struct {
	Day             time.Time                                   `json:"day"`
	Free            FreeCapacity                                `json:"free"`
	AggregateGuests int                                         `json:"aggregate_guests"`
	ByChannel       map[reservation.Channel]reservation.GuestCounts `json:"by_channel"`
}

// ChannelAggregate sums active reservations over the whole range per source
// channel.
type ChannelAggregate struct {
	Channel      reservation.Channel     `json:"channel"`
	Reservations int                     `json:"reservations"`
	Guests       reservation.GuestCounts `json:"guests"`
}

type OccupancyReport struct {
	From      time.Time          `json:"from"`
	To        time.Time          `json:"to"`
	Days      []*DayRecord       `json:"days"`
	ByChannel []ChannelAggregate `json:"by_channel"`
}

type OccupancyService struct {
	summaries    dailysummary.Repository
	reservations reservation.Repository
	logger       *logrus.Logger
}

func NewOccupancyService(
	summaries dailysummary.Repository,
	reservations reservation.Repository,
	logger *logrus.Logger,
) *OccupancyService {
	return &OccupancyService{
		summaries:    summaries,
		reservations: reservations,
		logger:       logger,
	}
}

// Aggregate builds the per-day occupancy report for [from, to] inclusive.
// Day generation is gapless; days without data still appear with zeros.
func (s *OccupancyService) Aggregate(ctx context.Context, from, to time.Time) (*OccupancyReport, error) {
	if to.Before(from) {
		return nil, fmt.Errorf("invalid date range: %s is after %s",
			from.Format("2006-01-02"), to.Format("2006-01-02"))
	}

	report := &OccupancyReport{From: from, To: to}
	totals := map[reservation.Channel]*ChannelAggregate{
		reservation.ChannelExternal: {Channel: reservation.ChannelExternal},
		reservation.ChannelLocal:    {Channel: reservation.ChannelLocal},
	}
	counted := map[int64]bool{}

	for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
		record := &DayRecord{
			Day: day,
			ByChannel: map[reservation.Channel]reservation.GuestCounts{
				reservation.ChannelExternal: {},
				reservation.ChannelLocal:    {},
			},
		}

		free, aggregate, err := s.freeForDay(ctx, day)
		if err != nil {
			return nil, err
		}
		record.Free = free
		record.AggregateGuests = aggregate

		covering, err := s.reservations.CoveringDay(ctx, day)
		if err != nil {
			return nil, errors.Wrap(err, "failed to load reservations")
		}
		for _, res := range covering {
			channel := res.Channel()
			record.ByChannel[channel] = record.ByChannel[channel].Add(res.Guests)
			if !counted[res.ID] {
				counted[res.ID] = true
				totals[channel].Reservations++
				totals[channel].Guests = totals[channel].Guests.Add(res.Guests)
			}
		}

		report.Days = append(report.Days, record)
	}

	report.ByChannel = []ChannelAggregate{
		*totals[reservation.ChannelExternal],
		*totals[reservation.ChannelLocal],
	}
	return report, nil
}

// FreeForDay exposes the free-capacity figure for a single day, used by the
// optimizer path.
func (s *OccupancyService) FreeForDay(ctx context.Context, day time.Time) (FreeCapacity, error) {
	free, _, err := s.freeForDay(ctx, day)
	return free, err
}

func (s *OccupancyService) freeForDay(ctx context.Context, day time.Time) (FreeCapacity, int, error) {
	summary, err := s.summaries.ByDay(ctx, day)
	if err != nil {
		if errors.Is(err, dailysummary.ErrNotFound) {
			return FreeCapacity{}, 0, nil
		}
		return FreeCapacity{}, 0, errors.Wrap(err, "failed to load daily summary")
	}

	// No synthetic estimate without category-level data; the aggregate
	// guests column is reported as-is.
	if !summary.HasCategoryData() {
		return FreeCapacity{}, summary.AggregateGuests, nil
	}

	var free FreeCapacity
	for _, c := range summary.Categories {
		places := c.FreePlaces
		if places < 0 {
			places = 0
		}
		switch c.Category {
		case quota.CategorySK:
			free.Special += places
		case quota.CategoryML:
			free.Dormitory += places
		case quota.CategoryMBZ:
			free.MultiBed += places
		case quota.CategoryTwoBZ:
			free.Double += places
		case quota.CategoryUnknown:
			if s.logger != nil {
				s.logger.Warnf("skipping unknown category in daily summary for %s", day.Format("2006-01-02"))
			}
		}
	}
	return free, summary.AggregateGuests, nil
}
