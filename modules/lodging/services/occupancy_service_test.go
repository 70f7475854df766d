package services_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lodgeworks/hutpipe/modules/lodging/domain/aggregates/quota"
	"github.com/lodgeworks/hutpipe/modules/lodging/domain/entities/dailysummary"
	"github.com/lodgeworks/hutpipe/modules/lodging/domain/entities/reservation"
	"github.com/lodgeworks/hutpipe/modules/lodging/services"
)

type memSummaryRepo struct {
	byDay map[string]*dailysummary.Summary
	err   error
}

func (m *memSummaryRepo) ByDay(_ context.Context, day time.Time) (*dailysummary.Summary, error) {
	if m.err != nil {
		return nil, m.err
	}
	if s, ok := m.byDay[day.Format("2006-01-02")]; ok {
		return s, nil
	}
	return nil, dailysummary.ErrNotFound
}

type memReservationRepo struct {
	reservations []*reservation.Reservation
	err          error
}

func (m *memReservationRepo) CoveringDay(_ context.Context, day time.Time) ([]*reservation.Reservation, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []*reservation.Reservation
	for _, r := range m.reservations {
		if !r.Cancelled && r.CoversDay(day) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memReservationRepo) Create(_ context.Context, r *reservation.Reservation) (*reservation.Reservation, error) {
	m.reservations = append(m.reservations, r)
	return r, nil
}

func (m *memReservationRepo) Count(context.Context) (int64, error) {
	return int64(len(m.reservations)), nil
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func newOccupancyService(summaries dailysummary.Repository, reservations reservation.Repository) *services.OccupancyService {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return services.NewOccupancyService(summaries, reservations, logger)
}

func TestOccupancyService_Aggregate_GaplessDays(t *testing.T) {
	summaries := &memSummaryRepo{byDay: map[string]*dailysummary.Summary{
		"2025-07-02": {
			Day:             day(2025, 7, 2),
			AggregateGuests: 12,
			Categories: []dailysummary.CategoryFree{
				{Category: quota.CategoryML, FreePlaces: 20},
				{Category: quota.CategorySK, FreePlaces: 2},
			},
		},
	}}
	svc := newOccupancyService(summaries, &memReservationRepo{})

	report, err := svc.Aggregate(context.Background(), day(2025, 7, 1), day(2025, 7, 3))
	require.NoError(t, err)

	require.Len(t, report.Days, 3)
	assert.Equal(t, day(2025, 7, 1), report.Days[0].Day)
	assert.Equal(t, day(2025, 7, 2), report.Days[1].Day)
	assert.Equal(t, day(2025, 7, 3), report.Days[2].Day)

	// days without summary rows appear with zero free capacity
	assert.Zero(t, report.Days[0].Free.Total())
	assert.Zero(t, report.Days[2].Free.Total())

	assert.Equal(t, 20, report.Days[1].Free.Dormitory)
	assert.Equal(t, 2, report.Days[1].Free.Special)
	assert.Equal(t, 22, report.Days[1].Free.Total())
	assert.Equal(t, 12, report.Days[1].AggregateGuests)
}

func TestOccupancyService_Aggregate_SingleDayRange(t *testing.T) {
	svc := newOccupancyService(&memSummaryRepo{}, &memReservationRepo{})

	report, err := svc.Aggregate(context.Background(), day(2025, 7, 1), day(2025, 7, 1))
	require.NoError(t, err)
	require.Len(t, report.Days, 1)
}

func TestOccupancyService_Aggregate_InvalidRange(t *testing.T) {
	svc := newOccupancyService(&memSummaryRepo{}, &memReservationRepo{})

	_, err := svc.Aggregate(context.Background(), day(2025, 7, 3), day(2025, 7, 1))
	require.Error(t, err)
}

func TestOccupancyService_Aggregate_ChannelSplit(t *testing.T) {
	reservations := &memReservationRepo{reservations: []*reservation.Reservation{
		{
			ID:         1,
			ExternalID: 9001,
			Arrival:    day(2025, 7, 1),
			Departure:  day(2025, 7, 4),
			Guests:     reservation.GuestCounts{ML: 4},
		},
		{
			ID:        2,
			Arrival:   day(2025, 7, 2),
			Departure: day(2025, 7, 3),
			Guests:    reservation.GuestCounts{TwoBZ: 2},
		},
		{
			ID:         3,
			ExternalID: 9002,
			Arrival:    day(2025, 7, 1),
			Departure:  day(2025, 7, 2),
			Guests:     reservation.GuestCounts{MBZ: 3},
			Cancelled:  true,
		},
	}}
	svc := newOccupancyService(&memSummaryRepo{}, reservations)

	report, err := svc.Aggregate(context.Background(), day(2025, 7, 1), day(2025, 7, 3))
	require.NoError(t, err)

	// July 1: only the external reservation is active.
	assert.Equal(t, reservation.GuestCounts{ML: 4}, report.Days[0].ByChannel[reservation.ChannelExternal])
	assert.Equal(t, reservation.GuestCounts{}, report.Days[0].ByChannel[reservation.ChannelLocal])

	// July 2: both channels.
	assert.Equal(t, reservation.GuestCounts{ML: 4}, report.Days[1].ByChannel[reservation.ChannelExternal])
	assert.Equal(t, reservation.GuestCounts{TwoBZ: 2}, report.Days[1].ByChannel[reservation.ChannelLocal])

	// Totals count every reservation once, not once per night.
	require.Len(t, report.ByChannel, 2)
	assert.Equal(t, reservation.ChannelExternal, report.ByChannel[0].Channel)
	assert.Equal(t, 1, report.ByChannel[0].Reservations)
	assert.Equal(t, reservation.GuestCounts{ML: 4}, report.ByChannel[0].Guests)
	assert.Equal(t, reservation.ChannelLocal, report.ByChannel[1].Channel)
	assert.Equal(t, 1, report.ByChannel[1].Reservations)
	assert.Equal(t, reservation.GuestCounts{TwoBZ: 2}, report.ByChannel[1].Guests)
}

func TestOccupancyService_FreeForDay_ClampsNegatives(t *testing.T) {
	summaries := &memSummaryRepo{byDay: map[string]*dailysummary.Summary{
		"2025-07-01": {
			Day: day(2025, 7, 1),
			Categories: []dailysummary.CategoryFree{
				{Category: quota.CategoryML, FreePlaces: -5},
				{Category: quota.CategoryMBZ, FreePlaces: 8},
			},
		},
	}}
	svc := newOccupancyService(summaries, &memReservationRepo{})

	free, err := svc.FreeForDay(context.Background(), day(2025, 7, 1))
	require.NoError(t, err)
	assert.Equal(t, 0, free.Dormitory)
	assert.Equal(t, 8, free.MultiBed)
	assert.Equal(t, 8, free.Total())
}

func TestOccupancyService_FreeForDay_NoCategoryData(t *testing.T) {
	summaries := &memSummaryRepo{byDay: map[string]*dailysummary.Summary{
		"2025-07-01": {Day: day(2025, 7, 1), AggregateGuests: 30},
	}}
	svc := newOccupancyService(summaries, &memReservationRepo{})

	free, err := svc.FreeForDay(context.Background(), day(2025, 7, 1))
	require.NoError(t, err)
	assert.Zero(t, free.Total())
}

func TestOccupancyService_Aggregate_RepositoryError(t *testing.T) {
	svc := newOccupancyService(
		&memSummaryRepo{err: fmt.Errorf("connection reset")},
		&memReservationRepo{},
	)

	_, err := svc.Aggregate(context.Background(), day(2025, 7, 1), day(2025, 7, 2))
	require.Error(t, err)
}
