package services_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lodgeworks/hutpipe/modules/lodging/domain/aggregates/quota"
	"github.com/lodgeworks/hutpipe/modules/lodging/domain/entities/dailysummary"
	"github.com/lodgeworks/hutpipe/modules/lodging/domain/entities/reservation"
	"github.com/lodgeworks/hutpipe/modules/lodging/services"
	"github.com/lodgeworks/hutpipe/pkg/eventbus"
	"github.com/lodgeworks/hutpipe/pkg/logging"
)

type memQuotaRepo struct {
	quotas []*quota.Quota
	err    error
}

func (m *memQuotaRepo) GetOverlapping(_ context.Context, params *quota.FindParams) ([]*quota.Quota, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []*quota.Quota
	for _, q := range m.quotas {
		if q.DateFrom.Before(params.To.AddDate(0, 0, 1)) && q.DateTo.After(params.From) {
			out = append(out, q)
		}
	}
	return out, nil
}

func (m *memQuotaRepo) GetByID(_ context.Context, id int64) (*quota.Quota, error) {
	for _, q := range m.quotas {
		if q.ID == id {
			return q, nil
		}
	}
	return nil, fmt.Errorf("quota %d not found", id)
}

func (m *memQuotaRepo) Create(_ context.Context, q *quota.Quota) (*quota.Quota, error) {
	m.quotas = append(m.quotas, q)
	return q, nil
}

func (m *memQuotaRepo) Update(context.Context, *quota.Quota) error { return nil }

func (m *memQuotaRepo) Delete(context.Context, int64) error { return nil }

func newQuotaService(
	quotas quota.Repository,
	summaries dailysummary.Repository,
	reservations reservation.Repository,
	publisher eventbus.EventBus,
) *services.QuotaService {
	occupancy := newOccupancyService(summaries, reservations)
	return services.NewQuotaService(quotas, occupancy, reservations, publisher)
}

func TestQuotaService_EffectiveForDay_PicksLatestStart(t *testing.T) {
	quotas := &memQuotaRepo{quotas: []*quota.Quota{
		{
			ID:         1,
			ExternalID: 100,
			DateFrom:   day(2025, 7, 1),
			DateTo:     day(2025, 8, 1),
			Capacity:   60,
		},
		{
			ID:         2,
			ExternalID: 101,
			DateFrom:   day(2025, 7, 10),
			DateTo:     day(2025, 7, 20),
			Capacity:   40,
		},
	}}
	svc := newQuotaService(quotas, &memSummaryRepo{}, &memReservationRepo{}, nil)

	effective, err := svc.EffectiveForDay(context.Background(), day(2025, 7, 15))
	require.NoError(t, err)
	require.NotNil(t, effective)
	assert.Equal(t, int64(2), effective.ID)

	effective, err = svc.EffectiveForDay(context.Background(), day(2025, 7, 5))
	require.NoError(t, err)
	require.NotNil(t, effective)
	assert.Equal(t, int64(1), effective.ID)
}

func TestQuotaService_EffectiveForDay_NoQuota(t *testing.T) {
	svc := newQuotaService(&memQuotaRepo{}, &memSummaryRepo{}, &memReservationRepo{}, nil)

	effective, err := svc.EffectiveForDay(context.Background(), day(2025, 7, 15))
	require.NoError(t, err)
	assert.Nil(t, effective)
}

func TestQuotaService_OptimizeDay_DormitoryAbsorbsDelta(t *testing.T) {
	quotas := &memQuotaRepo{quotas: []*quota.Quota{{
		ID:       1,
		DateFrom: day(2025, 7, 1),
		DateTo:   day(2025, 8, 1),
		Capacity: 70,
		Categories: []quota.CategoryAllocation{
			{Category: quota.CategoryML, Beds: 40},
			{Category: quota.CategoryMBZ, Beds: 20},
		},
	}}}
	reservations := &memReservationRepo{reservations: []*reservation.Reservation{{
		ID:        1,
		Arrival:   day(2025, 7, 1),
		Departure: day(2025, 8, 1),
		Guests:    reservation.GuestCounts{ML: 10},
	}}}
	summaries := &memSummaryRepo{byDay: map[string]*dailysummary.Summary{
		"2025-07-15": {
			Day: day(2025, 7, 15),
			Categories: []dailysummary.CategoryFree{
				{Category: quota.CategoryML, FreePlaces: 55},
			},
		},
	}}
	publisher := eventbus.NewEventPublisher(logging.ConsoleLogger(logrus.PanicLevel))
	published := 0
	publisher.Subscribe(func(event string, opt *services.DayOptimization) {
		published++
	})

	svc := newQuotaService(quotas, summaries, reservations, publisher)

	opt, err := svc.OptimizeDay(context.Background(), day(2025, 7, 15), 40)
	require.NoError(t, err)

	assert.Equal(t, 10, opt.CurrentBooked)
	assert.Equal(t, 55, opt.CurrentFreeQuota)
	require.True(t, opt.Result.ShouldOptimize)
	// target 40, booked 10 -> need 30 free; 55 free today -> delta -25,
	// absorbed entirely by the dormitory: 40 - 25 = 15.
	assert.InDelta(t, 15, opt.Result.Beds[quota.CategoryML], 1e-9)
	assert.InDelta(t, 20, opt.Result.Beds[quota.CategoryMBZ], 1e-9)
	assert.Equal(t, 1, published)
}

func TestQuotaService_OptimizeDay_NoQuotaNoEvent(t *testing.T) {
	publisher := eventbus.NewEventPublisher(logging.ConsoleLogger(logrus.PanicLevel))
	published := 0
	publisher.Subscribe(func(event string, opt *services.DayOptimization) {
		published++
	})

	svc := newQuotaService(&memQuotaRepo{}, &memSummaryRepo{}, &memReservationRepo{}, publisher)

	opt, err := svc.OptimizeDay(context.Background(), day(2025, 7, 15), 40)
	require.NoError(t, err)
	assert.Nil(t, opt.Effective)
	assert.False(t, opt.Result.ShouldOptimize)
	assert.Zero(t, published)
}

func TestQuotaService_OptimizeDay_AlreadyOnTarget(t *testing.T) {
	quotas := &memQuotaRepo{quotas: []*quota.Quota{{
		ID:       1,
		DateFrom: day(2025, 7, 1),
		DateTo:   day(2025, 8, 1),
		Capacity: 40,
		Categories: []quota.CategoryAllocation{
			{Category: quota.CategoryML, Beds: 40},
		},
	}}}
	summaries := &memSummaryRepo{byDay: map[string]*dailysummary.Summary{
		"2025-07-15": {
			Day: day(2025, 7, 15),
			Categories: []dailysummary.CategoryFree{
				{Category: quota.CategoryML, FreePlaces: 40},
			},
		},
	}}
	svc := newQuotaService(quotas, summaries, &memReservationRepo{}, nil)

	opt, err := svc.OptimizeDay(context.Background(), day(2025, 7, 15), 40)
	require.NoError(t, err)
	assert.False(t, opt.Result.ShouldOptimize)
	assert.InDelta(t, 40, opt.Result.Beds[quota.CategoryML], 1e-9)
}
