package services

import (
	"context"
	"time"

	"github.com/go-faster/errors"

	"github.com/lodgeworks/hutpipe/modules/lodging/domain/aggregates/quota"
	"github.com/lodgeworks/hutpipe/modules/lodging/domain/entities/reservation"
	"github.com/lodgeworks/hutpipe/pkg/eventbus"
)

// DayOptimization is the result of resolving and optimizing one day.
type DayOptimization struct {
	Day              time.Time                `json:"day"`
	Effective        *quota.Quota             `json:"effective,omitempty"`
	CurrentBooked    int                      `json:"current_booked"`
	CurrentFreeQuota int                      `json:"current_free_quota"`
	Result           quota.AdjustedAllocation `json:"result"`
}

type QuotaService struct {
	quotas    quota.Repository
	occupancy *OccupancyService
	bookings  reservation.Repository
	publisher eventbus.EventBus
}

func NewQuotaService(
	quotas quota.Repository,
	occupancy *OccupancyService,
	bookings reservation.Repository,
	publisher eventbus.EventBus,
) *QuotaService {
	return &QuotaService{
		quotas:    quotas,
		occupancy: occupancy,
		bookings:  bookings,
		publisher: publisher,
	}
}

// EffectiveForDay resolves the overlapping quotas covering the day into the
// single effective one, nil when none covers it.
func (s *QuotaService) EffectiveForDay(ctx context.Context, day time.Time) (*quota.Quota, error) {
	overlapping, err := s.quotas.GetOverlapping(ctx, &quota.FindParams{From: day, To: day})
	if err != nil {
		return nil, errors.Wrap(err, "failed to load quotas")
	}
	return quota.Resolve(overlapping, day), nil
}

// OptimizeDay computes the allocation adjustment needed to hit the target
// occupancy on the given day.
func (s *QuotaService) OptimizeDay(ctx context.Context, day time.Time, targetOccupancy int) (*DayOptimization, error) {
	effective, err := s.EffectiveForDay(ctx, day)
	if err != nil {
		return nil, err
	}

	covering, err := s.bookings.CoveringDay(ctx, day)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load reservations")
	}
	booked := 0
	for _, res := range covering {
		booked += res.Guests.Total()
	}

	free, err := s.occupancy.FreeForDay(ctx, day)
	if err != nil {
		return nil, err
	}

	result := quota.Optimize(effective, targetOccupancy, booked, free.Total())
	opt := &DayOptimization{
		Day:              day,
		Effective:        effective,
		CurrentBooked:    booked,
		CurrentFreeQuota: free.Total(),
		Result:           result,
	}
	if result.ShouldOptimize && s.publisher != nil {
		s.publisher.Publish("quota.optimized", opt)
	}
	return opt, nil
}
