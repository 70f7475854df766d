package persistence

import (
	"github.com/lodgeworks/hutpipe/modules/lodging/domain/aggregates/quota"
	"github.com/lodgeworks/hutpipe/modules/lodging/domain/entities/dailysummary"
	"github.com/lodgeworks/hutpipe/modules/lodging/domain/entities/reservation"
	"github.com/lodgeworks/hutpipe/modules/lodging/infrastructure/persistence/models"
	"github.com/lodgeworks/hutpipe/pkg/mapping"
)

// toDomainQuotas groups flattened join rows by quota id, preserving the row
// order within each quota.
func toDomainQuotas(rows []*models.QuotaRow) []*quota.Quota {
	var quotas []*quota.Quota
	byID := map[int64]*quota.Quota{}

	for _, row := range rows {
		q, ok := byID[row.ID]
		if !ok {
			q = &quota.Quota{
				ID:         row.ID,
				ExternalID: row.ExternalID,
				Title:      row.Title,
				DateFrom:   row.DateFrom,
				DateTo:     row.DateTo,
				Capacity:   int(row.Capacity),
				Mode:       quota.Mode(row.Mode),
			}
			byID[row.ID] = q
			quotas = append(quotas, q)
		}
		if row.CategoryCode.Valid {
			q.Categories = append(q.Categories, quota.CategoryAllocation{
				Category: quota.CategoryFromCode(int(row.CategoryCode.Int32)),
				Beds:     int(mapping.SQLNullInt32ToValue(row.Beds)),
			})
		}
	}
	return quotas
}

func toDomainReservation(r *models.Reservation) *reservation.Reservation {
	return &reservation.Reservation{
		ID:         r.ID,
		ExternalID: mapping.SQLNullInt64ToValue(r.ExternalID),
		Arrival:    r.Arrival,
		Departure:  r.Departure,
		Guests: reservation.GuestCounts{
			ML:    int(r.GuestsML),
			MBZ:   int(r.GuestsMBZ),
			TwoBZ: int(r.Guests2BZ),
			SK:    int(r.GuestsSK),
		},
		Cancelled: r.Cancelled,
	}
}

func toDomainSummary(s *models.DailySummary, categories []*models.DailySummaryCategory) *dailysummary.Summary {
	summary := &dailysummary.Summary{
		ID:              s.ID,
		Day:             s.Day,
		AggregateGuests: int(s.AggregateGuests),
	}
	for _, c := range categories {
		summary.Categories = append(summary.Categories, dailysummary.CategoryFree{
			Category:   quota.CategoryFromCode(int(c.CategoryCode)),
			FreePlaces: int(c.FreePlaces),
		})
	}
	return summary
}
