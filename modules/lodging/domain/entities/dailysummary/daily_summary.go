package dailysummary

import (
	"context"
	"fmt"
	"time"

	"github.com/lodgeworks/hutpipe/modules/lodging/domain/aggregates/quota"
)

var ErrNotFound = fmt.Errorf("daily summary not found")

// CategoryFree is one category-level free-bed row of a daily summary.
type CategoryFree struct {
	Category   quota.Category
	FreePlaces int
}

// Summary is the upstream per-day occupancy summary. Categories may be empty;
// AggregateGuests is the coarse fallback figure carried by the summary row
// itself.
type Summary struct {
	ID              int64
	Day             time.Time
	AggregateGuests int
	Categories      []CategoryFree
}

// HasCategoryData reports whether category-level rows exist for the day.
func (s *Summary) HasCategoryData() bool {
	return len(s.Categories) > 0
}

type Repository interface {
	// ByDay returns the summary for the given day, ErrNotFound when the day
	// has no summary row at all.
	ByDay(ctx context.Context, day time.Time) (*Summary, error)
}
