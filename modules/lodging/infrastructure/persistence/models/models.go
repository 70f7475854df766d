package models

import (
	"database/sql"
	"time"
)

// QuotaRow is one flattened row of the quotas/quota_categories join. The
// category columns are null when a quota has no category allocations.
type QuotaRow struct {
	ID           int64
	ExternalID   int64
	Title        string
	DateFrom     time.Time
	DateTo       time.Time
	Capacity     int32
	Mode         string
	CategoryCode sql.NullInt32
	Beds         sql.NullInt32
}

type Reservation struct {
	ID         int64
	ExternalID sql.NullInt64
	Arrival    time.Time
	Departure  time.Time
	GuestsML   int32
	GuestsMBZ  int32
	Guests2BZ  int32
	GuestsSK   int32
	Cancelled  bool
}

type DailySummary struct {
	ID              int64
	Day             time.Time
	AggregateGuests int32
}

type DailySummaryCategory struct {
	SummaryID    int64
	CategoryCode int32
	FreePlaces   int32
}
