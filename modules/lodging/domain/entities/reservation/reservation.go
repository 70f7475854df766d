package reservation

import (
	"context"
	"time"
)

// Channel classifies where a reservation came from.
type Channel string

const (
	ChannelExternal Channel = "external"
	ChannelLocal    Channel = "local"
)

// GuestCounts is the per-category guest split of a reservation.
type GuestCounts struct {
	ML    int
	MBZ   int
	TwoBZ int
	SK    int
}

func (g GuestCounts) Total() int {
	return g.ML + g.MBZ + g.TwoBZ + g.SK
}

func (g GuestCounts) Add(other GuestCounts) GuestCounts {
	return GuestCounts{
		ML:    g.ML + other.ML,
		MBZ:   g.MBZ + other.MBZ,
		TwoBZ: g.TwoBZ + other.TwoBZ,
		SK:    g.SK + other.SK,
	}
}

// Reservation is a booking spanning the half-open interval
// [Arrival, Departure).
type Reservation struct {
	ID         int64
	ExternalID int64
	Arrival    time.Time
	Departure  time.Time
	Guests     GuestCounts
	Cancelled  bool
}

// Channel reports the source channel: external when the reservation is linked
// to an upstream reservation id, local otherwise.
func (r *Reservation) Channel() Channel {
	if r.ExternalID > 0 {
		return ChannelExternal
	}
	return ChannelLocal
}

// CoversDay reports whether the stay includes the given day. The departure
// day is not part of the stay.
func (r *Reservation) CoversDay(day time.Time) bool {
	return !day.Before(r.Arrival) && day.Before(r.Departure)
}

type Repository interface {
	CoveringDay(ctx context.Context, day time.Time) ([]*Reservation, error)
	Create(ctx context.Context, r *Reservation) (*Reservation, error)
	Count(ctx context.Context) (int64, error)
}
