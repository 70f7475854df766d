package persistence

import (
	"context"
	"time"

	"github.com/go-faster/errors"

	"github.com/lodgeworks/hutpipe/modules/lodging/domain/entities/reservation"
	"github.com/lodgeworks/hutpipe/modules/lodging/infrastructure/persistence/models"
	"github.com/lodgeworks/hutpipe/pkg/composables"
	"github.com/lodgeworks/hutpipe/pkg/mapping"
)

const (
	reservationFindQuery = `
		SELECT id, external_id, anreise, abreise,
		       guests_ml, guests_mbz, guests_2bz, guests_sk, cancelled
		FROM reservations`
)

type PgReservationRepository struct{}

func NewReservationRepository() reservation.Repository {
	return &PgReservationRepository{}
}

func (r *PgReservationRepository) CoveringDay(ctx context.Context, day time.Time) ([]*reservation.Reservation, error) {
	query := reservationFindQuery + `
		WHERE cancelled = FALSE AND anreise <= $1 AND abreise > $1
		ORDER BY id`
	return r.queryReservations(ctx, query, day)
}

func (r *PgReservationRepository) Create(ctx context.Context, res *reservation.Reservation) (*reservation.Reservation, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	var id int64
	if err := tx.QueryRow(
		ctx,
		`INSERT INTO reservations (external_id, anreise, abreise, guests_ml, guests_mbz, guests_2bz, guests_sk, cancelled)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id`,
		mapping.ValueToSQLNullInt64(res.ExternalID),
		res.Arrival,
		res.Departure,
		res.Guests.ML,
		res.Guests.MBZ,
		res.Guests.TwoBZ,
		res.Guests.SK,
		res.Cancelled,
	).Scan(&id); err != nil {
		return nil, errors.Wrap(err, "failed to create reservation")
	}

	created := *res
	created.ID = id
	return &created, nil
}

func (r *PgReservationRepository) Count(ctx context.Context) (int64, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, err
	}
	var count int64
	if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM reservations`).Scan(&count); err != nil {
		return 0, errors.Wrap(err, "failed to count reservations")
	}
	return count, nil
}

func (r *PgReservationRepository) queryReservations(ctx context.Context, query string, args ...interface{}) ([]*reservation.Reservation, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get transaction")
	}

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to execute query")
	}
	defer rows.Close()

	var reservations []*reservation.Reservation
	for rows.Next() {
		var row models.Reservation
		if err := rows.Scan(
			&row.ID,
			&row.ExternalID,
			&row.Arrival,
			&row.Departure,
			&row.GuestsML,
			&row.GuestsMBZ,
			&row.Guests2BZ,
			&row.GuestsSK,
			&row.Cancelled,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan reservation row")
		}
		reservations = append(reservations, toDomainReservation(&row))
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "row iteration error")
	}

	return reservations, nil
}
