package persistence

import (
	"context"
	"time"

	gerrors "github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"

	"github.com/lodgeworks/hutpipe/modules/lodging/domain/entities/dailysummary"
	"github.com/lodgeworks/hutpipe/modules/lodging/infrastructure/persistence/models"
	"github.com/lodgeworks/hutpipe/pkg/composables"
)

var (
	// ErrSummaryNotFound aliases the domain sentinel so callers can match on
	// either package.
	ErrSummaryNotFound = dailysummary.ErrNotFound
)

type PgDailySummaryRepository struct{}

func NewDailySummaryRepository() dailysummary.Repository {
	return &PgDailySummaryRepository{}
}

func (r *PgDailySummaryRepository) ByDay(ctx context.Context, day time.Time) (*dailysummary.Summary, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	var summary models.DailySummary
	if err := tx.QueryRow(
		ctx,
		`SELECT id, day, aggregate_guests FROM daily_summaries WHERE day = $1`,
		day,
	).Scan(&summary.ID, &summary.Day, &summary.AggregateGuests); err != nil {
		if gerrors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSummaryNotFound
		}
		return nil, gerrors.Wrap(err, "failed to query daily summary")
	}

	rows, err := tx.Query(
		ctx,
		`SELECT summary_id, category_code, free_places
		 FROM daily_summary_categories
		 WHERE summary_id = $1
		 ORDER BY id`,
		summary.ID,
	)
	if err != nil {
		return nil, gerrors.Wrap(err, "failed to query summary categories")
	}
	defer rows.Close()

	var categories []*models.DailySummaryCategory
	for rows.Next() {
		var row models.DailySummaryCategory
		if err := rows.Scan(&row.SummaryID, &row.CategoryCode, &row.FreePlaces); err != nil {
			return nil, gerrors.Wrap(err, "failed to scan summary category row")
		}
		categories = append(categories, &row)
	}
	if err := rows.Err(); err != nil {
		return nil, gerrors.Wrap(err, "row iteration error")
	}

	return toDomainSummary(&summary, categories), nil
}
