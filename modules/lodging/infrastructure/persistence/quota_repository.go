package persistence

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"

	"github.com/lodgeworks/hutpipe/modules/lodging/domain/aggregates/quota"
	"github.com/lodgeworks/hutpipe/modules/lodging/infrastructure/persistence/models"
	"github.com/lodgeworks/hutpipe/pkg/composables"
)

var (
	ErrQuotaNotFound = fmt.Errorf("quota not found")
)

const (
	quotaFindQuery = `
		SELECT q.id, q.external_id, q.title, q.date_from, q.date_to, q.capacity, q.mode,
		       qc.category_code, qc.beds
		FROM quotas q
		LEFT JOIN quota_categories qc ON qc.quota_id = q.id`
)

type PgQuotaRepository struct{}

func NewQuotaRepository() quota.Repository {
	return &PgQuotaRepository{}
}

func (r *PgQuotaRepository) GetOverlapping(ctx context.Context, params *quota.FindParams) ([]*quota.Quota, error) {
	query := quotaFindQuery + `
		WHERE q.date_from <= $2 AND q.date_to > $1
		ORDER BY q.id, qc.id`
	return r.queryQuotas(ctx, query, params.From, params.To)
}

func (r *PgQuotaRepository) GetByID(ctx context.Context, id int64) (*quota.Quota, error) {
	query := quotaFindQuery + ` WHERE q.id = $1 ORDER BY qc.id`
	quotas, err := r.queryQuotas(ctx, query, id)
	if err != nil {
		return nil, err
	}
	if len(quotas) == 0 {
		return nil, ErrQuotaNotFound
	}
	return quotas[0], nil
}

func (r *PgQuotaRepository) Create(ctx context.Context, q *quota.Quota) (*quota.Quota, error) {
	if !q.DateFrom.Before(q.DateTo) {
		return nil, fmt.Errorf("quota interval invalid: date_from %s is not before date_to %s",
			q.DateFrom.Format("2006-01-02"), q.DateTo.Format("2006-01-02"))
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	var id int64
	if err := tx.QueryRow(
		ctx,
		`INSERT INTO quotas (external_id, title, date_from, date_to, capacity, mode)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id`,
		q.ExternalID,
		q.Title,
		q.DateFrom,
		q.DateTo,
		q.Capacity,
		string(q.Mode),
	).Scan(&id); err != nil {
		return nil, errors.Wrap(err, "failed to create quota")
	}

	if err := r.insertCategories(ctx, tx, id, q.Categories); err != nil {
		return nil, err
	}

	return r.GetByID(ctx, id)
}

func (r *PgQuotaRepository) Update(ctx context.Context, q *quota.Quota) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}

	tag, err := tx.Exec(
		ctx,
		`UPDATE quotas
		 SET external_id = $1, title = $2, date_from = $3, date_to = $4, capacity = $5, mode = $6
		 WHERE id = $7`,
		q.ExternalID,
		q.Title,
		q.DateFrom,
		q.DateTo,
		q.Capacity,
		string(q.Mode),
		q.ID,
	)
	if err != nil {
		return errors.Wrap(err, "failed to update quota")
	}
	if tag.RowsAffected() == 0 {
		return ErrQuotaNotFound
	}

	if _, err := tx.Exec(ctx, `DELETE FROM quota_categories WHERE quota_id = $1`, q.ID); err != nil {
		return errors.Wrap(err, "failed to clear quota categories")
	}
	return r.insertCategories(ctx, tx, q.ID, q.Categories)
}

func (r *PgQuotaRepository) Delete(ctx context.Context, id int64) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, `DELETE FROM quotas WHERE id = $1`, id)
	return err
}

func (r *PgQuotaRepository) insertCategories(ctx context.Context, tx composables.Tx, quotaID int64, categories []quota.CategoryAllocation) error {
	for _, alloc := range categories {
		if _, err := tx.Exec(
			ctx,
			`INSERT INTO quota_categories (quota_id, category_code, beds) VALUES ($1, $2, $3)`,
			quotaID,
			alloc.Category.Code(),
			alloc.Beds,
		); err != nil {
			return errors.Wrap(err, "failed to create quota category")
		}
	}
	return nil
}

func (r *PgQuotaRepository) queryQuotas(ctx context.Context, query string, args ...interface{}) ([]*quota.Quota, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get transaction")
	}

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to execute query")
	}
	defer rows.Close()

	var dbRows []*models.QuotaRow
	for rows.Next() {
		var row models.QuotaRow
		if err := rows.Scan(
			&row.ID,
			&row.ExternalID,
			&row.Title,
			&row.DateFrom,
			&row.DateTo,
			&row.Capacity,
			&row.Mode,
			&row.CategoryCode,
			&row.Beds,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan quota row")
		}
		dbRows = append(dbRows, &row)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "row iteration error")
	}

	return toDomainQuotas(dbRows), nil
}
