package persistence

import (
	"context"
	_ "embed"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed schema/lodging-schema.sql
var schemaSQL string

// ApplySchema creates the lodging tables if they do not exist yet.
func ApplySchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schemaSQL); err != nil {
		return errors.Wrap(err, "failed to apply lodging schema")
	}
	return nil
}
