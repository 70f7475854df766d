package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"

	"github.com/lodgeworks/hutpipe/modules/lodging/domain/entities/backup"
	"github.com/lodgeworks/hutpipe/pkg/composables"
)

var (
	ErrBackupNotFound = fmt.Errorf("backup table not found")
)

const backupTablePrefix = "reservations_backup_"

// PgBackupRepository snapshots and restores the reservations table. Backup
// tables are never dropped automatically so operators can recover manually.
type PgBackupRepository struct {
	now func() time.Time
}

func NewBackupRepository() backup.Repository {
	return &PgBackupRepository{now: time.Now}
}

func (r *PgBackupRepository) Backup(ctx context.Context) (*backup.Handle, error) {
	name := backupTablePrefix + r.now().UTC().Format("20060102_150405")
	var handle *backup.Handle
	err := composables.InTx(ctx, func(txCtx context.Context) error {
		var err error
		handle, err = r.backupTable(txCtx, name)
		return err
	})
	if err != nil {
		return nil, err
	}
	return handle, nil
}

func (r *PgBackupRepository) backupTable(ctx context.Context, name string) (*backup.Handle, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	ident := pgx.Identifier{name}.Sanitize()
	if _, err := tx.Exec(ctx, fmt.Sprintf(`CREATE TABLE %s AS TABLE reservations`, ident)); err != nil {
		return nil, errors.Wrap(err, "failed to create backup table")
	}

	var rows int64
	if err := tx.QueryRow(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM %s`, ident)).Scan(&rows); err != nil {
		return nil, errors.Wrap(err, "failed to count backup rows")
	}

	return &backup.Handle{Name: name, Rows: rows, CreatedAt: r.now()}, nil
}

// Restore copies the backup rows back into the live table inside one
// transaction, snapshotting the current state first. Any failure rolls the
// whole transaction back and leaves the live table as it was.
func (r *PgBackupRepository) Restore(ctx context.Context, h *backup.Handle) error {
	if h == nil || h.Name == "" {
		return ErrBackupNotFound
	}
	return composables.InTx(ctx, func(txCtx context.Context) error {
		return r.restoreTable(txCtx, h)
	})
}

func (r *PgBackupRepository) restoreTable(ctx context.Context, h *backup.Handle) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}

	exists, err := r.tableExists(ctx, tx, h.Name)
	if err != nil {
		return err
	}
	if !exists {
		return ErrBackupNotFound
	}

	preRestore := pgx.Identifier{h.Name + "_prerestore"}.Sanitize()
	ident := pgx.Identifier{h.Name}.Sanitize()

	if _, err := tx.Exec(ctx, fmt.Sprintf(`CREATE TABLE %s AS TABLE reservations`, preRestore)); err != nil {
		return errors.Wrap(err, "failed to snapshot pre-restore state")
	}
	if _, err := tx.Exec(ctx, `DELETE FROM reservations`); err != nil {
		return errors.Wrap(err, "failed to clear reservations")
	}
	if _, err := tx.Exec(ctx, fmt.Sprintf(`INSERT INTO reservations SELECT * FROM %s`, ident)); err != nil {
		return errors.Wrap(err, "failed to repopulate reservations")
	}
	return nil
}

func (r *PgBackupRepository) Exists(ctx context.Context, name string) (bool, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return false, err
	}
	return r.tableExists(ctx, tx, name)
}

func (r *PgBackupRepository) RowCount(ctx context.Context, name string) (int64, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, err
	}
	exists, err := r.tableExists(ctx, tx, name)
	if err != nil {
		return 0, err
	}
	if !exists {
		return 0, ErrBackupNotFound
	}
	var count int64
	if err := tx.QueryRow(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM %s`, pgx.Identifier{name}.Sanitize())).Scan(&count); err != nil {
		return 0, errors.Wrap(err, "failed to count rows")
	}
	return count, nil
}

func (r *PgBackupRepository) List(ctx context.Context) ([]string, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(
		ctx,
		`SELECT table_name FROM information_schema.tables
		 WHERE table_schema = current_schema() AND table_name LIKE $1
		 ORDER BY table_name`,
		backupTablePrefix+"%",
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list backup tables")
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, errors.Wrap(err, "failed to scan table name")
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "row iteration error")
	}
	return names, nil
}

func (r *PgBackupRepository) tableExists(ctx context.Context, tx composables.Tx, name string) (bool, error) {
	var exists bool
	if err := tx.QueryRow(
		ctx,
		`SELECT EXISTS (
			SELECT 1 FROM information_schema.tables
			WHERE table_schema = current_schema() AND table_name = $1
		)`,
		name,
	).Scan(&exists); err != nil {
		return false, errors.Wrap(err, "failed to check table existence")
	}
	return exists, nil
}
