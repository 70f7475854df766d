package backup

import (
	"context"
	"time"
)

// Handle names a point-in-time copy of the reservation table.
type Handle struct {
	Name      string
	Rows      int64
	CreatedAt time.Time
}

type Repository interface {
	// Backup snapshots the reservation table under a fresh backup name.
	Backup(ctx context.Context) (*Handle, error)
	// Restore copies the backup rows back into the live table, snapshotting
	// the pre-restore state first. The whole restore is one transaction.
	Restore(ctx context.Context, h *Handle) error
	Exists(ctx context.Context, name string) (bool, error)
	RowCount(ctx context.Context, name string) (int64, error)
	List(ctx context.Context) ([]string, error)
}
