package mapping

import "database/sql"

// ValueToSQLNullInt64 treats zero as absent, matching the optional
// external-id columns.
func ValueToSQLNullInt64(v int64) sql.NullInt64 {
	return sql.NullInt64{Int64: v, Valid: v != 0}
}

func SQLNullInt64ToValue(v sql.NullInt64) int64 {
	if !v.Valid {
		return 0
	}
	return v.Int64
}

func SQLNullInt32ToValue(v sql.NullInt32) int32 {
	if !v.Valid {
		return 0
	}
	return v.Int32
}
