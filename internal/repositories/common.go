package repositories

import (
	"database/sql"
	"time"

	intconfig "pickupcore/internal/config"
	intdb "pickupcore/internal/db"
)

// pick returns q when set, else the shared connection.
func pick(q intdb.Querier) intdb.Querier {
	if q != nil {
		return q
	}
	return intconfig.DB
}

func nullStringPtr(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}

func nullInt64Ptr(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	n := v.Int64
	return &n
}

func nullIntPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}

func nullFloatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func nullTimePtr(v sql.NullTime) *time.Time {
	if !v.Valid {
		return nil
	}
	t := v.Time
	return &t
}

// ptrArg turns a nil pointer into SQL NULL.
func ptrArg[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}
