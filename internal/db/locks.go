package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ErrLockTimeout is returned when a named lock could not be taken in time.
var ErrLockTimeout = errors.New("cannot acquire lock")

// AcquireNamedLock takes a MySQL advisory lock. The lock belongs to the
// session behind q, so q must be a pinned *sql.Conn or *sql.Tx.
func AcquireNamedLock(ctx context.Context, q Querier, key string, timeoutSec int) error {
	if q == nil || key == "" {
		return errors.New("AcquireNamedLock: invalid args")
	}
	var got sql.NullInt64
	if err := q.QueryRowContext(ctx, `SELECT GET_LOCK(?, ?)`, key, timeoutSec).Scan(&got); err != nil {
		return err
	}
	if !got.Valid || got.Int64 != 1 {
		return ErrLockTimeout
	}
	return nil
}

// ReleaseNamedLock is best effort; MySQL also drops the lock when the session closes.
func ReleaseNamedLock(ctx context.Context, q Querier, key string) {
	if q == nil || key == "" {
		return
	}
	_, _ = q.ExecContext(ctx, `SELECT RELEASE_LOCK(?)`, key)
}

// WithNamedLock runs fn in a transaction while holding key. The lock is
// taken on a reserved connection before BEGIN and released after COMMIT, so
// the next holder always sees the committed rows.
func WithNamedLock(ctx context.Context, conn *sql.DB, key string, timeoutSec int, fn func(tx *sql.Tx) error) error {
	if conn == nil {
		return fmt.Errorf("db tidak tersedia")
	}
	c, err := conn.Conn(ctx)
	if err != nil {
		return fmt.Errorf("reserve conn: %w", err)
	}
	defer c.Close()

	if err := AcquireNamedLock(ctx, c, key, timeoutSec); err != nil {
		return err
	}
	defer ReleaseNamedLock(context.WithoutCancel(ctx), c, key)

	tx, err := c.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	committed = true
	return nil
}
