package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	intdb "pickupcore/internal/db"
	"pickupcore/internal/domain"
	"pickupcore/internal/domain/models"

	"github.com/go-sql-driver/mysql"
)

// mysqlDuplicateEntry is ER_DUP_ENTRY.
const mysqlDuplicateEntry = 1062

type DriverRepository struct {
	DB intdb.Querier
}

func (r DriverRepository) GetByID(ctx context.Context, id int64) (models.Driver, error) {
	var d models.Driver
	err := pick(r.DB).QueryRowContext(ctx, `
		SELECT id, COALESCE(name, ''), COALESCE(phone, ''), active
		FROM drivers
		WHERE id = ?
		LIMIT 1
	`, id).Scan(&d.ID, &d.Name, &d.Phone, &d.Active)
	if errors.Is(err, sql.ErrNoRows) {
		return d, domain.NotFoundError{Resource: fmt.Sprintf("driver %d", id), Err: err}
	}
	return d, err
}

// StaffRepository reads console logins.
type StaffRepository struct {
	DB intdb.Querier
}

func (r StaffRepository) GetByUsername(ctx context.Context, username string) (models.StaffAccount, error) {
	var (
		a        models.StaffAccount
		driverID sql.NullInt64
	)
	err := pick(r.DB).QueryRowContext(ctx, `
		SELECT id, username, password_hash, role, driver_id
		FROM staff_accounts
		WHERE username = ?
		LIMIT 1
	`, username).Scan(&a.ID, &a.Username, &a.PasswordHash, &a.Role, &driverID)
	if errors.Is(err, sql.ErrNoRows) {
		return a, domain.NotFoundError{Resource: "staff account", Err: err}
	}
	a.DriverID = nullInt64Ptr(driverID)
	return a, err
}

func (r DriverRepository) List(ctx context.Context) ([]models.Driver, error) {
	rows, err := pick(r.DB).QueryContext(ctx, `
		SELECT id, COALESCE(name, ''), COALESCE(phone, ''), active
		FROM drivers
		ORDER BY active DESC, name ASC, id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Driver{}
	for rows.Next() {
		var d models.Driver
		if err := rows.Scan(&d.ID, &d.Name, &d.Phone, &d.Active); err != nil {
			return out, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r DriverRepository) Insert(ctx context.Context, d models.Driver) (int64, error) {
	res, err := pick(r.DB).ExecContext(ctx, `INSERT INTO drivers (name, phone, active) VALUES (?, ?, ?)`, d.Name, d.Phone, d.Active)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// Insert stores a login. A taken username is reported as a ConflictError.
func (r StaffRepository) Insert(ctx context.Context, a models.StaffAccount) (int64, error) {
	res, err := pick(r.DB).ExecContext(ctx, `
		INSERT INTO staff_accounts (username, password_hash, role, driver_id)
		VALUES (?, ?, ?, ?)
	`, a.Username, a.PasswordHash, a.Role, ptrArg(a.DriverID))
	if err != nil {
		var me *mysql.MySQLError
		if errors.As(err, &me) && me.Number == mysqlDuplicateEntry {
			return 0, domain.ConflictError{Resource: "staff account", Msg: "username sudah terdaftar", Err: err}
		}
		return 0, err
	}
	return res.LastInsertId()
}
