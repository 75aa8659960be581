package db

import (
	"context"
	"database/sql"
	"fmt"
	"log"
)

type tableDDL struct {
	name string
	ddl  string
}

var schema = []tableDDL{
	{"class_sessions", `
CREATE TABLE IF NOT EXISTS class_sessions (
	id VARCHAR(32) NOT NULL PRIMARY KEY,
	name VARCHAR(100) NOT NULL,
	base_capacity INT NOT NULL,
	cutoff_hour TINYINT NOT NULL,
	sort_order INT NOT NULL DEFAULT 0
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;`},
	{"day_overrides", `
CREATE TABLE IF NOT EXISTS day_overrides (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	override_date DATE NOT NULL,
	session_id VARCHAR(32) NOT NULL,
	is_closed TINYINT(1) NOT NULL DEFAULT 0,
	custom_capacity INT NULL,
	closure_reason VARCHAR(255) NULL,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
	UNIQUE KEY uniq_date_session (override_date, session_id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;`},
	{"pickup_zones", `
CREATE TABLE IF NOT EXISTS pickup_zones (
	id VARCHAR(64) NOT NULL PRIMARY KEY,
	name VARCHAR(100) NOT NULL,
	color VARCHAR(16) NOT NULL DEFAULT '',
	priority INT NOT NULL DEFAULT 0,
	polygon JSON NOT NULL,
	morning_start VARCHAR(5) NOT NULL DEFAULT '',
	morning_end VARCHAR(5) NOT NULL DEFAULT '',
	evening_start VARCHAR(5) NOT NULL DEFAULT '',
	evening_end VARCHAR(5) NOT NULL DEFAULT '',
	updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;`},
	{"drivers", `
CREATE TABLE IF NOT EXISTS drivers (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	name VARCHAR(255) NOT NULL,
	phone VARCHAR(100) NOT NULL DEFAULT '',
	active TINYINT(1) NOT NULL DEFAULT 1,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;`},
	{"bookings", `
CREATE TABLE IF NOT EXISTS bookings (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	trip_date DATE NOT NULL,
	session_id VARCHAR(32) NOT NULL,
	pax INT NOT NULL,
	status VARCHAR(16) NOT NULL DEFAULT 'active',
	guest_name VARCHAR(255) NOT NULL DEFAULT '',
	guest_phone VARCHAR(100) NOT NULL DEFAULT '',
	zone_id VARCHAR(64) NULL,
	hotel_name VARCHAR(255) NOT NULL DEFAULT '',
	lat DOUBLE NULL,
	lng DOUBLE NULL,
	pickup_time VARCHAR(5) NOT NULL DEFAULT '',
	route_order INT NOT NULL DEFAULT 999,
	assigned_driver_id BIGINT NULL,
	transport_status VARCHAR(20) NOT NULL DEFAULT 'waiting',
	actual_pickup_time DATETIME NULL,
	actual_dropoff_time DATETIME NULL,
	created_at DATETIME(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6),
	updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
	KEY idx_capacity (trip_date, session_id, status),
	KEY idx_dispatch (trip_date, session_id, transport_status, route_order)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;`},
	{"staff_accounts", `
CREATE TABLE IF NOT EXISTS staff_accounts (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	username VARCHAR(100) NOT NULL,
	password_hash VARCHAR(255) NOT NULL,
	role VARCHAR(16) NOT NULL,
	driver_id BIGINT NULL,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	UNIQUE KEY uniq_username (username)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;`},
}

const seedSessions = `INSERT IGNORE INTO class_sessions (id, name, base_capacity, cutoff_hour, sort_order) VALUES
	('morning', 'Morning Class', 12, 10, 1),
	('evening', 'Evening Class', 12, 17, 2)`

// EnsureSchema creates missing tables and seeds the default sessions.
func EnsureSchema(ctx context.Context, conn *sql.DB) error {
	if conn == nil {
		return fmt.Errorf("db tidak tersedia")
	}
	for _, t := range schema {
		if HasTable(ctx, conn, t.name) {
			continue
		}
		if _, err := conn.ExecContext(ctx, t.ddl); err != nil {
			return fmt.Errorf("create table %s: %w", t.name, err)
		}
		log.Printf("[SCHEMA] tabel %s dibuat", t.name)
	}
	if _, err := conn.ExecContext(ctx, seedSessions); err != nil {
		return fmt.Errorf("seed class_sessions: %w", err)
	}
	return nil
}
