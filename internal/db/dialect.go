package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// Dialect selects the SQL flavour for statements that differ between drivers.
type Dialect string

const (
	MySQL  Dialect = "mysql"
	SQLite Dialect = "sqlite"
)

func ParseDialect(driver string) Dialect {
	if strings.EqualFold(strings.TrimSpace(driver), string(MySQL)) {
		return MySQL
	}
	return SQLite
}

// UpsertRouteFactSQL writes a route fact keyed by its ordered pair.
func (d Dialect) UpsertRouteFactSQL() string {
	const insert = `INSERT INTO route_facts (origin, destination, distance_km, time_hours, fare_pkr, base_safety_score, source, fetched_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	if d == MySQL {
		return insert + `
ON DUPLICATE KEY UPDATE distance_km = VALUES(distance_km), time_hours = VALUES(time_hours), fare_pkr = VALUES(fare_pkr),
  base_safety_score = VALUES(base_safety_score), source = VALUES(source), fetched_at = VALUES(fetched_at)`
	}
	return insert + `
ON CONFLICT (origin, destination) DO UPDATE SET distance_km = excluded.distance_km, time_hours = excluded.time_hours,
  fare_pkr = excluded.fare_pkr, base_safety_score = excluded.base_safety_score, source = excluded.source, fetched_at = excluded.fetched_at`
}

func (d Dialect) schema() []string {
	if d == MySQL {
		return []string{
			`CREATE TABLE IF NOT EXISTS route_facts (
  id BIGINT AUTO_INCREMENT PRIMARY KEY,
  origin VARCHAR(64) NOT NULL,
  destination VARCHAR(64) NOT NULL,
  distance_km DOUBLE NOT NULL,
  time_hours DOUBLE NOT NULL,
  fare_pkr BIGINT NOT NULL DEFAULT 0,
  base_safety_score INT NOT NULL,
  source VARCHAR(16) NOT NULL,
  fetched_at DATETIME NOT NULL,
  UNIQUE KEY uq_route_facts_pair (origin, destination)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
			`CREATE TABLE IF NOT EXISTS safety_alerts (
  id BIGINT AUTO_INCREMENT PRIMARY KEY,
  region VARCHAR(64) NOT NULL,
  hazard_type VARCHAR(16) NOT NULL,
  severity VARCHAR(16) NOT NULL,
  description TEXT NOT NULL,
  provider VARCHAR(32) NOT NULL DEFAULT 'admin',
  is_active TINYINT(1) NOT NULL DEFAULT 1,
  observed_at DATETIME NOT NULL,
  expires_at DATETIME NULL,
  KEY idx_safety_alerts_region (region, is_active)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
		}
	}
	return []string{
		`CREATE TABLE IF NOT EXISTS route_facts (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  origin TEXT NOT NULL,
  destination TEXT NOT NULL,
  distance_km REAL NOT NULL,
  time_hours REAL NOT NULL,
  fare_pkr INTEGER NOT NULL DEFAULT 0,
  base_safety_score INTEGER NOT NULL,
  source TEXT NOT NULL,
  fetched_at DATETIME NOT NULL,
  UNIQUE (origin, destination)
)`,
		`CREATE TABLE IF NOT EXISTS safety_alerts (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  region TEXT NOT NULL,
  hazard_type TEXT NOT NULL,
  severity TEXT NOT NULL,
  description TEXT NOT NULL,
  provider TEXT NOT NULL DEFAULT 'admin',
  is_active INTEGER NOT NULL DEFAULT 1,
  observed_at DATETIME NOT NULL,
  expires_at DATETIME NULL
)`,
		`CREATE INDEX IF NOT EXISTS idx_safety_alerts_region ON safety_alerts (region, is_active)`,
	}
}

// EnsureSchema creates the planner tables when missing.
func EnsureSchema(ctx context.Context, conn *sql.DB, d Dialect) error {
	for _, stmt := range d.schema() {
		if _, err := conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema (%s): %w", d, err)
		}
	}
	return nil
}
