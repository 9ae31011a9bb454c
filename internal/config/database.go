package config

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"  // PostgreSQL driver
	_ "modernc.org/sqlite" // pure-Go SQLite driver
)

// SetupDatabase initializes the database connection for the configured
// driver and ensures the schema exists.
func SetupDatabase(cfg *Config) (*sqlx.DB, error) {
	driver := cfg.Database.Driver
	if driver != "postgres" && driver != "sqlite" {
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", driver)
	}

	db, err := sqlx.Connect(driver, cfg.Database.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if driver == "sqlite" {
		// The modernc driver serializes writes; a single connection
		// avoids SQLITE_BUSY under concurrent handlers.
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
	}

	if err := createTables(db); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return db, nil
}

// createTables creates the necessary tables in the database. The DDL is
// kept to the dialect intersection of Postgres and SQLite.
func createTables(db *sqlx.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS rides (
			id VARCHAR(36) PRIMARY KEY,
			user_id VARCHAR(64) NOT NULL,
			participant_ids TEXT NOT NULL DEFAULT '[]',
			start_km DOUBLE PRECISION NOT NULL,
			end_km DOUBLE PRECISION,
			started_at TIMESTAMP NOT NULL,
			ended_at TIMESTAMP,
			end_lat DOUBLE PRECISION,
			end_lng DOUBLE PRECISION
		)`,
		`CREATE TABLE IF NOT EXISTS costs (
			id VARCHAR(36) PRIMARY KEY,
			user_id VARCHAR(64) NOT NULL,
			amount DOUBLE PRECISION NOT NULL,
			type VARCHAR(16) NOT NULL,
			description TEXT,
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS wear_payments (
			id VARCHAR(36) PRIMARY KEY,
			user_id VARCHAR(64) NOT NULL,
			amount DOUBLE PRECISION NOT NULL,
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS config (
			key VARCHAR(64) PRIMARY KEY,
			value TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_rides_started_at ON rides(started_at)`,
		`CREATE INDEX IF NOT EXISTS idx_costs_user_id ON costs(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_wear_payments_user_id ON wear_payments(user_id)`,
	}

	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
