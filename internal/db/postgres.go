package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	// PostgreSQL driver import for database/sql
	_ "github.com/lib/pq"
)

// schema holds the tables behind API-key rate limiting
var schema = []string{
	`CREATE EXTENSION IF NOT EXISTS pgcrypto`,
	`CREATE TABLE IF NOT EXISTS api_keys (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		key_hash TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		rate_limit INTEGER NOT NULL,
		rate_window_seconds INTEGER NOT NULL,
		is_active BOOLEAN NOT NULL DEFAULT true,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		last_used_at TIMESTAMPTZ
	)`,
	`CREATE TABLE IF NOT EXISTS rate_limit_records (
		api_key_id UUID NOT NULL REFERENCES api_keys(id) ON DELETE CASCADE,
		window_start TIMESTAMPTZ NOT NULL,
		request_count INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (api_key_id, window_start)
	)`,
}

// Database wraps the sql.DB connection for PostgreSQL operations
type Database struct {
	*sql.DB
}

// ConnectionString builds a lib/pq keyword/value DSN
func ConnectionString(host string, port string, user string, password string, dbname string) string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname,
	)
}

// NewPostgresConnection opens and pings a PostgreSQL connection
func NewPostgresConnection(ctx context.Context, host string, port string, user string, password string, dbname string) (*Database, error) {
	sqlDB, err := sql.Open("postgres", ConnectionString(host, port, user, password, dbname))
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)

	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Database{DB: sqlDB}, nil
}

// EnsureSchema creates the rate limiting tables when they are missing
func (database *Database) EnsureSchema(ctx context.Context) error {
	for _, statement := range schema {
		if _, err := database.ExecContext(ctx, statement); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}

// Close closes the database connection
func (database *Database) Close() error {
	if database.DB != nil {
		return database.DB.Close()
	}
	return nil
}
