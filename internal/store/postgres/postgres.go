// Package postgres implements store.Directory and store.Ledger on
// PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/pcastillom/presencia/internal/config"
)

// Store holds the connection pool and implements both collaborator
// interfaces.
type Store struct {
	db *sql.DB
}

// New creates a connection pool and verifies connectivity.
func New(cfg *config.DatabaseConfig) (*Store, error) {
	if cfg.URL == "" {
		return nil, errors.New("database URL is required")
	}

	db, err := sql.Open("postgres", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(time.Hour)
	db.SetConnMaxIdleTime(10 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the connection pool.
func (s *Store) Close() error {
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			return fmt.Errorf("closing database connection: %w", err)
		}
	}
	return nil
}

// Migrate creates the schema. The UNIQUE constraint on attendance is the
// storage-level half of the duplicate-suppression guarantee; the session
// loop provides the other half.
func (s *Store) Migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id       SERIAL PRIMARY KEY,
			name     VARCHAR(255) NOT NULL,
			rut      VARCHAR(20) NOT NULL UNIQUE,
			program  VARCHAR(100)
		)`,
		`CREATE TABLE IF NOT EXISTS events (
			id          SERIAL PRIMARY KEY,
			name        VARCHAR(100) NOT NULL,
			date        DATE NOT NULL,
			description VARCHAR(255),
			presenter   VARCHAR(60),
			active      BOOLEAN NOT NULL DEFAULT FALSE
		)`,
		`CREATE TABLE IF NOT EXISTS attendance (
			id          SERIAL PRIMARY KEY,
			user_id     INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			event_id    INTEGER NOT NULL REFERENCES events(id) ON DELETE CASCADE,
			recorded_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
			UNIQUE(user_id, event_id)
		)`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("running migration: %w", err)
		}
	}
	return nil
}
