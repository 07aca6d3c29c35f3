// Package mariadb implements store.Directory and store.Ledger on
// MariaDB/MySQL.
package mariadb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"github.com/pcastillom/presencia/internal/config"
)

// Store holds the connection pool and implements both collaborator
// interfaces.
type Store struct {
	db *sql.DB
}

// New creates a connection pool and verifies connectivity. parseTime is
// forced on so DATE and TIMESTAMP columns scan into time.Time.
func New(cfg *config.DatabaseConfig) (*Store, error) {
	if cfg.MariaDSN == "" {
		return nil, errors.New("MariaDB DSN is required")
	}

	dsn := cfg.MariaDSN
	if !strings.Contains(dsn, "parseTime") {
		if strings.Contains(dsn, "?") {
			dsn += "&parseTime=true"
		} else {
			dsn += "?parseTime=true"
		}
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MariaDB: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping MariaDB: %w", err)
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

// Migrate creates the schema, with the same unique attendance pair
// constraint as the postgres backend.
func (s *Store) Migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id       INT AUTO_INCREMENT PRIMARY KEY,
			name     VARCHAR(255) NOT NULL,
			rut      VARCHAR(20) NOT NULL UNIQUE,
			program  VARCHAR(100)
		)`,
		`CREATE TABLE IF NOT EXISTS events (
			id          INT AUTO_INCREMENT PRIMARY KEY,
			name        VARCHAR(100) NOT NULL,
			date        DATE NOT NULL,
			description VARCHAR(255),
			presenter   VARCHAR(60),
			active      BOOLEAN NOT NULL DEFAULT FALSE
		)`,
		`CREATE TABLE IF NOT EXISTS attendance (
			id          INT AUTO_INCREMENT PRIMARY KEY,
			user_id     INT NOT NULL,
			event_id    INT NOT NULL,
			recorded_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE KEY uniq_user_event (user_id, event_id),
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE,
			FOREIGN KEY (event_id) REFERENCES events(id) ON DELETE CASCADE
		)`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("running migration: %w", err)
		}
	}
	return nil
}
