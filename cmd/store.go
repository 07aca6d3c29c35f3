package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/pcastillom/presencia/internal/config"
	"github.com/pcastillom/presencia/internal/store"
	"github.com/pcastillom/presencia/internal/store/mariadb"
	"github.com/pcastillom/presencia/internal/store/postgres"
)

// storeBackend is what every command needs from the database layer.
type storeBackend interface {
	store.Directory
	store.Ledger
	Migrate(ctx context.Context) error
	Close() error
}

// openStore connects to the configured backend and applies the schema.
// DATABASE_URL selects PostgreSQL; MARIADB_DSN selects MariaDB.
func openStore(ctx context.Context, cfg *config.Config) (storeBackend, error) {
	var (
		backend storeBackend
		err     error
	)
	switch {
	case cfg.Database.URL != "":
		backend, err = postgres.New(&cfg.Database)
	case cfg.Database.MariaDSN != "":
		backend, err = mariadb.New(&cfg.Database)
	default:
		return nil, errors.New("DATABASE_URL or MARIADB_DSN environment variable is required")
	}
	if err != nil {
		return nil, err
	}

	if err := backend.Migrate(ctx); err != nil {
		backend.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}
	return backend, nil
}
