package store

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-dav-sync/internal/config"
	"github.com/MKhiriev/go-dav-sync/internal/logger"
	"github.com/MKhiriev/go-dav-sync/migrations"
)

// Storages aggregates every repository the services layer depends on.
type Storages struct {
	EntryRepository      EntryRepository
	CredentialRepository CredentialRepository
}

// NewStorages opens the configured database (PostgreSQL when a DSN is set,
// the local SQLite file otherwise), runs the schema migrations and wires the
// repositories over the shared connection.
func NewStorages(ctx context.Context, cfg config.Storage, log *logger.Logger) (*Storages, error) {
	db, dialect, err := connect(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	if err := migrations.Migrate(db.DB, dialect); err != nil {
		return nil, fmt.Errorf("error migrating database schema: %w", err)
	}

	return &Storages{
		EntryRepository:      NewEntryRepository(db, log),
		CredentialRepository: NewCredentialRepository(db, log),
	}, nil
}

func connect(ctx context.Context, cfg config.Storage, log *logger.Logger) (*DB, string, error) {
	if cfg.DB.DSN != "" {
		db, err := NewConnectPostgres(ctx, cfg.DB, log)
		if err != nil {
			return nil, "", err
		}
		return db, "pgx", nil
	}

	db, err := NewConnectSQLite(ctx, cfg.SQLite, log)
	if err != nil {
		return nil, "", err
	}
	return db, "sqlite3", nil
}
