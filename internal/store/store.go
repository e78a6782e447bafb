// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists ResearchEntities in a relational database. SQLite
// (mattn/go-sqlite3) is the default backend; Postgres (lib/pq) is available
// for shared deployments. Both share one database/sql implementation and
// differ only in their dialect.
package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/pdiddy/research-radar/pkg/types"
)

// ErrNotFound is returned when no row matches the requested entity ID.
var ErrNotFound = errors.New("entity not found")

// DefaultPath is the SQLite database file used when none is configured.
const DefaultPath = "data/research.db"

// Store is the read/write contract the gateway relies on.
type Store interface {
	// List returns every stored entity, newest first.
	List(ctx context.Context) ([]types.ResearchEntity, error)

	// Get returns the entity with id or ErrNotFound.
	Get(ctx context.Context, id string) (types.ResearchEntity, error)

	// Insert stores e unless a row with the same ID exists. It reports
	// whether a row was written.
	Insert(ctx context.Context, e types.ResearchEntity) (bool, error)

	// Update applies a partial update and returns the stored result, or
	// ErrNotFound.
	Update(ctx context.Context, id string, upd types.EntityUpdate) (types.ResearchEntity, error)

	// DeleteAll removes every row and returns how many were deleted.
	DeleteAll(ctx context.Context) (int64, error)

	// Count returns the number of stored rows.
	Count(ctx context.Context) (int, error)

	Close() error
}

// rowNamespace scopes the UUIDv5 row keys to this application's table.
var rowNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/pdiddy/research-radar/research_items"))

// RowID derives the storage key for an entity ID. The same upstream item
// always maps to the same row key.
func RowID(entityID string) uuid.UUID {
	return uuid.NewSHA1(rowNamespace, []byte(entityID))
}

// Open opens the configured backend and creates the schema if needed.
func Open(ctx context.Context, cfg types.StoreConfig) (*SQLStore, error) {
	switch cfg.Driver {
	case "", types.DriverSQLite:
		path := cfg.Path
		if path == "" {
			path = DefaultPath
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
		return openSQL(ctx, sqliteDialect, path+"?_journal_mode=WAL&_busy_timeout=5000")
	case types.DriverPostgres:
		dsn := strings.TrimSpace(cfg.DSN)
		if dsn == "" {
			return nil, errors.New("store.dsn is required for the postgres driver")
		}
		return openSQL(ctx, postgresDialect, dsn)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}
