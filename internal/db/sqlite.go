package db

import (
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/avivlab/stressexp/internal/api"
)

// Schema variants. Both deployments exist in the field; neither
// supersedes the other.
const (
	SchemaFixed   = "fixed"
	SchemaJournal = "journal"
)

// Open opens the SQLite file and applies the pragmas every deployment
// relies on.
func Open(path string) (*sql.DB, error) {
	if path == "" {
		return nil, errors.New("sqlite path is required")
	}
	dsn := fmt.Sprintf("file:%s?cache=shared&_busy_timeout=5000", filepath.ToSlash(path))
	sqliteDB, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
	}
	for _, stmt := range pragmas {
		if _, err := sqliteDB.Exec(stmt); err != nil {
			return nil, fmt.Errorf("apply sqlite pragma %q: %w", stmt, err)
		}
	}
	return sqliteDB, nil
}

// NewStore constructs the store for the requested schema variant.
func NewStore(sqliteDB *sql.DB, variant string) (api.Store, error) {
	switch variant {
	case SchemaFixed:
		return NewFixedStore(sqliteDB)
	case SchemaJournal:
		return NewJournalStore(sqliteDB)
	}
	return nil, fmt.Errorf("unknown schema variant %q", variant)
}
