// Package sqlite opens the shared application database.
//
// Auth and task storage share one SQLite file so the task ownership foreign
// key can cascade deletes inside a single transaction boundary.
package sqlite

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/taskdeck/taskdeck/internal/platform/storage/sqlitemigrate"
	"github.com/taskdeck/taskdeck/internal/storage/sqlite/migrations"
	_ "modernc.org/sqlite"
)

// Open opens the SQLite database at path and applies bundled migrations.
func Open(path string) (*sql.DB, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	cleanPath := filepath.Clean(path)
	// The _pragma form applies per pooled connection; ownership cascade on
	// user deletion depends on foreign_keys staying ON for all of them.
	dsn := cleanPath + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL&_pragma=foreign_keys(ON)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	// modernc.org/sqlite does not honor every DSN pragma; enforce the ones
	// correctness depends on.
	if _, err := sqlDB.Exec("PRAGMA foreign_keys = ON"); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if err := sqlitemigrate.Apply(sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return sqlDB, nil
}
