// Package db keeps the install history in SQLite.
package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// DefaultHistoryLimit is how many history rows Prune keeps by default
const DefaultHistoryLimit = 1000

// DB wraps the SQLite database connection
type DB struct {
	*sql.DB
}

// New opens the history database at path, creating its directory if needed,
// and brings the schema up to date. ":memory:" opens a throwaway database.
func New(path string) (*DB, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// A single connection keeps ":memory:" databases from splitting across the pool
	sqlDB.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL;",
		"PRAGMA busy_timeout = 5000;",
	} {
		if _, err := sqlDB.Exec(pragma); err != nil {
			sqlDB.Close()
			return nil, fmt.Errorf("setting pragmas: %w", err)
		}
	}

	database := &DB{DB: sqlDB}

	if err := database.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return database, nil
}

// Prune deletes all but the newest keep history rows and reports how many
// were removed. keep <= 0 keeps everything.
func (d *DB) Prune(keep int) (int64, error) {
	if keep <= 0 {
		return 0, nil
	}
	res, err := d.Exec(`
		DELETE FROM install_history
		WHERE id NOT IN (SELECT id FROM install_history ORDER BY id DESC LIMIT ?)
	`, keep)
	if err != nil {
		return 0, fmt.Errorf("pruning history: %w", err)
	}
	return res.RowsAffected()
}
