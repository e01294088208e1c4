// Package migrations opens sqlite databases and brings their schema up
// to date. Schemas are applied as-is on first open; a later change to a
// schema means writing an ALTER alongside it, there is no migration
// framework behind this.
package migrations

import (
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"
)

// Open opens (creating if needed) the sqlite database at path and
// applies schema. Re-applying the same schema on an existing database
// is a no-op.
func Open(path, schema string) (*sql.DB, error) {
	sqlite, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite db at %q: %w", path, err)
	}

	// single-writer workloads, but the scraper and a cli poking at the
	// same file should not trip over each other
	pragmas := []string{
		"PRAGMA journal_mode = WAL;",
		"PRAGMA busy_timeout = 5000;",
		"PRAGMA foreign_keys = ON;",
	}
	for _, pragma := range pragmas {
		if _, err := sqlite.Exec(pragma); err != nil {
			sqlite.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", strings.TrimSpace(pragma), err)
		}
	}

	_, err = sqlite.Exec(schema)
	if err != nil && !strings.Contains(err.Error(), "already exists") {
		sqlite.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return sqlite, nil
}
