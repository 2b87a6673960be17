// Package sqlite provides a SQLite-backed storage driver.
package sqlite

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/amberhq/amber/pkg/storage/relational"
)

// Driver implements storage.Driver using SQLite via the relational driver.
type Driver struct {
	*relational.Driver
}

// NewDriver creates a new SQLite-backed store.
// The dbPath can be a file path or ":memory:" for an in-memory database.
func NewDriver(dbPath string) (*Driver, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite-specific pragmas
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	inner, err := relational.NewDriver(db, relational.DialectSQLite)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Driver{Driver: inner}, nil
}
