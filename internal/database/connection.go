package database

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// Options selects the database to connect to
type Options struct {
	// Driver is "sqlite3" or "postgres"
	Driver string
	// DataDir holds the SQLite file
	DataDir string
	// URL is the Postgres connection string
	URL string
}

// Connect opens the database and makes sure the schema exists
func Connect(opts Options) (*sqlx.DB, error) {
	var (
		db  *sqlx.DB
		err error
	)
	switch opts.Driver {
	case "postgres":
		if opts.URL == "" {
			return nil, fmt.Errorf("postgres backend requires DATABASE_URL")
		}
		db, err = sqlx.Connect("postgres", opts.URL)
	case "sqlite3", "sqlite", "":
		// Create data directory if it doesn't exist
		if err := os.MkdirAll(opts.DataDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %v", err)
		}
		db, err = sqlx.Connect("sqlite3", filepath.Join(opts.DataDir, "wordloop.db"))
		if err == nil {
			// SQLite doesn't support multiple writers
			db.SetMaxOpenConns(1)
			db.SetMaxIdleConns(1)
		}
	default:
		return nil, fmt.Errorf("unknown database driver %q", opts.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %v", err)
	}

	if err := initializeSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// initializeSchema creates necessary tables if they don't exist
func initializeSchema(db *sqlx.DB) error {
	statements := []struct {
		table string
		ddl   string
	}{
		{"word_records", `
			CREATE TABLE IF NOT EXISTS word_records (
				item_id TEXT PRIMARY KEY,
				level INTEGER NOT NULL DEFAULT 0,
				total_count INTEGER NOT NULL DEFAULT 0,
				correct_count INTEGER NOT NULL DEFAULT 0
			)`},
		{"review_history", `
			CREATE TABLE IF NOT EXISTS review_history (
				item_id TEXT NOT NULL,
				seq INTEGER NOT NULL,
				reviewed_at DOUBLE PRECISION NOT NULL,
				correct BOOLEAN NOT NULL,
				PRIMARY KEY (item_id, seq)
			)`},
		{"queue_entries", `
			CREATE TABLE IF NOT EXISTS queue_entries (
				level INTEGER NOT NULL,
				position INTEGER NOT NULL,
				due_at DOUBLE PRECISION NOT NULL,
				item_id TEXT NOT NULL,
				PRIMARY KEY (level, position)
			)`},
		{"favorites", `
			CREATE TABLE IF NOT EXISTS favorites (
				position INTEGER PRIMARY KEY,
				item_id TEXT NOT NULL UNIQUE
			)`},
	}
	for _, st := range statements {
		if _, err := db.Exec(st.ddl); err != nil {
			return fmt.Errorf("failed to create %s table: %v", st.table, err)
		}
	}
	return nil
}
