package database

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// Connect opens the database selected by the configuration: PostgreSQL when
// databaseURL is set, a local SQLite file otherwise. The returned handle is
// passed to the repositories rather than kept as a package global.
func Connect(databaseURL, sqlitePath string) (*sqlx.DB, error) {
	if databaseURL != "" {
		db, err := sqlx.Connect("postgres", databaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to postgres: %v", err)
		}
		if err := initializeSchema(db); err != nil {
			db.Close()
			return nil, err
		}
		return db, nil
	}

	// Create data directory if it doesn't exist
	if dir := filepath.Dir(sqlitePath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %v", err)
		}
	}

	db, err := sqlx.Connect("sqlite3", sqlitePath)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %v", err)
	}

	// SQLite doesn't support multiple writers
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := initializeSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// initializeSchema creates the words and study_history tables if they don't exist
func initializeSchema(db *sqlx.DB) error {
	idColumn := "INTEGER PRIMARY KEY AUTOINCREMENT"
	if db.DriverName() == "postgres" {
		idColumn = "SERIAL PRIMARY KEY"
	}

	_, err := db.Exec(fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS words (
			id %s,
			username TEXT NOT NULL,
			word_type TEXT DEFAULT '',
			article TEXT DEFAULT '',
			word_de TEXT DEFAULT '',
			plural TEXT DEFAULT '',
			praeteritum TEXT DEFAULT '',
			partizip TEXT DEFAULT '',
			word_ru TEXT DEFAULT '',
			folder TEXT DEFAULT '',
			level TEXT DEFAULT '',
			subfolder TEXT DEFAULT '',
			example TEXT DEFAULT '',
			score INTEGER DEFAULT 0,
			next_review BIGINT DEFAULT 0,
			ease_factor REAL DEFAULT 2.5,
			interval INTEGER DEFAULT 0,
			repetitions INTEGER DEFAULT 0
		)
	`, idColumn))
	if err != nil {
		return fmt.Errorf("failed to create words table: %v", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS study_history (
			username TEXT NOT NULL,
			date_str TEXT NOT NULL,
			ms_spent BIGINT DEFAULT 0,
			PRIMARY KEY (username, date_str)
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create study_history table: %v", err)
	}

	return nil
}
