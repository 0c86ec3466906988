// Package store implements the journal's record store: a small document
// store backed by SQLite. Collections hold schemaless JSON documents with a
// few extracted identity columns (autoincrement id, uuid, content hash) so
// duplicate lookups stay indexed. The store owns id assignment and
// created/edited stamping; callers never set those on first insert.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"daybook/internal/config"
	_ "modernc.org/sqlite"
)

// CurrentSchemaVersion is the latest schema version.
// Bump this when adding migrations.
const CurrentSchemaVersion = 1

// Init initializes the SQLite database at baseDir/daybook.db.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.daybook.
func Init(baseDir string) (*sql.DB, error) {
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}
	_ = os.Chmod(baseDir, 0700)

	// Scratch directory for zip extraction during imports
	scratchDir := filepath.Join(baseDir, "scratch")
	if err := os.MkdirAll(scratchDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create scratch directory: %w", err)
	}
	_ = os.Chmod(scratchDir, 0700)

	dbPath := filepath.Join(baseDir, "daybook.db")
	dsn := dbPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := verifyWALMode(db); err != nil {
		db.Close()
		return nil, err
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}

	_ = os.Chmod(dbPath, 0600)

	return db, nil
}

// ConfigurePool applies connection pool settings from config.
// Only sets limits if explicitly configured (non-zero values).
func ConfigurePool(db *sql.DB, cfg *config.Config) {
	if cfg == nil {
		return
	}
	if cfg.Storage.DBMaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.Storage.DBMaxOpenConns)
	}
	if cfg.Storage.DBMaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.Storage.DBMaxIdleConns)
	}
}

// migrate applies schema migrations based on user_version.
func migrate(db *sql.DB) error {
	version, err := GetUserVersion(db)
	if err != nil {
		return err
	}

	// Migration 0 -> 1: Initial schema (v1)
	//
	// One table holds every collection. seq (rowid) records insertion
	// order, which is what Last() and sequence assignment read; record_id,
	// uuid and file_hash are extracted from the document so identity
	// lookups hit indexes instead of JSON scans.
	if version < 1 {
		schema := `
		CREATE TABLE IF NOT EXISTS documents (
		  seq        INTEGER PRIMARY KEY AUTOINCREMENT,
		  collection TEXT NOT NULL,
		  record_id  INTEGER,
		  uuid       TEXT,
		  file_hash  TEXT,
		  doc        TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_documents_collection_seq
		ON documents(collection, seq);

		CREATE INDEX IF NOT EXISTS idx_documents_record_id
		ON documents(collection, record_id)
		WHERE record_id IS NOT NULL;

		CREATE INDEX IF NOT EXISTS idx_documents_uuid
		ON documents(collection, uuid)
		WHERE uuid IS NOT NULL;

		CREATE INDEX IF NOT EXISTS idx_documents_file_hash
		ON documents(collection, file_hash)
		WHERE file_hash IS NOT NULL;

		CREATE TABLE IF NOT EXISTS import_history (
		  run_id      TEXT NOT NULL,
		  source      TEXT NOT NULL,
		  file_hash   TEXT NOT NULL,
		  record_id   INTEGER,
		  imported_at INTEGER NOT NULL,
		  PRIMARY KEY (source, file_hash)
		);
		`
		if _, err := db.Exec(schema); err != nil {
			return fmt.Errorf("migration 1 failed: %w", err)
		}
		if err := SetUserVersion(db, 1); err != nil {
			return err
		}
	}

	// Future migrations go here:
	// if version < 2 { ... }

	return nil
}

// verifyWALMode checks that WAL mode is active (set via connection string).
func verifyWALMode(db *sql.DB) error {
	var journalMode string
	if err := db.QueryRow("PRAGMA journal_mode;").Scan(&journalMode); err != nil {
		return fmt.Errorf("failed to verify journal mode: %w", err)
	}
	if journalMode != "wal" {
		return fmt.Errorf("expected WAL mode, got %s", journalMode)
	}
	return nil
}

// GetUserVersion returns the current schema version (user_version pragma).
func GetUserVersion(db *sql.DB) (int, error) {
	var version int
	if err := db.QueryRow("PRAGMA user_version;").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to get user_version: %w", err)
	}
	return version, nil
}

// SetUserVersion sets the schema version (user_version pragma).
func SetUserVersion(db *sql.DB, version int) error {
	_, err := db.Exec(fmt.Sprintf("PRAGMA user_version=%d", version))
	if err != nil {
		return fmt.Errorf("failed to set user_version: %w", err)
	}
	return nil
}
