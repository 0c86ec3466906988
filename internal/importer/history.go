package importer

import (
	"database/sql"
	"time"

	"daybook/internal/errors"
)

// History is the import provenance log: which source file each run brought
// in and the record it produced. Duplicate detection does not read it; that
// goes through the store's identity columns.
type History struct {
	db *sql.DB
}

// NewHistory wraps the import_history table.
func NewHistory(db *sql.DB) *History {
	return &History{db: db}
}

// HistoryEntry is one imported file within a run.
type HistoryEntry struct {
	RunID      string    `json:"run_id"`
	Source     string    `json:"source"`
	FileHash   string    `json:"file_hash"`
	RecordID   int64     `json:"record_id"`
	ImportedAt time.Time `json:"imported_at"`
}

// Record logs one imported file. Re-importing the same source and hash
// overwrites the earlier row with the newer run.
func (h *History) Record(runID, source, hash string, recordID int64) error {
	_, err := h.db.Exec(`
		INSERT INTO import_history (run_id, source, file_hash, record_id, imported_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(source, file_hash) DO UPDATE SET
		  run_id = excluded.run_id,
		  record_id = excluded.record_id,
		  imported_at = excluded.imported_at`,
		runID, source, hash, recordID, time.Now().Unix(),
	)
	if err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// ByRun returns the files imported by one run, oldest first.
func (h *History) ByRun(runID string) ([]HistoryEntry, error) {
	return h.query(`
		SELECT run_id, source, file_hash, record_id, imported_at
		FROM import_history WHERE run_id = ? ORDER BY imported_at`, runID)
}

// Recent returns the latest imported files, newest first.
func (h *History) Recent(limit int) ([]HistoryEntry, error) {
	if limit <= 0 {
		limit = 20
	}
	return h.query(`
		SELECT run_id, source, file_hash, record_id, imported_at
		FROM import_history ORDER BY imported_at DESC, rowid DESC LIMIT ?`, limit)
}

func (h *History) query(q string, args ...any) ([]HistoryEntry, error) {
	rows, err := h.db.Query(q, args...)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	var entries []HistoryEntry
	for rows.Next() {
		var e HistoryEntry
		var recordID sql.NullInt64
		var importedAt int64
		if err := rows.Scan(&e.RunID, &e.Source, &e.FileHash, &recordID, &importedAt); err != nil {
			return nil, errors.NewInternal(err)
		}
		e.RecordID = recordID.Int64
		e.ImportedAt = time.Unix(importedAt, 0)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return entries, nil
}
