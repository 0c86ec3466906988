package importer

import (
	"strconv"
	"strings"
	"time"

	"daybook/internal/identity"
	"daybook/internal/journal"
)

// importMapping persists one generic key/value record (a CSV row or a JSON
// export item). The edited timestamp comes from export sources that carry a
// modification date; pass zero otherwise. Returns false when the record was
// skipped.
func (imp *Importer) importMapping(runID, source string, mapping journal.MappingInput, edited time.Time) (bool, error) {
	text, _ := mapping["text"].(string)
	if strings.TrimSpace(text) == "" {
		return false, nil
	}

	hash, _ := mapping["hash"].(string)
	if hash == "" {
		hash = identity.HashOf(text)
	}
	sourceUUID, _ := mapping["uuid"].(string)

	dup, err := imp.isDuplicate(hash, sourceUUID)
	if err != nil {
		return false, err
	}
	if dup {
		imp.logger.Printf("skipping record from %s: already imported", source)
		return false, nil
	}

	rec := journal.Prepare(mapping, hash, imp.now())
	if rec.Date.IsZero() {
		rec.Date = imp.now()
		rec.ID = identity.ZettelkastenID(rec.Date)
	}

	entry := rec.Entry()
	entry.Edited = edited
	entry.Notebook = mappingInt(rec.Metadata, "notebook", journal.DefaultNotebook)
	entry.Title, _ = rec.Metadata["title"].(string)
	if entry.Title == "" {
		entry.Title = journal.DateString(rec.Date)
	}

	// Promoted fields must not linger as metadata duplicates.
	for _, k := range []string{"uuid", "hash", "title", "notebook", "creation_date", "modified_date"} {
		delete(entry.Metadata, k)
	}
	entry.Metadata["imported_from"] = source

	stored, _, err := imp.store.Upsert(journal.EntrySchema, entry.Doc())
	if err != nil {
		return false, err
	}

	if err := imp.history.Record(runID, source, hash, storedID(stored)); err != nil {
		imp.logger.Printf("history record failed for %s: %v", source, err)
	}
	return true, nil
}

func mappingInt(m map[string]any, key string, fallback int64) int64 {
	switch v := m[key].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	case string:
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}
