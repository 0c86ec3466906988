package importer

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"daybook/internal/errors"
	"daybook/internal/identity"
	"daybook/internal/journal"
	"daybook/internal/timeparse"
)

// fileRecord is a normalized file waiting to be persisted. sourceUUID holds
// the uuid the file itself claimed, if any; generated uuids do not take part
// in duplicate detection.
type fileRecord struct {
	path       string
	rec        journal.Record
	sourceUUID string
}

// ImportFile imports one plaintext or markdown file with optional
// frontmatter. Unsupported types, empty bodies and already-imported content
// are logged and counted as skips, never raised.
func (imp *Importer) ImportFile(path string) (Result, error) {
	return imp.importFile(identity.NewRunID(), path)
}

func (imp *Importer) importFile(runID, path string) (Result, error) {
	result := Result{Total: 1}

	if !Supported(path) {
		imp.logger.Printf("skipping %s: unsupported file type", path)
		result.Skipped++
		return result, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return result, errors.NewInternal(fmt.Errorf("read %s: %w", path, err))
	}

	fr, err := imp.loadBytes(path, data)
	if err != nil {
		return result, err
	}

	stored, err := imp.persist(runID, path, fr)
	if err != nil {
		return result, err
	}
	if stored {
		result.Success++
	} else {
		result.Skipped++
	}
	return result, nil
}

// loadBytes normalizes raw file content into a record. Date resolution
// falls through the content, then the filename, then now.
func (imp *Importer) loadBytes(path string, data []byte) (fileRecord, error) {
	doc, err := journal.ParseFrontmatter(data)
	if err != nil {
		return fileRecord{}, errors.NewInvalidRequest(fmt.Sprintf("%s: %v", path, err))
	}

	hash := identity.HashOf(doc.Content)
	rec := journal.Prepare(journal.FrontmatterInput{Doc: doc}, hash, imp.now())

	if rec.Date.IsZero() {
		date, ok := timeparse.ExtractDateTime(filepath.Base(path), imp.now())
		if !ok {
			date = imp.now()
		}
		rec.Date = date
		rec.ID = identity.ZettelkastenID(date)
	}

	sourceUUID, _ := doc.Metadata["uuid"].(string)
	return fileRecord{path: path, rec: rec, sourceUUID: sourceUUID}, nil
}

// persist runs duplicate detection and upserts the record, stamping
// provenance metadata and the import history. Returns false when the record
// was skipped.
func (imp *Importer) persist(runID, source string, fr fileRecord) (bool, error) {
	if strings.TrimSpace(fr.rec.Text) == "" {
		imp.logger.Printf("skipping %s: empty text", fr.path)
		return false, nil
	}

	dup, err := imp.isDuplicate(fr.rec.Hash, fr.sourceUUID)
	if err != nil {
		return false, err
	}
	if dup {
		imp.logger.Printf("skipping %s: already imported", fr.path)
		return false, nil
	}

	entry := fr.rec.Entry()
	entry.Notebook = journal.DefaultNotebook

	abs, err := filepath.Abs(fr.path)
	if err != nil {
		abs = fr.path
	}
	if entry.Metadata == nil {
		entry.Metadata = map[string]any{}
	}
	entry.Metadata["source_dir"] = filepath.Dir(abs)
	entry.Metadata["source_file"] = filepath.Base(abs)

	stored, _, err := imp.store.Upsert(journal.EntrySchema, entry.Doc())
	if err != nil {
		return false, err
	}

	if err := imp.history.Record(runID, source, fr.rec.Hash, storedID(stored)); err != nil {
		imp.logger.Printf("history record failed for %s: %v", source, err)
	}
	return true, nil
}

func storedID(doc map[string]any) int64 {
	switch v := doc["id"].(type) {
	case int64:
		return v
	case float64:
		return int64(v)
	default:
		return 0
	}
}
