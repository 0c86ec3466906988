package importer

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"daybook/internal/errors"
	"daybook/internal/identity"
	"daybook/internal/journal"
	"daybook/internal/timeparse"
)

// noEdited marks mapping imports with no modification timestamp.
var noEdited time.Time

// ImportJSON imports a structured export: a top-level object holding an
// entries array. creationDate and modifiedDate on each item map to the
// created and edited timestamps; text is cleaned of JSON escape residue.
func (imp *Importer) ImportJSON(path string) (Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{}, errors.NewNotFound(path)
		}
		return Result{}, errors.NewInternal(err)
	}

	var export struct {
		Entries []map[string]any `json:"entries"`
	}
	if err := json.Unmarshal(data, &export); err != nil {
		return Result{}, errors.NewInvalidRequest(fmt.Sprintf("invalid json export: %v", err))
	}

	runID := identity.NewRunID()
	var result Result

	for _, item := range export.Entries {
		result.Total++

		mapping := journal.MappingInput{}
		for k, v := range item {
			mapping[journal.Snakecase(k)] = v
		}
		if text, ok := mapping["text"].(string); ok {
			mapping["text"] = journal.SanitizeText(text)
		}

		edited := noEdited
		if raw, ok := mapping["modified_date"].(string); ok {
			if t, ok := timeparse.Coerce(raw, timeparse.FormatISO, imp.now()); ok {
				edited = t
			}
		}

		stored, err := imp.importMapping(runID, path, mapping, edited)
		if err != nil {
			return result, err
		}
		if stored {
			result.Success++
		} else {
			result.Skipped++
		}
	}

	imp.logger.Printf("imported %s: %d stored, %d skipped of %d",
		path, result.Success, result.Skipped, result.Total)
	return result, nil
}
