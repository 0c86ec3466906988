package importer

import (
	"encoding/csv"
	"io"
	"os"
	"strings"

	"daybook/internal/errors"
	"daybook/internal/identity"
	"daybook/internal/journal"
)

// ImportCSV imports a CSV export. The header row names the columns and must
// include a text column; other columns pass through as snake_cased metadata.
// Rows with empty text are skipped and counted.
func (imp *Importer) ImportCSV(path string) (Result, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{}, errors.NewNotFound(path)
		}
		return Result{}, errors.NewInternal(err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return Result{}, errors.NewInvalidRequest("csv file has no header row")
	}

	cols := make([]string, len(header))
	textIdx := -1
	for i, h := range header {
		cols[i] = journal.Snakecase(h)
		if cols[i] == "text" {
			textIdx = i
		}
	}
	if textIdx < 0 {
		return Result{}, errors.NewInvalidRequest("csv is missing a text column")
	}

	runID := identity.NewRunID()
	var result Result

	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		result.Total++
		if err != nil {
			imp.logger.Printf("skipping malformed row in %s: %v", path, err)
			result.Skipped++
			continue
		}

		mapping := journal.MappingInput{}
		for i, v := range row {
			if i < len(cols) && strings.TrimSpace(v) != "" {
				mapping[cols[i]] = v
			}
		}

		stored, err := imp.importMapping(runID, path, mapping, noEdited)
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
