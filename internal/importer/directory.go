package importer

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"daybook/internal/errors"
	"daybook/internal/identity"
)

// ImportDirectory recursively imports every supported file under dir.
// Per-file failures are logged and counted as skips; the walk itself never
// aborts on them.
func (imp *Importer) ImportDirectory(dir string) (Result, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return Result{}, errors.NewNotFound(dir)
	}
	if !info.IsDir() {
		return Result{}, errors.NewInvalidRequest(fmt.Sprintf("%s is not a directory", dir))
	}

	runID := identity.NewRunID()
	var result Result

	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			imp.logger.Printf("skipping %s: %v", path, err)
			result.Skipped++
			result.Total++
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if !Supported(path) {
			result.Skipped++
			result.Total++
			return nil
		}

		fileResult, ferr := imp.importFile(runID, path)
		if ferr != nil {
			imp.logger.Printf("skipping %s: %v", path, ferr)
			result.Skipped++
			result.Total++
			return nil
		}
		result.add(fileResult)
		return nil
	})
	if err != nil {
		return result, errors.NewInternal(err)
	}

	imp.logger.Printf("imported %s: %d stored, %d skipped of %d",
		dir, result.Success, result.Skipped, result.Total)
	return result, nil
}
