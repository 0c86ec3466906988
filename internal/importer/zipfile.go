package importer

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"daybook/internal/errors"
	"daybook/internal/identity"
)

// ImportZip extracts a zip archive into the scratch directory and imports
// every supported file inside. Records are sorted by resolved creation date
// before persisting, so ids assigned within the batch come out in
// chronological order.
func (imp *Importer) ImportZip(path string) (Result, error) {
	archive, err := zip.OpenReader(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{}, errors.NewNotFound(path)
		}
		return Result{}, errors.NewInvalidRequest(fmt.Sprintf("invalid zip archive: %v", err))
	}
	defer archive.Close()

	scratch, err := os.MkdirTemp(imp.scratch, "zip-")
	if err != nil {
		return Result{}, errors.NewInternal(err)
	}
	defer os.RemoveAll(scratch)

	runID := identity.NewRunID()
	var result Result
	var records []fileRecord

	for _, f := range archive.File {
		if f.FileInfo().IsDir() {
			continue
		}
		result.Total++
		if !Supported(f.Name) {
			result.Skipped++
			continue
		}

		extracted, err := extractFile(f, scratch)
		if err != nil {
			imp.logger.Printf("skipping %s: %v", f.Name, err)
			result.Skipped++
			continue
		}

		data, err := os.ReadFile(extracted)
		if err != nil {
			imp.logger.Printf("skipping %s: %v", f.Name, err)
			result.Skipped++
			continue
		}

		fr, err := imp.loadBytes(f.Name, data)
		if err != nil {
			imp.logger.Printf("skipping %s: %v", f.Name, err)
			result.Skipped++
			continue
		}
		records = append(records, fr)
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].rec.Date.Before(records[j].rec.Date)
	})

	for _, fr := range records {
		stored, err := imp.persist(runID, path, fr)
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

// extractFile writes one archive member under dir, rejecting paths that
// would escape it.
func extractFile(f *zip.File, dir string) (string, error) {
	name := filepath.Clean(f.Name)
	if strings.HasPrefix(name, "..") || filepath.IsAbs(name) {
		return "", fmt.Errorf("unsafe archive path %q", f.Name)
	}

	target := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(target), 0700); err != nil {
		return "", err
	}

	src, err := f.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	dst, err := os.Create(target)
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", err
	}
	return target, nil
}
