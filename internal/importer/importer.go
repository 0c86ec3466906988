// Package importer moves journal entries from external sources into the
// store: single files, directory trees, CSV and JSON exports, zip archives,
// a watched drop directory and a cloud drive walk. Every batch path shares
// one contract: unsupported types, empty text and already-imported records
// are counted as skips, the batch runs to completion, and the caller gets a
// summary instead of per-item errors.
package importer

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"daybook/internal/store"
)

var supportedExtensions = map[string]bool{
	".md":       true,
	".markdown": true,
	".txt":      true,
}

// Supported reports whether the file importers accept this path.
func Supported(path string) bool {
	return supportedExtensions[strings.ToLower(filepath.Ext(path))]
}

// Result summarizes a completed import run.
type Result struct {
	Success int `json:"success"`
	Skipped int `json:"skipped"`
	Total   int `json:"total"`
}

func (r *Result) add(other Result) {
	r.Success += other.Success
	r.Skipped += other.Skipped
	r.Total += other.Total
}

// Importer drives normalized records into the store. All paths funnel
// through one store handle, so sequence assignment stays serialized.
type Importer struct {
	store   *store.Store
	history *History
	scratch string
	logger  *log.Logger
	now     func() time.Time
}

// New builds an importer. scratchDir holds temporary zip extractions; when
// empty the system temp directory is used.
func New(st *store.Store, scratchDir string) *Importer {
	if scratchDir == "" {
		scratchDir = os.TempDir()
	}
	return &Importer{
		store:   st,
		history: NewHistory(st.DB()),
		scratch: scratchDir,
		logger:  log.New(os.Stderr, "importer: ", log.LstdFlags),
		now:     time.Now,
	}
}

// History exposes the import provenance log.
func (imp *Importer) History() *History {
	return imp.history
}
