package importer

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"daybook/internal/errors"
	"daybook/internal/journal"
	"daybook/internal/store"
)

func newTestImporter(t *testing.T) *Importer {
	t.Helper()
	db, err := store.Init(t.TempDir())
	if err != nil {
		t.Fatalf("init db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return New(store.New(db), t.TempDir())
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func entryCount(t *testing.T, imp *Importer) int {
	t.Helper()
	n, err := imp.store.Count(journal.EntrySchema.Collection)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

func TestImportFile_Frontmatter(t *testing.T) {
	imp := newTestImporter(t)
	dir := t.TempDir()
	path := writeFile(t, dir, "note.md",
		"---\ndate: \"2022-07-02T12:49:38\"\n---\n\nHello, world.")

	result, err := imp.ImportFile(path)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if result.Success != 1 || result.Skipped != 0 || result.Total != 1 {
		t.Fatalf("result = %+v", result)
	}

	doc, err := imp.store.FindOne("entries", store.Filter{"id": int64(20220702124938)})
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if doc == nil {
		t.Fatal("entry not stored under its zettelkasten id")
	}

	e, err := journal.EntryFromDoc(doc)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if e.Text != "Hello, world." {
		t.Errorf("text = %q", e.Text)
	}
	if e.Metadata["source_file"] != "note.md" {
		t.Errorf("source_file = %v", e.Metadata["source_file"])
	}
	if e.Metadata["source_dir"] == nil {
		t.Error("source_dir not recorded")
	}
	if e.Notebook != journal.DefaultNotebook {
		t.Errorf("notebook = %d", e.Notebook)
	}
}

func TestImportFile_DuplicateHashSkipped(t *testing.T) {
	imp := newTestImporter(t)
	dir := t.TempDir()
	first := writeFile(t, dir, "a.md", "Same thought, 2022-01-02.")
	second := writeFile(t, dir, "b.md", "Same thought, 2022-01-02.")

	if _, err := imp.ImportFile(first); err != nil {
		t.Fatalf("first import: %v", err)
	}
	result, err := imp.ImportFile(second)
	if err != nil {
		t.Fatalf("second import: %v", err)
	}
	if result.Skipped != 1 || result.Success != 0 {
		t.Fatalf("result = %+v", result)
	}
	if n := entryCount(t, imp); n != 1 {
		t.Errorf("stored %d entries, want 1", n)
	}
}

func TestImportFile_DuplicateUUIDSkipped(t *testing.T) {
	imp := newTestImporter(t)
	dir := t.TempDir()
	first := writeFile(t, dir, "a.md",
		"---\nuuid: AAAA1111\ndate: \"2022-01-02\"\n---\n\nFirst wording.")
	second := writeFile(t, dir, "b.md",
		"---\nuuid: AAAA1111\ndate: \"2022-01-03\"\n---\n\nDifferent wording.")

	if _, err := imp.ImportFile(first); err != nil {
		t.Fatalf("first import: %v", err)
	}
	result, err := imp.ImportFile(second)
	if err != nil {
		t.Fatalf("second import: %v", err)
	}
	if result.Skipped != 1 {
		t.Fatalf("result = %+v", result)
	}
	if n := entryCount(t, imp); n != 1 {
		t.Errorf("stored %d entries, want 1", n)
	}
}

func TestImportFile_UnsupportedType(t *testing.T) {
	imp := newTestImporter(t)
	path := writeFile(t, t.TempDir(), "photo.jpg", "binary")

	result, err := imp.ImportFile(path)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if result.Skipped != 1 || result.Success != 0 {
		t.Fatalf("result = %+v", result)
	}
}

func TestImportFile_EmptyTextSkipped(t *testing.T) {
	imp := newTestImporter(t)
	path := writeFile(t, t.TempDir(), "empty.md", "---\ndate: \"2022-01-02\"\n---\n\n   \n")

	result, err := imp.ImportFile(path)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if result.Skipped != 1 {
		t.Fatalf("result = %+v", result)
	}
	if n := entryCount(t, imp); n != 0 {
		t.Errorf("stored %d entries, want 0", n)
	}
}

func TestImportFile_FilenameDateFallback(t *testing.T) {
	imp := newTestImporter(t)
	path := writeFile(t, t.TempDir(), "2021-05-06-walk.txt", "No dates in the body.")

	if _, err := imp.ImportFile(path); err != nil {
		t.Fatalf("import: %v", err)
	}

	doc, err := imp.store.FindOne("entries", store.Filter{"id": int64(20210506000000)})
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if doc == nil {
		t.Fatal("filename date was not used for the id")
	}
}

func TestImportFile_NowFallback(t *testing.T) {
	imp := newTestImporter(t)
	frozen := time.Date(2022, 9, 10, 15, 55, 2, 0, time.Local)
	imp.now = func() time.Time { return frozen }
	path := writeFile(t, t.TempDir(), "untitled.md", "Nothing datelike here.")

	if _, err := imp.ImportFile(path); err != nil {
		t.Fatalf("import: %v", err)
	}

	doc, err := imp.store.FindOne("entries", store.Filter{"id": int64(20220910155502)})
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if doc == nil {
		t.Fatal("now fallback was not applied")
	}
}

func TestImportDirectory(t *testing.T) {
	imp := newTestImporter(t)
	dir := t.TempDir()
	writeFile(t, dir, "one.md", "First note, 2022-01-01.")
	writeFile(t, dir, "two.txt", "Second note, 2022-01-02.")
	writeFile(t, dir, "skipme.pdf", "not text")
	sub := filepath.Join(dir, "nested")
	if err := os.MkdirAll(sub, 0700); err != nil {
		t.Fatal(err)
	}
	writeFile(t, sub, "three.markdown", "Third note, 2022-01-03.")

	result, err := imp.ImportDirectory(dir)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if result.Success != 3 || result.Skipped != 1 || result.Total != 4 {
		t.Fatalf("result = %+v", result)
	}
	if n := entryCount(t, imp); n != 3 {
		t.Errorf("stored %d entries, want 3", n)
	}
}

func TestImportDirectory_NotADirectory(t *testing.T) {
	imp := newTestImporter(t)
	path := writeFile(t, t.TempDir(), "file.md", "text")

	_, err := imp.ImportDirectory(path)
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Fatalf("err = %v, want invalid request", err)
	}
}

func TestImportDirectory_Missing(t *testing.T) {
	imp := newTestImporter(t)

	_, err := imp.ImportDirectory(filepath.Join(t.TempDir(), "nope"))
	if !errors.Is(err, errors.ErrNotFound) {
		t.Fatalf("err = %v, want not found", err)
	}
}

func TestImportDrive(t *testing.T) {
	imp := newTestImporter(t)
	client := &fakeDrive{
		listings: map[string][]DriveItem{
			"root":    {{ID: "journals", Name: "journals", Folder: true}},
			"journals": {
				{ID: "f1", Name: "2022-03-04-note.md"},
				{ID: "sub", Name: "older", Folder: true},
			},
		},
		files: map[string][]byte{
			"f1": []byte("A drive note."),
		},
	}

	choices := []string{"journals", "f1"}
	choose := func(items []DriveItem) (DriveItem, bool) {
		if len(choices) == 0 {
			return DriveItem{}, false
		}
		want := choices[0]
		choices = choices[1:]
		for _, item := range items {
			if item.ID == want {
				return item, true
			}
		}
		return DriveItem{}, false
	}

	result, err := imp.ImportDrive(context.Background(), client, "root", choose)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if result.Success != 1 {
		t.Fatalf("result = %+v", result)
	}

	doc, err := imp.store.FindOne("entries", store.Filter{"id": int64(20220304000000)})
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if doc == nil {
		t.Fatal("drive file name date was not used for the id")
	}
}

func TestImportDrive_ChooserStops(t *testing.T) {
	imp := newTestImporter(t)
	client := &fakeDrive{
		listings: map[string][]DriveItem{
			"root": {{ID: "f1", Name: "note.md"}},
		},
	}

	result, err := imp.ImportDrive(context.Background(), client, "root",
		func([]DriveItem) (DriveItem, bool) { return DriveItem{}, false })
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if result.Total != 0 {
		t.Fatalf("result = %+v", result)
	}
}

type fakeDrive struct {
	listings map[string][]DriveItem
	files    map[string][]byte
}

func (f *fakeDrive) List(_ context.Context, folderID string) ([]DriveItem, error) {
	return f.listings[folderID], nil
}

func (f *fakeDrive) Download(_ context.Context, fileID string) ([]byte, error) {
	return f.files[fileID], nil
}
