package journal

import (
	"testing"
	"time"

	"daybook/internal/store"
)

func TestEntryDocRoundTrip(t *testing.T) {
	created := time.Date(2022, 7, 2, 12, 49, 38, 0, time.Local)
	e := Entry{
		ID:       20220702124938,
		UUID:     "ABC",
		Hash:     "H1",
		Title:    "A day",
		Text:     "Hello, world.",
		Notebook: 1,
		Created:  created,
		Metadata: map[string]any{"mood": "calm"},
	}

	got, err := EntryFromDoc(e.Doc())
	if err != nil {
		t.Fatalf("from doc: %v", err)
	}
	if got.ID != e.ID || got.UUID != e.UUID || got.Hash != e.Hash || got.Text != e.Text {
		t.Errorf("got %+v", got)
	}
	if !got.Created.Equal(created) {
		t.Errorf("created = %v", got.Created)
	}
	if got.Metadata["mood"] != "calm" {
		t.Errorf("metadata = %v", got.Metadata)
	}
}

func TestEntryDoc_OmitsAbsentFields(t *testing.T) {
	doc := Entry{UUID: "U", Hash: "H", Text: "t"}.Doc()

	for _, key := range []string{"id", "title", "notebook", "created", "edited", "analysis", "metadata"} {
		if _, ok := doc[key]; ok {
			t.Errorf("doc should omit %q, got %v", key, doc[key])
		}
	}
}

func TestEntryFromDoc_UnknownKeysFoldIntoMetadata(t *testing.T) {
	doc := store.Document{
		"uuid":    "U",
		"hash":    "H",
		"text":    "t",
		"weather": "sunny",
	}

	e, err := EntryFromDoc(doc)
	if err != nil {
		t.Fatalf("from doc: %v", err)
	}
	if e.Metadata["weather"] != "sunny" {
		t.Errorf("metadata = %v", e.Metadata)
	}
}

func TestEntryFromDoc_Analysis(t *testing.T) {
	e := Entry{
		UUID: "U",
		Hash: "H",
		Text: "t",
		Analysis: &Analysis{
			Emotion: []string{"joy"},
			Context: []string{"work"},
		},
	}

	got, err := EntryFromDoc(e.Doc())
	if err != nil {
		t.Fatalf("from doc: %v", err)
	}
	if got.Analysis == nil || len(got.Analysis.Emotion) != 1 || got.Analysis.Emotion[0] != "joy" {
		t.Errorf("analysis = %+v", got.Analysis)
	}
}

func TestNotebookDocRoundTrip(t *testing.T) {
	n := Notebook{ID: 1, UUID: "NB", Title: "Default", Created: time.Date(2022, 1, 1, 0, 0, 0, 0, time.Local)}

	got := NotebookFromDoc(n.Doc())
	if got.ID != 1 || got.Title != "Default" || got.UUID != "NB" {
		t.Errorf("got %+v", got)
	}
}
