package analyze

import (
	"context"
	"fmt"
	"testing"

	"daybook/internal/journal"
	"daybook/internal/store"
)

// fakeClassifier returns canned labels keyed by paragraph text.
type fakeClassifier struct {
	labels map[string][]journal.Label
	calls  int
}

func (f *fakeClassifier) Classify(_ context.Context, text string, k int, _ bool) ([]journal.Label, error) {
	f.calls++
	if text == "" {
		return nil, nil
	}
	labels := f.labels[text]
	if k > 0 && len(labels) > k {
		labels = labels[:k]
	}
	return labels, nil
}

type failingClassifier struct{}

func (failingClassifier) Classify(context.Context, string, int, bool) ([]journal.Label, error) {
	return nil, fmt.Errorf("service down")
}

func newTestAnalyzer(t *testing.T, emotion, ctxc Classifier) (*Analyzer, *store.Store) {
	t.Helper()
	db, err := store.Init(t.TempDir())
	if err != nil {
		t.Fatalf("init db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	st := store.New(db)
	return New(st, emotion, ctxc), st
}

func TestSplitParagraphs(t *testing.T) {
	got := SplitParagraphs("First block.\n\nSecond block.\n\n\n\nThird.")
	if len(got) != 3 {
		t.Fatalf("got %d paragraphs: %v", len(got), got)
	}
	if got[1] != "Second block." {
		t.Errorf("got[1] = %q", got[1])
	}
}

func TestSplitParagraphs_Empty(t *testing.T) {
	if got := SplitParagraphs("   \n\n  "); got != nil {
		t.Errorf("got %v, want nil", got)
	}
}

func TestAnalyzeText(t *testing.T) {
	emotion := &fakeClassifier{labels: map[string][]journal.Label{
		"A good morning.":   {{Name: "joy", Score: 0.9}},
		"A tiring commute.": {{Name: "joy", Score: 0.6}},
	}}
	ctxc := &fakeClassifier{labels: map[string][]journal.Label{
		"A good morning.":   {{Name: "home", Score: 0.8}},
		"A tiring commute.": {{Name: "work", Score: 0.7}},
	}}
	a, _ := newTestAnalyzer(t, emotion, ctxc)

	analysis, err := a.AnalyzeText(context.Background(), "A good morning.\n\nA tiring commute.")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if len(analysis.Paragraphs) != 2 {
		t.Fatalf("paragraphs = %d", len(analysis.Paragraphs))
	}
	if analysis.Frequency["emotion"]["joy"] != 2 {
		t.Errorf("emotion frequency = %v", analysis.Frequency["emotion"])
	}
	if len(analysis.Emotion) != 1 || analysis.Emotion[0] != "joy" {
		t.Errorf("emotion summary = %v", analysis.Emotion)
	}
	if len(analysis.Context) != 2 {
		t.Errorf("context summary = %v", analysis.Context)
	}
}

func TestAnalyzeEntry_StoresResult(t *testing.T) {
	emotion := &fakeClassifier{labels: map[string][]journal.Label{
		"Reflecting.": {{Name: "calm", Score: 0.9}},
	}}
	ctxc := &fakeClassifier{labels: map[string][]journal.Label{
		"Reflecting.": {{Name: "home", Score: 0.8}},
	}}
	a, st := newTestAnalyzer(t, emotion, ctxc)

	doc, _, err := st.Upsert(journal.EntrySchema, store.Document{
		"uuid": "U1", "hash": "H1", "text": "Reflecting.",
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	entry, err := journal.EntryFromDoc(doc)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := a.AnalyzeEntry(context.Background(), entry); err != nil {
		t.Fatalf("analyze: %v", err)
	}

	stored, err := st.FindOne("entries", store.Filter{"id": entry.ID})
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	got, err := journal.EntryFromDoc(stored)
	if err != nil {
		t.Fatal(err)
	}
	if got.Analysis == nil {
		t.Fatal("analysis not stored")
	}
	if len(got.Analysis.Emotion) != 1 || got.Analysis.Emotion[0] != "calm" {
		t.Errorf("emotion = %v", got.Analysis.Emotion)
	}
}

func TestAnalyzeAll_SkipsAnalyzedAndFailed(t *testing.T) {
	emotion := &fakeClassifier{labels: map[string][]journal.Label{
		"Fresh entry.": {{Name: "joy", Score: 0.9}},
	}}
	ctxc := &fakeClassifier{labels: map[string][]journal.Label{
		"Fresh entry.": {{Name: "home", Score: 0.8}},
	}}
	a, st := newTestAnalyzer(t, emotion, ctxc)

	if _, _, err := st.Upsert(journal.EntrySchema, store.Document{
		"uuid": "U1", "hash": "H1", "text": "Fresh entry.",
	}); err != nil {
		t.Fatal(err)
	}
	if _, _, err := st.Upsert(journal.EntrySchema, store.Document{
		"uuid": "U2", "hash": "H2", "text": "Done already.",
		"analysis": map[string]any{"emotion": []string{"calm"}},
	}); err != nil {
		t.Fatal(err)
	}

	analyzed, skipped, err := a.AnalyzeAll(context.Background())
	if err != nil {
		t.Fatalf("analyze all: %v", err)
	}
	if analyzed != 1 || skipped != 0 {
		t.Errorf("analyzed = %d, skipped = %d", analyzed, skipped)
	}
}

func TestAnalyzeAll_CountsFailuresAsSkips(t *testing.T) {
	a, st := newTestAnalyzer(t, failingClassifier{}, failingClassifier{})

	if _, _, err := st.Upsert(journal.EntrySchema, store.Document{
		"uuid": "U1", "hash": "H1", "text": "Will fail.",
	}); err != nil {
		t.Fatal(err)
	}

	analyzed, skipped, err := a.AnalyzeAll(context.Background())
	if err != nil {
		t.Fatalf("analyze all: %v", err)
	}
	if analyzed != 0 || skipped != 1 {
		t.Errorf("analyzed = %d, skipped = %d", analyzed, skipped)
	}
}
