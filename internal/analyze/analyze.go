// Package analyze runs journal entries through an external label classifier
// and attaches the aggregated results. Entries are labeled per paragraph;
// the entry-level summary keeps the top emotion and the top three context
// labels by paragraph frequency.
package analyze

import (
	"context"
	"log"
	"os"
	"strings"
	"time"

	"daybook/internal/journal"
	"daybook/internal/store"
)

// Classifier scores a text against a fixed label set. Implementations must
// return an empty result, not an error, when text is empty.
type Classifier interface {
	Classify(ctx context.Context, text string, k int, includeScore bool) ([]journal.Label, error)
}

// Segmenter splits entry text into units for per-paragraph labeling.
type Segmenter func(text string) []string

// SplitParagraphs is the default segmenter: blank-line separated blocks.
func SplitParagraphs(text string) []string {
	var paragraphs []string
	for _, block := range strings.Split(text, "\n\n") {
		if p := strings.TrimSpace(block); p != "" {
			paragraphs = append(paragraphs, p)
		}
	}
	return paragraphs
}

// Analyzer labels stored entries. The two classifiers usually share one
// backend with different label sets.
type Analyzer struct {
	store    *store.Store
	emotion  Classifier
	context  Classifier
	segment  Segmenter
	emotionK int
	contextK int
	logger   *log.Logger
	now      func() time.Time
}

// New builds an analyzer with the default segmenter and summary depths
// (top 1 emotion, top 3 context labels).
func New(st *store.Store, emotion, context Classifier) *Analyzer {
	return &Analyzer{
		store:    st,
		emotion:  emotion,
		context:  context,
		segment:  SplitParagraphs,
		emotionK: 1,
		contextK: 3,
		logger:   log.New(os.Stderr, "analyze: ", log.LstdFlags),
		now:      time.Now,
	}
}

// WithSummaryDepths overrides how many top labels the entry summary keeps.
func (a *Analyzer) WithSummaryDepths(emotionK, contextK int) *Analyzer {
	if emotionK > 0 {
		a.emotionK = emotionK
	}
	if contextK > 0 {
		a.contextK = contextK
	}
	return a
}

// AnalyzeText labels one text without touching storage.
func (a *Analyzer) AnalyzeText(ctx context.Context, text string) (*journal.Analysis, error) {
	var paragraphs []journal.ParagraphLabels

	for _, p := range a.segment(text) {
		emotion, err := a.emotion.Classify(ctx, p, a.emotionK, true)
		if err != nil {
			return nil, err
		}
		contextLabels, err := a.context.Classify(ctx, p, a.contextK, true)
		if err != nil {
			return nil, err
		}
		paragraphs = append(paragraphs, journal.ParagraphLabels{
			Text:    p,
			Emotion: emotion,
			Context: contextLabels,
		})
	}

	emotionFreq := journal.Frequency(paragraphs, "emotion")
	contextFreq := journal.Frequency(paragraphs, "context")

	return &journal.Analysis{
		Paragraphs: paragraphs,
		Frequency: map[string]map[string]int{
			"emotion": emotionFreq,
			"context": contextFreq,
		},
		Emotion: journal.TopLabels(emotionFreq, a.emotionK),
		Context: journal.TopLabels(contextFreq, a.contextK),
	}, nil
}

// AnalyzeEntry labels one entry and stores the result on it.
func (a *Analyzer) AnalyzeEntry(ctx context.Context, entry journal.Entry) (*journal.Analysis, error) {
	analysis, err := a.AnalyzeText(ctx, entry.Text)
	if err != nil {
		return nil, err
	}

	_, err = a.store.Update(journal.EntrySchema,
		store.Document{"analysis": analysis},
		store.Filter{"id": entry.ID})
	if err != nil {
		return nil, err
	}
	return analysis, nil
}

// AnalyzeAll labels every entry that has no analysis yet. Per-entry
// failures are logged and counted as skips; the pass always completes.
func (a *Analyzer) AnalyzeAll(ctx context.Context) (analyzed, skipped int, err error) {
	docs, err := a.store.Find(journal.EntrySchema.Collection, nil)
	if err != nil {
		return 0, 0, err
	}

	for _, doc := range docs {
		if ctx.Err() != nil {
			return analyzed, skipped, ctx.Err()
		}
		if _, ok := doc["analysis"]; ok {
			continue
		}
		entry, err := journal.EntryFromDoc(doc)
		if err != nil {
			a.logger.Printf("skipping entry: %v", err)
			skipped++
			continue
		}
		if _, err := a.AnalyzeEntry(ctx, entry); err != nil {
			a.logger.Printf("skipping entry %d: %v", entry.ID, err)
			skipped++
			continue
		}
		analyzed++
	}
	return analyzed, skipped, nil
}
