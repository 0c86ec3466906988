package journal

import "sort"

// Label is one classifier output: a label name with an optional score.
type Label struct {
	Name  string  `json:"label"`
	Score float64 `json:"score,omitempty"`
}

// ParagraphLabels holds the classifier results for one paragraph of an
// entry.
type ParagraphLabels struct {
	Text    string  `json:"text"`
	Emotion []Label `json:"emotion"`
	Context []Label `json:"context"`
}

// Analysis aggregates per-paragraph labels into entry-level summaries.
// It is attached to an entry after creation and rides in the stored
// document next to metadata.
type Analysis struct {
	Paragraphs []ParagraphLabels         `json:"paragraphs"`
	Frequency  map[string]map[string]int `json:"frequency"`
	Emotion    []string                  `json:"emotion"`
	Context    []string                  `json:"context"`
}

// Frequency counts how often each label leads a paragraph for the given
// kind ("emotion" or "context"). Only the top label of each paragraph
// contributes.
func Frequency(paragraphs []ParagraphLabels, kind string) map[string]int {
	counts := map[string]int{}
	for _, p := range paragraphs {
		var labels []Label
		switch kind {
		case "emotion":
			labels = p.Emotion
		case "context":
			labels = p.Context
		}
		if len(labels) == 0 {
			continue
		}
		counts[labels[0].Name]++
	}
	return counts
}

// TopLabels returns the labels holding the k highest counts. Ties share a
// rank, so more than k labels can come back; k <= 0 returns all. Output is
// sorted by count descending, then name, for stable display.
func TopLabels(freq map[string]int, k int) []string {
	if len(freq) == 0 {
		return nil
	}

	counts := make([]int, 0, len(freq))
	seen := map[int]bool{}
	for _, c := range freq {
		if !seen[c] {
			seen[c] = true
			counts = append(counts, c)
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(counts)))

	if k > 0 && len(counts) > k {
		counts = counts[:k]
	}
	cutoff := map[int]bool{}
	for _, c := range counts {
		cutoff[c] = true
	}

	labels := make([]string, 0, len(freq))
	for name, c := range freq {
		if cutoff[c] {
			labels = append(labels, name)
		}
	}
	sort.Slice(labels, func(i, j int) bool {
		if freq[labels[i]] != freq[labels[j]] {
			return freq[labels[i]] > freq[labels[j]]
		}
		return labels[i] < labels[j]
	})

	return labels
}
