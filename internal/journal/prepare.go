package journal

import (
	"time"

	"daybook/internal/identity"
	"daybook/internal/timeparse"
)

// Input is the raw material the normalizer accepts: a parsed frontmatter
// document, a generic key/value mapping with at least a text key, or a
// bare string. Dispatch is explicit per variant.
type Input interface {
	isInput()
}

// FrontmatterInput wraps a parsed frontmatter document.
type FrontmatterInput struct {
	Doc Document
}

// MappingInput wraps a generic key/value mapping (CSV row, JSON item).
type MappingInput map[string]any

// RawTextInput wraps a bare string.
type RawTextInput string

func (FrontmatterInput) isInput() {}
func (MappingInput) isInput()     {}
func (RawTextInput) isInput()     {}

// Record is the canonical intermediate produced by Prepare. A zero Date
// means nothing was resolvable; the orchestrator applies the final
// fallback (filename pattern, then now) before storage.
type Record struct {
	ID       int64
	UUID     string
	Hash     string
	Date     time.Time
	Text     string
	Metadata map[string]any
}

// Prepare normalizes a raw input into a canonical record. It is a pure
// transform: no storage access, no side effects. The content hash is
// precomputed by the caller (it may come from the raw file bytes rather
// than the extracted text).
//
// Date resolution tries the metadata date field, then creationDate, then
// pattern extraction from the text. The id, when a date resolves, is the
// zettelkasten id of that date. Collisions within the same second are
// expected and left to storage reconciliation.
func Prepare(input Input, hash string, now time.Time) Record {
	var text string
	var dateValue any
	metadata := map[string]any{}

	switch in := input.(type) {
	case FrontmatterInput:
		text = in.Doc.Content
		for k, v := range in.Doc.Metadata {
			metadata[k] = v
		}
		dateValue = firstPresent(metadata, "date", "creationDate", "creation_date")
	case MappingInput:
		for k, v := range in {
			metadata[k] = v
		}
		text, _ = metadata["text"].(string)
		delete(metadata, "text")
		dateValue = firstPresent(metadata, "date", "creationDate", "creation_date")
		delete(metadata, "date")
	case RawTextInput:
		text = string(in)
		dateValue = text
	}

	record := Record{
		Hash:     hash,
		Text:     text,
		Metadata: metadata,
		UUID:     resolveUUID(metadata),
	}

	if date, ok := resolveDate(dateValue, text, now); ok {
		record.Date = date
		record.ID = identity.ZettelkastenID(date)
	}

	return record
}

// Entry converts the record to a storable entry. Title and notebook are
// the orchestrator's to fill in.
func (r Record) Entry() Entry {
	return Entry{
		ID:       r.ID,
		UUID:     r.UUID,
		Hash:     r.Hash,
		Text:     r.Text,
		Created:  r.Date,
		Metadata: r.Metadata,
	}
}

func resolveUUID(metadata map[string]any) string {
	if u, ok := metadata["uuid"].(string); ok && u != "" {
		return u
	}
	return identity.NewUUID()
}

// resolveDate coerces the candidate value, trying strict ISO parsing first
// so fractional seconds survive, then loose pattern extraction, and finally
// extraction from the entry text.
func resolveDate(candidate any, text string, now time.Time) (time.Time, bool) {
	if candidate != nil {
		if s, ok := candidate.(string); ok {
			if t, ok := timeparse.Coerce(s, timeparse.FormatISO, now); ok {
				return t, true
			}
		}
		if t, ok := timeparse.Coerce(candidate, "", now); ok {
			return t, true
		}
	}
	return timeparse.ExtractDateTime(text, now)
}

func firstPresent(m map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := m[k]; ok && v != nil && v != "" {
			return v
		}
	}
	return nil
}
