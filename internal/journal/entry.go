// Package journal defines the canonical journal record types and the
// normalizer that converts heterogeneous raw inputs into them.
package journal

import (
	"encoding/json"
	"time"

	"daybook/internal/store"
)

// EntrySchema configures the entries collection: sequential integer ids,
// with id as the fallback identifier key.
var EntrySchema = store.Schema{
	Collection:     "entries",
	Autoincrement:  "id",
	IdentifierKeys: []string{"id"},
}

// NotebookSchema configures the notebooks collection.
var NotebookSchema = store.Schema{
	Collection:     "notebooks",
	Autoincrement:  "id",
	IdentifierKeys: []string{"id"},
}

// DefaultNotebook is the notebook assigned to entries imported without one.
const DefaultNotebook int64 = 1

// Entry is the canonical journal record. Known fields live on the struct;
// everything else an import source carries rides along in Metadata, which
// is additive and never silently dropped.
type Entry struct {
	ID       int64          `json:"id"`
	UUID     string         `json:"uuid"`
	Hash     string         `json:"hash"`
	Title    string         `json:"title,omitempty"`
	Text     string         `json:"text"`
	Notebook int64          `json:"notebook,omitempty"`
	Created  time.Time      `json:"created"`
	Edited   time.Time      `json:"edited,omitempty"`
	Analysis *Analysis      `json:"analysis,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Notebook groups entries. Entries reference it through their notebook
// field; deletion is not supported.
type Notebook struct {
	ID          int64     `json:"id"`
	UUID        string    `json:"uuid"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Created     time.Time `json:"created"`
	Edited      time.Time `json:"edited,omitempty"`
}

// Doc converts the entry to its stored document form. Zero-valued identity
// and timestamp fields are omitted so the store can tell "absent" from
// "present" when assigning ids and stamping timestamps.
func (e Entry) Doc() store.Document {
	doc := store.Document{
		"uuid": e.UUID,
		"hash": e.Hash,
		"text": e.Text,
	}
	if e.ID != 0 {
		doc["id"] = e.ID
	}
	if e.Title != "" {
		doc["title"] = e.Title
	}
	if e.Notebook != 0 {
		doc["notebook"] = e.Notebook
	}
	if !e.Created.IsZero() {
		doc["created"] = store.Timestamp(e.Created)
	}
	if !e.Edited.IsZero() {
		doc["edited"] = store.Timestamp(e.Edited)
	}
	if e.Analysis != nil {
		doc["analysis"] = e.Analysis
	}
	if len(e.Metadata) > 0 {
		doc["metadata"] = e.Metadata
	}
	return doc
}

// EntryFromDoc rebuilds a typed entry from its stored document. Known
// fields are copied by name; unknown document keys are folded into
// Metadata.
func EntryFromDoc(doc store.Document) (Entry, error) {
	e := Entry{
		UUID:     docString(doc["uuid"]),
		Hash:     docString(doc["hash"]),
		Title:    docString(doc["title"]),
		Text:     docString(doc["text"]),
		Created:  docTime(doc["created"]),
		Edited:   docTime(doc["edited"]),
		Metadata: map[string]any{},
	}
	e.ID = docInt(doc["id"])
	e.Notebook = docInt(doc["notebook"])

	if raw, ok := doc["analysis"]; ok && raw != nil {
		var a Analysis
		if err := reencode(raw, &a); err != nil {
			return Entry{}, err
		}
		e.Analysis = &a
	}

	if meta, ok := doc["metadata"].(map[string]any); ok {
		for k, v := range meta {
			e.Metadata[k] = v
		}
	}

	for k, v := range doc {
		switch k {
		case "id", "uuid", "hash", "title", "text", "notebook", "created", "edited", "analysis", "metadata":
		default:
			e.Metadata[k] = v
		}
	}

	return e, nil
}

// Doc converts the notebook to its stored document form.
func (n Notebook) Doc() store.Document {
	doc := store.Document{
		"uuid":  n.UUID,
		"title": n.Title,
	}
	if n.ID != 0 {
		doc["id"] = n.ID
	}
	if n.Description != "" {
		doc["description"] = n.Description
	}
	if !n.Created.IsZero() {
		doc["created"] = store.Timestamp(n.Created)
	}
	if !n.Edited.IsZero() {
		doc["edited"] = store.Timestamp(n.Edited)
	}
	return doc
}

// NotebookFromDoc rebuilds a typed notebook from its stored document.
func NotebookFromDoc(doc store.Document) Notebook {
	return Notebook{
		ID:          docInt(doc["id"]),
		UUID:        docString(doc["uuid"]),
		Title:       docString(doc["title"]),
		Description: docString(doc["description"]),
		Created:     docTime(doc["created"]),
		Edited:      docTime(doc["edited"]),
	}
}

func docString(v any) string {
	s, _ := v.(string)
	return s
}

func docInt(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	default:
		return 0
	}
}

// docTime parses a stored timestamp, tolerating both zoned and zone-less
// forms found in older data.
func docTime(v any) time.Time {
	s, ok := v.(string)
	if !ok || s == "" {
		return time.Time{}
	}
	for _, layout := range []string{store.TimeLayout, "2006-01-02T15:04:05.999999999", "2006-01-02T15:04:05"} {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t
		}
	}
	return time.Time{}
}

// reencode round-trips v through JSON into out. Stored documents decode
// nested structures as generic maps; this is the bridge back to types.
func reencode(v any, out any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}
