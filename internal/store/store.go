package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"daybook/internal/errors"
)

// Document is a stored record: a flat JSON object keyed by field name.
type Document map[string]any

// Filter selects documents whose fields equal every listed value.
type Filter map[string]any

// Schema describes how a collection stores and identifies its records.
// Collections are configured by passing a Schema explicitly, never by
// anything collection-global.
type Schema struct {
	// Collection is the collection name.
	Collection string

	// Autoincrement names the integer field assigned by the store as the
	// next unused value in a monotonic sequence. Empty disables sequence
	// assignment.
	Autoincrement string

	// IdentifierKeys are the fallback identity fields consulted when a
	// document carries none of the standard identity fields.
	IdentifierKeys []string
}

// Identity field names extracted into indexed columns.
const (
	fieldID   = "id"
	fieldUUID = "uuid"
	fieldHash = "hash"
)

// Timestamp field names stamped by the store.
const (
	fieldCreated = "created"
	fieldEdited  = "edited"
)

// TimeLayout is the wire format for timestamps inside documents.
const TimeLayout = time.RFC3339Nano

// Timestamp formats t for storage inside a document.
func Timestamp(t time.Time) string {
	return t.Format(TimeLayout)
}

// FindOptions tune Find ordering and result size.
type FindOptions struct {
	SortBy     string
	Descending bool
	Limit      int
}

// Store is the record store handle. One Store wraps one process-wide
// database connection; all upserts against it are serialized behind its
// mutex because sequence assignment is a read-then-write.
type Store struct {
	db  *sql.DB
	mu  sync.Mutex
	now func() time.Time
}

// New creates a Store over an initialized database.
func New(db *sql.DB) *Store {
	return &Store{db: db, now: time.Now}
}

// DB exposes the underlying connection for components that manage their own
// tables (import history).
func (s *Store) DB() *sql.DB {
	return s.db
}

// Find returns all documents in the collection matching filter, in
// insertion order. A nil filter matches everything.
func (s *Store) Find(collection string, filter Filter) ([]Document, error) {
	return s.FindWith(collection, filter, FindOptions{})
}

// FindWith is Find with explicit sort and limit options.
func (s *Store) FindWith(collection string, filter Filter, opts FindOptions) ([]Document, error) {
	query := `SELECT doc FROM documents WHERE collection = ?`
	args := []any{collection}

	// Identity fields hit indexed columns; everything else is matched
	// against the decoded document below.
	rest := Filter{}
	for k, v := range filter {
		switch k {
		case fieldID:
			query += " AND record_id = ?"
			args = append(args, asInt64(v))
		case fieldUUID:
			query += " AND uuid = ?"
			args = append(args, fmt.Sprint(v))
		case fieldHash:
			query += " AND file_hash = ?"
			args = append(args, fmt.Sprint(v))
		default:
			rest[k] = v
		}
	}
	query += " ORDER BY seq"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, errors.NewInternal(err)
		}
		doc, err := decodeDoc(raw)
		if err != nil {
			return nil, err
		}
		if matches(doc, rest) {
			docs = append(docs, doc)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}

	if opts.SortBy != "" {
		sortDocs(docs, opts.SortBy, opts.Descending)
	}
	if opts.Limit > 0 && len(docs) > opts.Limit {
		docs = docs[:opts.Limit]
	}

	return docs, nil
}

// FindOne returns the first document matching filter, or nil if none match.
func (s *Store) FindOne(collection string, filter Filter) (Document, error) {
	doc, _, err := s.findOneWithSeq(collection, filter)
	return doc, err
}

// findOneWithSeq resolves the first matching document along with its row
// seq, which pins update targets to one physical row.
func (s *Store) findOneWithSeq(collection string, filter Filter) (Document, int64, error) {
	query := `SELECT seq, doc FROM documents WHERE collection = ?`
	args := []any{collection}

	rest := Filter{}
	for k, v := range filter {
		switch k {
		case fieldID:
			query += " AND record_id = ?"
			args = append(args, asInt64(v))
		case fieldUUID:
			query += " AND uuid = ?"
			args = append(args, fmt.Sprint(v))
		case fieldHash:
			query += " AND file_hash = ?"
			args = append(args, fmt.Sprint(v))
		default:
			rest[k] = v
		}
	}
	query += " ORDER BY seq"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, 0, errors.NewInternal(err)
	}
	defer rows.Close()

	for rows.Next() {
		var seq int64
		var raw string
		if err := rows.Scan(&seq, &raw); err != nil {
			return nil, 0, errors.NewInternal(err)
		}
		doc, err := decodeDoc(raw)
		if err != nil {
			return nil, 0, err
		}
		if matches(doc, rest) {
			return doc, seq, nil
		}
	}
	if err := rows.Err(); err != nil {
		return nil, 0, errors.NewInternal(err)
	}
	return nil, 0, nil
}

// Last returns the most recently inserted document in the collection
// (by insertion order, not by any document field), or nil when empty.
func (s *Store) Last(collection string) (Document, error) {
	var raw string
	err := s.db.QueryRow(
		`SELECT doc FROM documents WHERE collection = ? ORDER BY seq DESC LIMIT 1`,
		collection,
	).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return decodeDoc(raw)
}

// Count returns the number of documents in the collection.
func (s *Store) Count(collection string) (int, error) {
	var n int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM documents WHERE collection = ?`, collection,
	).Scan(&n)
	if err != nil {
		return 0, errors.NewInternal(err)
	}
	return n, nil
}

// Insert stores doc as a new record. If the schema has an autoincrement
// field and doc does not carry it, the next sequence value is assigned.
// A missing created timestamp is stamped with now. Returns the stored
// document including any assigned fields.
func (s *Store) Insert(schema Schema, doc Document) (Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertLocked(schema, doc)
}

func (s *Store) insertLocked(schema Schema, doc Document) (Document, error) {
	stored := cloneDoc(doc)

	if schema.Autoincrement != "" && isEmptyValue(stored[schema.Autoincrement]) {
		next, err := s.nextSequenceLocked(schema.Collection, schema.Autoincrement)
		if err != nil {
			return nil, err
		}
		stored[schema.Autoincrement] = next
	}

	if isEmptyValue(stored[fieldCreated]) {
		stored[fieldCreated] = Timestamp(s.now())
	}

	raw, err := json.Marshal(stored)
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	_, err = s.db.Exec(
		`INSERT INTO documents (collection, record_id, uuid, file_hash, doc) VALUES (?, ?, ?, ?, ?)`,
		schema.Collection, nullInt(stored[fieldID]), nullStr(stored[fieldUUID]), nullStr(stored[fieldHash]), string(raw),
	)
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	return stored, nil
}

// Update replaces the first document matching filter with doc and stamps
// edited. Returns the stored document, or a NOT_FOUND error when nothing
// matches.
func (s *Store) Update(schema Schema, doc Document, filter Filter) (Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, seq, err := s.findOneWithSeq(schema.Collection, filter)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, errors.NewNotFound(fmt.Sprintf("%s %v", schema.Collection, filter))
	}
	return s.replaceLocked(schema, existing, seq, doc)
}

// replaceLocked merges doc onto existing and rewrites the stored row.
// Inbound fields win on conflict, but the existing autoincrement value is
// never overwritten. edited is stamped unless the inbound doc carries one.
func (s *Store) replaceLocked(schema Schema, existing Document, seq int64, doc Document) (Document, error) {
	merged := cloneDoc(existing)
	for k, v := range doc {
		if k == schema.Autoincrement && !isEmptyValue(existing[schema.Autoincrement]) {
			continue
		}
		merged[k] = v
	}
	if isEmptyValue(doc[fieldEdited]) {
		merged[fieldEdited] = Timestamp(s.now())
	}

	raw, err := json.Marshal(merged)
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	res, err := s.db.Exec(
		`UPDATE documents SET record_id = ?, uuid = ?, file_hash = ?, doc = ? WHERE seq = ?`,
		nullInt(merged[fieldID]), nullStr(merged[fieldUUID]), nullStr(merged[fieldHash]), string(raw), seq,
	)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	if affected == 0 {
		return nil, errors.NewNotFound(fmt.Sprintf("%s id=%v", schema.Collection, existing[fieldID]))
	}

	return merged, nil
}

// nextSequenceLocked reads the most recently inserted record and returns
// its autoincrement value plus one, or 1 for an empty collection. This is a
// read-then-write; callers must hold the store mutex.
func (s *Store) nextSequenceLocked(collection, field string) (int64, error) {
	last, err := s.Last(collection)
	if err != nil {
		return 0, err
	}
	if last == nil {
		return 1, nil
	}
	return asInt64(last[field]) + 1, nil
}

// decodeDoc unmarshals a stored JSON document. Integer identity fields are
// renormalized from float64 so callers can compare them as int64.
func decodeDoc(raw string) (Document, error) {
	var doc Document
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, errors.NewInternal(err)
	}
	for _, k := range []string{fieldID, "notebook"} {
		if f, ok := doc[k].(float64); ok {
			doc[k] = int64(f)
		}
	}
	return doc, nil
}

func cloneDoc(doc Document) Document {
	out := make(Document, len(doc)+2)
	for k, v := range doc {
		out[k] = v
	}
	return out
}

// matches reports whether doc satisfies every filter field. Numeric values
// compare loosely because JSON decoding yields float64.
func matches(doc Document, filter Filter) bool {
	for k, want := range filter {
		got, ok := doc[k]
		if !ok {
			return false
		}
		if !looseEqual(got, want) {
			return false
		}
	}
	return true
}

func looseEqual(a, b any) bool {
	if af, aok := toFloat(a); aok {
		bf, bok := toFloat(b)
		return bok && af == bf
	}
	return fmt.Sprint(a) == fmt.Sprint(b)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

func sortDocs(docs []Document, field string, descending bool) {
	sort.SliceStable(docs, func(i, j int) bool {
		if descending {
			return lessValue(docs[j][field], docs[i][field])
		}
		return lessValue(docs[i][field], docs[j][field])
	})
}

func lessValue(a, b any) bool {
	if af, aok := toFloat(a); aok {
		if bf, bok := toFloat(b); bok {
			return af < bf
		}
	}
	return fmt.Sprint(a) < fmt.Sprint(b)
}

// isEmptyValue reports whether an identity or timestamp field is absent:
// nil, empty string, or zero number.
func isEmptyValue(v any) bool {
	switch n := v.(type) {
	case nil:
		return true
	case string:
		return n == ""
	default:
		if f, ok := toFloat(v); ok {
			return f == 0
		}
		return false
	}
}

func asInt64(v any) int64 {
	if f, ok := toFloat(v); ok {
		return int64(f)
	}
	return 0
}

func nullInt(v any) any {
	if isEmptyValue(v) {
		return nil
	}
	return asInt64(v)
}

func nullStr(v any) any {
	if isEmptyValue(v) {
		return nil
	}
	return fmt.Sprint(v)
}
