package web

import (
	"encoding/json"
	"fmt"
	"html"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/yuin/goldmark"

	"daybook/internal/errors"
	"daybook/internal/journal"
	"daybook/internal/store"
)

// Handlers serves the collection CRUD API and the entry HTML view.
type Handlers struct {
	store *store.Store
}

var collections = map[string]store.Schema{
	"entries":   journal.EntrySchema,
	"notebooks": journal.NotebookSchema,
}

// HandleList returns the documents in a collection. Query parameters other
// than limit/sort/desc act as equality filters.
func (h *Handlers) HandleList(w http.ResponseWriter, r *http.Request) {
	schema, ok := h.schemaFor(w, r)
	if !ok {
		return
	}

	filter := store.Filter{}
	opts := store.FindOptions{SortBy: "id"}
	for key, values := range r.URL.Query() {
		if len(values) == 0 {
			continue
		}
		switch key {
		case "limit":
			opts.Limit, _ = strconv.Atoi(values[0])
		case "sort":
			opts.SortBy = values[0]
		case "desc":
			opts.Descending = values[0] == "true" || values[0] == "1"
		default:
			// Numeric-looking values filter as numbers (id, notebook).
			if n, err := strconv.ParseInt(values[0], 10, 64); err == nil {
				filter[key] = n
			} else {
				filter[key] = values[0]
			}
		}
	}

	docs, err := h.store.FindWith(schema.Collection, filter, opts)
	if err != nil {
		writeError(w, err)
		return
	}
	if docs == nil {
		docs = []store.Document{}
	}
	writeJSON(w, http.StatusOK, docs)
}

// HandleGet returns one document by id.
func (h *Handlers) HandleGet(w http.ResponseWriter, r *http.Request) {
	schema, ok := h.schemaFor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	doc, err := h.store.FindOne(schema.Collection, store.Filter{"id": id})
	if err != nil {
		writeError(w, err)
		return
	}
	if doc == nil {
		writeError(w, errors.NewNotFound(fmt.Sprintf("%s/%d", schema.Collection, id)))
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// HandleCreate inserts a new document. The store assigns the id and stamps
// created.
func (h *Handlers) HandleCreate(w http.ResponseWriter, r *http.Request) {
	schema, ok := h.schemaFor(w, r)
	if !ok {
		return
	}

	var doc store.Document
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		writeError(w, errors.NewInvalidRequest(fmt.Sprintf("invalid JSON body: %v", err)))
		return
	}

	stored, err := h.store.Insert(schema, doc)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, stored)
}

// HandlePatch merges the request body onto the document with the given id
// and stamps edited.
func (h *Handlers) HandlePatch(w http.ResponseWriter, r *http.Request) {
	schema, ok := h.schemaFor(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var doc store.Document
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		writeError(w, errors.NewInvalidRequest(fmt.Sprintf("invalid JSON body: %v", err)))
		return
	}

	stored, err := h.store.Update(schema, doc, store.Filter{"id": id})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stored)
}

// HandleEntryPage renders one entry's markdown as HTML.
func (h *Handlers) HandleEntryPage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	doc, err := h.store.FindOne(journal.EntrySchema.Collection, store.Filter{"id": id})
	if err != nil {
		writeError(w, err)
		return
	}
	if doc == nil {
		http.NotFound(w, r)
		return
	}

	entry, err := journal.EntryFromDoc(doc)
	if err != nil {
		writeError(w, err)
		return
	}

	title := entry.Title
	if title == "" {
		title = journal.DateString(entry.Created)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, "<!DOCTYPE html>\n<html>\n<head><title>%s</title></head>\n<body>\n<h1>%s</h1>\n",
		html.EscapeString(title), html.EscapeString(title))
	if err := goldmark.Convert([]byte(entry.Text), w); err != nil {
		fmt.Fprintf(w, "<pre>%s</pre>\n", html.EscapeString(entry.Text))
	}
	fmt.Fprint(w, "</body>\n</html>\n")
}

func (h *Handlers) schemaFor(w http.ResponseWriter, r *http.Request) (store.Schema, bool) {
	name := chi.URLParam(r, "collection")
	schema, ok := collections[name]
	if !ok {
		writeError(w, errors.NewNotFound("collection "+name))
		return store.Schema{}, false
	}
	return schema, true
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		writeError(w, errors.NewInvalidRequest(fmt.Sprintf("invalid id %q", raw)))
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	payload := map[string]any{"error": err.Error()}
	if e, ok := err.(*errors.Error); ok {
		status = e.Status
		payload = map[string]any{"error": e.Message, "code": e.Code}
	}
	writeJSON(w, status, payload)
}
