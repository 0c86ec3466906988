package mcp

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"daybook/internal/config"
	"daybook/internal/errors"
	"daybook/internal/identity"
	"daybook/internal/importer"
	"daybook/internal/journal"
	"daybook/internal/store"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	store    *store.Store
	importer *importer.Importer
	cfg      *config.Config
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(st *store.Store, imp *importer.Importer, cfg *config.Config) *Handlers {
	return &Handlers{store: st, importer: imp, cfg: cfg}
}

// AddRequest represents the arguments for journal_add.
type AddRequest struct {
	Text     string `json:"text"`
	Title    string `json:"title,omitempty"`
	Notebook int64  `json:"notebook,omitempty"`
}

// ShowRequest represents the arguments for journal_show.
type ShowRequest struct {
	Limit    int   `json:"limit,omitempty"`
	Notebook int64 `json:"notebook,omitempty"`
}

// ImportRequest represents the arguments for journal_import.
type ImportRequest struct {
	Path string `json:"path"`
}

// SearchRequest represents the arguments for journal_search.
type SearchRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit,omitempty"`
}

// HandleAdd handles the journal_add tool call.
func (h *Handlers) HandleAdd(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[AddRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	if strings.TrimSpace(input.Text) == "" {
		return errorResult(errors.NewInvalidRequest("text is required")), nil
	}

	hash := identity.HashOf(input.Text)
	rec := journal.Prepare(journal.RawTextInput(input.Text), hash, time.Now())
	if rec.Date.IsZero() {
		rec.Date = time.Now()
		rec.ID = identity.ZettelkastenID(rec.Date)
	}

	entry := rec.Entry()
	entry.Title = input.Title
	entry.Notebook = input.Notebook
	if entry.Notebook == 0 {
		entry.Notebook = journal.DefaultNotebook
	}

	stored, _, err := h.store.Upsert(journal.EntrySchema, entry.Doc())
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(stored)
}

// HandleShow handles the journal_show tool call.
func (h *Handlers) HandleShow(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ShowRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	if input.Limit <= 0 {
		input.Limit = 5
	}

	filter := store.Filter{}
	if input.Notebook != 0 {
		filter["notebook"] = input.Notebook
	}

	docs, err := h.store.FindWith(journal.EntrySchema.Collection, filter, store.FindOptions{
		SortBy:     "id",
		Descending: true,
		Limit:      input.Limit,
	})
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(map[string]any{"entries": docs, "count": len(docs)})
}

// HandleImport handles the journal_import tool call. The import kind is
// chosen by the path: directories walk recursively, .csv/.json/.zip go
// through their batch importers, everything else is a single file.
func (h *Handlers) HandleImport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ImportRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	if input.Path == "" {
		return errorResult(errors.NewInvalidRequest("path is required")), nil
	}

	info, err := os.Stat(input.Path)
	if err != nil {
		return errorResult(errors.NewNotFound(input.Path)), nil
	}

	var result importer.Result
	switch {
	case info.IsDir():
		result, err = h.importer.ImportDirectory(input.Path)
	default:
		switch strings.ToLower(filepath.Ext(input.Path)) {
		case ".csv":
			result, err = h.importer.ImportCSV(input.Path)
		case ".json":
			result, err = h.importer.ImportJSON(input.Path)
		case ".zip":
			result, err = h.importer.ImportZip(input.Path)
		default:
			result, err = h.importer.ImportFile(input.Path)
		}
	}
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(result)
}

// HandleSearch handles the journal_search tool call.
func (h *Handlers) HandleSearch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SearchRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	if input.Query == "" {
		return errorResult(errors.NewInvalidRequest("query is required")), nil
	}
	if input.Limit <= 0 {
		input.Limit = 20
	}

	docs, err := h.store.FindWith(journal.EntrySchema.Collection, nil, store.FindOptions{
		SortBy:     "id",
		Descending: true,
	})
	if err != nil {
		return errorResult(err), nil
	}

	needle := strings.ToLower(input.Query)
	matches := make([]store.Document, 0)
	for _, doc := range docs {
		text, _ := doc["text"].(string)
		title, _ := doc["title"].(string)
		if strings.Contains(strings.ToLower(text), needle) ||
			strings.Contains(strings.ToLower(title), needle) {
			matches = append(matches, doc)
			if len(matches) == input.Limit {
				break
			}
		}
	}
	return successResult(map[string]any{"entries": matches, "count": len(matches)})
}

// errorResult creates an MCP error result from any error. Internal error
// details are not exposed.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	if dErr, ok := err.(*errors.Error); ok {
		errorObj := map[string]any{
			"code":    dErr.Code,
			"message": dErr.Message,
			"status":  dErr.Status,
		}
		if dErr.Code != errors.ErrInternal && dErr.Details != nil {
			errorObj["details"] = dErr.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    "INTERNAL",
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
