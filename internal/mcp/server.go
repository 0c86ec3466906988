// Package mcp exposes the journal as an MCP toolset over stdio.
package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"daybook/internal/config"
	"daybook/internal/importer"
	"daybook/internal/store"
)

// toolEntry pairs a tool definition with a handler factory.
type toolEntry struct {
	def     mcp.Tool
	handler func(*Handlers) server.ToolHandlerFunc
}

var toolRegistry = map[string]toolEntry{
	"journal_add": {
		def:     addToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleAdd },
	},
	"journal_show": {
		def:     showToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleShow },
	},
	"journal_import": {
		def:     importToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleImport },
	},
	"journal_search": {
		def:     searchToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSearch },
	},
}

var addToolDef = mcp.NewTool("journal_add",
	mcp.WithDescription("Add a journal entry from free text. The entry date is extracted from the text when present."),
	mcp.WithString("text", mcp.Required(), mcp.Description("Entry body")),
	mcp.WithString("title", mcp.Description("Optional entry title")),
	mcp.WithNumber("notebook", mcp.Description("Notebook id, defaults to 1")),
)

var showToolDef = mcp.NewTool("journal_show",
	mcp.WithDescription("List recent journal entries, newest first."),
	mcp.WithNumber("limit", mcp.Description("Maximum entries to return, defaults to 5")),
	mcp.WithNumber("notebook", mcp.Description("Restrict to one notebook")),
)

var importToolDef = mcp.NewTool("journal_import",
	mcp.WithDescription("Import entries from a file, directory, CSV export, JSON export or zip archive. Duplicates are skipped."),
	mcp.WithString("path", mcp.Required(), mcp.Description("Path to import")),
)

var searchToolDef = mcp.NewTool("journal_search",
	mcp.WithDescription("Search entry text for a substring."),
	mcp.WithString("query", mcp.Required(), mcp.Description("Text to search for")),
	mcp.WithNumber("limit", mcp.Description("Maximum entries to return, defaults to 20")),
)

// NewServer creates an MCP server with the journal tools registered.
func NewServer(st *store.Store, imp *importer.Importer, cfg *config.Config, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"daybook",
		version,
		server.WithToolCapabilities(true),
	)

	h := NewHandlers(st, imp, cfg)
	for _, entry := range toolRegistry {
		s.AddTool(entry.def, entry.handler(h))
	}
	return s
}

// Run starts the MCP server on stdio transport.
func Run(st *store.Store, imp *importer.Importer, cfg *config.Config, version string) error {
	return server.ServeStdio(NewServer(st, imp, cfg, version))
}
