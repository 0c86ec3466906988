package journal

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Document is a parsed frontmatter file: free-form body text plus the
// key/value metadata header, when one is present.
type Document struct {
	Content  string
	Metadata map[string]any
}

const frontmatterDelim = "---"

// ParseFrontmatter splits a text file into its optional YAML metadata
// header and body. Files without a header parse as all body with empty
// metadata; a header that opens but never closes is a parse error.
func ParseFrontmatter(data []byte) (Document, error) {
	text := strings.ReplaceAll(string(data), "\r\n", "\n")

	if !strings.HasPrefix(text, frontmatterDelim+"\n") {
		return Document{Content: text, Metadata: map[string]any{}}, nil
	}

	rest := text[len(frontmatterDelim)+1:]
	end := strings.Index(rest, "\n"+frontmatterDelim)
	if end < 0 {
		return Document{}, fmt.Errorf("frontmatter header not terminated")
	}

	header := rest[:end]
	body := rest[end+len("\n"+frontmatterDelim):]
	body = strings.TrimPrefix(body, "\n")

	metadata := map[string]any{}
	if strings.TrimSpace(header) != "" {
		if err := yaml.Unmarshal([]byte(header), &metadata); err != nil {
			return Document{}, fmt.Errorf("invalid frontmatter header: %w", err)
		}
	}

	return Document{Content: body, Metadata: metadata}, nil
}

// RenderFrontmatter serializes a document back to its file form. Documents
// without metadata render as bare body text.
func RenderFrontmatter(doc Document) ([]byte, error) {
	if len(doc.Metadata) == 0 {
		return []byte(doc.Content), nil
	}

	header, err := yaml.Marshal(doc.Metadata)
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	b.WriteString(frontmatterDelim + "\n")
	b.Write(header)
	b.WriteString(frontmatterDelim + "\n\n")
	b.WriteString(doc.Content)
	return []byte(b.String()), nil
}
