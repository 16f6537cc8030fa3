// Package vault provides access to the document corpus: reading and writing
// markdown documents, extracting frontmatter metadata, and loading the person
// registry from definition documents.
package vault

import (
	"context"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/peopledex/peopledex/internal/person"
)

// Metadata is a document's derived frontmatter metadata.
type Metadata struct {
	// Fields holds the frontmatter key/value pairs with scalar values
	// rendered as strings.
	Fields map[string]string
	// ContentOffset is the byte offset where the body starts (after the
	// frontmatter block, if any).
	ContentOffset int
}

// frontmatter marker keys. Either marks a document as a definition document.
const (
	defTypeKey      = "def-type"
	metadataTypeKey = "metadata-type"
)

// DefType returns the definition kind declared in the metadata, or "" when
// the document is not a definition document.
func (m Metadata) DefType() person.FileKind {
	for _, key := range []string{defTypeKey, metadataTypeKey} {
		switch m.Fields[key] {
		case string(person.FileKindAtomic):
			return person.FileKindAtomic
		case string(person.FileKindConsolidated):
			return person.FileKindConsolidated
		}
	}
	return ""
}

// IsDefinition reports whether the document holds person records.
func (m Metadata) IsDefinition() bool {
	return m.DefType() != ""
}

// Store is the document-storage boundary the core depends on.
type Store interface {
	// ReadDocument returns the full text content of a document.
	ReadDocument(ctx context.Context, path string) (string, error)

	// ReadMetadata returns a document's frontmatter metadata and the byte
	// offset marking the end of the metadata block.
	ReadMetadata(ctx context.Context, path string) (Metadata, error)

	// ListDocuments enumerates all text documents in the corpus.
	ListDocuments(ctx context.Context) ([]string, error)

	// WriteDocument replaces a document's full content.
	WriteDocument(ctx context.Context, path string, content string) error
}

// ExtractMetadata parses the optional leading frontmatter block of a document.
// The block is delimited by "---" lines at the very top of the document.
// Documents without frontmatter yield empty fields and offset 0.
func ExtractMetadata(content string) (Metadata, error) {
	meta := Metadata{Fields: map[string]string{}}

	if !strings.HasPrefix(content, "---\n") && content != "---" {
		return meta, nil
	}

	rest := content[len("---\n"):]
	end := strings.Index(rest, "\n---")
	if end < 0 {
		return meta, nil
	}

	block := rest[:end]
	offset := len("---\n") + end + len("\n---")
	// Consume the trailing newline of the closing marker line.
	if offset < len(content) && content[offset] == '\n' {
		offset++
	}

	var raw map[string]any
	if err := yaml.Unmarshal([]byte(block), &raw); err != nil {
		return meta, fmt.Errorf("parse frontmatter: %w", err)
	}

	for key, value := range raw {
		switch v := value.(type) {
		case string:
			meta.Fields[key] = v
		case nil:
			meta.Fields[key] = ""
		default:
			meta.Fields[key] = fmt.Sprint(v)
		}
	}
	meta.ContentOffset = offset
	return meta, nil
}

// StripLogo removes a single leading image-link line ("![alt](url)" or
// "![[embed]]") from a document body, returning the remaining body and the
// logo line (without terminator) if one was present.
func StripLogo(body string) (string, string) {
	trimmed := strings.TrimLeft(body, "\n")
	line := trimmed
	if i := strings.IndexByte(trimmed, '\n'); i >= 0 {
		line = trimmed[:i]
	}

	if !strings.HasPrefix(line, "![") {
		return body, ""
	}

	rest := strings.TrimPrefix(trimmed, line)
	rest = strings.TrimPrefix(rest, "\n")
	return rest, line
}
