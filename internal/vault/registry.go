package vault

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/peopledex/peopledex/internal/parser"
	"github.com/peopledex/peopledex/internal/person"
)

// DocumentParser is the narrow parser port the registry depends on. The
// concrete parser is injected at composition time.
type DocumentParser interface {
	ParseDocument(text string, src parser.Source) []*person.Record
}

// Registry loads person records from every definition document in a store.
type Registry struct {
	store  Store
	parser DocumentParser
}

// NewRegistry creates a registry over the given store and parser.
func NewRegistry(store Store, documentParser DocumentParser) *Registry {
	return &Registry{store: store, parser: documentParser}
}

// LoadPeople parses every definition document and returns all person records
// with inherited company attributes. Documents that fail to read or parse are
// logged and skipped; the load continues.
func (r *Registry) LoadPeople(ctx context.Context) ([]*person.Record, error) {
	paths, err := r.store.ListDocuments(ctx)
	if err != nil {
		return nil, err
	}

	var records []*person.Record
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		meta, err := r.store.ReadMetadata(ctx, path)
		if err != nil {
			slog.Warn("skipping unreadable document",
				slog.String("path", path),
				slog.String("error", err.Error()))
			continue
		}
		if !meta.IsDefinition() {
			continue
		}

		docRecords, err := r.loadDefinition(ctx, path, meta)
		if err != nil {
			slog.Warn("skipping unparsable definition document",
				slog.String("path", path),
				slog.String("error", err.Error()))
			continue
		}
		records = append(records, docRecords...)
	}

	slog.Info("registry loaded",
		slog.Int("documents", len(paths)),
		slog.Int("records", len(records)))

	return records, nil
}

// loadDefinition parses one definition document. Record line ranges are
// shifted so they index into the full document, not the stripped body, which
// keeps in-place block replacement correct.
func (r *Registry) loadDefinition(ctx context.Context, path string, meta Metadata) ([]*person.Record, error) {
	content, err := r.store.ReadDocument(ctx, path)
	if err != nil {
		return nil, err
	}

	prefix := content[:meta.ContentOffset]
	body, logo := StripLogo(content[meta.ContentOffset:])

	lineOffset := strings.Count(prefix, "\n")
	if logo != "" {
		stripped := content[meta.ContentOffset:]
		lineOffset += strings.Count(stripped[:len(stripped)-len(body)], "\n")
	}

	src := parser.Source{
		FileID:   path,
		FilePath: path,
		FileKind: meta.DefType(),
		Company:  companyFromDocument(path, meta, logo),
	}

	records := r.parser.ParseDocument(body, src)
	for _, rec := range records {
		rec.SourceLineRange.From += lineOffset
		rec.SourceLineRange.To += lineOffset
	}
	return records, nil
}

// companyFromDocument derives the company attributes a document's records
// inherit: the name from the file stem, color/url from frontmatter, and the
// logo from the leading image line.
func companyFromDocument(path string, meta Metadata, logo string) person.Company {
	base := filepath.Base(path)
	return person.Company{
		Name:  strings.TrimSuffix(base, filepath.Ext(base)),
		Logo:  logo,
		Color: meta.Fields["color"],
		URL:   meta.Fields["url"],
	}
}

// UpdatePerson replaces a record's block in its source document with freshly
// rendered lines and writes the document back through the store.
func (r *Registry) UpdatePerson(ctx context.Context, rec *person.Record, dividers parser.DividerConfig) error {
	content, err := r.store.ReadDocument(ctx, rec.SourceFileID)
	if err != nil {
		return err
	}

	lines := strings.Split(content, "\n")
	from, to := rec.SourceLineRange.From, rec.SourceLineRange.To
	if from < 0 || to >= len(lines) || from > to {
		return errInvalidRange(rec)
	}

	rendered := parser.RenderBlock(rec, dividers)

	updated := make([]string, 0, len(lines)-(to-from+1)+len(rendered))
	updated = append(updated, lines[:from]...)
	updated = append(updated, rendered...)
	updated = append(updated, lines[to+1:]...)

	return r.store.WriteDocument(ctx, rec.SourceFileID, strings.Join(updated, "\n"))
}
