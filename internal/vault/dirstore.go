package vault

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	apperrors "github.com/peopledex/peopledex/internal/errors"
)

// DirStore is a filesystem-backed Store over a directory of markdown files.
type DirStore struct {
	root string
}

var _ Store = (*DirStore)(nil)

// NewDirStore creates a store rooted at the given directory.
func NewDirStore(root string) (*DirStore, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, apperrors.New(apperrors.ErrCodeVaultUnavailable, "resolve vault root", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, apperrors.New(apperrors.ErrCodeVaultUnavailable, "vault root not accessible: "+abs, err)
	}
	if !info.IsDir() {
		return nil, apperrors.New(apperrors.ErrCodeVaultUnavailable, "vault root is not a directory: "+abs, nil)
	}
	return &DirStore{root: abs}, nil
}

// Root returns the absolute vault root directory.
func (s *DirStore) Root() string {
	return s.root
}

// ReadDocument implements Store.
func (s *DirStore) ReadDocument(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	data, err := os.ReadFile(filepath.Join(s.root, path))
	if err != nil {
		if os.IsNotExist(err) {
			return "", apperrors.New(apperrors.ErrCodeDocumentNotFound, "document not found: "+path, err)
		}
		return "", apperrors.New(apperrors.ErrCodeDocumentRead, "read document: "+path, err)
	}
	return string(data), nil
}

// ReadMetadata implements Store.
func (s *DirStore) ReadMetadata(ctx context.Context, path string) (Metadata, error) {
	content, err := s.ReadDocument(ctx, path)
	if err != nil {
		return Metadata{}, err
	}

	meta, err := ExtractMetadata(content)
	if err != nil {
		return Metadata{}, apperrors.New(apperrors.ErrCodeDocumentRead, "metadata for "+path, err)
	}
	return meta, nil
}

// ListDocuments implements Store. Paths are relative to the vault root,
// sorted for deterministic scan order. Hidden directories are skipped.
func (s *DirStore) ListDocuments(ctx context.Context) ([]string, error) {
	var paths []string

	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			return nil // skip entries we cannot access
		}

		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			return nil
		}

		if d.IsDir() {
			if rel != "." && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}

		if strings.EqualFold(filepath.Ext(rel), ".md") {
			paths = append(paths, filepath.ToSlash(rel))
		}
		return nil
	})
	if err != nil {
		return nil, apperrors.New(apperrors.ErrCodeVaultUnavailable, "list documents", err)
	}

	sort.Strings(paths)
	return paths, nil
}

// WriteDocument implements Store.
func (s *DirStore) WriteDocument(ctx context.Context, path string, content string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	full := filepath.Join(s.root, path)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return apperrors.New(apperrors.ErrCodeDocumentWrite, "create document directory", err)
	}
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		return apperrors.New(apperrors.ErrCodeDocumentWrite, "write document: "+path, err)
	}
	return nil
}
