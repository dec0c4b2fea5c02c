package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/kingrea/blueprint/internal/blueprint"
)

const fileExt = ".json"

// FileStore keeps one JSON document per file under the documents directory.
type FileStore struct {
	dir string
}

// NewFileStore creates a store rooted at dir.
func NewFileStore(dir string) (*FileStore, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("store: documents directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("store: ensure documents dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(id string) string {
	return filepath.Join(s.dir, id+fileExt)
}

// Load reads the persisted document if present.
func (s *FileStore) Load(ctx context.Context, id string) (blueprint.Document, error) {
	id, err := validateID(id)
	if err != nil {
		return blueprint.Document{}, err
	}
	if err := ctx.Err(); err != nil {
		return blueprint.Document{}, err
	}
	data, err := os.ReadFile(s.path(id))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return blueprint.Document{}, ErrNotFound
		}
		return blueprint.Document{}, fmt.Errorf("store: read %s: %w", id, err)
	}
	var doc blueprint.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return blueprint.Document{}, fmt.Errorf("store: decode %s: %w", id, err)
	}
	doc.Normalize()
	return doc, nil
}

// Save writes the document through a temp file and rename.
func (s *FileStore) Save(ctx context.Context, id string, doc blueprint.Document) error {
	id, err := validateID(id)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	encoded, err := json.MarshalIndent(prepare(id, doc), "", "  ")
	if err != nil {
		return fmt.Errorf("store: encode %s: %w", id, err)
	}
	tmp, err := os.CreateTemp(s.dir, "."+id+"-*.tmp")
	if err != nil {
		return fmt.Errorf("store: temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(append(encoded, '\n')); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("store: write %s: %w", id, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("store: close %s: %w", id, err)
	}
	if err := os.Rename(tmpName, s.path(id)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("store: rename %s: %w", id, err)
	}
	return nil
}

// List returns every stored document, most recently updated first.
func (s *FileStore) List(ctx context.Context) ([]Summary, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("store: list: %w", err)
	}
	var out []Summary
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, fileExt) || strings.HasPrefix(name, ".") {
			continue
		}
		doc, err := s.Load(ctx, strings.TrimSuffix(name, fileExt))
		if err != nil {
			return nil, err
		}
		out = append(out, summarize(doc))
	}
	sortSummaries(out)
	return out, nil
}

// Close is a no-op.
func (s *FileStore) Close() error { return nil }

func sortSummaries(items []Summary) {
	sort.SliceStable(items, func(i, j int) bool {
		if !items[i].Updated.Equal(items[j].Updated) {
			return items[i].Updated.After(items[j].Updated)
		}
		return items[i].ID < items[j].ID
	})
}
