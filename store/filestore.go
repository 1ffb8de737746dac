package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go-hazardwatch/types"
)

// collectionDoc is the on-disk shape: one JSON document holding every report.
type collectionDoc struct {
	Reports []types.Report `json:"reports"`
}

// FileStore persists the whole report collection as a single JSON file.
// Every write rewrites the full document, so a per-store mutex serializes
// all writers; without it two overlapping status transitions could race and
// the second full-collection rewrite would drop the first one's update.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore opens (or creates) the reports document under dataDir.
// Initialization is idempotent: a missing file is created empty, an
// existing one is left untouched.
func NewFileStore(dataDir string) (*FileStore, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}
	fs := &FileStore{path: filepath.Join(dataDir, "reports.json")}
	if _, err := os.Stat(fs.path); os.IsNotExist(err) {
		if err := fs.write(collectionDoc{Reports: []types.Report{}}); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, fmt.Errorf("checking reports file: %w", err)
	}
	return fs, nil
}

func (fs *FileStore) read() (collectionDoc, error) {
	var doc collectionDoc
	raw, err := os.ReadFile(fs.path)
	if err != nil {
		return doc, fmt.Errorf("reading reports file: %w", err)
	}
	if len(raw) == 0 {
		return collectionDoc{Reports: []types.Report{}}, nil
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return doc, fmt.Errorf("decoding reports file: %w", err)
	}
	if doc.Reports == nil {
		doc.Reports = []types.Report{}
	}
	return doc, nil
}

func (fs *FileStore) write(doc collectionDoc) error {
	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding reports file: %w", err)
	}
	if err := os.WriteFile(fs.path, raw, 0o644); err != nil {
		return fmt.Errorf("writing reports file: %w", err)
	}
	return nil
}

func (fs *FileStore) Create(ctx context.Context, report types.Report) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	doc, err := fs.read()
	if err != nil {
		return err
	}
	doc.Reports = append(doc.Reports, report)
	return fs.write(doc)
}

func (fs *FileStore) Get(ctx context.Context, id string) (types.Report, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	doc, err := fs.read()
	if err != nil {
		return types.Report{}, err
	}
	for i := range doc.Reports {
		if doc.Reports[i].ID == id {
			return doc.Reports[i], nil
		}
	}
	return types.Report{}, ErrNotFound
}

func (fs *FileStore) List(ctx context.Context) ([]types.Report, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	doc, err := fs.read()
	if err != nil {
		return nil, err
	}
	return doc.Reports, nil
}

func (fs *FileStore) Update(ctx context.Context, id string, mutate func(*types.Report) error) (types.Report, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	doc, err := fs.read()
	if err != nil {
		return types.Report{}, err
	}
	for i := range doc.Reports {
		if doc.Reports[i].ID != id {
			continue
		}
		if err := mutate(&doc.Reports[i]); err != nil {
			return types.Report{}, err
		}
		if err := fs.write(doc); err != nil {
			return types.Report{}, err
		}
		return doc.Reports[i], nil
	}
	return types.Report{}, ErrNotFound
}
