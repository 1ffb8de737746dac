// Package uploads stores report photos as write-once blobs on disk,
// referenced from reports by filename.
package uploads

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Storage is a flat directory of image blobs.
type Storage struct {
	dir string
}

// NewStorage opens (or creates) the blob directory. Idempotent.
func NewStorage(dir string) (*Storage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating uploads dir: %w", err)
	}
	return &Storage{dir: dir}, nil
}

// Dir returns the backing directory, for static serving.
func (s *Storage) Dir() string {
	return s.dir
}

// Save writes a new blob and returns its generated name. The original
// filename is kept as a readable suffix; the uuid prefix guarantees
// uniqueness and write-once semantics.
func (s *Storage) Save(originalName string, r io.Reader) (string, error) {
	name := uuid.NewString() + "-" + sanitizeName(originalName)
	f, err := os.OpenFile(filepath.Join(s.dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("creating upload blob: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("writing upload blob: %w", err)
	}
	return name, nil
}

// Open returns a reader for a stored blob.
func (s *Storage) Open(name string) (io.ReadCloser, error) {
	f, err := os.Open(filepath.Join(s.dir, filepath.Base(name)))
	if err != nil {
		return nil, fmt.Errorf("opening upload blob %s: %w", name, err)
	}
	return f, nil
}

// Remove deletes a stored blob.
func (s *Storage) Remove(name string) error {
	return os.Remove(filepath.Join(s.dir, filepath.Base(name)))
}

// SweepOrphans deletes blobs not referenced by any report and older than
// the grace period. The grace period keeps the sweep from racing an
// in-flight intake that has written its blob but not yet persisted the
// report. Returns the number of blobs removed.
func (s *Storage) SweepOrphans(referenced map[string]bool, grace time.Duration) (int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, fmt.Errorf("reading uploads dir: %w", err)
	}

	cutoff := time.Now().Add(-grace)
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() || referenced[entry.Name()] {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, entry.Name())); err != nil {
			log.Printf("failed to remove orphan upload %s: %v", entry.Name(), err)
			continue
		}
		removed++
	}
	return removed, nil
}

func sanitizeName(name string) string {
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, " ", "_")
	if name == "" || name == "." || name == string(filepath.Separator) {
		name = "image"
	}
	return name
}
