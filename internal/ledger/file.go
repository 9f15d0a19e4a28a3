package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// FileStore keeps the ledger as one JSON object on disk.
type FileStore struct {
	Path string
}

// NewFileStore returns a store backed by path.
func NewFileStore(path string) *FileStore {
	return &FileStore{Path: path}
}

// Load reads the whole file. A missing file is an empty ledger.
func (s *FileStore) Load(_ context.Context) (*Ledger, error) {
	data, err := os.ReadFile(s.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return New(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("ledger: read %s: %w", s.Path, err)
	}
	if len(data) == 0 {
		return New(), nil
	}
	var m map[string]Entry
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("ledger: decode %s: %w", s.Path, err)
	}
	return FromMap(m), nil
}

// Save writes the ledger to a temp file in the same directory and renames it
// over the old one.
func (s *FileStore) Save(_ context.Context, l *Ledger) error {
	data, err := json.MarshalIndent(l.Map(), "", "  ")
	if err != nil {
		return fmt.Errorf("ledger: encode: %w", err)
	}
	dir := filepath.Dir(s.Path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("ledger: mkdir %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(s.Path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("ledger: temp file: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // gone after rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("ledger: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("ledger: close: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.Path); err != nil {
		return fmt.Errorf("ledger: replace %s: %w", s.Path, err)
	}
	return nil
}

// Close is a no-op.
func (s *FileStore) Close() error { return nil }
