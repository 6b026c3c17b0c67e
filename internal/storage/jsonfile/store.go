// Package jsonfile keeps the hotel collection in a single JSON file.
package jsonfile

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"hotel_api/internal/adapters/observability"
	"hotel_api/internal/domain"
)

const driver = "jsonfile"

type Store struct{ path string }

func New(path string) *Store { return &Store{path: path} }

func (s *Store) Path() string { return s.path }

// Load reads the whole file. A missing or blank file is an empty collection.
func (s *Store) Load(ctx context.Context) (hotels []domain.Hotel, err error) {
	start := time.Now()
	defer func() { observability.ObserveStore(driver, "load", err, time.Since(start)) }()

	if err := ctx.Err(); err != nil {
		return nil, domain.ReadError(err)
	}
	b, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []domain.Hotel{}, nil
	}
	if err != nil {
		return nil, domain.ReadError(err)
	}
	if len(bytes.TrimSpace(b)) == 0 {
		return []domain.Hotel{}, nil
	}
	if err := json.Unmarshal(b, &hotels); err != nil {
		return nil, domain.ReadError(fmt.Errorf("decode %s: %w", s.path, err))
	}
	if hotels == nil {
		hotels = []domain.Hotel{}
	}
	return hotels, nil
}

// Save writes to a temp file next to the target and renames it into place,
// so a concurrent Load sees either the old or the new collection.
func (s *Store) Save(ctx context.Context, hotels []domain.Hotel) (err error) {
	start := time.Now()
	defer func() { observability.ObserveStore(driver, "save", err, time.Since(start)) }()

	if err := ctx.Err(); err != nil {
		return domain.WriteError(err)
	}
	if hotels == nil {
		hotels = []domain.Hotel{}
	}
	b, err := json.MarshalIndent(hotels, "", "  ")
	if err != nil {
		return domain.WriteError(err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return domain.WriteError(err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return domain.WriteError(err)
	}
	defer os.Remove(tmp.Name()) // no-op once renamed

	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return domain.WriteError(err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return domain.WriteError(err)
	}
	if err := tmp.Close(); err != nil {
		return domain.WriteError(err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return domain.WriteError(err)
	}
	return nil
}
