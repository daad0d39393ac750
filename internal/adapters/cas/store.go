// Package cas implements a file-per-entry storage backend.
package cas

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.trai.ch/cogni/internal/core/domain"
	"go.trai.ch/cogni/internal/core/ports"
	"go.trai.ch/zerr"
)

var (
	_ ports.Storage           = (*Store)(nil)
	_ ports.StorageMaintainer = (*Store)(nil)
)

const entryExt = ".json"

// Store persists each entry as a JSON file named after the hash of its cache key.
// Values round-trip through encoding/json, so numbers read back as float64.
type Store struct {
	dir    string
	hasher ports.Hasher
	now    func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithClock sets the time source used to stamp and expire entries.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// NewStore creates a Store keeping its files in dir.
func NewStore(dir string, hasher ports.Hasher, opts ...Option) (*Store, error) {
	if dir == "" {
		return nil, zerr.Wrap(domain.ErrInvalidStorageSpec, "file store requires a directory")
	}
	s := &Store{
		dir:    filepath.Clean(dir),
		hasher: hasher,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Name identifies the backend in metrics.
func (s *Store) Name() string {
	return domain.StorageFile
}

// Dir returns the directory holding the entries.
func (s *Store) Dir() string {
	return s.dir
}

// Has reports whether an entry for key exists.
func (s *Store) Has(_ context.Context, key string) (bool, error) {
	entry, _, err := s.read(key)
	if err != nil {
		return false, err
	}
	return entry != nil && entry.Key == key, nil
}

// Get returns the value stored under key.
func (s *Store) Get(_ context.Context, key string) (any, error) {
	entry, filename, err := s.read(key)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, zerr.With(zerr.Wrap(domain.ErrCacheMiss, "cannot read entry"), "key", key)
	}
	if entry.Key != key {
		return nil, zerr.With(zerr.With(zerr.Wrap(domain.ErrEntryKeyMismatch, "cannot read entry"), "key", key), "path", filename)
	}
	return entry.Value, nil
}

// Set stores value under key, replacing any previous entry.
func (s *Store) Set(_ context.Context, key string, value any) error {
	data, err := json.MarshalIndent(domain.Entry{Key: key, Value: value, StoredAt: s.now().UTC()}, "", "  ")
	if err != nil {
		return zerr.With(zerr.Wrap(errors.Join(domain.ErrStoreMarshalFailed, err), "cannot write entry"), "key", key)
	}

	if err := os.MkdirAll(s.dir, domain.DirPerm); err != nil {
		return zerr.With(zerr.Wrap(errors.Join(domain.ErrStoreCreateFailed, err), "cannot write entry"), "path", s.dir)
	}

	filename := s.filename(key)
	if err := writeFileAtomic(s.dir, filename, data); err != nil {
		return zerr.With(zerr.Wrap(errors.Join(domain.ErrStoreWriteFailed, err), "cannot write entry"), "path", filename)
	}
	return nil
}

// writeFileAtomic writes data to a temporary file in dir and renames it to filename,
// so readers see either the previous entry or the complete new one.
func writeFileAtomic(dir, filename string, data []byte) error {
	tmp, err := os.CreateTemp(dir, ".entry-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) //nolint:errcheck // Fails harmlessly once renamed

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Chmod(domain.FilePerm); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, filename)
}

// List returns every readable entry in the store directory.
func (s *Store) List(_ context.Context) ([]domain.EntryInfo, error) {
	files, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, zerr.With(zerr.Wrap(errors.Join(domain.ErrStoreReadFailed, err), "cannot list entries"), "path", s.dir)
	}

	infos := make([]domain.EntryInfo, 0, len(files))
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), entryExt) {
			continue
		}
		filename := filepath.Join(s.dir, f.Name())
		entry, size, err := readEntry(filename)
		if err != nil {
			return nil, err
		}
		if entry == nil {
			continue
		}
		infos = append(infos, domain.EntryInfo{
			Key:      entry.Key,
			Path:     filename,
			Size:     size,
			StoredAt: entry.StoredAt,
		})
	}
	return infos, nil
}

// Purge removes entries stored more than olderThan ago. Zero or less removes every entry.
func (s *Store) Purge(ctx context.Context, olderThan time.Duration) (int, error) {
	infos, err := s.List(ctx)
	if err != nil {
		return 0, err
	}

	cutoff := s.now().Add(-olderThan)
	removed := 0
	for _, info := range infos {
		if olderThan > 0 && !info.StoredAt.Before(cutoff) {
			continue
		}
		if err := os.Remove(info.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return removed, zerr.With(zerr.Wrap(errors.Join(domain.ErrStorePurgeFailed, err), "cannot purge entries"), "path", info.Path)
		}
		removed++
	}
	return removed, nil
}

func (s *Store) read(key string) (*domain.Entry, string, error) {
	filename := s.filename(key)
	entry, _, err := readEntry(filename)
	return entry, filename, err
}

func (s *Store) filename(key string) string {
	return filepath.Join(s.dir, s.hasher.Key(key)+entryExt)
}

// readEntry returns nil without error if the file does not exist.
func readEntry(filename string) (*domain.Entry, int64, error) {
	//nolint:gosec // Path is constructed from trusted directory and hashed filename
	data, err := os.ReadFile(filename)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, 0, nil
		}
		return nil, 0, zerr.With(zerr.Wrap(errors.Join(domain.ErrStoreReadFailed, err), "cannot read entry"), "path", filename)
	}

	var entry domain.Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, 0, zerr.With(zerr.Wrap(errors.Join(domain.ErrStoreUnmarshalFailed, err), "cannot read entry"), "path", filename)
	}
	return &entry, int64(len(data)), nil
}
