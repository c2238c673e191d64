// Package store persists a single cached asset slot on the local filesystem.
//
// The slot is one file under the cache directory; replacements are staged in
// a tmp/ subdirectory on the same filesystem and committed with a rename, so
// readers and crashes observe either the old asset or the new one in full.
package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"assetd/internal/common/fsutil"
)

// ErrNotFound indicates the cache slot holds no asset.
var ErrNotFound = errors.New("asset not found")

// Store manages the asset file for one named cache slot.
type Store struct {
	dir  string
	slot string
}

// New prepares the cache directory (and its tmp staging area) for slot.
func New(dir, slot string) (*Store, error) {
	base, err := fsutil.ExpandHome(dir)
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("abs path: %w", err)
	}
	if slot == "" {
		return nil, fmt.Errorf("empty slot name")
	}
	if err := fsutil.EnsureDir(filepath.Join(abs, "tmp")); err != nil {
		return nil, fmt.Errorf("prepare cache dir: %w", err)
	}
	return &Store{dir: abs, slot: slot}, nil
}

// Dir returns the resolved cache directory.
func (s *Store) Dir() string { return s.dir }

// AssetPath returns the fixed location of the slot's asset file.
func (s *Store) AssetPath() string {
	return filepath.Join(s.dir, s.slot+".asset")
}

// TempDir returns the staging directory for in-progress downloads. It lives
// on the same filesystem as the asset path so Commit renames are atomic.
func (s *Store) TempDir() string {
	return filepath.Join(s.dir, "tmp")
}

// Exists reports whether the slot is populated with a non-empty asset.
func (s *Store) Exists() bool {
	fi, err := os.Stat(s.AssetPath())
	return err == nil && fi.Mode().IsRegular() && fi.Size() > 0
}

// Size returns the on-disk asset size, or false if the slot is empty.
func (s *Store) Size() (int64, bool) {
	fi, err := os.Stat(s.AssetPath())
	if err != nil || !fi.Mode().IsRegular() || fi.Size() == 0 {
		return 0, false
	}
	return fi.Size(), true
}

// Read returns the cached asset bytes.
func (s *Store) Read() ([]byte, error) {
	b, err := os.ReadFile(s.AssetPath())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read asset: %w", err)
	}
	if len(b) == 0 {
		return nil, ErrNotFound
	}
	return b, nil
}

// WriteAtomic replaces the slot content with b in a single commit step.
func (s *Store) WriteAtomic(b []byte) error {
	if len(b) == 0 {
		return fmt.Errorf("refusing to write empty asset")
	}
	return fsutil.WriteFileAtomic(s.AssetPath(), b)
}

// Commit installs an already-downloaded temp file as the slot content. The
// temp file must have been created under TempDir.
func (s *Store) Commit(tmpPath string) error {
	fi, err := os.Stat(tmpPath)
	if err != nil {
		return fmt.Errorf("stat staged asset: %w", err)
	}
	if fi.Size() == 0 {
		os.Remove(tmpPath)
		return fmt.Errorf("refusing to commit empty asset")
	}
	return fsutil.CommitFile(tmpPath, s.AssetPath())
}

// Remove clears the slot. Used by explicit reset flows and corrupt-asset
// purges, never by the normal update path.
func (s *Store) Remove() error {
	err := os.Remove(s.AssetPath())
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove asset: %w", err)
	}
	return nil
}
