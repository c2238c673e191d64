package store

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(t.TempDir(), "model")
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return s
}

func TestEmptySlot(t *testing.T) {
	s := newTestStore(t)
	if s.Exists() {
		t.Fatalf("expected empty slot")
	}
	if _, ok := s.Size(); ok {
		t.Fatalf("expected no size for empty slot")
	}
	if _, err := s.Read(); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	// removing an empty slot is a no-op
	if err := s.Remove(); err != nil {
		t.Fatalf("remove empty: %v", err)
	}
}

func TestWriteAtomicReadBack(t *testing.T) {
	s := newTestStore(t)
	payload := bytes.Repeat([]byte{0x00}, 200)
	if err := s.WriteAtomic(payload); err != nil {
		t.Fatalf("write: %v", err)
	}
	if !s.Exists() {
		t.Fatalf("expected populated slot")
	}
	if n, ok := s.Size(); !ok || n != 200 {
		t.Fatalf("expected size 200, got %d ok=%v", n, ok)
	}
	got, err := s.Read()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("payload mismatch")
	}
}

func TestWriteAtomicRejectsEmpty(t *testing.T) {
	s := newTestStore(t)
	if err := s.WriteAtomic(nil); err == nil {
		t.Fatalf("expected error for empty payload")
	}
}

func TestReplaceWholesale(t *testing.T) {
	s := newTestStore(t)
	if err := s.WriteAtomic([]byte("v1-bytes")); err != nil {
		t.Fatalf("write v1: %v", err)
	}
	if err := s.WriteAtomic([]byte("v2")); err != nil {
		t.Fatalf("write v2: %v", err)
	}
	got, err := s.Read()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(got) != "v2" {
		t.Fatalf("expected full replacement, got %q", got)
	}
}

func TestCommitStagedFile(t *testing.T) {
	s := newTestStore(t)
	tmp := filepath.Join(s.TempDir(), "dl-1")
	if err := os.WriteFile(tmp, []byte("staged"), 0o644); err != nil {
		t.Fatalf("stage: %v", err)
	}
	if err := s.Commit(tmp); err != nil {
		t.Fatalf("commit: %v", err)
	}
	got, err := s.Read()
	if err != nil || string(got) != "staged" {
		t.Fatalf("read after commit: %q err=%v", got, err)
	}
	if _, err := os.Stat(tmp); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("staged file should be gone")
	}
}

func TestCommitRejectsEmptyStagedFile(t *testing.T) {
	s := newTestStore(t)
	tmp := filepath.Join(s.TempDir(), "dl-empty")
	if err := os.WriteFile(tmp, nil, 0o644); err != nil {
		t.Fatalf("stage: %v", err)
	}
	if err := s.Commit(tmp); err == nil {
		t.Fatalf("expected error for empty staged file")
	}
	if s.Exists() {
		t.Fatalf("slot must stay empty")
	}
}

func TestRemoveClearsSlot(t *testing.T) {
	s := newTestStore(t)
	if err := s.WriteAtomic([]byte("x")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := s.Remove(); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if s.Exists() {
		t.Fatalf("expected cleared slot")
	}
}
