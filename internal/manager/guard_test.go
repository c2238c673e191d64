package manager

import (
	"os"
	"path/filepath"
	"testing"
)

func writeAsset(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write asset: %v", err)
	}
	return p
}

func TestAcquireBeforeOpenFails(t *testing.T) {
	g := newGuard(&fakeEngine{})
	if _, err := g.Acquire(); err == nil || !IsNotReady(err) {
		t.Fatalf("expected not ready, got %v", err)
	}
	if g.Ready() || g.Version() != "" {
		t.Fatalf("expected empty guard")
	}
}

func TestOpenRejectionIsCorrupt(t *testing.T) {
	dir := t.TempDir()
	p := writeAsset(t, dir, "a.bin", "junk")
	g := newGuard(&fakeEngine{reject: true})
	_, err := g.Open(p, "1.0")
	if err == nil || !IsCorruptAsset(err) {
		t.Fatalf("expected corrupt asset, got %v", err)
	}
}

func TestOpenMissingDependencyPassesThrough(t *testing.T) {
	dir := t.TempDir()
	p := writeAsset(t, dir, "a.bin", "bytes")
	g := newGuard(NewLlamaEngine(0, 0)) // stub build refuses to open
	_, err := g.Open(p, "1.0")
	if err == nil || !IsDependencyUnavailable(err) {
		t.Fatalf("expected dependency unavailable, got %v", err)
	}
	if IsCorruptAsset(err) {
		t.Fatalf("stub refusal must not look like a corrupt asset")
	}
}

func TestSwapClosesIdleOldHandle(t *testing.T) {
	dir := t.TempDir()
	g := newGuard(&fakeEngine{})
	h1, err := g.Open(writeAsset(t, dir, "v1.bin", "v1"), "1.0")
	if err != nil {
		t.Fatalf("open v1: %v", err)
	}
	g.Swap(h1)
	h2, err := g.Open(writeAsset(t, dir, "v2.bin", "v2"), "2.0")
	if err != nil {
		t.Fatalf("open v2: %v", err)
	}
	g.Swap(h2)
	if !h1.eh.(*fakeHandle).Closed() {
		t.Fatalf("idle old handle must be closed on swap")
	}
	if g.Version() != "2.0" {
		t.Fatalf("expected version 2.0, got %q", g.Version())
	}
}

func TestSwapDefersCloseWhileBorrowed(t *testing.T) {
	dir := t.TempDir()
	g := newGuard(&fakeEngine{})
	h1, _ := g.Open(writeAsset(t, dir, "v1.bin", "v1"), "1.0")
	g.Swap(h1)

	borrowed, err := g.Acquire()
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	h2, _ := g.Open(writeAsset(t, dir, "v2.bin", "v2"), "2.0")
	g.Swap(h2)

	// old handle still borrowed: resources must not be freed yet
	if borrowed.eh.(*fakeHandle).Closed() {
		t.Fatalf("borrowed handle freed during swap")
	}
	// new borrows already land on the new handle
	next, _ := g.Acquire()
	if next.Version() != "2.0" {
		t.Fatalf("expected new handle for new borrows")
	}
	g.Release(next)

	g.Release(borrowed)
	if !borrowed.eh.(*fakeHandle).Closed() {
		t.Fatalf("retired handle must be freed once the last borrow drains")
	}
}

func TestCloseReleasesUnconditionally(t *testing.T) {
	dir := t.TempDir()
	g := newGuard(&fakeEngine{})
	h, _ := g.Open(writeAsset(t, dir, "v1.bin", "v1"), "1.0")
	g.Swap(h)
	if err := g.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if !h.eh.(*fakeHandle).Closed() {
		t.Fatalf("close must free the active handle")
	}
	if _, err := g.Acquire(); err == nil || !IsNotReady(err) {
		t.Fatalf("expected not ready after close, got %v", err)
	}
	// a swap after close frees the incoming handle instead of installing it
	h2, _ := g.Open(writeAsset(t, dir, "v2.bin", "v2"), "2.0")
	g.Swap(h2)
	if !h2.eh.(*fakeHandle).Closed() {
		t.Fatalf("swap into a closed guard must free the handle")
	}
	if g.Ready() {
		t.Fatalf("closed guard must stay not-ready")
	}
}

func TestDropRetiresActiveHandle(t *testing.T) {
	dir := t.TempDir()
	g := newGuard(&fakeEngine{})
	h, _ := g.Open(writeAsset(t, dir, "v1.bin", "v1"), "1.0")
	g.Swap(h)
	g.Drop()
	if g.Ready() {
		t.Fatalf("expected not ready after drop")
	}
	if !h.eh.(*fakeHandle).Closed() {
		t.Fatalf("idle handle must be freed on drop")
	}
	// guard still accepts a new handle after a drop
	h2, _ := g.Open(writeAsset(t, dir, "v2.bin", "v2"), "2.0")
	g.Swap(h2)
	if !g.Ready() || g.Version() != "2.0" {
		t.Fatalf("expected guard usable after drop")
	}
}

func TestBorrowCounting(t *testing.T) {
	dir := t.TempDir()
	g := newGuard(&fakeEngine{})
	h, _ := g.Open(writeAsset(t, dir, "v1.bin", "v1"), "1.0")
	g.Swap(h)
	a, _ := g.Acquire()
	b, _ := g.Acquire()
	if g.Borrows() != 2 {
		t.Fatalf("expected 2 borrows, got %d", g.Borrows())
	}
	g.Release(a)
	g.Release(b)
	if g.Borrows() != 0 {
		t.Fatalf("expected 0 borrows, got %d", g.Borrows())
	}
}
