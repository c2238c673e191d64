package manager

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"assetd/internal/store"
	"assetd/internal/track"
	"assetd/pkg/types"
)

// fakeFetcher serves a fixed payload (or error) and counts invocations.
type fakeFetcher struct {
	mu      sync.Mutex
	calls   int
	payload []byte
	err     error
	// When set, Download blocks until the channel is closed.
	gate chan struct{}
}

func (f *fakeFetcher) Download(ctx context.Context, url, dstDir string) (string, int64, error) {
	f.mu.Lock()
	f.calls++
	gate := f.gate
	payload := f.payload
	err := f.err
	f.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return "", 0, ctx.Err()
		}
	}
	if err != nil {
		return "", 0, err
	}
	tmp, cerr := os.CreateTemp(dstDir, "fake-*")
	if cerr != nil {
		return "", 0, cerr
	}
	if _, werr := tmp.Write(payload); werr != nil {
		tmp.Close()
		return "", 0, werr
	}
	if cerr := tmp.Close(); cerr != nil {
		return "", 0, cerr
	}
	return tmp.Name(), int64(len(payload)), nil
}

func (f *fakeFetcher) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeFetcher) SetError(err error) {
	f.mu.Lock()
	f.err = err
	f.mu.Unlock()
}

func (f *fakeFetcher) SetPayload(b []byte) {
	f.mu.Lock()
	f.payload = b
	f.err = nil
	f.mu.Unlock()
}

// fakeEngine opens asset files into echo handles; it can be told to reject
// bytes the way a real engine rejects a malformed model.
type fakeEngine struct {
	mu     sync.Mutex
	reject bool
	opens  int
}

func (e *fakeEngine) Open(path string) (EngineHandle, error) {
	e.mu.Lock()
	e.opens++
	reject := e.reject
	e.mu.Unlock()
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if reject {
		return nil, errors.New("bad magic")
	}
	return &fakeHandle{bytes: b}, nil
}

func (e *fakeEngine) SetReject(v bool) {
	e.mu.Lock()
	e.reject = v
	e.mu.Unlock()
}

func (e *fakeEngine) Opens() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.opens
}

// fakeHandle echoes the asset bytes it was opened with.
type fakeHandle struct {
	mu     sync.Mutex
	bytes  []byte
	closed bool
}

func (h *fakeHandle) Infer(ctx context.Context, input []byte) ([]byte, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil, errors.New("handle closed")
	}
	return h.bytes, nil
}

func (h *fakeHandle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	return nil
}

func (h *fakeHandle) Closed() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.closed
}

// fakeClock is a settable clock for staleness tests.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock { return &fakeClock{t: time.Unix(1_700_000_000, 0)} }

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func metaFor(version string, fetchedAtMs, size int64) types.AssetMetadata {
	return types.AssetMetadata{VersionID: version, FetchedAtMs: fetchedAtMs, SizeBytes: size}
}

// newTestDeps builds a real store and tracker in a temp dir.
func newTestDeps(t *testing.T) (*store.Store, *track.Tracker) {
	t.Helper()
	dir := t.TempDir()
	s, err := store.New(dir, "model")
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	tr, err := track.New(filepath.Join(dir, "track.db"), "model")
	if err != nil {
		t.Fatalf("new tracker: %v", err)
	}
	t.Cleanup(func() { _ = tr.Close() })
	return s, tr
}

// newTestManager wires a manager over real store/tracker and fake
// fetcher/engine/clock.
func newTestManager(t *testing.T, cfg ManagerConfig) *Manager {
	t.Helper()
	if cfg.Store == nil || cfg.Tracker == nil {
		s, tr := newTestDeps(t)
		if cfg.Store == nil {
			cfg.Store = s
		}
		if cfg.Tracker == nil {
			cfg.Tracker = tr
		}
	}
	m, err := NewWithConfig(cfg)
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	return m
}
