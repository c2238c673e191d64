package manager

import (
	"context"
	"sync"
)

// Handle is an opened, inference-ready asset. Consumers borrow it via
// Guard.Acquire for the duration of one inference call and return it with
// Guard.Release; they never retain it across calls.
type Handle struct {
	eh      EngineHandle
	version string
	// guarded by the owning Guard's mutex
	refs    int
	retired bool
}

// Version returns the asset version this handle was opened from.
func (h *Handle) Version() string { return h.version }

// Infer runs the engine on input through this handle.
func (h *Handle) Infer(ctx context.Context, input []byte) ([]byte, error) {
	return h.eh.Infer(ctx, input)
}

// Guard owns the currently-open engine handle and mediates concurrent use
// against replacement. A retired handle's native resources are released only
// once no borrow references it.
type Guard struct {
	mu     sync.Mutex
	engine Engine
	cur    *Handle
	closed bool
}

func newGuard(engine Engine) *Guard {
	return &Guard{engine: engine}
}

// Open wraps the asset at path into an inference-ready handle. An engine
// rejection maps to CorruptAsset so the caller knows to purge the cache
// entry rather than retry the network; a missing runtime dependency is
// passed through unchanged.
func (g *Guard) Open(path, version string) (*Handle, error) {
	eh, err := g.engine.Open(path)
	if err != nil {
		if IsDependencyUnavailable(err) {
			return nil, err
		}
		return nil, ErrCorruptAsset(err)
	}
	return &Handle{eh: eh, version: version}, nil
}

// Ready reports whether an opened handle is available.
func (g *Guard) Ready() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.cur != nil
}

// Version returns the active handle's asset version, or "" if none.
func (g *Guard) Version() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.cur == nil {
		return ""
	}
	return g.cur.version
}

// Borrows returns the number of outstanding borrows of the active handle.
func (g *Guard) Borrows() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.cur == nil {
		return 0
	}
	return g.cur.refs
}

// Acquire borrows the active handle for one inference call. Fails with
// NotReady if none has been opened yet.
func (g *Guard) Acquire() (*Handle, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.cur == nil {
		return nil, ErrNotReady()
	}
	g.cur.refs++
	return g.cur, nil
}

// Release returns a borrowed handle. If the handle was retired by a swap
// while borrowed, its engine resources are freed once the last borrow drains.
func (g *Guard) Release(h *Handle) {
	if h == nil {
		return
	}
	g.mu.Lock()
	h.refs--
	free := h.retired && h.refs == 0
	g.mu.Unlock()
	if free {
		_ = h.eh.Close()
	}
}

// Swap atomically replaces the active handle. The previous handle is retired
// and its resources are released immediately when idle, or deferred to the
// last Release otherwise. Swapping into a closed guard closes h right away.
func (g *Guard) Swap(h *Handle) {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		if h != nil {
			_ = h.eh.Close()
		}
		return
	}
	old := g.cur
	g.cur = h
	var free bool
	if old != nil {
		old.retired = true
		free = old.refs == 0
	}
	g.mu.Unlock()
	if free {
		_ = old.eh.Close()
	}
}

// Close releases the active handle's resources unconditionally and marks the
// guard not-ready. Used on manager shutdown and explicit cache resets.
func (g *Guard) Close() error {
	g.mu.Lock()
	old := g.cur
	g.cur = nil
	g.closed = true
	g.mu.Unlock()
	if old != nil {
		return old.eh.Close()
	}
	return nil
}

// Drop retires the active handle without closing the guard, so a later open
// can install a replacement. Resources follow the same deferred-release rule
// as Swap.
func (g *Guard) Drop() {
	g.mu.Lock()
	old := g.cur
	g.cur = nil
	var free bool
	if old != nil {
		old.retired = true
		free = old.refs == 0
	}
	g.mu.Unlock()
	if free {
		_ = old.eh.Close()
	}
}
