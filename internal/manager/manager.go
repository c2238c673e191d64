package manager

import (
	"sync"
	"sync/atomic"
	"time"

	"assetd/internal/store"
	"assetd/internal/track"
	"assetd/pkg/types"
)

// Manager orchestrates the store, tracker, fetcher, and handle guard to
// answer "give me a ready-to-use asset handle". All mutations to slot and
// handle state are serialized through mu; at most one fetch-and-install
// sequence runs at a time (see ensure.go).
type Manager struct {
	mu       sync.RWMutex
	state    State
	meta     *types.AssetMetadata // version record mirrored in memory
	lastErr  string
	lastWarn string
	inflight *inflightOp
	closed   bool

	guard   *Guard
	store   *store.Store
	tracker *track.Tracker
	fetcher Downloader

	url    string
	target string
	maxAge time.Duration

	publisher EventPublisher
	now       func() time.Time
	startTime time.Time

	fetches  atomic.Uint64
	installs atomic.Uint64
}

// Ready reports whether an opened handle is available and the manager is not
// in a failed state.
func (m *Manager) Ready() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state == StateReady && m.guard.Ready()
}

// TargetVersion returns the version identifier this manager installs.
func (m *Manager) TargetVersion() string { return m.target }

// Guard exposes the handle guard for callers that borrow handles directly.
func (m *Manager) Guard() *Guard { return m.guard }

// staleLocked evaluates the staleness policy against the in-memory record.
// Callers hold at least a read lock.
func (m *Manager) staleLocked() bool {
	if m.meta == nil {
		return true
	}
	if m.meta.VersionID != m.target {
		return true
	}
	return m.now().UnixMilli()-m.meta.FetchedAtMs > m.maxAge.Milliseconds()
}

// setWarnLocked records a non-fatal warning. Callers hold the write lock.
func (m *Manager) setWarnLocked(msg string) {
	m.lastWarn = msg
}

// Reset clears the cache slot, the version record, and the open handle.
// Explicit operator flow; not part of the normal update path.
func (m *Manager) Reset() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.store.Remove(); err != nil {
		return err
	}
	if err := m.tracker.Forget(); err != nil {
		return err
	}
	m.meta = nil
	m.state = StateEmpty
	m.lastErr = ""
	m.lastWarn = ""
	m.guard.Drop()
	m.publisher.Publish(Event{Name: "reset", Version: m.target, Fields: map[string]any{}})
	return nil
}

// Close shuts the manager down: new ensure calls fail, and the active
// handle's resources are released unconditionally. A fetch in flight is
// abandoned; the fetcher's timeouts bound how long it lingers.
func (m *Manager) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	return m.guard.Close()
}
