package manager

import (
	"context"
	"errors"
	"log"
	"time"

	"assetd/pkg/types"
)

// inflightOp is the shared token for one fetch-and-install sequence.
// Concurrent callers await done and read the single outcome; outcome fields
// are written before done is closed.
type inflightOp struct {
	done      chan struct{}
	installed bool
	err       error
}

// EnsureReady guarantees a usable handle: fast path when ready and fresh,
// otherwise one coalesced fetch-and-install sequence. On a refresh failure
// with a prior handle the old handle is kept and the failure is recorded as
// a warning; on first acquisition failures the error is terminal.
func (m *Manager) EnsureReady(ctx context.Context) error {
	_, err := m.ensure(ctx)
	return err
}

// CheckForUpdate evaluates staleness against the target version and installs
// when stale. Returns whether a new version was installed. The manager holds
// no timer; periodic invocation is the caller's concern.
func (m *Manager) CheckForUpdate(ctx context.Context) (bool, error) {
	return m.ensure(ctx)
}

func (m *Manager) ensure(ctx context.Context) (bool, error) {
	// Fast path: ready and fresh. No I/O, no fetch.
	m.mu.RLock()
	if m.state == StateReady && m.guard.Ready() && !m.staleLocked() {
		m.mu.RUnlock()
		return false, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return false, ErrUnavailable(errors.New("manager closed"))
	}
	// Re-check under the write lock; another caller may have finished.
	if m.state == StateReady && m.guard.Ready() && !m.staleLocked() {
		m.mu.Unlock()
		return false, nil
	}
	if op := m.inflight; op != nil {
		// Coalesce: await the in-flight operation's single outcome instead
		// of issuing a redundant download.
		m.mu.Unlock()
		select {
		case <-op.done:
			return op.installed, op.err
		case <-ctx.Done():
			return false, ctx.Err()
		}
	}
	op := &inflightOp{done: make(chan struct{})}
	m.inflight = op
	hadHandle := m.guard.Ready()
	if hadHandle {
		m.state = StateRefreshing
	} else {
		m.state = StateLoading
	}
	m.mu.Unlock()

	installed, err := m.fetchAndInstall(ctx, hadHandle)

	m.mu.Lock()
	m.inflight = nil
	switch {
	case err == nil:
		m.state = StateReady
		m.lastErr = ""
		if installed {
			m.lastWarn = ""
		}
	case hadHandle:
		// Refresh failure with a working handle never invalidates it.
		m.state = StateReady
	default:
		m.state = StateFailed
		m.lastErr = err.Error()
	}
	m.mu.Unlock()

	op.installed = installed
	op.err = err
	close(op.done)
	return installed, err
}

// fetchAndInstall runs one acquisition sequence: open from the local slot
// when fresh, otherwise fetch, commit, record, and swap in a new handle.
func (m *Manager) fetchAndInstall(ctx context.Context, hadHandle bool) (bool, error) {
	startTs := m.now()
	log.Printf("manager event=ensure_start target=%q", m.target)
	m.publisher.Publish(Event{Name: "ensure_start", Version: m.target, Fields: map[string]any{}})

	// Local hit: populated slot with a fresh record. Skip the network and
	// open the cached asset.
	m.mu.RLock()
	stale := m.staleLocked()
	meta := m.meta
	m.mu.RUnlock()
	if !stale && meta != nil && m.store.Exists() {
		if m.guard.Version() == meta.VersionID {
			return false, nil
		}
		if err := m.openFromStore(meta.VersionID); err != nil {
			return m.installFailure(hadHandle, err)
		}
		log.Printf("manager event=local_open version=%q", meta.VersionID)
		m.publisher.Publish(Event{Name: "local_open", Version: meta.VersionID, Fields: map[string]any{}})
		return false, nil
	}

	if m.url == "" {
		return m.installFailure(hadHandle, errors.New("no asset url configured"))
	}

	m.fetches.Add(1)
	tmp, n, err := m.fetcher.Download(ctx, m.url, m.store.TempDir())
	if err != nil {
		fetchesTotal.WithLabelValues("error").Inc()
		log.Printf("manager event=fetch_fail target=%q err=%v", m.target, err)
		m.publisher.Publish(Event{Name: "fetch_fail", Version: m.target, Fields: map[string]any{"error": err.Error()}})
		return m.installFailure(hadHandle, err)
	}
	fetchesTotal.WithLabelValues("success").Inc()

	// Commit the asset first, record the version after; a crash in between
	// is repaired by the reconcile pass at next startup.
	newMeta := types.AssetMetadata{
		VersionID:   m.target,
		FetchedAtMs: m.now().UnixMilli(),
		SizeBytes:   n,
	}
	if err := m.store.Commit(tmp); err != nil {
		return m.installFailure(hadHandle, err)
	}
	if err := m.tracker.RecordVersion(newMeta); err != nil {
		return m.installFailure(hadHandle, err)
	}
	m.mu.Lock()
	m.meta = &newMeta
	m.mu.Unlock()

	if err := m.openFromStore(newMeta.VersionID); err != nil {
		return m.installFailure(hadHandle, err)
	}
	m.installs.Add(1)
	installsTotal.Inc()
	log.Printf("manager event=ensure_ready version=%q size=%d dur_ms=%d",
		newMeta.VersionID, n, time.Since(startTs)/time.Millisecond)
	m.publisher.Publish(Event{Name: "ensure_ready", Version: newMeta.VersionID, Fields: map[string]any{
		"size":   n,
		"dur_ms": int(time.Since(startTs) / time.Millisecond),
	}})
	return true, nil
}

// openFromStore opens the cached asset and swaps it into the guard. A
// corrupt asset purges the slot and the version record before the error
// surfaces, so a poisoned cache does not persist across restarts.
func (m *Manager) openFromStore(version string) error {
	h, err := m.guard.Open(m.store.AssetPath(), version)
	if err != nil {
		if IsCorruptAsset(err) {
			_ = m.store.Remove()
			_ = m.tracker.Forget()
			m.mu.Lock()
			m.meta = nil
			m.mu.Unlock()
			corruptPurgesTotal.Inc()
			log.Printf("manager event=corrupt_purge version=%q err=%v", version, err)
			m.publisher.Publish(Event{Name: "corrupt_purge", Version: version, Fields: map[string]any{"error": err.Error()}})
		}
		return err
	}
	m.guard.Swap(h)
	handleSwapsTotal.Inc()
	return nil
}

// installFailure applies the propagation policy: refresh failures with a
// working handle are downgraded to a recorded warning; first-acquisition
// failures surface, wrapped as Unavailable unless already classified.
func (m *Manager) installFailure(hadHandle bool, err error) (bool, error) {
	if hadHandle {
		m.mu.Lock()
		m.setWarnLocked("refresh failed: " + err.Error())
		m.mu.Unlock()
		m.publisher.Publish(Event{Name: "refresh_fallback", Version: m.target, Fields: map[string]any{"error": err.Error()}})
		return false, nil
	}
	if IsCorruptAsset(err) || IsDependencyUnavailable(err) {
		return false, err
	}
	return false, ErrUnavailable(err)
}
