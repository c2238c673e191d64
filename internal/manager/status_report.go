package manager

import (
	"assetd/pkg/types"
)

// Snapshot returns a read-only view of the manager state.
func (m *Manager) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s := Snapshot{State: m.state, Err: m.lastErr, Warn: m.lastWarn}
	if m.meta != nil {
		cp := *m.meta
		s.Asset = &cp
	}
	return s
}

// Status builds a detailed status response for /status.
func (m *Manager) Status() types.StatusResponse {
	m.mu.RLock()
	defer m.mu.RUnlock()
	resp := types.StatusResponse{
		State:          string(m.state),
		TargetVersion:  m.target,
		Stale:          m.staleLocked(),
		HandleOpen:     m.guard.Ready(),
		HandleBorrows:  m.guard.Borrows(),
		FetchesTotal:   m.fetches.Load(),
		InstallsTotal:  m.installs.Load(),
		LastError:      m.lastErr,
		LastWarning:    m.lastWarn,
		UptimeSeconds:  int64(m.now().Sub(m.startTime).Seconds()),
		ServerTimeUnix: m.now().Unix(),
	}
	if m.meta != nil {
		cp := *m.meta
		resp.Asset = &cp
	}
	return resp
}
