package manager

import (
	"context"
	"time"

	"assetd/internal/store"
	"assetd/internal/track"
	"assetd/pkg/types"
)

// Defaults applied when corresponding ManagerConfig fields are unset.
const (
	// Force a refresh attempt after 7 days even when the version matches.
	defaultMaxAge = 7 * 24 * time.Hour
)

// Downloader retrieves the asset body into a staging file. Satisfied by
// *fetch.Fetcher; tests substitute fakes.
type Downloader interface {
	Download(ctx context.Context, url, dstDir string) (string, int64, error)
}

// ManagerConfig encapsulates all tunables for Manager construction.
type ManagerConfig struct {
	Store   *store.Store
	Tracker *track.Tracker
	Fetcher Downloader
	Engine  Engine

	// Remote source and the version identifier this deployment targets.
	AssetURL      string
	TargetVersion string

	// Staleness policy; zero means the package default (7 days).
	MaxAge time.Duration

	Publisher EventPublisher

	// Clock override for tests; nil means time.Now.
	Now func() time.Time
}

// NewWithConfig constructs a Manager from ManagerConfig and reconciles the
// persisted version record against the bytes on disk before first use.
func NewWithConfig(cfg ManagerConfig) (*Manager, error) {
	m := &Manager{
		state:   StateEmpty,
		store:   cfg.Store,
		tracker: cfg.Tracker,
		fetcher: cfg.Fetcher,
		url:     cfg.AssetURL,
		target:  cfg.TargetVersion,
	}
	// Apply defaults if unset
	if cfg.MaxAge <= 0 {
		m.maxAge = defaultMaxAge
	} else {
		m.maxAge = cfg.MaxAge
	}
	if cfg.Publisher == nil {
		m.publisher = noopPublisher{}
	} else {
		m.publisher = cfg.Publisher
	}
	if cfg.Now == nil {
		m.now = time.Now
	} else {
		m.now = cfg.Now
	}
	engine := cfg.Engine
	if engine == nil {
		// In-process llama engine by default (stub without the 'llama' tag).
		engine = NewLlamaEngine(0, 0)
	}
	m.guard = newGuard(engine)

	// A record that does not match the asset on disk is dropped, so a crash
	// between asset commit and version record converges to a consistent pair.
	if m.tracker != nil && m.store != nil {
		if err := m.tracker.Reconcile(m.store.Size); err != nil {
			return nil, err
		}
		if meta, ok := m.tracker.CurrentVersion(); ok {
			m.meta = &types.AssetMetadata{
				VersionID:   meta.VersionID,
				FetchedAtMs: meta.FetchedAtMs,
				SizeBytes:   meta.SizeBytes,
			}
		}
	}
	m.startTime = m.now()
	return m, nil
}
