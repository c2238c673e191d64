package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"assetd/internal/config"
	"assetd/internal/fetch"
	"assetd/internal/manager"
	"assetd/internal/store"
	"assetd/internal/track"
)

// commonFlags are shared by every subcommand that needs a wired manager.
type commonFlags struct {
	configPath   string
	addr         string
	assetURL     string
	assetVersion string
	cacheDir     string
	slot         string
	maxAgeMs     int64
	logLevel     string
}

func (f *commonFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.configPath, "config", "c", "", "path to config file (.yaml, .json, .toml)")
	cmd.Flags().StringVar(&f.addr, "addr", "", "HTTP listen address, e.g. :8080")
	cmd.Flags().StringVar(&f.assetURL, "asset-url", "", "URL of the remote asset")
	cmd.Flags().StringVar(&f.assetVersion, "asset-version", "", "target version identifier of the asset")
	cmd.Flags().StringVar(&f.cacheDir, "cache-dir", "", "directory for the cached asset and version record")
	cmd.Flags().StringVar(&f.slot, "slot", "", "cache slot name")
	cmd.Flags().Int64Var(&f.maxAgeMs, "max-age-ms", 0, "age in ms after which the cached asset is refreshed")
	cmd.Flags().StringVar(&f.logLevel, "log-level", "", "log level (off, error, info, debug)")
}

// loadConfig merges file, environment, and flag values. Flags win over the
// file; the file wins over environment defaults.
func (f *commonFlags) loadConfig() (config.Config, error) {
	var cfg config.Config
	if f.configPath != "" {
		c, err := config.Load(f.configPath)
		if err != nil {
			return cfg, err
		}
		cfg = c
	}
	if cfg.Addr == "" {
		cfg.Addr = os.Getenv("ASSETD_ADDR")
	}
	if cfg.AssetURL == "" {
		cfg.AssetURL = os.Getenv("ASSETD_ASSET_URL")
	}
	if cfg.AssetVersion == "" {
		cfg.AssetVersion = os.Getenv("ASSETD_ASSET_VERSION")
	}
	if f.addr != "" {
		cfg.Addr = f.addr
	}
	if f.assetURL != "" {
		cfg.AssetURL = f.assetURL
	}
	if f.assetVersion != "" {
		cfg.AssetVersion = f.assetVersion
	}
	if f.cacheDir != "" {
		cfg.CacheDir = f.cacheDir
	}
	if f.slot != "" {
		cfg.Slot = f.slot
	}
	if f.maxAgeMs > 0 {
		cfg.MaxAgeMs = f.maxAgeMs
	}
	if f.logLevel != "" {
		cfg.LogLevel = f.logLevel
	}
	cfg.ApplyDefaults()
	return cfg, nil
}

// buildManager wires store, tracker, and fetcher under the cache dir. When
// requireTarget is set, the asset URL and version must be configured.
func buildManager(cfg config.Config, requireTarget bool) (*manager.Manager, func(), error) {
	if requireTarget {
		if cfg.AssetURL == "" {
			return nil, nil, fmt.Errorf("asset_url is required (flag --asset-url or config)")
		}
		if cfg.AssetVersion == "" {
			return nil, nil, fmt.Errorf("asset_version is required (flag --asset-version or config)")
		}
	}
	st, err := store.New(cfg.CacheDir, cfg.Slot)
	if err != nil {
		return nil, nil, err
	}
	tr, err := track.New(filepath.Join(st.Dir(), cfg.Slot+".db"), cfg.Slot)
	if err != nil {
		return nil, nil, err
	}
	mgr, err := manager.NewWithConfig(manager.ManagerConfig{
		Store:         st,
		Tracker:       tr,
		Fetcher:       fetch.New(time.Duration(cfg.ConnectTimeoutMs)*time.Millisecond, time.Duration(cfg.ReadTimeoutMs)*time.Millisecond),
		AssetURL:      cfg.AssetURL,
		TargetVersion: cfg.AssetVersion,
		MaxAge:        time.Duration(cfg.MaxAgeMs) * time.Millisecond,
	})
	if err != nil {
		_ = tr.Close()
		return nil, nil, err
	}
	cleanup := func() {
		_ = mgr.Close()
		_ = tr.Close()
	}
	return mgr, cleanup, nil
}
