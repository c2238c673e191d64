package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Defaults applied by ApplyDefaults for unset fields.
const (
	DefaultAddr             = ":8080"
	DefaultCacheDir         = "~/.cache/assetd"
	DefaultSlot             = "model"
	DefaultConnectTimeoutMs = 5_000
	DefaultReadTimeoutMs    = 120_000
	// Force a refresh attempt after 7 days even when the version matches.
	DefaultMaxAgeMs = 7 * 24 * 60 * 60 * 1000
)

// Config holds runtime parameters for the service.
// Zero values mean "unspecified" and will be replaced by ApplyDefaults.
type Config struct {
	Addr             string `json:"addr" yaml:"addr" toml:"addr"`
	AssetURL         string `json:"asset_url" yaml:"asset_url" toml:"asset_url"`
	AssetVersion     string `json:"asset_version" yaml:"asset_version" toml:"asset_version"`
	CacheDir         string `json:"cache_dir" yaml:"cache_dir" toml:"cache_dir"`
	Slot             string `json:"slot" yaml:"slot" toml:"slot"`
	ConnectTimeoutMs int    `json:"connect_timeout_ms" yaml:"connect_timeout_ms" toml:"connect_timeout_ms"`
	ReadTimeoutMs    int    `json:"read_timeout_ms" yaml:"read_timeout_ms" toml:"read_timeout_ms"`
	MaxAgeMs         int64  `json:"max_age_ms" yaml:"max_age_ms" toml:"max_age_ms"`
	UpdateEveryMs    int64  `json:"update_every_ms" yaml:"update_every_ms" toml:"update_every_ms"`
	LogLevel         string `json:"log_level" yaml:"log_level" toml:"log_level"`
}

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	return cfg, nil
}

// ApplyDefaults fills unset fields with package defaults. AssetURL and
// AssetVersion carry no default; callers must validate them separately.
func (c *Config) ApplyDefaults() {
	if c.Addr == "" {
		c.Addr = DefaultAddr
	}
	if c.CacheDir == "" {
		c.CacheDir = DefaultCacheDir
	}
	if c.Slot == "" {
		c.Slot = DefaultSlot
	}
	if c.ConnectTimeoutMs <= 0 {
		c.ConnectTimeoutMs = DefaultConnectTimeoutMs
	}
	if c.ReadTimeoutMs <= 0 {
		c.ReadTimeoutMs = DefaultReadTimeoutMs
	}
	if c.MaxAgeMs <= 0 {
		c.MaxAgeMs = DefaultMaxAgeMs
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}
