package types

// AssetMetadata describes the asset version currently held in the cache slot.
// It is persisted by the version tracker and must always describe the bytes
// actually committed to disk.
type AssetMetadata struct {
	// Opaque version identifier of the cached asset.
	// example: 1.0
	VersionID string `json:"version_id" example:"1.0"`
	// Time the asset was fetched, unix milliseconds.
	// example: 1700000000000
	FetchedAtMs int64 `json:"fetched_at_ms" example:"1700000000000"`
	// Size of the asset payload in bytes.
	// example: 4194304
	SizeBytes int64 `json:"size_bytes" example:"4194304"`
}
