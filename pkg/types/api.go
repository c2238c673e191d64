package types

// InferRequest represents an inference request payload. The input is passed
// to the engine as an opaque buffer; assetd does not interpret it.
type InferRequest struct {
	// Required input passed verbatim to the inference engine.
	// example: Write a haiku about the ocean.
	Input string `json:"input" example:"Write a haiku about the ocean."`
}

// InferResponse wraps the raw engine output for POST /infer.
type InferResponse struct {
	// Raw engine output.
	Output string `json:"output"`
	// Version of the asset the output was produced with.
	// example: 1.0
	Version string `json:"version" example:"1.0"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: invalid JSON body
	Error string `json:"error" example:"invalid JSON body"`
	// HTTP status code.
	// example: 400
	Code int `json:"code" example:"400"`
}

// EnsureResponse is returned by POST /ensure and POST /update.
type EnsureResponse struct {
	// Overall manager state after the operation.
	// example: ready
	State string `json:"state" example:"ready"`
	// Whether a new asset version was installed by this call.
	// example: false
	Installed bool `json:"installed" example:"false"`
	// Metadata of the asset now backing the handle, if any.
	Asset *AssetMetadata `json:"asset,omitempty"`
	// Non-fatal warning recorded during the operation (e.g., refresh failed
	// but the previous asset is still served).
	Warning string `json:"warning,omitempty"`
}

// StatusResponse is returned by GET /status.
type StatusResponse struct {
	// Overall manager state (empty, loading, ready, refreshing, failed).
	// example: ready
	State string `json:"state" example:"ready"`
	// Metadata of the cached asset, if the slot is populated.
	Asset *AssetMetadata `json:"asset,omitempty"`
	// Version identifier the manager is targeting.
	// example: 1.0
	TargetVersion string `json:"target_version" example:"1.0"`
	// Whether the cached asset is considered stale against the target.
	// example: false
	Stale bool `json:"stale" example:"false"`
	// Whether an opened handle is currently available for inference.
	// example: true
	HandleOpen bool `json:"handle_open" example:"true"`
	// Number of borrows currently holding the active handle.
	// example: 0
	HandleBorrows int `json:"handle_borrows" example:"0"`
	// Total fetch attempts since start.
	// example: 3
	FetchesTotal uint64 `json:"fetches_total" example:"3"`
	// Total successful asset installs since start.
	// example: 2
	InstallsTotal uint64 `json:"installs_total" example:"2"`
	// Last fatal error observed by the manager (if any).
	LastError string `json:"last_error,omitempty"`
	// Last non-fatal warning (e.g., refresh failure with fallback).
	LastWarning string `json:"last_warning,omitempty"`
	// Uptime of the server in seconds.
	// example: 3600
	UptimeSeconds int64 `json:"uptime_seconds" example:"3600"`
	// Server time in unix seconds.
	// example: 1700000000
	ServerTimeUnix int64 `json:"server_time_unix" example:"1700000000"`
}
