package manager

import "assetd/pkg/types"

// State represents the lifecycle state of the managed asset slot.
type State string

const (
	// StateEmpty: no asset has ever been installed.
	StateEmpty State = "empty"
	// StateLoading: first acquisition in progress.
	StateLoading State = "loading"
	// StateReady: an opened handle is available for inference.
	StateReady State = "ready"
	// StateRefreshing: a newer version is being installed while the current
	// handle keeps serving.
	StateRefreshing State = "refreshing"
	// StateFailed: no working asset exists and the last acquisition failed.
	StateFailed State = "failed"
)

// Snapshot is a read-only projection of the manager state.
type Snapshot struct {
	State State
	Asset *types.AssetMetadata
	Err   string
	Warn  string
}
