package manager

import (
	"errors"

	"assetd/internal/fetch"
	"assetd/internal/store"
)

// corruptAssetError signals bytes the engine refused to open. Distinct from a
// fetch failure so callers purge the cache instead of retrying the network.
type corruptAssetError struct{ err error }

func (e corruptAssetError) Error() string { return "corrupt asset: " + e.err.Error() }
func (e corruptAssetError) Unwrap() error { return e.err }

// ErrCorruptAsset wraps an engine open failure.
func ErrCorruptAsset(err error) error { return corruptAssetError{err: err} }

// IsCorruptAsset reports whether err indicates an asset the engine rejected.
func IsCorruptAsset(err error) bool {
	var e corruptAssetError
	return errors.As(err, &e)
}

// unavailableError signals that no working asset exists and no fetch path
// succeeded (first-run with no connectivity, or a purged cache).
type unavailableError struct{ err error }

func (e unavailableError) Error() string { return "asset unavailable: " + e.err.Error() }
func (e unavailableError) Unwrap() error { return e.err }

// ErrUnavailable constructs an unavailableError.
func ErrUnavailable(err error) error { return unavailableError{err: err} }

// IsUnavailable reports whether err indicates no usable asset could be obtained.
func IsUnavailable(err error) bool {
	var e unavailableError
	return errors.As(err, &e)
}

// notReadyError signals a handle was requested before any successful open.
type notReadyError struct{}

func (notReadyError) Error() string { return "no handle opened yet" }

// ErrNotReady constructs a notReadyError.
func ErrNotReady() error { return notReadyError{} }

// IsNotReady reports whether err indicates the guard holds no handle.
func IsNotReady(err error) bool {
	var e notReadyError
	return errors.As(err, &e)
}

// dependencyUnavailableError signals a missing runtime dependency (e.g., a
// binary built without engine support) so the HTTP layer can return 503.
type dependencyUnavailableError struct{ msg string }

func (e dependencyUnavailableError) Error() string { return e.msg }

// ErrDependencyUnavailable constructs a dependencyUnavailableError.
func ErrDependencyUnavailable(msg string) error { return dependencyUnavailableError{msg: msg} }

// IsDependencyUnavailable reports whether err indicates a missing/failed runtime dependency.
func IsDependencyUnavailable(err error) bool {
	var e dependencyUnavailableError
	return errors.As(err, &e)
}

// IsNotFound reports whether err indicates an absent cached asset.
func IsNotFound(err error) bool { return errors.Is(err, store.ErrNotFound) }

// IsFetchFailed reports whether err originated in the remote fetcher.
func IsFetchFailed(err error) bool { return fetch.IsError(err) }
