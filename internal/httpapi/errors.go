package httpapi

import (
	"encoding/json"
	"net/http"

	"assetd/internal/manager"
	"assetd/pkg/types"
)

// HTTPError allows services to provide an HTTP status code for an error.
type HTTPError interface {
	error
	StatusCode() int
}

// writeJSONError writes a consistent JSON error payload.
func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(types.ErrorResponse{Error: msg, Code: status})
}

// statusForError maps well-known manager errors to HTTP status codes.
// Classification checks run before the Unavailable catch-all so a wrapped
// fetch failure surfaces as 502 rather than a generic 503.
func statusForError(err error) int {
	switch {
	case manager.IsNotFound(err):
		return http.StatusNotFound
	case manager.IsCorruptAsset(err):
		return http.StatusInternalServerError
	case manager.IsFetchFailed(err):
		return http.StatusBadGateway
	case manager.IsDependencyUnavailable(err):
		return http.StatusServiceUnavailable
	case manager.IsNotReady(err), manager.IsUnavailable(err):
		return http.StatusServiceUnavailable
	}
	if he, ok := err.(HTTPError); ok {
		return he.StatusCode()
	}
	return http.StatusInternalServerError
}
