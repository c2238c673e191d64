//go:build !llama

package manager

// This file provides a no-CGO stub for the llama engine. It is compiled when
// the 'llama' build tag is NOT set, keeping default builds and CI CGO-free.
// The real engine lives in adapter_llama.go (tagged 'llama').

import (
	"context"
)

// llamaEngine is a stub that satisfies Engine but refuses to open assets
// without the 'llama' build tag available. This avoids any mocked behavior in
// production binaries built without CGO support.

type llamaEngine struct {
	ctxSize int
	threads int
}

func NewLlamaEngine(ctxSize, threads int) Engine {
	return &llamaEngine{ctxSize: ctxSize, threads: threads}
}

type llamaHandle struct {
	// No real resources in the stub.
}

func (e *llamaEngine) Open(path string) (EngineHandle, error) {
	// Fail fast: llama runtime not available in this build.
	return nil, ErrDependencyUnavailable("llama support not built (missing 'llama' build tag)")
}

func (h *llamaHandle) Infer(ctx context.Context, input []byte) ([]byte, error) {
	// Should never be called because Open returns an error, but return a clear error anyway.
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	return nil, ErrDependencyUnavailable("llama support not built (missing 'llama' build tag)")
}

func (h *llamaHandle) Close() error {
	// Nothing to free in the stub.
	return nil
}
