package manager

import "context"

// Engine abstracts the inference runtime used by the handle guard. Concrete
// implementations (e.g., llama.cpp) should satisfy this interface.
type Engine interface {
	// Open loads the asset at path into an inference-ready handle.
	Open(path string) (EngineHandle, error)
}

// EngineHandle is one opened asset. Input and output buffers are opaque to
// assetd; encoding them is the caller's concern.
type EngineHandle interface {
	// Infer runs the engine on input. Implementations must return when the
	// context is canceled.
	Infer(ctx context.Context, input []byte) ([]byte, error)
	// Close releases native resources associated with the handle.
	Close() error
}
