//go:build llama

package manager

import (
	"context"
	"errors"
	"strings"

	llama "github.com/go-skynet/go-llama.cpp"
)

// llamaBuilt indicates this binary was compiled with real llama support.
var llamaBuilt = true

// llamaEngine holds global config used to open asset handles.
type llamaEngine struct {
	ctxSize int
	threads int
}

func NewLlamaEngine(ctxSize, threads int) Engine {
	return &llamaEngine{ctxSize: ctxSize, threads: threads}
}

// llamaHandle owns the loaded model.
type llamaHandle struct {
	model   *llama.LLama
	threads int
}

func (e *llamaEngine) Open(path string) (EngineHandle, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("asset path is empty")
	}
	mo := []llama.ModelOption{
		llama.SetContext(e.ctxSize),
	}
	m, err := llama.New(path, mo...)
	if err != nil {
		return nil, err
	}
	return &llamaHandle{model: m, threads: e.threads}, nil
}

func (h *llamaHandle) Infer(ctx context.Context, input []byte) ([]byte, error) {
	if h.model == nil {
		return nil, errors.New("llama model not initialized")
	}
	// Bridge cancellation into the token callback so a canceled context stops
	// generation instead of blocking until completion.
	h.model.SetTokenCallback(func(tok string) bool {
		select {
		case <-ctx.Done():
			return false
		default:
		}
		return true
	})
	po := []llama.PredictOption{
		llama.SetThreads(maxInt(1, h.threads)),
	}
	text, err := h.model.Predict(string(input), po...)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, err
	}
	return []byte(text), nil
}

func (h *llamaHandle) Close() error {
	if h.model != nil {
		h.model.Free()
		h.model = nil
	}
	return nil
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
