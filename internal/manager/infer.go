package manager

import "context"

// Infer ensures a ready handle and runs one inference call through it. The
// handle borrow is scoped to this call; it is acquired immediately before
// the engine runs and released right after, so a concurrent swap can retire
// the old handle safely.
func (m *Manager) Infer(ctx context.Context, input []byte) ([]byte, string, error) {
	if err := m.EnsureReady(ctx); err != nil {
		return nil, "", err
	}
	h, err := m.guard.Acquire()
	if err != nil {
		return nil, "", err
	}
	defer m.guard.Release(h)
	out, err := h.Infer(ctx, input)
	if err != nil {
		return nil, h.Version(), err
	}
	return out, h.Version(), nil
}
