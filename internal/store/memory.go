package store

import (
	"context"
	"sync"
)

// MemoryKV is an in-process SessionKV, used in tests and single-binary
// deployments. Entries live for the lifetime of the process.
type MemoryKV struct {
	mu    sync.RWMutex
	carts map[string][]byte
}

func NewMemoryKV() *MemoryKV {
	return &MemoryKV{carts: make(map[string][]byte)}
}

func (m *MemoryKV) Get(_ context.Context, sessionID string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, ok := m.carts[sessionID]
	if !ok {
		return nil, ErrNoCart
	}
	out := make([]byte, len(value))
	copy(out, value)
	return out, nil
}

func (m *MemoryKV) Set(_ context.Context, sessionID string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := make([]byte, len(value))
	copy(stored, value)
	m.carts[sessionID] = stored
	return nil
}

func (m *MemoryKV) Delete(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.carts, sessionID)
	return nil
}
