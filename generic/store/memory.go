// Package store provides Store implementations.
package store

import (
	"context"
	"sync"

	"github.com/warp/holiday-planner/generic"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu   sync.RWMutex
	docs map[generic.Key][]byte
}

var _ generic.Store = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{docs: make(map[generic.Key][]byte)}
}

func (m *Memory) Load(_ context.Context, key generic.Key) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.docs[key]
	if !ok {
		return nil, false, nil
	}
	// Callers may keep the slice; hand out a copy.
	result := make([]byte, len(data))
	copy(result, data)
	return result, true, nil
}

func (m *Memory) Save(_ context.Context, key generic.Key, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := make([]byte, len(data))
	copy(stored, data)
	m.docs[key] = stored
	return nil
}

func (m *Memory) Delete(_ context.Context, key generic.Key) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.docs, key)
	return nil
}

// Len returns the number of stored documents.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.docs)
}
