package cart

import (
	"context"
	"sync"
)

// MemoryPersister keeps encoded snapshots in process memory.
type MemoryPersister struct {
	mu        sync.RWMutex
	snapshots map[string][]byte
}

func NewMemoryPersister() *MemoryPersister {
	return &MemoryPersister{snapshots: map[string][]byte{}}
}

func (m *MemoryPersister) Name() string { return "memory" }

func (m *MemoryPersister) Load(ctx context.Context, owner string) ([]LineItem, error) {
	m.mu.RLock()
	data, ok := m.snapshots[owner]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNoSnapshot
	}
	return DecodeSnapshot(data)
}

func (m *MemoryPersister) Save(ctx context.Context, owner string, items []LineItem) error {
	data, err := EncodeSnapshot(items)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.snapshots[owner] = data
	m.mu.Unlock()
	return nil
}

// Raw exposes the stored bytes for an owner.
func (m *MemoryPersister) Raw(owner string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.snapshots[owner]
	return data, ok
}

// Put stores raw bytes for an owner, bypassing the codec.
func (m *MemoryPersister) Put(owner string, data []byte) {
	m.mu.Lock()
	m.snapshots[owner] = data
	m.mu.Unlock()
}
