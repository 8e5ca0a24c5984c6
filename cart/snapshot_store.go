package cart

import (
	"context"
	"errors"
	"sync"
)

// ErrNoSnapshot is returned by Load when nothing was ever saved for a key.
var ErrNoSnapshot = errors.New("no cart snapshot")

// SnapshotStore keeps the latest serialized cart per session key. Writes overwrite and
// stores re-read before mutating, so the last write wins.
type SnapshotStore interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, raw []byte) error
	Delete(ctx context.Context, key string) error
}

// MemorySnapshotStore keeps snapshots in process memory. Used in development and tests.
type MemorySnapshotStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemorySnapshotStore() *MemorySnapshotStore {
	return &MemorySnapshotStore{data: make(map[string][]byte)}
}

func (m *MemorySnapshotStore) Load(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	raw, ok := m.data[key]
	if !ok {
		return nil, ErrNoSnapshot
	}
	out := make([]byte, len(raw))
	copy(out, raw)
	return out, nil
}

func (m *MemorySnapshotStore) Save(_ context.Context, key string, raw []byte) error {
	buf := make([]byte, len(raw))
	copy(buf, raw)
	m.mu.Lock()
	m.data[key] = buf
	m.mu.Unlock()
	return nil
}

func (m *MemorySnapshotStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.data, key)
	m.mu.Unlock()
	return nil
}
