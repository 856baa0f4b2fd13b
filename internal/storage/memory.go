package storage

import (
	"context"
	"errors"
	"sync"
)

// ErrWriteRejected is what a Memory store returns while FailWrites is set.
var ErrWriteRejected = errors.New("storage: write rejected")

// Memory keeps entries in process memory. It backs tests and the "memory"
// driver.
type Memory struct {
	mu      sync.Mutex
	entries map[string][]byte
	writes  int
	failing bool
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{entries: map[string][]byte{}}
}

// Get returns a copy of the stored value.
func (m *Memory) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	value, ok := m.entries[key]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneBytes(value), nil
}

// Set stores a copy of value.
func (m *Memory) Set(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := ValidateKey(key); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failing {
		return ErrWriteRejected
	}
	m.entries[key] = cloneBytes(value)
	m.writes++
	return nil
}

// Remove deletes key if present.
func (m *Memory) Remove(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

// Close is a no-op.
func (m *Memory) Close() error { return nil }

// Writes reports how many Set calls succeeded.
func (m *Memory) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

// FailWrites makes subsequent Set calls fail until reset, simulating a full
// disk or exceeded quota.
func (m *Memory) FailWrites(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failing = fail
}
