// Package tokenstore holds the process-wide key-value storage the API client
// reads its bearer token from.
package tokenstore

import (
	"context"
	"sync"
)

// Reader is the read-only view the dispatcher depends on. Get returns ""
// with a nil error when the key is absent.
type Reader interface {
	Get(ctx context.Context, key string) (string, error)
}

// Store is the writable variant owned by whoever issues tokens (the CLI
// login and logout commands).
type Store interface {
	Reader
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Noop models a context without any storage facility, e.g. server-side
// execution. It never holds a token and discards writes.
type Noop struct{}

// NewNoop returns the storage provider for non-interactive contexts.
func NewNoop() Noop { return Noop{} }

// Name reports the provider name.
func (Noop) Name() string { return "none" }

// Get implements Reader. It always reports an absent key.
func (Noop) Get(context.Context, string) (string, error) { return "", nil }

// Set implements Store. The value is discarded.
func (Noop) Set(context.Context, string, string) error { return nil }

// Delete implements Store.
func (Noop) Delete(context.Context, string) error { return nil }

// Memory is a goroutine-safe in-process store.
type Memory struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{values: make(map[string]string)}
}

// Name reports the provider name.
func (m *Memory) Name() string { return "memory" }

// Get implements Reader.
func (m *Memory) Get(_ context.Context, key string) (string, error) {
	if key == "" {
		return "", ErrEmptyKey
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.values[key], nil
}

// Set implements Store.
func (m *Memory) Set(_ context.Context, key, value string) error {
	if key == "" {
		return ErrEmptyKey
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

// Delete implements Store.
func (m *Memory) Delete(_ context.Context, key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}
