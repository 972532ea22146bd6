// ABOUTME: In-memory implementation of the KV interface guarded by a RWMutex
// ABOUTME: Used directly in tests and as the degraded overlay inside Fallback

package store

import (
	"context"
	"sync"
)

// MemoryKV implements the KV interface with a plain in-process map.
type MemoryKV struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

// NewMemoryKV creates an empty in-memory store.
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{
		entries: make(map[string][]byte),
	}
}

// Get returns the value stored under key, or ErrKeyNotFound.
func (s *MemoryKV) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.entries[key]
	if !ok {
		return nil, ErrKeyNotFound
	}
	return append([]byte(nil), value...), nil
}

// Put stores value under key, replacing any previous value.
func (s *MemoryKV) Put(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = append([]byte(nil), value...)
	return nil
}

// Delete removes the value stored under key. Deleting a missing key is not an error.
func (s *MemoryKV) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, key)
	return nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryKV) Close() error {
	return nil
}
