// ABOUTME: Fallback wraps a KV backend and degrades to memory when it fails
// ABOUTME: Callers never see storage errors; unavailability must not break a turn

package store

import (
	"context"
	"errors"
	"log/slog"
)

// Fallback wraps a durable KV backend with an in-memory overlay. Every write
// lands in the overlay first, then is attempted against the backend on a
// best-effort basis. Reads prefer the backend but fall back to the overlay
// when the backend errors or is missing a value the overlay holds.
//
// Put and Delete never return an error; Get only returns ErrKeyNotFound.
type Fallback struct {
	backend KV
	overlay *MemoryKV
	logger  *slog.Logger
}

// NewFallback wraps backend. A nil backend yields memory-only behavior.
func NewFallback(backend KV, logger *slog.Logger) *Fallback {
	if logger == nil {
		logger = slog.Default()
	}
	return &Fallback{
		backend: backend,
		overlay: NewMemoryKV(),
		logger:  logger.With("component", "store"),
	}
}

// Get returns the value stored under key, or ErrKeyNotFound.
func (f *Fallback) Get(ctx context.Context, key string) ([]byte, error) {
	if f.backend != nil {
		value, err := f.backend.Get(ctx, key)
		if err == nil {
			return value, nil
		}
		if !errors.Is(err, ErrKeyNotFound) {
			f.logger.Warn("backend read failed, using memory overlay", "key", key, "error", err)
		}
	}
	return f.overlay.Get(ctx, key)
}

// Put stores value under key. Backend failures are logged and swallowed.
func (f *Fallback) Put(ctx context.Context, key string, value []byte) error {
	// Overlay first so the value survives a backend failure.
	_ = f.overlay.Put(ctx, key, value)

	if f.backend != nil {
		if err := f.backend.Put(ctx, key, value); err != nil {
			f.logger.Warn("backend write failed, value kept in memory", "key", key, "error", err)
		}
	}
	return nil
}

// Delete removes the value stored under key. Backend failures are logged and swallowed.
func (f *Fallback) Delete(ctx context.Context, key string) error {
	_ = f.overlay.Delete(ctx, key)

	if f.backend != nil {
		if err := f.backend.Delete(ctx, key); err != nil {
			f.logger.Warn("backend delete failed", "key", key, "error", err)
		}
	}
	return nil
}

// Close closes the backend, if any.
func (f *Fallback) Close() error {
	if f.backend == nil {
		return nil
	}
	return f.backend.Close()
}
