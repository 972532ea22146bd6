// ABOUTME: KV interface and sentinel errors for capin-gateway persistence
// ABOUTME: Session ids and message history are stored as opaque values under string keys

package store

import (
	"context"
	"errors"
)

// ErrKeyNotFound is returned when a requested key does not exist.
var ErrKeyNotFound = errors.New("key not found")

// KV is the minimal key-value contract the orchestrator persists through.
// Implementations back it with SQLite, Bolt, or plain memory; the session
// and history layers never see which one is in use.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the store
	Close() error
}
