// ABOUTME: Per-scope session identity persisted through the KV layer
// ABOUTME: Lazily creates v4 UUIDs and supports explicit resets to a fresh id

package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	mrand "math/rand/v2"

	"github.com/google/uuid"

	"github.com/naatox/capin-gateway/internal/store"
)

const keyspace = "capin:chat"

// SessionKey returns the KV key holding the session id for a scope.
func SessionKey(scope string) string {
	if scope == "" {
		scope = "default"
	}
	return fmt.Sprintf("%s:session:%s", keyspace, scope)
}

// MessagesKey returns the KV key holding the message log for a session id.
func MessagesKey(sessionID string) string {
	return fmt.Sprintf("%s:messages:%s", keyspace, sessionID)
}

// Store persists one session identifier per scope.
type Store struct {
	kv     store.KV
	logger *slog.Logger
}

// NewStore creates a session store on top of kv.
func NewStore(kv store.KV, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		kv:     kv,
		logger: logger.With("component", "session"),
	}
}

// GetOrCreate returns the persisted session id for scope, generating and
// persisting a fresh one when none exists. Storage errors degrade to a
// newly generated, unpersisted id; the caller always gets a usable id.
func (s *Store) GetOrCreate(ctx context.Context, scope string) string {
	key := SessionKey(scope)

	value, err := s.kv.Get(ctx, key)
	if err == nil && len(value) > 0 {
		return string(value)
	}
	if err != nil && !errors.Is(err, store.ErrKeyNotFound) {
		s.logger.Warn("session lookup failed, generating ephemeral id", "scope", scope, "error", err)
	}

	id := NewSessionID()
	if err := s.kv.Put(ctx, key, []byte(id)); err != nil {
		s.logger.Warn("session persist failed", "scope", scope, "error", err)
	}
	s.logger.Debug("session created", "scope", scope, "session_id", id)
	return id
}

// Reset generates a fresh session id for scope, overwriting the prior one.
// History stored under the old id is left untouched.
func (s *Store) Reset(ctx context.Context, scope string) string {
	id := NewSessionID()
	if err := s.kv.Put(ctx, SessionKey(scope), []byte(id)); err != nil {
		s.logger.Warn("session reset persist failed", "scope", scope, "error", err)
	}
	s.logger.Info("session reset", "scope", scope, "session_id", id)
	return id
}

// NewSessionID returns an RFC 4122 v4 identifier. When the secure RNG is
// unavailable it falls back to a manually assembled v4 value rather than
// failing the turn.
func NewSessionID() string {
	id, err := uuid.NewRandom()
	if err == nil {
		return id.String()
	}
	return fallbackUUID()
}

// fallbackUUID assembles a v4-shaped identifier from math/rand. Only ever
// used when crypto/rand is broken on the host.
func fallbackUUID() string {
	var b [16]byte
	for i := range b {
		b[i] = byte(mrand.UintN(256))
	}
	b[6] = (b[6] & 0x0f) | 0x40 // version 4
	b[8] = (b[8] & 0x3f) | 0x80 // RFC 4122 variant
	return fmt.Sprintf("%x-%x-%x-%x-%x", b[0:4], b[4:6], b[6:8], b[8:10], b[10:16])
}
