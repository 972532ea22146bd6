// Package store provides key-value persistence for conversation state.
//
// # Architecture
//
// A single small interface, KV, is implemented by three backends:
//
//   - SQLiteKV: SQLite file with WAL mode, one kv_entries table
//   - BoltKV: bbolt file with a single bucket
//   - MemoryKV: in-process map, used in tests and as the degraded mode
//
// # Degraded Mode
//
// The Fallback wrapper makes storage loss non-fatal. Every write lands in
// an in-memory overlay first and is then attempted against the backend;
// reads prefer the backend and fall back to the overlay. A conversation
// keeps working across a broken or missing store, it just stops surviving
// restarts.
//
// # Error Handling
//
//   - ErrKeyNotFound: the key has never been written (or was deleted)
//
// All other errors are backend-specific and wrapped with context.
package store
