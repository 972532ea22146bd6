// ABOUTME: Bounded, ordered message history keyed by session identifier
// ABOUTME: Persists the most recent 100 messages as JSON, attachments excluded

package session

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/naatox/capin-gateway/internal/store"
)

// Sender values for messages.
const (
	SenderUser      = "user"
	SenderAssistant = "assistant"
)

// DefaultHistoryLimit caps how many messages are kept per session.
const DefaultHistoryLimit = 100

// Greeting is the fixed assistant message a cleared conversation restarts with.
const Greeting = "¡Hola! Soy Capin, tu asistente virtual de Insecap. ¿En qué puedo ayudarte hoy?"

// Attachment is a binary payload attached to a message. Attachments are
// never persisted; only the in-memory message carries them.
type Attachment struct {
	Name      string
	MediaType string
	Data      []byte
}

// Message is a single conversation entry. Immutable once created.
type Message struct {
	ID          string
	Text        string
	Sender      string
	Timestamp   time.Time
	Attachments []Attachment
}

// persistedMessage is the serialized form. Timestamps are fixed to RFC 3339
// and binary attachments are dropped.
type persistedMessage struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Sender    string `json:"sender"`
	Timestamp string `json:"timestamp"`
}

// History loads and saves message logs through the KV layer.
type History struct {
	kv     store.KV
	limit  int
	logger *slog.Logger
}

// NewHistory creates a history store. limit <= 0 selects DefaultHistoryLimit.
func NewHistory(kv store.KV, limit int, logger *slog.Logger) *History {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &History{
		kv:     kv,
		limit:  limit,
		logger: logger.With("component", "history"),
	}
}

// Load returns the ordered message log for sessionID, or an empty slice.
// Corrupt or missing data is treated as empty rather than failing.
func (h *History) Load(ctx context.Context, sessionID string) []Message {
	raw, err := h.kv.Get(ctx, MessagesKey(sessionID))
	if err != nil {
		if !errors.Is(err, store.ErrKeyNotFound) {
			h.logger.Warn("history load failed", "session_id", sessionID, "error", err)
		}
		return nil
	}

	var persisted []persistedMessage
	if err := json.Unmarshal(raw, &persisted); err != nil {
		h.logger.Warn("history unmarshal failed, starting empty", "session_id", sessionID, "error", err)
		return nil
	}

	messages := make([]Message, 0, len(persisted))
	for _, p := range persisted {
		ts, err := time.Parse(time.RFC3339Nano, p.Timestamp)
		if err != nil {
			ts = time.Time{}
		}
		messages = append(messages, Message{
			ID:        p.ID,
			Text:      p.Text,
			Sender:    p.Sender,
			Timestamp: ts,
		})
	}
	return messages
}

// Save persists messages under sessionID, truncating to the most recent
// limit entries first (oldest evicted). Best-effort: storage failures are
// logged, never returned.
func (h *History) Save(ctx context.Context, sessionID string, messages []Message) {
	if len(messages) > h.limit {
		messages = messages[len(messages)-h.limit:]
	}

	persisted := make([]persistedMessage, 0, len(messages))
	for _, m := range messages {
		persisted = append(persisted, persistedMessage{
			ID:        m.ID,
			Text:      m.Text,
			Sender:    m.Sender,
			Timestamp: m.Timestamp.UTC().Format(time.RFC3339Nano),
		})
	}

	raw, err := json.Marshal(persisted)
	if err != nil {
		h.logger.Error("history marshal failed", "session_id", sessionID, "error", err)
		return
	}
	if err := h.kv.Put(ctx, MessagesKey(sessionID), raw); err != nil {
		h.logger.Warn("history save failed", "session_id", sessionID, "error", err)
	}
}

// Clear replaces the stored history for sessionID with a single fresh
// greeting message and returns the new log.
func (h *History) Clear(ctx context.Context, sessionID string) []Message {
	greeting := []Message{{
		ID:        "welcome",
		Text:      Greeting,
		Sender:    SenderAssistant,
		Timestamp: time.Now(),
	}}
	h.Save(ctx, sessionID, greeting)
	return greeting
}
