// ABOUTME: Fire-and-forget telemetry events posted as JSON
// ABOUTME: Transport failures are swallowed; telemetry never affects a turn

package telemetry

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"
)

// Event names emitted by the orchestrator.
const (
	EventChatSend        = "chat_send"
	EventPageNav         = "page_nav"
	EventCourseCodeQuery = "course_code_query"
)

// Emitter posts telemetry events to an optional endpoint. A nil Emitter
// or an empty endpoint is a no-op, so callers never guard their calls.
type Emitter struct {
	endpoint string
	client   *http.Client
	logger   *slog.Logger
}

// New creates an emitter. endpoint may be empty to disable emission.
func New(endpoint string, logger *slog.Logger) *Emitter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Emitter{
		endpoint: endpoint,
		client:   &http.Client{Timeout: 5 * time.Second},
		logger:   logger.With("component", "telemetry"),
	}
}

// Emit sends one event in a goroutine and returns immediately. Failures
// are logged at debug and otherwise ignored.
func (e *Emitter) Emit(event string, fields map[string]any) {
	if e == nil || e.endpoint == "" {
		return
	}

	body := map[string]any{
		"event":     event,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	for k, v := range fields {
		body[k] = v
	}

	raw, err := json.Marshal(body)
	if err != nil {
		e.logger.Debug("telemetry marshal failed", "event", event, "error", err)
		return
	}

	go func() {
		resp, err := e.client.Post(e.endpoint, "application/json", bytes.NewReader(raw))
		if err != nil {
			e.logger.Debug("telemetry send failed", "event", event, "error", err)
			return
		}
		resp.Body.Close()
	}()
}
