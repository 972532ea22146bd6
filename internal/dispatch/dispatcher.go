// ABOUTME: HTTP exchange with the remote assistant service
// ABOUTME: Maps non-2xx to a typed failure and reports mode mismatches as notices

package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/naatox/capin-gateway/internal/payload"
)

// FallbackMessage is the fixed assistant message shown when a turn fails.
const FallbackMessage = "Lo siento, ocurrió un problema al contactar al servicio. Intenta nuevamente."

// NoticeTTL bounds how long a mode-mismatch diagnostic stays visible.
const NoticeTTL = 10 * time.Second

// maxErrorBody caps how much of a failed response body is kept on the error.
const maxErrorBody = 4096

// HTTPError is a non-2xx reply from the assistant service.
type HTTPError struct {
	Status int
	Body   string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("assistant service returned HTTP %d: %s", e.Status, e.Body)
}

// Notice is a transient, non-fatal diagnostic surfaced alongside a turn.
type Notice struct {
	Text         string
	Expected     string
	Received     string
	ForcedByFlag bool
	ExpiresAt    time.Time
}

// Exchange is the outcome of one successful request/response round trip.
type Exchange struct {
	Answer   string // framing stripped
	Response *Response
	Notice   *Notice // nil when requested and answered modes agree
}

// Dispatcher performs the request/response exchange. It never retries; a
// failed turn requires a new user-initiated attempt.
type Dispatcher struct {
	endpoint string
	client   *http.Client
	logger   *slog.Logger
}

// New creates a dispatcher for the given endpoint. A nil client selects a
// default with a 60s timeout.
func New(endpoint string, client *http.Client, logger *slog.Logger) *Dispatcher {
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		endpoint: endpoint,
		client:   client,
		logger:   logger.With("component", "dispatch"),
	}
}

// Send posts the payload and decodes the reply. Non-2xx status becomes an
// *HTTPError carrying the status and raw body; transport errors are
// wrapped. On success the answer is stripped of provider framing and the
// response's self-reported mode is compared against the requested one.
func (d *Dispatcher) Send(ctx context.Context, req *payload.Request) (*Exchange, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, d.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := d.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("contacting assistant service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &HTTPError{Status: resp.StatusCode, Body: string(raw)}
	}

	var decoded Response
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	d.logger.Debug("exchange complete",
		"session_id", req.SessionID,
		"source", req.Source,
		"elapsed", time.Since(start))

	return &Exchange{
		Answer:   StripFraming(decoded.Answer),
		Response: &decoded,
		Notice:   d.modeNotice(req, &decoded),
	}, nil
}

// modeNotice compares the response's self-reported mode to the requested
// one. A mismatch produces a transient diagnostic; the turn itself is fine.
func (d *Dispatcher) modeNotice(req *payload.Request, resp *Response) *Notice {
	meta := resp.EffectiveMeta()
	if meta == nil || meta.Trace == nil || meta.Trace.Mode == "" {
		return nil
	}

	expected := string(req.Mode())
	received := meta.Trace.Mode
	if received == expected {
		return nil
	}

	forced := meta.Trace.SearchStrategy == "forced_by_flag" || meta.Trace.DisabledByFlag
	text := fmt.Sprintf("El servidor respondió en %s pero se esperaba %s.", received, expected)
	if forced {
		text += " Verifica FREE_MODE_ENABLED=true en backend."
	}

	d.logger.Warn("mode mismatch",
		"expected", expected,
		"received", received,
		"forced_by_flag", forced)

	return &Notice{
		Text:         text,
		Expected:     expected,
		Received:     received,
		ForcedByFlag: forced,
		ExpiresAt:    time.Now().Add(NoticeTTL),
	}
}
