// ABOUTME: Wire types for the assistant service response and answer cleanup
// ABOUTME: Tolerates the legacy "metadata" alias and strips provider framing text

package dispatch

import (
	"strings"

	"github.com/naatox/capin-gateway/internal/pagination"
)

// Citation points at a source document backing part of an answer.
type Citation struct {
	ID    string `json:"id,omitempty"`
	Title string `json:"title,omitempty"`
	URL   string `json:"url,omitempty"`
}

// TraceCandidate is one retrieval candidate the service considered.
type TraceCandidate struct {
	ID     string  `json:"id,omitempty"`
	Title  string  `json:"title,omitempty"`
	Score  float64 `json:"score,omitempty"`
	Source string  `json:"source,omitempty"`
}

// Trace is the optional diagnostic block describing how the service
// answered. Used for transparency only.
type Trace struct {
	Candidates     []TraceCandidate `json:"candidates,omitempty"`
	ToolsCalled    []string         `json:"tools_called,omitempty"`
	SearchStrategy string           `json:"search_strategy,omitempty"`
	Mode           string           `json:"mode,omitempty"`
	DisabledByFlag bool             `json:"disabled_by_flag,omitempty"`
}

// ResponseMeta is the metadata block of a response.
type ResponseMeta struct {
	TotalCursos int        `json:"total_cursos,omitempty"`
	Page        int        `json:"page,omitempty"`
	PageSize    int        `json:"page_size,omitempty"`
	TotalPages  int        `json:"total_pages,omitempty"`
	Returned    int        `json:"returned,omitempty"`
	Intent      string     `json:"intent,omitempty"`
	Citations   []Citation `json:"citations,omitempty"`
	Trace       *Trace     `json:"trace,omitempty"`
}

// Response is the decoded assistant service reply. Some deployments send
// the metadata block under "metadata" instead of "meta"; both are decoded
// and EffectiveMeta picks whichever is present.
type Response struct {
	Answer    string         `json:"answer"`
	Citations []Citation     `json:"citations,omitempty"`
	Usage     map[string]any `json:"usage,omitempty"`
	LatencyMS *float64       `json:"latency_ms,omitempty"`
	SessionID string         `json:"session_id,omitempty"`
	Meta      *ResponseMeta  `json:"meta,omitempty"`
	Metadata  *ResponseMeta  `json:"metadata,omitempty"`
}

// EffectiveMeta returns the metadata block regardless of which key carried it.
func (r *Response) EffectiveMeta() *ResponseMeta {
	if r.Meta != nil {
		return r.Meta
	}
	return r.Metadata
}

// PageMeta extracts the pagination slice of the metadata, zero when absent.
func (r *Response) PageMeta() pagination.Meta {
	meta := r.EffectiveMeta()
	if meta == nil {
		return pagination.Meta{}
	}
	return pagination.Meta{
		Page:     meta.Page,
		PageSize: meta.PageSize,
		Total:    meta.TotalCursos,
	}
}

// answerPrefixes are framing labels some provider versions prepend.
var answerPrefixes = []string{"respuesta:", "answer:"}

// sourceHeadings start the trailing sources section some provider
// versions append after the answer body.
var sourceHeadings = []string{"fuentes:", "sources:"}

// StripFraming removes fixed provider framing: a leading answer label and
// a trailing sources section. The answer body itself is left untouched.
func StripFraming(answer string) string {
	out := strings.TrimSpace(answer)

	lower := strings.ToLower(out)
	for _, prefix := range answerPrefixes {
		if strings.HasPrefix(lower, prefix) {
			out = strings.TrimSpace(out[len(prefix):])
			break
		}
	}

	// Drop everything from a sources heading at the start of a line onward.
	for _, heading := range sourceHeadings {
		lower = strings.ToLower(out)
		from := 0
		for {
			idx := strings.Index(lower[from:], heading)
			if idx < 0 {
				break
			}
			idx += from
			if idx == 0 || lower[idx-1] == '\n' {
				out = strings.TrimSpace(out[:idx])
				break
			}
			from = idx + 1
		}
	}

	return out
}
