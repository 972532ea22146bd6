// ABOUTME: Pure assembly of the outbound request body for the assistant service
// ABOUTME: Combines role, claims, context, pagination, and mode; no side effects

package payload

import (
	"github.com/naatox/capin-gateway/internal/mode"
)

// TenantID is the fixed tenant every request is scoped to.
const TenantID = "insecap"

// DefaultPageSize is used when no page size has been observed yet.
const DefaultPageSize = 10

// Claims are the identity attributes scoping what the remote service may
// answer. All fields are optional at this layer; per-role completeness
// rules decide whether any of them are sent.
type Claims struct {
	Rut        string
	CustomerID string
	Email      string
}

// ContextObject is a pinned entity the user attached to the conversation.
type ContextObject struct {
	Type       string `json:"type"`
	Identifier string `json:"identifier"`
}

// MaxContextObjects caps how many context objects a request may carry.
const MaxContextObjects = 5

// RoleContext is the caller-owned identity for the current turn. The
// builder only reads it.
type RoleContext struct {
	Role           string
	SubArea        string
	Claims         Claims
	ContextObjects []ContextObject
}

// EffectiveRole returns the wire role, folding in the sub-area when the
// role carries a secondary dimension (e.g. "tms:logistica").
func (rc RoleContext) EffectiveRole() string {
	if rc.SubArea != "" {
		return rc.Role + ":" + rc.SubArea
	}
	return rc.Role
}

// WireClaims is the claims object as serialized on the wire.
type WireClaims struct {
	Rut        string          `json:"rut,omitempty"`
	CustomerID string          `json:"idCliente,omitempty"`
	Email      string          `json:"correo,omitempty"`
	Context    []ContextObject `json:"context,omitempty"`
}

// Filters carries pagination for roles that list courses.
type Filters struct {
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
}

// ClientHints carries diagnostic hints derived from free text. They never
// change routing on the server.
type ClientHints struct {
	WantsCompare bool `json:"wants_compare"`
}

// UserEnvelope duplicates the envelope under "user" for compatibility with
// older backends that read identity from there.
type UserEnvelope struct {
	Sub       string      `json:"sub"`
	Role      string      `json:"role"`
	SessionID string      `json:"session_id"`
	TenantID  string      `json:"tenantId"`
	Claims    *WireClaims `json:"claims,omitempty"`
	Filters   *Filters    `json:"filters,omitempty"`
}

// Request is the normalized outbound body. Guided requests carry intent
// and target; free requests carry only the raw message and optional hints.
type Request struct {
	Message     string       `json:"message"`
	Role        string       `json:"role"`
	SessionID   string       `json:"session_id"`
	TenantID    string       `json:"tenantId"`
	Source      string       `json:"source"`
	Intent      string       `json:"intent,omitempty"`
	Target      string       `json:"target,omitempty"`
	Claims      *WireClaims  `json:"claims,omitempty"`
	Filters     *Filters     `json:"filters,omitempty"`
	ClientHints *ClientHints `json:"client_hints,omitempty"`
	User        UserEnvelope `json:"user"`
}

// Guided reports whether the request carries a structured intent.
func (r *Request) Guided() bool {
	return r.Source == string(mode.SourceQuickAction) && r.Intent != ""
}

// Mode returns the conversation mode this request was built for.
func (r *Request) Mode() mode.Mode {
	if r.Guided() {
		return mode.Guided
	}
	return mode.Free
}

// Input is everything the builder needs for one turn.
type Input struct {
	RoleCtx   RoleContext
	SessionID string
	Mode      mode.Mode
	Intent    Intent // guided turns only
	Target    string // course code for guided turns
	Message   string

	// Pagination coming from the tracker. Zero values mean "unknown".
	PageOverride    int
	CurrentPage     int
	CurrentPageSize int
}

// Build assembles the outbound request. Pure: no network, no mutation of
// the input. Field validation is the caller's job.
func Build(in Input) *Request {
	role := in.RoleCtx.EffectiveRole()
	claims := claimsFor(in.RoleCtx)
	filters := filtersFor(in)

	req := &Request{
		Message:   in.Message,
		Role:      role,
		SessionID: in.SessionID,
		TenantID:  TenantID,
		Claims:    claims,
		Filters:   filters,
		User: UserEnvelope{
			Sub:       "",
			Role:      role,
			SessionID: in.SessionID,
			TenantID:  TenantID,
			Claims:    claims,
			Filters:   filters,
		},
	}

	if in.Mode == mode.Guided {
		req.Source = string(mode.SourceQuickAction)
		req.Intent = string(in.Intent)
		req.Target = in.Target
		return req
	}

	req.Source = string(mode.SourceChatInput)
	if WantsCompare(in.Message) {
		req.ClientHints = &ClientHints{WantsCompare: true}
	}
	return req
}

// filtersFor attaches pagination only for the customer role.
func filtersFor(in Input) *Filters {
	if in.RoleCtx.Role != RoleCliente {
		return nil
	}

	page := in.PageOverride
	if page == 0 {
		page = in.CurrentPage
	}
	if page == 0 {
		page = 1
	}

	pageSize := in.CurrentPageSize
	if pageSize == 0 {
		pageSize = DefaultPageSize
	}

	return &Filters{Page: page, PageSize: pageSize}
}
