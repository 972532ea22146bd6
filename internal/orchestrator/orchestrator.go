// ABOUTME: Orchestrator turns user actions into normalized assistant requests
// ABOUTME: Coordinates session, mode, claims, pagination, history, and failure recovery

package orchestrator

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/naatox/capin-gateway/internal/dispatch"
	"github.com/naatox/capin-gateway/internal/mode"
	"github.com/naatox/capin-gateway/internal/pagination"
	"github.com/naatox/capin-gateway/internal/payload"
	"github.com/naatox/capin-gateway/internal/session"
	"github.com/naatox/capin-gateway/internal/telemetry"
)

// Sender performs the exchange with the assistant service.
type Sender interface {
	Send(ctx context.Context, req *payload.Request) (*dispatch.Exchange, error)
}

// ErrorCallback is invoked once per failed turn, after the fallback
// message has been appended.
type ErrorCallback func(scope string, err error)

// TurnResult is the outcome of one conversation turn. A failed exchange
// still yields a result: the failure is recovered locally into the fixed
// fallback assistant message and Failed is set.
type TurnResult struct {
	SessionID        string
	Mode             mode.Mode
	UserMessage      session.Message
	AssistantMessage session.Message
	Pagination       pagination.State
	Citations        []dispatch.Citation
	Notice           *dispatch.Notice
	Failed           bool
}

// convState is the per-conversation mutable state. turnMu serializes
// turns for one scope; turns for different scopes proceed in parallel.
// dataMu guards the small fields so ResetSession can run mid-flight.
type convState struct {
	turnMu     sync.Mutex
	dataMu     sync.Mutex
	classifier *mode.Classifier
	tracker    *pagination.Tracker
	lastQuery  string
	lastIntent payload.Intent
}

func (cs *convState) remember(query string, intent payload.Intent) {
	cs.dataMu.Lock()
	defer cs.dataMu.Unlock()
	cs.lastQuery = query
	cs.lastIntent = intent
}

func (cs *convState) recall() (string, payload.Intent) {
	cs.dataMu.Lock()
	defer cs.dataMu.Unlock()
	return cs.lastQuery, cs.lastIntent
}

// forget replaces the tracker instead of resetting it in place: an
// in-flight turn keeps refreshing the orphaned tracker, so its pagination
// cannot leak into the conversation that replaced it.
func (cs *convState) forget() {
	cs.dataMu.Lock()
	defer cs.dataMu.Unlock()
	cs.lastQuery = ""
	cs.lastIntent = ""
	cs.tracker = pagination.NewTracker()
}

func (cs *convState) trackerRef() *pagination.Tracker {
	cs.dataMu.Lock()
	defer cs.dataMu.Unlock()
	return cs.tracker
}

// Orchestrator coordinates all turn processing. Safe for concurrent use
// across scopes.
type Orchestrator struct {
	sessions   *session.Store
	history    *session.History
	sender     Sender
	telemetry  *telemetry.Emitter
	logger     *slog.Logger
	grace      time.Duration
	onError    ErrorCallback
	greetEmpty bool

	mu     sync.Mutex
	states map[string]*convState
}

// Options tune orchestrator behavior beyond its collaborators.
type Options struct {
	// GraceWindow bounds quick-action provenance validity. Zero selects
	// the classifier default.
	GraceWindow time.Duration
	// OnError is invoked once per failed turn. May be nil.
	OnError ErrorCallback
	// GreetOnEmpty makes History return the fixed greeting for sessions
	// with no stored messages yet.
	GreetOnEmpty bool
}

// New creates an orchestrator.
func New(sessions *session.Store, history *session.History, sender Sender, emitter *telemetry.Emitter, logger *slog.Logger, opts Options) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		sessions:   sessions,
		history:    history,
		sender:     sender,
		telemetry:  emitter,
		logger:     logger.With("component", "orchestrator"),
		grace:      opts.GraceWindow,
		onError:    opts.OnError,
		greetEmpty: opts.GreetOnEmpty,
		states:     make(map[string]*convState),
	}
}

// state returns the conversation state for scope, creating it on first use.
func (o *Orchestrator) state(scope string) *convState {
	o.mu.Lock()
	defer o.mu.Unlock()

	cs, ok := o.states[scope]
	if !ok {
		cs = &convState{
			classifier: mode.NewClassifier(o.grace),
			tracker:    pagination.NewTracker(),
		}
		o.states[scope] = cs
	}
	return cs
}

// SubmitFreeText processes a typed message. For the customer role it may
// be intercepted as a pagination command; otherwise it dispatches as a
// free turn (or guided, when a quick action was recorded inside its grace
// window — provenance-recording order wins).
func (o *Orchestrator) SubmitFreeText(ctx context.Context, scope, text string, roleCtx payload.RoleContext) (*TurnResult, error) {
	cs := o.state(scope)
	cs.turnMu.Lock()
	defer cs.turnMu.Unlock()

	if err := o.claimsGate(roleCtx); err != nil {
		return nil, err
	}

	sessionID := o.sessions.GetOrCreate(ctx, scope)

	// Pagination commands only exist for the customer role
	if roleCtx.Role == payload.RoleCliente {
		lastQuery, _ := cs.recall()
		if cmd, ok := pagination.Intercept(text, cs.trackerRef().Current(), lastQuery); ok {
			return o.runPageTurn(ctx, cs, scope, sessionID, cmd, roleCtx)
		}
	}

	if payload.IsCourseCode(text) {
		o.telemetry.Emit(telemetry.EventCourseCodeQuery, map[string]any{
			"pattern":       "course_code",
			"session_scope": scope,
		})
	}

	turnMode := cs.classifier.Classify(time.Now())
	var intent payload.Intent
	if turnMode == mode.Guided {
		if last := cs.classifier.Last(); last != nil {
			intent = payload.Intent(last.Intent)
		}
	}

	cs.remember(text, intent)
	return o.runTurn(ctx, cs, scope, sessionID, turnParams{
		display:  text,
		send:     text,
		mode:     turnMode,
		intent:   intent,
		roleCtx:  roleCtx,
		telemSrc: string(mode.SourceChatInput),
	})
}

// SubmitStructuredAction processes a predefined quick action. The intent
// must belong to the catalogue; the message is derived from the intent's
// template when one exists.
func (o *Orchestrator) SubmitStructuredAction(ctx context.Context, scope string, intent payload.Intent, target, message string, roleCtx payload.RoleContext) (*TurnResult, error) {
	if !payload.KnownIntent(intent) {
		return nil, ErrUnknownIntent
	}

	cs := o.state(scope)
	cs.turnMu.Lock()
	defer cs.turnMu.Unlock()

	if err := o.claimsGate(roleCtx); err != nil {
		return nil, err
	}

	sessionID := o.sessions.GetOrCreate(ctx, scope)

	// Provenance must be recorded synchronously before dispatch
	cs.classifier.RecordAction(mode.SourceQuickAction, string(intent))
	turnMode := cs.classifier.Classify(time.Now())

	prompt := payload.PromptFor(intent, target, message)
	cs.remember(prompt, intent)

	return o.runTurn(ctx, cs, scope, sessionID, turnParams{
		display:  prompt,
		send:     prompt,
		mode:     turnMode,
		intent:   intent,
		target:   target,
		roleCtx:  roleCtx,
		telemSrc: string(mode.SourceQuickAction),
	})
}

// SubmitResultClick processes a click on a clickable result (e.g. a
// disambiguation chip). Result clicks are free-mode turns carrying the
// clicked identifier as the message.
func (o *Orchestrator) SubmitResultClick(ctx context.Context, scope, identifier string, roleCtx payload.RoleContext) (*TurnResult, error) {
	cs := o.state(scope)
	cs.turnMu.Lock()
	defer cs.turnMu.Unlock()

	if err := o.claimsGate(roleCtx); err != nil {
		return nil, err
	}

	sessionID := o.sessions.GetOrCreate(ctx, scope)

	cs.classifier.RecordAction(mode.SourceResultClick, "")
	turnMode := cs.classifier.Classify(time.Now())

	cs.remember(identifier, "")
	return o.runTurn(ctx, cs, scope, sessionID, turnParams{
		display:  identifier,
		send:     identifier,
		mode:     turnMode,
		roleCtx:  roleCtx,
		telemSrc: string(mode.SourceResultClick),
	})
}

// GoToPage jumps to page n. Out-of-range jumps are complete no-ops: no
// request is dispatched and no state changes.
func (o *Orchestrator) GoToPage(ctx context.Context, scope string, n int, roleCtx payload.RoleContext) (*TurnResult, error) {
	cs := o.state(scope)
	cs.turnMu.Lock()
	defer cs.turnMu.Unlock()

	if err := o.claimsGate(roleCtx); err != nil {
		return nil, err
	}

	lastQuery, _ := cs.recall()
	cmd, ok := pagination.GoToPage(n, cs.trackerRef().Current(), lastQuery, roleCtx.Role)
	if !ok {
		return nil, nil
	}

	sessionID := o.sessions.GetOrCreate(ctx, scope)
	return o.runPageTurn(ctx, cs, scope, sessionID, cmd, roleCtx)
}

// ResetSession replaces the scope's session identifier. It deliberately
// does not take the turn mutex: an in-flight turn completes under the
// identifier captured at its send time.
func (o *Orchestrator) ResetSession(ctx context.Context, scope string) string {
	cs := o.state(scope)
	cs.forget()
	return o.sessions.Reset(ctx, scope)
}

// ClearHistory replaces the stored history with the fixed greeting and
// drops the remembered query and pagination state.
func (o *Orchestrator) ClearHistory(ctx context.Context, scope string) []session.Message {
	cs := o.state(scope)
	cs.turnMu.Lock()
	defer cs.turnMu.Unlock()

	cs.forget()
	sessionID := o.sessions.GetOrCreate(ctx, scope)
	return o.history.Clear(ctx, sessionID)
}

// History returns the scope's message log. With GreetOnEmpty set, an
// empty log yields the greeting without persisting it.
func (o *Orchestrator) History(ctx context.Context, scope string) (string, []session.Message) {
	sessionID := o.sessions.GetOrCreate(ctx, scope)
	messages := o.history.Load(ctx, sessionID)
	if len(messages) == 0 && o.greetEmpty {
		messages = []session.Message{{
			ID:        "welcome",
			Text:      session.Greeting,
			Sender:    session.SenderAssistant,
			Timestamp: time.Now(),
		}}
	}
	return sessionID, messages
}

// Pagination returns the current derived pagination state for scope.
func (o *Orchestrator) Pagination(scope string) pagination.State {
	return o.state(scope).trackerRef().Current()
}

// claimsGate blocks customer turns until the full claim set is present.
// Only the customer role is gated; other roles dispatch and simply omit
// claims when their set is incomplete. Blocked turns never reach the
// network layer.
func (o *Orchestrator) claimsGate(roleCtx payload.RoleContext) error {
	if roleCtx.Role != payload.RoleCliente {
		return nil
	}
	if payload.ClaimsComplete(roleCtx.Role, roleCtx.Claims) {
		return nil
	}
	return &ValidationError{Role: roleCtx.Role, Prompt: ClaimsPrompt}
}

// turnParams collects what one dispatch needs beyond the shared state.
type turnParams struct {
	display      string
	send         string
	mode         mode.Mode
	intent       payload.Intent
	target       string
	pageOverride int
	roleCtx      payload.RoleContext
	telemSrc     string
}

// runPageTurn resends the remembered query for a recognized navigation
// command as a free turn with a page override.
func (o *Orchestrator) runPageTurn(ctx context.Context, cs *convState, scope, sessionID string, cmd pagination.Command, roleCtx payload.RoleContext) (*TurnResult, error) {
	o.telemetry.Emit(telemetry.EventPageNav, map[string]any{
		"page":          cmd.TargetPage,
		"total_pages":   cs.trackerRef().Current().TotalPages,
		"session_scope": scope,
	})

	cs.remember(cmd.QueryToResend, "")
	return o.runTurn(ctx, cs, scope, sessionID, turnParams{
		display:      cmd.DisplayLabel,
		send:         cmd.QueryToResend,
		mode:         mode.Free,
		pageOverride: cmd.TargetPage,
		roleCtx:      roleCtx,
		telemSrc:     string(mode.SourceChatInput),
	})
}

// runTurn is the single internal dispatch path both entry points lower
// into. The user message is persisted before the exchange; the assistant
// message (answer or fallback) after. Pagination state refreshes only
// from the response's metadata.
func (o *Orchestrator) runTurn(ctx context.Context, cs *convState, scope, sessionID string, p turnParams) (*TurnResult, error) {
	// Captured once: a reset during the exchange swaps the conversation's
	// tracker, and this turn must keep writing to the one it started with.
	tracker := cs.trackerRef()
	current := tracker.Current()

	req := payload.Build(payload.Input{
		RoleCtx:         p.roleCtx,
		SessionID:       sessionID,
		Mode:            p.mode,
		Intent:          p.intent,
		Target:          p.target,
		Message:         p.send,
		PageOverride:    p.pageOverride,
		CurrentPage:     current.Page,
		CurrentPageSize: current.PageSize,
	})

	o.telemetry.Emit(telemetry.EventChatSend, map[string]any{
		"mode":       string(p.mode),
		"source":     p.telemSrc,
		"intent":     string(p.intent),
		"role":       req.Role,
		"session_id": sessionID,
	})

	now := time.Now()
	userMsg := session.Message{
		ID:        uuid.New().String(),
		Text:      p.display,
		Sender:    session.SenderUser,
		Timestamp: now,
	}

	// Persist the user message before acting; a failed exchange must not
	// lose what the user said.
	log := append(o.history.Load(ctx, sessionID), userMsg)
	o.history.Save(ctx, sessionID, log)

	result := &TurnResult{
		SessionID:   sessionID,
		Mode:        p.mode,
		UserMessage: userMsg,
	}

	ex, err := o.sender.Send(ctx, req)
	if err != nil {
		o.logger.Warn("turn failed",
			"scope", scope,
			"session_id", sessionID,
			"error", err)

		fallback := session.Message{
			ID:        uuid.New().String(),
			Text:      dispatch.FallbackMessage,
			Sender:    session.SenderAssistant,
			Timestamp: time.Now(),
		}
		o.history.Save(ctx, sessionID, append(log, fallback))

		if o.onError != nil {
			o.onError(scope, err)
		}

		result.AssistantMessage = fallback
		result.Pagination = current
		result.Failed = true
		return result, nil
	}

	result.Pagination = tracker.Refresh(ex.Response.PageMeta())
	result.Notice = ex.Notice
	result.Citations = ex.Response.Citations
	if len(result.Citations) == 0 {
		if meta := ex.Response.EffectiveMeta(); meta != nil {
			result.Citations = meta.Citations
		}
	}

	assistantMsg := session.Message{
		ID:        uuid.New().String(),
		Text:      ex.Answer,
		Sender:    session.SenderAssistant,
		Timestamp: time.Now(),
	}
	o.history.Save(ctx, sessionID, append(log, assistantMsg))
	result.AssistantMessage = assistantMsg

	o.logger.Debug("turn complete",
		"scope", scope,
		"session_id", sessionID,
		"mode", p.mode,
		"intent", p.intent,
		"page", result.Pagination.Page)

	return result, nil
}
