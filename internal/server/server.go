// ABOUTME: HTTP API for the conversation gateway, built on echo
// ABOUTME: Routes chat turns, quick actions, pagination, and session management

package server

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/naatox/capin-gateway/internal/auth"
	"github.com/naatox/capin-gateway/internal/orchestrator"
	"github.com/naatox/capin-gateway/internal/pagination"
	"github.com/naatox/capin-gateway/internal/payload"
	"github.com/naatox/capin-gateway/internal/session"
)

// defaultScope names the conversation for requests that do not carry one.
const defaultScope = "default"

// Handler handles HTTP requests.
type Handler struct {
	orch         *orchestrator.Orchestrator
	verifier     auth.TokenVerifier
	authRequired bool
	logger       *slog.Logger
}

// NewHandler creates a new handler. verifier may be nil when authentication
// is disabled; unauthenticated requests then act under the public role.
func NewHandler(orch *orchestrator.Orchestrator, verifier auth.TokenVerifier, authRequired bool, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		orch:         orch,
		verifier:     verifier,
		authRequired: authRequired,
		logger:       logger.With("component", "server"),
	}
}

// NewEcho builds the echo server with routes and middleware registered.
func (h *Handler) NewEcho() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	h.RegisterRoutes(e)
	return e
}

// RegisterRoutes registers routes with the echo server.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.POST("/api/chat", h.Chat)
	e.POST("/api/actions", h.Action)
	e.POST("/api/results/click", h.ResultClick)

	e.GET("/api/sessions/:scope/history", h.GetHistory)
	e.DELETE("/api/sessions/:scope/history", h.ClearHistory)
	e.POST("/api/sessions/:scope/reset", h.ResetSession)
	e.POST("/api/sessions/:scope/page", h.GoToPage)

	e.GET("/health", h.Health)
}

// Health returns health status.
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "healthy"})
}

// roleContext resolves the caller's role context from the bearer token,
// or from the public role when authentication is optional and absent.
func (h *Handler) roleContext(c echo.Context) (payload.RoleContext, error) {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	token := strings.TrimPrefix(header, "Bearer ")
	if token == header {
		token = ""
	}

	if token == "" {
		if h.authRequired {
			return payload.RoleContext{}, echo.NewHTTPError(http.StatusUnauthorized, "missing bearer token")
		}
		return payload.RoleContext{Role: payload.RolePublico}, nil
	}

	if h.verifier == nil {
		return payload.RoleContext{Role: payload.RolePublico}, nil
	}

	principal, err := h.verifier.Verify(token)
	if err != nil {
		h.logger.Debug("token rejected", "error", err)
		return payload.RoleContext{}, echo.NewHTTPError(http.StatusUnauthorized, "invalid session token")
	}
	return principal.RoleContext(), nil
}

type chatRequest struct {
	Scope   string `json:"scope"`
	Message string `json:"message"`
}

// Chat handles a free-text turn.
// POST /api/chat
func (h *Handler) Chat(c echo.Context) error {
	roleCtx, err := h.roleContext(c)
	if err != nil {
		return err
	}

	var req chatRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if strings.TrimSpace(req.Message) == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "message is required"})
	}

	res, err := h.orch.SubmitFreeText(c.Request().Context(), scopeOr(req.Scope), req.Message, roleCtx)
	return h.turnReply(c, res, err)
}

type actionRequest struct {
	Scope   string `json:"scope"`
	Intent  string `json:"intent"`
	Target  string `json:"target"`
	Message string `json:"message"`
}

// Action handles a predefined quick action.
// POST /api/actions
func (h *Handler) Action(c echo.Context) error {
	roleCtx, err := h.roleContext(c)
	if err != nil {
		return err
	}

	var req actionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if req.Intent == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "intent is required"})
	}

	res, err := h.orch.SubmitStructuredAction(c.Request().Context(), scopeOr(req.Scope), payload.Intent(req.Intent), req.Target, req.Message, roleCtx)
	return h.turnReply(c, res, err)
}

type resultClickRequest struct {
	Scope      string `json:"scope"`
	Identifier string `json:"identifier"`
}

// ResultClick handles a click on a clickable result item.
// POST /api/results/click
func (h *Handler) ResultClick(c echo.Context) error {
	roleCtx, err := h.roleContext(c)
	if err != nil {
		return err
	}

	var req resultClickRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if req.Identifier == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "identifier is required"})
	}

	res, err := h.orch.SubmitResultClick(c.Request().Context(), scopeOr(req.Scope), req.Identifier, roleCtx)
	return h.turnReply(c, res, err)
}

type pageRequest struct {
	Page int `json:"page"`
}

// GoToPage handles an explicit page jump. Out-of-range jumps answer 200
// with the unchanged pagination state and no messages.
// POST /api/sessions/:scope/page
func (h *Handler) GoToPage(c echo.Context) error {
	roleCtx, err := h.roleContext(c)
	if err != nil {
		return err
	}

	var req pageRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	scope := c.Param("scope")
	res, err := h.orch.GoToPage(c.Request().Context(), scope, req.Page, roleCtx)
	if err == nil && res == nil {
		return c.JSON(http.StatusOK, map[string]any{
			"pagination": paginationJSON(h.orch.Pagination(scope)),
		})
	}
	return h.turnReply(c, res, err)
}

// GetHistory returns the scope's message log.
// GET /api/sessions/:scope/history
func (h *Handler) GetHistory(c echo.Context) error {
	if _, err := h.roleContext(c); err != nil {
		return err
	}

	sessionID, msgs := h.orch.History(c.Request().Context(), c.Param("scope"))
	return c.JSON(http.StatusOK, map[string]any{
		"session_id": sessionID,
		"messages":   messagesJSON(msgs),
	})
}

// ClearHistory resets the log to the greeting.
// DELETE /api/sessions/:scope/history
func (h *Handler) ClearHistory(c echo.Context) error {
	if _, err := h.roleContext(c); err != nil {
		return err
	}

	msgs := h.orch.ClearHistory(c.Request().Context(), c.Param("scope"))
	return c.JSON(http.StatusOK, map[string]any{
		"messages": messagesJSON(msgs),
	})
}

// ResetSession issues a fresh session identifier for the scope.
// POST /api/sessions/:scope/reset
func (h *Handler) ResetSession(c echo.Context) error {
	if _, err := h.roleContext(c); err != nil {
		return err
	}

	sessionID := h.orch.ResetSession(c.Request().Context(), c.Param("scope"))
	return c.JSON(http.StatusOK, map[string]string{"session_id": sessionID})
}

// turnReply maps an orchestrator outcome onto a wire response. Blocked
// validation answers 422 with the completion prompt; the caller shows it
// inline without dispatching anything.
func (h *Handler) turnReply(c echo.Context, res *orchestrator.TurnResult, err error) error {
	if err != nil {
		var verr *orchestrator.ValidationError
		switch {
		case errors.As(err, &verr):
			return c.JSON(http.StatusUnprocessableEntity, map[string]string{
				"error":  "validation_deferred",
				"prompt": verr.Prompt,
			})
		case errors.Is(err, orchestrator.ErrUnknownIntent):
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "unknown intent"})
		default:
			h.logger.Error("turn handling failed", "error", err)
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
		}
	}

	body := map[string]any{
		"session_id":        res.SessionID,
		"mode":              string(res.Mode),
		"failed":            res.Failed,
		"user_message":      messageJSON(res.UserMessage),
		"assistant_message": messageJSON(res.AssistantMessage),
		"pagination":        paginationJSON(res.Pagination),
	}
	if len(res.Citations) > 0 {
		body["citations"] = res.Citations
	}
	if res.Notice != nil {
		body["notice"] = map[string]any{
			"text":           res.Notice.Text,
			"expected":       res.Notice.Expected,
			"received":       res.Notice.Received,
			"forced_by_flag": res.Notice.ForcedByFlag,
			"expires_at":     res.Notice.ExpiresAt.Format(time.RFC3339),
		}
	}
	return c.JSON(http.StatusOK, body)
}

func scopeOr(scope string) string {
	if scope == "" {
		return defaultScope
	}
	return scope
}

func messageJSON(m session.Message) map[string]any {
	return map[string]any{
		"id":        m.ID,
		"text":      m.Text,
		"sender":    m.Sender,
		"timestamp": m.Timestamp.Format(time.RFC3339),
	}
}

func messagesJSON(msgs []session.Message) []map[string]any {
	out := make([]map[string]any, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, messageJSON(m))
	}
	return out
}

func paginationJSON(s pagination.State) map[string]any {
	return map[string]any{
		"page":          s.Page,
		"page_size":     s.PageSize,
		"total":         s.Total,
		"total_pages":   s.TotalPages,
		"active":        s.Active,
		"can_prev":      s.CanPrev,
		"can_next":      s.CanNext,
		"showing_count": s.ShowingCount,
	}
}
