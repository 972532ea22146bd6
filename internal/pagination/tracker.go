// ABOUTME: Pagination state derived from response metadata plus free-text navigation
// ABOUTME: State only ever refreshes from the next response; commands never mutate it

package pagination

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
)

// FallbackClienteQuery is resent when a navigation command arrives but no
// structured query was remembered for the session.
const FallbackClienteQuery = "Muéstrame todos mis cursos activos y pasados como cliente"

// Meta is the pagination slice of a response's metadata. Zero values mean
// the field was absent.
type Meta struct {
	Page     int
	PageSize int
	Total    int
}

// State is the derived pagination view. Never persisted.
type State struct {
	Page         int
	PageSize     int
	Total        int
	TotalPages   int
	Active       bool
	CanPrev      bool
	CanNext      bool
	ShowingCount int
}

// Derive computes the full pagination state from response metadata.
func Derive(meta Meta) State {
	s := State{
		Page:     meta.Page,
		PageSize: meta.PageSize,
		Total:    meta.Total,
	}

	if s.PageSize > 0 && s.Total > 0 {
		s.TotalPages = (s.Total + s.PageSize - 1) / s.PageSize
		if s.TotalPages < 1 {
			s.TotalPages = 1
		}
	}

	s.Active = s.TotalPages > 1 && s.Page > 0 && s.PageSize > 0
	s.CanPrev = s.Active && s.Page > 1
	s.CanNext = s.Active && s.Page < s.TotalPages

	if s.Active {
		shown := min(s.PageSize, s.Total-(s.Page-1)*s.PageSize)
		if shown < 0 {
			shown = 0
		}
		s.ShowingCount = shown
	}
	return s
}

// Command is a recognized free-text navigation command, ready to resend.
type Command struct {
	TargetPage    int
	DisplayLabel  string
	QueryToResend string
}

// pageJumpPattern matches "página N" / "pagina N" (case-insensitive,
// optional space). A bare number is not a navigation command.
var pageJumpPattern = regexp.MustCompile(`^p[aá]gina?\s*(\d+)$`)

// Intercept recognizes pagination commands in free text against the given
// state. A recognized-but-invalid command (out of range, or navigation the
// state doesn't allow) is not intercepted and must fall through as
// ordinary free text. lastQuery is the query to resend, with the cliente
// fallback when the session has none.
func Intercept(freeText string, state State, lastQuery string) (Command, bool) {
	cmd := strings.ToLower(strings.TrimSpace(freeText))

	if m := pageJumpPattern.FindStringSubmatch(cmd); m != nil {
		target, err := strconv.Atoi(m[1])
		if err != nil || !state.Active || target < 1 || target > state.TotalPages {
			return Command{}, false
		}
		return newCommand(target, lastQuery), true
	}

	switch cmd {
	case "siguiente":
		if !state.CanNext {
			return Command{}, false
		}
		return newCommand(state.Page+1, lastQuery), true
	case "anterior":
		if !state.CanPrev {
			return Command{}, false
		}
		return newCommand(state.Page-1, lastQuery), true
	}

	return Command{}, false
}

// GoToPage builds the resend command for an explicit page jump (e.g. from
// a pagination control). Returns false for out-of-range no-ops. Roles
// other than cliente navigate by sending a literal page command; cliente
// resends the remembered query so the listing context survives.
func GoToPage(n int, state State, lastQuery, role string) (Command, bool) {
	if n < 1 || (state.Active && n > state.TotalPages) {
		return Command{}, false
	}

	if role == "cliente" {
		return newCommand(n, lastQuery), true
	}

	return Command{
		TargetPage:    n,
		DisplayLabel:  fmt.Sprintf("→ Página %d", n),
		QueryToResend: fmt.Sprintf("pagina %d", n),
	}, true
}

func newCommand(target int, lastQuery string) Command {
	query := lastQuery
	if query == "" {
		query = FallbackClienteQuery
	}
	return Command{
		TargetPage:    target,
		DisplayLabel:  fmt.Sprintf("→ Página %d", target),
		QueryToResend: query,
	}
}

// Tracker guards the current state for one session. Refresh is the only
// way state changes; command interception reads, never writes.
type Tracker struct {
	mu    sync.Mutex
	state State
}

// NewTracker returns a tracker with inactive state.
func NewTracker() *Tracker {
	return &Tracker{}
}

// Refresh replaces the state from fresh response metadata.
func (t *Tracker) Refresh(meta Meta) State {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state = Derive(meta)
	return t.state
}

// Reset clears the state back to inactive.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state = State{}
}

// Current returns the last derived state.
func (t *Tracker) Current() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}
