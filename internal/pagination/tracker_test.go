// ABOUTME: Tests for pagination derivation and free-text command interception
// ABOUTME: Covers page arithmetic edge cases and fall-through of invalid commands

package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDerive_LastPartialPage(t *testing.T) {
	// total=95, pageSize=10 -> 10 pages; page 10 shows the last 5
	s := Derive(Meta{Page: 10, PageSize: 10, Total: 95})
	assert.Equal(t, 10, s.TotalPages)
	assert.Equal(t, 5, s.ShowingCount)
	assert.True(t, s.Active)
	assert.True(t, s.CanPrev)
	assert.False(t, s.CanNext)
}

func TestDerive_MiddlePage(t *testing.T) {
	s := Derive(Meta{Page: 3, PageSize: 10, Total: 95})
	assert.True(t, s.CanPrev)
	assert.True(t, s.CanNext)
	assert.Equal(t, 10, s.ShowingCount)
}

func TestDerive_InactiveWithoutMetadata(t *testing.T) {
	for name, meta := range map[string]Meta{
		"empty":       {},
		"no total":    {Page: 1, PageSize: 10},
		"no pageSize": {Page: 1, Total: 50},
		"no page":     {PageSize: 10, Total: 50},
		"single page": {Page: 1, PageSize: 10, Total: 7},
	} {
		t.Run(name, func(t *testing.T) {
			s := Derive(meta)
			assert.False(t, s.Active)
			assert.False(t, s.CanPrev)
			assert.False(t, s.CanNext)
			assert.Zero(t, s.ShowingCount)
		})
	}
}

func TestDerive_PageBeyondTotalClampsShowing(t *testing.T) {
	s := Derive(Meta{Page: 20, PageSize: 10, Total: 95})
	assert.Zero(t, s.ShowingCount)
}

func activeState() State {
	return Derive(Meta{Page: 2, PageSize: 10, Total: 50})
}

func TestIntercept_PageJump(t *testing.T) {
	cmd, ok := Intercept("página 3", activeState(), "q")
	require.True(t, ok)
	assert.Equal(t, 3, cmd.TargetPage)
	assert.Equal(t, "→ Página 3", cmd.DisplayLabel)
	assert.Equal(t, "q", cmd.QueryToResend)
}

func TestIntercept_PageJumpVariants(t *testing.T) {
	for _, text := range []string{"pagina 3", "Página 3", "PÁGINA 3", "página3", "  página 3  "} {
		_, ok := Intercept(text, activeState(), "q")
		assert.True(t, ok, "expected %q to be intercepted", text)
	}
}

func TestIntercept_OutOfRangeFallsThrough(t *testing.T) {
	state := Derive(Meta{Page: 2, PageSize: 10, Total: 50}) // 5 pages
	_, ok := Intercept("página 9", state, "q")
	assert.False(t, ok, "out-of-range jump must fall through as free text")

	_, ok = Intercept("página 0", state, "q")
	assert.False(t, ok)
}

func TestIntercept_InactiveFallsThrough(t *testing.T) {
	_, ok := Intercept("página 2", State{}, "q")
	assert.False(t, ok)
}

func TestIntercept_NextPrev(t *testing.T) {
	state := activeState()

	next, ok := Intercept("siguiente", state, "q")
	require.True(t, ok)
	assert.Equal(t, 3, next.TargetPage)

	prev, ok := Intercept("Anterior", state, "q")
	require.True(t, ok)
	assert.Equal(t, 1, prev.TargetPage)
}

func TestIntercept_NextAtLastPageFallsThrough(t *testing.T) {
	state := Derive(Meta{Page: 5, PageSize: 10, Total: 50})
	_, ok := Intercept("siguiente", state, "q")
	assert.False(t, ok)
}

func TestIntercept_PrevAtFirstPageFallsThrough(t *testing.T) {
	state := Derive(Meta{Page: 1, PageSize: 10, Total: 50})
	_, ok := Intercept("anterior", state, "q")
	assert.False(t, ok)
}

func TestIntercept_OrdinaryTextFallsThrough(t *testing.T) {
	for _, text := range []string{"¿qué cursos hay?", "3", "la página del curso", "siguiente curso"} {
		_, ok := Intercept(text, activeState(), "q")
		assert.False(t, ok, "%q must not be intercepted", text)
	}
}

func TestIntercept_EmptyLastQueryUsesFallback(t *testing.T) {
	cmd, ok := Intercept("siguiente", activeState(), "")
	require.True(t, ok)
	assert.Equal(t, FallbackClienteQuery, cmd.QueryToResend)
}

func TestGoToPage_NoOps(t *testing.T) {
	state := activeState() // 5 pages

	_, ok := GoToPage(0, state, "q", "cliente")
	assert.False(t, ok)

	_, ok = GoToPage(state.TotalPages+1, state, "q", "cliente")
	assert.False(t, ok)
}

func TestGoToPage_ClienteReusesQuery(t *testing.T) {
	cmd, ok := GoToPage(4, activeState(), "mis cursos de marzo", "cliente")
	require.True(t, ok)
	assert.Equal(t, "mis cursos de marzo", cmd.QueryToResend)
	assert.Equal(t, 4, cmd.TargetPage)
}

func TestGoToPage_OtherRolesSendPageCommand(t *testing.T) {
	cmd, ok := GoToPage(4, activeState(), "ignored", "alumno")
	require.True(t, ok)
	assert.Equal(t, "pagina 4", cmd.QueryToResend)
}

func TestGoToPage_InactiveStateAllowsAnyPositivePage(t *testing.T) {
	// Without active pagination there is no upper bound to validate against
	_, ok := GoToPage(7, State{}, "", "cliente")
	assert.True(t, ok)
}

func TestTracker_RefreshOnlyFromMeta(t *testing.T) {
	tr := NewTracker()
	assert.False(t, tr.Current().Active)

	s := tr.Refresh(Meta{Page: 1, PageSize: 10, Total: 95})
	assert.True(t, s.Active)

	// Interception must not move the tracker
	_, ok := Intercept("siguiente", tr.Current(), "q")
	require.True(t, ok)
	assert.Equal(t, 1, tr.Current().Page)

	tr.Reset()
	assert.False(t, tr.Current().Active)
}
