// ABOUTME: Tests for guided/free turn classification
// ABOUTME: Verifies the grace window boundary and default-to-free reset

package mode

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClassify_GracePeriodBoundary(t *testing.T) {
	c := NewClassifier(time.Second)
	t0 := time.Unix(0, 0)

	c.RecordActionAt(SourceQuickAction, "tms.get_r11", t0)

	assert.Equal(t, Guided, c.Classify(t0.Add(999*time.Millisecond)))

	c.RecordActionAt(SourceQuickAction, "tms.get_r11", t0)
	assert.Equal(t, Free, c.Classify(t0.Add(1001*time.Millisecond)))
}

func TestClassify_ExactWindowIsFree(t *testing.T) {
	c := NewClassifier(time.Second)
	t0 := time.Unix(0, 0)

	c.RecordActionAt(SourceQuickAction, "tms.get_r12", t0)
	assert.Equal(t, Free, c.Classify(t0.Add(time.Second)))
}

func TestClassify_NoProvenanceIsFree(t *testing.T) {
	c := NewClassifier(0)
	assert.Equal(t, Free, c.Classify(time.Now()))
}

func TestClassify_EmptyIntentIsFree(t *testing.T) {
	c := NewClassifier(time.Second)
	t0 := time.Unix(0, 0)

	c.RecordActionAt(SourceQuickAction, "", t0)
	assert.Equal(t, Free, c.Classify(t0.Add(10*time.Millisecond)))
}

func TestClassify_ChatInputIsFree(t *testing.T) {
	c := NewClassifier(time.Second)
	t0 := time.Unix(0, 0)

	c.RecordActionAt(SourceChatInput, "", t0)
	assert.Equal(t, Free, c.Classify(t0.Add(10*time.Millisecond)))
}

func TestClassify_ResultClickIsFree(t *testing.T) {
	c := NewClassifier(time.Second)
	t0 := time.Unix(0, 0)

	c.RecordActionAt(SourceResultClick, "", t0)
	assert.Equal(t, Free, c.Classify(t0.Add(10*time.Millisecond)))
}

func TestClassify_FallThroughResetsMarker(t *testing.T) {
	c := NewClassifier(time.Second)
	t0 := time.Unix(0, 0)

	c.RecordActionAt(SourceQuickAction, "tms.get_r11", t0)
	now := t0.Add(2 * time.Second)
	assert.Equal(t, Free, c.Classify(now))

	// The marker was overwritten to a plain chat_input at classification time
	last := c.Last()
	assert.Equal(t, SourceChatInput, last.Source)
	assert.Empty(t, last.Intent)
	assert.True(t, last.Timestamp.Equal(now))
}

func TestClassify_GuidedDoesNotConsumeMarker(t *testing.T) {
	c := NewClassifier(time.Second)
	t0 := time.Unix(0, 0)

	c.RecordActionAt(SourceQuickAction, "tms.get_bloques", t0)
	assert.Equal(t, Guided, c.Classify(t0.Add(100*time.Millisecond)))

	// Still within the window; provenance-recording order wins
	assert.Equal(t, Guided, c.Classify(t0.Add(200*time.Millisecond)))
}
