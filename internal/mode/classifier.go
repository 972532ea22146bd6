// ABOUTME: Turn provenance tracking and guided/free classification
// ABOUTME: A time-boxed marker disambiguates quick actions from typed text

package mode

import (
	"sync"
	"time"
)

// Mode is the classification of a single conversation turn.
type Mode string

const (
	// Guided turns carry an explicit structured intent from a predefined trigger.
	Guided Mode = "guided"
	// Free turns carry only raw user text.
	Free Mode = "free"
)

// Source identifies how the current turn's content was produced.
type Source string

const (
	SourceChatInput   Source = "chat_input"
	SourceQuickAction Source = "quick_action"
	SourceResultClick Source = "result_click"
)

// DefaultGraceWindow bounds how long a recorded quick action stays valid
// for classification. Structured actions and free typing converge on the
// same submit path, so the marker must expire quickly or stale provenance
// would mislabel an unrelated typed turn.
const DefaultGraceWindow = time.Second

// Provenance describes the origin of the current turn. Overwritten on
// every turn; only meaningful within the grace window.
type Provenance struct {
	Source    Source
	Intent    string
	Timestamp time.Time
}

// Classifier holds the last recorded provenance and classifies turns.
// The grace window is a constructor parameter so expiry is testable.
type Classifier struct {
	mu          sync.Mutex
	last        *Provenance
	graceWindow time.Duration
}

// NewClassifier creates a classifier. window <= 0 selects DefaultGraceWindow.
func NewClassifier(window time.Duration) *Classifier {
	if window <= 0 {
		window = DefaultGraceWindow
	}
	return &Classifier{graceWindow: window}
}

// RecordAction stores provenance for the turn about to be dispatched.
// Must be called synchronously before the resulting request is sent.
func (c *Classifier) RecordAction(source Source, intent string) {
	c.RecordActionAt(source, intent, time.Now())
}

// RecordActionAt is RecordAction with an explicit timestamp.
func (c *Classifier) RecordActionAt(source Source, intent string, at time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.last = &Provenance{Source: source, Intent: intent, Timestamp: at}
}

// Classify returns Guided iff the stored provenance is a quick action with
// a non-empty intent recorded less than the grace window before now. Any
// other case is Free, and falling through resets the marker to a plain
// chat_input at now so an unprompted follow-up stays free.
func (c *Classifier) Classify(now time.Time) Mode {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.last != nil &&
		c.last.Source == SourceQuickAction &&
		c.last.Intent != "" &&
		now.Sub(c.last.Timestamp) < c.graceWindow {
		return Guided
	}

	c.last = &Provenance{Source: SourceChatInput, Timestamp: now}
	return Free
}

// Last returns a copy of the current provenance, or nil when none recorded.
func (c *Classifier) Last() *Provenance {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.last == nil {
		return nil
	}
	p := *c.last
	return &p
}
