// ABOUTME: Error taxonomy for the turn orchestrator
// ABOUTME: Validation failures block dispatch; network failures recover into a fallback turn

package orchestrator

import (
	"errors"
	"fmt"
)

// ErrUnknownIntent is returned when a structured action names an intent
// outside the catalogue.
var ErrUnknownIntent = errors.New("unknown intent")

// ClaimsPrompt is the blocking prompt shown when the customer role is
// missing required identity fields.
const ClaimsPrompt = "Por favor completa todos los campos requeridos: RUT, ID Cliente y Email"

// ValidationError blocks a turn before any network activity. The Prompt
// is meant to be shown to the user as-is.
type ValidationError struct {
	Role   string
	Prompt string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("role %q is missing required claim fields", e.Role)
}

// IsValidation reports whether err is a blocking validation failure.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
