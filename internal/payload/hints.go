// ABOUTME: Comparison-intent detection over free text for diagnostic hints
// ABOUTME: Matching attaches client_hints only; it never changes routing

package payload

import (
	"regexp"
	"strings"
)

// compareKeywords is the fixed set whose presence marks a comparison
// question. Case-insensitive substring match.
var compareKeywords = []string{
	"comparar",
	"versus",
	"vs",
	"mejor entre",
	"diferencia entre",
	"cuál es mejor",
	"comparación",
	"diferencias",
	"similitudes",
}

// WantsCompare reports whether the free text looks like a comparison
// question.
func WantsCompare(text string) bool {
	lower := strings.ToLower(text)
	for _, kw := range compareKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// CourseCodePattern matches TMS course codes like R-REC-214.
var CourseCodePattern = regexp.MustCompile(`^R-[A-Z]{3}-\d+$`)

// IsCourseCode reports whether text is exactly a course code (case-insensitive).
func IsCourseCode(text string) bool {
	return CourseCodePattern.MatchString(strings.ToUpper(strings.TrimSpace(text)))
}
