// Package validation checks raw answers against the rule declared on a
// question. Validation is a pure predicate: it never mutates anything and
// never looks beyond the value and the question.
package validation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/homequote/homequote/internal/catalog"
)

// hexColorPattern accepts #RGB and #RRGGBB.
var hexColorPattern = regexp.MustCompile(`^#([0-9A-Fa-f]{3}){1,2}$`)

// Error is a recoverable validation failure carrying the message to re-prompt
// the user with.
type Error struct {
	QuestionID string
	Message    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("validation: %s: %s", e.QuestionID, e.Message)
}

// Validate checks a raw answer against the question's declared rule.
// It returns nil when the value is acceptable. Rules are evaluated in a fixed
// order: required first, then the empty-and-optional shortcut, then the
// type-specific rule.
func Validate(raw string, q *catalog.Question) *Error {
	rule := q.Validation
	if rule == nil {
		return nil
	}

	value := strings.TrimSpace(raw)
	empty := value == ""

	if rule.Type == catalog.RuleRequired && empty {
		return fail(q, "This field is required.")
	}
	if empty {
		// Optional question left blank.
		return nil
	}

	switch rule.Type {
	case catalog.RuleRange:
		n, err := strconv.ParseFloat(value, 64)
		if err != nil || n < rule.Min || n > rule.Max {
			return fail(q, fmt.Sprintf("Please enter a value between %s and %s.",
				formatBound(rule.Min), formatBound(rule.Max)))
		}
	case catalog.RuleMinLength:
		if utf8.RuneCountInString(value) < rule.MinLength {
			return fail(q, fmt.Sprintf("Please enter at least %d characters.", rule.MinLength))
		}
	case catalog.RuleHexColor:
		if rule.AllowFreeText && !strings.HasPrefix(value, "#") {
			// Free-text color names are accepted as-is.
			return nil
		}
		if !hexColorPattern.MatchString(value) {
			return fail(q, "Invalid format. Use #RRGGBB or #RGB.")
		}
	}

	return nil
}

// fail builds an Error preferring the question's declared message.
func fail(q *catalog.Question, generic string) *Error {
	msg := q.ErrorMessage
	if msg == "" {
		msg = generic
	}
	return &Error{QuestionID: q.ID, Message: msg}
}

func formatBound(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
