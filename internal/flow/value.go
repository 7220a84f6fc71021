// Package flow walks a service's question schema one question at a time:
// dependency-gated visibility, validation, typed coercion and forward-only
// index advancement.
package flow

import (
	"strconv"
	"strings"
)

// Kind tags the typed variants an answer can hold.
type Kind string

const (
	KindNumber Kind = "number"
	KindBool   Kind = "bool"
	KindString Kind = "string"
)

// Value is a typed, immutable answer. Exactly one of the payload fields is
// meaningful for a given Kind.
type Value struct {
	Kind Kind    `json:"kind"`
	Num  float64 `json:"num,omitempty"`
	Bool bool    `json:"bool,omitempty"`
	Str  string  `json:"str,omitempty"`
}

// NumberValue wraps a float as an answer.
func NumberValue(n float64) Value { return Value{Kind: KindNumber, Num: n} }

// BoolValue wraps a boolean as an answer.
func BoolValue(b bool) Value { return Value{Kind: KindBool, Bool: b} }

// StringValue wraps raw text (select values, colors, free text) as an answer.
func StringValue(s string) Value { return Value{Kind: KindString, Str: s} }

// Number returns the numeric payload, or 0 for non-number values.
func (v Value) Number() float64 {
	if v.Kind == KindNumber {
		return v.Num
	}
	return 0
}

// IsTrue returns the boolean payload. Only a bool-kind value can be true;
// a stored false, zero or empty string never matches.
func (v Value) IsTrue() bool {
	return v.Kind == KindBool && v.Bool
}

// Text returns the string payload, or "" for non-string values.
func (v Value) Text() string {
	if v.Kind == KindString {
		return v.Str
	}
	return ""
}

// Token renders the value as the canonical string used by dependency
// predicates. Booleans become "true"/"false"; numbers use the shortest
// unambiguous float form.
func (v Value) Token() string {
	switch v.Kind {
	case KindBool:
		return strconv.FormatBool(v.Bool)
	case KindNumber:
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	default:
		return v.Str
	}
}

// Answers maps question IDs to accepted typed values. Insertion order is
// irrelevant; an entry exists only for questions actually presented and
// accepted.
type Answers map[string]Value

// Has reports whether an answer exists for the question.
func (a Answers) Has(id string) bool {
	_, ok := a[id]
	return ok
}

// Number returns the numeric answer for id, or 0 when absent.
func (a Answers) Number(id string) float64 { return a[id].Number() }

// Text returns the string answer for id, or "" when absent.
func (a Answers) Text(id string) string { return a[id].Text() }

// IsTrue reports whether the answer for id is the boolean true.
func (a Answers) IsTrue(id string) bool { return a[id].IsTrue() }

// TextFilled reports whether the string answer for id is non-blank.
func (a Answers) TextFilled(id string) bool {
	return strings.TrimSpace(a[id].Text()) != ""
}

// Clone returns a deep copy of the answer set.
func (a Answers) Clone() Answers {
	if a == nil {
		return nil
	}
	out := make(Answers, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}
