package flow

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/homequote/homequote/internal/catalog"
	"github.com/homequote/homequote/internal/validation"
)

var (
	// ErrNoService is returned when the walker is asked to advance without a
	// selected service.
	ErrNoService = errors.New("flow: no service selected")

	// ErrWrongQuestion is returned when an answer targets a question other
	// than the one currently presented.
	ErrWrongQuestion = errors.New("flow: answer does not match current question")
)

// State is the walker's mutable view of one service session: the selected
// service, the current question index, and the accepted answers. The index is
// monotonically non-decreasing; there are no backward transitions.
type State struct {
	Service catalog.ServiceKey `json:"service,omitempty"`
	Index   int                `json:"index"`
	Answers Answers            `json:"answers"`
}

// NewState starts a fresh walk over the given service.
func NewState(key catalog.ServiceKey) *State {
	return &State{Service: key, Answers: make(Answers)}
}

// NextResult is the outcome of Next: either the question to present
// (with its button-style options, if any) or completion.
type NextResult struct {
	Done     bool
	Question *catalog.Question
	Options  []catalog.Option
}

// AcceptResult is the outcome of Accept.
type AcceptResult struct {
	Accepted      bool
	Question      *catalog.Question
	Value         Value
	ValidationErr *validation.Error
	// Defaulted is set when a failing answer was replaced by the question's
	// declared default and treated as an acceptance.
	Defaulted bool
}

// Engine resolves questions against the immutable catalog.
type Engine struct {
	catalog *catalog.Catalog
}

// NewEngine creates a flow engine over the loaded catalog.
func NewEngine(c *catalog.Catalog) *Engine {
	if c == nil {
		panic("flow: catalog cannot be nil")
	}
	return &Engine{catalog: c}
}

// Next returns the question at the current index, skipping forward past
// questions whose dependency is unmet. The skip advances st.Index, so the walk
// is bounded by the question list and always terminates. When the index is
// past the end the walk is complete.
func (e *Engine) Next(st *State) (NextResult, error) {
	svc, err := e.service(st)
	if err != nil {
		return NextResult{}, err
	}

	for st.Index < len(svc.Questions) {
		q := &svc.Questions[st.Index]
		if q.Dependency != nil && !q.Dependency.Matches(st.Answers[q.Dependency.QuestionID].Token()) {
			st.Index++
			continue
		}
		return NextResult{Question: q, Options: presentOptions(q)}, nil
	}
	return NextResult{Done: true}, nil
}

// Accept validates the raw answer for the current question and, on success,
// stores the coerced value and advances the index by one. A rejected answer
// leaves both the answer set and the index untouched.
//
// A question with a declared default swallows a validation failure: the
// default is stored in place of the bad input and the flow advances, unless
// the rule is required, which always wins over the default.
func (e *Engine) Accept(st *State, questionID, raw string) (AcceptResult, error) {
	next, err := e.Next(st)
	if err != nil {
		return AcceptResult{}, err
	}
	if next.Done {
		return AcceptResult{}, fmt.Errorf("flow: no question pending: %w", ErrWrongQuestion)
	}
	q := next.Question
	if questionID != "" && questionID != q.ID {
		return AcceptResult{}, fmt.Errorf("flow: expected answer for %q, got %q: %w", q.ID, questionID, ErrWrongQuestion)
	}

	defaulted := false
	if verr := validation.Validate(raw, q); verr != nil {
		if q.HasDefault() && !isRequired(q) {
			raw = q.Default
			defaulted = true
		} else {
			return AcceptResult{Question: q, ValidationErr: verr}, nil
		}
	}

	value, cerr := coerce(raw, q)
	if cerr != nil {
		return AcceptResult{Question: q, ValidationErr: cerr}, nil
	}

	st.Answers[q.ID] = value
	st.Index++
	return AcceptResult{Accepted: true, Question: q, Value: value, Defaulted: defaulted}, nil
}

// Completed reports whether every applicable question has been answered.
func (e *Engine) Completed(st *State) (bool, error) {
	next, err := e.Next(st)
	if err != nil {
		return false, err
	}
	return next.Done, nil
}

func (e *Engine) service(st *State) (*catalog.Service, error) {
	if st == nil || st.Service == "" {
		return nil, ErrNoService
	}
	svc, ok := e.catalog.Service(st.Service)
	if !ok {
		return nil, fmt.Errorf("flow: service %q not in catalog: %w", st.Service, ErrNoService)
	}
	return svc, nil
}

func isRequired(q *catalog.Question) bool {
	return q.Validation != nil && q.Validation.Type == catalog.RuleRequired
}

// presentOptions returns the button-style options for a question: declared
// options for selects, a fixed yes/no pair for booleans.
func presentOptions(q *catalog.Question) []catalog.Option {
	switch q.Type {
	case catalog.TypeSelect:
		return q.Options
	case catalog.TypeBoolean:
		return []catalog.Option{
			{Value: "true", Label: "Yes"},
			{Value: "false", Label: "No"},
		}
	}
	return nil
}

// coerce converts an accepted raw answer into its typed value. Empty number,
// color, and text answers fall back to the declared default when one exists.
func coerce(raw string, q *catalog.Question) (Value, *validation.Error) {
	trimmed := strings.TrimSpace(raw)

	switch q.Type {
	case catalog.TypeNumber:
		if trimmed == "" && q.HasDefault() {
			trimmed = q.Default
		}
		n, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return Value{}, &validation.Error{QuestionID: q.ID, Message: numberMessage(q)}
		}
		return NumberValue(n), nil

	case catalog.TypeBoolean:
		switch trimmed {
		case "true":
			return BoolValue(true), nil
		case "false":
			return BoolValue(false), nil
		}
		return Value{}, &validation.Error{QuestionID: q.ID, Message: booleanMessage(q)}

	case catalog.TypeColor, catalog.TypeText:
		if trimmed == "" && q.HasDefault() {
			trimmed = q.Default
		}
		return StringValue(trimmed), nil

	default: // select
		return StringValue(trimmed), nil
	}
}

func numberMessage(q *catalog.Question) string {
	if q.ErrorMessage != "" {
		return q.ErrorMessage
	}
	return "Please enter a number."
}

func booleanMessage(q *catalog.Question) string {
	if q.ErrorMessage != "" {
		return q.ErrorMessage
	}
	return "Please answer yes or no."
}
