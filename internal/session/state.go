package session

import (
	"fmt"
	"time"

	"github.com/homequote/homequote/internal/catalog"
	"github.com/homequote/homequote/internal/flow"
	"github.com/homequote/homequote/internal/pricing"
)

// Phase tracks where a conversation stands.
type Phase string

const (
	// PhaseSelecting means no service has been chosen yet.
	PhaseSelecting Phase = "selecting"
	// PhaseAnswering means the question walk is in progress.
	PhaseAnswering Phase = "answering"
	// PhaseQuoted means a price has been computed and final actions are available.
	PhaseQuoted Phase = "quoted"
)

// State is the full conversation state for one visitor.
type State struct {
	ID        string          `json:"id"`
	Phase     Phase           `json:"phase"`
	Flow      *flow.State     `json:"flow,omitempty"`
	LastQuote *pricing.Result `json:"last_quote,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// New returns a fresh session with no service selected.
func New(id string) *State {
	now := time.Now().UTC()
	return &State{
		ID:        id,
		Phase:     PhaseSelecting,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// StartFlow begins the question walk for a service, discarding any
// previous answers and quote.
func (s *State) StartFlow(key catalog.ServiceKey) {
	s.Flow = flow.NewState(key)
	s.LastQuote = nil
	s.Phase = PhaseAnswering
	s.Touch()
}

// Reset returns the session to service selection.
func (s *State) Reset() {
	s.Flow = nil
	s.LastQuote = nil
	s.Phase = PhaseSelecting
	s.Touch()
}

// Touch bumps the modification timestamp.
func (s *State) Touch() {
	s.UpdatedAt = time.Now().UTC()
}

// Check verifies that a hydrated state is internally consistent with the
// given catalog. Stored sessions can outlive a catalog change, so states
// loaded from persistence must pass here before the engine acts on them.
func (s *State) Check(c *catalog.Catalog) error {
	switch s.Phase {
	case PhaseSelecting, PhaseAnswering, PhaseQuoted:
	default:
		return fmt.Errorf("session: unknown phase %q", s.Phase)
	}
	if s.Phase == PhaseSelecting {
		if s.Flow != nil {
			return fmt.Errorf("session: flow state present before service selection")
		}
		return nil
	}
	if s.Flow == nil {
		return fmt.Errorf("session: phase %s without flow state", s.Phase)
	}
	svc, ok := c.Service(s.Flow.Service)
	if !ok {
		return fmt.Errorf("session: %w: %s", catalog.ErrUnknownService, s.Flow.Service)
	}
	if s.Flow.Index < 0 || s.Flow.Index > len(svc.Questions) {
		return fmt.Errorf("session: question index %d out of range for %s", s.Flow.Index, svc.Key)
	}
	for id := range s.Flow.Answers {
		if _, ok := svc.Question(id); !ok {
			return fmt.Errorf("session: answer for unknown question %q", id)
		}
	}
	return nil
}
