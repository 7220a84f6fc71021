package session

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrNotFound is returned when no session exists for the given id.
var ErrNotFound = errors.New("session: not found")

// Message is one line of the conversation transcript.
type Message struct {
	Role string    `json:"role"`
	Text string    `json:"text"`
	At   time.Time `json:"at"`
}

// Store persists conversation state between requests.
type Store interface {
	Save(ctx context.Context, state *State) error
	Load(ctx context.Context, id string) (*State, error)
	Delete(ctx context.Context, id string) error
	AppendTranscript(ctx context.Context, id string, msg Message) error
	Transcript(ctx context.Context, id string) ([]Message, error)
}

// InMemoryStore keeps sessions in a map. Used in tests and local runs
// without Redis.
type InMemoryStore struct {
	mu          sync.RWMutex
	states      map[string]*State
	transcripts map[string][]Message
}

// NewInMemoryStore returns an empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		states:      make(map[string]*State),
		transcripts: make(map[string][]Message),
	}
}

func (s *InMemoryStore) Save(_ context.Context, state *State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *state
	s.states[state.ID] = &copied
	return nil
}

func (s *InMemoryStore) Load(_ context.Context, id string) (*State, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.states[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *state
	return &copied, nil
}

func (s *InMemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, id)
	delete(s.transcripts, id)
	return nil
}

func (s *InMemoryStore) AppendTranscript(_ context.Context, id string, msg Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transcripts[id] = append(s.transcripts[id], msg)
	return nil
}

func (s *InMemoryStore) Transcript(_ context.Context, id string) ([]Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	msgs := s.transcripts[id]
	out := make([]Message, len(msgs))
	copy(out, msgs)
	return out, nil
}
