package conversation

import (
	"context"
	"fmt"
	"sync"

	"github.com/teemow/iris/internal/action"
)

// Persister saves and loads the full conversation state.
type Persister interface {
	Load(ctx context.Context) (State, error)
	Save(ctx context.Context, state State) error
}

// Store is the in-memory conversation state backed by a Persister.
type Store struct {
	mu        sync.Mutex
	state     State
	persister Persister
}

// NewStore returns an empty store. A nil persister keeps the state in memory only.
func NewStore(p Persister) *Store {
	return &Store{persister: p}
}

// Open returns a store initialised from what the persister already holds.
func Open(ctx context.Context, p Persister) (*Store, error) {
	s := NewStore(p)
	if p == nil {
		return s, nil
	}
	state, err := p.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load conversation: %w", err)
	}
	s.state = state.Clone()
	return s, nil
}

// Append adds one turn and persists the full state.
func (s *Store) Append(ctx context.Context, turn Turn) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.Turns = append(s.state.Turns, turn)
	return s.persistLocked(ctx)
}

// SetLastAction replaces the last action slot and persists.
func (s *Store) SetLastAction(ctx context.Context, rec action.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.LastAction = &rec
	return s.persistLocked(ctx)
}

// ClearLastAction empties the last action slot and persists.
func (s *Store) ClearLastAction(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.LastAction = nil
	return s.persistLocked(ctx)
}

// LastAction returns a copy of the last action, or nil.
func (s *Store) LastAction() *action.Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.LastAction == nil {
		return nil
	}
	rec := *s.state.LastAction
	return &rec
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state.Clone()
}

// Reset empties the conversation and persists the empty state.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = State{Turns: []Turn{}}
	return s.persistLocked(ctx)
}

// Len returns the number of turns.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.state.Turns)
}

func (s *Store) persistLocked(ctx context.Context) error {
	if s.persister == nil {
		return nil
	}
	if err := s.persister.Save(ctx, s.state.Clone()); err != nil {
		return fmt.Errorf("failed to persist conversation: %w", err)
	}
	return nil
}
