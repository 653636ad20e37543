// Package store holds the review comments for one PR and owns their
// lifecycle state. No other component mutates comment state: collaborators
// report outcomes to the orchestrator, which is the store's sole writer.
package store

import (
	"fmt"
	"slices"
	"sync"

	"github.com/reviewloop/rcr/internal/domain"
)

// CommentStore tracks comments and their states for a single PR.
type CommentStore struct {
	mu       sync.RWMutex
	comments map[string]domain.ReviewComment
	states   map[string]domain.CommentState
	order    []string // IDs sorted by creation order index
}

// New creates an empty comment store.
func New() *CommentStore {
	return &CommentStore{
		comments: make(map[string]domain.ReviewComment),
		states:   make(map[string]domain.CommentState),
	}
}

// Load initializes the store with the given comments, each starting
// unresolved. It fails with domain.ErrDuplicateComment if any two comments
// share an identifier (including comments from a previous Load).
func (s *CommentStore) Load(comments []domain.ReviewComment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range comments {
		if _, exists := s.comments[c.ID]; exists {
			return fmt.Errorf("%w: %s", domain.ErrDuplicateComment, c.ID)
		}
		s.comments[c.ID] = c
		s.states[c.ID] = domain.Unresolved
		s.order = append(s.order, c.ID)
	}

	slices.SortStableFunc(s.order, func(a, b string) int {
		return s.comments[a].Index - s.comments[b].Index
	})
	return nil
}

// Transition moves the comment to a new state. It fails with
// domain.ErrUnknownComment for an unloaded ID and domain.ErrInvalidTransition
// if the requested state is not reachable from the current one.
func (s *CommentStore) Transition(id string, state domain.CommentState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.states[id]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrUnknownComment, id)
	}
	if !domain.CanTransition(current.Kind, state.Kind) {
		return fmt.Errorf("%w: %s: %s -> %s", domain.ErrInvalidTransition, id, current.Kind, state.Kind)
	}
	s.states[id] = state
	return nil
}

// Get returns a comment by ID together with its current state.
func (s *CommentStore) Get(id string) (domain.ReviewComment, domain.CommentState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	comment, ok := s.comments[id]
	if !ok {
		return domain.ReviewComment{}, domain.CommentState{}, fmt.Errorf("%w: %s", domain.ErrUnknownComment, id)
	}
	return comment, s.states[id], nil
}

// State returns the current state of a comment.
func (s *CommentStore) State(id string) (domain.CommentState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, ok := s.states[id]
	if !ok {
		return domain.CommentState{}, fmt.Errorf("%w: %s", domain.ErrUnknownComment, id)
	}
	return state, nil
}

// Snapshot returns a copy of all comments ordered by creation order index,
// for deterministic iteration. Mutating the returned slice does not affect
// the store.
func (s *CommentStore) Snapshot() []domain.ReviewComment {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.ReviewComment, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.comments[id])
	}
	return out
}

// Len returns the number of loaded comments.
func (s *CommentStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.comments)
}
