package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reviewloop/rcr/internal/domain"
)

func testComments() []domain.ReviewComment {
	return []domain.ReviewComment{
		{ID: "c2", Path: "b.go", StartLine: 3, EndLine: 3, Index: 1},
		{ID: "c1", Path: "a.go", StartLine: 1, EndLine: 2, Index: 0},
		{ID: "c3", Path: "c.go", StartLine: 9, EndLine: 9, Index: 2},
	}
}

func TestLoad_InitializesUnresolved(t *testing.T) {
	s := New()
	require.NoError(t, s.Load(testComments()))

	for _, id := range []string{"c1", "c2", "c3"} {
		state, err := s.State(id)
		require.NoError(t, err)
		assert.Equal(t, domain.StateUnresolved, state.Kind)
	}
}

func TestLoad_DuplicateID(t *testing.T) {
	s := New()
	require.NoError(t, s.Load(testComments()))

	err := s.Load([]domain.ReviewComment{{ID: "c1", Index: 5}})
	assert.ErrorIs(t, err, domain.ErrDuplicateComment)
}

func TestSnapshot_OrderedByIndex(t *testing.T) {
	s := New()
	require.NoError(t, s.Load(testComments()))

	snap := s.Snapshot()
	require.Len(t, snap, 3)
	assert.Equal(t, "c1", snap[0].ID)
	assert.Equal(t, "c2", snap[1].ID)
	assert.Equal(t, "c3", snap[2].ID)
}

func TestSnapshot_IsACopy(t *testing.T) {
	s := New()
	require.NoError(t, s.Load(testComments()))

	snap := s.Snapshot()
	snap[0].ID = "mutated"

	again := s.Snapshot()
	assert.Equal(t, "c1", again[0].ID)
}

func TestGet_ReturnsCommentAndState(t *testing.T) {
	s := New()
	require.NoError(t, s.Load(testComments()))
	require.NoError(t, s.Transition("c1", domain.Accepted))

	comment, state, err := s.Get("c1")
	require.NoError(t, err)
	assert.Equal(t, "a.go", comment.Path)
	assert.Equal(t, domain.StateAccepted, state.Kind)

	_, _, err = s.Get("nope")
	assert.ErrorIs(t, err, domain.ErrUnknownComment)
}

func TestTransition_Lifecycle(t *testing.T) {
	s := New()
	require.NoError(t, s.Load(testComments()))

	require.NoError(t, s.Transition("c1", domain.Accepted))
	require.NoError(t, s.Transition("c1", domain.Failed("tests failed")))
	require.NoError(t, s.Transition("c1", domain.Accepted))
	require.NoError(t, s.Transition("c1", domain.Applied))

	// Applied is terminal: no back-edge to failed.
	err := s.Transition("c1", domain.Failed("late failure"))
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestTransition_InvalidEdge(t *testing.T) {
	s := New()
	require.NoError(t, s.Load(testComments()))

	err := s.Transition("c1", domain.Applied)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestTransition_UnknownComment(t *testing.T) {
	s := New()
	require.NoError(t, s.Load(testComments()))

	err := s.Transition("nope", domain.Accepted)
	assert.ErrorIs(t, err, domain.ErrUnknownComment)
}

func TestTransition_ReasonPreserved(t *testing.T) {
	s := New()
	require.NoError(t, s.Load(testComments()))

	require.NoError(t, s.Transition("c2", domain.Rejected("already addressed")))
	state, err := s.State("c2")
	require.NoError(t, err)
	assert.Equal(t, domain.StateRejected, state.Kind)
	assert.Equal(t, "already addressed", state.Reason)
}
