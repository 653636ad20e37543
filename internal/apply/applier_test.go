package apply

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reviewloop/rcr/internal/domain"
)

// memStore is an in-memory FileStore that counts writes.
type memStore struct {
	files  map[string]string
	writes int
}

func newMemStore(files map[string]string) *memStore {
	return &memStore{files: files}
}

func (m *memStore) ReadFile(path string) (string, error) {
	content, ok := m.files[path]
	if !ok {
		return "", fmt.Errorf("no such file: %s", path)
	}
	return content, nil
}

func (m *memStore) WriteFile(path, content string) error {
	m.files[path] = content
	m.writes++
	return nil
}

func TestApply_SingleEdit(t *testing.T) {
	store := newMemStore(map[string]string{
		"a.go": "package a\n\nvar count int\n",
	})
	a := New(store)

	err := a.Apply(domain.ChangeIntent{CommentID: "c1", Edits: []domain.FileEdit{{
		Path: "a.go", StartLine: 3, EndLine: 3,
		OldText: "var count int", NewText: "var total int",
	}}})
	require.NoError(t, err)

	assert.Equal(t, "package a\n\nvar total int\n", store.files["a.go"])
	assert.Equal(t, 1, store.writes)
}

func TestApply_MultiLineReplacement(t *testing.T) {
	store := newMemStore(map[string]string{
		"a.go": "l1\nl2\nl3\nl4\n",
	})
	a := New(store)

	err := a.Apply(domain.ChangeIntent{Edits: []domain.FileEdit{{
		Path: "a.go", StartLine: 2, EndLine: 3,
		OldText: "l2\nl3", NewText: "x1\nx2\nx3",
	}}})
	require.NoError(t, err)

	assert.Equal(t, "l1\nx1\nx2\nx3\nl4\n", store.files["a.go"])
}

func TestApply_DeletionEdit(t *testing.T) {
	store := newMemStore(map[string]string{
		"a.go": "l1\nl2\nl3\n",
	})
	a := New(store)

	err := a.Apply(domain.ChangeIntent{Edits: []domain.FileEdit{{
		Path: "a.go", StartLine: 2, EndLine: 2,
		OldText: "l2", NewText: "",
	}}})
	require.NoError(t, err)

	assert.Equal(t, "l1\nl3\n", store.files["a.go"])
}

func TestApply_StalePrecondition_NoWrites(t *testing.T) {
	store := newMemStore(map[string]string{
		"a.go": "package a\n\nvar renamed int\n",
	})
	a := New(store)

	err := a.Apply(domain.ChangeIntent{Edits: []domain.FileEdit{{
		Path: "a.go", StartLine: 3, EndLine: 3,
		OldText: "var count int", NewText: "var total int",
	}}})

	assert.ErrorIs(t, err, domain.ErrStalePrecondition)
	assert.Equal(t, 0, store.writes)
	assert.Equal(t, "package a\n\nvar renamed int\n", store.files["a.go"])
}

func TestApply_SecondEditStale_FirstNotWritten(t *testing.T) {
	store := newMemStore(map[string]string{
		"a.go": "a1\na2\n",
		"b.go": "b1\nb2\n",
	})
	a := New(store)

	err := a.Apply(domain.ChangeIntent{Edits: []domain.FileEdit{
		{Path: "a.go", StartLine: 1, EndLine: 1, OldText: "a1", NewText: "A1"},
		{Path: "b.go", StartLine: 2, EndLine: 2, OldText: "stale", NewText: "B2"},
	}})

	assert.ErrorIs(t, err, domain.ErrStalePrecondition)
	assert.Equal(t, 0, store.writes)
	assert.Equal(t, "a1\na2\n", store.files["a.go"])
	assert.Equal(t, "b1\nb2\n", store.files["b.go"])
}

func TestApply_RangeOutOfBounds(t *testing.T) {
	store := newMemStore(map[string]string{"a.go": "one line\n"})
	a := New(store)

	err := a.Apply(domain.ChangeIntent{Edits: []domain.FileEdit{{
		Path: "a.go", StartLine: 5, EndLine: 6, OldText: "x", NewText: "y",
	}}})

	assert.ErrorIs(t, err, domain.ErrStalePrecondition)
}

func TestApply_MissingFile(t *testing.T) {
	a := New(newMemStore(map[string]string{}))

	err := a.Apply(domain.ChangeIntent{Edits: []domain.FileEdit{{
		Path: "gone.go", StartLine: 1, EndLine: 1, OldText: "x", NewText: "y",
	}}})

	assert.ErrorIs(t, err, domain.ErrStalePrecondition)
}

func TestApply_StackedEditsSameFile(t *testing.T) {
	store := newMemStore(map[string]string{
		"a.go": "l1\nl2\nl3\n",
	})
	a := New(store)

	// Both edits replace single lines without shifting later ranges.
	err := a.Apply(domain.ChangeIntent{Edits: []domain.FileEdit{
		{Path: "a.go", StartLine: 1, EndLine: 1, OldText: "l1", NewText: "L1"},
		{Path: "a.go", StartLine: 3, EndLine: 3, OldText: "l3", NewText: "L3"},
	}})
	require.NoError(t, err)

	assert.Equal(t, "L1\nl2\nL3\n", store.files["a.go"])
	assert.Equal(t, 1, store.writes)
}
