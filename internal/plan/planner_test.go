package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reviewloop/rcr/internal/domain"
	"github.com/reviewloop/rcr/internal/git"
)

type fakeView map[string]string

func (v fakeView) Lines(path string) ([]string, error) {
	return git.SplitLines(v[path]), nil
}

const changedDiff = `diff --git a/a.go b/a.go
index 1111111..2222222 100644
--- a/a.go
+++ b/a.go
@@ -1,3 +1,3 @@
 package a

-var count int
+var total int
`

func planner(t *testing.T, view fakeView) *Planner {
	t.Helper()
	cs, err := git.ParseChangeSet(changedDiff)
	require.NoError(t, err)
	return New(view, cs)
}

func suggestComment(id string, index, start, end int, suggestion string) domain.ReviewComment {
	return domain.ReviewComment{
		ID: id, Path: "a.go", StartLine: start, EndLine: end, Index: index,
		Body: "please change this\n```suggestion\n" + suggestion + "\n```\n",
	}
}

func TestExtractSuggestion(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
		ok   bool
	}{
		{"no block", "just words", "", false},
		{"simple", "```suggestion\nvar total int\n```", "var total int", true},
		{"with prose", "fix:\n```suggestion\nx := 1\n```\nthanks", "x := 1", true},
		{"multiline", "```suggestion\na\nb\n```", "a\nb", true},
		{"empty replacement", "```suggestion\n\n```", "", true},
		{"unterminated", "```suggestion\nabc", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractSuggestion(tt.body)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPlan_BuildsIntentWithPrecondition(t *testing.T) {
	view := fakeView{"a.go": "package a\n\nvar count int\n"}
	p := planner(t, view)

	intent, err := p.Plan(suggestComment("c1", 0, 3, 3, "var total int"), nil)
	require.NoError(t, err)

	require.Len(t, intent.Edits, 1)
	edit := intent.Edits[0]
	assert.Equal(t, "a.go", edit.Path)
	assert.Equal(t, "var count int", edit.OldText)
	assert.Equal(t, "var total int", edit.NewText)
	assert.Equal(t, []string{"a.go"}, intent.Files())
}

func TestPlan_NoSuggestion(t *testing.T) {
	view := fakeView{"a.go": "package a\n"}
	p := planner(t, view)

	_, err := p.Plan(domain.ReviewComment{ID: "c1", Path: "a.go", StartLine: 1, EndLine: 1, Body: "this is wrong"}, nil)
	assert.ErrorIs(t, err, domain.ErrUnplannable)
}

func TestPlan_FileOutsideChangedSet(t *testing.T) {
	view := fakeView{"other.go": "package other\n"}
	p := planner(t, view)

	c := suggestComment("c1", 0, 1, 1, "package o")
	c.Path = "other.go"
	_, err := p.Plan(c, nil)
	assert.ErrorIs(t, err, domain.ErrUnplannable)
}

func TestPlan_FileNamedInBodyAllowed(t *testing.T) {
	view := fakeView{"other.go": "package other\n"}
	p := planner(t, view)

	c := suggestComment("c1", 0, 1, 1, "package o")
	c.Path = "other.go"
	c.Body = "in other.go:\n```suggestion\npackage o\n```"
	_, err := p.Plan(c, nil)
	assert.NoError(t, err)
}

func TestPlan_OverlapConflict(t *testing.T) {
	view := fakeView{"a.go": "package a\n\nvar count int\nvar other int\n"}
	p := planner(t, view)

	_, err := p.Plan(suggestComment("c1", 0, 2, 3, "var total int"), nil)
	require.NoError(t, err)

	// Later comment overlapping the claimed range is refused, never
	// silently applied over the earlier change.
	_, err = p.Plan(suggestComment("c2", 1, 3, 4, "var something int"), nil)
	assert.ErrorIs(t, err, domain.ErrUnplannable)
	assert.Contains(t, err.Error(), "c1")
}

func TestPlan_NonOverlappingCommentsBothPlan(t *testing.T) {
	view := fakeView{"a.go": "package a\n\nvar count int\nvar other int\n"}
	p := planner(t, view)

	_, err := p.Plan(suggestComment("c1", 0, 3, 3, "var total int"), nil)
	require.NoError(t, err)

	_, err = p.Plan(suggestComment("c2", 1, 4, 4, "var rest int"), nil)
	assert.NoError(t, err)
}

func TestPlan_ReplanSameCommentNoSelfConflict(t *testing.T) {
	view := fakeView{"a.go": "package a\n\nvar count int\n"}
	p := planner(t, view)

	c := suggestComment("c1", 0, 3, 3, "var total int  ")
	_, err := p.Plan(c, nil)
	require.NoError(t, err)

	intent, err := p.Plan(c, []string{"a.go:3: trailing whitespace"})
	require.NoError(t, err)
	assert.Equal(t, "var total int", intent.Edits[0].NewText)
}

func TestPlan_RangeGone(t *testing.T) {
	view := fakeView{"a.go": "package a\n"}
	p := planner(t, view)

	_, err := p.Plan(suggestComment("c1", 0, 5, 6, "x"), nil)
	assert.ErrorIs(t, err, domain.ErrUnplannable)
}
