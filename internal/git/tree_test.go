package git

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTree_ReadWriteRoundTrip(t *testing.T) {
	root := t.TempDir()
	tree := NewTree(root)

	require.NoError(t, tree.WriteFile("a.go", "package a\n"))
	content, err := tree.ReadFile("a.go")
	require.NoError(t, err)
	assert.Equal(t, "package a\n", content)
}

func TestTree_RejectsAbsolutePath(t *testing.T) {
	tree := NewTree(t.TempDir())

	_, err := tree.ReadFile("/etc/passwd")
	assert.Error(t, err)
}

func TestTree_RejectsEscape(t *testing.T) {
	tree := NewTree(t.TempDir())

	_, err := tree.ReadFile("../outside.txt")
	assert.Error(t, err)

	err = tree.WriteFile("../outside.txt", "x")
	assert.Error(t, err)
}

func TestTree_Exists(t *testing.T) {
	root := t.TempDir()
	tree := NewTree(root)

	assert.False(t, tree.Exists("missing.go"))

	require.NoError(t, os.MkdirAll(filepath.Join(root, "pkg"), 0755))
	require.NoError(t, tree.WriteFile("pkg/b.go", "package pkg\n"))
	assert.True(t, tree.Exists("pkg/b.go"))
	assert.False(t, tree.Exists("pkg"))
}

func TestSplitLines(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []string
	}{
		{"empty", "", nil},
		{"single no newline", "a", []string{"a"}},
		{"single with newline", "a\n", []string{"a"}},
		{"multiple", "a\nb\nc\n", []string{"a", "b", "c"}},
		{"blank interior line", "a\n\nc\n", []string{"a", "", "c"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitLines(tt.content))
		})
	}
}

func TestJoinLines_InverseOfSplit(t *testing.T) {
	content := "a\nb\n\nc\n"
	assert.Equal(t, content, JoinLines(SplitLines(content)))
	assert.Equal(t, "", JoinLines(nil))
}
