package git

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Tree is a read/write view of the checked-out working tree, scoped to the
// repository root. All paths are repo-relative; escaping the root is refused.
type Tree struct {
	root string
}

// NewTree creates a tree view rooted at the given directory.
func NewTree(root string) *Tree {
	return &Tree{root: root}
}

// Root returns the tree's root directory.
func (t *Tree) Root() string {
	return t.root
}

// resolve joins a repo-relative path to the root, rejecting escapes.
func (t *Tree) resolve(path string) (string, error) {
	if filepath.IsAbs(path) {
		return "", fmt.Errorf("path must be repo-relative: %s", path)
	}
	full := filepath.Join(t.root, path)
	rel, err := filepath.Rel(t.root, full)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path escapes repository root: %s", path)
	}
	return full, nil
}

// ReadFile returns the contents of a repo-relative file.
func (t *Tree) ReadFile(path string) (string, error) {
	full, err := t.resolve(path)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(full)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(data), nil
}

// WriteFile replaces the contents of a repo-relative file.
func (t *Tree) WriteFile(path, content string) error {
	full, err := t.resolve(path)
	if err != nil {
		return err
	}
	if err := os.WriteFile(full, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// Exists reports whether a repo-relative file exists.
func (t *Tree) Exists(path string) bool {
	full, err := t.resolve(path)
	if err != nil {
		return false
	}
	info, err := os.Stat(full)
	return err == nil && !info.IsDir()
}

// Lines returns the file's contents split into lines. The trailing newline
// does not produce an empty final element.
func (t *Tree) Lines(path string) ([]string, error) {
	content, err := t.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return SplitLines(content), nil
}

// SplitLines splits file content into lines without a phantom final empty
// line for newline-terminated files.
func SplitLines(content string) []string {
	if content == "" {
		return nil
	}
	content = strings.TrimSuffix(content, "\n")
	return strings.Split(content, "\n")
}

// JoinLines reassembles lines into newline-terminated file content.
func JoinLines(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}
