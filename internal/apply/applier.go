// Package apply materializes change intents into the working tree.
package apply

import (
	"fmt"
	"strings"

	"github.com/reviewloop/rcr/internal/domain"
	"github.com/reviewloop/rcr/internal/git"
)

// FileStore is the read/write access the applier needs.
type FileStore interface {
	ReadFile(path string) (string, error)
	WriteFile(path, content string) error
}

// Applier applies intents atomically: every edit is staged and its
// precondition checked before any file is written, so a stale plan leaves
// the tree untouched instead of half-mutated.
type Applier struct {
	files FileStore
}

// New creates an applier over the given file store.
func New(files FileStore) *Applier {
	return &Applier{files: files}
}

// staged is a fully computed file replacement awaiting commit.
type staged struct {
	path    string
	content string
}

// Apply lands all of the intent's edits or none of them. A precondition
// mismatch (the expected text is no longer at the target range) fails with
// domain.ErrStalePrecondition before any write happens.
func (a *Applier) Apply(intent domain.ChangeIntent) error {
	// Stage phase: build every new file content in memory. Edits to the
	// same file stack on the staged content, last line numbers win only
	// if earlier edits in the intent did not shift them; intents from the
	// planner are single-file single-edit today, but the staging loop
	// keeps multi-edit intents safe.
	stagedByPath := make(map[string]string)
	var order []string

	for _, edit := range intent.Edits {
		content, ok := stagedByPath[edit.Path]
		if !ok {
			var err error
			content, err = a.files.ReadFile(edit.Path)
			if err != nil {
				return fmt.Errorf("%w: %s: %v", domain.ErrStalePrecondition, edit.Path, err)
			}
			order = append(order, edit.Path)
		}

		next, err := applyEdit(content, edit)
		if err != nil {
			return err
		}
		stagedByPath[edit.Path] = next
	}

	// Commit phase: all preconditions held, write everything.
	for _, path := range order {
		if err := a.files.WriteFile(path, stagedByPath[path]); err != nil {
			return fmt.Errorf("failed to commit edit to %s: %w", path, err)
		}
	}
	return nil
}

// applyEdit replaces the edit's line range within content, verifying the
// precondition first.
func applyEdit(content string, edit domain.FileEdit) (string, error) {
	lines := git.SplitLines(content)
	if edit.StartLine < 1 || edit.EndLine > len(lines) || edit.StartLine > edit.EndLine {
		return "", fmt.Errorf("%w: %s:%d-%d is out of range", domain.ErrStalePrecondition, edit.Path, edit.StartLine, edit.EndLine)
	}

	current := strings.Join(lines[edit.StartLine-1:edit.EndLine], "\n")
	if current != edit.OldText {
		return "", fmt.Errorf("%w: %s:%d no longer matches expected text", domain.ErrStalePrecondition, edit.Path, edit.StartLine)
	}

	var out []string
	out = append(out, lines[:edit.StartLine-1]...)
	if edit.NewText != "" {
		out = append(out, strings.Split(edit.NewText, "\n")...)
	}
	out = append(out, lines[edit.EndLine:]...)
	return git.JoinLines(out), nil
}
