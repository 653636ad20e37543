package git

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/waigani/diffparser"
)

// ChangeSet is the set of files changed by the PR relative to its base,
// with per-file hunk information from the unified diff.
type ChangeSet struct {
	files map[string]*diffparser.DiffFile
}

// ChangedFiles computes the diff between baseRef and the working tree HEAD
// and parses it into a ChangeSet.
func ChangedFiles(ctx context.Context, baseRef, workDir string) (*ChangeSet, error) {
	cmd := exec.CommandContext(ctx, "git", "diff", "--no-color", baseRef)
	if workDir != "" {
		cmd.Dir = workDir
	}
	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			msg := strings.TrimSpace(string(exitErr.Stderr))
			if msg != "" {
				return nil, fmt.Errorf("git diff against %s failed: %s", baseRef, msg)
			}
		}
		return nil, fmt.Errorf("git diff against %s failed: %w", baseRef, err)
	}
	return ParseChangeSet(string(out))
}

// ParseChangeSet parses unified diff text into a ChangeSet.
func ParseChangeSet(diffText string) (*ChangeSet, error) {
	cs := &ChangeSet{files: make(map[string]*diffparser.DiffFile)}
	if strings.TrimSpace(diffText) == "" {
		return cs, nil
	}

	diff, err := diffparser.Parse(diffText)
	if err != nil {
		return nil, fmt.Errorf("failed to parse diff: %w", err)
	}

	for _, f := range diff.Files {
		name := f.NewName
		if name == "" {
			// Deleted file: track under its old name so comments that
			// target it classify as location removed.
			name = f.OrigName
		}
		if name == "" {
			continue
		}
		cs.files[name] = f
	}
	return cs, nil
}

// Contains reports whether the path is part of the changed-file set.
func (cs *ChangeSet) Contains(path string) bool {
	_, ok := cs.files[path]
	return ok
}

// Paths returns the changed file paths in no particular order.
func (cs *ChangeSet) Paths() []string {
	paths := make([]string, 0, len(cs.files))
	for p := range cs.files {
		paths = append(paths, p)
	}
	return paths
}

// Deleted reports whether the path was deleted by the diff.
func (cs *ChangeSet) Deleted(path string) bool {
	f, ok := cs.files[path]
	return ok && f.Mode == diffparser.DELETED
}

// TouchesLines reports whether the diff modified any new-file line within
// the given range of path.
func (cs *ChangeSet) TouchesLines(path string, startLine, endLine int) bool {
	f, ok := cs.files[path]
	if !ok {
		return false
	}
	for _, h := range f.Hunks {
		for _, l := range h.NewRange.Lines {
			if l.Mode == diffparser.ADDED && l.Number >= startLine && l.Number <= endLine {
				return true
			}
		}
	}
	return false
}
