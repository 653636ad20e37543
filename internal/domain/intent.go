package domain

// FileEdit is one replacement within a single file. OldText is the
// precondition: the exact text expected at the target range when the edit
// is applied. A mismatch means the working tree moved underneath the plan.
type FileEdit struct {
	Path      string
	StartLine int
	EndLine   int
	OldText   string
	NewText   string
}

// ChangeIntent is a planned, not-yet-applied set of edits derived from an
// accepted comment. Edits are ordered and land atomically: all or none.
type ChangeIntent struct {
	CommentID string
	Edits     []FileEdit
}

// Files returns the distinct file paths touched by the intent, in edit order.
func (in ChangeIntent) Files() []string {
	seen := make(map[string]bool, len(in.Edits))
	var files []string
	for _, e := range in.Edits {
		if !seen[e.Path] {
			seen[e.Path] = true
			files = append(files, e.Path)
		}
	}
	return files
}

// Overlaps reports whether any edit in the intent overlaps the given range.
func (in ChangeIntent) Overlaps(path string, startLine, endLine int) bool {
	for _, e := range in.Edits {
		if e.Path != path {
			continue
		}
		if e.StartLine <= endLine && startLine <= e.EndLine {
			return true
		}
	}
	return false
}
