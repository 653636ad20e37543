// Package plan turns accepted review comments into concrete edit intents.
package plan

import (
	"fmt"
	"strings"

	"github.com/reviewloop/rcr/internal/domain"
	"github.com/reviewloop/rcr/internal/git"
)

// CodeView is the read access the planner needs to capture preconditions.
type CodeView interface {
	Lines(path string) ([]string, error)
}

// claim is a file range already promised to an earlier intent in this run.
type claim struct {
	commentID string
	path      string
	startLine int
	endLine   int
}

// Planner derives change intents from comments. One planner instance spans a
// workflow run and remembers every range it has planned, so overlapping
// requests from later comments are refused instead of silently overwritten.
type Planner struct {
	code    CodeView
	changes *git.ChangeSet
	claims  []claim
}

// New creates a planner over the given code view and changed-file set.
func New(code CodeView, changes *git.ChangeSet) *Planner {
	return &Planner{code: code, changes: changes}
}

// Plan builds an intent for the comment. findings carries verification
// output from a failed previous attempt and tunes the replacement text on
// re-planning. Fails with domain.ErrUnplannable when the comment has no
// actionable suggestion, targets a file outside the PR's changed set, or
// conflicts with a range claimed by an earlier comment.
func (p *Planner) Plan(comment domain.ReviewComment, findings []string) (domain.ChangeIntent, error) {
	suggestion, ok := ExtractSuggestion(comment.Body)
	if !ok {
		return domain.ChangeIntent{}, fmt.Errorf("%w: no actionable suggestion in comment %s", domain.ErrUnplannable, comment.ID)
	}

	// Intents may only touch the PR's changed files, unless the comment
	// names the file explicitly.
	if !p.changes.Contains(comment.Path) && !strings.Contains(comment.Body, comment.Path) {
		return domain.ChangeIntent{}, fmt.Errorf("%w: %s is outside the PR's changed files", domain.ErrUnplannable, comment.Path)
	}

	for _, cl := range p.claims {
		if cl.commentID == comment.ID {
			continue // re-planning the same comment is not a self-conflict
		}
		if cl.path == comment.Path && cl.startLine <= comment.EndLine && comment.StartLine <= cl.endLine {
			return domain.ChangeIntent{}, fmt.Errorf("%w: %s conflicts with change already planned for comment %s",
				domain.ErrUnplannable, comment.Location(), cl.commentID)
		}
	}

	lines, err := p.code.Lines(comment.Path)
	if err != nil {
		return domain.ChangeIntent{}, fmt.Errorf("%w: cannot read %s: %v", domain.ErrUnplannable, comment.Path, err)
	}
	if comment.StartLine < 1 || comment.EndLine > len(lines) || comment.StartLine > comment.EndLine {
		return domain.ChangeIntent{}, fmt.Errorf("%w: %s no longer spans valid lines", domain.ErrUnplannable, comment.Location())
	}

	oldText := strings.Join(lines[comment.StartLine-1:comment.EndLine], "\n")
	newText := tuneForFindings(suggestion, findings)

	intent := domain.ChangeIntent{
		CommentID: comment.ID,
		Edits: []domain.FileEdit{{
			Path:      comment.Path,
			StartLine: comment.StartLine,
			EndLine:   comment.EndLine,
			OldText:   oldText,
			NewText:   newText,
		}},
	}

	p.claims = append(p.claims, claim{
		commentID: comment.ID,
		path:      comment.Path,
		startLine: comment.StartLine,
		endLine:   comment.EndLine,
	})
	return intent, nil
}

// ExtractSuggestion pulls the replacement text out of a GitHub-style
// ```suggestion fenced block. Returns false if the comment has none.
func ExtractSuggestion(body string) (string, bool) {
	const fence = "```suggestion"

	start := strings.Index(body, fence)
	if start < 0 {
		return "", false
	}
	rest := body[start+len(fence):]

	// The fence line may carry trailing attributes; skip to end of line.
	nl := strings.IndexByte(rest, '\n')
	if nl < 0 {
		return "", false
	}
	rest = rest[nl+1:]

	end := strings.Index(rest, "```")
	if end < 0 {
		return "", false
	}
	return strings.TrimSuffix(rest[:end], "\n"), true
}

// tuneForFindings adjusts the replacement text based on verification
// findings from the previous attempt. Formatting complaints are the one
// class of failure a static suggestion can actually answer.
func tuneForFindings(text string, findings []string) string {
	for _, f := range findings {
		lower := strings.ToLower(f)
		if strings.Contains(lower, "trailing whitespace") || strings.Contains(lower, "gofmt") || strings.Contains(lower, "not formatted") {
			lines := strings.Split(text, "\n")
			for i := range lines {
				lines[i] = strings.TrimRight(lines[i], " \t")
			}
			return strings.Join(lines, "\n")
		}
	}
	return text
}
