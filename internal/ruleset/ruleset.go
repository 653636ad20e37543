// Package ruleset defines the pluggable style-rule capability consumed by
// the classifier. Each supported language contributes one RuleSet; the
// registry dispatches on file type, so adding a language means registering a
// new implementation, not modifying the classifier.
package ruleset

import (
	"path/filepath"
	"strings"

	"github.com/reviewloop/rcr/internal/domain"
)

// Location identifies a comment's target in the current working tree,
// together with the code presently at that range.
type Location struct {
	Path      string
	StartLine int
	EndLine   int
	// Snippet is the current text at the range. The classifier freezes it
	// before evaluation, so rule sets always see one consistent view.
	Snippet string
}

// RuleSet evaluates whether a comment's concern still holds against the
// code at its target location.
type RuleSet interface {
	Name() string
	Evaluate(loc Location, commentBody string) domain.ValidationVerdict
}

// Registry maps file extensions to rule sets, with a fallback for
// unrecognized file types.
type Registry struct {
	byExt    map[string]RuleSet
	fallback RuleSet
}

// NewRegistry creates a registry with the built-in rule sets: Go style
// rules for .go files and the generic rule set as fallback.
func NewRegistry() *Registry {
	r := &Registry{
		byExt:    make(map[string]RuleSet),
		fallback: Generic{},
	}
	r.Register(".go", GoStyle{})
	return r
}

// Register binds a rule set to a file extension (including the dot).
func (r *Registry) Register(ext string, rs RuleSet) {
	r.byExt[strings.ToLower(ext)] = rs
}

// For returns the rule set responsible for the given path.
func (r *Registry) For(path string) RuleSet {
	if rs, ok := r.byExt[strings.ToLower(filepath.Ext(path))]; ok {
		return rs
	}
	return r.fallback
}

// referencedTokens extracts the backtick-quoted code tokens from a comment
// body. Reviewers quote the identifiers they are talking about; if none of
// them survive in the current snippet the concern is stale.
func referencedTokens(body string) []string {
	var tokens []string
	for {
		start := strings.IndexByte(body, '`')
		if start < 0 {
			break
		}
		rest := body[start+1:]
		end := strings.IndexByte(rest, '`')
		if end < 0 {
			break
		}
		token := rest[:end]
		// Skip fenced blocks and empty or multi-line quotes.
		if token != "" && !strings.Contains(token, "\n") && !strings.HasPrefix(token, "``") {
			tokens = append(tokens, token)
		}
		body = rest[end+1:]
	}
	return tokens
}
