package ruleset

import (
	"regexp"
	"strings"

	"github.com/reviewloop/rcr/internal/domain"
)

// GoStyle evaluates review comments against Go files. On top of the generic
// token check it recognizes a few recurring Go review concerns and verifies
// them directly against the current code, so a concern the author already
// fixed is rejected instead of re-applied.
type GoStyle struct{}

// Name implements RuleSet.
func (GoStyle) Name() string { return "gostyle" }

// goConcern pairs comment phrasing with a check of the current snippet.
// present returns true when the snippet still exhibits the concern.
type goConcern struct {
	keywords []string
	present  func(snippet string) bool
}

var discardedErr = regexp.MustCompile(`(^|\W)_\s*(,\s*\w+)?\s*=|=\s*.*\berr\b\s*$`)

var goConcerns = []goConcern{
	{
		keywords: []string{"unchecked error", "ignores the error", "error is ignored", "discarded error", "check the error"},
		present: func(snippet string) bool {
			if strings.Contains(snippet, "if err") {
				return false
			}
			return strings.Contains(snippet, "_ =") || strings.Contains(snippet, "_, ") ||
				discardedErr.MatchString(snippet)
		},
	},
	{
		keywords: []string{"%w", "wrap the error", "error wrapping"},
		present: func(snippet string) bool {
			return strings.Contains(snippet, "fmt.Errorf") && !strings.Contains(snippet, "%w")
		},
	},
	{
		keywords: []string{"panic", "don't panic", "avoid panic"},
		present: func(snippet string) bool {
			return strings.Contains(snippet, "panic(")
		},
	},
	{
		keywords: []string{"interface{}", "use any"},
		present: func(snippet string) bool {
			return strings.Contains(snippet, "interface{}")
		},
	},
}

// Evaluate implements RuleSet.
func (GoStyle) Evaluate(loc Location, commentBody string) domain.ValidationVerdict {
	lower := strings.ToLower(commentBody)

	for _, c := range goConcerns {
		if !matchesAny(lower, c.keywords) {
			continue
		}
		if c.present(loc.Snippet) {
			return domain.ValidationVerdict{
				Valid:         true,
				Justification: "concern still present at " + loc.Path,
			}
		}
		return domain.ValidationVerdict{
			Valid:         false,
			Justification: "already addressed",
		}
	}

	// Not a recognized Go concern; fall back to the generic token check.
	return Generic{}.Evaluate(loc, commentBody)
}

func matchesAny(body string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(body, k) {
			return true
		}
	}
	return false
}
