package ruleset

import (
	"strings"

	"github.com/reviewloop/rcr/internal/domain"
)

// Generic is the fallback rule set for file types without a dedicated
// implementation. It judges staleness from the comment's own references:
// reviewers quote the code they object to, so a concern whose quoted tokens
// have all disappeared from the target range has been addressed.
type Generic struct{}

// Name implements RuleSet.
func (Generic) Name() string { return "generic" }

// Evaluate implements RuleSet.
func (Generic) Evaluate(loc Location, commentBody string) domain.ValidationVerdict {
	tokens := referencedTokens(commentBody)
	if len(tokens) == 0 {
		// Nothing concrete to check against; trust the reviewer.
		return domain.ValidationVerdict{
			Valid:         true,
			Justification: "concern could not be disproven against current code",
		}
	}

	for _, token := range tokens {
		if strings.Contains(loc.Snippet, token) {
			return domain.ValidationVerdict{
				Valid:         true,
				Justification: "referenced code `" + token + "` still present at " + loc.Path,
			}
		}
	}

	return domain.ValidationVerdict{
		Valid:         false,
		Justification: "already addressed",
	}
}
