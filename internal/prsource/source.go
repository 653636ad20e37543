// Package prsource provides access to the PR hosting service: fetching
// review comments and posting resolutions. Two implementations exist, one
// over the gh CLI and one over the GitHub REST API.
package prsource

import (
	"context"
	"errors"

	"github.com/reviewloop/rcr/internal/domain"
)

// ErrNoPRFound indicates no pull request exists for the given number.
var ErrNoPRFound = errors.New("no pull request found")

// ErrAuthFailed indicates authentication with the PR host failed.
var ErrAuthFailed = errors.New("GitHub authentication failed")

// Source is the external PR collaborator the workflow consumes. The core
// never implements PR hosting; it only fetches comments and reports back.
type Source interface {
	// FetchComments returns the PR's unresolved review comments in
	// creation order, with Index assigned from that order.
	FetchComments(ctx context.Context, pr string) ([]domain.ReviewComment, error)
	// PostResolution replies to a comment thread with the comment's final
	// state and justification.
	PostResolution(ctx context.Context, pr, commentID string, state domain.CommentState) error
}

// ResolutionBody renders the reply posted back to a comment thread.
func ResolutionBody(state domain.CommentState) string {
	switch state.Kind {
	case domain.StateApplied:
		return "Resolved: suggested change applied and verified."
	case domain.StateRejected:
		return "Not applied: " + state.Reason + "."
	case domain.StateNeedsHuman:
		return "Needs human attention: " + state.Reason + "."
	default:
		return "State: " + state.Kind.String() + "."
	}
}
