// Package workflow drives review comments through the resolution state
// machine: classify, plan, apply, verify, and report.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/reviewloop/rcr/internal/domain"
	"github.com/reviewloop/rcr/internal/store"
	"github.com/reviewloop/rcr/internal/terminal"
	"github.com/reviewloop/rcr/internal/verify"
)

// maxAttempts bounds the plan/apply/verify cycles per comment before it is
// escalated to a human.
const maxAttempts = 3

// Classifier decides whether comments still describe real concerns.
type Classifier interface {
	ClassifyAll(ctx context.Context, comments []domain.ReviewComment) ([]domain.ValidationVerdict, error)
}

// Planner turns an accepted comment into a concrete change intent. On
// retries it receives the previous attempt's verification findings.
type Planner interface {
	Plan(comment domain.ReviewComment, findings []string) (domain.ChangeIntent, error)
}

// Applier applies a change intent to the working tree atomically.
type Applier interface {
	Apply(intent domain.ChangeIntent) error
}

// Verifier runs the quality collaborators against the changed files.
type Verifier interface {
	Verify(ctx context.Context, changedFiles []string) (verify.Result, error)
}

// Resolver posts a comment's terminal state back to its thread.
type Resolver interface {
	PostResolution(ctx context.Context, pr, commentID string, state domain.CommentState) error
}

// Orchestrator is the single-threaded engine. Comments are processed
// strictly in creation order; only classification fans out.
type Orchestrator struct {
	store      *store.CommentStore
	classifier Classifier
	planner    Planner
	applier    Applier
	verifier   Verifier
	resolver   Resolver
	logger     *terminal.Logger
	pr         string
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithResolver enables posting resolutions back to the PR.
func WithResolver(r Resolver) Option {
	return func(o *Orchestrator) { o.resolver = r }
}

// WithLogger enables progress logging.
func WithLogger(l *terminal.Logger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

// New creates an orchestrator for one PR.
func New(pr string, st *store.CommentStore, c Classifier, p Planner, a Applier, v Verifier, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		store:      st,
		classifier: c,
		planner:    p,
		applier:    a,
		verifier:   v,
		pr:         pr,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run processes every comment to a terminal state or until the run aborts.
// The returned WorkflowRun always accounts for all loaded comments, even on
// abort; the error is non-nil only when the run did not complete.
func (o *Orchestrator) Run(ctx context.Context, comments []domain.ReviewComment) (domain.WorkflowRun, error) {
	run := domain.WorkflowRun{
		ID:        uuid.NewString(),
		PR:        o.pr,
		StartedAt: time.Now(),
		Status:    domain.RunCompleted,
	}

	if err := o.store.Load(comments); err != nil {
		run.Status = domain.RunAborted
		run.AbortReason = err.Error()
		run.FinishedAt = time.Now()
		return run, err
	}

	attempts := make(map[string]int, len(comments))
	ordered := o.store.Snapshot()

	o.logf(terminal.StylePhase, "Classifying %d comments", len(ordered))
	verdicts, err := o.classifier.ClassifyAll(ctx, ordered)
	if err != nil {
		return o.abort(run, attempts, err)
	}

	for i, comment := range ordered {
		// Cancellation is honored between comments, never mid-comment.
		if err := ctx.Err(); err != nil {
			return o.abort(run, attempts, err)
		}

		if err := o.resolveComment(ctx, comment, verdicts[i], attempts); err != nil {
			return o.abort(run, attempts, err)
		}
	}

	run.FinishedAt = time.Now()
	run.Outcomes = o.outcomes(attempts)
	return run, nil
}

// resolveComment drives one comment to a terminal state. The returned error
// is non-nil only for infrastructure failures, which abort the run.
func (o *Orchestrator) resolveComment(ctx context.Context, comment domain.ReviewComment, verdict domain.ValidationVerdict, attempts map[string]int) error {
	if !verdict.Valid {
		o.logf(terminal.StyleDim, "  %s %s: rejected (%s)", comment.ID, comment.Location(), verdict.Justification)
		return o.finish(ctx, comment.ID, domain.Rejected(verdict.Justification))
	}

	if err := o.store.Transition(comment.ID, domain.Accepted); err != nil {
		return err
	}
	o.logf(terminal.StyleInfo, "  %s %s: accepted (%s)", comment.ID, comment.Location(), verdict.Justification)

	var findings []string
	for attempts[comment.ID] < maxAttempts {
		attempts[comment.ID]++

		intent, err := o.planner.Plan(comment, findings)
		if err != nil {
			if errors.Is(err, domain.ErrUnplannable) {
				return o.finish(ctx, comment.ID, domain.NeedsHuman(err.Error()))
			}
			return err
		}

		if err := o.applier.Apply(intent); err != nil {
			if errors.Is(err, domain.ErrStalePrecondition) {
				return o.finish(ctx, comment.ID, domain.NeedsHuman(err.Error()))
			}
			return err
		}

		result, err := o.verifier.Verify(ctx, intent.Files())
		if err != nil {
			return err
		}
		if result.Pass {
			o.logf(terminal.StyleSuccess, "  %s: applied after %d attempt(s)", comment.ID, attempts[comment.ID])
			return o.finish(ctx, comment.ID, domain.Applied)
		}

		qf := &domain.QualityFailure{Findings: result.Findings}
		if err := o.store.Transition(comment.ID, domain.Failed(qf.Error())); err != nil {
			return err
		}
		o.logf(terminal.StyleWarning, "  %s: attempt %d failed verification", comment.ID, attempts[comment.ID])

		if attempts[comment.ID] >= maxAttempts {
			reason := fmt.Sprintf("verification still failing after %d attempts: %s", maxAttempts, qf.Error())
			return o.finish(ctx, comment.ID, domain.NeedsHuman(reason))
		}

		// Re-accept for the next attempt, feeding the findings back into
		// planning.
		if err := o.store.Transition(comment.ID, domain.Accepted); err != nil {
			return err
		}
		findings = result.Findings
	}
	return nil
}

// finish records a terminal state and, when a resolver is configured,
// replies to the comment thread. Posting failures are logged, not fatal:
// the local resolution already happened.
func (o *Orchestrator) finish(ctx context.Context, commentID string, state domain.CommentState) error {
	if err := o.store.Transition(commentID, state); err != nil {
		return err
	}
	if o.resolver != nil {
		if err := o.resolver.PostResolution(ctx, o.pr, commentID, state); err != nil {
			o.logf(terminal.StyleWarning, "  %s: failed to post resolution: %v", commentID, err)
		}
	}
	return nil
}

// abort closes out the run after an infrastructure failure or cancellation.
// Already-reached states are preserved in the outcomes.
func (o *Orchestrator) abort(run domain.WorkflowRun, attempts map[string]int, cause error) (domain.WorkflowRun, error) {
	run.Status = domain.RunAborted
	run.AbortReason = cause.Error()
	run.FinishedAt = time.Now()
	run.Outcomes = o.outcomes(attempts)
	return run, cause
}

// outcomes captures the current state of every loaded comment.
func (o *Orchestrator) outcomes(attempts map[string]int) []domain.CommentOutcome {
	snapshot := o.store.Snapshot()
	out := make([]domain.CommentOutcome, 0, len(snapshot))
	for _, comment := range snapshot {
		state, err := o.store.State(comment.ID)
		if err != nil {
			continue
		}
		out = append(out, domain.CommentOutcome{
			CommentID:     comment.ID,
			Path:          comment.Path,
			FinalState:    state.Kind,
			Attempts:      attempts[comment.ID],
			Justification: state.Reason,
		})
	}
	return out
}

func (o *Orchestrator) logf(style terminal.Style, format string, args ...any) {
	if o.logger != nil {
		o.logger.Logf(style, format, args...)
	}
}
