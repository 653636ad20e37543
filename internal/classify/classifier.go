// Package classify decides whether a review comment's concern is still real
// given the current working tree.
package classify

import (
	"context"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/reviewloop/rcr/internal/domain"
	"github.com/reviewloop/rcr/internal/git"
	"github.com/reviewloop/rcr/internal/ruleset"
)

// defaultConcurrency bounds parallel classification. Classification is
// read-only against a frozen snapshot, so independent comments may be
// evaluated concurrently.
const defaultConcurrency = 8

// CodeView is the read-only file access the classifier needs.
type CodeView interface {
	Exists(path string) bool
	Lines(path string) ([]string, error)
}

// Classifier validates comments against the current code via a pluggable
// rule-set registry.
type Classifier struct {
	code        CodeView
	changes     *git.ChangeSet
	rules       *ruleset.Registry
	skipAuthors []string
	concurrency int
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithSkipAuthors rejects comments from the given authors (typically bots)
// before rule evaluation.
func WithSkipAuthors(authors []string) Option {
	return func(c *Classifier) {
		c.skipAuthors = authors
	}
}

// WithConcurrency overrides the parallel classification limit.
func WithConcurrency(n int) Option {
	return func(c *Classifier) {
		if n > 0 {
			c.concurrency = n
		}
	}
}

// New creates a classifier over the given code view and changed-file set.
func New(code CodeView, changes *git.ChangeSet, rules *ruleset.Registry, opts ...Option) *Classifier {
	c := &Classifier{
		code:        code,
		changes:     changes,
		rules:       rules,
		concurrency: defaultConcurrency,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Classify produces a verdict for one comment against the current state of
// the code, not the state when the comment was authored.
func (c *Classifier) Classify(_ context.Context, comment domain.ReviewComment) domain.ValidationVerdict {
	for _, author := range c.skipAuthors {
		if strings.EqualFold(author, comment.Author) {
			return domain.ValidationVerdict{Justification: "author on skip list"}
		}
	}

	if c.changes.Deleted(comment.Path) || !c.code.Exists(comment.Path) {
		return domain.ValidationVerdict{Justification: "location removed"}
	}

	lines, err := c.code.Lines(comment.Path)
	if err != nil {
		return domain.ValidationVerdict{Justification: "location removed"}
	}
	if comment.StartLine < 1 || comment.StartLine > len(lines) {
		return domain.ValidationVerdict{Justification: "location removed"}
	}

	end := min(comment.EndLine, len(lines))
	snippet := strings.Join(lines[comment.StartLine-1:end], "\n")

	loc := ruleset.Location{
		Path:      comment.Path,
		StartLine: comment.StartLine,
		EndLine:   end,
		Snippet:   snippet,
	}
	return c.rules.For(comment.Path).Evaluate(loc, comment.Body)
}

// ClassifyAll evaluates independent comments concurrently against the frozen
// snapshot and returns verdicts in input order. The caller merges results
// back into the store sequentially.
func (c *Classifier) ClassifyAll(ctx context.Context, comments []domain.ReviewComment) ([]domain.ValidationVerdict, error) {
	verdicts := make([]domain.ValidationVerdict, len(comments))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)

	for i, comment := range comments {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			verdicts[i] = c.Classify(ctx, comment)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return slices.Clip(verdicts), nil
}
