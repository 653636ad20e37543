package prsource

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"sort"
	"strconv"
	"strings"

	"github.com/reviewloop/rcr/internal/domain"
)

// CLI fetches PR comments and posts resolutions via the gh CLI, using the
// repository inferred from the working directory.
type CLI struct {
	workDir string
}

// NewCLI creates a gh-backed source. workDir may be empty for the current
// directory.
func NewCLI(workDir string) *CLI {
	return &CLI{workDir: workDir}
}

// CheckGHAvailable returns an error if the gh CLI is not on PATH.
func CheckGHAvailable() error {
	if _, err := exec.LookPath("gh"); err != nil {
		return fmt.Errorf("gh CLI not available: %w", err)
	}
	return nil
}

// ValidatePR checks that the PR exists and gh is authenticated.
func (c *CLI) ValidatePR(ctx context.Context, pr string) error {
	cmd := exec.CommandContext(ctx, "gh", "pr", "view", pr, "--json", "number")
	cmd.Dir = c.workDir
	if _, err := cmd.Output(); err != nil {
		return classifyGHError(err)
	}
	return nil
}

// reviewCommentResponse is one review comment from the gh api endpoint.
type reviewCommentResponse struct {
	ID   int64  `json:"id"`
	Path string `json:"path"`
	Line *int   `json:"line"`
	// StartLine is set for multi-line comments; single-line comments
	// carry only Line.
	StartLine *int   `json:"start_line"`
	Body      string `json:"body"`
	CreatedAt string `json:"created_at"`
	InReplyTo int64  `json:"in_reply_to_id"`
	User      struct {
		Login string `json:"login"`
	} `json:"user"`
}

// FetchComments implements Source via gh api with pagination. Replies are
// folded away: only thread roots are workflow input.
func (c *CLI) FetchComments(ctx context.Context, pr string) ([]domain.ReviewComment, error) {
	endpoint := "repos/{owner}/{repo}/pulls/" + pr + "/comments"
	cmd := exec.CommandContext(ctx, "gh", "api", "--paginate", endpoint)
	cmd.Dir = c.workDir
	out, err := cmd.Output()
	if err != nil {
		return nil, classifyGHError(err)
	}

	return ParseReviewComments(out)
}

// ParseReviewComments maps the gh api JSON payload to domain comments,
// ordered by creation time with Index assigned from that order.
func ParseReviewComments(data []byte) ([]domain.ReviewComment, error) {
	var raw []reviewCommentResponse
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse review comments: %w", err)
	}

	sort.SliceStable(raw, func(i, j int) bool {
		return raw[i].CreatedAt < raw[j].CreatedAt
	})

	var comments []domain.ReviewComment
	for _, r := range raw {
		if r.InReplyTo != 0 || r.Body == "" || r.Path == "" || r.Line == nil {
			continue
		}
		start := *r.Line
		if r.StartLine != nil {
			start = *r.StartLine
		}
		comments = append(comments, domain.ReviewComment{
			ID:        strconv.FormatInt(r.ID, 10),
			Path:      r.Path,
			StartLine: start,
			EndLine:   *r.Line,
			Body:      r.Body,
			Author:    r.User.Login,
			Index:     len(comments),
		})
	}
	return comments, nil
}

// PostResolution implements Source: it replies to the comment thread with
// the final state and justification.
func (c *CLI) PostResolution(ctx context.Context, pr, commentID string, state domain.CommentState) error {
	endpoint := fmt.Sprintf("repos/{owner}/{repo}/pulls/%s/comments/%s/replies", pr, commentID)
	cmd := exec.CommandContext(ctx, "gh", "api", "-X", "POST", endpoint, "-f", "body="+ResolutionBody(state))
	cmd.Dir = c.workDir

	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		errMsg := strings.TrimSpace(stderr.String())
		if errMsg != "" {
			return fmt.Errorf("failed to post resolution for comment %s (%s): %w", commentID, errMsg, err)
		}
		return fmt.Errorf("failed to post resolution for comment %s: %w", commentID, err)
	}
	return nil
}

// classifyGHError examines a gh CLI error and returns a typed error.
func classifyGHError(err error) error {
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return fmt.Errorf("gh command failed: %w", err)
	}

	stderr := strings.ToLower(string(exitErr.Stderr))

	if strings.Contains(stderr, "no pull request") || strings.Contains(stderr, "could not resolve") {
		return ErrNoPRFound
	}

	if strings.Contains(stderr, "401") ||
		strings.Contains(stderr, "auth") ||
		strings.Contains(stderr, "credentials") ||
		strings.Contains(stderr, "login") {
		return ErrAuthFailed
	}

	errMsg := strings.TrimSpace(string(exitErr.Stderr))
	if errMsg != "" {
		return fmt.Errorf("gh command failed: %s", errMsg)
	}
	return fmt.Errorf("gh command failed: %w", err)
}
