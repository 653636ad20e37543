package prsource

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gofri/go-github-ratelimit/v2/github_ratelimit"
	gh "github.com/google/go-github/v82/github"
	"github.com/gregjones/httpcache"

	"github.com/reviewloop/rcr/internal/domain"
)

// Compile-time interface satisfaction check.
var _ Source = (*API)(nil)

// API is the GitHub REST implementation of Source, for environments without
// the gh CLI (CI jobs with a plain token).
type API struct {
	gh    *gh.Client
	owner string
	repo  string
}

// NewAPI creates a REST-backed source for the given "owner/repo" with the
// following transport stack:
//  1. httpcache (ETag-based conditional request caching)
//  2. go-github-ratelimit (secondary rate limit middleware, sleeps on 429)
//  3. go-github (GitHub REST API client with PAT auth)
func NewAPI(token, repoFullName string) (*API, error) {
	owner, repo, err := splitRepo(repoFullName)
	if err != nil {
		return nil, err
	}

	cacheTransport := httpcache.NewMemoryCacheTransport()
	rateLimitClient := github_ratelimit.NewClient(cacheTransport)
	client := gh.NewClient(rateLimitClient).WithAuthToken(token)

	return &API{gh: client, owner: owner, repo: repo}, nil
}

// NewAPIWithHTTPClient creates an API source with a custom http.Client and
// base URL. This constructor is intended for testing, allowing injection of
// an httptest server.
func NewAPIWithHTTPClient(httpClient *http.Client, baseURL, repoFullName string) (*API, error) {
	owner, repo, err := splitRepo(repoFullName)
	if err != nil {
		return nil, err
	}

	client := gh.NewClient(httpClient)
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	client.BaseURL = u

	return &API{gh: client, owner: owner, repo: repo}, nil
}

// splitRepo splits "owner/repo" into its parts.
func splitRepo(full string) (string, string, error) {
	parts := strings.SplitN(full, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("repo must be owner/name, got %q", full)
	}
	return parts[0], parts[1], nil
}

// FetchComments implements Source. It pages through the PR's review
// comments in creation order and keeps only thread roots.
func (a *API) FetchComments(ctx context.Context, pr string) ([]domain.ReviewComment, error) {
	number, err := strconv.Atoi(pr)
	if err != nil {
		return nil, fmt.Errorf("invalid PR number %q: %w", pr, err)
	}

	opts := &gh.PullRequestListCommentsOptions{
		Sort:        "created",
		Direction:   "asc",
		ListOptions: gh.ListOptions{PerPage: 100},
	}

	var comments []domain.ReviewComment
	for {
		page, resp, err := a.gh.PullRequests.ListComments(ctx, a.owner, a.repo, number, opts)
		if err != nil {
			return nil, classifyAPIError(pr, err)
		}

		for _, c := range page {
			if c.GetInReplyTo() != 0 || c.GetBody() == "" || c.GetPath() == "" || c.Line == nil {
				continue
			}
			start := c.GetLine()
			if c.StartLine != nil {
				start = c.GetStartLine()
			}
			comments = append(comments, domain.ReviewComment{
				ID:        strconv.FormatInt(c.GetID(), 10),
				Path:      c.GetPath(),
				StartLine: start,
				EndLine:   c.GetLine(),
				Body:      c.GetBody(),
				Author:    c.GetUser().GetLogin(),
				Index:     len(comments),
			})
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return comments, nil
}

// PostResolution implements Source via a threaded reply to the comment.
func (a *API) PostResolution(ctx context.Context, pr, commentID string, state domain.CommentState) error {
	number, err := strconv.Atoi(pr)
	if err != nil {
		return fmt.Errorf("invalid PR number %q: %w", pr, err)
	}
	id, err := strconv.ParseInt(commentID, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid comment id %q: %w", commentID, err)
	}

	_, _, err = a.gh.PullRequests.CreateCommentInReplyTo(ctx, a.owner, a.repo, number, ResolutionBody(state), id)
	if err != nil {
		return fmt.Errorf("failed to post resolution for comment %s: %w", commentID, err)
	}
	return nil
}

// classifyAPIError maps go-github errors onto the package's sentinels.
func classifyAPIError(pr string, err error) error {
	var ghErr *gh.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil {
		switch ghErr.Response.StatusCode {
		case http.StatusNotFound:
			return fmt.Errorf("%w: #%s", ErrNoPRFound, pr)
		case http.StatusUnauthorized, http.StatusForbidden:
			return ErrAuthFailed
		}
	}
	return fmt.Errorf("listing review comments for #%s: %w", pr, err)
}
