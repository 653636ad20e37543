package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/reviewloop/rcr/internal/apply"
	"github.com/reviewloop/rcr/internal/classify"
	"github.com/reviewloop/rcr/internal/config"
	"github.com/reviewloop/rcr/internal/domain"
	"github.com/reviewloop/rcr/internal/git"
	"github.com/reviewloop/rcr/internal/history"
	"github.com/reviewloop/rcr/internal/plan"
	"github.com/reviewloop/rcr/internal/prsource"
	"github.com/reviewloop/rcr/internal/ruleset"
	"github.com/reviewloop/rcr/internal/store"
	"github.com/reviewloop/rcr/internal/terminal"
	"github.com/reviewloop/rcr/internal/verify"
	"github.com/reviewloop/rcr/internal/workflow"
)

// executeResolve wires the pipeline and drives one run over the PR.
func executeResolve(ctx context.Context, resolved config.ResolvedConfig, src prsource.Source, logger *terminal.Logger) domain.ExitCode {
	if cliSrc, ok := src.(*prsource.CLI); ok {
		if err := cliSrc.ValidatePR(ctx, prNumber); err != nil {
			switch {
			case errors.Is(err, prsource.ErrNoPRFound):
				logger.Logf(terminal.StyleError, "PR #%s not found", prNumber)
			case errors.Is(err, prsource.ErrAuthFailed):
				logger.Log("GitHub authentication failed. Run 'gh auth login' to authenticate.", terminal.StyleError)
			default:
				logger.Logf(terminal.StyleError, "Failed to access PR #%s: %v", prNumber, err)
			}
			return domain.ExitError
		}
	}

	workDir, cleanup, err := prepareWorkDir(logger)
	if err != nil {
		logger.Logf(terminal.StyleError, "%v", err)
		return domain.ExitError
	}
	defer cleanup()

	comments, err := fetchWithSpinner(ctx, src)
	if err != nil {
		logger.Logf(terminal.StyleError, "Failed to fetch comments: %v", err)
		return domain.ExitError
	}
	if resolved.MaxComments > 0 && len(comments) > resolved.MaxComments {
		logger.Logf(terminal.StyleWarning, "Capping run to the first %d of %d comments",
			resolved.MaxComments, len(comments))
		comments = comments[:resolved.MaxComments]
	}
	if len(comments) == 0 {
		logger.Log("No unresolved review comments", terminal.StyleSuccess)
		return domain.ExitResolved
	}

	changes, err := git.ChangedFiles(ctx, resolved.Base, workDir)
	if err != nil {
		logger.Logf(terminal.StyleError, "Failed to diff against %s: %v", resolved.Base, err)
		return domain.ExitError
	}

	tree := git.NewTree(workDir)
	classifier := classify.New(tree, changes, ruleset.NewRegistry(),
		classify.WithSkipAuthors(resolved.SkipAuthors),
		classify.WithConcurrency(resolved.Concurrency))
	planner := plan.New(tree, changes)
	applier := apply.New(tree)
	verifier := verify.New(resolved.LintCommand, resolved.TestCommand, workDir, resolved.Timeout)

	opts := []workflow.Option{workflow.WithLogger(logger)}
	if !noPost {
		opts = append(opts, workflow.WithResolver(src))
	}
	orch := workflow.New(prNumber, store.New(), classifier, planner, applier, verifier, opts...)

	run, runErr := orch.Run(ctx, comments)

	fmt.Println(workflow.RenderReport(run))

	if summaryFile != "" {
		if err := os.WriteFile(summaryFile, []byte(workflow.RenderMarkdown(run)), 0644); err != nil {
			logger.Logf(terminal.StyleWarning, "Failed to write summary file: %v", err)
		}
	}

	if !noHistory {
		recordRun(run, resolved.HistoryPath, logger)
	}

	if runErr != nil {
		if errors.Is(runErr, context.Canceled) {
			return domain.ExitInterrupted
		}
		logger.Logf(terminal.StyleError, "%v", runErr)
		return domain.ExitError
	}

	if _, _, needsHuman := run.Counts(); needsHuman > 0 {
		return domain.ExitNeedsHuman
	}
	return domain.ExitResolved
}

// fetchWithSpinner fetches the PR's comments with a progress spinner on TTYs.
func fetchWithSpinner(ctx context.Context, src prsource.Source) ([]domain.ReviewComment, error) {
	spinner := terminal.NewPhaseSpinner(fmt.Sprintf("Fetching comments for PR #%s", prNumber))
	spinCtx, spinCancel := context.WithCancel(context.Background())
	spinDone := make(chan struct{})
	go func() {
		spinner.Run(spinCtx)
		close(spinDone)
	}()

	comments, err := src.FetchComments(ctx, prNumber)

	spinCancel()
	<-spinDone
	return comments, err
}

// prepareWorkDir checks out the PR head into a throwaway worktree, or uses
// the current tree with --in-place.
func prepareWorkDir(logger *terminal.Logger) (string, func(), error) {
	repoRoot, err := git.GetRoot()
	if err != nil {
		return "", nil, err
	}

	if inPlace {
		return repoRoot, func() {}, nil
	}

	wt, err := git.CreateWorktreeFromPR(repoRoot, prNumber)
	if err != nil {
		return "", nil, err
	}
	logger.Logf(terminal.StyleSuccess, "Worktree ready %s(%s)%s",
		terminal.Color(terminal.Dim), wt.Path, terminal.Color(terminal.Reset))

	cleanup := func() {
		logger.Log("Cleaning up worktree", terminal.StyleDim)
		_ = wt.Remove()
	}
	return wt.Path, cleanup, nil
}

// recordRun persists the run to the history database. Failures are logged,
// never fatal: history is an audit convenience, not part of the workflow.
func recordRun(run domain.WorkflowRun, path string, logger *terminal.Logger) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			logger.Logf(terminal.StyleWarning, "Cannot locate history database: %v", err)
			return
		}
		path = filepath.Join(home, ".rcr", "history.db")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		logger.Logf(terminal.StyleWarning, "Cannot create history directory: %v", err)
		return
	}

	db, err := history.Open(path)
	if err != nil {
		logger.Logf(terminal.StyleWarning, "Cannot open history database: %v", err)
		return
	}
	defer db.Close()

	if err := history.NewRunRepo(db).Save(context.Background(), run); err != nil {
		logger.Logf(terminal.StyleWarning, "Failed to record run: %v", err)
	}
}
