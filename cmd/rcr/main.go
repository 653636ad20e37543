// Package main provides the CLI entry point for the review comment resolver.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/reviewloop/rcr/internal/config"
	"github.com/reviewloop/rcr/internal/domain"
	"github.com/reviewloop/rcr/internal/prsource"
	"github.com/reviewloop/rcr/internal/terminal"
)

var (
	prNumber    string
	baseRef     string
	timeout     time.Duration
	source      string
	repo        string
	concurrency int
	maxComments int
	historyPath string
	skipAuthors []string
	inPlace     bool
	noPost      bool
	noConfig    bool
	noHistory   bool
	summaryFile string
)

func main() {
	os.Exit(run())
}

func run() int {
	rootCmd := &cobra.Command{
		Use:   "rcr",
		Short: "Resolve PR review comments against the working tree",
		Long: `Fetch a pull request's review comments, classify which are still valid,
apply their suggested changes, and verify the result with the project's
lint and test commands.

Exit codes:
  0 - All comments applied or rejected
  1 - At least one comment needs human attention
  2 - Error
  130 - Interrupted`,
		RunE:          runResolve,
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       buildVersionString(),
	}

	rootCmd.SetVersionTemplate("{{.Version}}\n")

	// Configuration flags (defaults are resolved via config.Resolve with precedence: flag > env > config > default)
	rootCmd.Flags().StringVar(&prNumber, "pr", "",
		"Pull request number to resolve (required)")
	rootCmd.Flags().StringVarP(&baseRef, "base", "b", "",
		"Base ref the PR diff is computed against (default: main, env: RCR_BASE_REF)")
	rootCmd.Flags().DurationVarP(&timeout, "timeout", "t", 0,
		"Timeout per verification command (default: 5m, env: RCR_TIMEOUT)")
	rootCmd.Flags().StringVar(&source, "source", "",
		"Comment source: cli (gh) or api (GitHub REST) (default: cli, env: RCR_SOURCE)")
	rootCmd.Flags().StringVar(&repo, "repo", "",
		"owner/name, required with --source=api (env: RCR_REPO)")
	rootCmd.Flags().IntVarP(&concurrency, "concurrency", "c", 0,
		"Max parallel classifications (default: 8, env: RCR_CONCURRENCY)")
	rootCmd.Flags().IntVar(&maxComments, "max-comments", 0,
		"Cap on comments processed per run, 0 for no cap (env: RCR_MAX_COMMENTS)")
	rootCmd.Flags().StringVar(&historyPath, "history-path", "",
		"SQLite database for run history (default: ~/.rcr/history.db, env: RCR_HISTORY_PATH)")
	rootCmd.Flags().StringArrayVar(&skipAuthors, "skip-author", nil,
		"Reject comments from this author without evaluation (repeatable)")
	rootCmd.Flags().BoolVar(&inPlace, "in-place", false,
		"Resolve in the current working tree instead of a PR worktree")
	rootCmd.Flags().BoolVar(&noPost, "no-post", false,
		"Skip posting resolutions back to the comment threads")
	rootCmd.Flags().BoolVar(&noConfig, "no-config", false,
		"Skip loading .rcr.yaml config file")
	rootCmd.Flags().BoolVar(&noHistory, "no-history", false,
		"Skip recording the run in the history database")
	rootCmd.Flags().StringVar(&summaryFile, "summary-file", "",
		"Write a markdown run summary to this file")

	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newConfigCmd())

	if err := rootCmd.Execute(); err != nil {
		// Check if this is an exit code wrapper (not a real error)
		if exitErr, ok := err.(exitCodeError); ok {
			return exitErr.code.Int()
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return domain.ExitError.Int()
	}

	return 0
}

func runResolve(cmd *cobra.Command, _ []string) error {
	// Disable colors if stdout is not a TTY
	if !terminal.IsStdoutTTY() {
		terminal.DisableColors()
	}

	logger := terminal.NewLogger()

	if prNumber == "" {
		logger.Log("--pr is required", terminal.StyleError)
		return exitCode(domain.ExitError)
	}

	// Set up context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr)
		logger.Log("Interrupted, finishing current comment...", terminal.StyleWarning)
		cancel()
	}()

	// Load config file (unless --no-config)
	var cfg *config.Config
	if !noConfig {
		result, err := config.LoadWithWarnings()
		if err != nil {
			logger.Logf(terminal.StyleError, "Config error: %v", err)
			return exitCode(domain.ExitError)
		}
		cfg = result.Config
		for _, warning := range result.Warnings {
			logger.Logf(terminal.StyleWarning, "Warning: %s", warning)
		}
	}

	flagState := config.FlagState{
		BaseSet:        cmd.Flags().Changed("base"),
		TimeoutSet:     cmd.Flags().Changed("timeout"),
		SourceSet:      cmd.Flags().Changed("source"),
		RepoSet:        cmd.Flags().Changed("repo"),
		ConcurrencySet: cmd.Flags().Changed("concurrency"),
		MaxCommentsSet: cmd.Flags().Changed("max-comments"),
		HistoryPathSet: cmd.Flags().Changed("history-path"),
	}

	envState := config.LoadEnvState()

	flagValues := config.ResolvedConfig{
		Base:        baseRef,
		Timeout:     timeout,
		Source:      source,
		Repo:        repo,
		Concurrency: concurrency,
		MaxComments: maxComments,
		HistoryPath: historyPath,
	}

	// Resolve final configuration (precedence: flags > env vars > config file > defaults)
	resolved := config.Resolve(cfg, envState, flagState, flagValues)
	resolved.SkipAuthors = config.MergeSkipAuthors(cfg, skipAuthors)

	src, err := buildSource(resolved)
	if err != nil {
		logger.Logf(terminal.StyleError, "%v", err)
		return exitCode(domain.ExitError)
	}

	code := executeResolve(ctx, resolved, src, logger)
	return exitCode(code)
}

// buildSource selects the PR comment source per the resolved config.
func buildSource(resolved config.ResolvedConfig) (prsource.Source, error) {
	switch resolved.Source {
	case "api":
		if resolved.Repo == "" {
			return nil, errors.New("--repo (or RCR_REPO) is required with --source=api")
		}
		token := os.Getenv("GITHUB_TOKEN")
		if token == "" {
			return nil, errors.New("GITHUB_TOKEN is required with --source=api")
		}
		return prsource.NewAPI(token, resolved.Repo)
	default:
		if err := prsource.CheckGHAvailable(); err != nil {
			return nil, err
		}
		return prsource.NewCLI(""), nil
	}
}
