package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/reviewloop/rcr/internal/config"
	"github.com/reviewloop/rcr/internal/git"
	"github.com/reviewloop/rcr/internal/terminal"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage rcr configuration",
		Long:  "View, initialize, and validate rcr configuration files and environment variables.",
	}

	cmd.AddCommand(newConfigShowCmd())
	cmd.AddCommand(newConfigInitCmd())
	cmd.AddCommand(newConfigValidateCmd())

	return cmd
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Display resolved configuration",
		Long:  "Show the fully resolved configuration from defaults, config file, and environment variables.",
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := config.LoadWithWarnings()
			if err != nil {
				return fmt.Errorf("config error: %w", err)
			}

			envState := config.LoadEnvState()
			resolved := config.Resolve(result.Config, envState, config.FlagState{}, config.Defaults)

			fmt.Println("Resolved configuration:")
			fmt.Println()
			fmt.Printf("  %-16s %s\n", "base:", resolved.Base)
			fmt.Printf("  %-16s %s\n", "timeout:", resolved.Timeout)
			fmt.Printf("  %-16s %s\n", "source:", resolved.Source)
			if resolved.Repo != "" {
				fmt.Printf("  %-16s %s\n", "repo:", resolved.Repo)
			}
			fmt.Printf("  %-16s %d\n", "concurrency:", resolved.Concurrency)
			fmt.Printf("  %-16s %d\n", "max_comments:", resolved.MaxComments)
			if resolved.HistoryPath != "" {
				fmt.Printf("  %-16s %s\n", "history_path:", resolved.HistoryPath)
			} else {
				fmt.Printf("  %-16s %s\n", "history_path:", "~/.rcr/history.db")
			}
			fmt.Printf("  %-16s %s\n", "lint_command:", strings.Join(resolved.LintCommand, " "))
			fmt.Printf("  %-16s %s\n", "test_command:", strings.Join(resolved.TestCommand, " "))
			if len(resolved.SkipAuthors) > 0 {
				fmt.Printf("  %-16s %s\n", "skip_authors:", strings.Join(resolved.SkipAuthors, ", "))
			}

			return nil
		},
	}
}

func newConfigInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Generate a starter .rcr.yaml file",
		Long:  "Create a commented .rcr.yaml configuration file in the git repository root.",
		RunE: func(cmd *cobra.Command, args []string) error {
			// Write to git repo root (same location runtime loading uses)
			repoRoot, err := git.GetRoot()
			if err != nil {
				return fmt.Errorf("not in a git repository: %w", err)
			}
			configPath := filepath.Join(repoRoot, config.ConfigFileName)

			if _, err := os.Stat(configPath); err == nil {
				return fmt.Errorf("%s already exists; remove it first or edit it directly", configPath)
			}

			starter := `# rcr configuration file

# Base branch the PR diff is computed against (default: main)
# base: main

# Timeout per verification command, Go duration format (default: 5m)
# timeout: 5m

# Comment source: cli (gh) or api (GitHub REST with GITHUB_TOKEN)
# source: cli

# owner/name, required for source: api
# repo: ""

# Maximum parallel classifications (default: 8)
# concurrency: 0

# Cap on comments processed per run, 0 for no cap
# max_comments: 0

# SQLite database for run history (default: ~/.rcr/history.db)
# history_path: ""

# Verification collaborators. Changed file paths are appended to lint_command.
# verify:
#   lint_command: ["gofmt", "-l"]
#   test_command: ["go", "test", "./..."]

# Reject comments from these authors without evaluation
# skip_authors:
#   - dependabot
`
			if err := os.WriteFile(configPath, []byte(starter), 0644); err != nil {
				return fmt.Errorf("failed to write %s: %w", configPath, err)
			}

			fmt.Printf("Created %s with default settings (commented out).\n", configPath)
			return nil
		},
	}
}

func newConfigValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration and environment variables",
		Long:  "Load and validate the config file and environment variables, reporting any warnings or errors.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !terminal.IsStdoutTTY() {
				terminal.DisableColors()
			}
			logger := terminal.NewLogger()
			var errs []string
			var warnings []string

			result, err := config.LoadWithWarnings()
			if err != nil {
				errs = append(errs, fmt.Sprintf("config file: %v", err))
			}
			if result != nil {
				warnings = append(warnings, result.Warnings...)
			}

			// Env vars with unparseable values are silently ignored at
			// runtime; surface them here so the operator can fix them.
			for _, name := range []string{"RCR_TIMEOUT", "RCR_CONCURRENCY", "RCR_MAX_COMMENTS"} {
				if v := os.Getenv(name); v != "" && !envValueParses(name, v) {
					errs = append(errs, fmt.Sprintf("%s=%q cannot be parsed", name, v))
				}
			}

			for _, w := range warnings {
				logger.Logf(terminal.StyleWarning, "Config: %s", w)
			}
			for _, e := range errs {
				logger.Logf(terminal.StyleError, "%s", e)
			}

			if len(errs) > 0 {
				return fmt.Errorf("configuration has %d error(s)", len(errs))
			}

			if len(warnings) > 0 {
				logger.Log("Configuration is valid (with warnings).", terminal.StyleSuccess)
			} else {
				logger.Log("Configuration is valid.", terminal.StyleSuccess)
			}

			return nil
		},
	}
}

// envValueParses replays the LoadEnvState parse rules for one variable.
func envValueParses(name, value string) bool {
	if name == "RCR_TIMEOUT" {
		if _, err := time.ParseDuration(value); err == nil {
			return true
		}
	}
	_, err := strconv.Atoi(value)
	return err == nil
}
