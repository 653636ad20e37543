package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/reviewloop/rcr/internal/history"
	"github.com/reviewloop/rcr/internal/terminal"
	"github.com/reviewloop/rcr/internal/workflow"
)

func newHistoryCmd() *cobra.Command {
	var (
		prFilter string
		limit    int
		dbPath   string
	)

	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "List or inspect past resolution runs",
		Long:  "Without arguments, list recorded runs newest first. With a run ID, show that run's full per-comment report.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := resolveHistoryPath(dbPath)
			if err != nil {
				return err
			}
			if _, err := os.Stat(path); os.IsNotExist(err) {
				fmt.Println("No runs recorded yet.")
				return nil
			}

			db, err := history.Open(path)
			if err != nil {
				return err
			}
			defer db.Close()
			repo := history.NewRunRepo(db)

			if len(args) == 1 {
				run, err := repo.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				fmt.Println(workflow.RenderReport(run))
				return nil
			}

			runs, err := repo.List(cmd.Context(), prFilter, limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Println("No runs recorded yet.")
				return nil
			}

			for _, run := range runs {
				fmt.Printf("%s  %s  PR #%-6s %-9s %s\n",
					run.StartedAt.Local().Format("2006-01-02 15:04"),
					run.ID, run.PR, run.Status,
					terminal.FormatDuration(run.FinishedAt.Sub(run.StartedAt)))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&prFilter, "pr", "", "Only show runs for this PR number")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum runs to list")
	cmd.Flags().StringVar(&dbPath, "history-path", "", "SQLite database for run history (env: RCR_HISTORY_PATH)")

	return cmd
}

// resolveHistoryPath applies flag > env > default for the history database.
func resolveHistoryPath(flagPath string) (string, error) {
	if flagPath != "" {
		return flagPath, nil
	}
	if env := os.Getenv("RCR_HISTORY_PATH"); env != "" {
		return env, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot locate history database: %w", err)
	}
	return filepath.Join(home, ".rcr", "history.db"), nil
}
