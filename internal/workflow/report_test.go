package workflow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/reviewloop/rcr/internal/domain"
	"github.com/reviewloop/rcr/internal/terminal"
)

func sampleRun() domain.WorkflowRun {
	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	return domain.WorkflowRun{
		ID:         "run-1",
		PR:         "42",
		StartedAt:  start,
		FinishedAt: start.Add(90 * time.Second),
		Status:     domain.RunCompleted,
		Outcomes: []domain.CommentOutcome{
			{CommentID: "c1", Path: "a.go", FinalState: domain.StateApplied, Attempts: 2},
			{CommentID: "c2", Path: "b.go", FinalState: domain.StateRejected, Attempts: 0, Justification: "already addressed"},
			{CommentID: "c3", Path: "c.go", FinalState: domain.StateNeedsHuman, Attempts: 3, Justification: "verification still failing after 3 attempts: lint: broken"},
		},
	}
}

func TestRenderReport(t *testing.T) {
	terminal.WithColorsDisabled(func() {
		out := RenderReport(sampleRun())

		assert.Contains(t, out, "Run completed")
		assert.Contains(t, out, "PR #42")
		assert.Contains(t, out, "1 applied")
		assert.Contains(t, out, "1 rejected")
		assert.Contains(t, out, "1 need human")
		assert.Contains(t, out, "already addressed")
		assert.Contains(t, out, "2 attempts")
	})
}

func TestRenderReport_Aborted(t *testing.T) {
	terminal.WithColorsDisabled(func() {
		run := sampleRun()
		run.Status = domain.RunAborted
		run.AbortReason = "test collaborator: timed out after 5m0s"

		out := RenderReport(run)
		assert.Contains(t, out, "Run aborted")
		assert.Contains(t, out, "timed out")
	})
}

func TestRenderMarkdown(t *testing.T) {
	out := RenderMarkdown(sampleRun())

	assert.Contains(t, out, "## Review comment resolution — PR #42")
	assert.Contains(t, out, "| 1 | 1 | 1 |")
	assert.Contains(t, out, "| c1 | `a.go` | applied | 2 |")
	assert.Contains(t, out, "needs-human")
}
