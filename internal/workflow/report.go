package workflow

import (
	"fmt"
	"strings"

	"github.com/reviewloop/rcr/internal/domain"
	"github.com/reviewloop/rcr/internal/terminal"
)

// RenderReport renders the run summary for the terminal.
func RenderReport(run domain.WorkflowRun) string {
	width := terminal.ReportWidth()
	applied, rejected, needsHuman := run.Counts()

	var lines []string
	lines = append(lines, "")

	if run.Status == domain.RunAborted {
		lines = append(lines, fmt.Sprintf("%s✗ Run aborted%s — %s",
			terminal.Color(terminal.Red), terminal.Color(terminal.Reset), run.AbortReason))
	} else {
		lines = append(lines, fmt.Sprintf("%s✓ Run completed%s",
			terminal.Color(terminal.Green), terminal.Color(terminal.Reset)))
	}
	lines = append(lines, terminal.Ruler(width, "─"))

	lines = append(lines, fmt.Sprintf("  PR #%s · %d comments · %s",
		run.PR, len(run.Outcomes), terminal.FormatDuration(run.FinishedAt.Sub(run.StartedAt))))
	lines = append(lines, fmt.Sprintf("  %s%d applied%s · %s%d rejected%s · %s%d need human%s",
		terminal.Color(terminal.Green), applied, terminal.Color(terminal.Reset),
		terminal.Color(terminal.Dim), rejected, terminal.Color(terminal.Reset),
		terminal.Color(terminal.Yellow), needsHuman, terminal.Color(terminal.Reset)))
	lines = append(lines, "")

	for _, o := range run.Outcomes {
		lines = append(lines, fmt.Sprintf("  %s %s %s", stateGlyph(o.FinalState), o.FinalState, o.Path))
		if o.Justification != "" {
			lines = append(lines, terminal.WrapText(o.Justification, width, "      "))
		}
		if o.Attempts > 1 {
			lines = append(lines, fmt.Sprintf("      %s%d attempts%s",
				terminal.Color(terminal.Dim), o.Attempts, terminal.Color(terminal.Reset)))
		}
	}

	return strings.Join(lines, "\n")
}

func stateGlyph(k domain.StateKind) string {
	switch k {
	case domain.StateApplied:
		return terminal.Color(terminal.Green) + "✓" + terminal.Color(terminal.Reset)
	case domain.StateRejected:
		return terminal.Color(terminal.Dim) + "–" + terminal.Color(terminal.Reset)
	case domain.StateNeedsHuman:
		return terminal.Color(terminal.Yellow) + "!" + terminal.Color(terminal.Reset)
	default:
		return terminal.Color(terminal.Red) + "?" + terminal.Color(terminal.Reset)
	}
}

// RenderMarkdown renders the run summary as markdown, suitable for a PR
// comment or job log artifact.
func RenderMarkdown(run domain.WorkflowRun) string {
	applied, rejected, needsHuman := run.Counts()

	var b strings.Builder
	fmt.Fprintf(&b, "## Review comment resolution — PR #%s\n\n", run.PR)
	fmt.Fprintf(&b, "Run `%s` %s in %s.\n\n", run.ID, run.Status,
		terminal.FormatDuration(run.FinishedAt.Sub(run.StartedAt)))
	if run.Status == domain.RunAborted {
		fmt.Fprintf(&b, "**Aborted:** %s\n\n", run.AbortReason)
	}
	fmt.Fprintf(&b, "| Applied | Rejected | Needs human |\n|---|---|---|\n| %d | %d | %d |\n\n",
		applied, rejected, needsHuman)

	if len(run.Outcomes) > 0 {
		b.WriteString("| Comment | File | Outcome | Attempts | Notes |\n|---|---|---|---|---|\n")
		for _, o := range run.Outcomes {
			fmt.Fprintf(&b, "| %s | `%s` | %s | %d | %s |\n",
				o.CommentID, o.Path, o.FinalState, o.Attempts,
				strings.ReplaceAll(o.Justification, "|", "\\|"))
		}
	}
	return b.String()
}
