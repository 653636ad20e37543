// Package verify invokes the project's lint and test collaborators and
// classifies their outcomes.
package verify

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/reviewloop/rcr/internal/domain"
)

// maxFindings caps the diagnostics carried back into the retry loop.
const maxFindings = 20

// Result is the outcome of one verification pass.
type Result struct {
	Pass     bool
	Findings []string
	Duration time.Duration
}

// Runner runs the configured verification collaborators. The collaborators
// are external commands; the runner never interprets their diagnostics
// beyond pass/fail and line capture.
type Runner struct {
	lintCmd []string
	testCmd []string
	workDir string
	timeout time.Duration
}

// New creates a runner. Empty argv vectors disable the corresponding
// collaborator. The timeout bounds each collaborator invocation; a timeout
// is an infrastructure error, not a quality failure.
func New(lintCmd, testCmd []string, workDir string, timeout time.Duration) *Runner {
	return &Runner{
		lintCmd: lintCmd,
		testCmd: testCmd,
		workDir: workDir,
		timeout: timeout,
	}
}

// Verify runs lint (scoped to changedFiles) and then tests. A diagnostic
// failure returns Pass=false with findings; a collaborator crash, missing
// binary, or timeout returns a *domain.InfrastructureError.
func (r *Runner) Verify(ctx context.Context, changedFiles []string) (Result, error) {
	start := time.Now()

	if len(r.lintCmd) > 0 {
		argv := append(append([]string{}, r.lintCmd...), changedFiles...)
		findings, err := r.runCollaborator(ctx, "lint", argv)
		if err != nil {
			return Result{}, err
		}
		if findings != nil {
			return Result{Findings: findings, Duration: time.Since(start)}, nil
		}
	}

	if len(r.testCmd) > 0 {
		findings, err := r.runCollaborator(ctx, "test", argv(r.testCmd))
		if err != nil {
			return Result{}, err
		}
		if findings != nil {
			return Result{Findings: findings, Duration: time.Since(start)}, nil
		}
	}

	return Result{Pass: true, Duration: time.Since(start)}, nil
}

func argv(cmd []string) []string {
	return append([]string{}, cmd...)
}

// runCollaborator executes one collaborator. It returns non-nil findings for
// a diagnostic (quality) failure, nil findings for success, and an error
// only for infrastructure faults.
func (r *Runner) runCollaborator(ctx context.Context, name string, argv []string) ([]string, error) {
	runCtx := ctx
	var cancel context.CancelFunc
	if r.timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(runCtx, argv[0], argv[1:]...)
	if r.workDir != "" {
		cmd.Dir = r.workDir
	}
	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output

	err := cmd.Run()

	if runCtx.Err() == context.DeadlineExceeded {
		return nil, &domain.InfrastructureError{
			Op:  name,
			Err: fmt.Errorf("timed out after %s", r.timeout),
		}
	}
	if ctx.Err() != nil {
		return nil, &domain.InfrastructureError{Op: name, Err: ctx.Err()}
	}

	if err == nil {
		return nil, nil
	}

	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		// Could not even start the collaborator.
		return nil, &domain.InfrastructureError{Op: name, Err: err}
	}
	if exitErr.ExitCode() < 0 {
		// Killed by a signal rather than exiting with diagnostics.
		return nil, &domain.InfrastructureError{Op: name, Err: err}
	}

	findings := CollectFindings(name, output.String())
	if len(findings) == 0 {
		findings = []string{fmt.Sprintf("%s exited with status %d", name, exitErr.ExitCode())}
	}
	return findings, nil
}

// CollectFindings extracts the non-empty diagnostic lines from collaborator
// output, capped at maxFindings and tagged with the collaborator name.
func CollectFindings(name, output string) []string {
	var findings []string
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		findings = append(findings, name+": "+line)
		if len(findings) == maxFindings {
			break
		}
	}
	return findings
}
