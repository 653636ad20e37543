// Package domain provides core types for the review comment resolver.
package domain

// ExitCode represents the exit status of the resolver.
type ExitCode int

const (
	// ExitResolved indicates every comment ended applied or rejected.
	ExitResolved ExitCode = 0
	// ExitNeedsHuman indicates at least one comment was deferred to a human.
	ExitNeedsHuman ExitCode = 1
	// ExitError indicates the run failed due to an error.
	ExitError ExitCode = 2
	// ExitInterrupted indicates the run was interrupted by a signal.
	ExitInterrupted ExitCode = 130
)

// Int returns the exit code as an int for use with os.Exit.
func (e ExitCode) Int() int {
	return int(e)
}
