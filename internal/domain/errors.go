package domain

import (
	"errors"
	"fmt"
)

// Store-level programmer errors. These indicate a caller bug and are never
// recovered; they fail the operation that raised them.
var (
	ErrDuplicateComment  = errors.New("duplicate comment id")
	ErrUnknownComment    = errors.New("unknown comment id")
	ErrInvalidTransition = errors.New("invalid state transition")
)

// Per-comment planning and apply errors. Both route the comment to
// needs-human without retry: they mean the plan itself is invalid, not that
// verification was flaky.
var (
	ErrUnplannable       = errors.New("comment is not plannable")
	ErrStalePrecondition = errors.New("edit precondition no longer matches")
)

// QualityFailure is a legitimate lint or test failure reported by a
// verification collaborator. It is the only recoverable error kind: the
// orchestrator re-plans and retries up to the attempt cap.
type QualityFailure struct {
	Findings []string
}

// Error implements the error interface.
func (e *QualityFailure) Error() string {
	if len(e.Findings) == 0 {
		return "verification failed"
	}
	return fmt.Sprintf("verification failed: %s", e.Findings[0])
}

// InfrastructureError is a non-diagnostic collaborator failure (crash,
// timeout, missing binary). It aborts the entire run immediately and is
// surfaced to the operator verbatim.
type InfrastructureError struct {
	Op  string
	Err error
}

// Error implements the error interface.
func (e *InfrastructureError) Error() string {
	return fmt.Sprintf("infrastructure error in %s: %v", e.Op, e.Err)
}

// Unwrap exposes the underlying cause for errors.Is/As.
func (e *InfrastructureError) Unwrap() error {
	return e.Err
}
