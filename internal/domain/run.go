package domain

import "time"

// RunStatus is the overall outcome of one workflow pass over a PR.
type RunStatus int

const (
	RunCompleted RunStatus = iota
	RunAborted
)

// String returns the lowercase name of the status.
func (s RunStatus) String() string {
	if s == RunAborted {
		return "aborted"
	}
	return "completed"
}

// CommentOutcome records the final disposition of one comment in a run.
type CommentOutcome struct {
	CommentID     string
	Path          string
	FinalState    StateKind
	Attempts      int
	Justification string
}

// WorkflowRun aggregates one pass over a PR's review comments. It is created
// at orchestration start and closed once every comment reaches a terminal
// state or the run aborts; a closed run is never mutated.
type WorkflowRun struct {
	ID          string
	PR          string
	StartedAt   time.Time
	FinishedAt  time.Time
	Status      RunStatus
	AbortReason string
	Outcomes    []CommentOutcome
}

// Counts tallies outcomes by final state.
func (r *WorkflowRun) Counts() (applied, rejected, needsHuman int) {
	for _, o := range r.Outcomes {
		switch o.FinalState {
		case StateApplied:
			applied++
		case StateRejected:
			rejected++
		case StateNeedsHuman:
			needsHuman++
		}
	}
	return applied, rejected, needsHuman
}

// Accounted reports whether every outcome reached a terminal state. A
// completed run must account for 100% of input comments; anything less is
// only legal on an aborted run.
func (r *WorkflowRun) Accounted() bool {
	for _, o := range r.Outcomes {
		if !o.FinalState.Terminal() {
			return false
		}
	}
	return true
}
