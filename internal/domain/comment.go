package domain

import "fmt"

// StateKind identifies a comment lifecycle state.
type StateKind int

const (
	StateUnresolved StateKind = iota
	StateAccepted
	StateRejected
	StateApplied
	StateFailed
	StateNeedsHuman
)

// String returns the lowercase name of the state.
func (k StateKind) String() string {
	switch k {
	case StateUnresolved:
		return "unresolved"
	case StateAccepted:
		return "accepted"
	case StateRejected:
		return "rejected"
	case StateApplied:
		return "applied"
	case StateFailed:
		return "failed"
	case StateNeedsHuman:
		return "needs-human"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

// ParseStateKind is the inverse of String, for states read back from storage.
func ParseStateKind(s string) (StateKind, error) {
	for k := StateUnresolved; k <= StateNeedsHuman; k++ {
		if k.String() == s {
			return k, nil
		}
	}
	return StateUnresolved, fmt.Errorf("unknown comment state %q", s)
}

// Terminal reports whether no further workflow transition occurs from this state.
func (k StateKind) Terminal() bool {
	return k == StateRejected || k == StateApplied || k == StateNeedsHuman
}

// CommentState is a lifecycle state plus the reason it was entered.
// Rejected, Failed, and NeedsHuman always carry a non-empty reason.
type CommentState struct {
	Kind   StateKind
	Reason string
}

// Unresolved is the initial state of every loaded comment.
var Unresolved = CommentState{Kind: StateUnresolved}

// Accepted marks a comment whose concern was validated.
var Accepted = CommentState{Kind: StateAccepted}

// Applied marks a comment whose fix landed and verified.
var Applied = CommentState{Kind: StateApplied}

// Rejected builds a rejected state with a justification.
func Rejected(reason string) CommentState {
	return CommentState{Kind: StateRejected, Reason: reason}
}

// Failed builds a failed state with the verification failure.
func Failed(reason string) CommentState {
	return CommentState{Kind: StateFailed, Reason: reason}
}

// NeedsHuman builds a needs-human state with the deferral reason.
func NeedsHuman(reason string) CommentState {
	return CommentState{Kind: StateNeedsHuman, Reason: reason}
}

// reachable enumerates the legal lifecycle edges. Applied is terminal:
// once a fix lands and verifies there is no back-edge to Failed.
var reachable = map[StateKind][]StateKind{
	StateUnresolved: {StateAccepted, StateRejected},
	StateAccepted:   {StateApplied, StateFailed, StateNeedsHuman},
	StateFailed:     {StateAccepted, StateNeedsHuman},
}

// CanTransition reports whether to is reachable from from in one step.
func CanTransition(from, to StateKind) bool {
	for _, next := range reachable[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ReviewComment is one piece of review feedback attached to a code location.
// Comments are immutable once fetched; only their lifecycle state moves.
type ReviewComment struct {
	ID        string
	Path      string
	StartLine int
	EndLine   int
	Body      string
	Author    string
	// Index is the creation-order position within the PR, used for
	// deterministic iteration and conflict tie-breaking.
	Index int
}

// Location returns the comment's target as a path:start-end string.
func (c ReviewComment) Location() string {
	if c.StartLine == c.EndLine {
		return fmt.Sprintf("%s:%d", c.Path, c.StartLine)
	}
	return fmt.Sprintf("%s:%d-%d", c.Path, c.StartLine, c.EndLine)
}

// ValidationVerdict is the classifier's judgment on one comment.
type ValidationVerdict struct {
	Valid         bool
	Justification string
}
