package sched

import (
	"errors"
	"fmt"

	"github.com/mohamed-moneim/cpusched/pkg/proc"
)

// Kind selects which of the three scheduling policies an Engine runs,
// matching the algorithm selector (1=HPF, 2=SRTN, 3=RR).
type Kind int

const (
	// HPF is non-preemptive Highest Priority First.
	HPF Kind = 1
	// SRTN is Shortest Remaining Time Next.
	SRTN Kind = 2
	// RR is Round Robin with a configured quantum.
	RR Kind = 3
)

// String names the policy for logging and error messages.
func (k Kind) String() string {
	switch k {
	case HPF:
		return "HPF"
	case SRTN:
		return "SRTN"
	case RR:
		return "RR"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

var (
	// ErrUnknownAlgorithm is returned when the selector is not 1, 2, or 3.
	ErrUnknownAlgorithm = errors.New("sched: unknown algorithm selector")
	// ErrQuantumRequired is returned when RR is selected without a positive quantum.
	ErrQuantumRequired = errors.New("sched: RR requires a positive quantum")
	// ErrInternalInvariant marks a scheduler-core bug: dispatch on an
	// empty ready structure, or finalize on a non-running process.
	ErrInternalInvariant = errors.New("sched: internal invariant violated")
)

// policy is the uniform interface each of the three scheduling
// algorithms implements: admission, selection, and the
// policy-specific reactions to a tick or a finish, behind one shape
// the Engine drives without branching on the algorithm
// elsewhere.
type policy interface {
	kind() Kind
	// insert admits rec's id into the policy's ready structure.
	insert(id int, rec *proc.Record)
	// length reports how many ids are currently ready.
	length() int
	// reconsider selects and dispatches (and, for SRTN, preempts) as
	// needed. Called after every admission and after every finish.
	reconsider(e *Engine) error
	// onDispatch is called right after the engine marks rec Running,
	// so a policy can reset any per-dispatch state (RR's quantum).
	onDispatch(e *Engine, rec *proc.Record)
	// onSurvivedTick is called after a running process consumes one
	// tick of execution without finishing. Only RR acts on it.
	onSurvivedTick(e *Engine) error
}

func newPolicy(k Kind, quantum int) (policy, error) {
	switch k {
	case HPF:
		return newHPFPolicy(), nil
	case SRTN:
		return newSRTNPolicy(), nil
	case RR:
		if quantum <= 0 {
			return nil, fmt.Errorf("%w: got %d", ErrQuantumRequired, quantum)
		}

		return newRRPolicy(quantum), nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownAlgorithm, int(k))
	}
}
