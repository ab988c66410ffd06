package sched

import (
	"fmt"

	"github.com/mohamed-moneim/cpusched/pkg/proc"
	"github.com/mohamed-moneim/cpusched/pkg/ready"
)

// srtnPolicy is Shortest Remaining Time Next: preemptive whenever the
// ready heap's minimum remaining time is strictly less than the
// running process's remaining time. A tie does not preempt.
type srtnPolicy struct {
	heap *ready.SRTNHeap
}

func newSRTNPolicy() *srtnPolicy {
	return &srtnPolicy{heap: ready.NewSRTNHeap()}
}

func (p *srtnPolicy) kind() Kind { return SRTN }

func (p *srtnPolicy) insert(id int, rec *proc.Record) {
	p.heap.Insert(id, rec.RemainingTime, rec.ArrivalTime)
}

func (p *srtnPolicy) length() int { return p.heap.Len() }

func (p *srtnPolicy) reconsider(e *Engine) error {
	minRemaining, hasReady := p.heap.PeekMinRemaining()

	if e.running == 0 {
		if !hasReady {
			return nil
		}

		id, ok := p.heap.PopMin()
		if !ok {
			return nil
		}

		return e.dispatch(id)
	}

	if !hasReady {
		return nil
	}

	runningRec, ok := e.table.Get(e.running)
	if !ok {
		return fmt.Errorf("%w: running process %d missing from table", ErrInternalInvariant, e.running)
	}

	if runningRec.RemainingTime <= minRemaining {
		return nil
	}

	if err := e.preempt(e.running); err != nil {
		return err
	}

	id, ok := p.heap.PopMin()
	if !ok {
		return fmt.Errorf("%w: SRTN heap min disappeared between peek and pop", ErrInternalInvariant)
	}

	return e.dispatch(id)
}

func (p *srtnPolicy) onDispatch(_ *Engine, _ *proc.Record) {}

func (p *srtnPolicy) onSurvivedTick(_ *Engine) error { return nil }
