package sched

import (
	"fmt"

	"github.com/mohamed-moneim/cpusched/pkg/proc"
	"github.com/mohamed-moneim/cpusched/pkg/ready"
)

// rrPolicy is Round Robin: a process runs for at most quantum
// consecutive ticks before being rotated to the tail of the ready
// queue.
type rrPolicy struct {
	queue       *ready.RRQueue
	quantum     int
	quantumLeft int
}

func newRRPolicy(quantum int) *rrPolicy {
	return &rrPolicy{queue: ready.NewRRQueue(), quantum: quantum}
}

func (p *rrPolicy) kind() Kind { return RR }

func (p *rrPolicy) insert(id int, _ *proc.Record) {
	p.queue.Enqueue(id)
}

func (p *rrPolicy) length() int { return p.queue.Len() }

func (p *rrPolicy) reconsider(e *Engine) error {
	if e.running != 0 {
		return nil
	}

	id, ok := p.queue.Dequeue()
	if !ok {
		return nil
	}

	return e.dispatch(id)
}

func (p *rrPolicy) onDispatch(_ *Engine, _ *proc.Record) {
	p.quantumLeft = p.quantum
}

// onSurvivedTick steps down the current quantum and, once it is spent,
// preempts the running process back to the ready queue's tail. It
// deliberately does not redispatch here: like finalize, it leaves
// running at 0 and lets the next loop iteration's top-of-loop
// reconsider() pick the next process. Redispatching inline would
// mutate process states before updateWaitingTimes accounts for the
// tick that just elapsed, corrupting waiting-time bookkeeping for both
// the preempted and the newly dispatched process.
func (p *rrPolicy) onSurvivedTick(e *Engine) error {
	p.quantumLeft--
	if p.quantumLeft > 0 {
		return nil
	}

	if e.running == 0 {
		return fmt.Errorf("%w: RR quantum exhausted with no running process", ErrInternalInvariant)
	}

	return e.preempt(e.running)
}
