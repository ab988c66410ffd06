package sched

import (
	"github.com/mohamed-moneim/cpusched/pkg/proc"
	"github.com/mohamed-moneim/cpusched/pkg/ready"
)

// hpfPolicy is non-preemptive Highest Priority First: the heap is
// only ever consulted to fill an idle CPU, never to interrupt a
// running process.
type hpfPolicy struct {
	heap *ready.HPFHeap
}

func newHPFPolicy() *hpfPolicy {
	return &hpfPolicy{heap: ready.NewHPFHeap()}
}

func (p *hpfPolicy) kind() Kind { return HPF }

func (p *hpfPolicy) insert(id int, rec *proc.Record) {
	p.heap.Insert(id, rec.Priority, rec.ArrivalTime)
}

func (p *hpfPolicy) length() int { return p.heap.Len() }

func (p *hpfPolicy) reconsider(e *Engine) error {
	if e.running != 0 {
		return nil
	}

	id, ok := p.heap.PopMin()
	if !ok {
		return nil
	}

	return e.dispatch(id)
}

func (p *hpfPolicy) onDispatch(_ *Engine, _ *proc.Record) {}

func (p *hpfPolicy) onSurvivedTick(_ *Engine) error { return nil }
