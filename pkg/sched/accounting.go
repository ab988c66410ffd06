package sched

import "github.com/mohamed-moneim/cpusched/pkg/proc"

// updateWaitingTimes performs the per-tick accounting exactly once per
// tick advance: idle_time grows when no process is running, and every
// Ready or Stopped record's waiting_time grows by one. This must stay
// the single call site for this bookkeeping — calling it more than
// once per tick, or from more than one place, double-counts waiting
// time.
//
// ranID is whichever process was running during the tick that just
// elapsed (0 if none), captured before that tick's execution could
// react to it (quantum exhaustion preempting it, or it finishing). It
// is always excluded from the increment even if side effects of this
// same tick have already moved it to Stopped or Finished by the time
// this runs — it spent the elapsed tick running, not waiting,
// regardless of what state it lands in afterward.
func (e *Engine) updateWaitingTimes(ranThisTick bool, ranID int) {
	if !ranThisTick {
		e.idleTicks++
	}

	for _, rec := range e.table.IterAll() {
		if rec.ID == ranID {
			continue
		}

		if rec.State == proc.Ready || rec.State == proc.Stopped {
			rec.WaitingTime++
		}
	}
}
