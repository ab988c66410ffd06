package sched

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/mohamed-moneim/cpusched/pkg/clock"
	"github.com/mohamed-moneim/cpusched/pkg/proc"
)

// Engine drives the single-threaded tick loop. It owns the virtual
// clock, the process table, the active policy's ready structure, and
// the running-process slot; it is the sole mutator of all of them.
type Engine struct {
	clock  *clock.Clock
	table  *proc.Table
	pol    policy
	source Source
	sink   Sink
	logger *zap.Logger
	rec    Recorder

	running   int // 0 means no process is running
	idleTicks int

	pendingDescriptor *proc.Descriptor
	sourceExhausted   bool

	wtaSamples []float64
}

// Option configures an Engine at construction time.
type Option func(*Engine)

// WithLogger attaches a zap logger for lifecycle diagnostics. The
// per-tick scheduling trace always goes to the Sink, never the
// logger.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithRecorder attaches a per-tick observer (e.g. the live metrics exporter).
func WithRecorder(rec Recorder) Option {
	return func(e *Engine) {
		e.rec = rec
	}
}

// New constructs an Engine for the given policy kind. quantum is only
// consulted (and required to be positive) when kind is RR.
func New(kind Kind, quantum int, source Source, sink Sink, opts ...Option) (*Engine, error) {
	if source == nil {
		return nil, fmt.Errorf("%w: nil workload source", ErrInternalInvariant)
	}

	if sink == nil {
		return nil, fmt.Errorf("%w: nil sink", ErrInternalInvariant)
	}

	pol, err := newPolicy(kind, quantum)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		clock:  clock.New(),
		table:  proc.NewTable(),
		pol:    pol,
		source: source,
		sink:   sink,
		logger: zap.NewNop(),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e, nil
}

// Now returns the engine's current virtual tick.
func (e *Engine) Now() int { return e.clock.Now() }

// Table exposes the process table for read-only inspection (tests,
// status reporting).
func (e *Engine) Table() *proc.Table { return e.table }

// Run drives the tick loop to completion. Execution of the running
// process for a tick is attributed to the tick only after the clock
// has advanced past it:
//
//	loop:
//	  admit all workload entries with arrival_time == now (ascending id)
//	  reconsider()                 # may dispatch an idle CPU, or preempt under SRTN
//	  now += 1
//	  if a process was selected above: execute one unit; finalize or quantum-step
//	  else: idle tick
//	  update waiting/idle accounting for the tick that just elapsed
//	  if workload exhausted and every record is FINISHED: break
//	emit metrics
func (e *Engine) Run() (Metrics, error) {
	if err := e.sink.WriteHeader(); err != nil {
		return Metrics{}, fmt.Errorf("sched: write log header: %w", err)
	}

	for {
		if err := e.admitDue(); err != nil {
			return Metrics{}, err
		}

		if err := e.pol.reconsider(e); err != nil {
			return Metrics{}, err
		}

		ranThisTick := e.running != 0
		ranID := e.running

		e.clock.Advance()

		if ranThisTick {
			if err := e.executeTick(); err != nil {
				return Metrics{}, err
			}
		}

		e.updateWaitingTimes(ranThisTick, ranID)

		if err := e.observe(); err != nil {
			return Metrics{}, err
		}

		exhausted, err := e.workloadExhausted()
		if err != nil {
			return Metrics{}, err
		}

		if exhausted && (e.table.Count() == 0 || e.table.AllFinished()) {
			break
		}
	}

	metrics := computeMetrics(e.clock.Now(), e.idleTicks, e.wtaSamples, e.waitingTimes())

	if err := e.sink.WriteMetrics(metrics); err != nil {
		return Metrics{}, fmt.Errorf("sched: write metrics: %w", err)
	}

	e.logger.Info("scheduler run complete",
		zap.Int("ticks", e.clock.Now()),
		zap.Int("idleTicks", e.idleTicks),
		zap.Int("processes", e.table.Count()),
	)

	return metrics, nil
}

// admitDue admits every pending descriptor whose arrival_time equals
// the current tick, in ascending id order, triggering reconsider once
// per admission so that under SRTN a shorter arrival can preempt
// immediately. Because reconsider runs after each single admission, an
// idle CPU is filled by the first process admitted at a tick, before
// later same-tick arrivals are in the ready structure.
func (e *Engine) admitDue() error {
	for {
		desc, ok, err := e.peekPending()
		if err != nil {
			return err
		}

		if !ok || desc.ArrivalTime != e.clock.Now() {
			return nil
		}

		e.pendingDescriptor = nil

		rec, err := e.table.Admit(desc)
		if err != nil {
			return err
		}

		e.pol.insert(rec.ID, rec)

		e.logger.Debug("process admitted",
			zap.Int("id", rec.ID),
			zap.Int("now", e.clock.Now()),
		)

		if err := e.pol.reconsider(e); err != nil {
			return err
		}
	}
}

func (e *Engine) peekPending() (proc.Descriptor, bool, error) {
	if e.pendingDescriptor != nil {
		return *e.pendingDescriptor, true, nil
	}

	if e.sourceExhausted {
		return proc.Descriptor{}, false, nil
	}

	desc, ok, err := e.source.Next()
	if err != nil {
		return proc.Descriptor{}, false, fmt.Errorf("sched: read workload source: %w", err)
	}

	if !ok {
		e.sourceExhausted = true

		return proc.Descriptor{}, false, nil
	}

	e.pendingDescriptor = &desc

	return desc, true, nil
}

func (e *Engine) workloadExhausted() (bool, error) {
	_, ok, err := e.peekPending()
	if err != nil {
		return false, err
	}

	return !ok, nil
}

// dispatch transitions a ready or stopped process to Running. It is
// called only by a policy's reconsider, and only with an id that the
// policy just popped from its own ready structure, so the process
// table must contain it.
func (e *Engine) dispatch(id int) error {
	rec, ok := e.table.Get(id)
	if !ok {
		return fmt.Errorf("%w: dispatch: process %d not in table", ErrInternalInvariant, id)
	}

	now := e.clock.Now()

	first := rec.StartTime == proc.Undefined
	if first {
		rec.StartTime = now
	}

	rec.State = proc.Running
	rec.LastRunTime = now
	e.running = id

	kind := EventResumed
	if first {
		kind = EventStarted
	}

	e.pol.onDispatch(e, rec)

	return e.emit(rec, kind)
}

// preempt transitions the running process back to Stopped and
// re-inserts it into the active ready structure.
func (e *Engine) preempt(id int) error {
	rec, ok := e.table.Get(id)
	if !ok {
		return fmt.Errorf("%w: preempt: process %d not in table", ErrInternalInvariant, id)
	}

	if rec.State != proc.Running {
		return fmt.Errorf("%w: preempt: process %d is not running", ErrInternalInvariant, id)
	}

	rec.State = proc.Stopped
	rec.Preempted = true
	e.running = 0

	e.pol.insert(rec.ID, rec)

	return e.emit(rec, EventStopped)
}

// finalize transitions the running process to Finished and records
// its turnaround statistics.
func (e *Engine) finalize(id int) error {
	rec, ok := e.table.Get(id)
	if !ok {
		return fmt.Errorf("%w: finalize: process %d not in table", ErrInternalInvariant, id)
	}

	if rec.State != proc.Running {
		return fmt.Errorf("%w: finalize: process %d is not running", ErrInternalInvariant, id)
	}

	now := e.clock.Now()

	rec.State = proc.Finished
	rec.FinishTime = now
	rec.RemainingTime = 0
	e.running = 0

	e.wtaSamples = append(e.wtaSamples, rec.WeightedTurnaround())

	return e.emit(rec, EventFinished)
}

// executeTick consumes one unit of the running process's remaining
// time, after the clock-advance tick it is attributed to. It finalizes
// on completion, or — for RR — steps the quantum and possibly rotates.
func (e *Engine) executeTick() error {
	rec, ok := e.table.Get(e.running)
	if !ok {
		return fmt.Errorf("%w: execute: running process %d not in table", ErrInternalInvariant, e.running)
	}

	rec.RemainingTime--
	if rec.RemainingTime < 0 {
		return fmt.Errorf("%w: process %d remaining time went negative", ErrInternalInvariant, rec.ID)
	}

	if rec.RemainingTime == 0 {
		return e.finalize(rec.ID)
	}

	// onSurvivedTick may preempt (RR quantum exhaustion) but never
	// redispatches inline: like finalize, it leaves any redispatch to
	// the next loop iteration's top-of-loop reconsider(), so that
	// updateWaitingTimes still sees the state as it was during the
	// tick that just elapsed, not after reactive rescheduling.
	return e.pol.onSurvivedTick(e)
}

// emit updates waiting-time accounting is NOT done here (see
// accounting.go — it happens exactly once, at tick advance) and
// writes the event to the sink.
func (e *Engine) emit(rec *proc.Record, kind EventKind) error {
	ev := Event{
		Now:           e.clock.Now(),
		ProcessID:     rec.ID,
		Kind:          kind,
		ArrivalTime:   rec.ArrivalTime,
		Runtime:       rec.Runtime,
		RemainingTime: rec.RemainingTime,
		WaitingTime:   rec.WaitingTime,
	}

	if kind == EventFinished {
		ev.Turnaround = rec.Turnaround()
		ev.WeightedTurnaround = rec.WeightedTurnaround()
	}

	if err := e.sink.WriteEvent(ev); err != nil {
		return fmt.Errorf("sched: write event: %w", err)
	}

	return nil
}

func (e *Engine) observe() error {
	if e.rec == nil {
		return nil
	}

	finished := 0
	waiting := e.waitingTimes()
	wtaSum := 0.0

	for _, wta := range e.wtaSamples {
		wtaSum += wta
	}

	for _, rec := range e.table.IterAll() {
		if rec.State == proc.Finished {
			finished++
		}
	}

	avgWTA := 0.0
	if len(e.wtaSamples) > 0 {
		avgWTA = wtaSum / float64(len(e.wtaSamples))
	}

	avgWait := 0.0
	if len(waiting) > 0 {
		sum := 0

		for _, w := range waiting {
			sum += w
		}

		avgWait = float64(sum) / float64(len(waiting))
	}

	e.rec.Observe(Snapshot{
		Now:            e.clock.Now(),
		IdleTicks:      e.idleTicks,
		RunningID:      e.running,
		FinishedCount:  finished,
		TotalCount:     e.table.Count(),
		RunningAvgWTA:  avgWTA,
		RunningAvgWait: avgWait,
	})

	return nil
}

func (e *Engine) waitingTimes() []int {
	recs := e.table.IterAll()
	out := make([]int, 0, len(recs))

	for _, rec := range recs {
		out = append(out, rec.WaitingTime)
	}

	sort.Ints(out)

	return out
}

