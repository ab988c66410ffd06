package sched

// Recorder is an optional per-tick observer, implemented by
// pkg/http/metrics.Exporter for the live introspection HTTP surface.
// The engine never imports net/http; it only calls this narrow
// interface once per tick when one is configured.
type Recorder interface {
	Observe(snapshot Snapshot)
}

// Snapshot is the engine state exposed to a Recorder after each tick.
type Snapshot struct {
	Now            int
	IdleTicks      int
	RunningID      int
	FinishedCount  int
	TotalCount     int
	RunningAvgWTA  float64
	RunningAvgWait float64
}
