package proc

import "testing"

func TestRecordTurnaround(t *testing.T) {
	rec := newRecord(Descriptor{ID: 1, ArrivalTime: 2, Runtime: 5, Priority: 0})
	rec.FinishTime = 10

	if got := rec.Turnaround(); got != 8 {
		t.Fatalf("Turnaround() = %d, want 8", got)
	}

	if got := rec.WeightedTurnaround(); got != 1.6 {
		t.Fatalf("WeightedTurnaround() = %v, want 1.6", got)
	}
}

func TestStateString(t *testing.T) {
	tests := map[State]string{
		Ready:    "ready",
		Running:  "running",
		Stopped:  "stopped",
		Finished: "finished",
		State(99): "unknown",
	}

	for state, want := range tests {
		if got := state.String(); got != want {
			t.Fatalf("State(%d).String() = %q, want %q", state, got, want)
		}
	}
}
