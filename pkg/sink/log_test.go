package sink_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mohamed-moneim/cpusched/pkg/sched"
	"github.com/mohamed-moneim/cpusched/pkg/sink"
)

func TestLogSinkWritesHeaderAndEvents(t *testing.T) {
	dir := t.TempDir()

	s, err := sink.New(dir)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if err := s.WriteHeader(); err != nil {
		t.Fatalf("WriteHeader() error = %v", err)
	}

	if err := s.WriteEvent(sched.Event{
		Now: 0, ProcessID: 1, Kind: sched.EventStarted,
		ArrivalTime: 0, Runtime: 5, RemainingTime: 5, WaitingTime: 0,
	}); err != nil {
		t.Fatalf("WriteEvent(started) error = %v", err)
	}

	if err := s.WriteEvent(sched.Event{
		Now: 5, ProcessID: 1, Kind: sched.EventFinished,
		ArrivalTime: 0, Runtime: 5, RemainingTime: 0, WaitingTime: 0,
		Turnaround: 5, WeightedTurnaround: 1.0,
	}); err != nil {
		t.Fatalf("WriteEvent(finished) error = %v", err)
	}

	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	content, err := os.ReadFile(filepath.Join(dir, "scheduler.log"))
	if err != nil {
		t.Fatalf("read scheduler.log: %v", err)
	}

	lines := strings.Split(strings.TrimRight(string(content), "\n"), "\n")

	want := []string{
		"#At time x process y state arr w total z remain y wait k",
		"At time 0 process 1 started arr 0 total 5 remain 5 wait 0",
		"At time 5 process 1 finished arr 0 total 5 remain 0 wait 0 TA 5 WTA 1.00",
	}

	if len(lines) != len(want) {
		t.Fatalf("got %d lines, want %d:\n%s", len(lines), len(want), content)
	}

	for i, w := range want {
		if lines[i] != w {
			t.Fatalf("line %d = %q, want %q", i, lines[i], w)
		}
	}
}

func TestLogSinkWriteMetrics(t *testing.T) {
	dir := t.TempDir()

	s, err := sink.New(dir)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })

	err = s.WriteMetrics(sched.Metrics{
		CPUUtilization: 28.571428,
		AvgWTA:         1.75,
		AvgWaiting:     1.5,
		StdWTA:         0.0,
	})
	if err != nil {
		t.Fatalf("WriteMetrics() error = %v", err)
	}

	content, err := os.ReadFile(filepath.Join(dir, "scheduler.perf"))
	if err != nil {
		t.Fatalf("read scheduler.perf: %v", err)
	}

	want := "CPU utilization = 28.57%\nAvg WTA = 1.75\nAvg Waiting = 1.50\nStd WTA = 0.00\n"
	if string(content) != want {
		t.Fatalf("scheduler.perf = %q, want %q", content, want)
	}
}

func TestNewAcquiresExclusiveLock(t *testing.T) {
	dir := t.TempDir()

	first, err := sink.New(dir)
	if err != nil {
		t.Fatalf("first New() error = %v", err)
	}
	t.Cleanup(func() { _ = first.Close() })

	if _, err := sink.New(dir); err == nil {
		t.Fatal("second New() on the same directory should fail to acquire the lock")
	}
}
