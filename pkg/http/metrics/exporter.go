// Package metrics exposes a running simulation's live counters over HTTP.
package metrics

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/mohamed-moneim/cpusched/pkg/sched"
)

const contentType = "application/openmetrics-text; version=1.0.0; charset=utf-8"

// Exporter tracks the engine's per-tick snapshot and renders it as
// OpenMetrics text. It implements sched.Recorder, so an Engine can be
// constructed with WithRecorder(exporter) and every tick's Observe
// call updates the gauges this serves.
type Exporter struct {
	mu sync.RWMutex

	now           int
	idleTicks     int
	runningID     int
	finishedCount int
	totalCount    int
	avgWTA        float64
	avgWaiting    float64
}

// NewExporter constructs an Exporter with zeroed metrics.
func NewExporter() *Exporter {
	return new(Exporter)
}

// Observe implements sched.Recorder.
func (e *Exporter) Observe(snapshot sched.Snapshot) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.now = snapshot.Now
	e.idleTicks = snapshot.IdleTicks
	e.runningID = snapshot.RunningID
	e.finishedCount = snapshot.FinishedCount
	e.totalCount = snapshot.TotalCount
	e.avgWTA = snapshot.RunningAvgWTA
	e.avgWaiting = snapshot.RunningAvgWait
}

// ServeHTTP implements http.Handler for the metrics exporter.
func (e *Exporter) ServeHTTP(writer http.ResponseWriter, _ *http.Request) {
	data, err := e.Render()
	if err != nil {
		http.Error(writer, err.Error(), http.StatusInternalServerError)

		return
	}

	writer.Header().Set("Content-Type", contentType)
	_, _ = writer.Write(data)
}

// Render returns the current metrics snapshot encoded as OpenMetrics text.
func (e *Exporter) Render() ([]byte, error) {
	var buffer bytes.Buffer

	if _, err := e.WriteTo(&buffer); err != nil {
		return nil, err
	}

	return buffer.Bytes(), nil
}

// WriteTo writes the current metrics snapshot to dst.
func (e *Exporter) WriteTo(dst io.Writer) (int64, error) {
	e.mu.RLock()
	snapshot := exporterSnapshot{
		now:           e.now,
		idleTicks:     e.idleTicks,
		runningID:     e.runningID,
		finishedCount: e.finishedCount,
		totalCount:    e.totalCount,
		avgWTA:        e.avgWTA,
		avgWaiting:    e.avgWaiting,
	}
	e.mu.RUnlock()

	lines := []string{
		"# HELP scheduler_now_ticks Current virtual clock tick.\n",
		"# TYPE scheduler_now_ticks counter\n",
		fmt.Sprintf("scheduler_now_ticks %d\n", snapshot.now),
		"# HELP scheduler_idle_ticks Ticks elapsed with no process running.\n",
		"# TYPE scheduler_idle_ticks counter\n",
		fmt.Sprintf("scheduler_idle_ticks %d\n", snapshot.idleTicks),
		"# HELP scheduler_running_process_id Id of the process currently running, 0 if idle.\n",
		"# TYPE scheduler_running_process_id gauge\n",
		fmt.Sprintf("scheduler_running_process_id %d\n", snapshot.runningID),
		"# HELP scheduler_finished_total Count of processes that have finished.\n",
		"# TYPE scheduler_finished_total counter\n",
		fmt.Sprintf("scheduler_finished_total %d\n", snapshot.finishedCount),
		"# HELP scheduler_process_total Count of processes admitted so far.\n",
		"# TYPE scheduler_process_total counter\n",
		fmt.Sprintf("scheduler_process_total %d\n", snapshot.totalCount),
		"# HELP scheduler_avg_wta Weighted turnaround average over finished processes so far.\n",
		"# TYPE scheduler_avg_wta gauge\n",
		fmt.Sprintf("scheduler_avg_wta %.6f\n", snapshot.avgWTA),
		"# HELP scheduler_avg_waiting Waiting time average over admitted processes so far.\n",
		"# TYPE scheduler_avg_waiting gauge\n",
		fmt.Sprintf("scheduler_avg_waiting %.6f\n", snapshot.avgWaiting),
		"# EOF\n",
	}

	var total int64

	for _, line := range lines {
		n, err := io.WriteString(dst, line)

		total += int64(n)
		if err != nil {
			return total, fmt.Errorf("write metrics: %w", err)
		}
	}

	return total, nil
}

type exporterSnapshot struct {
	now           int
	idleTicks     int
	runningID     int
	finishedCount int
	totalCount    int
	avgWTA        float64
	avgWaiting    float64
}
