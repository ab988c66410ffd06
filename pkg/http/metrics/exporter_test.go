package metrics_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mohamed-moneim/cpusched/pkg/http/metrics"
	"github.com/mohamed-moneim/cpusched/pkg/sched"
)

const openMetricsContentType = "application/openmetrics-text; version=1.0.0; charset=utf-8"

var errFailingWriter = errors.New("metrics: failing writer")

func TestExporterRenderProducesOpenMetrics(t *testing.T) {
	t.Parallel()

	exporter := metrics.NewExporter()
	exporter.Observe(sched.Snapshot{
		Now:            7,
		IdleTicks:      2,
		RunningID:      3,
		FinishedCount:  1,
		TotalCount:     4,
		RunningAvgWTA:  1.75,
		RunningAvgWait: 1.5,
	})

	body, err := exporter.Render()
	if err != nil {
		t.Fatalf("Render() returned error: %v", err)
	}

	got := string(body)
	expected := strings.Join([]string{
		"# HELP scheduler_now_ticks Current virtual clock tick.",
		"# TYPE scheduler_now_ticks counter",
		"scheduler_now_ticks 7",
		"# HELP scheduler_idle_ticks Ticks elapsed with no process running.",
		"# TYPE scheduler_idle_ticks counter",
		"scheduler_idle_ticks 2",
		"# HELP scheduler_running_process_id Id of the process currently running, 0 if idle.",
		"# TYPE scheduler_running_process_id gauge",
		"scheduler_running_process_id 3",
		"# HELP scheduler_finished_total Count of processes that have finished.",
		"# TYPE scheduler_finished_total counter",
		"scheduler_finished_total 1",
		"# HELP scheduler_process_total Count of processes admitted so far.",
		"# TYPE scheduler_process_total counter",
		"scheduler_process_total 4",
		"# HELP scheduler_avg_wta Weighted turnaround average over finished processes so far.",
		"# TYPE scheduler_avg_wta gauge",
		"scheduler_avg_wta 1.750000",
		"# HELP scheduler_avg_waiting Waiting time average over admitted processes so far.",
		"# TYPE scheduler_avg_waiting gauge",
		"scheduler_avg_waiting 1.500000",
		"# EOF",
		"",
	}, "\n")

	if got != expected {
		t.Fatalf("unexpected metrics output:\nexpected:\n%s\n\nactual:\n%s", expected, got)
	}
}

func TestExporterServeHTTPWritesContentType(t *testing.T) {
	t.Parallel()

	exporter := metrics.NewExporter()
	exporter.Observe(sched.Snapshot{Now: 1})

	recorder := httptest.NewRecorder()
	exporter.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if recorder.Code != http.StatusOK {
		t.Fatalf("unexpected status code: %d", recorder.Code)
	}

	if got := recorder.Header().Get("Content-Type"); got != openMetricsContentType {
		t.Fatalf("unexpected content type: %q", got)
	}
}

func TestExporterWriteToPropagatesWriterErrors(t *testing.T) {
	t.Parallel()

	exporter := metrics.NewExporter()

	_, err := exporter.WriteTo(failingWriter{})
	if err == nil {
		t.Fatal("expected error from WriteTo")
	}

	if !strings.Contains(err.Error(), "write metrics") {
		t.Fatalf("expected write error, got %v", err)
	}
}

func TestExporterZeroValueRendersZeroedGauges(t *testing.T) {
	t.Parallel()

	exporter := metrics.NewExporter()

	data, err := exporter.Render()
	if err != nil {
		t.Fatalf("Render() returned error: %v", err)
	}

	output := string(data)
	if !strings.Contains(output, "scheduler_now_ticks 0") {
		t.Fatalf("expected zeroed now ticks, got %s", output)
	}

	if !strings.Contains(output, "scheduler_running_process_id 0") {
		t.Fatalf("expected zeroed running process id, got %s", output)
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errFailingWriter
}
