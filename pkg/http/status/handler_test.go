package status_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mohamed-moneim/cpusched/pkg/http/status"
	"github.com/mohamed-moneim/cpusched/pkg/proc"
)

type stubEngine struct {
	now   int
	table *proc.Table
}

func (s *stubEngine) Now() int { return s.now }

func (s *stubEngine) Table() *proc.Table { return s.table }

func newTableWithFinished(t *testing.T, finished, total int) *proc.Table {
	t.Helper()

	table := proc.NewTable()

	for i := 1; i <= total; i++ {
		rec, err := table.Admit(proc.Descriptor{ID: i, ArrivalTime: 0, Runtime: 1, Priority: 0})
		if err != nil {
			t.Fatalf("Admit() error = %v", err)
		}

		if i <= finished {
			rec.State = proc.Finished
		}
	}

	return table
}

func TestHandlerReturnsSnapshot(t *testing.T) {
	t.Parallel()

	engine := &stubEngine{now: 12, table: newTableWithFinished(t, 2, 3)}
	handler := status.NewHandler(engine)

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/healthz", nil)

	handler.ServeHTTP(recorder, request)

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200 OK, got %d", recorder.Code)
	}

	if got := recorder.Header().Get("Content-Type"); got != "application/json" {
		t.Fatalf("expected application/json content type, got %q", got)
	}

	var snapshot status.Snapshot

	if err := json.Unmarshal(recorder.Body.Bytes(), &snapshot); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if snapshot.Now != 12 {
		t.Fatalf("expected now 12, got %d", snapshot.Now)
	}

	if snapshot.ProcessCount != 3 {
		t.Fatalf("expected processCount 3, got %d", snapshot.ProcessCount)
	}

	if snapshot.FinishedCount != 2 {
		t.Fatalf("expected finishedCount 2, got %d", snapshot.FinishedCount)
	}
}

func TestHandlerWithoutEngineReturnsServiceUnavailable(t *testing.T) {
	t.Parallel()

	handler := status.NewHandler(nil)

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/healthz", nil)

	handler.ServeHTTP(recorder, request)

	if recorder.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 Service Unavailable, got %d", recorder.Code)
	}
}
