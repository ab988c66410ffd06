// Package sink implements sched.Sink: the event log and metrics
// summary files a run produces, guarded against concurrent writers by
// an advisory file lock.
package sink

import (
	"bufio"
	"errors"
	"fmt"
	"os"

	"github.com/gofrs/flock"

	"github.com/mohamed-moneim/cpusched/pkg/sched"
)

// ErrSinkWrite wraps any underlying file write or flush failure.
var ErrSinkWrite = errors.New("sink: write failed")

const logHeader = "#At time x process y state arr w total z remain y wait k"

// LogSink writes scheduler.log, one line per state transition, and
// scheduler.perf, the four-line final summary. Both files live in the
// same directory and share one lock file, so a supervisor restarting a
// crashed run against the same output directory cannot interleave a
// half-written line from two processes.
type LogSink struct {
	logPath  string
	perfPath string
	lockPath string

	lock *flock.Flock
	log  *os.File
	buf  *bufio.Writer
}

// New creates (truncating) scheduler.log in dir and returns a LogSink
// ready to receive events; scheduler.perf is written later, by
// WriteMetrics. The caller must call Close once the run completes.
func New(dir string) (*LogSink, error) {
	lockPath := dir + "/.scheduler.lock"

	lock := flock.New(lockPath)

	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("%w: acquire lock %s: %w", ErrSinkWrite, lockPath, err)
	}

	if !locked {
		return nil, fmt.Errorf("%w: %s is locked by another scheduler run", ErrSinkWrite, lockPath)
	}

	logPath := dir + "/scheduler.log"

	logFile, err := os.Create(logPath)
	if err != nil {
		_ = lock.Unlock()

		return nil, fmt.Errorf("%w: create %s: %w", ErrSinkWrite, logPath, err)
	}

	return &LogSink{
		logPath:  logPath,
		perfPath: dir + "/scheduler.perf",
		lockPath: lockPath,
		lock:     lock,
		log:      logFile,
		buf:      bufio.NewWriter(logFile),
	}, nil
}

// Close flushes and releases the file lock. It is safe to call once.
func (s *LogSink) Close() error {
	flushErr := s.buf.Flush()
	closeErr := s.log.Close()
	unlockErr := s.lock.Unlock()

	if flushErr != nil {
		return fmt.Errorf("%w: flush %s: %w", ErrSinkWrite, s.logPath, flushErr)
	}

	if closeErr != nil {
		return fmt.Errorf("%w: close %s: %w", ErrSinkWrite, s.logPath, closeErr)
	}

	if unlockErr != nil {
		return fmt.Errorf("%w: release lock %s: %w", ErrSinkWrite, s.lockPath, unlockErr)
	}

	return nil
}

// WriteHeader writes the event log's single header line.
func (s *LogSink) WriteHeader() error {
	return s.writeLine(logHeader)
}

// WriteEvent writes one event log line and flushes immediately, so the
// log is crash-consistent at every tick boundary.
func (s *LogSink) WriteEvent(e sched.Event) error {
	line := fmt.Sprintf(
		"At time %d process %d %s arr %d total %d remain %d wait %d",
		e.Now, e.ProcessID, e.Kind, e.ArrivalTime, e.Runtime, e.RemainingTime, e.WaitingTime,
	)

	if e.Kind == sched.EventFinished {
		line += fmt.Sprintf(" TA %d WTA %.2f", e.Turnaround, e.WeightedTurnaround)
	}

	return s.writeLine(line)
}

func (s *LogSink) writeLine(line string) error {
	if _, err := s.buf.WriteString(line + "\n"); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrSinkWrite, s.logPath, err)
	}

	if err := s.buf.Flush(); err != nil {
		return fmt.Errorf("%w: flush %s: %w", ErrSinkWrite, s.logPath, err)
	}

	return nil
}

// WriteMetrics writes the four-line scheduler.perf summary.
func (s *LogSink) WriteMetrics(m sched.Metrics) error {
	content := fmt.Sprintf(
		"CPU utilization = %.2f%%\nAvg WTA = %.2f\nAvg Waiting = %.2f\nStd WTA = %.2f\n",
		m.CPUUtilization, m.AvgWTA, m.AvgWaiting, m.StdWTA,
	)

	if err := os.WriteFile(s.perfPath, []byte(content), 0o644); err != nil {
		return fmt.Errorf("%w: write %s: %w", ErrSinkWrite, s.perfPath, err)
	}

	return nil
}
