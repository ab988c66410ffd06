// Package workload provides the concrete sched.Source implementations:
// a parser for the tab-separated workload file format,
// and an HTTP client standing in for a remote workload generator.
package workload

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/mohamed-moneim/cpusched/pkg/proc"
)

// ErrMalformedLine is returned for a data line that does not have
// exactly four integer fields. Fields are split on any run of
// whitespace, so tabs and spaces are both accepted as separators.
var ErrMalformedLine = errors.New("workload: malformed line")

// ErrDuplicateID is returned when a workload file admits the same
// process id twice.
var ErrDuplicateID = errors.New("workload: duplicate process id")

// FileSource replays the descriptors parsed from a workload file, in
// non-decreasing arrival-time order with ties broken by ascending id —
// the same order the dispatcher admits simultaneous arrivals in, so a
// fixture exercising a tie is unambiguous.
type FileSource struct {
	descs []proc.Descriptor
	pos   int
}

// NewFileSource opens path, parses it, and returns a ready-to-drain
// Source. Parsing happens entirely here, before the clock starts, so
// a malformed workload fails fast rather than surfacing mid-run.
func NewFileSource(path string) (*FileSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("workload: open %s: %w", path, err)
	}
	defer f.Close()

	descs, err := parseWorkload(f)
	if err != nil {
		return nil, fmt.Errorf("workload: parse %s: %w", path, err)
	}

	return &FileSource{descs: descs}, nil
}

// NewFileSourceFromReader parses a workload from an already-open
// reader, for tests and for callers that already have the file content
// in memory.
func NewFileSourceFromReader(r io.Reader) (*FileSource, error) {
	descs, err := parseWorkload(r)
	if err != nil {
		return nil, fmt.Errorf("workload: parse: %w", err)
	}

	return &FileSource{descs: descs}, nil
}

// Next returns the next descriptor in arrival order, or ok=false once
// every descriptor has been returned.
func (s *FileSource) Next() (proc.Descriptor, bool, error) {
	if s.pos >= len(s.descs) {
		return proc.Descriptor{}, false, nil
	}

	d := s.descs[s.pos]
	s.pos++

	return d, true, nil
}

func parseWorkload(r io.Reader) ([]proc.Descriptor, error) {
	var descs []proc.Descriptor

	seenIDs := make(map[int]int) // id -> line it was first seen on

	scanner := bufio.NewScanner(r)
	lineNo := 0

	for scanner.Scan() {
		lineNo++

		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		d, err := parseLine(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}

		if err := d.Validate(); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}

		if first, ok := seenIDs[d.ID]; ok {
			return nil, fmt.Errorf("line %d: %w: %d (first seen on line %d)", lineNo, ErrDuplicateID, d.ID, first)
		}

		seenIDs[d.ID] = lineNo

		descs = append(descs, d)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}

	sort.SliceStable(descs, func(i, j int) bool {
		if descs[i].ArrivalTime != descs[j].ArrivalTime {
			return descs[i].ArrivalTime < descs[j].ArrivalTime
		}

		return descs[i].ID < descs[j].ID
	})

	return descs, nil
}

func parseLine(line string) (proc.Descriptor, error) {
	fields := strings.Fields(line)
	if len(fields) != 4 {
		return proc.Descriptor{}, fmt.Errorf("%w: want 4 tab-separated fields, got %d", ErrMalformedLine, len(fields))
	}

	values := make([]int, 4)

	for i, field := range fields {
		n, err := strconv.Atoi(field)
		if err != nil {
			return proc.Descriptor{}, fmt.Errorf("%w: field %d (%q) is not an integer", ErrMalformedLine, i+1, field)
		}

		values[i] = n
	}

	return proc.Descriptor{
		ID:          values[0],
		ArrivalTime: values[1],
		Runtime:     values[2],
		Priority:    values[3],
	}, nil
}
