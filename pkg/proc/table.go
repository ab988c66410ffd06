package proc

import (
	"errors"
	"fmt"
)

// ErrDuplicateID is returned when a descriptor shares an id with an
// already-admitted process.
var ErrDuplicateID = errors.New("proc: duplicate process id")

// Table is the insert-only, authoritative owner of every process
// record ever admitted during a run. Ready structures elsewhere hold
// only ids; the dispatcher always reads the live record through the
// table.
type Table struct {
	byID  map[int]*Record
	order []*Record
}

// NewTable constructs an empty process table.
func NewTable() *Table {
	return &Table{byID: make(map[int]*Record)}
}

// Admit validates and inserts a newly-arrived descriptor, returning
// its fresh Ready-state record. It rejects a descriptor that fails
// Descriptor.Validate or whose id was already admitted.
func (t *Table) Admit(d Descriptor) (*Record, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}

	if _, exists := t.byID[d.ID]; exists {
		return nil, fmt.Errorf("%w: %d", ErrDuplicateID, d.ID)
	}

	rec := newRecord(d)
	t.byID[d.ID] = rec
	t.order = append(t.order, rec)

	return rec, nil
}

// Get returns the live record for id, or false if no such process was
// ever admitted.
func (t *Table) Get(id int) (*Record, bool) {
	rec, ok := t.byID[id]

	return rec, ok
}

// IterAll returns every admitted record in admission order. The slice
// itself is a fresh copy, safe to range over while the table grows,
// but its elements are the table's own *Record pointers — mutating a
// returned record's fields (as the per-tick accounting does) mutates
// the table's copy too.
func (t *Table) IterAll() []*Record {
	out := make([]*Record, len(t.order))
	copy(out, t.order)

	return out
}

// Count returns the number of processes ever admitted.
func (t *Table) Count() int {
	return len(t.order)
}

// AllFinished reports whether every admitted record has reached
// Finished. It is false for an empty table: an empty run is never
// considered complete by virtue of having nothing left to finish.
func (t *Table) AllFinished() bool {
	if len(t.order) == 0 {
		return false
	}

	for _, rec := range t.order {
		if rec.State != Finished {
			return false
		}
	}

	return true
}
