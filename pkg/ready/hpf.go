// Package ready implements the three policy-specific ready
// structures: a priority-ordered min-heap for HPF, a
// remaining-time-ordered min-heap for SRTN, and a FIFO queue for Round
// Robin. Every structure holds process ids only — never records — so
// the dispatcher always reads live state through the process table.
package ready

import "container/heap"

// hpfItem is the (priority, arrival_time, id) ordering key for a
// single HPF heap entry. A process's priority and arrival_time never
// change after admission, so the key is safe to snapshot at insert
// time.
type hpfItem struct {
	priority int
	arrival  int
	id       int
}

type hpfSlice []hpfItem

func (s hpfSlice) Len() int { return len(s) }

func (s hpfSlice) Less(i, j int) bool {
	if s[i].priority != s[j].priority {
		return s[i].priority < s[j].priority
	}

	if s[i].arrival != s[j].arrival {
		return s[i].arrival < s[j].arrival
	}

	return s[i].id < s[j].id
}

func (s hpfSlice) Swap(i, j int) { s[i], s[j] = s[j], s[i] }

func (s *hpfSlice) Push(x any) {
	*s = append(*s, x.(hpfItem)) //nolint:forcetypeassert // heap.Interface contract
}

func (s *hpfSlice) Pop() any {
	old := *s
	n := len(old)
	item := old[n-1]
	*s = old[:n-1]

	return item
}

// HPFHeap is the min-heap keyed by (priority, arrival_time, id) that
// backs non-preemptive Highest Priority First scheduling.
type HPFHeap struct {
	items hpfSlice
}

// NewHPFHeap returns an empty HPF ready heap.
func NewHPFHeap() *HPFHeap {
	return &HPFHeap{}
}

// Insert admits a process into the heap with its fixed priority and
// arrival time.
func (h *HPFHeap) Insert(id, priority, arrival int) {
	heap.Push(&h.items, hpfItem{priority: priority, arrival: arrival, id: id})
}

// PopMin removes and returns the id with the lowest (priority,
// arrival, id) key. ok is false if the heap is empty.
func (h *HPFHeap) PopMin() (id int, ok bool) {
	if h.items.Len() == 0 {
		return 0, false
	}

	item := heap.Pop(&h.items).(hpfItem) //nolint:forcetypeassert // Push always stores hpfItem

	return item.id, true
}

// Len returns the number of ids currently held.
func (h *HPFHeap) Len() int {
	return h.items.Len()
}
