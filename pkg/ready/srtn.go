package ready

import "container/heap"

// srtnItem is the (remaining_time, arrival_time, id) ordering key for
// a single SRTN heap entry. A Ready or Stopped process's
// remaining_time does not change until it is dispatched again, so the
// key is safe to snapshot at insert time.
type srtnItem struct {
	remaining int
	arrival   int
	id        int
}

type srtnSlice []srtnItem

func (s srtnSlice) Len() int { return len(s) }

func (s srtnSlice) Less(i, j int) bool {
	if s[i].remaining != s[j].remaining {
		return s[i].remaining < s[j].remaining
	}

	if s[i].arrival != s[j].arrival {
		return s[i].arrival < s[j].arrival
	}

	return s[i].id < s[j].id
}

func (s srtnSlice) Swap(i, j int) { s[i], s[j] = s[j], s[i] }

func (s *srtnSlice) Push(x any) {
	*s = append(*s, x.(srtnItem)) //nolint:forcetypeassert // heap.Interface contract
}

func (s *srtnSlice) Pop() any {
	old := *s
	n := len(old)
	item := old[n-1]
	*s = old[:n-1]

	return item
}

// SRTNHeap is the min-heap keyed by (remaining_time, arrival_time, id)
// that backs Shortest Remaining Time Next scheduling.
type SRTNHeap struct {
	items srtnSlice
}

// NewSRTNHeap returns an empty SRTN ready heap.
func NewSRTNHeap() *SRTNHeap {
	return &SRTNHeap{}
}

// Insert admits or re-admits a process with its current remaining
// time and fixed arrival time.
func (h *SRTNHeap) Insert(id, remaining, arrival int) {
	heap.Push(&h.items, srtnItem{remaining: remaining, arrival: arrival, id: id})
}

// PopMin removes and returns the id with the lowest (remaining,
// arrival, id) key. ok is false if the heap is empty.
func (h *SRTNHeap) PopMin() (id int, ok bool) {
	if h.items.Len() == 0 {
		return 0, false
	}

	item := heap.Pop(&h.items).(srtnItem) //nolint:forcetypeassert // Push always stores srtnItem

	return item.id, true
}

// PeekMinRemaining returns the remaining_time of the heap's minimum
// entry without popping it, so the dispatcher can compare it against
// the running process without disturbing the heap. ok is false if the
// heap is empty.
func (h *SRTNHeap) PeekMinRemaining() (remaining int, ok bool) {
	if h.items.Len() == 0 {
		return 0, false
	}

	return h.items[0].remaining, true
}

// Len returns the number of ids currently held.
func (h *SRTNHeap) Len() int {
	return h.items.Len()
}
