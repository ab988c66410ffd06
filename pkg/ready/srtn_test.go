package ready

import "testing"

func TestSRTNHeapOrdersByRemainingThenArrivalThenID(t *testing.T) {
	h := NewSRTNHeap()

	h.Insert(3, 10, 0)
	h.Insert(1, 2, 5)
	h.Insert(2, 2, 1)
	h.Insert(4, 10, 0)

	want := []int{2, 1, 3, 4}

	for _, w := range want {
		id, ok := h.PopMin()
		if !ok {
			t.Fatal("PopMin() ok = false, want true")
		}

		if id != w {
			t.Fatalf("PopMin() = %d, want %d", id, w)
		}
	}
}

func TestSRTNHeapPeekMinRemainingDoesNotPop(t *testing.T) {
	h := NewSRTNHeap()

	if _, ok := h.PeekMinRemaining(); ok {
		t.Fatal("PeekMinRemaining() on empty heap should return ok=false")
	}

	h.Insert(1, 4, 0)
	h.Insert(2, 1, 1)

	remaining, ok := h.PeekMinRemaining()
	if !ok || remaining != 1 {
		t.Fatalf("PeekMinRemaining() = (%d, %v), want (1, true)", remaining, ok)
	}

	if h.Len() != 2 {
		t.Fatalf("Len() after peek = %d, want 2 (peek must not pop)", h.Len())
	}

	id, ok := h.PopMin()
	if !ok || id != 2 {
		t.Fatalf("PopMin() = (%d, %v), want (2, true)", id, ok)
	}
}
