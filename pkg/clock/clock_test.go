package clock

import "testing"

func TestNewStartsAtZero(t *testing.T) {
	c := New()

	if got := c.Now(); got != 0 {
		t.Fatalf("Now() = %d, want 0", got)
	}
}

func TestAdvance(t *testing.T) {
	c := New()

	for want := 1; want <= 5; want++ {
		if got := c.Advance(); got != want {
			t.Fatalf("Advance() = %d, want %d", got, want)
		}

		if got := c.Now(); got != want {
			t.Fatalf("Now() after Advance() = %d, want %d", got, want)
		}
	}
}
