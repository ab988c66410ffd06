// Package clock implements the engine's virtual clock: a
// monotonically increasing integer tick counter, advanced exactly
// once per tick-loop iteration and otherwise read-only.
//
// This is deliberately not wall-clock time: scheduling decisions are
// driven by a pure discrete-event tick source, not real sleeps.
package clock

// Clock is a single-threaded monotonic tick counter. It has no
// internal locking: the tick loop is the only writer, in keeping with
// the engine's single-threaded, cooperatively-driven model.
type Clock struct {
	now int
}

// New returns a clock starting at tick 0.
func New() *Clock {
	return &Clock{now: 0}
}

// Now returns the current tick.
func (c *Clock) Now() int {
	return c.now
}

// Advance moves the clock forward by exactly one tick and returns the
// new value.
func (c *Clock) Advance() int {
	c.now++

	return c.now
}
