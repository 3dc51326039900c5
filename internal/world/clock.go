package world

import (
	"time"

	"github.com/hexforge/hexgrid/internal/gate"
)

// Clock is a tick-driven scheduler. Delays are rounded up to whole ticks and
// a callback never fires during the tick it was scheduled in. All access is
// from the game loop goroutine.
type Clock struct {
	tickRate time.Duration
	now      uint64
	next     gate.Token
	timers   map[gate.Token]*timer
	order    []gate.Token
}

type timer struct {
	due uint64
	fn  func()
}

func NewClock(tickRate time.Duration) *Clock {
	if tickRate <= 0 {
		tickRate = 200 * time.Millisecond
	}
	return &Clock{
		tickRate: tickRate,
		timers:   make(map[gate.Token]*timer),
	}
}

// After schedules fn to run once, delay from now.
func (c *Clock) After(delay time.Duration, fn func()) gate.Token {
	ticks := uint64(1)
	if delay > 0 {
		ticks = uint64((delay + c.tickRate - 1) / c.tickRate)
	}
	c.next++
	c.timers[c.next] = &timer{due: c.now + ticks, fn: fn}
	c.order = append(c.order, c.next)
	return c.next
}

func (c *Clock) Cancel(t gate.Token) {
	delete(c.timers, t)
}

// Advance moves the clock one tick and runs every callback now due, in the
// order they were scheduled. Callbacks scheduled from inside a callback wait
// for a later tick.
func (c *Clock) Advance() {
	c.now++
	now := c.now
	var fire []func()
	kept := c.order[:0]
	for _, tok := range c.order {
		tm, ok := c.timers[tok]
		if !ok {
			continue
		}
		if tm.due <= now {
			delete(c.timers, tok)
			fire = append(fire, tm.fn)
			continue
		}
		kept = append(kept, tok)
	}
	c.order = kept
	for _, fn := range fire {
		fn()
	}
}

// Now returns the number of ticks advanced so far.
func (c *Clock) Now() uint64 { return c.now }

// Pending returns the number of scheduled callbacks.
func (c *Clock) Pending() int { return len(c.timers) }
