package app

import "time"

// Clock supplies monotonic time and blocking delays to the Pacer.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

type systemClock struct{}

// time.Now carries a monotonic reading, so Sub between two values is
// immune to wall-clock adjustments.
func (systemClock) Now() time.Time        { return time.Now() }
func (systemClock) Sleep(d time.Duration) { time.Sleep(d) }

// SystemClock is the real clock.
var SystemClock Clock = systemClock{}

// Pacer spaces capture attempts so that the start of an attempt is at least
// one interval after the start of the last attempt that produced a frame.
// Each interval is measured from that single previous start; drift is never
// carried over.
type Pacer struct {
	clock    Clock
	interval time.Duration

	previous time.Time
	current  time.Time
}

// NewPacer creates a pacer targeting interval between capture starts.
func NewPacer(interval time.Duration, clock Clock) *Pacer {
	if clock == nil {
		clock = SystemClock
	}
	return &Pacer{clock: clock, interval: interval}
}

// Begin waits for the next slot, then records and returns the start of the
// current capture attempt. The first attempt never waits.
func (p *Pacer) Begin() (time.Time, time.Duration) {
	waited := p.WaitForNextSlot(p.previous, p.clock.Now(), p.interval)
	p.current = p.clock.Now()
	return p.current, waited
}

// WaitForNextSlot blocks for whatever remains of target after the time
// elapsed between previousStart and currentStart. A zero previousStart
// never waits. It returns the time slept.
func (p *Pacer) WaitForNextSlot(previousStart, currentStart time.Time, target time.Duration) time.Duration {
	if previousStart.IsZero() {
		return 0
	}
	elapsed := currentStart.Sub(previousStart)
	if elapsed >= target {
		return 0
	}
	wait := target - elapsed
	p.clock.Sleep(wait)
	return wait
}

// Commit makes the current attempt's start the reference for the next slot.
// Call it once the attempt's frame has been sent; skipped attempts are
// never committed.
func (p *Pacer) Commit() {
	p.previous = p.current
}

// Previous returns the start of the last committed attempt, zero before the
// first frame.
func (p *Pacer) Previous() time.Time {
	return p.previous
}
