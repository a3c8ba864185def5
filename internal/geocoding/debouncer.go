package geocoding

import (
	"context"
	"sync"
	"time"
)

// Timer is a pending callback that can be stopped.
type Timer interface {
	Stop() bool
}

// Clock schedules callbacks. Tests substitute a manual clock.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realClock struct{}

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// RealClock returns a Clock backed by the time package.
func RealClock() Clock {
	return realClock{}
}

// ResultFunc receives a validation result tagged with the generation of the
// submission that produced it.
type ResultFunc func(generation uint64, address string, result Result)

// Debouncer runs a Checker only after the input has been quiet for the
// configured delay. Every Submit supersedes the previous one: the pending
// timer is stopped, an in-flight lookup is cancelled, and a result whose
// generation is no longer current is dropped.
type Debouncer struct {
	mu       sync.Mutex
	checker  Checker
	clock    Clock
	delay    time.Duration
	onResult ResultFunc

	generation uint64
	timer      Timer
	cancel     context.CancelFunc
	stopped    bool
}

// NewDebouncer creates a Debouncer. onResult is called at most once per
// current generation, from the timer goroutine.
func NewDebouncer(checker Checker, delay time.Duration, clock Clock, onResult ResultFunc) *Debouncer {
	if clock == nil {
		clock = RealClock()
	}
	return &Debouncer{
		checker:  checker,
		clock:    clock,
		delay:    delay,
		onResult: onResult,
	}
}

// Submit schedules validation of address and returns its generation.
// After Stop it is a no-op and returns the last generation.
func (d *Debouncer) Submit(address string) uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return d.generation
	}

	d.supersedeLocked()
	gen := d.generation
	d.timer = d.clock.AfterFunc(d.delay, func() { d.fire(gen, address) })
	return gen
}

// Cancel drops any pending or in-flight validation without scheduling a
// new one and returns the new generation.
func (d *Debouncer) Cancel() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.supersedeLocked()
	return d.generation
}

// Stop cancels pending work permanently.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.supersedeLocked()
	d.stopped = true
}

// Generation returns the current generation.
func (d *Debouncer) Generation() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.generation
}

func (d *Debouncer) supersedeLocked() {
	d.generation++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
}

func (d *Debouncer) fire(gen uint64, address string) {
	d.mu.Lock()
	if gen != d.generation || d.stopped {
		d.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	d.cancel = cancel
	d.timer = nil
	d.mu.Unlock()

	result := d.checker.Validate(ctx, address)
	cancel()

	d.mu.Lock()
	current := gen == d.generation && !d.stopped
	if current {
		d.cancel = nil
	}
	d.mu.Unlock()

	if current && d.onResult != nil {
		d.onResult(gen, address, result)
	}
}
