package geocoding_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stwalsh4118/acquire/internal/geocoding"
	"github.com/stwalsh4118/acquire/internal/geocoding/geocodingtest"
)

type call struct {
	address string
	at      time.Duration
}

// recordingChecker records every lookup with the clock time it happened at.
type recordingChecker struct {
	mu    sync.Mutex
	clock *geocodingtest.ManualClock
	calls []call
}

func (r *recordingChecker) Validate(_ context.Context, address string) geocoding.Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, call{address: address, at: r.clock.Elapsed()})
	return geocoding.Result{Status: geocoding.StatusValid, NormalizedDisplay: address}
}

type delivered struct {
	mu      sync.Mutex
	results []geocoding.Result
	gens    []uint64
}

func (d *delivered) record(gen uint64, _ string, r geocoding.Result) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.results = append(d.results, r)
	d.gens = append(d.gens, gen)
}

func TestDebouncer_OnlyLastEditValidatedAfterQuietWindow(t *testing.T) {
	clock := geocodingtest.NewManualClock()
	checker := &recordingChecker{clock: clock}
	out := &delivered{}
	d := geocoding.NewDebouncer(checker, time.Second, clock, out.record)

	d.Submit("Santa F")
	clock.Advance(200 * time.Millisecond)
	d.Submit("Santa Fe 12")
	clock.Advance(200 * time.Millisecond)
	last := d.Submit("Santa Fe 1234")

	clock.Advance(999 * time.Millisecond)
	assert.Empty(t, checker.calls)

	clock.Advance(time.Millisecond)
	require.Len(t, checker.calls, 1)
	assert.Equal(t, "Santa Fe 1234", checker.calls[0].address)
	assert.GreaterOrEqual(t, checker.calls[0].at, 1400*time.Millisecond)

	clock.Advance(5 * time.Second)
	assert.Len(t, checker.calls, 1)
	require.Len(t, out.gens, 1)
	assert.Equal(t, last, out.gens[0])
}

// blockingChecker waits for its context to end on the first address and
// answers immediately for any other.
type blockingChecker struct {
	blockOn string
	started chan struct{}
}

func (b *blockingChecker) Validate(ctx context.Context, address string) geocoding.Result {
	if address == b.blockOn {
		close(b.started)
		<-ctx.Done()
		return geocoding.Result{Status: geocoding.StatusInvalid}
	}
	return geocoding.Result{Status: geocoding.StatusValid, NormalizedDisplay: address}
}

func TestDebouncer_SupersededInFlightResultIsDropped(t *testing.T) {
	clock := geocodingtest.NewManualClock()
	checker := &blockingChecker{blockOn: "old address", started: make(chan struct{})}
	out := &delivered{}
	d := geocoding.NewDebouncer(checker, time.Second, clock, out.record)

	d.Submit("old address")

	done := make(chan struct{})
	go func() {
		clock.Advance(time.Second)
		close(done)
	}()

	select {
	case <-checker.started:
	case <-time.After(2 * time.Second):
		t.Fatal("first lookup never started")
	}

	latest := d.Submit("new address")
	<-done

	clock.Advance(time.Second)

	out.mu.Lock()
	defer out.mu.Unlock()
	require.Len(t, out.results, 1)
	assert.Equal(t, "new address", out.results[0].NormalizedDisplay)
	assert.Equal(t, latest, out.gens[0])
}

func TestDebouncer_StopCancelsPendingTimer(t *testing.T) {
	clock := geocodingtest.NewManualClock()
	checker := &recordingChecker{clock: clock}
	d := geocoding.NewDebouncer(checker, time.Second, clock, nil)

	d.Submit("Santa Fe 1234")
	d.Stop()
	assert.Equal(t, 0, clock.Pending())

	clock.Advance(2 * time.Second)
	assert.Empty(t, checker.calls)

	d.Submit("after stop")
	clock.Advance(2 * time.Second)
	assert.Empty(t, checker.calls)
}

func TestDebouncer_CancelInvalidatesPending(t *testing.T) {
	clock := geocodingtest.NewManualClock()
	checker := &recordingChecker{clock: clock}
	d := geocoding.NewDebouncer(checker, time.Second, clock, nil)

	first := d.Submit("Santa Fe 1234")
	second := d.Cancel()
	assert.Greater(t, second, first)

	clock.Advance(2 * time.Second)
	assert.Empty(t, checker.calls)

	d.Submit("Corrientes 500")
	clock.Advance(time.Second)
	assert.Len(t, checker.calls, 1)
}
