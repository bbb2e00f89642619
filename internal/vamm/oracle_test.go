package vamm

import (
	"errors"
	"testing"
)

func TestObservationWriteSameSecondIsNoop(t *testing.T) {
	buf := newObservationBuffer(100)
	buf.write(100, 50)

	if buf.index != 0 {
		t.Fatalf("same-second write must not advance the cursor, index %d", buf.index)
	}
	if got := buf.slots[0].tickCumulative; got != 0 {
		t.Fatalf("same-second write must not change the sample, cumulative %d", got)
	}
}

func TestMeanTickExactEndpoints(t *testing.T) {
	// Tick 0 for the first ten seconds, then tick 100 held constant. The
	// trailing ten-second mean at t=20 is exactly 100.
	buf := newObservationBuffer(0)
	buf.grow(4)
	buf.write(10, 0)
	buf.write(20, 100)

	mean, err := buf.meanTick(20, 10, 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mean != 100 {
		t.Fatalf("got mean tick %d, want 100", mean)
	}
}

func TestMeanTickFloorsTowardNegativeInfinity(t *testing.T) {
	buf := newObservationBuffer(0)
	buf.grow(4)
	buf.write(10, -5)

	// Cumulative moves -5*10 = -50 over the first ten seconds, then -7/s.
	mean, err := buf.meanTick(13, 13, -7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// (-50 - 21) / 13 = -5.46..., floored to -6.
	if mean != -6 {
		t.Fatalf("got mean tick %d, want -6", mean)
	}
}

func TestObserveInterpolatesBetweenSamples(t *testing.T) {
	buf := newObservationBuffer(0)
	buf.grow(4)
	buf.write(10, 0)
	buf.write(30, 100) // cumulative 0 at t=10, 2000 at t=30

	cumulatives, err := buf.observe(30, []uint64{10}, 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Target t=20 sits halfway between stored samples.
	if cumulatives[0] != 1000 {
		t.Fatalf("got cumulative %d, want 1000", cumulatives[0])
	}
}

func TestObserveBeyondHistoryFails(t *testing.T) {
	buf := newObservationBuffer(100)
	buf.grow(2)
	buf.write(110, 10)

	if _, err := buf.observe(110, []uint64{20}, 10); !errors.Is(err, ErrLookbackTooLong) {
		t.Fatalf("expected ErrLookbackTooLong, got %v", err)
	}
}

func TestGrowIsLazyAndMonotonic(t *testing.T) {
	buf := newObservationBuffer(0)
	if got := buf.grow(3); got != 3 {
		t.Fatalf("grow returned %d, want 3", got)
	}
	if got := buf.grow(2); got != 3 {
		t.Fatalf("shrinking grow must be a no-op, got %d", got)
	}
	if buf.cardinality != 1 {
		t.Fatalf("cardinality grows lazily, got %d", buf.cardinality)
	}

	// Cardinality catches up once the cursor wraps.
	buf.write(10, 1)
	if buf.cardinality != 3 {
		t.Fatalf("cardinality after first post-grow write: %d, want 3", buf.cardinality)
	}
}

func TestCircularOverwriteKeepsRecentHistory(t *testing.T) {
	buf := newObservationBuffer(0)
	buf.grow(3)
	buf.write(10, 1)
	buf.write(20, 2)
	buf.write(30, 3) // wraps, overwriting the t=0 sample

	if _, err := buf.observe(30, []uint64{25}, 3); !errors.Is(err, ErrLookbackTooLong) {
		t.Fatalf("overwritten history must be unavailable, got %v", err)
	}
	if _, err := buf.observe(30, []uint64{15}, 3); err != nil {
		t.Fatalf("retained history must remain observable: %v", err)
	}
}
