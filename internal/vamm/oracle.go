package vamm

import (
	"fmt"
)

// observation is one sample of the cumulative tick series. tickCumulative is
// the running sum of tick * secondsElapsed since the buffer was initialized.
type observation struct {
	timestamp      uint64
	tickCumulative int64
	initialized    bool
}

func (o observation) transform(timestamp uint64, tick int) observation {
	elapsed := int64(timestamp - o.timestamp)
	return observation{
		timestamp:      timestamp,
		tickCumulative: o.tickCumulative + int64(tick)*elapsed,
		initialized:    true,
	}
}

// observationBuffer is a fixed-capacity circular buffer of observations.
// Capacity growth is staged through cardinalityNext and only takes effect
// when the write cursor wraps, so written history is never invalidated.
// Timestamps are unix seconds; the uint64 domain does not wrap in practice.
type observationBuffer struct {
	slots           []observation
	index           int
	cardinality     int
	cardinalityNext int
}

func newObservationBuffer(timestamp uint64) *observationBuffer {
	return &observationBuffer{
		slots:           []observation{{timestamp: timestamp, initialized: true}},
		cardinality:     1,
		cardinalityNext: 1,
	}
}

// grow pre-allocates capacity up to next. Slots carry a nonzero sentinel
// timestamp so a later write does not need to resize mid-operation. No-op if
// next does not exceed the current target.
func (b *observationBuffer) grow(next int) int {
	if next <= b.cardinalityNext {
		return b.cardinalityNext
	}
	for i := b.cardinalityNext; i < next; i++ {
		b.slots = append(b.slots, observation{timestamp: 1})
	}
	b.cardinalityNext = next
	return next
}

// write appends a sample for the given timestamp and tick. Writing twice in
// the same second is a no-op. The staged cardinality takes effect when the
// cursor is about to wrap.
func (b *observationBuffer) write(timestamp uint64, tick int) {
	last := b.slots[b.index]
	if last.timestamp == timestamp {
		return
	}

	if b.cardinalityNext > b.cardinality && b.index == b.cardinality-1 {
		b.cardinality = b.cardinalityNext
	}

	b.index = (b.index + 1) % b.cardinality
	b.slots[b.index] = last.transform(timestamp, tick)
}

// observe returns the cumulative tick at each requested lookback. A lookback
// of zero means "as of now". Lookbacks beyond the oldest retained sample fail.
func (b *observationBuffer) observe(now uint64, secondsAgos []uint64, currentTick int) ([]int64, error) {
	out := make([]int64, len(secondsAgos))
	for i, secondsAgo := range secondsAgos {
		cumulative, err := b.observeSingle(now, secondsAgo, currentTick)
		if err != nil {
			return nil, err
		}
		out[i] = cumulative
	}
	return out, nil
}

func (b *observationBuffer) observeSingle(now, secondsAgo uint64, currentTick int) (int64, error) {
	if secondsAgo == 0 {
		last := b.slots[b.index]
		if last.timestamp != now {
			last = last.transform(now, currentTick)
		}
		return last.tickCumulative, nil
	}

	target := now - secondsAgo

	beforeOrAt, atOrAfter, err := b.surroundingObservations(now, target, currentTick)
	if err != nil {
		return 0, err
	}

	switch {
	case beforeOrAt.timestamp == target:
		return beforeOrAt.tickCumulative, nil
	case atOrAfter.timestamp == target:
		return atOrAfter.tickCumulative, nil
	default:
		// Linear interpolation weighted by elapsed time.
		delta := int64(atOrAfter.timestamp - beforeOrAt.timestamp)
		targetDelta := int64(target - beforeOrAt.timestamp)
		return beforeOrAt.tickCumulative +
			(atOrAfter.tickCumulative-beforeOrAt.tickCumulative)/delta*targetDelta, nil
	}
}

// surroundingObservations finds the stored samples straddling target,
// synthesizing the "now" endpoint when target is newer than the last write.
func (b *observationBuffer) surroundingObservations(now, target uint64, currentTick int) (observation, observation, error) {
	beforeOrAt := b.slots[b.index]
	if beforeOrAt.timestamp <= target {
		if beforeOrAt.timestamp == target {
			return beforeOrAt, observation{}, nil
		}
		return beforeOrAt, beforeOrAt.transform(target, currentTick), nil
	}

	oldest := b.slots[(b.index+1)%b.cardinality]
	if !oldest.initialized {
		oldest = b.slots[0]
	}
	if target < oldest.timestamp {
		return observation{}, observation{},
			fmt.Errorf("%w: target %d before oldest sample %d", ErrLookbackTooLong, target, oldest.timestamp)
	}

	return b.binarySearch(target)
}

// binarySearch locates the straddling pair within the circular window. The
// caller has established that target lies inside retained history.
func (b *observationBuffer) binarySearch(target uint64) (observation, observation, error) {
	l := (b.index + 1) % b.cardinality
	r := l + b.cardinality - 1

	for {
		i := (l + r) / 2
		beforeOrAt := b.slots[i%b.cardinality]
		if !beforeOrAt.initialized {
			// Uninitialized pre-grown slot, keep searching higher.
			l = i + 1
			continue
		}
		atOrAfter := b.slots[(i+1)%b.cardinality]

		if beforeOrAt.timestamp > target {
			r = i - 1
			continue
		}
		if target > atOrAfter.timestamp {
			l = i + 1
			continue
		}
		return beforeOrAt, atOrAfter, nil
	}
}

// meanTick computes the arithmetic mean tick over the trailing window,
// flooring toward negative infinity.
func (b *observationBuffer) meanTick(now, window uint64, currentTick int) (int, error) {
	if window == 0 {
		return currentTick, nil
	}
	cumulatives, err := b.observe(now, []uint64{window, 0}, currentTick)
	if err != nil {
		return 0, err
	}
	delta := cumulatives[1] - cumulatives[0]
	mean := delta / int64(window)
	if delta < 0 && delta%int64(window) != 0 {
		mean--
	}
	return int(mean), nil
}
