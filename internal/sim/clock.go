package sim

// Clock is the logical time source driving a replay. The engine reads it
// through its Now hook; advance operations in the script move it forward.
type Clock struct {
	now uint64
}

func NewClock(start uint64) *Clock {
	return &Clock{now: start}
}

func (c *Clock) Now() uint64 {
	return c.now
}

func (c *Clock) Advance(seconds uint64) {
	c.now += seconds
}
