package sim

// Clock counts integration steps of a fixed size. Elapsed time is derived from
// the step count so it never accumulates rounding error.
type Clock struct {
	Step int
	Dt   float64
}

func (c Clock) Time() float64 { return float64(c.Step) * c.Dt }

func (c *Clock) Tick() { c.Step++ }

// Done reports whether the elapsed time has reached tlim.
func (c Clock) Done(tlim float64) bool { return c.Time() >= tlim }
