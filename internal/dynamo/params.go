package dynamo

import "fmt"

// StandardGravity is the gravitational acceleration used by default, in m/s².
const StandardGravity = 9.80665

// Params are the physical parameters of an N-link chain. Index 0 is the link
// attached to the pivot.
//
// Params are read-only once built by NewParams: a Chain and every run of an
// ensemble may share one value, and the slices must not be written through.
// Build a new Params to change them.
type Params struct {
	Masses  []float64
	Lengths []float64
	Gravity float64
}

// NewParams validates and copies the given parameters.
func NewParams(masses, lengths []float64, gravity float64) (*Params, error) {
	if len(masses) == 0 {
		return nil, fmt.Errorf("%w: chain needs at least one link", ErrParameterBounds)
	}
	if len(masses) != len(lengths) {
		return nil, fmt.Errorf("%w: %d masses but %d lengths", ErrDimensionMismatch, len(masses), len(lengths))
	}
	for i := range masses {
		if !(masses[i] > 0) {
			return nil, fmt.Errorf("%w: mass[%d] must be positive, got %g", ErrParameterBounds, i, masses[i])
		}
		if !(lengths[i] > 0) {
			return nil, fmt.Errorf("%w: length[%d] must be positive, got %g", ErrParameterBounds, i, lengths[i])
		}
	}
	if !(gravity > 0) {
		return nil, fmt.Errorf("%w: gravity must be positive, got %g", ErrParameterBounds, gravity)
	}

	p := &Params{
		Masses:  make([]float64, len(masses)),
		Lengths: make([]float64, len(lengths)),
		Gravity: gravity,
	}
	copy(p.Masses, masses)
	copy(p.Lengths, lengths)
	return p, nil
}

func (p *Params) N() int { return len(p.Masses) }

// SuffixMass returns the sum of Masses[i:], accumulated front to back.
func (p *Params) SuffixMass(i int) float64 {
	total := 0.0
	for k := i; k < len(p.Masses); k++ {
		total += p.Masses[k]
	}
	return total
}

// SuffixMasses returns SuffixMass(i) for every i.
func (p *Params) SuffixMasses() []float64 {
	out := make([]float64, len(p.Masses))
	for i := range out {
		out[i] = p.SuffixMass(i)
	}
	return out
}

func (p *Params) TotalLength() float64 {
	total := 0.0
	for _, l := range p.Lengths {
		total += l
	}
	return total
}
