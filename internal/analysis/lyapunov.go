package analysis

import (
	"fmt"
	"math"

	"github.com/san-kum/nlink/internal/dynamo"
	"gonum.org/v1/gonum/floats"
)

// LyapunovExponent estimates the largest Lyapunov exponent of sys starting at
// x0. A companion trajectory is offset by perturbation in the angle of the
// first link; after every step the separation is measured and rescaled back
// to perturbation, and the exponent is the mean logarithmic growth rate.
func LyapunovExponent(sys dynamo.System, integ dynamo.Integrator, x0 dynamo.State, dt, duration, perturbation float64) (float64, error) {
	if x0.Len() == 0 {
		return 0, fmt.Errorf("%w: empty state", dynamo.ErrDimensionMismatch)
	}
	if !(dt > 0) || !(duration > 0) || !(perturbation > 0) {
		return 0, fmt.Errorf("%w: dt, duration and perturbation must be positive", dynamo.ErrParameterBounds)
	}

	xp := x0.Clone()
	xp.Theta[0] += perturbation
	return separationRate(sys, integ, x0.Clone(), xp, dt, duration, perturbation)
}

// LyapunovSpectrum returns the separation rate for a perturbation of every
// angle in turn. It is not an orthonormalised spectrum; entry i only shows how
// sensitive the motion is to the initial angle of link i.
func LyapunovSpectrum(sys dynamo.System, integ dynamo.Integrator, x0 dynamo.State, dt, duration, perturbation float64) ([]float64, error) {
	out := make([]float64, x0.Len())
	for i := range out {
		xp := x0.Clone()
		xp.Theta[i] += perturbation
		rate, err := separationRate(sys, integ, x0.Clone(), xp, dt, duration, perturbation)
		if err != nil {
			return nil, fmt.Errorf("link %d: %w", i, err)
		}
		out[i] = rate
	}
	return out, nil
}

func separationRate(sys dynamo.System, integ dynamo.Integrator, x, xp dynamo.State, dt, duration, d0 float64) (float64, error) {
	steps := int(math.Ceil(duration / dt))
	sumLog := 0.0
	flat, flatP := x.Flat(), xp.Flat()

	for k := 0; k < steps; k++ {
		x = integ.Step(sys, x, dt)
		xp = integ.Step(sys, xp, dt)
		if !x.IsValid() || !xp.IsValid() {
			return 0, fmt.Errorf("step %d: %w", k, dynamo.ErrInvalidState)
		}

		flat, flatP = flatInto(flat, x), flatInto(flatP, xp)
		sep := floats.Distance(flat, flatP, 2)
		if sep == 0 {
			continue
		}
		sumLog += math.Log(sep / d0)

		// pull the companion back along the separation direction
		floats.Sub(flatP, flat)
		floats.Scale(d0/sep, flatP)
		floats.Add(flatP, flat)
		n := x.Len()
		copy(xp.Theta, flatP[:n])
		copy(xp.DTheta, flatP[n:])
	}
	return sumLog / (float64(steps) * dt), nil
}

func flatInto(dst []float64, x dynamo.State) []float64 {
	n := x.Len()
	copy(dst[:n], x.Theta)
	copy(dst[n:], x.DTheta)
	return dst
}
