package physics

import (
	"math"

	"github.com/san-kum/nlink/internal/dynamo"
)

// Pendulum is the closed-form simple pendulum, ddθ = −(g/l)·sin θ. It is the
// N = 1 special case of Chain and serves as its reference.
type Pendulum struct {
	Mass    float64
	Length  float64
	Gravity float64
}

func NewPendulum() *Pendulum {
	return &Pendulum{
		Mass:    1.0,
		Length:  1.0,
		Gravity: dynamo.StandardGravity,
	}
}

func (p *Pendulum) Dim() int { return 1 }

func (p *Pendulum) Derive(x dynamo.State) dynamo.State {
	return dynamo.State{
		Theta:  []float64{x.DTheta[0]},
		DTheta: []float64{-p.Gravity / p.Length * math.Sin(x.Theta[0])},
	}
}

func (p *Pendulum) Energy(x dynamo.State) float64 {
	// KE = 0.5 * m * (L*omega)^2
	// PE = -m * g * L * cos(theta), zero at the pivot
	v := p.Length * x.DTheta[0]
	ke := 0.5 * p.Mass * v * v
	pe := -p.Mass * p.Gravity * p.Length * math.Cos(x.Theta[0])
	return ke + pe
}

// SmallAngle returns θ(t) of the linearized pendulum released at rest from θ0.
func (p *Pendulum) SmallAngle(theta0, t float64) float64 {
	return theta0 * math.Cos(math.Sqrt(p.Gravity/p.Length)*t)
}
