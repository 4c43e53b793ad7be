package physics

import (
	"math"

	"github.com/san-kum/nlink/internal/dynamo"
	"gonum.org/v1/gonum/mat"
)

// Chain implements an N-link planar pendulum of point masses on rigid
// massless rods. State: Theta[i], DTheta[i] for link i counted from the pivot.
type Chain struct {
	params      *dynamo.Params
	formulation Formulation
	suffix      []float64

	a      *mat.Dense
	b      *mat.VecDense
	solver Solver
}

func NewChain(p *dynamo.Params, f Formulation) *Chain {
	n := p.N()
	return &Chain{
		params:      p,
		formulation: f,
		suffix:      p.SuffixMasses(),
		a:           mat.NewDense(n, n, nil),
		b:           mat.NewVecDense(n, nil),
	}
}

func (c *Chain) Dim() int                 { return c.params.N() }
func (c *Chain) Params() *dynamo.Params   { return c.params }
func (c *Chain) Formulation() Formulation { return c.formulation }

// Derive returns dX/dt: the angle slot is the current angular velocity and the
// velocity slot is the solution of the coupling system.
func (c *Chain) Derive(x dynamo.State) dynamo.State {
	ddth, _, _ := c.accelerations(x)

	out := dynamo.NewState(c.Dim())
	copy(out.Theta, x.DTheta)
	for i := range out.DTheta {
		out.DTheta[i] = ddth.AtVec(i)
	}
	return out
}

// Accelerations returns the angular accelerations at x along with any solver
// diagnostic.
func (c *Chain) Accelerations(x dynamo.State) ([]float64, error) {
	ddth, _, err := c.accelerations(x)
	return mat.Col(nil, 0, ddth), err
}

// Diagnose returns the condition number of the coupling matrix at x and the
// solver error, if any.
func (c *Chain) Diagnose(x dynamo.State) (float64, error) {
	_, cond, err := c.accelerations(x)
	return cond, err
}

func (c *Chain) accelerations(x dynamo.State) (*mat.VecDense, float64, error) {
	assembleInto(c.a, c.b, c.params, c.suffix, x, c.formulation)
	return c.solver.Solve(c.a, c.b)
}

// Derivative evaluates the dynamics once for the given parameters, without
// keeping any workspace around.
func Derivative(p *dynamo.Params, x dynamo.State, f Formulation) dynamo.State {
	return NewChain(p, f).Derive(x)
}

// Positions accumulates the Cartesian position of every mass from the pivot
// at the origin, with y pointing up.
func (c *Chain) Positions(x dynamo.State) []dynamo.Point {
	return Positions(c.params, x)
}

func Positions(p *dynamo.Params, x dynamo.State) []dynamo.Point {
	out := make([]dynamo.Point, p.N())
	px, py := 0.0, 0.0
	for i, l := range p.Lengths {
		px += l * math.Sin(x.Theta[i])
		py -= l * math.Cos(x.Theta[i])
		out[i] = dynamo.Point{X: px, Y: py}
	}
	return out
}

// Energy is kinetic plus potential energy with zero potential at the pivot.
func (c *Chain) Energy(x dynamo.State) float64 {
	ke, pe := Energies(c.params, x)
	return ke + pe
}

// Energies returns kinetic and potential energy separately.
func Energies(p *dynamo.Params, x dynamo.State) (float64, float64) {
	var ke, pe float64
	py, vx, vy := 0.0, 0.0, 0.0
	for i, l := range p.Lengths {
		s, c := math.Sincos(x.Theta[i])
		py -= l * c
		vx += l * c * x.DTheta[i]
		vy += l * s * x.DTheta[i]

		m := p.Masses[i]
		ke += 0.5 * m * (vx*vx + vy*vy)
		pe += m * p.Gravity * py
	}
	return ke, pe
}
