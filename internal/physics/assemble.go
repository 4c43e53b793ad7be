package physics

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/nlink/internal/dynamo"
	"gonum.org/v1/gonum/mat"
)

// Formulation selects the velocity coupling term used for links below the
// current one.
type Formulation int

const (
	// FormulationLegacy couples link i to a lower link j through
	// M(i)·l[j]·dθi²·sin(θi−θj). It reproduces historical trajectories.
	FormulationLegacy Formulation = iota
	// FormulationLagrangian uses M(j)·l[j]·dθj²·sin(θi−θj), the term obtained
	// from the Lagrangian of the chain. It conserves energy.
	FormulationLagrangian
)

func (f Formulation) String() string {
	switch f {
	case FormulationLegacy:
		return "legacy"
	case FormulationLagrangian:
		return "lagrangian"
	default:
		return fmt.Sprintf("formulation(%d)", int(f))
	}
}

func ParseFormulation(name string) (Formulation, error) {
	switch strings.ToLower(name) {
	case "", "legacy":
		return FormulationLegacy, nil
	case "lagrangian":
		return FormulationLagrangian, nil
	default:
		return 0, fmt.Errorf("unknown formulation: %s", name)
	}
}

// Assemble builds the coupling matrix A and forcing vector b such that
// A·ddθ = b at state x.
func Assemble(p *dynamo.Params, x dynamo.State, f Formulation) (*mat.Dense, *mat.VecDense) {
	n := p.N()
	a := mat.NewDense(n, n, nil)
	b := mat.NewVecDense(n, nil)
	assembleInto(a, b, p, p.SuffixMasses(), x, f)
	return a, b
}

// assembleInto overwrites a and b. suffix[i] must equal p.SuffixMass(i).
func assembleInto(a *mat.Dense, b *mat.VecDense, p *dynamo.Params, suffix []float64, x dynamo.State, f Formulation) {
	n := p.N()
	l := p.Lengths
	g := p.Gravity
	th, dth := x.Theta, x.DTheta

	for i := 0; i < n; i++ {
		mi := suffix[i]
		rhs := 0.0
		for j := 0; j < n; j++ {
			switch {
			case j < i:
				d := th[i] - th[j]
				a.Set(i, j, mi*l[j]*math.Cos(d))
				rhs -= mi * l[j] * dth[j] * dth[j] * math.Sin(d)
			case j == i:
				a.Set(i, i, mi*l[i])
				rhs -= mi * g * math.Sin(th[i])
			default:
				d := th[i] - th[j]
				a.Set(i, j, suffix[j]*l[j]*math.Cos(d))
				if f == FormulationLagrangian {
					rhs -= suffix[j] * l[j] * dth[j] * dth[j] * math.Sin(d)
				} else {
					rhs -= mi * l[j] * dth[i] * dth[i] * math.Sin(d)
				}
			}
		}
		b.SetVec(i, rhs)
	}
}
