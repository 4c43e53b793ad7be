package integrators

import "github.com/san-kum/nlink/internal/dynamo"

// Verlet is velocity Verlet. The chain's accelerations depend on the angular
// velocities, so the second evaluation uses the Euler-predicted velocity.
type Verlet struct {
	scratch dynamo.State
}

func NewVerlet() *Verlet {
	return &Verlet{}
}

func (v *Verlet) ensureScratch(n int) {
	if v.scratch.Len() != n {
		v.scratch = dynamo.NewState(n)
	}
}

func (v *Verlet) Step(sys dynamo.System, x dynamo.State, dt float64) dynamo.State {
	n := x.Len()
	v.ensureScratch(n)

	result := dynamo.NewState(n)
	acc := sys.Derive(x).DTheta
	dt2 := dt * dt

	for i := 0; i < n; i++ {
		result.Theta[i] = x.Theta[i] + x.DTheta[i]*dt + 0.5*acc[i]*dt2
		v.scratch.Theta[i] = result.Theta[i]
		v.scratch.DTheta[i] = x.DTheta[i] + acc[i]*dt
	}

	accNew := sys.Derive(v.scratch).DTheta

	halfDt := 0.5 * dt
	for i := 0; i < n; i++ {
		result.DTheta[i] = x.DTheta[i] + (acc[i]+accNew[i])*halfDt
	}

	return result
}
