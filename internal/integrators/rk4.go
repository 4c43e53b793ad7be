package integrators

import (
	"github.com/san-kum/nlink/internal/dynamo"
	"gonum.org/v1/gonum/floats"
)

// RK4 is the classical fourth-order Runge-Kutta scheme with a fixed step.
type RK4 struct {
	k1, k2, k3, k4 dynamo.State
	scratch        dynamo.State
}

func NewRK4() *RK4 {
	return &RK4{}
}

func (r *RK4) ensureScratch(n int) {
	if r.k1.Len() != n {
		r.k1 = dynamo.NewState(n)
		r.k2 = dynamo.NewState(n)
		r.k3 = dynamo.NewState(n)
		r.k4 = dynamo.NewState(n)
		r.scratch = dynamo.NewState(n)
	}
}

// Step returns the state one step of dt after x. x is not modified.
func (r *RK4) Step(sys dynamo.System, x dynamo.State, dt float64) dynamo.State {
	n := x.Len()
	r.ensureScratch(n)

	copyState(r.k1, sys.Derive(x))

	stage(r.scratch, x, dt*0.5, r.k1)
	copyState(r.k2, sys.Derive(r.scratch))

	stage(r.scratch, x, dt*0.5, r.k2)
	copyState(r.k3, sys.Derive(r.scratch))

	stage(r.scratch, x, dt, r.k3)
	copyState(r.k4, sys.Derive(r.scratch))

	result := dynamo.NewState(n)
	dt6 := dt / 6.0
	for i := 0; i < n; i++ {
		result.Theta[i] = x.Theta[i] + dt6*(r.k1.Theta[i]+2*r.k2.Theta[i]+2*r.k3.Theta[i]+r.k4.Theta[i])
		result.DTheta[i] = x.DTheta[i] + dt6*(r.k1.DTheta[i]+2*r.k2.DTheta[i]+2*r.k3.DTheta[i]+r.k4.DTheta[i])
	}

	return result
}

// stage writes x + h*k into dst.
func stage(dst, x dynamo.State, h float64, k dynamo.State) {
	floats.AddScaledTo(dst.Theta, x.Theta, h, k.Theta)
	floats.AddScaledTo(dst.DTheta, x.DTheta, h, k.DTheta)
}

func copyState(dst, src dynamo.State) {
	copy(dst.Theta, src.Theta)
	copy(dst.DTheta, src.DTheta)
}
