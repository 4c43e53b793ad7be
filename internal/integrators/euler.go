package integrators

import "github.com/san-kum/nlink/internal/dynamo"

type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Step(sys dynamo.System, x dynamo.State, dt float64) dynamo.State {
	return dynamo.AddStates(x, dynamo.ScaleState(dt, sys.Derive(x)))
}
