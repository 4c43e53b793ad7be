package dynamo

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// State holds the generalized coordinates of a chain: one angle and one
// angular velocity per link. Angles are measured from the downward vertical
// and are never wrapped.
type State struct {
	Theta  []float64
	DTheta []float64
}

func NewState(n int) State {
	return State{
		Theta:  make([]float64, n),
		DTheta: make([]float64, n),
	}
}

func (s State) Len() int { return len(s.Theta) }

func (s State) Clone() State {
	c := NewState(len(s.Theta))
	copy(c.Theta, s.Theta)
	copy(c.DTheta, s.DTheta)
	return c
}

func (s State) IsValid() bool {
	for i := range s.Theta {
		if math.IsNaN(s.Theta[i]) || math.IsInf(s.Theta[i], 0) {
			return false
		}
	}
	for i := range s.DTheta {
		if math.IsNaN(s.DTheta[i]) || math.IsInf(s.DTheta[i], 0) {
			return false
		}
	}
	return true
}

func (s State) Norm() float64 {
	return math.Hypot(floats.Norm(s.Theta, 2), floats.Norm(s.DTheta, 2))
}

// Flat lays the state out as [theta0..thetaN-1, dtheta0..dthetaN-1].
func (s State) Flat() []float64 {
	out := make([]float64, 0, 2*len(s.Theta))
	out = append(out, s.Theta...)
	return append(out, s.DTheta...)
}

func StateFromFlat(v []float64) (State, error) {
	if len(v) == 0 || len(v)%2 != 0 {
		return State{}, fmt.Errorf("%w: flat state of length %d", ErrDimensionMismatch, len(v))
	}
	n := len(v) / 2
	s := NewState(n)
	copy(s.Theta, v[:n])
	copy(s.DTheta, v[n:])
	return s, nil
}

// AddStates returns a+b slot by slot. Both operands must have the same length.
func AddStates(a, b State) State {
	out := NewState(len(a.Theta))
	floats.AddTo(out.Theta, a.Theta, b.Theta)
	floats.AddTo(out.DTheta, a.DTheta, b.DTheta)
	return out
}

// ScaleState returns k*s slot by slot.
func ScaleState(k float64, s State) State {
	out := NewState(len(s.Theta))
	floats.ScaleTo(out.Theta, k, s.Theta)
	floats.ScaleTo(out.DTheta, k, s.DTheta)
	return out
}

// Point is a Cartesian position in the plane of the chain.
type Point struct {
	X, Y float64
}

type System interface {
	Derive(x State) State
	Dim() int
}

type Hamiltonian interface {
	Energy(x State) float64
}

// Framer maps a state to the position of every mass, pivot excluded.
type Framer interface {
	Positions(x State) []Point
}

// Diagnoser reports the conditioning of the instantaneous linear system.
type Diagnoser interface {
	Diagnose(x State) (float64, error)
}

type Integrator interface {
	Step(sys System, x State, dt float64) State
}

type Metric interface {
	Name() string
	Observe(snap Snapshot)
	Value() float64
	Reset()
}

type Observer interface {
	OnSnapshot(snap Snapshot) error
}

// Snapshot is what the simulation loop hands to renderers and loggers at
// every cadence boundary.
type Snapshot struct {
	Step      int
	Time      float64
	State     State
	Positions []Point
	Energy    float64
}

// Frame returns the chain polyline starting at the pivot.
func (s Snapshot) Frame() []Point {
	out := make([]Point, 0, len(s.Positions)+1)
	out = append(out, Point{})
	return append(out, s.Positions...)
}

type Config struct {
	Dt                float64
	Duration          float64
	Cadence           int
	ValidateState     bool
	CheckConditioning bool
}

func DefaultConfig() Config {
	return Config{
		Dt:            0.01,
		Duration:      100.0,
		Cadence:       10,
		ValidateState: true,
	}
}

type Result struct {
	Snapshots   []Snapshot
	Final       State
	Metrics     map[string]float64
	EnergyDrift float64
	StepsTaken  int
	Errors      []error
	Warnings    []error
}

// Times returns the elapsed time of every recorded snapshot.
func (r *Result) Times() []float64 {
	out := make([]float64, len(r.Snapshots))
	for i, s := range r.Snapshots {
		out[i] = s.Time
	}
	return out
}

// Failed reports whether the run stopped on a numerical failure.
func (r *Result) Failed() bool { return len(r.Errors) > 0 }
