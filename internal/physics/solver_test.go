package physics

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/nlink/internal/dynamo"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

func TestSolveWellConditioned(t *testing.T) {
	a := mat.NewDense(3, 3, []float64{
		4, 1, 0,
		1, 3, 1,
		0, 1, 2,
	})
	b := mat.NewVecDense(3, []float64{1, 2, 3})

	x, cond, err := Solve(a, b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cond < 1 {
		t.Errorf("expected condition number >= 1, got %v", cond)
	}

	var check mat.VecDense
	check.MulVec(a, x)
	if !floats.EqualApprox(check.RawVector().Data, []float64{1, 2, 3}, 1e-12) {
		t.Errorf("A*x = %v, expected [1 2 3]", check.RawVector().Data)
	}
}

func TestSolveSingular(t *testing.T) {
	a := mat.NewDense(2, 2, []float64{1, 2, 2, 4})
	b := mat.NewVecDense(2, []float64{1, 1})

	x, _, err := Solve(a, b)
	if !errors.Is(err, dynamo.ErrSingular) {
		t.Fatalf("expected ErrSingular, got %v", err)
	}
	for i := 0; i < x.Len(); i++ {
		if !math.IsNaN(x.AtVec(i)) {
			t.Errorf("expected NaN at %d, got %v", i, x.AtVec(i))
		}
	}
}

func TestSolveIllConditioned(t *testing.T) {
	a := mat.NewDense(2, 2, []float64{1, 0, 0, 1e-17})
	b := mat.NewVecDense(2, []float64{1, 1e-17})

	x, cond, err := Solve(a, b)
	if !errors.Is(err, dynamo.ErrIllConditioned) {
		t.Fatalf("expected ErrIllConditioned, got %v", err)
	}
	if cond <= mat.ConditionTolerance {
		t.Errorf("expected condition number above tolerance, got %v", cond)
	}
	if !floats.EqualApprox(x.RawVector().Data, []float64{1, 1}, 1e-9) {
		t.Errorf("expected best-effort solution [1 1], got %v", x.RawVector().Data)
	}
}

func TestSolveNonFiniteInput(t *testing.T) {
	a := mat.NewDense(1, 1, []float64{math.Inf(1)})
	b := mat.NewVecDense(1, []float64{1})

	x, _, err := Solve(a, b)
	if !errors.Is(err, dynamo.ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
	if !math.IsNaN(x.AtVec(0)) {
		t.Errorf("expected NaN, got %v", x.AtVec(0))
	}
}

func TestSolverReuse(t *testing.T) {
	var s Solver
	for k := 1; k <= 3; k++ {
		a := mat.NewDense(2, 2, []float64{float64(k), 0, 0, 2})
		b := mat.NewVecDense(2, []float64{float64(k), 4})
		x, _, err := s.Solve(a, b)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if x.AtVec(0) != 1 || x.AtVec(1) != 2 {
			t.Errorf("iteration %d: expected [1 2], got %v", k, x.RawVector().Data)
		}
	}
}

func TestSolveTinyMassesNotSingular(t *testing.T) {
	const n = 30
	unit := make([]float64, n)
	tiny := make([]float64, n)
	lengths := make([]float64, n)
	for i := range unit {
		unit[i], tiny[i], lengths[i] = 1, 1e-12, 1
	}
	x := dynamo.NewState(n)
	for i := range x.Theta {
		x.Theta[i] = 0.3
	}

	want, err := NewChain(mustParams(t, unit, lengths, dynamo.StandardGravity), FormulationLegacy).Accelerations(x)
	if err != nil {
		t.Fatalf("unit masses: %v", err)
	}
	got, err := NewChain(mustParams(t, tiny, lengths, dynamo.StandardGravity), FormulationLegacy).Accelerations(x)
	if errors.Is(err, dynamo.ErrSingular) {
		t.Fatalf("uniformly tiny masses reported singular")
	}
	if err != nil && !errors.Is(err, dynamo.ErrIllConditioned) {
		t.Fatalf("unexpected error: %v", err)
	}
	if !floats.EqualApprox(got, want, 1e-6) {
		t.Errorf("scaling every mass changed the accelerations: got %v, expected %v", got[:3], want[:3])
	}
}
