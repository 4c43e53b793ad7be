package physics

import (
	"fmt"
	"math"

	"github.com/san-kum/nlink/internal/dynamo"
	"gonum.org/v1/gonum/mat"
)

// Solver solves the coupling system with an LU decomposition with partial
// pivoting. It reuses its factorization storage between calls.
type Solver struct {
	lu mat.LU
}

// Solve returns x with A·x = b and the condition number of A.
//
// A singular matrix yields an all-NaN x and ErrSingular so that the failure
// propagates like any other non-finite value. An ill-conditioned matrix yields
// the best-effort x together with ErrIllConditioned.
func (s *Solver) Solve(a mat.Matrix, b mat.Vector) (*mat.VecDense, float64, error) {
	n, _ := a.Dims()
	x := mat.NewVecDense(n, nil)

	if !finiteMatrix(a) || !finiteVector(b) {
		fillNaN(x)
		return x, math.Inf(1), fmt.Errorf("%w: non-finite coupling system", dynamo.ErrInvalidState)
	}

	s.lu.Factorize(a)
	// the determinant itself underflows for small well-conditioned matrices
	if logDet, _ := s.lu.LogDet(); math.IsInf(logDet, -1) {
		fillNaN(x)
		return x, math.Inf(1), dynamo.ErrSingular
	}

	cond := s.lu.Cond()
	if err := s.lu.SolveVecTo(x, false, b); err != nil {
		if _, ok := err.(mat.Condition); ok && !math.IsInf(cond, 1) {
			return x, cond, fmt.Errorf("%w (cond=%.3g): %v", dynamo.ErrIllConditioned, cond, err)
		}
		fillNaN(x)
		return x, cond, fmt.Errorf("%w: %v", dynamo.ErrSingular, err)
	}
	return x, cond, nil
}

// Solve is a convenience wrapper around a fresh Solver.
func Solve(a mat.Matrix, b mat.Vector) (*mat.VecDense, float64, error) {
	var s Solver
	return s.Solve(a, b)
}

func finiteMatrix(a mat.Matrix) bool {
	r, c := a.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			v := a.At(i, j)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return false
			}
		}
	}
	return true
}

func finiteVector(b mat.Vector) bool {
	for i := 0; i < b.Len(); i++ {
		v := b.AtVec(i)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func fillNaN(x *mat.VecDense) {
	for i := 0; i < x.Len(); i++ {
		x.SetVec(i, math.NaN())
	}
}
