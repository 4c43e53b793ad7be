package analysis

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/san-kum/nlink/internal/dynamo"
	"github.com/san-kum/nlink/internal/integrators"
	"github.com/san-kum/nlink/internal/physics"
	"github.com/san-kum/nlink/internal/sim"
)

func chain(t *testing.T, n int) *physics.Chain {
	t.Helper()
	masses := make([]float64, n)
	lengths := make([]float64, n)
	for i := range masses {
		masses[i], lengths[i] = 1, 1
	}
	p, err := dynamo.NewParams(masses, lengths, dynamo.StandardGravity)
	if err != nil {
		t.Fatal(err)
	}
	return physics.NewChain(p, physics.FormulationLagrangian)
}

func TestLyapunovSeparatesRegularFromChaotic(t *testing.T) {
	regular := dynamo.State{Theta: []float64{0.1}, DTheta: []float64{0}}
	lamReg, err := LyapunovExponent(chain(t, 1), integrators.NewRK4(), regular, 0.005, 20, 1e-8)
	if err != nil {
		t.Fatal(err)
	}

	chaotic := dynamo.State{Theta: []float64{3, 3}, DTheta: []float64{0, 0}}
	lamChaos, err := LyapunovExponent(chain(t, 2), integrators.NewRK4(), chaotic, 0.005, 20, 1e-8)
	if err != nil {
		t.Fatal(err)
	}

	if lamReg > 0.2 {
		t.Errorf("small oscillation exponent %f, expected near zero", lamReg)
	}
	if lamChaos < 0.5 {
		t.Errorf("chaotic exponent %f, expected clearly positive", lamChaos)
	}
}

func TestLyapunovInvalidArgs(t *testing.T) {
	x0 := dynamo.State{Theta: []float64{0.1}, DTheta: []float64{0}}
	if _, err := LyapunovExponent(chain(t, 1), integrators.NewRK4(), x0, 0, 1, 1e-8); !errors.Is(err, dynamo.ErrParameterBounds) {
		t.Errorf("expected ErrParameterBounds, got %v", err)
	}
	if _, err := LyapunovExponent(chain(t, 1), integrators.NewRK4(), dynamo.State{}, 0.01, 1, 1e-8); !errors.Is(err, dynamo.ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch, got %v", err)
	}
}

func TestLyapunovSpectrumLength(t *testing.T) {
	x0 := dynamo.State{Theta: []float64{0.2, 0.1, 0}, DTheta: make([]float64, 3)}
	spec, err := LyapunovSpectrum(chain(t, 3), integrators.NewRK4(), x0, 0.01, 1, 1e-8)
	if err != nil {
		t.Fatal(err)
	}
	if len(spec) != 3 {
		t.Errorf("expected 3 entries, got %d", len(spec))
	}
}

func TestDominantFrequencyOfSine(t *testing.T) {
	const dt = 0.01
	series := make([]float64, 512)
	for i := range series {
		series[i] = 3 + math.Sin(2*math.Pi*2*float64(i)*dt)
	}
	f, err := DominantFrequency(series, dt)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(f-2) > 0.2 {
		t.Errorf("expected 2 Hz, got %f", f)
	}
}

func TestSmallOscillationFrequency(t *testing.T) {
	s := sim.New(chain(t, 1), integrators.NewRK4())
	x0 := dynamo.State{Theta: []float64{0.05}, DTheta: []float64{0}}
	res, err := s.Run(context.Background(), x0, dynamo.Config{Dt: 0.01, Duration: 20, Cadence: 1})
	if err != nil {
		t.Fatal(err)
	}

	angles := make([]float64, len(res.Snapshots))
	for i, snap := range res.Snapshots {
		angles[i] = snap.State.Theta[0]
	}
	f, err := DominantFrequency(angles, 0.01)
	if err != nil {
		t.Fatal(err)
	}
	want := math.Sqrt(dynamo.StandardGravity) / (2 * math.Pi)
	if math.Abs(f-want) > 0.05 {
		t.Errorf("expected %f Hz, got %f", want, f)
	}
}

func TestSpectrumInvalid(t *testing.T) {
	if _, _, err := Spectrum([]float64{1}, 0.1); err == nil {
		t.Error("expected error for a single sample")
	}
	if _, _, err := Spectrum([]float64{1, 2}, 0); err == nil {
		t.Error("expected error for zero interval")
	}
}

func snapshot(theta, dtheta []float64) dynamo.Snapshot {
	return dynamo.Snapshot{State: dynamo.State{Theta: theta, DTheta: dtheta}}
}

func TestPoincareSection(t *testing.T) {
	snaps := []dynamo.Snapshot{
		snapshot([]float64{-0.1, 1}, []float64{0, 2}),
		snapshot([]float64{0.1, 3}, []float64{0, 4}),
		snapshot([]float64{-0.1, 5}, []float64{0, 6}),
	}
	pts, err := PoincareSection(snaps, 0, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(pts) != 1 {
		t.Fatalf("expected one upward crossing, got %d", len(pts))
	}
	if math.Abs(pts[0].X-2) > 1e-12 || math.Abs(pts[0].Y-3) > 1e-12 {
		t.Errorf("expected interpolated (2, 3), got %+v", pts[0])
	}

	if _, err := PoincareSection(snaps, 0, 5); !errors.Is(err, dynamo.ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch, got %v", err)
	}
}

func TestPhasePortrait(t *testing.T) {
	snaps := []dynamo.Snapshot{
		snapshot([]float64{0.1}, []float64{0.2}),
		snapshot([]float64{0.3}, []float64{0.4}),
	}
	pts, err := PhasePortrait(snaps, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(pts) != 2 || pts[1].X != 0.3 || pts[1].Y != 0.4 {
		t.Errorf("got %+v", pts)
	}
	if _, err := PhasePortrait(snaps, 1); err == nil {
		t.Error("expected error for link out of range")
	}
}
