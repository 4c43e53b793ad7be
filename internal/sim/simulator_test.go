package sim

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/san-kum/nlink/internal/dynamo"
)

// testSystem decays exponentially: dθ/dt = -θ.
type testSystem struct{}

func (t *testSystem) Dim() int { return 1 }
func (t *testSystem) Derive(x dynamo.State) dynamo.State {
	return dynamo.State{Theta: []float64{-x.Theta[0]}, DTheta: []float64{0}}
}

// growthSystem grows as e^t and produces NaN derivatives once θ exceeds 1.5.
type growthSystem struct{}

func (g *growthSystem) Dim() int { return 1 }
func (g *growthSystem) Derive(x dynamo.State) dynamo.State {
	if x.Theta[0] > 1.5 {
		return dynamo.State{Theta: []float64{math.NaN()}, DTheta: []float64{0}}
	}
	return dynamo.State{Theta: []float64{x.Theta[0]}, DTheta: []float64{0}}
}

// degenerateSystem reports every state as ill-conditioned.
type degenerateSystem struct{ testSystem }

func (d *degenerateSystem) Diagnose(x dynamo.State) (float64, error) {
	return 1e18, dynamo.ErrIllConditioned
}

type testIntegrator struct{}

func (t *testIntegrator) Step(sys dynamo.System, x dynamo.State, dt float64) dynamo.State {
	dx := sys.Derive(x)
	return dynamo.State{
		Theta:  []float64{x.Theta[0] + dt*dx.Theta[0]},
		DTheta: []float64{x.DTheta[0] + dt*dx.DTheta[0]},
	}
}

func one(theta float64) dynamo.State {
	return dynamo.State{Theta: []float64{theta}, DTheta: []float64{0}}
}

func TestSimulatorRun(t *testing.T) {
	sim := New(&testSystem{}, &testIntegrator{})

	cfg := dynamo.Config{Dt: 0.1, Duration: 1.0, Cadence: 1}
	result, err := sim.Run(context.Background(), one(1.0), cfg)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if len(result.Snapshots) != 11 {
		t.Errorf("expected 11 snapshots, got %d", len(result.Snapshots))
	}
	if result.StepsTaken != 10 {
		t.Errorf("expected 10 steps, got %d", result.StepsTaken)
	}

	finalState := result.Final.Theta[0]
	expected := math.Exp(-1.0)
	if math.Abs(finalState-expected) > 0.2 {
		t.Errorf("expected final state ~%.4f, got %.4f", expected, finalState)
	}

	last := result.Snapshots[len(result.Snapshots)-1]
	if last.Step != 10 || last.State.Theta[0] != finalState {
		t.Errorf("expected last snapshot to hold the final state, got step %d theta %v", last.Step, last.State.Theta)
	}
}

func TestSimulatorCadence(t *testing.T) {
	tests := []struct {
		name    string
		cadence int
		steps   []int
	}{
		{"every step", 1, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10}},
		{"zero means every step", 0, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10}},
		{"every third", 3, []int{0, 3, 6, 9, 10}},
		{"every fifth", 5, []int{0, 5, 10}},
		{"longer than run", 100, []int{0, 10}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sim := New(&testSystem{}, &testIntegrator{})
			cfg := dynamo.Config{Dt: 0.1, Duration: 1.0, Cadence: tt.cadence}
			result, err := sim.Run(context.Background(), one(1.0), cfg)
			if err != nil {
				t.Fatalf("run failed: %v", err)
			}
			if len(result.Snapshots) != len(tt.steps) {
				t.Fatalf("expected %d snapshots, got %d", len(tt.steps), len(result.Snapshots))
			}
			for i, snap := range result.Snapshots {
				if snap.Step != tt.steps[i] {
					t.Errorf("snapshot %d: expected step %d, got %d", i, tt.steps[i], snap.Step)
				}
				if snap.Time != float64(snap.Step)*cfg.Dt {
					t.Errorf("snapshot %d: expected time %v, got %v", i, float64(snap.Step)*cfg.Dt, snap.Time)
				}
			}
		})
	}
}

func TestSimulatorInvalidConfig(t *testing.T) {
	sim := New(&testSystem{}, &testIntegrator{})

	tests := []struct {
		name string
		x0   dynamo.State
		cfg  dynamo.Config
		want error
	}{
		{"zero dt", one(1), dynamo.Config{Dt: 0, Duration: 1.0}, dynamo.ErrParameterBounds},
		{"negative dt", one(1), dynamo.Config{Dt: -0.1, Duration: 1.0}, dynamo.ErrParameterBounds},
		{"NaN dt", one(1), dynamo.Config{Dt: math.NaN(), Duration: 1.0}, dynamo.ErrParameterBounds},
		{"zero duration", one(1), dynamo.Config{Dt: 0.1, Duration: 0}, dynamo.ErrParameterBounds},
		{"negative duration", one(1), dynamo.Config{Dt: 0.1, Duration: -1.0}, dynamo.ErrParameterBounds},
		{"negative cadence", one(1), dynamo.Config{Dt: 0.1, Duration: 1.0, Cadence: -1}, dynamo.ErrParameterBounds},
		{"wrong dimension", dynamo.NewState(2), dynamo.Config{Dt: 0.1, Duration: 1.0}, dynamo.ErrDimensionMismatch},
		{"ragged state", dynamo.State{Theta: []float64{1}, DTheta: []float64{0, 0}}, dynamo.Config{Dt: 0.1, Duration: 1.0}, dynamo.ErrDimensionMismatch},
		{"NaN state", one(math.NaN()), dynamo.Config{Dt: 0.1, Duration: 1.0}, dynamo.ErrInvalidState},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := sim.Run(context.Background(), tt.x0, tt.cfg)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
			if result != nil {
				t.Error("expected no result for an invalid configuration")
			}
		})
	}
}

func TestSimulatorStopsOnInvalidState(t *testing.T) {
	sim := New(&growthSystem{}, &testIntegrator{})

	cfg := dynamo.Config{Dt: 0.1, Duration: 10, Cadence: 1, ValidateState: true}
	result, err := sim.Run(context.Background(), one(1.0), cfg)
	if err != nil {
		t.Fatalf("numerical failure must not be returned as an error, got %v", err)
	}

	if !result.Failed() || len(result.Errors) != 1 {
		t.Fatalf("expected one recorded error, got %v", result.Errors)
	}

	var simErr *dynamo.SimulationError
	if !errors.As(result.Errors[0], &simErr) {
		t.Fatalf("expected *dynamo.SimulationError, got %T", result.Errors[0])
	}
	if !errors.Is(simErr, dynamo.ErrInvalidState) {
		t.Errorf("expected ErrInvalidState, got %v", simErr.Wrapped)
	}
	if simErr.Step != 5 {
		t.Errorf("expected failure at step 5, got %d", simErr.Step)
	}
	if math.Abs(simErr.Time-0.5) > 1e-12 {
		t.Errorf("expected failure at t=0.5, got %v", simErr.Time)
	}
	if !simErr.State.IsValid() || simErr.State.Theta[0] <= 1.5 {
		t.Errorf("expected the last valid state, got %v", simErr.State)
	}

	if result.StepsTaken != 5 {
		t.Errorf("expected 5 steps, got %d", result.StepsTaken)
	}
	if len(result.Snapshots) != 6 {
		t.Errorf("expected 6 snapshots, got %d", len(result.Snapshots))
	}
	if !result.Final.IsValid() {
		t.Error("expected the final state to be the last valid state")
	}
}

func TestSimulatorPropagatesNaNWithoutValidation(t *testing.T) {
	sim := New(&growthSystem{}, &testIntegrator{})

	cfg := dynamo.Config{Dt: 0.1, Duration: 1.0, Cadence: 1}
	result, err := sim.Run(context.Background(), one(1.0), cfg)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if result.Failed() {
		t.Errorf("expected no recorded errors, got %v", result.Errors)
	}
	if result.StepsTaken != 10 {
		t.Errorf("expected the run to reach the time limit, got %d steps", result.StepsTaken)
	}
	if result.Final.IsValid() {
		t.Errorf("expected NaN to propagate to the final state, got %v", result.Final)
	}
}

func TestSimulatorConditioningWarnings(t *testing.T) {
	cfg := dynamo.Config{Dt: 0.1, Duration: 1.0, Cadence: 5}

	sim := New(&degenerateSystem{}, &testIntegrator{})
	result, err := sim.Run(context.Background(), one(1.0), cfg)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if len(result.Warnings) != 0 {
		t.Errorf("expected no warnings with conditioning checks off, got %d", len(result.Warnings))
	}

	cfg.CheckConditioning = true
	result, err = sim.Run(context.Background(), one(1.0), cfg)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if len(result.Warnings) != len(result.Snapshots) {
		t.Fatalf("expected one warning per snapshot, got %d for %d", len(result.Warnings), len(result.Snapshots))
	}
	if !errors.Is(result.Warnings[0], dynamo.ErrIllConditioned) {
		t.Errorf("expected ErrIllConditioned, got %v", result.Warnings[0])
	}
	if result.Failed() {
		t.Error("warnings must not fail the run")
	}
}

func TestSimulatorContextCancelled(t *testing.T) {
	sim := New(&testSystem{}, &testIntegrator{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := sim.Run(ctx, one(1.0), dynamo.Config{Dt: 0.1, Duration: 1.0})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if result == nil || result.StepsTaken != 0 {
		t.Fatalf("expected an empty partial result, got %+v", result)
	}
	if len(result.Snapshots) != 1 {
		t.Errorf("expected the initial state as the only snapshot, got %d", len(result.Snapshots))
	}
}

type testMetric struct {
	count int
	sum   float64
}

func (t *testMetric) Name() string { return "test" }
func (t *testMetric) Observe(snap dynamo.Snapshot) {
	t.count++
	t.sum += snap.State.Theta[0]
}
func (t *testMetric) Value() float64 {
	if t.count == 0 {
		return 0
	}
	return t.sum / float64(t.count)
}
func (t *testMetric) Reset() {
	t.count = 0
	t.sum = 0
}

func TestSimulatorMetrics(t *testing.T) {
	sim := New(&testSystem{}, &testIntegrator{})

	metric := &testMetric{}
	sim.AddMetric(metric)

	cfg := dynamo.Config{Dt: 0.1, Duration: 1.0, Cadence: 1}
	result, err := sim.Run(context.Background(), one(1.0), cfg)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if _, ok := result.Metrics["test"]; !ok {
		t.Error("metric not found in result")
	}
	if metric.count != 11 {
		t.Errorf("expected 11 observations, got %d", metric.count)
	}

	if _, err := sim.Run(context.Background(), one(1.0), cfg); err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	if metric.count != 11 {
		t.Errorf("expected metrics to reset between runs, got %d observations", metric.count)
	}
}

type failingObserver struct {
	failAt int
	seen   int
}

var errObserver = errors.New("disk full")

func (f *failingObserver) OnSnapshot(snap dynamo.Snapshot) error {
	if snap.Step == f.failAt {
		return errObserver
	}
	f.seen++
	return nil
}

func TestSimulatorObserverError(t *testing.T) {
	sim := New(&testSystem{}, &testIntegrator{})
	obs := &failingObserver{failAt: 2}
	sim.AddObserver(obs)

	result, err := sim.Run(context.Background(), one(1.0), dynamo.Config{Dt: 0.1, Duration: 1.0, Cadence: 1})
	if !errors.Is(err, errObserver) {
		t.Fatalf("expected observer error, got %v", err)
	}
	if obs.seen != 2 {
		t.Errorf("expected 2 delivered snapshots, got %d", obs.seen)
	}
	if result == nil || len(result.Snapshots) != 2 {
		t.Errorf("expected a partial result with 2 snapshots, got %+v", result)
	}
}

func TestClock(t *testing.T) {
	c := Clock{Dt: 0.01}
	for i := 0; i < 10000; i++ {
		c.Tick()
	}
	if c.Time() != 100 {
		t.Errorf("expected exactly 100, got %.17g", c.Time())
	}
	if !c.Done(100) {
		t.Error("expected clock to be done at its limit")
	}
	if c.Done(100.005) {
		t.Error("expected clock to run until the limit")
	}
}
