package sim

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/san-kum/nlink/internal/dynamo"
)

type Simulator struct {
	sys        dynamo.System
	integrator dynamo.Integrator
	metrics    []dynamo.Metric
	observers  []dynamo.Observer
	logger     *slog.Logger
}

func New(sys dynamo.System, integrator dynamo.Integrator) *Simulator {
	return &Simulator{
		sys:        sys,
		integrator: integrator,
		metrics:    make([]dynamo.Metric, 0),
		observers:  make([]dynamo.Observer, 0),
		logger:     slog.New(slog.DiscardHandler),
	}
}

func (s *Simulator) AddMetric(m dynamo.Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o dynamo.Observer) { s.observers = append(s.observers, o) }

func (s *Simulator) SetLogger(l *slog.Logger) {
	if l != nil {
		s.logger = l
	}
}

func (s *Simulator) System() dynamo.System { return s.sys }

// Run integrates from x0 until cfg.Duration is reached. Snapshots are emitted
// every cfg.Cadence steps and once more for the final state.
//
// A numerical failure does not make Run return an error: the loop stops and
// the failure is reported in Result.Errors with the last valid state.
func (s *Simulator) Run(ctx context.Context, x0 dynamo.State, cfg dynamo.Config) (*dynamo.Result, error) {
	sess, err := s.Start(x0, cfg)
	if err != nil {
		return nil, err
	}

	for !sess.Done() {
		select {
		case <-ctx.Done():
			return sess.Finish(), ctx.Err()
		default:
		}

		if err := sess.Step(); err != nil {
			return sess.Finish(), err
		}
	}

	return sess.Finish(), nil
}

func (s *Simulator) validateConfig(x0 dynamo.State, cfg dynamo.Config) error {
	if !(cfg.Dt > 0) {
		return fmt.Errorf("%w: dt must be positive, got %f", dynamo.ErrParameterBounds, cfg.Dt)
	}
	if !(cfg.Duration > 0) {
		return fmt.Errorf("%w: duration must be positive, got %f", dynamo.ErrParameterBounds, cfg.Duration)
	}
	if cfg.Cadence < 0 {
		return fmt.Errorf("%w: cadence must not be negative, got %d", dynamo.ErrParameterBounds, cfg.Cadence)
	}
	if len(x0.Theta) != s.sys.Dim() || len(x0.DTheta) != s.sys.Dim() {
		return fmt.Errorf("%w: system has %d links, state has %d angles and %d velocities",
			dynamo.ErrDimensionMismatch, s.sys.Dim(), len(x0.Theta), len(x0.DTheta))
	}
	if !x0.IsValid() {
		return fmt.Errorf("initial state: %w", dynamo.ErrInvalidState)
	}
	return nil
}

func (s *Simulator) computeEnergy(x dynamo.State) float64 {
	if h, ok := s.sys.(dynamo.Hamiltonian); ok {
		return h.Energy(x)
	}
	return 0
}

func (s *Simulator) snapshot(step int, t float64, x dynamo.State) dynamo.Snapshot {
	snap := dynamo.Snapshot{
		Step:   step,
		Time:   t,
		State:  x.Clone(),
		Energy: s.computeEnergy(x),
	}
	if f, ok := s.sys.(dynamo.Framer); ok {
		snap.Positions = f.Positions(x)
	}
	return snap
}

func relativeDrift(e0, e1 float64) float64 {
	if e0 == 0 {
		return math.Abs(e1)
	}
	return math.Abs(e1-e0) / math.Abs(e0)
}
