package sim

import (
	"fmt"

	"github.com/san-kum/nlink/internal/dynamo"
)

// Session is a simulation run that is advanced by the caller. Run drives one
// to completion; the live view advances one a few steps per frame.
type Session struct {
	sim    *Simulator
	cfg    dynamo.Config
	clock  Clock
	x      dynamo.State
	result *dynamo.Result

	initialEnergy float64
	lastEmitted   int
	halted        bool
	failed        error
	finished      bool
}

// Start validates the configuration and prepares a session at t = 0.
func (s *Simulator) Start(x0 dynamo.State, cfg dynamo.Config) (*Session, error) {
	if err := s.validateConfig(x0, cfg); err != nil {
		return nil, err
	}
	if cfg.Cadence == 0 {
		cfg.Cadence = 1
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	expected := int(cfg.Duration/cfg.Dt)/cfg.Cadence + 2
	s.logger.Debug("simulation started",
		"links", s.sys.Dim(), "dt", cfg.Dt, "duration", cfg.Duration, "cadence", cfg.Cadence)

	return &Session{
		sim:   s,
		cfg:   cfg,
		clock: Clock{Dt: cfg.Dt},
		x:     x0.Clone(),
		result: &dynamo.Result{
			Snapshots: make([]dynamo.Snapshot, 0, expected),
			Metrics:   make(map[string]float64),
			Errors:    make([]error, 0),
			Warnings:  make([]error, 0),
		},
		initialEnergy: s.computeEnergy(x0),
		lastEmitted:   -1,
	}, nil
}

// Done reports whether the time limit was reached or the run stopped on a
// numerical failure.
func (ss *Session) Done() bool {
	return ss.halted || ss.failed != nil || ss.clock.Done(ss.cfg.Duration)
}

func (ss *Session) Time() float64  { return ss.clock.Time() }
func (ss *Session) StepIndex() int { return ss.clock.Step }

// State returns a copy of the current state.
func (ss *Session) State() dynamo.State { return ss.x.Clone() }

// Snapshot builds a snapshot of the current state without emitting it.
func (ss *Session) Snapshot() dynamo.Snapshot {
	return ss.sim.snapshot(ss.clock.Step, ss.clock.Time(), ss.x)
}

// Step emits a snapshot if the current step is on the cadence and advances the
// state by one integration step. Only observer failures are returned.
func (ss *Session) Step() error {
	if ss.Done() {
		return nil
	}

	if ss.clock.Step%ss.cfg.Cadence == 0 {
		if err := ss.emit(); err != nil {
			return err
		}
	}

	next := ss.sim.integrator.Step(ss.sim.sys, ss.x, ss.cfg.Dt)
	if ss.cfg.ValidateState && !next.IsValid() {
		simErr := &dynamo.SimulationError{
			Step:    ss.clock.Step,
			Time:    ss.clock.Time(),
			State:   ss.x.Clone(),
			Wrapped: dynamo.ErrInvalidState,
		}
		ss.result.Errors = append(ss.result.Errors, simErr)
		ss.halted = true
		ss.sim.logger.Error("simulation stopped", "step", simErr.Step, "time", simErr.Time, "err", simErr.Wrapped)
		return nil
	}

	ss.x = next
	ss.clock.Tick()
	ss.result.StepsTaken++
	return nil
}

// Advance performs up to n steps and returns the number actually taken.
func (ss *Session) Advance(n int) (int, error) {
	taken := 0
	for taken < n && !ss.Done() {
		before := ss.clock.Step
		if err := ss.Step(); err != nil {
			return taken, err
		}
		if ss.clock.Step == before {
			break
		}
		taken++
	}
	return taken, nil
}

func (ss *Session) emit() error {
	snap := ss.sim.snapshot(ss.clock.Step, ss.clock.Time(), ss.x)
	ss.lastEmitted = ss.clock.Step

	if ss.cfg.CheckConditioning {
		ss.diagnose(snap)
	}

	for _, m := range ss.sim.metrics {
		m.Observe(snap)
	}
	for _, obs := range ss.sim.observers {
		if err := obs.OnSnapshot(snap); err != nil {
			ss.failed = fmt.Errorf("observer at step %d: %w", snap.Step, err)
			return ss.failed
		}
	}

	ss.result.Snapshots = append(ss.result.Snapshots, snap)
	return nil
}

func (ss *Session) diagnose(snap dynamo.Snapshot) {
	d, ok := ss.sim.sys.(dynamo.Diagnoser)
	if !ok {
		return
	}
	cond, err := d.Diagnose(snap.State)
	if err == nil {
		return
	}
	ss.result.Warnings = append(ss.result.Warnings, &dynamo.SimulationError{
		Step:    snap.Step,
		Time:    snap.Time,
		State:   snap.State,
		Wrapped: err,
	})
	ss.sim.logger.Warn("degenerate coupling matrix", "step", snap.Step, "time", snap.Time, "cond", cond, "err", err)
}

// Finish records the final state, computes metrics and returns the result.
// Calling it more than once returns the same result.
func (ss *Session) Finish() *dynamo.Result {
	if ss.finished {
		return ss.result
	}
	ss.finished = true

	if ss.failed == nil && ss.lastEmitted != ss.clock.Step {
		_ = ss.emit()
	}

	ss.result.Final = ss.x.Clone()
	if h, ok := ss.sim.sys.(dynamo.Hamiltonian); ok {
		ss.result.EnergyDrift = relativeDrift(ss.initialEnergy, h.Energy(ss.x))
	}
	for _, m := range ss.sim.metrics {
		ss.result.Metrics[m.Name()] = m.Value()
	}

	ss.sim.logger.Debug("simulation finished",
		"steps", ss.result.StepsTaken, "snapshots", len(ss.result.Snapshots), "energy_drift", ss.result.EnergyDrift)
	return ss.result
}
