package experiment

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/san-kum/nlink/internal/config"
	"github.com/san-kum/nlink/internal/dynamo"
	"github.com/san-kum/nlink/internal/physics"
	"github.com/san-kum/nlink/internal/sim"
)

// Experiment is a validated configuration wired to a chain, an integrator and
// the standard metrics.
type Experiment struct {
	cfg       *config.Config
	registry  *Registry
	chain     *physics.Chain
	simulator *sim.Simulator
	logger    *slog.Logger
}

// New validates cfg and wires a simulator for it. cfg is copied.
func New(cfg *config.Config, logger *slog.Logger) (*Experiment, error) {
	cfg = cfg.Clone()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	e := &Experiment{cfg: cfg, registry: NewRegistry(), logger: logger}

	chain, integ, err := e.build()
	if err != nil {
		return nil, err
	}
	e.chain = chain
	e.simulator = sim.New(chain, integ)
	e.simulator.SetLogger(logger)
	for _, m := range e.registry.DefaultMetrics() {
		e.simulator.AddMetric(m)
	}
	return e, nil
}

func (e *Experiment) build() (*physics.Chain, dynamo.Integrator, error) {
	chain, err := e.registry.GetChain(e.cfg)
	if err != nil {
		return nil, nil, err
	}
	integ, err := e.registry.GetIntegrator(e.cfg.Integrator)
	if err != nil {
		return nil, nil, err
	}
	return chain, integ, nil
}

func (e *Experiment) Config() *config.Config    { return e.cfg }
func (e *Experiment) Chain() *physics.Chain     { return e.chain }
func (e *Experiment) Simulator() *sim.Simulator { return e.simulator }

func (e *Experiment) Run(ctx context.Context) (*dynamo.Result, error) {
	e.logger.Info("running",
		"links", e.cfg.Links, "formulation", e.cfg.Formulation, "integrator", e.cfg.Integrator,
		"dt", e.cfg.Dt, "duration", e.cfg.Duration)
	return e.simulator.Run(ctx, e.cfg.InitialState(), e.cfg.RunConfig())
}

// Start opens an incrementally advanced session from the configured state.
func (e *Experiment) Start() (*sim.Session, error) {
	return e.simulator.Start(e.cfg.InitialState(), e.cfg.RunConfig())
}

// Factory returns a constructor of independent chain/integrator pairs for
// parallel runs.
func (e *Experiment) Factory() sim.Factory {
	return func() (dynamo.System, dynamo.Integrator) {
		chain, integ, err := e.build()
		if err != nil {
			// cfg was validated in New
			panic(err)
		}
		return chain, integ
	}
}
