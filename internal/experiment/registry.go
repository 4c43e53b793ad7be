package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/nlink/internal/config"
	"github.com/san-kum/nlink/internal/dynamo"
	"github.com/san-kum/nlink/internal/integrators"
	"github.com/san-kum/nlink/internal/metrics"
	"github.com/san-kum/nlink/internal/physics"
)

type Registry struct {
	integrators map[string]func() dynamo.Integrator
}

func NewRegistry() *Registry {
	r := &Registry{
		integrators: make(map[string]func() dynamo.Integrator),
	}

	r.integrators["euler"] = func() dynamo.Integrator { return integrators.NewEuler() }
	r.integrators["rk4"] = func() dynamo.Integrator { return integrators.NewRK4() }
	r.integrators["verlet"] = func() dynamo.Integrator { return integrators.NewVerlet() }

	return r
}

func (r *Registry) GetIntegrator(name string) (dynamo.Integrator, error) {
	fn, ok := r.integrators[name]
	if !ok {
		return nil, fmt.Errorf("unknown integrator: %s", name)
	}
	return fn(), nil
}

func (r *Registry) ListIntegrators() []string {
	names := make([]string, 0, len(r.integrators))
	for name := range r.integrators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetChain builds the chain described by a validated config.
func (r *Registry) GetChain(cfg *config.Config) (*physics.Chain, error) {
	p, err := cfg.Params()
	if err != nil {
		return nil, err
	}
	f, err := physics.ParseFormulation(cfg.Formulation)
	if err != nil {
		return nil, err
	}
	return physics.NewChain(p, f), nil
}

func (r *Registry) DefaultMetrics() []dynamo.Metric {
	return metrics.Standard()
}
