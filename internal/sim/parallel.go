package sim

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/san-kum/nlink/internal/dynamo"
	"golang.org/x/sync/errgroup"
)

// Factory builds a fresh system and integrator for one run. Chains and
// integrators keep scratch buffers, so runs must not share them.
type Factory func() (dynamo.System, dynamo.Integrator)

// Ensemble runs the same system from many initial states in parallel.
type Ensemble struct {
	factory Factory
	metrics func() []dynamo.Metric
	limit   int
	logger  *slog.Logger
}

func NewEnsemble(factory Factory) *Ensemble {
	return &Ensemble{factory: factory, logger: slog.New(slog.DiscardHandler)}
}

// SetLimit caps the number of concurrent runs. n <= 0 means no limit.
func (e *Ensemble) SetLimit(n int) { e.limit = n }

// SetMetrics registers a constructor for per-run metrics.
func (e *Ensemble) SetMetrics(fn func() []dynamo.Metric) { e.metrics = fn }

func (e *Ensemble) SetLogger(l *slog.Logger) {
	if l != nil {
		e.logger = l
	}
}

// Run integrates every initial state with cfg. Results are returned in the
// order of inits. The first configuration error cancels the remaining runs.
func (e *Ensemble) Run(ctx context.Context, inits []dynamo.State, cfg dynamo.Config) ([]*dynamo.Result, error) {
	results := make([]*dynamo.Result, len(inits))

	g, gctx := errgroup.WithContext(ctx)
	if e.limit > 0 {
		g.SetLimit(e.limit)
	}

	for i, x0 := range inits {
		g.Go(func() error {
			sys, integ := e.factory()
			s := New(sys, integ)
			s.SetLogger(e.logger.With("run", i))
			if e.metrics != nil {
				for _, m := range e.metrics() {
					s.AddMetric(m)
				}
			}

			res, err := s.Run(gctx, x0, cfg)
			if err != nil {
				return fmt.Errorf("run %d: %w", i, err)
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
