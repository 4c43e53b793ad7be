package experiment

import (
	"context"
	"fmt"

	"github.com/san-kum/nlink/internal/dynamo"
	"github.com/san-kum/nlink/internal/sim"
)

// SweepPoint is one run of a sweep over the initial angle of a link.
type SweepPoint struct {
	Theta  float64
	Result *dynamo.Result
}

// Sweep runs the experiment from count initial states in which link's angle
// is offset by k*delta for k = 0..count-1. Runs execute in parallel, at most
// workers at a time.
func (e *Experiment) Sweep(ctx context.Context, link int, delta float64, count, workers int) ([]SweepPoint, error) {
	if link < 0 || link >= e.cfg.Links {
		return nil, fmt.Errorf("%w: link %d outside chain of %d", dynamo.ErrDimensionMismatch, link, e.cfg.Links)
	}
	if count < 1 {
		return nil, fmt.Errorf("%w: sweep needs at least one run", dynamo.ErrParameterBounds)
	}

	base := e.cfg.InitialState()
	inits := make([]dynamo.State, count)
	for k := range inits {
		x := base.Clone()
		x.Theta[link] += float64(k) * delta
		inits[k] = x
	}

	ens := sim.NewEnsemble(e.Factory())
	ens.SetLimit(workers)
	ens.SetMetrics(e.registry.DefaultMetrics)
	ens.SetLogger(e.logger)

	results, err := ens.Run(ctx, inits, e.cfg.RunConfig())
	if err != nil {
		return nil, err
	}

	points := make([]SweepPoint, count)
	for k, res := range results {
		points[k] = SweepPoint{Theta: inits[k].Theta[link], Result: res}
	}
	return points, nil
}
