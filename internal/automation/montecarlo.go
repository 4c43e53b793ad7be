package automation

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/san-kum/nlink/internal/dynamo"
	"github.com/san-kum/nlink/internal/experiment"
	"github.com/san-kum/nlink/internal/sim"
	"gonum.org/v1/gonum/stat"
)

type MonteCarloConfig struct {
	// Perturbation bounds the uniform offset added to every initial angle.
	Perturbation float64
	Trials       int
	Seed         uint64
	Workers      int
}

type MonteCarloTrial struct {
	Init   dynamo.State
	Result *dynamo.Result
}

// MonteCarloStats summarizes a set of trials. Drift statistics only cover
// trials that did not fail.
type MonteCarloStats struct {
	Trials    int
	Failed    int
	MeanDrift float64
	StdDrift  float64
	MaxDrift  float64
}

// RunMonteCarlo runs the experiment from randomly perturbed initial angles in
// parallel. The same seed gives the same trials.
func RunMonteCarlo(ctx context.Context, exp *experiment.Experiment, mc MonteCarloConfig) ([]MonteCarloTrial, error) {
	if mc.Trials < 1 {
		return nil, fmt.Errorf("%w: monte carlo needs at least one trial", dynamo.ErrParameterBounds)
	}
	if mc.Perturbation < 0 {
		return nil, fmt.Errorf("%w: perturbation must not be negative", dynamo.ErrParameterBounds)
	}

	rng := rand.New(rand.NewPCG(mc.Seed, mc.Seed^0x9e3779b97f4a7c15))
	base := exp.Config().InitialState()
	inits := make([]dynamo.State, mc.Trials)
	for k := range inits {
		x := base.Clone()
		for i := range x.Theta {
			x.Theta[i] += (rng.Float64()*2 - 1) * mc.Perturbation
		}
		inits[k] = x
	}

	ens := sim.NewEnsemble(exp.Factory())
	ens.SetLimit(mc.Workers)
	ens.SetMetrics(experiment.NewRegistry().DefaultMetrics)

	results, err := ens.Run(ctx, inits, exp.Config().RunConfig())
	if err != nil {
		return nil, err
	}

	trials := make([]MonteCarloTrial, len(results))
	for k, r := range results {
		trials[k] = MonteCarloTrial{Init: inits[k], Result: r}
	}
	return trials, nil
}

func Summarize(trials []MonteCarloTrial) MonteCarloStats {
	st := MonteCarloStats{Trials: len(trials)}
	drifts := make([]float64, 0, len(trials))
	for _, t := range trials {
		if t.Result.Failed() {
			st.Failed++
			continue
		}
		drifts = append(drifts, t.Result.EnergyDrift)
		st.MaxDrift = max(st.MaxDrift, t.Result.EnergyDrift)
	}
	switch len(drifts) {
	case 0:
	case 1:
		st.MeanDrift = drifts[0]
	default:
		st.MeanDrift, st.StdDrift = stat.MeanStdDev(drifts, nil)
	}
	return st
}
