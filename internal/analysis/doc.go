// Package analysis characterizes chain trajectories.
//
//   - [LyapunovExponent]: largest Lyapunov exponent by trajectory separation
//   - [PhasePortrait], [PoincareSection]: (θ, dθ) pairs of one or two links
//   - [Spectrum], [DominantFrequency]: power spectrum of a sampled angle
//
// A positive largest Lyapunov exponent indicates chaotic motion:
//
//	lambda, err := analysis.LyapunovExponent(chain, integrators.NewRK4(), x0, 0.01, 30, 1e-8)
//	if err == nil && lambda > 0 {
//	    // nearby initial states diverge
//	}
package analysis
