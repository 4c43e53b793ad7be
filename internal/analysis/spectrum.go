package analysis

import (
	"fmt"
	"math/cmplx"

	"github.com/san-kum/nlink/internal/dynamo"
	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/stat"
)

// Spectrum returns the one-sided power spectrum of a uniformly sampled series.
// The mean is removed first so the zero-frequency bin only holds drift.
// freqs[k] is in Hz for a sample interval of dt seconds.
func Spectrum(series []float64, dt float64) (freqs, power []float64, err error) {
	if len(series) < 2 {
		return nil, nil, fmt.Errorf("%w: need at least two samples, got %d", dynamo.ErrParameterBounds, len(series))
	}
	if !(dt > 0) {
		return nil, nil, fmt.Errorf("%w: sample interval must be positive, got %f", dynamo.ErrParameterBounds, dt)
	}

	mean := stat.Mean(series, nil)
	centred := make([]float64, len(series))
	for i, v := range series {
		centred[i] = v - mean
	}

	fft := fourier.NewFFT(len(centred))
	coeff := fft.Coefficients(nil, centred)
	freqs = make([]float64, len(coeff))
	power = make([]float64, len(coeff))
	for k, c := range coeff {
		freqs[k] = fft.Freq(k) / dt
		a := cmplx.Abs(c)
		power[k] = a * a
	}
	return freqs, power, nil
}

// DominantFrequency returns the non-zero frequency with the most power.
func DominantFrequency(series []float64, dt float64) (float64, error) {
	freqs, power, err := Spectrum(series, dt)
	if err != nil {
		return 0, err
	}
	best := 1
	for k := 2; k < len(power); k++ {
		if power[k] > power[best] {
			best = k
		}
	}
	if best >= len(freqs) {
		return 0, nil
	}
	return freqs[best], nil
}
