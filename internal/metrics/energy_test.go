package metrics

import (
	"math"
	"testing"

	"github.com/san-kum/nlink/internal/dynamo"
)

func snap(energy float64, dtheta ...float64) dynamo.Snapshot {
	return dynamo.Snapshot{
		Energy: energy,
		State:  dynamo.State{Theta: make([]float64, len(dtheta)), DTheta: dtheta},
	}
}

func TestMeanEnergy(t *testing.T) {
	m := NewMeanEnergy()
	if m.Value() != 0 {
		t.Errorf("expected 0 before any observation, got %f", m.Value())
	}

	m.Observe(snap(-2))
	m.Observe(snap(-4))
	if m.Value() != -3 {
		t.Errorf("expected mean -3, got %f", m.Value())
	}

	m.Reset()
	m.Observe(snap(5))
	if m.Value() != 5 {
		t.Errorf("expected 5 after reset, got %f", m.Value())
	}
}

func TestEnergyDrift(t *testing.T) {
	tests := []struct {
		name     string
		energies []float64
		expected float64
	}{
		{"constant", []float64{-10, -10, -10}, 0},
		{"relative", []float64{-10, -10.5, -9.8}, 0.05},
		{"zero initial uses absolute", []float64{0, 0.25, -0.5}, 0.5},
		{"single sample", []float64{-3}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewEnergyDrift()
			for _, e := range tt.energies {
				m.Observe(snap(e))
			}
			if math.Abs(m.Value()-tt.expected) > 1e-12 {
				t.Errorf("expected drift %f, got %f", tt.expected, m.Value())
			}
		})
	}
}

func TestEnergyDriftNaN(t *testing.T) {
	m := NewEnergyDrift()
	m.Observe(snap(-1))
	m.Observe(snap(math.NaN()))
	if !math.IsInf(m.Value(), 1) {
		t.Errorf("expected +Inf once energy is NaN, got %f", m.Value())
	}

	m.Reset()
	if m.Value() != 0 {
		t.Errorf("expected 0 after reset, got %f", m.Value())
	}
}
