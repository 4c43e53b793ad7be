package metrics

import (
	"math"
	"testing"
)

func TestStability(t *testing.T) {
	s := NewStability(1.0)
	if s.Value() != 1.0 {
		t.Errorf("expected 1.0 before any observation, got %f", s.Value())
	}

	s.Observe(snap(0, 0.5, -0.5))
	s.Observe(snap(0, 0.5, -1.5))
	s.Observe(snap(0, math.NaN(), 0))
	s.Observe(snap(0, 1.0, 1.0))

	if s.Value() != 0.5 {
		t.Errorf("expected 0.5, got %f", s.Value())
	}
}

func TestMaxAngularSpeed(t *testing.T) {
	m := NewMaxAngularSpeed()
	m.Observe(snap(0, 1, -3))
	m.Observe(snap(0, 2, 0))
	if m.Value() != 3 {
		t.Errorf("expected 3, got %f", m.Value())
	}
	m.Reset()
	if m.Value() != 0 {
		t.Errorf("expected 0 after reset, got %f", m.Value())
	}
}

func TestStandardNames(t *testing.T) {
	seen := make(map[string]bool)
	for _, m := range Standard() {
		if seen[m.Name()] {
			t.Errorf("duplicate metric name %q", m.Name())
		}
		seen[m.Name()] = true
	}
	for _, name := range []string{"mean_energy", "energy_drift", "max_angular_speed", "stability"} {
		if !seen[name] {
			t.Errorf("expected metric %q", name)
		}
	}
}
