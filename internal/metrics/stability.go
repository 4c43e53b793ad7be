package metrics

import (
	"math"

	"github.com/san-kum/nlink/internal/dynamo"
)

// Stability is the fraction of snapshots in which every link turns slower than
// the threshold, in rad/s.
type Stability struct {
	name       string
	threshold  float64
	violations int
	samples    int
}

func NewStability(threshold float64) *Stability {
	return &Stability{
		name:      "stability",
		threshold: threshold,
	}
}

func (s *Stability) Name() string {
	return s.name
}

func (s *Stability) Observe(snap dynamo.Snapshot) {
	s.samples++
	for _, w := range snap.State.DTheta {
		if !(math.Abs(w) <= s.threshold) {
			s.violations++
			break
		}
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}

// MaxAngularSpeed records the largest |dθ| of any link.
type MaxAngularSpeed struct {
	peak float64
}

func NewMaxAngularSpeed() *MaxAngularSpeed { return &MaxAngularSpeed{} }

func (m *MaxAngularSpeed) Name() string { return "max_angular_speed" }

func (m *MaxAngularSpeed) Observe(snap dynamo.Snapshot) {
	for _, w := range snap.State.DTheta {
		m.peak = math.Max(m.peak, math.Abs(w))
	}
}

func (m *MaxAngularSpeed) Value() float64 { return m.peak }
func (m *MaxAngularSpeed) Reset()         { m.peak = 0 }

// Standard returns the metrics recorded for every CLI run.
func Standard() []dynamo.Metric {
	return []dynamo.Metric{
		NewMeanEnergy(),
		NewEnergyDrift(),
		NewMaxAngularSpeed(),
		NewStability(10),
	}
}
