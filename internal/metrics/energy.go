package metrics

import (
	"math"

	"github.com/san-kum/nlink/internal/dynamo"
)

// MeanEnergy averages the total mechanical energy over observed snapshots.
type MeanEnergy struct {
	name    string
	samples int
	total   float64
}

func NewMeanEnergy() *MeanEnergy {
	return &MeanEnergy{name: "mean_energy"}
}

func (e *MeanEnergy) Name() string { return e.name }

func (e *MeanEnergy) Observe(snap dynamo.Snapshot) {
	e.total += snap.Energy
	e.samples++
}

func (e *MeanEnergy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.total / float64(e.samples)
}

func (e *MeanEnergy) Reset() {
	e.total = 0
	e.samples = 0
}

// EnergyDrift tracks the largest relative deviation from the first observed
// energy. When the first energy is zero the absolute deviation is used.
type EnergyDrift struct {
	name          string
	initialEnergy float64
	maxDrift      float64
	samples       int
}

func NewEnergyDrift() *EnergyDrift {
	return &EnergyDrift{name: "energy_drift"}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(snap dynamo.Snapshot) {
	if e.samples == 0 {
		e.initialEnergy = snap.Energy
	}
	e.samples++

	drift := math.Abs(snap.Energy - e.initialEnergy)
	if e.initialEnergy != 0 {
		drift /= math.Abs(e.initialEnergy)
	}
	if !math.IsNaN(drift) {
		e.maxDrift = math.Max(e.maxDrift, drift)
	} else {
		e.maxDrift = math.Inf(1)
	}
}

func (e *EnergyDrift) Value() float64 {
	return e.maxDrift
}

func (e *EnergyDrift) Reset() {
	e.initialEnergy = 0
	e.maxDrift = 0
	e.samples = 0
}
