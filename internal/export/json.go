package export

import (
	"encoding/json"
	"io"
	"math"
	"strconv"

	"github.com/san-kum/nlink/internal/config"
	"github.com/san-kum/nlink/internal/dynamo"
)

// Float encodes NaN and ±Inf as null, which encoding/json otherwise rejects.
type Float float64

func (f Float) MarshalJSON() ([]byte, error) {
	v := float64(f)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return []byte("null"), nil
	}
	return strconv.AppendFloat(nil, v, 'g', -1, 64), nil
}

func (f *Float) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = Float(math.NaN())
		return nil
	}
	v, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return err
	}
	*f = Float(v)
	return nil
}

type ExportData struct {
	Links       int              `json:"links"`
	Masses      []float64        `json:"masses"`
	Lengths     []float64        `json:"lengths"`
	Gravity     float64          `json:"gravity"`
	Formulation string           `json:"formulation"`
	Integrator  string           `json:"integrator"`
	Dt          float64          `json:"dt"`
	Duration    float64          `json:"duration"`
	Cadence     int              `json:"cadence"`
	Steps       int              `json:"steps"`
	Snapshots   []SnapshotData   `json:"snapshots"`
	Metrics     map[string]Float `json:"metrics"`
	EnergyDrift Float            `json:"energy_drift"`
	Errors      []string         `json:"errors,omitempty"`
	Warnings    []string         `json:"warnings,omitempty"`
}

type SnapshotData struct {
	Step   int        `json:"step"`
	Time   float64    `json:"time"`
	Theta  []Float    `json:"theta"`
	DTheta []Float    `json:"dtheta"`
	Points [][2]Float `json:"points,omitempty"`
	Energy Float      `json:"energy"`
}

func NewExportData(cfg *config.Config, result *dynamo.Result) ExportData {
	data := ExportData{
		Links:       cfg.Links,
		Masses:      cfg.Masses,
		Lengths:     cfg.Lengths,
		Gravity:     cfg.Gravity,
		Formulation: cfg.Formulation,
		Integrator:  cfg.Integrator,
		Dt:          cfg.Dt,
		Duration:    cfg.Duration,
		Cadence:     cfg.Cadence,
		Steps:       result.StepsTaken,
		Snapshots:   make([]SnapshotData, len(result.Snapshots)),
		Metrics:     make(map[string]Float, len(result.Metrics)),
		EnergyDrift: Float(result.EnergyDrift),
	}

	for i, s := range result.Snapshots {
		data.Snapshots[i] = SnapshotData{
			Step:   s.Step,
			Time:   s.Time,
			Theta:  floats(s.State.Theta),
			DTheta: floats(s.State.DTheta),
			Energy: Float(s.Energy),
		}
		for _, p := range s.Positions {
			data.Snapshots[i].Points = append(data.Snapshots[i].Points, [2]Float{Float(p.X), Float(p.Y)})
		}
	}
	for k, v := range result.Metrics {
		data.Metrics[k] = Float(v)
	}
	for _, err := range result.Errors {
		data.Errors = append(data.Errors, err.Error())
	}
	for _, err := range result.Warnings {
		data.Warnings = append(data.Warnings, err.Error())
	}
	return data
}

func floats(v []float64) []Float {
	out := make([]Float, len(v))
	for i, x := range v {
		out[i] = Float(x)
	}
	return out
}

func WriteJSON(w io.Writer, data ExportData) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}
