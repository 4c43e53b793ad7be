package config

import (
	"fmt"
	"math"
	"os"

	"github.com/san-kum/nlink/internal/dynamo"
	"github.com/san-kum/nlink/internal/physics"
	"gopkg.in/yaml.v3"
)

const (
	DefaultLinks    = 5
	DefaultDt       = 0.01
	DefaultDuration = 100.0
	DefaultCadence  = 10
	DefaultTheta    = math.Pi / 2
)

type Config struct {
	Links             int             `yaml:"links"`
	Masses            []float64       `yaml:"masses,omitempty"`
	Lengths           []float64       `yaml:"lengths,omitempty"`
	Gravity           float64         `yaml:"gravity"`
	Dt                float64         `yaml:"dt"`
	Duration          float64         `yaml:"duration"`
	Cadence           int             `yaml:"cadence"`
	Formulation       string          `yaml:"formulation"`
	Integrator        string          `yaml:"integrator"`
	ValidateState     bool            `yaml:"validate_state"`
	CheckConditioning bool            `yaml:"check_conditioning"`
	InitState         InitStateConfig `yaml:"init_state"`
	LogLevel          string          `yaml:"log_level,omitempty"`
}

// InitStateConfig holds per-link initial angles and angular velocities.
// Empty lists are filled with θ = π/2 and dθ = 0.
type InitStateConfig struct {
	Theta  []float64 `yaml:"theta,omitempty"`
	DTheta []float64 `yaml:"dtheta,omitempty"`
}

// DefaultConfig is the classic five-link run: masses and lengths (i+1)/2,
// every link horizontal and at rest, frames every 10 steps for 100 s.
func DefaultConfig() *Config {
	return &Config{
		Links:         DefaultLinks,
		Gravity:       dynamo.StandardGravity,
		Dt:            DefaultDt,
		Duration:      DefaultDuration,
		Cadence:       DefaultCadence,
		Formulation:   physics.FormulationLegacy.String(),
		Integrator:    "rk4",
		ValidateState: true,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Clone() *Config {
	out := *c
	out.Masses = cloneFloats(c.Masses)
	out.Lengths = cloneFloats(c.Lengths)
	out.InitState.Theta = cloneFloats(c.InitState.Theta)
	out.InitState.DTheta = cloneFloats(c.InitState.DTheta)
	return &out
}

func cloneFloats(v []float64) []float64 {
	if v == nil {
		return nil
	}
	return append([]float64(nil), v...)
}

// Resolve infers the link count from the lists when Links is zero and fills
// every empty list with its default. It does not validate.
func (c *Config) Resolve() {
	if c.Links == 0 {
		for _, v := range [][]float64{c.Masses, c.Lengths, c.InitState.Theta, c.InitState.DTheta} {
			if len(v) > 0 {
				c.Links = len(v)
				break
			}
		}
	}
	if c.Links <= 0 {
		return
	}

	if len(c.Masses) == 0 {
		c.Masses = fill(c.Links, func(i int) float64 { return float64(i+1) * 0.5 })
	}
	if len(c.Lengths) == 0 {
		c.Lengths = fill(c.Links, func(i int) float64 { return float64(i+1) * 0.5 })
	}
	if len(c.InitState.Theta) == 0 {
		c.InitState.Theta = fill(c.Links, func(int) float64 { return DefaultTheta })
	}
	if len(c.InitState.DTheta) == 0 {
		c.InitState.DTheta = make([]float64, c.Links)
	}
}

func fill(n int, f func(i int) float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = f(i)
	}
	return out
}

// Validate resolves defaults and rejects configurations that cannot be run.
func (c *Config) Validate() error {
	c.Resolve()

	if c.Links <= 0 {
		return fmt.Errorf("%w: links must be positive, got %d", dynamo.ErrParameterBounds, c.Links)
	}
	lists := []struct {
		name string
		v    []float64
	}{
		{"masses", c.Masses},
		{"lengths", c.Lengths},
		{"init_state.theta", c.InitState.Theta},
		{"init_state.dtheta", c.InitState.DTheta},
	}
	for _, l := range lists {
		if len(l.v) != c.Links {
			return fmt.Errorf("%w: %s has %d entries for %d links", dynamo.ErrDimensionMismatch, l.name, len(l.v), c.Links)
		}
	}
	if !(c.Gravity > 0) {
		return fmt.Errorf("%w: gravity must be positive, got %f", dynamo.ErrParameterBounds, c.Gravity)
	}
	if !(c.Dt > 0) {
		return fmt.Errorf("%w: dt must be positive, got %f", dynamo.ErrParameterBounds, c.Dt)
	}
	if !(c.Duration > 0) {
		return fmt.Errorf("%w: duration must be positive, got %f", dynamo.ErrParameterBounds, c.Duration)
	}
	if c.Cadence < 1 {
		return fmt.Errorf("%w: cadence must be at least 1, got %d", dynamo.ErrParameterBounds, c.Cadence)
	}
	if _, err := physics.ParseFormulation(c.Formulation); err != nil {
		return err
	}
	if _, err := c.Params(); err != nil {
		return err
	}
	if !c.InitialState().IsValid() {
		return fmt.Errorf("init_state: %w", dynamo.ErrInvalidState)
	}
	return nil
}

func (c *Config) Params() (*dynamo.Params, error) {
	return dynamo.NewParams(c.Masses, c.Lengths, c.Gravity)
}

// InitialState returns a copy of the configured initial state.
func (c *Config) InitialState() dynamo.State {
	return dynamo.State{
		Theta:  cloneFloats(c.InitState.Theta),
		DTheta: cloneFloats(c.InitState.DTheta),
	}
}

func (c *Config) RunConfig() dynamo.Config {
	return dynamo.Config{
		Dt:                c.Dt,
		Duration:          c.Duration,
		Cadence:           c.Cadence,
		ValidateState:     c.ValidateState,
		CheckConditioning: c.CheckConditioning,
	}
}
