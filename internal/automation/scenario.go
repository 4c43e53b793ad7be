package automation

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/san-kum/nlink/internal/config"
	"github.com/san-kum/nlink/internal/dynamo"
	"github.com/san-kum/nlink/internal/experiment"
	"gopkg.in/yaml.v3"
)

// Scenario is a scripted sequence of runs.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep starts from a preset (group/name) or the default config and
// applies the fields given under config on top of it.
type ScenarioStep struct {
	Name   string    `yaml:"name"`
	Preset string    `yaml:"preset"`
	Config yaml.Node `yaml:"config"`
	Save   bool      `yaml:"save"`
}

// StepResult is the outcome of one scenario step. RunID is empty for steps
// that were not saved.
type StepResult struct {
	Name   string
	Config *config.Config
	Result *dynamo.Result
	RunID  string
}

// SaveFunc persists a finished run and returns its id.
type SaveFunc func(ctx context.Context, cfg *config.Config, result *dynamo.Result) (string, error)

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseScenario(data)
}

func ParseScenario(data []byte) (*Scenario, error) {
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	if len(sc.Steps) == 0 {
		return nil, fmt.Errorf("scenario %q has no steps", sc.Name)
	}
	return &sc, nil
}

// Resolve builds and validates the configuration of the step.
func (s ScenarioStep) Resolve() (*config.Config, error) {
	cfg := config.DefaultConfig()
	if s.Preset != "" {
		group, name, ok := strings.Cut(s.Preset, "/")
		if !ok {
			return nil, fmt.Errorf("preset must be group/name, got %q", s.Preset)
		}
		if cfg = config.GetPreset(group, name); cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s", s.Preset)
		}
	}
	if !s.Config.IsZero() {
		if err := s.Config.Decode(cfg); err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// RunScenario executes every step in order. save is called for steps marked
// save and may be nil. The results of the steps completed before a failure
// are returned with the error.
func RunScenario(ctx context.Context, sc *Scenario, logger *slog.Logger, save SaveFunc) ([]StepResult, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	results := make([]StepResult, 0, len(sc.Steps))

	for i, step := range sc.Steps {
		name := step.Name
		if name == "" {
			name = fmt.Sprintf("step %d", i+1)
		}
		logger.Info("scenario step", "scenario", sc.Name, "step", name, "index", i+1, "of", len(sc.Steps))

		cfg, err := step.Resolve()
		if err != nil {
			return results, fmt.Errorf("%s: %w", name, err)
		}
		exp, err := experiment.New(cfg, logger)
		if err != nil {
			return results, fmt.Errorf("%s: %w", name, err)
		}
		result, err := exp.Run(ctx)
		if err != nil {
			return results, fmt.Errorf("%s run: %w", name, err)
		}

		sr := StepResult{Name: name, Config: exp.Config(), Result: result}
		if step.Save && save != nil {
			if sr.RunID, err = save(ctx, exp.Config(), result); err != nil {
				return results, fmt.Errorf("%s save: %w", name, err)
			}
		}
		results = append(results, sr)
	}
	return results, nil
}
