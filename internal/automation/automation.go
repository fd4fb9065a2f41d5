// Package automation runs scripted batches of simulated maneuvers.
package automation

import (
	"context"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/autopark/internal/config"
	"github.com/san-kum/autopark/internal/sim"
)

// Scenario defines a scripted sequence of simulation batches
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep runs Seeds maneuvers of one configuration. Config is a
// partial config document layered over Preset.
type ScenarioStep struct {
	Name       string    `yaml:"name"`
	Preset     string    `yaml:"preset"`
	Seeds      int       `yaml:"seeds"`
	MinSuccess float64   `yaml:"min_success"`
	Config     yaml.Node `yaml:"config"`
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseScenario(data)
}

func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("scenario %q has no steps", scenario.Name)
	}
	return &scenario, nil
}

// Resolve builds and validates the configuration of the step.
func (s ScenarioStep) Resolve() (*config.Config, error) {
	name := s.Preset
	if name == "" {
		name = "default"
	}
	cfg := config.GetPreset(name)
	if cfg == nil {
		return nil, fmt.Errorf("unknown preset %q", name)
	}
	if s.Config.Kind != 0 {
		if err := s.Config.Decode(cfg); err != nil {
			return nil, fmt.Errorf("config overrides: %w", err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// StepResult holds the outcome of one scenario step
type StepResult struct {
	Name        string
	Outcomes    []sim.Outcome
	SuccessRate float64
	Passed      bool
}

// RunScenario executes all steps in a scenario. A step that cannot be
// configured aborts the scenario; a step below its success rate does not.
func RunScenario(ctx context.Context, scenario *Scenario) ([]StepResult, error) {
	results := make([]StepResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		name := step.Name
		if name == "" {
			name = fmt.Sprintf("step%d", i+1)
		}
		cfg, err := step.Resolve()
		if err != nil {
			return results, fmt.Errorf("step %d (%s): %w", i+1, name, err)
		}
		seeds := step.Seeds
		if seeds <= 0 {
			seeds = 1
		}

		log.Infof("[scenario] step %d/%d: %s (%d seeds)", i+1, len(scenario.Steps), name, seeds)
		outcomes := sim.Sweep(ctx, seeds, cfg.Sim.Seed, func(seed int64) (*sim.Runner, error) {
			c := *cfg
			c.Sim.Seed = seed
			return c.NewRunner(nil)
		})
		if err := ctx.Err(); err != nil {
			return results, err
		}

		rate := sim.SuccessRate(outcomes)
		results = append(results, StepResult{
			Name:        name,
			Outcomes:    outcomes,
			SuccessRate: rate,
			Passed:      rate >= step.MinSuccess,
		})
	}

	return results, nil
}

// Summary counts passed and failed steps.
func Summary(results []StepResult) (passed int, failed int) {
	for _, r := range results {
		if r.Passed {
			passed++
		} else {
			failed++
		}
	}
	return passed, failed
}
