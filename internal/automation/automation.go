// Package automation drives a session from a scripted YAML scenario.
package automation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/orrery/internal/engine"
	"github.com/san-kum/orrery/internal/playback"
)

var ErrExpectation = errors.New("automation: expectation failed")

// Scenario defines a scripted playback sequence
type Scenario struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Preset      string `yaml:"preset"`
	Steps       []Step `yaml:"steps"`
}

// Step applies an optional command, an optional speed change, then Ticks
// ticks of Dt seconds each.
type Step struct {
	Command string       `yaml:"command"`
	Speed   float64      `yaml:"speed"`
	Ticks   int          `yaml:"ticks"`
	Dt      float64      `yaml:"dt"`
	Expect  *Expectation `yaml:"expect"`
}

// Expectation checks the clock after a step. Nil fields are not checked.
type Expectation struct {
	Elapsed   *float64 `yaml:"elapsed"`
	Running   *bool    `yaml:"running"`
	Tolerance float64  `yaml:"tolerance"`
}

// StepResult is the clock after each step.
type StepResult struct {
	Step  int            `json:"step"`
	Clock playback.Clock `json:"clock"`
	Speed float64        `json:"speed"`
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
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, err
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}

// Validate checks commands and tick counts before anything runs.
func (sc *Scenario) Validate() error {
	for i, st := range sc.Steps {
		if st.Command != "" {
			if _, err := playback.ParseCommand(st.Command); err != nil {
				return fmt.Errorf("step %d: %w", i+1, err)
			}
		}
		if st.Ticks < 0 {
			return fmt.Errorf("step %d: ticks must not be negative", i+1)
		}
		if st.Ticks > 0 && st.Dt <= 0 {
			return fmt.Errorf("step %d: dt must be positive when ticking", i+1)
		}
	}
	return nil
}

// RunScenario executes every step against s, rendering each tick to r when
// r is non-nil.
func RunScenario(ctx context.Context, sc *Scenario, s *engine.Session, r engine.Renderer) ([]StepResult, error) {
	logger := slog.With("component", "automation", "scenario", sc.Name)
	results := make([]StepResult, 0, len(sc.Steps))

	for i, st := range sc.Steps {
		if st.Command != "" {
			cmd, err := playback.ParseCommand(st.Command)
			if err != nil {
				return results, fmt.Errorf("step %d: %w", i+1, err)
			}
			if err := s.Apply(cmd); err != nil {
				return results, fmt.Errorf("step %d: %w", i+1, err)
			}
		}
		if st.Speed != 0 {
			s.SetSpeed(st.Speed)
		}

		for n := 0; n < st.Ticks; n++ {
			if err := ctx.Err(); err != nil {
				return results, err
			}
			snap := s.Advance(st.Dt)
			if r != nil {
				if err := r.Render(snap); err != nil {
					return results, fmt.Errorf("step %d tick %d: %w", i+1, n+1, err)
				}
			}
		}

		res := StepResult{Step: i + 1, Clock: s.Controller().Clock(), Speed: s.Speed()}
		results = append(results, res)
		logger.Debug("step complete", "step", res.Step, "elapsed", res.Clock.Elapsed, "running", res.Clock.Running)

		if err := st.Expect.check(res.Clock); err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}
	}
	return results, nil
}

func (e *Expectation) check(c playback.Clock) error {
	if e == nil {
		return nil
	}
	tol := e.Tolerance
	if tol <= 0 {
		tol = 1e-9
	}
	if e.Elapsed != nil && math.Abs(c.Elapsed-*e.Elapsed) > tol {
		return fmt.Errorf("%w: elapsed %g, want %g", ErrExpectation, c.Elapsed, *e.Elapsed)
	}
	if e.Running != nil && c.Running != *e.Running {
		return fmt.Errorf("%w: running %t, want %t", ErrExpectation, c.Running, *e.Running)
	}
	return nil
}
