package automation

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/orrery/internal/catalog"
	"github.com/san-kum/orrery/internal/config"
	"github.com/san-kum/orrery/internal/engine"
	"github.com/san-kum/orrery/internal/playback"
	"github.com/san-kum/orrery/internal/scene"
)

const playPauseReset = `
name: play-pause-reset
steps:
  - command: start
    speed: 10
    ticks: 3
    dt: 1
    expect: {elapsed: 30, running: true}
  - command: pause
    ticks: 1
    dt: 1
    expect: {elapsed: 30, running: false}
  - command: reset
    expect: {elapsed: 0, running: false}
`

func newSession(t *testing.T) *engine.Session {
	t.Helper()
	s, err := engine.NewSession(config.DefaultConfig(), catalog.Default())
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestRunScenario(t *testing.T) {
	sc, err := ParseScenario([]byte(playPauseReset))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	frames := 0
	r := engine.RendererFunc(func(scene.Snapshot) error { frames++; return nil })
	results, err := RunScenario(context.Background(), sc, newSession(t), r)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if results[0].Clock.Elapsed != 30 || results[0].Speed != 10 {
		t.Errorf("step 1: %+v", results[0])
	}
	if frames != 4 {
		t.Errorf("expected 4 rendered ticks, got %d", frames)
	}
}

func TestRunScenarioExpectationFails(t *testing.T) {
	sc, err := ParseScenario([]byte(`
steps:
  - command: start
    ticks: 1
    dt: 1
    expect: {elapsed: 5}
`))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := RunScenario(context.Background(), sc, newSession(t), nil); !errors.Is(err, ErrExpectation) {
		t.Errorf("expected ErrExpectation, got %v", err)
	}
}

func TestRunScenarioCancelled(t *testing.T) {
	sc := &Scenario{Steps: []Step{{Command: "start", Ticks: 10, Dt: 1}}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := RunScenario(ctx, sc, newSession(t), nil); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestScenarioValidate(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"unknown command", "steps: [{command: rewind}]"},
		{"negative ticks", "steps: [{ticks: -1, dt: 1}]"},
		{"missing dt", "steps: [{ticks: 2}]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseScenario([]byte(tt.yaml)); err == nil {
				t.Error("expected validation error")
			}
		})
	}

	_, err := ParseScenario([]byte("steps: [{command: rewind}]"))
	if !errors.Is(err, playback.ErrUnknownCommand) {
		t.Errorf("expected ErrUnknownCommand in chain, got %v", err)
	}
}

func TestLoadScenario(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.yaml")
	if err := os.WriteFile(path, []byte(playPauseReset), 0644); err != nil {
		t.Fatal(err)
	}
	sc, err := LoadScenario(path)
	if err != nil {
		t.Fatal(err)
	}
	if sc.Name != "play-pause-reset" || len(sc.Steps) != 3 {
		t.Errorf("unexpected scenario %+v", sc)
	}
}
