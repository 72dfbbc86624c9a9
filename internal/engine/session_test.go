package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/san-kum/orrery/internal/catalog"
	"github.com/san-kum/orrery/internal/config"
	"github.com/san-kum/orrery/internal/playback"
	"github.com/san-kum/orrery/internal/scene"
)

func newTestSession(t *testing.T) *Session {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Seed = 1
	s, err := NewSession(cfg, catalog.Default())
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	return s
}

type countingObserver struct {
	ticks    int
	commands []playback.Command
}

func (o *countingObserver) OnTick(playback.Clock, time.Duration) { o.ticks++ }
func (o *countingObserver) OnCommand(c playback.Command)         { o.commands = append(o.commands, c) }

func TestSessionAdvance(t *testing.T) {
	s := newTestSession(t)
	s.SetSpeed(10)

	snap := s.Advance(1)
	if snap.Elapsed != 0 {
		t.Errorf("stopped session advanced to %f", snap.Elapsed)
	}

	s.Start()
	for i := 0; i < 3; i++ {
		snap = s.Advance(1)
	}
	if snap.Elapsed != 30 || !snap.Running {
		t.Errorf("expected running at 30, got %+v", snap.Elapsed)
	}

	s.Pause()
	if got := s.Advance(1).Elapsed; got != 30 {
		t.Errorf("paused session moved to %f", got)
	}

	s.Reset()
	frame := s.Frame()
	if frame.Elapsed != 0 || frame.Running {
		t.Errorf("reset left %+v", frame)
	}
}

func TestSessionSpeedClamped(t *testing.T) {
	s := newTestSession(t)
	if got := s.SetSpeed(1000); got != playback.MaxSpeedFactor {
		t.Errorf("expected clamp to %f, got %f", playback.MaxSpeedFactor, got)
	}
	if s.Speed() != playback.MaxSpeedFactor {
		t.Error("speed not stored")
	}
}

func TestSessionAutoStart(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.AutoStart = true
	s, err := NewSession(cfg, catalog.Default())
	if err != nil {
		t.Fatal(err)
	}
	if !s.Controller().Running() {
		t.Error("autostart session not running")
	}
}

func TestSessionInvalidConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Scale.Distance = 0
	if _, err := NewSession(cfg, catalog.Default()); !errors.Is(err, config.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestSessionObservers(t *testing.T) {
	s := newTestSession(t)
	o := &countingObserver{}
	s.AddObserver(o)

	s.Start()
	s.Advance(0.1)
	s.Advance(0.1)
	if err := s.Apply("bogus"); !errors.Is(err, playback.ErrUnknownCommand) {
		t.Errorf("expected ErrUnknownCommand, got %v", err)
	}
	s.Reset()

	if o.ticks != 2 {
		t.Errorf("expected 2 ticks, got %d", o.ticks)
	}
	if len(o.commands) != 2 || o.commands[0] != playback.CommandStart || o.commands[1] != playback.CommandReset {
		t.Errorf("unexpected commands %v", o.commands)
	}
}

func TestSessionRun(t *testing.T) {
	s := newTestSession(t)
	s.Start()

	ctx, cancel := context.WithCancel(context.Background())
	var frames []scene.Snapshot
	r := RendererFunc(func(snap scene.Snapshot) error {
		frames = append(frames, snap)
		if len(frames) == 5 {
			cancel()
		}
		return nil
	})

	err := s.Run(ctx, time.Millisecond, r)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(frames) < 5 {
		t.Fatalf("expected at least 5 frames, got %d", len(frames))
	}
	for i := 1; i < len(frames); i++ {
		if frames[i].Elapsed < frames[i-1].Elapsed {
			t.Errorf("time went backwards at frame %d", i)
		}
	}
	if frames[len(frames)-1].Elapsed <= 0 {
		t.Error("running session did not advance")
	}
}

func TestSessionRunRendererError(t *testing.T) {
	s := newTestSession(t)
	boom := errors.New("boom")
	err := s.Run(context.Background(), time.Millisecond, RendererFunc(func(scene.Snapshot) error { return boom }))
	if !errors.Is(err, boom) {
		t.Errorf("expected wrapped renderer error, got %v", err)
	}

	if err := s.Run(context.Background(), 0, RendererFunc(func(scene.Snapshot) error { return nil })); err == nil {
		t.Error("expected error for zero interval")
	}
}

func TestInterval(t *testing.T) {
	if Interval(20) != 50*time.Millisecond {
		t.Errorf("Interval(20) = %v", Interval(20))
	}
	if Interval(0) != Interval(config.DefaultFPS) {
		t.Error("zero fps should fall back to the default")
	}
}
