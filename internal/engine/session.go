// Package engine ties one catalog, one playback controller and one scene
// builder into a Session owned by the host application, and drives it from
// a ticker.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/san-kum/orrery/internal/catalog"
	"github.com/san-kum/orrery/internal/config"
	"github.com/san-kum/orrery/internal/playback"
	"github.com/san-kum/orrery/internal/scene"
)

// Renderer consumes one snapshot per frame.
type Renderer interface {
	Render(scene.Snapshot) error
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(scene.Snapshot) error

func (f RendererFunc) Render(s scene.Snapshot) error { return f(s) }

// Observer is notified after every tick and every control command.
type Observer interface {
	OnTick(clock playback.Clock, built time.Duration)
	OnCommand(cmd playback.Command)
}

type Session struct {
	controller *playback.Controller
	builder    *scene.Builder
	logger     *slog.Logger

	mu        sync.RWMutex
	speed     float64
	observers []Observer
}

// NewSession validates the configuration and precomputes the static parts
// of the scene.
func NewSession(cfg *config.Config, cat *catalog.Catalog) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	b, err := scene.NewBuilder(cat, OptionsFromConfig(cfg))
	if err != nil {
		return nil, err
	}

	s := &Session{
		controller: playback.New(),
		builder:    b,
		logger:     slog.With("component", "session"),
		speed:      playback.ClampSpeed(cfg.SpeedFactor),
	}
	if cfg.AutoStart {
		s.controller.Start()
	}
	s.logger.Debug("session created", "bodies", cat.Len(), "speed", s.speed)
	return s, nil
}

func OptionsFromConfig(cfg *config.Config) scene.Options {
	return scene.Options{
		DistanceScale:        cfg.Scale.Distance,
		RadiusScale:          cfg.Scale.Radius,
		AngularRateBase:      cfg.AngularRateBase,
		SpinRate:             cfg.SpinRate,
		BackgroundPointCount: cfg.Background.Points,
		BackgroundExtent:     cfg.Background.Extent,
		Seed:                 cfg.Seed,
	}
}

func (s *Session) AddObserver(o Observer) {
	s.mu.Lock()
	s.observers = append(s.observers, o)
	s.mu.Unlock()
}

func (s *Session) Controller() *playback.Controller { return s.controller }
func (s *Session) Builder() *scene.Builder          { return s.builder }
func (s *Session) Catalog() *catalog.Catalog        { return s.builder.Catalog() }

func (s *Session) Start() { s.command(playback.CommandStart) }
func (s *Session) Pause() { s.command(playback.CommandPause) }
func (s *Session) Reset() { s.command(playback.CommandReset) }

// Apply runs a named playback command.
func (s *Session) Apply(cmd playback.Command) error {
	if err := s.controller.Apply(cmd); err != nil {
		return err
	}
	s.logger.Info("playback command", "command", string(cmd), "elapsed", s.controller.Elapsed())
	for _, o := range s.snapshotObservers() {
		o.OnCommand(cmd)
	}
	return nil
}

func (s *Session) command(cmd playback.Command) {
	// known commands never fail
	_ = s.Apply(cmd)
}

func (s *Session) Speed() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.speed
}

// SetSpeed stores the clamped pace and returns it.
func (s *Session) SetSpeed(f float64) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.speed = playback.ClampSpeed(f)
	return s.speed
}

// Advance ticks the clock by dt seconds at the session speed and builds the
// resulting frame.
func (s *Session) Advance(dt float64) scene.Snapshot {
	clock := s.controller.Tick(dt, s.Speed())
	start := time.Now()
	snap := s.builder.Build(clock)
	built := time.Since(start)
	for _, o := range s.snapshotObservers() {
		o.OnTick(clock, built)
	}
	return snap
}

// Frame builds the current frame without advancing time.
func (s *Session) Frame() scene.Snapshot {
	return s.builder.Build(s.controller.Clock())
}

func (s *Session) snapshotObservers() []Observer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Observer, len(s.observers))
	copy(out, s.observers)
	return out
}

// Run ticks every interval until ctx is done, rendering each frame. The
// delta handed to the clock is the measured wall time between ticks.
func (s *Session) Run(ctx context.Context, interval time.Duration, r Renderer) error {
	if interval <= 0 {
		return fmt.Errorf("engine: tick interval must be positive, got %v", interval)
	}

	if err := r.Render(s.Frame()); err != nil {
		return fmt.Errorf("engine: render: %w", err)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			dt := now.Sub(last).Seconds()
			last = now
			if err := r.Render(s.Advance(dt)); err != nil {
				return fmt.Errorf("engine: render at t=%.4f: %w", s.controller.Elapsed(), err)
			}
		}
	}
}

// Interval converts a frame rate to a tick interval.
func Interval(fps int) time.Duration {
	if fps <= 0 {
		fps = config.DefaultFPS
	}
	return time.Second / time.Duration(fps)
}
