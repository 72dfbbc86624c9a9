// Package playback holds the simulated clock and the start/pause/reset state
// machine that advances or freezes it.
//
// A [Controller] is safe for one writer (the tick driver) and any number of
// concurrent readers.
package playback

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
)

const (
	MinSpeedFactor     = 0.1
	MaxSpeedFactor     = 20.0
	DefaultSpeedFactor = 1.0
)

var ErrUnknownCommand = errors.New("playback: unknown command")

// Clock is the simulation clock value. Elapsed never decreases except
// through Reset.
type Clock struct {
	Elapsed float64 `json:"elapsed"`
	Running bool    `json:"running"`
}

type Controller struct {
	mu    sync.RWMutex
	clock Clock
}

// New returns a stopped controller at time zero.
func New() *Controller {
	return &Controller{}
}

// Start is idempotent.
func (c *Controller) Start() {
	c.mu.Lock()
	c.clock.Running = true
	c.mu.Unlock()
}

// Pause freezes time without rewinding it.
func (c *Controller) Pause() {
	c.mu.Lock()
	c.clock.Running = false
	c.mu.Unlock()
}

// Reset stops the clock and rewinds it to zero from any state.
func (c *Controller) Reset() {
	c.mu.Lock()
	c.clock = Clock{}
	c.mu.Unlock()
}

// Tick advances time by speedFactor*deltaTime while running. The speed is
// clamped to [MinSpeedFactor, MaxSpeedFactor] and a negative delta counts as
// zero. It returns the clock after the tick.
func (c *Controller) Tick(deltaTime, speedFactor float64) Clock {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.clock.Running && deltaTime > 0 {
		c.clock.Elapsed += ClampSpeed(speedFactor) * deltaTime
	}
	return c.clock
}

func (c *Controller) Clock() Clock {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.clock
}

func (c *Controller) Elapsed() float64 { return c.Clock().Elapsed }
func (c *Controller) Running() bool    { return c.Clock().Running }

// ClampSpeed bounds a pace multiplier to the supported range. NaN maps to
// the default.
func ClampSpeed(f float64) float64 {
	switch {
	case math.IsNaN(f):
		return DefaultSpeedFactor
	case f < MinSpeedFactor:
		return MinSpeedFactor
	case f > MaxSpeedFactor:
		return MaxSpeedFactor
	}
	return f
}

// Command names one of the three playback transitions.
type Command string

const (
	CommandStart Command = "start"
	CommandPause Command = "pause"
	CommandReset Command = "reset"
)

func ParseCommand(s string) (Command, error) {
	switch cmd := Command(strings.ToLower(strings.TrimSpace(s))); cmd {
	case CommandStart, CommandPause, CommandReset:
		return cmd, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCommand, s)
}

// Apply dispatches a command to the matching transition.
func (c *Controller) Apply(cmd Command) error {
	switch cmd {
	case CommandStart:
		c.Start()
	case CommandPause:
		c.Pause()
	case CommandReset:
		c.Reset()
	default:
		return fmt.Errorf("%w: %q", ErrUnknownCommand, cmd)
	}
	return nil
}
