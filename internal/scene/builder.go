package scene

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/orrery/internal/catalog"
	"github.com/san-kum/orrery/internal/orbit"
	"github.com/san-kum/orrery/internal/playback"
)

var ErrInvalidOptions = errors.New("scene: invalid options")

type Options struct {
	DistanceScale        float64
	RadiusScale          float64
	AngularRateBase      float64
	SpinRate             float64
	BackgroundPointCount int
	BackgroundExtent     float64
	// Seed for the background field. Zero seeds from the wall clock.
	Seed int64
}

func (o Options) validate() error {
	switch {
	case !finitePositive(o.DistanceScale):
		return fmt.Errorf("%w: distance scale must be a positive finite number, got %g", ErrInvalidOptions, o.DistanceScale)
	case !finitePositive(o.RadiusScale):
		return fmt.Errorf("%w: radius scale must be a positive finite number, got %g", ErrInvalidOptions, o.RadiusScale)
	case !finitePositive(o.AngularRateBase):
		return fmt.Errorf("%w: angular rate base must be a positive finite number, got %g", ErrInvalidOptions, o.AngularRateBase)
	case math.IsNaN(o.SpinRate) || math.IsInf(o.SpinRate, 0):
		return fmt.Errorf("%w: spin rate must be finite, got %g", ErrInvalidOptions, o.SpinRate)
	case o.BackgroundPointCount < 0:
		return fmt.Errorf("%w: background point count must not be negative, got %d", ErrInvalidOptions, o.BackgroundPointCount)
	case o.BackgroundPointCount > 0 && !finitePositive(o.BackgroundExtent):
		return fmt.Errorf("%w: background extent must be a positive finite number, got %g", ErrInvalidOptions, o.BackgroundExtent)
	}
	return nil
}

func finitePositive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0)
}

// Builder turns clock values into snapshots. It is read-only after
// construction and safe for concurrent use.
type Builder struct {
	catalog    *catalog.Catalog
	calc       orbit.Calculator
	opts       Options
	paths      [][]mgl64.Vec3
	background []mgl64.Vec3
}

func NewBuilder(cat *catalog.Catalog, opts Options) (*Builder, error) {
	if cat == nil {
		return nil, fmt.Errorf("%w: nil catalog", ErrInvalidOptions)
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}

	b := &Builder{
		catalog: cat,
		calc: orbit.Calculator{
			DistanceScale:   opts.DistanceScale,
			AngularRateBase: opts.AngularRateBase,
			SpinRate:        opts.SpinRate,
		},
		opts:  opts,
		paths: make([][]mgl64.Vec3, cat.Len()),
	}
	for i := 0; i < cat.Len(); i++ {
		b.paths[i] = b.calc.Path(cat.Body(i).RelativeDistance)
	}

	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	b.background = Starfield(rand.New(rand.NewSource(seed)), opts.BackgroundPointCount, opts.BackgroundExtent)

	return b, nil
}

// Starfield scatters n points uniformly in a cube of half-width extent.
func Starfield(rng *rand.Rand, n int, extent float64) []mgl64.Vec3 {
	pts := make([]mgl64.Vec3, n)
	for i := range pts {
		pts[i] = mgl64.Vec3{
			(rng.Float64()*2 - 1) * extent,
			(rng.Float64()*2 - 1) * extent,
			(rng.Float64()*2 - 1) * extent,
		}
	}
	return pts
}

func (b *Builder) Catalog() *catalog.Catalog    { return b.catalog }
func (b *Builder) Calculator() orbit.Calculator { return b.calc }
func (b *Builder) Options() Options             { return b.opts }

func (b *Builder) RenderOptions() RenderOptions {
	return RenderOptions{
		DistanceScale:        b.opts.DistanceScale,
		RadiusScale:          b.opts.RadiusScale,
		BackgroundPointCount: b.opts.BackgroundPointCount,
	}
}

// Build resolves every body at clock.Elapsed.
func (b *Builder) Build(clock playback.Clock) Snapshot {
	sun := b.catalog.Sun()
	s := Snapshot{
		Elapsed: clock.Elapsed,
		Running: clock.Running,
		Sun: SunFrame{
			Sun:           sun,
			DisplayRadius: sun.RelativeRadius * b.opts.RadiusScale,
		},
		Bodies:     make([]BodyFrame, b.catalog.Len()),
		Background: cloneVecs(b.background),
		Options:    b.RenderOptions(),
	}

	for i := range s.Bodies {
		body := b.catalog.Body(i)
		r := body.RelativeRadius * b.opts.RadiusScale
		s.Bodies[i] = BodyFrame{
			Body:          body,
			Position:      b.calc.Position(clock.Elapsed, body.RelativeDistance),
			Angle:         b.calc.Angle(clock.Elapsed, body.RelativeDistance),
			DisplayRadius: r,
			Attachments:   attachments(body.Decorations, r),
			OrbitPath:     cloneVecs(b.paths[i]),
		}
	}

	return s
}

// BuildSnapshot is a one-shot build. Callers rendering many frames should
// keep a Builder so the background stays fixed.
func BuildSnapshot(cat *catalog.Catalog, clock playback.Clock, opts Options) (Snapshot, error) {
	b, err := NewBuilder(cat, opts)
	if err != nil {
		return Snapshot{}, err
	}
	return b.Build(clock), nil
}

func attachments(d catalog.Decorations, r float64) Attachments {
	var a Attachments
	if d.HasClouds {
		a.CloudRadius = r * CloudScale
	}
	if d.HasRings {
		a.RingInnerRadius = r * RingInnerScale
		a.RingOuterRadius = r * RingOuterScale
	}
	return a
}

func cloneVecs(v []mgl64.Vec3) []mgl64.Vec3 {
	out := make([]mgl64.Vec3, len(v))
	copy(out, v)
	return out
}
