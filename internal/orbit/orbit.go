// Package orbit maps simulated time to positions on circular, coplanar orbits.
//
// Every function here is pure: identical inputs give bit-identical results.
// Closer bodies revolve faster because the angular rate is the configured
// base rate divided by the body's relative distance.
package orbit

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	// PathSamples is the number of points in an orbit ring.
	PathSamples = 63
	// PathStep is the angular increment between ring samples, in radians.
	PathStep = 0.1
)

// Position is a point in the orbital plane (z is always 0) and the body's
// spin about its own vertical axis.
type Position struct {
	Point    mgl64.Vec3 `json:"point"`
	Rotation float64    `json:"rotation"`
}

func (p Position) X() float64 { return p.Point[0] }
func (p Position) Y() float64 { return p.Point[1] }
func (p Position) Z() float64 { return p.Point[2] }

// AngularRate is the orbital angular velocity of a body at the given
// relative distance. The distance must be positive.
func AngularRate(relativeDistance, angularRateBase float64) float64 {
	return angularRateBase / relativeDistance
}

// Angle is the orbital angle reached after elapsed simulated time.
func Angle(elapsed, relativeDistance, angularRateBase float64) float64 {
	return elapsed * (angularRateBase / relativeDistance)
}

// Period is the simulated time needed for one full revolution.
func Period(relativeDistance, angularRateBase float64) float64 {
	return 2 * math.Pi * relativeDistance / angularRateBase
}

// ComputePosition places a body on its orbit with a spin rate of one radian
// per unit of simulated time.
func ComputePosition(elapsed, relativeDistance, distanceScale, angularRateBase float64) Position {
	return position(elapsed, relativeDistance, distanceScale, angularRateBase, elapsed)
}

func position(elapsed, relativeDistance, distanceScale, angularRateBase, rotation float64) Position {
	angle := Angle(elapsed, relativeDistance, angularRateBase)
	r := relativeDistance * distanceScale
	return Position{
		Point:    mgl64.Vec3{r * math.Cos(angle), r * math.Sin(angle), 0},
		Rotation: rotation,
	}
}

// Calculator bundles the display scale and rates applied to every body.
type Calculator struct {
	DistanceScale   float64
	AngularRateBase float64
	SpinRate        float64
}

func (c Calculator) Position(elapsed, relativeDistance float64) Position {
	return position(elapsed, relativeDistance, c.DistanceScale, c.AngularRateBase, elapsed*c.SpinRate)
}

func (c Calculator) Angle(elapsed, relativeDistance float64) float64 {
	return Angle(elapsed, relativeDistance, c.AngularRateBase)
}

func (c Calculator) Period(relativeDistance float64) float64 {
	return Period(relativeDistance, c.AngularRateBase)
}

func (c Calculator) Path(relativeDistance float64) []mgl64.Vec3 {
	return Path(relativeDistance, c.DistanceScale)
}

// Path samples the orbit ring of a body. It does not depend on time, so
// callers may compute it once and keep it.
func Path(relativeDistance, distanceScale float64) []mgl64.Vec3 {
	r := relativeDistance * distanceScale
	pts := make([]mgl64.Vec3, PathSamples)
	for i := range pts {
		a := float64(i) * PathStep
		pts[i] = mgl64.Vec3{r * math.Cos(a), r * math.Sin(a), 0}
	}
	return pts
}
