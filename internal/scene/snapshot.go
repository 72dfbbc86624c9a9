// Package scene assembles render-ready frames from the catalog and the
// simulation clock.
//
// A [Builder] precomputes everything that does not depend on time (orbit
// rings and the background star field) once, then [Builder.Build] produces a
// fresh [Snapshot] per frame. Snapshots own copies of all their slices, so a
// renderer may keep or modify one without affecting later frames.
package scene

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/orrery/internal/catalog"
	"github.com/san-kum/orrery/internal/orbit"
)

const (
	CloudScale     = 1.02
	RingInnerScale = 1.1
	RingOuterScale = 1.8
)

// RenderOptions are forwarded to renderers with every snapshot.
type RenderOptions struct {
	DistanceScale        float64 `json:"distance_scale"`
	RadiusScale          float64 `json:"radius_scale"`
	BackgroundPointCount int     `json:"background_point_count"`
}

// Attachments are the display sizes of a body's decorations. Zero means
// absent.
type Attachments struct {
	CloudRadius     float64 `json:"cloud_radius,omitempty"`
	RingInnerRadius float64 `json:"ring_inner_radius,omitempty"`
	RingOuterRadius float64 `json:"ring_outer_radius,omitempty"`
}

type BodyFrame struct {
	Body          catalog.BodyDescriptor `json:"body"`
	Position      orbit.Position         `json:"position"`
	Angle         float64                `json:"angle"`
	DisplayRadius float64                `json:"display_radius"`
	Attachments   Attachments            `json:"attachments"`
	OrbitPath     []mgl64.Vec3           `json:"orbit_path"`
}

type SunFrame struct {
	Sun           catalog.SunDescriptor `json:"sun"`
	DisplayRadius float64               `json:"display_radius"`
}

// Snapshot is one fully resolved frame.
type Snapshot struct {
	Elapsed    float64       `json:"elapsed"`
	Running    bool          `json:"running"`
	Sun        SunFrame      `json:"sun"`
	Bodies     []BodyFrame   `json:"bodies"`
	Background []mgl64.Vec3  `json:"background"`
	Options    RenderOptions `json:"options"`
}

// Body returns the frame of the named body.
func (s Snapshot) Body(name string) (BodyFrame, bool) {
	for _, b := range s.Bodies {
		if b.Body.Name == name {
			return b, true
		}
	}
	return BodyFrame{}, false
}

// Extent is the largest orbit radius in display units.
func (s Snapshot) Extent() float64 {
	ext := s.Sun.DisplayRadius
	for _, b := range s.Bodies {
		r := b.Body.RelativeDistance*s.Options.DistanceScale + b.DisplayRadius
		if b.Attachments.RingOuterRadius > b.DisplayRadius {
			r += b.Attachments.RingOuterRadius - b.DisplayRadius
		}
		if r > ext {
			ext = r
		}
	}
	return ext
}
