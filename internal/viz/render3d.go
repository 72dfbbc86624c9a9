package viz

import (
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/lucasb-eyer/go-colorful"
)

// Camera projects world coordinates onto the canvas. World points are
// first scaled by Scale*Zoom into a unit cube, rotated, then perspective
// divided from Distance.
type Camera struct {
	Distance         float64
	Near             float64
	RotX, RotY, RotZ float64
	Zoom             float64
	Scale            float64
}

// NewCamera returns a camera tilted so the orbital plane reads as ellipses.
func NewCamera() *Camera {
	return &Camera{Distance: 5, Near: 0.1, RotX: -1.0, Zoom: 1.0, Scale: 1.0}
}

func (c *Camera) RotateX(a float64) { c.RotX += a }
func (c *Camera) RotateY(a float64) { c.RotY += a }
func (c *Camera) RotateZ(a float64) { c.RotZ += a }
func (c *Camera) ZoomIn()           { c.Zoom = math.Min(50, c.Zoom*1.25) }
func (c *Camera) ZoomOut()          { c.Zoom = math.Max(0.1, c.Zoom/1.25) }

// Fit scales the camera so a sphere of the given radius fills the view.
func (c *Camera) Fit(extent float64) {
	if extent > 0 {
		c.Scale = 1 / extent
	}
}

// Rotation is the combined X, then Y, then Z rotation.
func (c *Camera) Rotation() mgl64.Mat3 {
	return mgl64.Rotate3DZ(c.RotZ).Mul3(mgl64.Rotate3DY(c.RotY)).Mul3(mgl64.Rotate3DX(c.RotX))
}

func (c *Camera) view(p mgl64.Vec3) mgl64.Vec3 {
	return c.Rotation().Mul3x1(p.Mul(c.Scale * c.Zoom))
}

func (c *Camera) pixelScale(sw, sh int) float64 {
	return float64(min(sw, sh)) / 2.2
}

// Project converts a world point to sub-pixel coordinates on an sw x sh
// surface. It returns x, y, depth and visibility.
func (c *Camera) Project(p mgl64.Vec3, sw, sh int) (int, int, float64, bool) {
	v := c.view(p)
	if v.Z() >= c.Distance-c.Near {
		return 0, 0, 0, false
	}
	persp := c.Distance / (c.Distance - v.Z())
	ps := c.pixelScale(sw, sh)
	sx := int(math.Round(v.X()*persp*ps)) + sw/2
	sy := int(math.Round(-v.Y()*persp*ps)) + sh/2
	return sx, sy, v.Z(), sx >= 0 && sx < sw && sy >= 0 && sy < sh
}

// ProjectRadius is the on-screen size of a sphere of radius r at p.
func (c *Camera) ProjectRadius(p mgl64.Vec3, r float64, sw, sh int) int {
	v := c.view(p)
	if v.Z() >= c.Distance-c.Near {
		return 0
	}
	persp := c.Distance / (c.Distance - v.Z())
	return int(math.Round(r * c.Scale * c.Zoom * persp * c.pixelScale(sw, sh)))
}

type Edge struct {
	Start, End mgl64.Vec3
	Color      colorful.Color
}

type Wireframe struct{ Edges []Edge }

func NewWireframe() *Wireframe { return &Wireframe{Edges: make([]Edge, 0)} }

func (w *Wireframe) AddEdge(s, e mgl64.Vec3, c colorful.Color) {
	w.Edges = append(w.Edges, Edge{s, e, c})
}

func (w *Wireframe) AddPoint(p mgl64.Vec3, c colorful.Color) { w.AddEdge(p, p, c) }

// AddPolyline joins consecutive points, closing the loop when closed is set.
func (w *Wireframe) AddPolyline(pts []mgl64.Vec3, closed bool, c colorful.Color) {
	for i := 1; i < len(pts); i++ {
		w.AddEdge(pts[i-1], pts[i], c)
	}
	if closed && len(pts) > 2 {
		w.AddEdge(pts[len(pts)-1], pts[0], c)
	}
}

// AddRing adds a circle of radius r around center in the z = center.z plane.
func (w *Wireframe) AddRing(center mgl64.Vec3, r float64, segments int, c colorful.Color) {
	pts := make([]mgl64.Vec3, segments)
	for i := range pts {
		a := 2 * math.Pi * float64(i) / float64(segments)
		pts[i] = center.Add(mgl64.Vec3{r * math.Cos(a), r * math.Sin(a), 0})
	}
	w.AddPolyline(pts, true, c)
}

func (w *Wireframe) Clear() { w.Edges = w.Edges[:0] }

type projectedEdge struct {
	x1, y1, x2, y2 int
	depth          float64
	color          colorful.Color
}

// Render3D draws the wireframe far-to-near so nearer edges own shared cells.
func Render3D(c *Canvas, w *Wireframe, cam *Camera) {
	if c == nil || w == nil || cam == nil {
		return
	}
	sw, sh := c.DotWidth(), c.DotHeight()
	proj := make([]projectedEdge, 0, len(w.Edges))
	for _, e := range w.Edges {
		x1, y1, d1, v1 := cam.Project(e.Start, sw, sh)
		x2, y2, d2, v2 := cam.Project(e.End, sw, sh)
		if v1 || v2 {
			proj = append(proj, projectedEdge{x1, y1, x2, y2, (d1 + d2) / 2, e.Color})
		}
	}
	sort.SliceStable(proj, func(i, j int) bool { return proj[i].depth < proj[j].depth })
	for _, e := range proj {
		if e.x1 == e.x2 && e.y1 == e.y2 {
			c.SetColor(e.x1, e.y1, e.color)
		} else {
			c.DrawLine(e.x1, e.y1, e.x2, e.y2, e.color)
		}
	}
}

// CreateAxesWireframe draws the three world axes from the origin.
func CreateAxesWireframe(l float64, x, y, z colorful.Color) *Wireframe {
	w, o := NewWireframe(), mgl64.Vec3{}
	w.AddEdge(o, mgl64.Vec3{l, 0, 0}, x)
	w.AddEdge(o, mgl64.Vec3{0, l, 0}, y)
	w.AddEdge(o, mgl64.Vec3{0, 0, l}, z)
	return w
}
