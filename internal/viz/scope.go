package viz

import (
	"fmt"
	"io"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/san-kum/orrery/internal/scene"
)

const ringSegments = 48

// Scope draws snapshots onto a canvas through a camera.
type Scope struct {
	Canvas   *Canvas
	Camera   *Camera
	Theme    Theme
	Selected int
	Axes     bool
}

func NewScope(w, h int) *Scope {
	return &Scope{
		Canvas:   NewCanvas(w, h),
		Camera:   NewCamera(),
		Theme:    CurrentTheme,
		Selected: -1,
	}
}

// Draw clears the canvas and paints s: stars, orbits and rings, then the sun
// and bodies on top.
func (sc *Scope) Draw(s scene.Snapshot) {
	c, cam := sc.Canvas, sc.Camera
	c.Clear()
	sw, sh := c.DotWidth(), c.DotHeight()

	star := themeColor(sc.Theme.Star)
	for _, p := range s.Background {
		if x, y, _, ok := cam.Project(p, sw, sh); ok {
			c.SetColor(x, y, star)
		}
	}

	wf := NewWireframe()
	orbit := themeColor(sc.Theme.Orbit)
	accent := themeColor(sc.Theme.Accent)
	for i, b := range s.Bodies {
		clr := orbit
		if i == sc.Selected {
			clr = accent
		}
		wf.AddPolyline(b.OrbitPath, true, clr)
	}
	if sc.Axes {
		ext := s.Extent()
		wf.Edges = append(wf.Edges, CreateAxesWireframe(ext, themeColor(sc.Theme.Error), themeColor(sc.Theme.Success), themeColor(sc.Theme.Primary)).Edges...)
	}
	Render3D(c, wf, cam)

	sun := ParseColor(s.Sun.Sun.DisplayColor, themeColor(sc.Theme.Sun))
	if x, y, _, ok := cam.Project(mgl64.Vec3{}, sw, sh); ok {
		c.Disc(x, y, cam.ProjectRadius(mgl64.Vec3{}, s.Sun.DisplayRadius, sw, sh), sun)
	}

	for i, b := range s.Bodies {
		sc.drawBody(b, i == sc.Selected)
	}
}

func (sc *Scope) drawBody(b scene.BodyFrame, selected bool) {
	c, cam := sc.Canvas, sc.Camera
	sw, sh := c.DotWidth(), c.DotHeight()
	clr := ParseColor(b.Body.DisplayColor, themeColor(sc.Theme.Text))
	p := b.Position.Point

	if b.Attachments.RingOuterRadius > 0 {
		rings := NewWireframe()
		ringClr := clr.BlendLab(themeColor(sc.Theme.Muted), 0.4).Clamped()
		rings.AddRing(p, b.Attachments.RingInnerRadius, ringSegments, ringClr)
		rings.AddRing(p, b.Attachments.RingOuterRadius, ringSegments, ringClr)
		Render3D(c, rings, cam)
	}

	x, y, _, ok := cam.Project(p, sw, sh)
	if !ok {
		return
	}
	r := cam.ProjectRadius(p, b.DisplayRadius, sw, sh)
	c.Disc(x, y, r, clr)
	if b.Attachments.CloudRadius > 0 {
		cr := cam.ProjectRadius(p, b.Attachments.CloudRadius, sw, sh)
		if cr > r {
			c.Circle(x, y, cr, colorful.Color{R: 1, G: 1, B: 1})
		}
	}
	if selected {
		c.Circle(x, y, r+3, themeColor(sc.Theme.Accent))
	}
}

// Printer is a non-interactive renderer that writes each frame as plain
// braille text.
type Printer struct {
	scope *Scope
	w     io.Writer
	clear bool
}

// NewPrinter returns a Printer drawing a w x h cell canvas fitted to the
// given extent. When clear is set each frame starts with an ANSI home and
// clear sequence.
func NewPrinter(out io.Writer, w, h int, extent float64, clear bool) *Printer {
	sc := NewScope(w, h)
	sc.Camera.Fit(extent)
	return &Printer{scope: sc, w: out, clear: clear}
}

func (p *Printer) Scope() *Scope { return p.scope }

func (p *Printer) Render(s scene.Snapshot) error {
	p.scope.Draw(s)
	if p.clear {
		if _, err := io.WriteString(p.w, "\x1b[H\x1b[2J"); err != nil {
			return err
		}
	}
	state := "paused"
	if s.Running {
		state = "running"
	}
	_, err := fmt.Fprintf(p.w, "%st=%.2f %s\n", p.scope.Canvas.String(), s.Elapsed, state)
	return err
}
