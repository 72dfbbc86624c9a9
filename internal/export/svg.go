// Package export writes snapshots and recorded tracks as SVG documents.
package export

import (
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/san-kum/orrery/internal/scene"
	"github.com/san-kum/orrery/internal/viz"
)

const background = "#0a0a0a"

var (
	defaultBody = colorful.Color{R: 0.8, G: 0.8, B: 0.8}
	defaultSun  = colorful.Color{R: 0.99, G: 0.72, B: 0.07}
	orbitColor  = "#3b4261"
	starColor   = "#a9b1d6"
)

// SnapshotToSVG draws a top-down view of s on a size x size square. The
// view is fitted to the snapshot's extent.
func SnapshotToSVG(s scene.Snapshot, size int) string {
	ext := s.Extent()
	if ext <= 0 {
		ext = 1
	}
	half := float64(size) / 2
	k := half / (ext * 1.05)
	px := func(p mgl64.Vec3) (float64, float64) {
		return half + p.X()*k, half - p.Y()*k
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="%s"/>
`, size, size, size, size, background))

	sb.WriteString(fmt.Sprintf(`<g id="background" fill="%s">`+"\n", starColor))
	for _, p := range s.Background {
		x, y := px(p)
		if x < 0 || y < 0 || x > float64(size) || y > float64(size) {
			continue
		}
		sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="0.8"/>`+"\n", x, y))
	}
	sb.WriteString("</g>\n")

	sb.WriteString(fmt.Sprintf(`<g id="orbits" fill="none" stroke="%s" stroke-width="0.7">`+"\n", orbitColor))
	for _, b := range s.Bodies {
		if len(b.OrbitPath) < 2 {
			continue
		}
		sb.WriteString(`<polygon points="`)
		for i, p := range b.OrbitPath {
			x, y := px(p)
			if i > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
		}
		sb.WriteString(`"/>` + "\n")
	}
	sb.WriteString("</g>\n")

	sun := viz.ParseColor(s.Sun.Sun.DisplayColor, defaultSun)
	sb.WriteString(fmt.Sprintf(`<circle id="sun" cx="%.1f" cy="%.1f" r="%.2f" fill="%s"/>`+"\n",
		half, half, visible(s.Sun.DisplayRadius*k), sun.Hex()))

	sb.WriteString(`<g id="bodies">` + "\n")
	for _, b := range s.Bodies {
		x, y := px(b.Position.Point)
		clr := viz.ParseColor(b.Body.DisplayColor, defaultBody)
		r := visible(b.DisplayRadius * k)
		sb.WriteString(fmt.Sprintf(`<g id="%s">`+"\n", xmlEscape(b.Body.Name)))
		if a := b.Attachments; a.RingOuterRadius > 0 {
			ring := clr.BlendLab(colorful.Color{R: 0.5, G: 0.5, B: 0.5}, 0.4).Clamped()
			inner, outer := a.RingInnerRadius*k, a.RingOuterRadius*k
			// ring drawn as a band: stroke centred between inner and outer radius
			sb.WriteString(fmt.Sprintf(`<ellipse cx="%.1f" cy="%.1f" rx="%.2f" ry="%.2f" fill="none" stroke="%s" stroke-width="%.2f" stroke-opacity="0.7"/>`+"\n",
				x, y, (inner+outer)/2, (inner+outer)/2*0.4, ring.Hex(), max(outer-inner, 0.5)))
		}
		sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="%.2f" fill="%s"/>`+"\n", x, y, r, clr.Hex()))
		if a := b.Attachments; a.CloudRadius > 0 {
			sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="%.2f" fill="#ffffff" fill-opacity="0.35"/>`+"\n",
				x, y, visible(a.CloudRadius*k)))
		}
		sb.WriteString("</g>\n")
	}
	sb.WriteString("</g>\n")

	sb.WriteString(fmt.Sprintf(`<text x="8" y="%d" fill="#888899" font-family="monospace" font-size="12">t=%.2f</text>`+"\n", size-8, s.Elapsed))
	sb.WriteString("</svg>")
	return sb.String()
}

func visible(r float64) float64 {
	if r < 1 {
		return 1
	}
	return r
}

func xmlEscape(s string) string {
	return strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;").Replace(s)
}

// CanvasToSVG converts a Braille canvas to SVG format, keeping per-cell
// colours.
func CanvasToSVG(canvas *viz.Canvas, scale float64) string {
	if canvas == nil {
		return ""
	}

	width := float64(canvas.DotWidth()) * scale
	height := float64(canvas.DotHeight()) * scale

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="%s"/>
<g fill="#00ff00">
`, width, height, width, height, background))

	dotRadius := scale * 0.4
	for y := 0; y < canvas.DotHeight(); y++ {
		for x := 0; x < canvas.DotWidth(); x++ {
			if !canvas.IsSet(x, y) {
				continue
			}
			cx := float64(x)*scale + scale/2
			cy := float64(y)*scale + scale/2
			clr := canvas.Colors[y/4][x/2]
			if clr == (colorful.Color{}) {
				sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="%.1f"/>`+"\n", cx, cy, dotRadius))
				continue
			}
			sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="%.1f" fill="%s"/>`+"\n", cx, cy, dotRadius, clr.Hex()))
		}
	}

	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

// Point is one sample of a 2D track.
type Point struct{ X, Y float64 }

// TrajectoryToSVG creates an SVG from trajectory data
func TrajectoryToSVG(points []Point, width, height int, strokeColor string) string {
	if len(points) < 2 {
		return ""
	}

	minX, maxX := points[0].X, points[0].X
	minY, maxY := points[0].Y, points[0].Y
	for _, p := range points {
		minX, maxX = min(minX, p.X), max(maxX, p.X)
		minY, maxY = min(minY, p.Y), max(maxY, p.Y)
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="%s"/>
<path fill="none" stroke="%s" stroke-width="1.5" d="M`,
		width, height, width, height, background, strokeColor))

	for i, p := range points {
		x := (p.X - minX) / rangeX * float64(width)
		y := float64(height) - (p.Y-minY)/rangeY*float64(height)
		if i == 0 {
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
		} else {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
		}
	}

	sb.WriteString(`"/>
</svg>`)
	return sb.String()
}
