package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
)

// Braille Patterns: 2x4 dots
// 1 4
// 2 5
// 3 6
// 7 8
//
// Unicode offset 0x2800
var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

const brailleBlank = 0x2800

// Canvas is a braille dot grid with one colour per cell. The last colour
// written to a cell wins.
type Canvas struct {
	Width, Height int
	Grid          [][]rune
	Colors        [][]colorful.Color
	colored       [][]bool
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{
		Width:   w,
		Height:  h,
		Grid:    make([][]rune, h),
		Colors:  make([][]colorful.Color, h),
		colored: make([][]bool, h),
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
		c.Colors[i] = make([]colorful.Color, w)
		c.colored[i] = make([]bool, w)
	}
	c.Clear()
	return c
}

// DotWidth and DotHeight are the canvas size in sub-pixels.
func (c *Canvas) DotWidth() int  { return c.Width * 2 }
func (c *Canvas) DotHeight() int { return c.Height * 4 }

// Set lights the sub-pixel at (x, y) and reports whether it was on the
// canvas. The cell keeps whatever colour it already has.
func (c *Canvas) Set(x, y int) bool {
	if x < 0 || y < 0 {
		return false
	}
	col, row := x/2, y/4
	if col >= c.Width || row >= c.Height {
		return false
	}
	c.Grid[row][col] |= rune(pixelMap[y%4][x%2])
	return true
}

// SetColor sets a pixel and paints its cell.
func (c *Canvas) SetColor(x, y int, clr colorful.Color) {
	if !c.Set(x, y) {
		return
	}
	c.Colors[y/4][x/2] = clr
	c.colored[y/4][x/2] = true
}

// IsSet reports whether the sub-pixel is lit.
func (c *Canvas) IsSet(x, y int) bool {
	if x < 0 || y < 0 || x/2 >= c.Width || y/4 >= c.Height {
		return false
	}
	return c.Grid[y/4][x/2]&rune(pixelMap[y%4][x%2]) != 0
}

// Clear resets the canvas
func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = brailleBlank
			c.colored[i][j] = false
		}
	}
}

// DrawLine draws a line using Bresenham's algorithm
func (c *Canvas) DrawLine(x0, y0, x1, y1 int, clr colorful.Color) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		c.SetColor(x0, y0, clr)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// Disc fills a circle of radius r sub-pixels.
func (c *Canvas) Disc(cx, cy, r int, clr colorful.Color) {
	if r <= 0 {
		c.SetColor(cx, cy, clr)
		return
	}
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			if dx*dx+dy*dy <= r*r {
				c.SetColor(cx+dx, cy+dy, clr)
			}
		}
	}
}

// Circle draws a circle outline using the midpoint algorithm.
func (c *Canvas) Circle(cx, cy, r int, clr colorful.Color) {
	if r <= 0 {
		c.SetColor(cx, cy, clr)
		return
	}
	x, y, d := r, 0, 1-r
	for x >= y {
		for _, p := range [8][2]int{{x, y}, {y, x}, {-y, x}, {-x, y}, {-x, -y}, {-y, -x}, {y, -x}, {x, -y}} {
			c.SetColor(cx+p[0], cy+p[1], clr)
		}
		y++
		if d < 0 {
			d += 2*y + 1
		} else {
			x--
			d += 2*(y-x) + 1
		}
	}
}

// String renders the grid without colour.
func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row) + "\n")
	}
	return b.String()
}

// Render renders the grid with each coloured run wrapped in a lipgloss style.
func (c *Canvas) Render() string {
	var b strings.Builder
	for i, row := range c.Grid {
		start := 0
		for start < len(row) {
			end := start + 1
			for end < len(row) && c.sameColor(i, start, end) {
				end++
			}
			run := string(row[start:end])
			if c.colored[i][start] {
				run = lipgloss.NewStyle().Foreground(lipgloss.Color(c.Colors[i][start].Hex())).Render(run)
			}
			b.WriteString(run)
			start = end
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func (c *Canvas) sameColor(row, a, b int) bool {
	if c.colored[row][a] != c.colored[row][b] {
		return false
	}
	return !c.colored[row][a] || c.Colors[row][a] == c.Colors[row][b]
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
