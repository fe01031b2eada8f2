package viz

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/quantviz/internal/geom"
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

const blank = 0x2800

// Canvas is a braille raster with one colour per cell. Drawing coordinates
// are sub-pixels; the canvas is (Width*2) x (Height*4) of them.
type Canvas struct {
	Width, Height int
	Grid          [][]rune
	Colors        [][]lipgloss.Color

	pen lipgloss.Color
	ops int
}

// NewCanvas returns a w x h cell canvas. Negative sizes give an empty
// canvas that ignores every draw.
func NewCanvas(w, h int) *Canvas {
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
		Colors: make([][]lipgloss.Color, h),
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
		c.Colors[i] = make([]lipgloss.Color, w)
		for j := range c.Grid[i] {
			c.Grid[i][j] = blank
		}
	}
	return c
}

func (c *Canvas) SubWidth() int  { return c.Width * 2 }
func (c *Canvas) SubHeight() int { return c.Height * 4 }

// Pen sets the colour given to cells touched by later draws. An empty colour
// leaves cell colours unchanged.
func (c *Canvas) Pen(col lipgloss.Color) { c.pen = col }

// Ops is the number of draw operations since the last Clear.
func (c *Canvas) Ops() int { return c.ops }

// Set sets a pixel at (x, y) where x,y are in "sub-pixel" coordinates.
func (c *Canvas) Set(x, y int) {
	c.ops++
	c.set(x, y)
}

func (c *Canvas) set(x, y int) {
	if x < 0 || y < 0 {
		return
	}
	col, row := x/2, y/4
	if col >= c.Width || row >= c.Height {
		return
	}
	if c.Grid[row][col] < blank || c.Grid[row][col] > blank+0xff {
		c.Grid[row][col] = blank
	}
	c.Grid[row][col] |= rune(pixelMap[y%4][x%2])
	if c.pen != "" {
		c.Colors[row][col] = c.pen
	}
}

// Unset clears a pixel
func (c *Canvas) Unset(x, y int) {
	if x < 0 || y < 0 {
		return
	}
	col, row := x/2, y/4
	if col >= c.Width || row >= c.Height {
		return
	}
	r := c.Grid[row][col]
	if r < blank || r > blank+0xff {
		return
	}
	c.Grid[row][col] = r &^ rune(pixelMap[y%4][x%2])
	if c.Grid[row][col] < blank {
		c.Grid[row][col] = blank
	}
}

// IsSet reports whether the sub-pixel (x, y) is lit. Cells holding text
// report false.
func (c *Canvas) IsSet(x, y int) bool {
	if x < 0 || y < 0 {
		return false
	}
	col, row := x/2, y/4
	if col >= c.Width || row >= c.Height {
		return false
	}
	r := c.Grid[row][col]
	if r < blank || r > blank+0xff {
		return false
	}
	return r&rune(pixelMap[y%4][x%2]) != 0
}

// IsText reports whether cell (col, row) holds a text rune instead of
// braille dots.
func (c *Canvas) IsText(col, row int) bool {
	if col < 0 || row < 0 || col >= c.Width || row >= c.Height {
		return false
	}
	r := c.Grid[row][col]
	return r < blank || r > blank+0xff
}

// Plot sets the pixel nearest to p.
func (c *Canvas) Plot(p geom.Point) {
	c.Set(round(p.X), round(p.Y))
}

// Dot draws a small 2x2 blob at p, or a 4x4 one when glow is true.
func (c *Canvas) Dot(p geom.Point, glow bool) {
	c.ops++
	x, y := round(p.X), round(p.Y)
	r := 0
	if glow {
		r = 1
	}
	for dy := -r; dy <= r+1; dy++ {
		for dx := -r; dx <= r+1; dx++ {
			c.set(x+dx, y+dy)
		}
	}
}

// Clear resets the canvas
func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = blank
			c.Colors[i][j] = ""
		}
	}
	c.ops = 0
}

// DrawLine draws a line using Bresenham's algorithm
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	c.ops++
	c.line(x0, y0, x1, y1)
}

func (c *Canvas) line(x0, y0, x1, y1 int) {
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
		c.set(x0, y0)
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

// DrawBezier strokes a cubic Bézier as a polyline. width draws parallel
// strokes offset vertically so thick edges stay readable at braille scale.
func (c *Canvas) DrawBezier(p0, p1, p2, p3 geom.Point, width float64) {
	c.ops++
	steps := int(math.Abs(p3.X-p0.X)+math.Abs(p3.Y-p0.Y)) / 3
	if steps < 8 {
		steps = 8
	}
	n := int(math.Round(width))
	if n < 1 {
		n = 1
	}
	for k := 0; k < n; k++ {
		off := float64(k) - float64(n-1)/2
		prev := geom.Cubic(p0, p1, p2, p3, 0)
		for i := 1; i <= steps; i++ {
			p := geom.Cubic(p0, p1, p2, p3, float64(i)/float64(steps))
			c.line(round(prev.X), round(prev.Y+off), round(p.X), round(p.Y+off))
			prev = p
		}
	}
}

func (c *Canvas) FillRect(r geom.Rect) {
	c.ops++
	x0, y0 := round(r.X), round(r.Y)
	x1, y1 := round(r.Right()), round(r.Bottom())
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			c.set(x, y)
		}
	}
}

func (c *Canvas) StrokeRect(r geom.Rect) {
	c.ops++
	x0, y0 := round(r.X), round(r.Y)
	x1, y1 := round(r.Right())-1, round(r.Bottom())-1
	if x1 < x0 || y1 < y0 {
		return
	}
	c.line(x0, y0, x1, y0)
	c.line(x1, y0, x1, y1)
	c.line(x1, y1, x0, y1)
	c.line(x0, y1, x0, y0)
}

// Text writes s into the cell grid starting at cell (col, row), clipping at
// the right edge.
func (c *Canvas) Text(col, row int, s string) {
	c.ops++
	if row < 0 || row >= c.Height {
		return
	}
	for _, r := range s {
		if col >= c.Width {
			return
		}
		if col >= 0 {
			c.Grid[row][col] = r
			if c.pen != "" {
				c.Colors[row][col] = c.pen
			}
		}
		col++
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row) + "\n")
	}
	return b.String()
}

// Render returns the canvas with ANSI colours, one lipgloss style per run of
// equally coloured cells. There is no trailing newline.
func (c *Canvas) Render() string {
	var b strings.Builder
	styles := make(map[lipgloss.Color]lipgloss.Style)
	for i, row := range c.Grid {
		if i > 0 {
			b.WriteByte('\n')
		}
		start := 0
		for j := 1; j <= len(row); j++ {
			if j < len(row) && c.Colors[i][j] == c.Colors[i][start] {
				continue
			}
			run := string(row[start:j])
			col := c.Colors[i][start]
			if col == "" {
				b.WriteString(run)
			} else {
				st, ok := styles[col]
				if !ok {
					st = lipgloss.NewStyle().Foreground(col)
					styles[col] = st
				}
				b.WriteString(st.Render(run))
			}
			start = j
		}
	}
	return b.String()
}

func round(v float64) int {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return -1
	}
	return int(math.Round(v))
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
