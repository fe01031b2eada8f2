package export

import (
	"bytes"
	"image/gif"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/quantviz/internal/viz"
)

func TestCanvasToSVG(t *testing.T) {
	c := viz.NewCanvas(4, 2)
	c.Pen(lipgloss.Color("#ff0000"))
	c.Set(0, 0)
	c.Set(1, 0)
	c.Pen("")
	c.Set(7, 7)
	c.Pen(lipgloss.Color("#00ff00"))
	c.Text(2, 1, "<")

	svg := CanvasToSVG(c, 2, viz.DefaultTheme)
	assert.True(t, strings.HasPrefix(svg, "<?xml"))
	assert.True(t, strings.HasSuffix(svg, "</svg>"))
	assert.Equal(t, 3, strings.Count(svg, "<circle"))
	assert.Contains(t, svg, `<g fill="#ff0000">`)
	assert.Contains(t, svg, `<g fill="`+string(viz.DefaultTheme.Primary)+`">`)
	assert.Contains(t, svg, `fill="#00ff00">&lt;</text>`)
	assert.Contains(t, svg, `width="16" height="16"`)
}

func TestCanvasToSVG_Empty(t *testing.T) {
	assert.Empty(t, CanvasToSVG(nil, 1, viz.DefaultTheme))
	svg := CanvasToSVG(viz.NewCanvas(0, 0), 1, viz.DefaultTheme)
	assert.NotContains(t, svg, "<circle")
}

func TestLineToSVG(t *testing.T) {
	assert.Empty(t, LineToSVG([]float64{1}, 100, 50, "#fff"))

	svg := LineToSVG([]float64{1, 2, 3}, 100, 50, "#00ff88")
	assert.Contains(t, svg, `stroke="#00ff88"`)
	assert.Equal(t, 2, strings.Count(svg, " L"))

	flat := LineToSVG([]float64{5, 5}, 10, 10, "#fff")
	assert.Contains(t, flat, "M0.0,5.0 L10.0,5.0")
}

func TestRecorder(t *testing.T) {
	r := NewRecorder(viz.DefaultTheme, 0)
	var buf bytes.Buffer
	assert.Error(t, r.Encode(&buf), "no frames yet")

	c := viz.NewCanvas(3, 2)
	for i := 0; i < 3; i++ {
		c.Clear()
		c.Pen(lipgloss.Color("#ff0000"))
		c.DrawLine(0, i, 5, i)
		r.Capture(c)
	}
	r.Capture(viz.NewCanvas(0, 0))
	require.Equal(t, 3, r.Len())

	require.NoError(t, r.Encode(&buf))
	g, err := gif.DecodeAll(&buf)
	require.NoError(t, err)
	assert.Len(t, g.Image, 3)
	assert.Equal(t, 24, g.Image[0].Bounds().Dx())
	assert.Equal(t, 32, g.Image[0].Bounds().Dy())
	assert.Equal(t, []int{2, 2, 2}, g.Delay)
}

func TestRecorder_Save(t *testing.T) {
	r := NewRecorder(viz.DefaultTheme, 5)
	c := viz.NewCanvas(2, 1)
	c.Set(0, 0)
	r.Capture(c)
	path := filepath.Join(t.TempDir(), "out.gif")
	assert.NoError(t, r.Save(path))
}

func TestToRGBA(t *testing.T) {
	assert.Equal(t, uint8(0xff), toRGBA("#ff8000").R)
	assert.Equal(t, uint8(0x80), toRGBA("#ff8000").G)
	assert.Equal(t, uint8(0xff), toRGBA("42").B)
}
