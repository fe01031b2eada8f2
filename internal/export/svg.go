package export

import (
	"encoding/xml"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/quantviz/internal/viz"
)

// CanvasToSVG converts a coloured braille canvas to SVG. Each lit sub-pixel
// becomes a circle; text cells become text elements. Cells without a colour
// use the theme's primary colour.
func CanvasToSVG(canvas *viz.Canvas, scale float64, theme viz.Theme) string {
	if canvas == nil {
		return ""
	}

	width := float64(canvas.SubWidth()) * scale
	height := float64(canvas.SubHeight()) * scale

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="%s"/>
`, width, height, width, height, theme.Background))

	// Group dots by colour so each colour is one <g>.
	groups := make(map[lipgloss.Color][]string)
	dotRadius := scale * 0.4
	for y := 0; y < canvas.SubHeight(); y++ {
		for x := 0; x < canvas.SubWidth(); x++ {
			if !canvas.IsSet(x, y) {
				continue
			}
			col := cellColor(canvas, x/2, y/4, theme)
			cx := float64(x)*scale + scale/2
			cy := float64(y)*scale + scale/2
			groups[col] = append(groups[col], fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="%.1f"/>`, cx, cy, dotRadius))
		}
	}
	colors := make([]string, 0, len(groups))
	for c := range groups {
		colors = append(colors, string(c))
	}
	sort.Strings(colors)
	for _, c := range colors {
		sb.WriteString(fmt.Sprintf("<g fill=\"%s\">\n", c))
		for _, dot := range groups[lipgloss.Color(c)] {
			sb.WriteString(dot + "\n")
		}
		sb.WriteString("</g>\n")
	}

	fontSize := scale * 3
	for row := 0; row < canvas.Height; row++ {
		for col := 0; col < canvas.Width; col++ {
			if !canvas.IsText(col, row) {
				continue
			}
			var esc strings.Builder
			_ = xml.EscapeText(&esc, []byte(string(canvas.Grid[row][col])))
			sb.WriteString(fmt.Sprintf(`<text x="%.1f" y="%.1f" font-family="monospace" font-size="%.1f" fill="%s">%s</text>
`, float64(col)*scale*2, float64(row+1)*scale*4-scale, fontSize, cellColor(canvas, col, row, theme), esc.String()))
		}
	}

	sb.WriteString("</svg>")
	return sb.String()
}

func cellColor(canvas *viz.Canvas, col, row int, theme viz.Theme) lipgloss.Color {
	if c := canvas.Colors[row][col]; c != "" {
		return c
	}
	return theme.Primary
}

// LineToSVG draws values as a polyline scaled to fill width x height.
func LineToSVG(values []float64, width, height int, strokeColor string) string {
	if len(values) < 2 {
		return ""
	}

	lo, hi := values[0], values[0]
	for _, v := range values {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}

	// Add padding
	span := hi - lo
	if span == 0 {
		span = 1
	}
	lo -= span * 0.1
	hi += span * 0.1
	span = hi - lo

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
<path fill="none" stroke="%s" stroke-width="1.5" d="M`,
		width, height, width, height, strokeColor))

	step := float64(width) / float64(len(values)-1)
	for i, v := range values {
		x := float64(i) * step
		y := float64(height) - (v-lo)/span*float64(height)

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
