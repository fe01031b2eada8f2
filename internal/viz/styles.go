package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
)

var (
	// Panel frame around each module canvas
	PanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444466"))

	StatusLive = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00ff88"))

	StatusWaiting = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ffaa00"))

	StatusFaulted = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ff4444"))

	// Metric value style
	MetricValue = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00ccff")).
			Bold(true)

	// Metric label style
	MetricLabel = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888899")).
			Width(10)

	SparkHigh = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ff88"))
	SparkMid  = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffcc00"))
	SparkLow  = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff4444"))
)

// Panel renders content in a titled frame coloured by the theme.
func Panel(theme Theme, title, content string) string {
	head := lipgloss.NewStyle().Bold(true).Foreground(theme.Secondary).Render(title)
	return PanelStyle.BorderForeground(theme.Muted).Render(head + "\n" + content)
}

// GradientText creates a gradient effect on text using color interpolation
func GradientText(text string, startColor, endColor lipgloss.Color) string {
	if len(text) == 0 {
		return ""
	}
	runes := []rune(text)
	n := len(runes)

	var result strings.Builder
	for i, c := range runes {
		t := 0.0
		if n > 1 {
			t = float64(i) / float64(n-1)
		}
		style := lipgloss.NewStyle().Foreground(Blend(startColor, endColor, t))
		result.WriteString(style.Render(string(c)))
	}
	return result.String()
}

// Blend interpolates two hex colours; t=0 gives a, t=1 gives b.
func Blend(a, b lipgloss.Color, t float64) lipgloss.Color {
	if t <= 0 {
		return a
	}
	if t >= 1 {
		return b
	}
	return lipgloss.Color(hexOrWhite(a).BlendRgb(hexOrWhite(b), t).Clamped().Hex())
}

// Shade scales a colour between the theme background (level 0) and full
// brightness (level 1).
func (t Theme) Shade(c lipgloss.Color, level float64) lipgloss.Color {
	return Blend(t.Background, c, level)
}

// AnimatedSpinner returns frame of animated spinner
func AnimatedSpinner(frame int) string {
	spinners := []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
	return spinners[frame%len(spinners)]
}

// ProgressBar renders a 0..1 gauge as a bar
func ProgressBar(percent float64, width int) string {
	if width <= 0 {
		return ""
	}
	filled := int(percent * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}

	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)

	if percent > 0.8 {
		return SparkLow.Render(bar)
	} else if percent > 0.4 {
		return SparkMid.Render(bar)
	}
	return SparkHigh.Render(bar)
}

// hexOrWhite parses a #rrggbb colour; ANSI indices and malformed values
// read as white.
func hexOrWhite(c lipgloss.Color) colorful.Color {
	col, err := colorful.Hex(string(c))
	if err != nil {
		return colorful.Color{R: 1, G: 1, B: 1}
	}
	return col
}
