package viz

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/quantviz/internal/telemetry"
)

// Theme defines the colour scheme for every visual module.
type Theme struct {
	Name       string
	Primary    lipgloss.Color
	Secondary  lipgloss.Color
	Accent     lipgloss.Color
	Background lipgloss.Color
	Text       lipgloss.Color
	Muted      lipgloss.Color
	Success    lipgloss.Color
	Warning    lipgloss.Color
	Error      lipgloss.Color

	// Categories colours node ids by prefix ("ticker", "sector", "cash").
	Categories map[string]lipgloss.Color
	Regimes    map[telemetry.Regime]lipgloss.Color
}

// Available themes
var (
	ThemeCyberpunk = Theme{
		Name:       "cyberpunk",
		Primary:    lipgloss.Color("#ff00ff"),
		Secondary:  lipgloss.Color("#00ffff"),
		Accent:     lipgloss.Color("#ffff00"),
		Background: lipgloss.Color("#0a0a0a"),
		Text:       lipgloss.Color("#ffffff"),
		Muted:      lipgloss.Color("#666666"),
		Success:    lipgloss.Color("#00ff00"),
		Warning:    lipgloss.Color("#ff8800"),
		Error:      lipgloss.Color("#ff0000"),
		Categories: map[string]lipgloss.Color{
			"ticker": lipgloss.Color("#00ffff"),
			"sector": lipgloss.Color("#ff00ff"),
			"cash":   lipgloss.Color("#00ff00"),
			"other":  lipgloss.Color("#aaaaaa"),
		},
		Regimes: map[telemetry.Regime]lipgloss.Color{
			telemetry.RegimeClear: lipgloss.Color("#00ff88"),
			telemetry.RegimeRain:  lipgloss.Color("#ffaa00"),
			telemetry.RegimeStorm: lipgloss.Color("#ff0055"),
		},
	}

	ThemeRetroGreen = Theme{
		Name:       "retro",
		Primary:    lipgloss.Color("#00ff00"), // Green phosphor
		Secondary:  lipgloss.Color("#00cc00"),
		Accent:     lipgloss.Color("#88ff88"),
		Background: lipgloss.Color("#001100"),
		Text:       lipgloss.Color("#00ff00"),
		Muted:      lipgloss.Color("#005500"),
		Success:    lipgloss.Color("#88ff88"),
		Warning:    lipgloss.Color("#ffff00"),
		Error:      lipgloss.Color("#ff0000"),
		Categories: map[string]lipgloss.Color{
			"ticker": lipgloss.Color("#00ff00"),
			"sector": lipgloss.Color("#66cc66"),
			"cash":   lipgloss.Color("#ccffcc"),
		},
		Regimes: map[telemetry.Regime]lipgloss.Color{
			telemetry.RegimeClear: lipgloss.Color("#00ff00"),
			telemetry.RegimeRain:  lipgloss.Color("#ffff00"),
			telemetry.RegimeStorm: lipgloss.Color("#ff0000"),
		},
	}

	ThemeOcean = Theme{
		Name:       "ocean",
		Primary:    lipgloss.Color("#0077be"),
		Secondary:  lipgloss.Color("#00a8cc"),
		Accent:     lipgloss.Color("#ffd700"),
		Background: lipgloss.Color("#001a33"),
		Text:       lipgloss.Color("#e0f0ff"),
		Muted:      lipgloss.Color("#4488aa"),
		Success:    lipgloss.Color("#00ff88"),
		Warning:    lipgloss.Color("#ffcc00"),
		Error:      lipgloss.Color("#ff4444"),
		Categories: map[string]lipgloss.Color{
			"ticker": lipgloss.Color("#00a8cc"),
			"sector": lipgloss.Color("#7fdbff"),
			"cash":   lipgloss.Color("#00ff88"),
			"other":  lipgloss.Color("#4488aa"),
		},
		Regimes: map[telemetry.Regime]lipgloss.Color{
			telemetry.RegimeClear: lipgloss.Color("#00ff88"),
			telemetry.RegimeRain:  lipgloss.Color("#ffcc00"),
			telemetry.RegimeStorm: lipgloss.Color("#ff4444"),
		},
	}

	ThemeSunset = Theme{
		Name:       "sunset",
		Primary:    lipgloss.Color("#ff6b6b"),
		Secondary:  lipgloss.Color("#feca57"),
		Accent:     lipgloss.Color("#ff9ff3"),
		Background: lipgloss.Color("#2d1b2e"),
		Text:       lipgloss.Color("#fff5f5"),
		Muted:      lipgloss.Color("#8b6b8c"),
		Success:    lipgloss.Color("#5fd068"),
		Warning:    lipgloss.Color("#ffc048"),
		Error:      lipgloss.Color("#ff4757"),
		Categories: map[string]lipgloss.Color{
			"ticker": lipgloss.Color("#feca57"),
			"sector": lipgloss.Color("#ff9ff3"),
			"cash":   lipgloss.Color("#5fd068"),
		},
		Regimes: map[telemetry.Regime]lipgloss.Color{
			telemetry.RegimeClear: lipgloss.Color("#5fd068"),
			telemetry.RegimeRain:  lipgloss.Color("#ffc048"),
			telemetry.RegimeStorm: lipgloss.Color("#ff4757"),
		},
	}

	// Default theme
	DefaultTheme = ThemeCyberpunk

	// All available themes
	Themes = []Theme{
		ThemeCyberpunk,
		ThemeRetroGreen,
		ThemeOcean,
		ThemeSunset,
	}
)

// GetTheme returns a theme by name, falling back to the default.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return DefaultTheme
}

// NextTheme returns the theme after name in cycling order.
func NextTheme(name string) Theme {
	for i, t := range Themes {
		if t.Name == name {
			return Themes[(i+1)%len(Themes)]
		}
	}
	return DefaultTheme
}

// ThemeNames returns list of available theme names
func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}

// CategoryColor never fails: unknown categories get the muted colour.
func (t Theme) CategoryColor(category string) lipgloss.Color {
	if c, ok := t.Categories[category]; ok {
		return c
	}
	return t.Muted
}

func (t Theme) RegimeColor(r telemetry.Regime) lipgloss.Color {
	if c, ok := t.Regimes[r]; ok {
		return c
	}
	return t.Muted
}

func (t Theme) StatusColor(status string) lipgloss.Color {
	switch status {
	case telemetry.StatusOK:
		return t.Success
	case telemetry.StatusRunning:
		return t.Secondary
	case telemetry.StatusFailed:
		return t.Error
	case telemetry.StatusSkipped:
		return t.Warning
	default:
		return t.Muted
	}
}

func (t Theme) DirectionColor(d telemetry.Direction) lipgloss.Color {
	switch d {
	case telemetry.DirectionUp:
		return t.Success
	case telemetry.DirectionDown:
		return t.Error
	default:
		return t.Warning
	}
}
