package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/quantviz/internal/quality"
	"github.com/san-kum/quantviz/internal/telemetry"
	"github.com/san-kum/quantviz/internal/viz"
)

// warnSevere is the severity from which a warning renders as an error.
const warnSevere = 2

var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).MarginLeft(2)
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49"))
)

func (m Model) View() string {
	if m.width == 0 {
		return "starting..."
	}
	var s strings.Builder
	s.WriteString(m.header() + "\n")
	s.WriteString(m.sched.Render() + "\n")
	if m.showStats {
		s.WriteString(m.statsView() + "\n")
	}
	s.WriteString(m.help.View(keys))
	return s.String()
}

func (m Model) header() string {
	th := m.sched.Theme()
	title := viz.GradientText("QUANTVIZ", th.Primary, th.Secondary)

	var state string
	switch {
	case len(m.sched.Faults()) > 0:
		state = viz.StatusFaulted.Render(fmt.Sprintf("FAULTED (%d)", len(m.sched.Faults())))
	case m.sched.Slot().Version() == 0:
		state = viz.StatusWaiting.Render(viz.AnimatedSpinner(m.spinner/6) + " WAITING")
	default:
		state = viz.StatusLive.Render("LIVE")
	}

	q := m.sched.Quality()
	info := fmt.Sprintf("quality %s/%s  theme %s", q.Mode(), q.Level(), th.Name)
	if m.status != "" {
		info += "  " + m.status
	}
	return headerStyle.Render(title) + "  " + state + m.telemetryLine() + statusStyle.Render(info)
}

// telemetryLine shows the gauges no panel draws and the most severe warning.
func (m Model) telemetryLine() string {
	snap := m.sched.Latest()
	if snap == nil {
		return ""
	}
	out := statusStyle.Render(fmt.Sprintf("alpha %.2f  turnover %.2f",
		telemetry.GaugeValue(snap.SpeedAlpha), telemetry.GaugeValue(snap.RPMTurnover)))
	if w, ok := snap.TopWarning(); ok {
		text := w.Code
		if w.Message != "" {
			text += ": " + w.Message
		}
		style := viz.StatusWaiting
		if w.Severity >= warnSevere {
			style = viz.StatusFaulted
		}
		if n := len(snap.Warnings); n > 1 {
			text += fmt.Sprintf(" (+%d)", n-1)
		}
		out += "  " + style.Render(text)
	}
	return out
}

func (m Model) statsView() string {
	st := m.stats
	left := strings.Join([]string{
		viz.MetricLabel.Render("FPS") + viz.MetricValue.Render(fmt.Sprintf("%5.1f", st.FPS)),
		viz.MetricLabel.Render("Frame") + viz.MetricValue.Render(fmt.Sprintf("%5.1fms", st.FrameTime)),
		viz.MetricLabel.Render("Particles") + viz.ProgressBar(float64(st.ParticleCount)/float64(particleBudget()), 12) +
			fmt.Sprintf(" %d", st.ParticleCount),
		viz.MetricLabel.Render("Draws") + viz.MetricValue.Render(fmt.Sprintf("%d", st.DrawCalls)),
		viz.MetricLabel.Render("Snapshots") + viz.MetricValue.Render(fmt.Sprintf("%.1f/s", st.WSRate)),
		viz.MetricLabel.Render("Drops") + viz.MetricValue.Render(fmt.Sprintf("%d", m.sched.Slot().Drops())),
	}, "\n")

	hist := m.fps.Values()
	if len(hist) < 2 {
		return left
	}
	w := m.width - lipgloss.Width(left) - 12
	if w < 10 {
		return left
	}
	if w > fpsHistory {
		w = fpsHistory
	}
	chart := asciigraph.Plot(hist,
		asciigraph.Height(statsLines-2),
		asciigraph.Width(w),
		asciigraph.LowerBound(0),
		asciigraph.Precision(0),
		asciigraph.Caption("FPS"))
	return lipgloss.JoinHorizontal(lipgloss.Top, left, "  ", graphStyle.Render(chart))
}

// particleBudget is the largest number of particles the modules can hold.
func particleBudget() int {
	n := int(float64(viz.FlowPoolSize+viz.PipelinePoolSize) * quality.Presets[quality.ModeHigh].ParticleDensity)
	if n <= 0 {
		return 1
	}
	return n
}
