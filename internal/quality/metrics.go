package quality

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Collector exports controller stats as Prometheus gauges. Values are read
// from the controller at scrape time.
type Collector struct {
	c *Controller

	fps        *prometheus.Desc
	frameTime  *prometheus.Desc
	particles  *prometheus.Desc
	drawCalls  *prometheus.Desc
	rate       *prometheus.Desc
	downgrades *prometheus.Desc
	level      *prometheus.Desc
}

func NewCollector(c *Controller) *Collector {
	return &Collector{
		c:          c,
		fps:        prometheus.NewDesc("quantviz_fps", "Frames per second over the sample window.", nil, nil),
		frameTime:  prometheus.NewDesc("quantviz_frame_time_ms", "Mean frame time in milliseconds.", nil, nil),
		particles:  prometheus.NewDesc("quantviz_particles_active", "Active particles across all pools.", nil, nil),
		drawCalls:  prometheus.NewDesc("quantviz_draw_calls", "Canvas draw operations in the last frame.", nil, nil),
		rate:       prometheus.NewDesc("quantviz_snapshot_rate", "Snapshots received per second.", nil, nil),
		downgrades: prometheus.NewDesc("quantviz_quality_downgrades_total", "Automatic quality downgrades.", nil, nil),
		level:      prometheus.NewDesc("quantviz_quality_level", "Active quality preset (1 for the active one).", []string{"preset"}, nil),
	}
}

func (m *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- m.fps
	ch <- m.frameTime
	ch <- m.particles
	ch <- m.drawCalls
	ch <- m.rate
	ch <- m.downgrades
	ch <- m.level
}

func (m *Collector) Collect(ch chan<- prometheus.Metric) {
	s := m.c.Stats()
	ch <- prometheus.MustNewConstMetric(m.fps, prometheus.GaugeValue, s.FPS)
	ch <- prometheus.MustNewConstMetric(m.frameTime, prometheus.GaugeValue, s.FrameTime)
	ch <- prometheus.MustNewConstMetric(m.particles, prometheus.GaugeValue, float64(s.ParticleCount))
	ch <- prometheus.MustNewConstMetric(m.drawCalls, prometheus.GaugeValue, float64(s.DrawCalls))
	ch <- prometheus.MustNewConstMetric(m.rate, prometheus.GaugeValue, s.WSRate)
	ch <- prometheus.MustNewConstMetric(m.downgrades, prometheus.CounterValue, float64(m.c.Downgrades()))

	active := m.c.Level()
	for _, l := range ladder {
		v := 0.0
		if l == active {
			v = 1
		}
		ch <- prometheus.MustNewConstMetric(m.level, prometheus.GaugeValue, v, string(l))
	}
}
