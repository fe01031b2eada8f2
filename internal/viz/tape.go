package viz

import (
	"fmt"
	"math"

	"github.com/san-kum/quantviz/internal/anim"
	"github.com/san-kum/quantviz/internal/geom"
	"github.com/san-kum/quantviz/internal/telemetry"
)

// TapeSpeed is how fast tags scroll left, in cells per second.
const TapeSpeed = 8.0

type Tag struct {
	ID        string
	Label     string
	Direction telemetry.Direction
	X         float64
	Lane      int
	Risk      *anim.Value
}

func (t *Tag) end() float64 { return t.X + float64(len([]rune(t.Label))) }

// HazardTape scrolls one tag per upcoming hazard across the panel.
//
// An id is tracked from the tick its tag spawns until the tag has scrolled
// off screen and the id is no longer in the snapshot; a tracked id never
// spawns a second tag.
type HazardTape struct {
	base
	tags    []*Tag
	tracked map[string]bool
}

func NewHazardTape(env *Env) *HazardTape {
	return &HazardTape{
		base:    newBase(env, "tape", "Hazard Tape"),
		tracked: make(map[string]bool),
	}
}

// Tags returns the tags currently on the tape.
func (h *HazardTape) Tags() []Tag {
	out := make([]Tag, len(h.tags))
	for i, t := range h.tags {
		out[i] = *t
	}
	return out
}

func (h *HazardTape) Tracked(id string) bool { return h.tracked[id] }

func (h *HazardTape) Update(s *telemetry.Snapshot, dt float64) {
	set := h.settings()

	var hazards []telemetry.HazardEvent
	if s != nil {
		hazards = s.Hazards
	}
	present := make(map[string]telemetry.HazardEvent, len(hazards))
	for _, hz := range hazards {
		present[hz.ID] = hz
	}

	onScreen := make(map[string]bool, len(h.tags))
	kept := h.tags[:0]
	for _, t := range h.tags {
		t.X -= TapeSpeed * dt
		if hz, ok := present[t.ID]; ok {
			t.Risk.Step(geom.Clamp01(hz.RiskProb), dt)
			t.Label = tagLabel(hz)
		} else {
			t.Risk.Step(t.Risk.Target, dt)
		}
		if t.end() < 0 {
			continue
		}
		kept = append(kept, t)
		onScreen[t.ID] = true
	}
	for i := len(kept); i < len(h.tags); i++ {
		h.tags[i] = nil
	}
	h.tags = kept

	for id := range h.tracked {
		if _, still := present[id]; !still && !onScreen[id] {
			delete(h.tracked, id)
		}
	}

	for _, hz := range hazards {
		if len(h.tags) >= set.MaxHazards {
			break
		}
		if hz.EtaSeconds <= 0 || h.tracked[hz.ID] {
			continue
		}
		h.spawn(hz)
	}

	h.draw()
}

func (h *HazardTape) spawn(hz telemetry.HazardEvent) {
	lanes := h.canvas.Height
	if lanes < 1 {
		lanes = 1
	}
	// Pick the lane whose last tag ends furthest left.
	ends := make([]float64, lanes)
	for i := range ends {
		ends[i] = math.Inf(-1)
	}
	for _, t := range h.tags {
		if t.Lane < lanes && t.end() > ends[t.Lane] {
			ends[t.Lane] = t.end()
		}
	}
	lane := 0
	for i := range ends {
		if ends[i] < ends[lane] {
			lane = i
		}
	}

	risk := anim.NewValue(anim.DefaultK)
	risk.Step(geom.Clamp01(hz.RiskProb), 0)
	h.tags = append(h.tags, &Tag{
		ID:        hz.ID,
		Label:     tagLabel(hz),
		Direction: hz.Direction,
		X:         math.Max(float64(h.canvas.Width), ends[lane]+2),
		Lane:      lane,
		Risk:      risk,
	})
	h.tracked[hz.ID] = true
}

func tagLabel(hz telemetry.HazardEvent) string {
	arrow := "◆"
	switch hz.Direction {
	case telemetry.DirectionUp:
		arrow = "▲"
	case telemetry.DirectionDown:
		arrow = "▼"
	}
	name := hz.Ticker
	if name == "" {
		name = hz.Kind
	}
	return fmt.Sprintf("%s %s %.0f%% T-%.0fs", arrow, name, hz.RiskProb*100, hz.EtaSeconds)
}

func (h *HazardTape) draw() {
	c, th := h.canvas, h.env.Theme
	c.Clear()
	for _, t := range h.tags {
		c.Pen(th.Shade(th.DirectionColor(t.Direction), 0.35+0.65*t.Risk.Displayed))
		c.Text(int(math.Floor(t.X)), t.Lane, t.Label)
	}
}

func (h *HazardTape) Reset() {
	h.tags = nil
	h.tracked = make(map[string]bool)
	h.canvas.Clear()
}

func (h *HazardTape) Destroy() { h.tags = nil }
