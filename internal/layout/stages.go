package layout

import (
	"errors"
	"fmt"

	"github.com/san-kum/quantviz/internal/geom"
	"github.com/san-kum/quantviz/internal/telemetry"
)

var (
	ErrEmptyStages    = errors.New("layout: stage list is empty")
	ErrDuplicateStage = errors.New("layout: duplicate stage")
)

type StageSlot struct {
	Stage  telemetry.Stage
	Center geom.Point
}

type StageLayout struct {
	Slots []StageSlot
}

// ValidateStages rejects an empty or repeating canonical stage list.
func ValidateStages(stages []telemetry.Stage) error {
	if len(stages) == 0 {
		return ErrEmptyStages
	}
	seen := make(map[telemetry.Stage]bool, len(stages))
	for _, s := range stages {
		if seen[s] {
			return fmt.Errorf("%w: %s", ErrDuplicateStage, s)
		}
		seen[s] = true
	}
	return nil
}

// ComputeStages spaces stages evenly at width/(n+1) along the vertical
// centre line.
func ComputeStages(stages []telemetry.Stage, width, height float64) StageLayout {
	n := len(stages)
	out := StageLayout{Slots: make([]StageSlot, n)}
	step := width / float64(n+1)
	for i, s := range stages {
		out.Slots[i] = StageSlot{
			Stage:  s,
			Center: geom.Point{X: step * float64(i+1), Y: height / 2},
		}
	}
	return out
}

// Segments is the number of links between adjacent stages.
func (l StageLayout) Segments() int {
	if len(l.Slots) < 2 {
		return 0
	}
	return len(l.Slots) - 1
}

// Segment returns the endpoints of the link from stage i to stage i+1.
func (l StageLayout) Segment(i int) (geom.Point, geom.Point, bool) {
	if i < 0 || i+1 >= len(l.Slots) {
		return geom.Point{}, geom.Point{}, false
	}
	return l.Slots[i].Center, l.Slots[i+1].Center, true
}
