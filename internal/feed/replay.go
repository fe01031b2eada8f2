package feed

import (
	"fmt"
	"io"

	"github.com/san-kum/quantviz/internal/telemetry"
)

// Replay plays back recorded frames in order, optionally looping.
type Replay struct {
	frames []*telemetry.Snapshot
	loop   bool
	pos    int
}

func NewReplay(frames []*telemetry.Snapshot, loop bool) (*Replay, error) {
	if len(frames) == 0 {
		return nil, ErrNoFrames
	}
	return &Replay{frames: frames, loop: loop}, nil
}

// LoadReplay reads a frames.jsonl recording.
func LoadReplay(path string, loop bool) (*Replay, error) {
	frames, err := telemetry.LoadJSONL(path)
	if err != nil {
		return nil, fmt.Errorf("feed: load replay %s: %w", path, err)
	}
	r, err := NewReplay(frames, loop)
	if err != nil {
		return nil, fmt.Errorf("feed: load replay %s: %w", path, err)
	}
	return r, nil
}

func (r *Replay) Len() int { return len(r.frames) }

func (r *Replay) Next() (*telemetry.Snapshot, error) {
	if r.pos >= len(r.frames) {
		if !r.loop {
			return nil, io.EOF
		}
		r.pos = 0
	}
	s := r.frames[r.pos]
	r.pos++
	return s, nil
}
