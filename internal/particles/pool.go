// Package particles implements the fixed-capacity particle arena used by the
// flow and pipeline visuals.
//
// The arena owns particle lifecycle: slots are index-addressable and tracked
// with an active bitset, so spawning never allocates and exhaustion is a
// silent drop. Renderers only read positions of active slots.
package particles

import (
	"errors"
	"fmt"
	"math/bits"

	"github.com/san-kum/quantviz/internal/geom"
)

var ErrInvalidCapacity = errors.New("particles: capacity must be positive")

type Particle struct {
	Pos      geom.Point
	Progress float64
	Speed    float64
	// Path is the index of the edge or pipeline segment being travelled,
	// -1 while inactive.
	Path int
	// Key identifies the path independently of its index so a reordered or
	// replaced path list is detected as stale.
	Key    string
	Active bool
}

// PathFunc resolves a path to its endpoints. ok is false when the path no
// longer exists.
type PathFunc func(path int, key string) (from, to geom.Point, ok bool)

type Pool struct {
	slots []Particle
	used  []uint64
	count int
}

func NewPool(capacity int) (*Pool, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidCapacity, capacity)
	}
	p := &Pool{
		slots: make([]Particle, capacity),
		used:  make([]uint64, (capacity+63)/64),
	}
	for i := range p.slots {
		p.slots[i].Path = -1
	}
	return p, nil
}

func (p *Pool) Cap() int    { return len(p.slots) }
func (p *Pool) Active() int { return p.count }

// Spawn claims a free slot for a particle on path. It is skipped, returning
// false, when the pool is full or softCap active particles already exist.
func (p *Pool) Spawn(path int, key string, speed float64, softCap int) (int, bool) {
	if softCap > len(p.slots) {
		softCap = len(p.slots)
	}
	if p.count >= softCap || path < 0 {
		return -1, false
	}
	for w, word := range p.used {
		free := ^word
		if free == 0 {
			continue
		}
		i := w*64 + bits.TrailingZeros64(free)
		if i >= len(p.slots) {
			return -1, false
		}
		p.used[w] |= 1 << uint(i%64)
		p.count++
		p.slots[i] = Particle{Path: path, Key: key, Speed: speed, Active: true}
		return i, true
	}
	return -1, false
}

// Get returns the slot at i. Callers must check Active.
func (p *Pool) Get(i int) *Particle { return &p.slots[i] }

func (p *Pool) Release(i int) {
	if i < 0 || i >= len(p.slots) || !p.slots[i].Active {
		return
	}
	p.used[i/64] &^= 1 << uint(i%64)
	p.count--
	p.slots[i] = Particle{Path: -1}
}

// Each calls fn for every active particle in slot order.
func (p *Pool) Each(fn func(i int, pt *Particle)) {
	for w, word := range p.used {
		for word != 0 {
			b := bits.TrailingZeros64(word)
			word &^= 1 << uint(b)
			i := w*64 + b
			fn(i, &p.slots[i])
		}
	}
}

// Advance moves every particle along its single path and frees it once
// Progress reaches 1 or its path vanished.
func (p *Pool) Advance(dt float64, resolve PathFunc) {
	p.Each(func(i int, pt *Particle) {
		from, to, ok := resolve(pt.Path, pt.Key)
		if !ok {
			p.Release(i)
			return
		}
		pt.Progress += pt.Speed * dt
		if pt.Progress >= 1 {
			p.Release(i)
			return
		}
		pt.Pos = geom.SCurve(from, to, pt.Progress)
	})
}

// AdvanceStages moves particles through consecutive segments 0..segments-1.
// Reaching the end of a segment moves on to the next one with Progress reset
// to 0; the particle is freed after the final segment.
func (p *Pool) AdvanceStages(dt float64, segments int, resolve PathFunc) {
	p.Each(func(i int, pt *Particle) {
		pt.Progress += pt.Speed * dt
		if pt.Progress >= 1 {
			pt.Path++
			pt.Progress = 0
		}
		if pt.Path >= segments {
			p.Release(i)
			return
		}
		from, to, ok := resolve(pt.Path, pt.Key)
		if !ok {
			p.Release(i)
			return
		}
		pt.Pos = geom.SCurve(from, to, pt.Progress)
	})
}

// Clear frees every slot.
func (p *Pool) Clear() {
	for i := range p.slots {
		p.slots[i] = Particle{Path: -1}
	}
	for i := range p.used {
		p.used[i] = 0
	}
	p.count = 0
}
