// Package anim smooths discrete target updates into continuous motion.
//
// Every visual uses the same exponential moving average:
//
//	displayed += (target - displayed) * k
//
// applied once per render tick. The step is frame-coupled: dt is accepted for
// interface symmetry but does not scale k, so convergence speed follows the
// host frame rate.
package anim

import "math"

// DefaultK is the per-tick smoothing ratio.
const DefaultK = 0.1

// Value is a single animated scalar.
type Value struct {
	Target    float64
	Displayed float64
	K         float64
	primed    bool
}

func NewValue(k float64) *Value {
	if k <= 0 || k > 1 {
		k = DefaultK
	}
	return &Value{K: k}
}

// Step moves Displayed one tick toward target and returns it. The first call
// snaps to the target so a freshly created value does not animate in from 0.
func (v *Value) Step(target, dt float64) float64 {
	v.Target = target
	if !v.primed {
		v.Displayed = target
		v.primed = true
		return v.Displayed
	}
	k := v.K
	if k <= 0 || k > 1 {
		k = DefaultK
	}
	v.Displayed += (target - v.Displayed) * k
	return v.Displayed
}

// Set jumps straight to x without animating.
func (v *Value) Set(x float64) {
	v.Target, v.Displayed, v.primed = x, x, true
}

func (v *Value) Reset() {
	v.Target, v.Displayed, v.primed = 0, 0, false
}

// TicksToConverge returns how many ticks an initial gap needs to shrink below
// eps with ratio k.
func TicksToConverge(gap, eps, k float64) int {
	gap = math.Abs(gap)
	if gap <= eps {
		return 0
	}
	if k <= 0 || k > 1 {
		k = DefaultK
	}
	if k == 1 {
		return 1
	}
	return int(math.Ceil(math.Log(eps/gap) / math.Log(1-k)))
}
