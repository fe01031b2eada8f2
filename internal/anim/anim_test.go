package anim

import (
	"math"
	"testing"
)

func TestValue_FirstStepSnaps(t *testing.T) {
	v := NewValue(DefaultK)
	if got := v.Step(42, 0.016); got != 42 {
		t.Errorf("expected first step to snap to 42, got %f", got)
	}
}

func TestValue_MonotonicConvergence(t *testing.T) {
	tests := []struct {
		name   string
		start  float64
		target float64
	}{
		{"up", 0, 1},
		{"down", 10, -3},
		{"large", 100000, 100500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewValue(DefaultK)
			v.Set(tt.start)
			prev := math.Abs(v.Displayed - tt.target)
			for i := 0; i < 200; i++ {
				d := v.Step(tt.target, 0.016)
				gap := math.Abs(d - tt.target)
				if gap > prev {
					t.Fatalf("tick %d: gap grew from %g to %g", i, prev, gap)
				}
				prev = gap
			}
		})
	}
}

func TestValue_BoundedConvergence(t *testing.T) {
	const eps = 1e-3
	gap := 10.0
	n := TicksToConverge(gap, eps, DefaultK)
	if n <= 0 {
		t.Fatalf("expected positive tick bound, got %d", n)
	}

	v := NewValue(DefaultK)
	v.Set(0)
	for i := 0; i < n; i++ {
		v.Step(gap, 0.016)
	}
	if math.Abs(v.Displayed-gap) > eps {
		t.Errorf("after %d ticks gap is %g, want <= %g", n, math.Abs(v.Displayed-gap), eps)
	}
}

func TestValue_IgnoresDt(t *testing.T) {
	a, b := NewValue(DefaultK), NewValue(DefaultK)
	a.Set(0)
	b.Set(0)
	a.Step(1, 0.001)
	b.Step(1, 0.1)
	if a.Displayed != b.Displayed {
		t.Errorf("step should be frame-coupled: %f != %f", a.Displayed, b.Displayed)
	}
	if math.Abs(a.Displayed-0.1) > 1e-12 {
		t.Errorf("expected 0.1 after one tick, got %f", a.Displayed)
	}
}

func TestSeries_GrowInitializesAtTarget(t *testing.T) {
	s := NewSeries(DefaultK)
	s.Step([]float64{1, 2})
	out := s.Step([]float64{1, 2, 7})
	if len(out) != 3 {
		t.Fatalf("expected 3 cells, got %d", len(out))
	}
	if out[2] != 7 {
		t.Errorf("new cell should start at its target, got %f", out[2])
	}
}

func TestSeries_Shrink(t *testing.T) {
	s := NewSeries(DefaultK)
	s.Step([]float64{1, 2, 3})
	out := s.Step([]float64{1})
	if len(out) != 1 {
		t.Errorf("expected 1 cell after shrink, got %d", len(out))
	}
}

func TestSeries_NaNRetainsValue(t *testing.T) {
	s := NewSeries(DefaultK)
	s.Step([]float64{5, 5})
	out := s.Step([]float64{math.NaN(), 15})
	if out[0] != 5 {
		t.Errorf("missing entry should retain 5, got %f", out[0])
	}
	if math.Abs(out[1]-6) > 1e-12 {
		t.Errorf("expected 6 after one tick, got %f", out[1])
	}
}

func TestSeries_NewNaNCellIsZero(t *testing.T) {
	s := NewSeries(DefaultK)
	out := s.Step([]float64{math.NaN()})
	if out[0] != 0 {
		t.Errorf("expected 0 for unseen missing cell, got %f", out[0])
	}
	if s.At(5) != 0 {
		t.Error("out of range At should be 0")
	}
}
