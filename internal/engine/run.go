package engine

import (
	"context"
	"time"
)

// Run ticks the scheduler at fps on a wall clock until ctx is done or
// Destroy is called, then destroys it. Either stop returns nil.
func (s *Scheduler) Run(ctx context.Context, fps int) error {
	if fps <= 0 {
		fps = 60
	}
	if s.Destroyed() {
		return ErrDestroyed
	}
	defer s.Destroy()

	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()
	start := time.Now()
	s.OnFrame(0)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-s.stop:
			return nil
		case now := <-ticker.C:
			s.OnFrame(float64(now.Sub(start).Microseconds()) / 1000)
		}
	}
}

// RunFrames ticks the scheduler n times on a virtual clock advancing by
// step milliseconds per frame and returns the final clock. load, if set, is
// called before each frame with the frame index and the clock so far, and
// returns extra milliseconds the frame took.
func (s *Scheduler) RunFrames(n int, step float64, load func(i int, now float64) float64) float64 {
	now := 0.0
	for i := 0; i < n; i++ {
		extra := 0.0
		if load != nil {
			extra = load(i, now)
		}
		now += step + extra
		s.OnFrame(now)
	}
	return now
}
