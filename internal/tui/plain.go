package tui

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/san-kum/quantviz/internal/engine"
)

const (
	clearScreen = "\033[2J\033[H"
	hideCursor  = "\033[?25l"
	showCursor  = "\033[?25h"
)

// PlainRenderer repaints the dashboard with raw ANSI escapes, for terminals
// or pipes where a full-screen program is unwanted. Painting is throttled
// to frameRate independently of the tick rate.
type PlainRenderer struct {
	w         io.Writer
	frameRate int
	lastFrame time.Time
}

func NewPlainRenderer(w io.Writer, frameRate int) *PlainRenderer {
	if frameRate <= 0 {
		frameRate = 10
	}
	return &PlainRenderer{w: w, frameRate: frameRate}
}

// Draw paints frame if enough time has passed since the last paint and
// reports whether it did.
func (r *PlainRenderer) Draw(now time.Time, title, frame string) bool {
	if !r.lastFrame.IsZero() && now.Sub(r.lastFrame) < time.Second/time.Duration(r.frameRate) {
		return false
	}
	r.lastFrame = now

	var b strings.Builder
	b.WriteString(clearScreen)
	b.WriteString(title + "\n")
	b.WriteString(frame)
	b.WriteString("\n")
	fmt.Fprint(r.w, b.String())
	return true
}

func (r *PlainRenderer) Start() { fmt.Fprint(r.w, hideCursor) }
func (r *PlainRenderer) Stop()  { fmt.Fprint(r.w, showCursor) }

// RunPlain ticks sched at fps and paints it through r until ctx is done.
// sched must already be sized with Resize.
func RunPlain(ctx context.Context, sched *engine.Scheduler, r *PlainRenderer, fps int) error {
	if fps <= 0 {
		fps = 60
	}
	r.Start()
	defer r.Stop()
	defer sched.Destroy()

	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()
	start := time.Now()
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			sched.OnFrame(float64(now.Sub(start).Microseconds()) / 1000)
			st := sched.Stats()
			title := fmt.Sprintf("quantviz  %.0f fps  quality %s  particles %d",
				st.FPS, sched.Quality().Level(), st.ParticleCount)
			r.Draw(now, title, sched.Render())
		}
	}
}
