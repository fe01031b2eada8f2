package export

import (
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/san-kum/quantviz/internal/viz"
)

const (
	charW, charH = 8, 16
	// maxPalette is the GIF colour table limit.
	maxPalette = 256
)

// Recorder accumulates canvas frames into an animated GIF.
type Recorder struct {
	theme  viz.Theme
	delay  int
	frames []*image.Paletted
}

// NewRecorder records frames shown for delay hundredths of a second each.
func NewRecorder(theme viz.Theme, delay int) *Recorder {
	if delay <= 0 {
		delay = 2
	}
	return &Recorder{theme: theme, delay: delay}
}

func (r *Recorder) Len() int { return len(r.frames) }

// Capture rasterises the canvas as one frame. Text cells are skipped.
func (r *Recorder) Capture(c *viz.Canvas) {
	if c == nil || c.Width == 0 || c.Height == 0 {
		return
	}
	pal := color.Palette{toRGBA(r.theme.Background)}
	index := map[lipgloss.Color]uint8{}
	lookup := func(col lipgloss.Color) uint8 {
		if col == "" {
			col = r.theme.Primary
		}
		if i, ok := index[col]; ok {
			return i
		}
		if len(pal) >= maxPalette {
			return uint8(pal.Index(toRGBA(col)))
		}
		pal = append(pal, toRGBA(col))
		index[col] = uint8(len(pal) - 1)
		return index[col]
	}

	dotW, dotH := charW/2, charH/4
	type dot struct {
		x, y int
		idx  uint8
	}
	var dots []dot
	for y := 0; y < c.SubHeight(); y++ {
		for x := 0; x < c.SubWidth(); x++ {
			if c.IsSet(x, y) {
				dots = append(dots, dot{x, y, lookup(c.Colors[y/4][x/2])})
			}
		}
	}

	img := image.NewPaletted(image.Rect(0, 0, c.Width*charW, c.Height*charH), pal)
	for _, d := range dots {
		for py := 0; py < dotH; py++ {
			for px := 0; px < dotW; px++ {
				img.SetColorIndex(d.x*dotW+px, d.y*dotH+py, d.idx)
			}
		}
	}
	r.frames = append(r.frames, img)
}

func (r *Recorder) Encode(w io.Writer) error {
	if len(r.frames) == 0 {
		return fmt.Errorf("export: no frames recorded")
	}
	anim := gif.GIF{LoopCount: 0}
	for _, frame := range r.frames {
		anim.Image = append(anim.Image, frame)
		anim.Delay = append(anim.Delay, r.delay)
	}
	return gif.EncodeAll(w, &anim)
}

func (r *Recorder) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := r.Encode(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// toRGBA parses a hex colour. Anything else (ANSI indices included) maps to
// white.
func toRGBA(c lipgloss.Color) color.RGBA {
	col, err := colorful.Hex(string(c))
	if err != nil {
		return color.RGBA{0xff, 0xff, 0xff, 0xff}
	}
	r, g, b := col.RGB255()
	return color.RGBA{r, g, b, 0xff}
}
