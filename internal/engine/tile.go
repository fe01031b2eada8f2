package engine

// Tile is the panel area given to one module, in terminal cells.
type Tile struct {
	Col, Row      int
	Width, Height int
}

const (
	// panelChromeW and panelChromeH are the cells taken by the panel border
	// and title line around a module canvas.
	panelChromeW = 2
	panelChromeH = 3

	// wideLayout is the surface width from which modules are laid out in
	// two columns.
	wideLayout = 80
)

// Tiles splits a width x height surface into n panels, row-major. The
// first module gets a full-width row when the count is odd in a
// two-column layout.
func Tiles(n, width, height int) []Tile {
	if n <= 0 {
		return nil
	}
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}

	cols := 1
	if width >= wideLayout && n > 1 {
		cols = 2
	}
	// Leading full-width tile when n does not divide evenly.
	lead := n % cols
	rows := lead + (n-lead)/cols

	tiles := make([]Tile, 0, n)
	rowH := height / rows
	colW := width / cols
	row := 0
	if lead == 1 {
		tiles = append(tiles, Tile{Col: 0, Row: 0, Width: width, Height: rowH})
		row = 1
	}
	for i := lead; i < n; i++ {
		k := i - lead
		tiles = append(tiles, Tile{
			Col:    k % cols,
			Row:    row + k/cols,
			Width:  colW,
			Height: rowH,
		})
	}
	return tiles
}

// CanvasSize is the drawable area inside a tile's panel.
func (t Tile) CanvasSize() (w, h int) {
	w, h = t.Width-panelChromeW, t.Height-panelChromeH
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	return w, h
}
